// Package metrics 提供文档问答服务的业务指标收集。
package metrics

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// DocQAMetrics 文档问答服务业务指标。
type DocQAMetrics struct {
	// 上传指标
	uploadsTotal  uint64 // 总上传次数
	uploadsErrors uint64 // 上传失败次数

	// 索引指标
	documentsIndexed uint64 // 已索引文档数
	chunksIndexed    uint64 // 已索引分块数
	indexErrors      uint64 // 索引错误次数

	// 查询指标
	queriesTotal       uint64 // 总查询次数
	queriesCacheHits   uint64 // 缓存命中次数
	queriesCacheMisses uint64 // 缓存未命中次数
	queriesErrors      uint64 // 查询错误次数

	// 检索指标
	retrievalTotal    uint64  // 总检索次数
	retrievalDuration float64 // 检索总耗时（秒）
	retrievalEmpty    uint64  // 空结果检索次数

	// LLM 调用指标
	llmCallsTotal       uint64  // LLM 总调用次数
	llmCallsDuration    float64 // LLM 调用总耗时（秒）
	llmCallsErrors      uint64  // LLM 调用错误次数
	llmTokensPrompt     uint64  // Prompt tokens 总数
	llmTokensCompletion uint64  // Completion tokens 总数

	startTime  time.Time
	durationMu sync.Mutex
}

// globalMetrics 全局指标实例。
var (
	globalMetrics *DocQAMetrics
	metricsOnce   sync.Once
)

// GetMetrics 获取全局指标实例。
func GetMetrics() *DocQAMetrics {
	metricsOnce.Do(func() {
		globalMetrics = &DocQAMetrics{
			startTime: time.Now(),
		}
	})
	return globalMetrics
}

// RecordUpload 记录一次文档上传。
func (m *DocQAMetrics) RecordUpload(chunks int, err error) {
	atomic.AddUint64(&m.uploadsTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.uploadsErrors, 1)
		atomic.AddUint64(&m.indexErrors, 1)
		return
	}
	atomic.AddUint64(&m.documentsIndexed, 1)
	atomic.AddUint64(&m.chunksIndexed, uint64(chunks))
}

// RecordQuery 记录查询。
func (m *DocQAMetrics) RecordQuery(cacheHit bool, err error) {
	atomic.AddUint64(&m.queriesTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.queriesErrors, 1)
		return
	}
	if cacheHit {
		atomic.AddUint64(&m.queriesCacheHits, 1)
	} else {
		atomic.AddUint64(&m.queriesCacheMisses, 1)
	}
}

// RecordRetrieval 记录检索操作。
func (m *DocQAMetrics) RecordRetrieval(duration time.Duration, resultCount int) {
	atomic.AddUint64(&m.retrievalTotal, 1)
	if resultCount == 0 {
		atomic.AddUint64(&m.retrievalEmpty, 1)
	}

	m.durationMu.Lock()
	m.retrievalDuration += duration.Seconds()
	m.durationMu.Unlock()
}

// RecordLLMCall 记录 LLM 调用。
func (m *DocQAMetrics) RecordLLMCall(duration time.Duration, promptTokens, completionTokens int, err error) {
	atomic.AddUint64(&m.llmCallsTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.llmCallsErrors, 1)
		return
	}

	m.durationMu.Lock()
	m.llmCallsDuration += duration.Seconds()
	m.durationMu.Unlock()

	if promptTokens > 0 {
		atomic.AddUint64(&m.llmTokensPrompt, uint64(promptTokens))
	}
	if completionTokens > 0 {
		atomic.AddUint64(&m.llmTokensCompletion, uint64(completionTokens))
	}
}

// Export 导出 Prometheus 格式指标。
func (m *DocQAMetrics) Export(namespace, subsystem string) string {
	var sb strings.Builder
	prefix := namespace
	if subsystem != "" {
		prefix = prefix + "_" + subsystem
	}

	counter := func(name, help string, value uint64) {
		sb.WriteString(fmt.Sprintf("# HELP %s_%s %s\n", prefix, name, help))
		sb.WriteString(fmt.Sprintf("# TYPE %s_%s counter\n", prefix, name))
		sb.WriteString(fmt.Sprintf("%s_%s %d\n\n", prefix, name, value))
	}
	gauge := func(name, help string, value float64) {
		sb.WriteString(fmt.Sprintf("# HELP %s_%s %s\n", prefix, name, help))
		sb.WriteString(fmt.Sprintf("# TYPE %s_%s gauge\n", prefix, name))
		sb.WriteString(fmt.Sprintf("%s_%s %.6f\n\n", prefix, name, value))
	}

	// 上传与索引指标
	counter("uploads_total", "Total number of document uploads.", atomic.LoadUint64(&m.uploadsTotal))
	counter("uploads_errors_total", "Number of failed uploads.", atomic.LoadUint64(&m.uploadsErrors))
	counter("documents_indexed_total", "Total documents indexed.", atomic.LoadUint64(&m.documentsIndexed))
	counter("chunks_indexed_total", "Total chunks indexed.", atomic.LoadUint64(&m.chunksIndexed))
	counter("index_errors_total", "Number of indexing errors.", atomic.LoadUint64(&m.indexErrors))

	// 查询指标
	counter("queries_total", "Total number of chat queries.", atomic.LoadUint64(&m.queriesTotal))
	counter("queries_cache_hits_total", "Number of cache hits.", atomic.LoadUint64(&m.queriesCacheHits))
	counter("queries_cache_misses_total", "Number of cache misses.", atomic.LoadUint64(&m.queriesCacheMisses))
	counter("queries_errors_total", "Number of query errors.", atomic.LoadUint64(&m.queriesErrors))

	// 缓存命中率
	cacheHits := atomic.LoadUint64(&m.queriesCacheHits)
	cacheMisses := atomic.LoadUint64(&m.queriesCacheMisses)
	cacheHitRate := 0.0
	if total := cacheHits + cacheMisses; total > 0 {
		cacheHitRate = float64(cacheHits) / float64(total)
	}
	gauge("cache_hit_rate", "Cache hit rate (0-1).", cacheHitRate)

	// 检索指标
	counter("retrieval_total", "Total number of retrievals.", atomic.LoadUint64(&m.retrievalTotal))
	counter("retrieval_empty_total", "Number of retrievals with no results.", atomic.LoadUint64(&m.retrievalEmpty))

	m.durationMu.Lock()
	retrievalDuration := m.retrievalDuration
	llmDuration := m.llmCallsDuration
	m.durationMu.Unlock()

	gauge("retrieval_duration_seconds_total", "Total retrieval duration.", retrievalDuration)

	// LLM 调用指标
	counter("llm_calls_total", "Total number of LLM calls.", atomic.LoadUint64(&m.llmCallsTotal))
	counter("llm_calls_errors_total", "Number of LLM call errors.", atomic.LoadUint64(&m.llmCallsErrors))
	gauge("llm_calls_duration_seconds_total", "Total LLM call duration.", llmDuration)
	counter("llm_tokens_prompt_total", "Total prompt tokens.", atomic.LoadUint64(&m.llmTokensPrompt))
	counter("llm_tokens_completion_total", "Total completion tokens.", atomic.LoadUint64(&m.llmTokensCompletion))

	// 运行时间
	gauge("uptime_seconds", "Service uptime in seconds.", time.Since(m.startTime).Seconds())

	return sb.String()
}

// Stats 返回当前统计信息（用于 API）。
func (m *DocQAMetrics) Stats() map[string]interface{} {
	m.durationMu.Lock()
	retrievalDuration := m.retrievalDuration
	llmDuration := m.llmCallsDuration
	m.durationMu.Unlock()

	cacheHits := atomic.LoadUint64(&m.queriesCacheHits)
	cacheMisses := atomic.LoadUint64(&m.queriesCacheMisses)
	cacheHitRate := 0.0
	if total := cacheHits + cacheMisses; total > 0 {
		cacheHitRate = float64(cacheHits) / float64(total)
	}

	retrievalTotal := atomic.LoadUint64(&m.retrievalTotal)
	avgRetrievalDuration := 0.0
	if retrievalTotal > 0 {
		avgRetrievalDuration = retrievalDuration / float64(retrievalTotal)
	}

	llmTotal := atomic.LoadUint64(&m.llmCallsTotal)
	avgLLMDuration := 0.0
	if llmTotal > 0 {
		avgLLMDuration = llmDuration / float64(llmTotal)
	}

	return map[string]interface{}{
		"uploads": map[string]interface{}{
			"total":  atomic.LoadUint64(&m.uploadsTotal),
			"errors": atomic.LoadUint64(&m.uploadsErrors),
		},
		"indexing": map[string]interface{}{
			"documents_indexed": atomic.LoadUint64(&m.documentsIndexed),
			"chunks_indexed":    atomic.LoadUint64(&m.chunksIndexed),
			"errors":            atomic.LoadUint64(&m.indexErrors),
		},
		"queries": map[string]interface{}{
			"total":          atomic.LoadUint64(&m.queriesTotal),
			"cache_hits":     cacheHits,
			"cache_misses":   cacheMisses,
			"cache_hit_rate": cacheHitRate,
			"errors":         atomic.LoadUint64(&m.queriesErrors),
		},
		"retrieval": map[string]interface{}{
			"total":               retrievalTotal,
			"empty":               atomic.LoadUint64(&m.retrievalEmpty),
			"total_duration_secs": retrievalDuration,
			"avg_duration_secs":   avgRetrievalDuration,
		},
		"llm": map[string]interface{}{
			"calls_total":         llmTotal,
			"total_duration_secs": llmDuration,
			"avg_duration_secs":   avgLLMDuration,
			"errors":              atomic.LoadUint64(&m.llmCallsErrors),
			"tokens_prompt":       atomic.LoadUint64(&m.llmTokensPrompt),
			"tokens_completion":   atomic.LoadUint64(&m.llmTokensCompletion),
		},
		"uptime_seconds": time.Since(m.startTime).Seconds(),
	}
}

// Reset 重置所有指标（仅用于测试）。
func (m *DocQAMetrics) Reset() {
	atomic.StoreUint64(&m.uploadsTotal, 0)
	atomic.StoreUint64(&m.uploadsErrors, 0)
	atomic.StoreUint64(&m.documentsIndexed, 0)
	atomic.StoreUint64(&m.chunksIndexed, 0)
	atomic.StoreUint64(&m.indexErrors, 0)
	atomic.StoreUint64(&m.queriesTotal, 0)
	atomic.StoreUint64(&m.queriesCacheHits, 0)
	atomic.StoreUint64(&m.queriesCacheMisses, 0)
	atomic.StoreUint64(&m.queriesErrors, 0)
	atomic.StoreUint64(&m.retrievalTotal, 0)
	atomic.StoreUint64(&m.retrievalEmpty, 0)
	atomic.StoreUint64(&m.llmCallsTotal, 0)
	atomic.StoreUint64(&m.llmCallsErrors, 0)
	atomic.StoreUint64(&m.llmTokensPrompt, 0)
	atomic.StoreUint64(&m.llmTokensCompletion, 0)

	m.durationMu.Lock()
	m.retrievalDuration = 0
	m.llmCallsDuration = 0
	m.startTime = time.Now()
	m.durationMu.Unlock()
}
