package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetMetricsSingleton(t *testing.T) {
	m1 := GetMetrics()
	m2 := GetMetrics()
	assert.Same(t, m1, m2)
}

func TestRecordUpload(t *testing.T) {
	m := &DocQAMetrics{startTime: time.Now()}

	m.RecordUpload(5, nil)
	m.RecordUpload(3, nil)
	m.RecordUpload(0, assert.AnError)

	stats := m.Stats()
	uploads := stats["uploads"].(map[string]interface{})
	assert.Equal(t, uint64(3), uploads["total"])
	assert.Equal(t, uint64(1), uploads["errors"])

	indexing := stats["indexing"].(map[string]interface{})
	assert.Equal(t, uint64(2), indexing["documents_indexed"])
	assert.Equal(t, uint64(8), indexing["chunks_indexed"])
	assert.Equal(t, uint64(1), indexing["errors"])
}

func TestRecordQuery(t *testing.T) {
	m := &DocQAMetrics{startTime: time.Now()}

	m.RecordQuery(true, nil)
	m.RecordQuery(false, nil)
	m.RecordQuery(false, nil)
	m.RecordQuery(false, assert.AnError)

	stats := m.Stats()
	queries := stats["queries"].(map[string]interface{})
	assert.Equal(t, uint64(4), queries["total"])
	assert.Equal(t, uint64(1), queries["cache_hits"])
	assert.Equal(t, uint64(2), queries["cache_misses"])
	assert.Equal(t, uint64(1), queries["errors"])
	assert.InDelta(t, 1.0/3.0, queries["cache_hit_rate"], 0.0001)
}

func TestRecordRetrievalAndLLM(t *testing.T) {
	m := &DocQAMetrics{startTime: time.Now()}

	m.RecordRetrieval(100*time.Millisecond, 3)
	m.RecordRetrieval(200*time.Millisecond, 0)
	m.RecordLLMCall(500*time.Millisecond, 120, 80, nil)
	m.RecordLLMCall(0, 0, 0, assert.AnError)

	stats := m.Stats()
	retrieval := stats["retrieval"].(map[string]interface{})
	assert.Equal(t, uint64(2), retrieval["total"])
	assert.Equal(t, uint64(1), retrieval["empty"])
	assert.InDelta(t, 0.3, retrieval["total_duration_secs"], 0.001)

	llm := stats["llm"].(map[string]interface{})
	assert.Equal(t, uint64(2), llm["calls_total"])
	assert.Equal(t, uint64(1), llm["errors"])
	assert.Equal(t, uint64(120), llm["tokens_prompt"])
	assert.Equal(t, uint64(80), llm["tokens_completion"])
}

func TestExportPrometheusFormat(t *testing.T) {
	m := &DocQAMetrics{startTime: time.Now()}
	m.RecordUpload(2, nil)
	m.RecordQuery(false, nil)

	out := m.Export("docqa", "service")

	assert.Contains(t, out, "# HELP docqa_service_uploads_total")
	assert.Contains(t, out, "# TYPE docqa_service_uploads_total counter")
	assert.Contains(t, out, "docqa_service_uploads_total 1")
	assert.Contains(t, out, "docqa_service_queries_total 1")
	assert.Contains(t, out, "docqa_service_uptime_seconds")

	// 每条指标都带 HELP 和 TYPE 行
	assert.Equal(t, strings.Count(out, "# HELP"), strings.Count(out, "# TYPE"))
}

func TestReset(t *testing.T) {
	m := &DocQAMetrics{startTime: time.Now()}
	m.RecordUpload(2, nil)
	m.RecordQuery(true, nil)
	m.RecordRetrieval(time.Second, 1)

	m.Reset()

	stats := m.Stats()
	uploads := stats["uploads"].(map[string]interface{})
	queries := stats["queries"].(map[string]interface{})
	assert.Equal(t, uint64(0), uploads["total"])
	assert.Equal(t, uint64(0), queries["total"])
}
