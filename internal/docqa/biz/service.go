package biz

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kart-io/logger"

	"github.com/kart-io/docqa/internal/docqa/metrics"
	"github.com/kart-io/docqa/internal/model"
	"github.com/kart-io/docqa/internal/pkg/docqa/textutil"
	"github.com/kart-io/docqa/pkg/llm"
	"github.com/kart-io/docqa/pkg/utils/errors"
)

// 固定答案文案。与前端约定，不可随意改动。
const (
	emptyQueryAnswer = "Please provide a question about your uploaded documents."
	noResultsAnswer  = "I couldn't find relevant information in the uploaded documents to answer your question. " +
		"Please make sure you have uploaded PDF documents first."
)

// Service 定义文档问答服务接口。
type Service interface {
	// Upload 上传并摄取一个文档。
	Upload(ctx context.Context, content []byte, filename string) (*model.UploadResult, error)
	// Chat 执行一次 RAG 问答。documentID 非空时仅在该文档内检索。
	Chat(ctx context.Context, message, documentID string) (*model.QueryResult, error)
	// Search 跨文档检索，不触发答案生成。
	Search(ctx context.Context, query string, topK int) ([]*model.SearchResult, error)
	// ListDocuments 列出已登记的文档，并合并仅存在于向量存储中的文档。
	ListDocuments(ctx context.Context) []*model.Document
	// GetDocument 查询文档信息，注册表未命中时从向量存储回退重建。
	GetDocument(ctx context.Context, documentID string) (*model.Document, error)
	// DeleteDocument 删除文档及其全部向量块。
	DeleteDocument(ctx context.Context, documentID string) error
	// GetChunks 返回文档的全部块。
	GetChunks(ctx context.Context, documentID string) ([]*model.Chunk, error)
	// GetStats 获取服务统计信息。
	GetStats(ctx context.Context) (map[string]any, error)
	// PurgeCache 清空问答缓存。
	PurgeCache(ctx context.Context) error
}

// ServiceConfig 文档问答服务配置。
type ServiceConfig struct {
	IngesterConfig  *IngesterConfig
	GatewayConfig   *IndexGatewayConfig
	AssemblerConfig *AssemblerConfig
	GeneratorConfig *GeneratorConfig
	// TopK 相似度检索返回的结果数。
	TopK int
	// SnippetLength 来源片段的最大字符数。
	SnippetLength int
}

// DocQAService 组合摄取、检索、组装与生成，提供完整的文档问答服务。
type DocQAService struct {
	registry      *DocumentRegistry
	ingester      *Ingester
	gateway       *IndexGateway
	assembler     *ContextAssembler
	generator     *AnswerGenerator
	cache         *QueryCache
	embedProvider llm.EmbeddingProvider
	chatProvider  llm.ChatProvider
	collection    string
	topK          int
	snippetLength int
	metrics       *metrics.DocQAMetrics
}

// NewDocQAService 创建文档问答服务实例。
func NewDocQAService(
	gateway *IndexGateway,
	embedProvider llm.EmbeddingProvider,
	chatProvider llm.ChatProvider,
	cache *QueryCache,
	config *ServiceConfig,
) *DocQAService {
	registry := NewDocumentRegistry()
	ingester := NewIngester(registry, gateway, config.IngesterConfig)
	assembler := NewContextAssembler(config.AssemblerConfig)
	generator := NewAnswerGenerator(chatProvider, config.GeneratorConfig)

	snippetLength := config.SnippetLength
	if snippetLength <= 0 {
		snippetLength = 200
	}
	topK := config.TopK
	if topK <= 0 {
		topK = 5
	}

	return &DocQAService{
		registry:      registry,
		ingester:      ingester,
		gateway:       gateway,
		assembler:     assembler,
		generator:     generator,
		cache:         cache,
		embedProvider: embedProvider,
		chatProvider:  chatProvider,
		collection:    config.GatewayConfig.Collection,
		topK:          topK,
		snippetLength: snippetLength,
		metrics:       metrics.GetMetrics(),
	}
}

// Upload 上传并摄取一个文档。
func (s *DocQAService) Upload(ctx context.Context, content []byte, filename string) (*model.UploadResult, error) {
	result, err := s.ingester.Ingest(ctx, content, filename)
	if err != nil {
		s.metrics.RecordUpload(0, err)
		return nil, err
	}

	if result.Status == model.StatusError {
		s.metrics.RecordUpload(0, errors.ErrDocQAIngestFailed)
	} else {
		s.metrics.RecordUpload(result.TotalChunks, nil)
	}
	return result, nil
}

// Chat 执行一次 RAG 问答。
// 空问题和空检索结果都被转换为固定答案，不触发模型调用。
func (s *DocQAService) Chat(ctx context.Context, message, documentID string) (*model.QueryResult, error) {
	query := strings.TrimSpace(message)
	if query == "" {
		return &model.QueryResult{
			Answer:   emptyQueryAnswer,
			Sources:  []model.ChunkSource{},
			Metadata: model.QueryMetadata{Error: "Empty message"},
		}, nil
	}

	// 1. 尝试从缓存获取
	if s.cache != nil {
		cachedResult, err := s.cache.Get(ctx, query, documentID)
		if err == nil && cachedResult != nil {
			s.metrics.RecordQuery(true, nil)
			return cachedResult, nil
		}
		// 缓存未命中或出错，继续正常流程
	}

	// 2. 检索相关文档块
	retrievalStart := time.Now()
	results := s.gateway.Search(ctx, query, s.topK, documentID)
	s.metrics.RecordRetrieval(time.Since(retrievalStart), len(results))

	if len(results) == 0 {
		if ctx.Err() != nil {
			s.metrics.RecordQuery(false, ctx.Err())
			return nil, errors.ErrDocQAQueryTimeout.WithCause(ctx.Err())
		}
		return &model.QueryResult{
			Answer:   noResultsAnswer,
			Sources:  []model.ChunkSource{},
			Metadata: model.QueryMetadata{ContextChunksFound: 0},
		}, nil
	}

	// 3. 组装上下文并生成答案
	contextText := s.assembler.Assemble(results)

	llmStart := time.Now()
	resp, genErr := s.generator.Generate(ctx, query, contextText)
	s.metrics.RecordLLMCall(time.Since(llmStart), resp.Usage.PromptTokens, resp.Usage.CompletionTokens, genErr)

	// 截止时间内未完成的请求直接失败，不返回道歉文案
	if genErr != nil && ctx.Err() != nil {
		s.metrics.RecordQuery(false, genErr)
		return nil, errors.ErrDocQAQueryTimeout.WithCause(genErr)
	}

	// 4. 构建响应
	sources := make([]model.ChunkSource, len(results))
	for i, result := range results {
		content := result.Content
		if len([]rune(content)) > s.snippetLength {
			content = textutil.TruncateString(content, s.snippetLength) + "..."
		}
		sources[i] = model.ChunkSource{
			Content:      content,
			Filename:     result.Filename,
			DocumentID:   result.DocumentID,
			DocumentType: documentType(result.Filename),
			Score:        result.Score,
		}
	}

	queryResult := &model.QueryResult{
		Answer:  resp.Content,
		Sources: sources,
		Metadata: model.QueryMetadata{
			ContextChunksFound: len(results),
			DocumentID:         documentID,
			QueryType:          "rag",
		},
	}
	if genErr != nil {
		queryResult.Metadata.Error = errors.ErrDocQAQueryFailed.MessageEN
	}

	// 5. 写入缓存（生成失败的固定答案不缓存）
	if s.cache != nil && genErr == nil {
		_ = s.cache.Set(ctx, query, documentID, queryResult)
	}

	s.metrics.RecordQuery(false, genErr)
	return queryResult, nil
}

// Search 跨文档检索，不触发答案生成。
func (s *DocQAService) Search(ctx context.Context, query string, topK int) ([]*model.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.ErrDocQAEmptyQuestion
	}
	if topK <= 0 {
		topK = s.topK
	}

	results := s.gateway.Search(ctx, query, topK, "")

	searchResults := make([]*model.SearchResult, len(results))
	for i, r := range results {
		searchResults[i] = &model.SearchResult{
			DocumentID: r.DocumentID,
			Filename:   r.Filename,
			ChunkIndex: r.ChunkIndex,
			Content:    r.Content,
			Score:      r.Score,
		}
	}
	return searchResults, nil
}

// ListDocuments 列出已登记的文档。
// 仅存在于向量存储中的文档（如服务重启后注册表丢失的）按 ID 升序追加在后。
func (s *DocQAService) ListDocuments(ctx context.Context) []*model.Document {
	docs := s.registry.List()

	known := make(map[string]bool, len(docs))
	for _, doc := range docs {
		known[doc.ID] = true
	}

	var stored []*model.Document
	for id, filename := range s.gateway.Documents(ctx) {
		if known[id] {
			continue
		}
		stored = append(stored, &model.Document{
			ID:       id,
			Filename: filename,
			FileType: documentType(filename),
			Status:   model.StatusProcessed,
		})
	}
	sort.Slice(stored, func(i, j int) bool { return stored[i].ID < stored[j].ID })

	return append(docs, stored...)
}

// GetDocument 查询文档信息。
// 注册表未命中时从向量存储中的块回退重建文档信息。
func (s *DocQAService) GetDocument(ctx context.Context, documentID string) (*model.Document, error) {
	if doc, ok := s.registry.Get(documentID); ok {
		return doc, nil
	}

	chunks := s.gateway.ChunksForDocument(ctx, documentID)
	if len(chunks) == 0 {
		return nil, errors.ErrDocQADocumentNotFound
	}

	return &model.Document{
		ID:          documentID,
		Filename:    chunks[0].Filename,
		FileType:    documentType(chunks[0].Filename),
		TotalChunks: len(chunks),
		Status:      model.StatusProcessed,
	}, nil
}

// DeleteDocument 删除文档及其全部向量块。
func (s *DocQAService) DeleteDocument(ctx context.Context, documentID string) error {
	_, inRegistry := s.registry.Get(documentID)
	if !inRegistry && len(s.gateway.ChunksForDocument(ctx, documentID)) == 0 {
		return errors.ErrDocQADocumentNotFound
	}

	if err := s.gateway.DeleteDocument(ctx, documentID); err != nil {
		return err
	}
	s.registry.Remove(documentID)
	return nil
}

// GetChunks 返回文档的全部块。
func (s *DocQAService) GetChunks(ctx context.Context, documentID string) ([]*model.Chunk, error) {
	storeChunks := s.gateway.ChunksForDocument(ctx, documentID)

	chunks := make([]*model.Chunk, len(storeChunks))
	for i, c := range storeChunks {
		chunks[i] = &model.Chunk{
			DocumentID: c.DocumentID,
			Filename:   c.Filename,
			ChunkIndex: c.ChunkIndex,
			Content:    c.Content,
			WordCount:  textutil.CountWords(c.Content),
			CharCount:  len([]rune(c.Content)),
		}
	}
	return chunks, nil
}

// GetStats 获取服务统计信息。
func (s *DocQAService) GetStats(ctx context.Context) (map[string]any, error) {
	count, err := s.gateway.Stats(ctx)
	if err != nil {
		return nil, errors.ErrDocQAStatsFailed.WithCause(err)
	}

	stats := map[string]any{
		"collection":     s.collection,
		"chunk_count":    count,
		"document_count": s.registry.Len(),
		"embed_provider": s.embedProvider.Name(),
		"chat_provider":  s.chatProvider.Name(),
	}

	if s.cache != nil {
		cacheStats, err := s.cache.GetStats(ctx)
		if err == nil {
			stats["cache"] = cacheStats
		}
	}

	stats["metrics"] = s.metrics.Stats()

	return stats, nil
}

// documentType 从文件名扩展名推导文档类型，无扩展名时视为 pdf。
func documentType(filename string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return "pdf"
	}
	return ext
}

// embeddingCachePurger 由带缓存的 Embedding 供应商实现。
type embeddingCachePurger interface {
	ClearCache(ctx context.Context) error
}

// PurgeCache 清空问答缓存和 Embedding 缓存。
// Embedding 缓存清理失败只记录告警，不影响问答缓存的清理。
func (s *DocQAService) PurgeCache(ctx context.Context) error {
	if p, ok := s.embedProvider.(embeddingCachePurger); ok {
		if err := p.ClearCache(ctx); err != nil {
			logger.Warnw("failed to clear embedding cache",
				"error", err.Error(),
			)
		}
	}

	if s.cache == nil {
		return nil
	}
	return s.cache.Clear(ctx)
}

// 确保 DocQAService 实现了 Service 接口。
var _ Service = (*DocQAService)(nil)
