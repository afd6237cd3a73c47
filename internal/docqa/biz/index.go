package biz

import (
	"context"
	"fmt"
	"sync"

	"github.com/kart-io/logger"
	"github.com/panjf2000/ants/v2"

	"github.com/kart-io/docqa/internal/docqa/store"
	"github.com/kart-io/docqa/pkg/llm"
	"github.com/kart-io/docqa/pkg/utils/errors"
)

// IndexGatewayConfig 向量索引网关配置。
type IndexGatewayConfig struct {
	// Collection 集合名称。
	Collection string
	// EmbeddingDim 嵌入向量维度。
	EmbeddingDim int
	// EmbedBatchSize 单次嵌入请求的文本数上限。
	EmbedBatchSize int
	// PoolSize 嵌入并发池大小。
	PoolSize int
}

// IndexGateway 是检索与入库的唯一入口。
// 读路径上供应商或存储故障被吸收为空结果并记录告警，
// 写路径上的故障向上传播。
type IndexGateway struct {
	store         store.VectorStore
	embedProvider llm.EmbeddingProvider
	pool          *ants.Pool
	config        *IndexGatewayConfig
}

// NewIndexGateway 创建向量索引网关实例。
func NewIndexGateway(vectorStore store.VectorStore, embedProvider llm.EmbeddingProvider, config *IndexGatewayConfig) (*IndexGateway, error) {
	if config.EmbedBatchSize <= 0 {
		config.EmbedBatchSize = 16
	}
	if config.PoolSize <= 0 {
		config.PoolSize = 4
	}

	pool, err := ants.NewPool(config.PoolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding pool: %w", err)
	}

	return &IndexGateway{
		store:         vectorStore,
		embedProvider: embedProvider,
		pool:          pool,
		config:        config,
	}, nil
}

// EnsureCollection 确保集合存在。
func (g *IndexGateway) EnsureCollection(ctx context.Context) error {
	return g.store.CreateCollection(ctx, &store.CollectionConfig{
		Name:        g.config.Collection,
		Description: "DocQA document chunk collection",
		Dimension:   g.config.EmbeddingDim,
	})
}

// AddChunks 为文档块批量生成嵌入并写入向量存储。
// 嵌入按批次在协程池中并发执行，任一批次失败则整体失败。
func (g *IndexGateway) AddChunks(ctx context.Context, documentID, filename string, chunks []string) error {
	if len(chunks) == 0 {
		return nil
	}

	embeddings := make([][]float32, len(chunks))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	batchSize := g.config.EmbedBatchSize
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batchStart, batch := start, chunks[start:end]

		wg.Add(1)
		task := func() {
			defer wg.Done()

			batchEmbeddings, err := g.embedProvider.Embed(ctx, batch)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			for i, emb := range batchEmbeddings {
				embeddings[batchStart+i] = emb
			}
		}

		// 池满或已关闭时降级为同步执行
		if err := g.pool.Submit(task); err != nil {
			task()
		}
	}
	wg.Wait()

	if firstErr != nil {
		return fmt.Errorf("failed to generate embeddings: %w", firstErr)
	}

	storeChunks := make([]*store.Chunk, len(chunks))
	for i, content := range chunks {
		storeChunks[i] = &store.Chunk{
			DocumentID: documentID,
			Filename:   filename,
			ChunkIndex: i,
			Content:    content,
			Embedding:  embeddings[i],
		}
	}

	if _, err := g.store.Insert(ctx, g.config.Collection, storeChunks); err != nil {
		return errors.ErrDocQAVectorStoreUnavailable.WithCause(err)
	}

	logger.Infof("Indexed %d chunks for document %s", len(chunks), documentID)
	return nil
}

// Search 执行相似度检索。documentID 非空时仅在该文档内检索。
// 嵌入或存储故障被吸收为空结果。
func (g *IndexGateway) Search(ctx context.Context, query string, topK int, documentID string) []*store.SearchResult {
	embedding, err := g.embedProvider.EmbedSingle(ctx, query)
	if err != nil {
		logger.Warnw("query embedding failed, returning empty results",
			"error", err.Error(),
		)
		return []*store.SearchResult{}
	}

	results, err := g.store.Search(ctx, g.config.Collection, embedding, topK, documentID)
	if err != nil {
		logger.Warnw("vector search failed, returning empty results",
			"error", err.Error(),
			"document_id", documentID,
		)
		return []*store.SearchResult{}
	}

	return results
}

// ChunksForDocument 返回指定文档的全部块，存储故障被吸收为空结果。
func (g *IndexGateway) ChunksForDocument(ctx context.Context, documentID string) []*store.Chunk {
	chunks, err := g.store.GetChunks(ctx, g.config.Collection, documentID)
	if err != nil {
		logger.Warnw("chunk lookup failed, returning empty results",
			"error", err.Error(),
			"document_id", documentID,
		)
		return []*store.Chunk{}
	}
	return chunks
}

// Documents 返回向量存储中出现过的文档 ID 与文件名，存储故障被吸收为空结果。
func (g *IndexGateway) Documents(ctx context.Context) map[string]string {
	docs, err := g.store.ListDocumentIDs(ctx, g.config.Collection)
	if err != nil {
		logger.Warnw("document listing failed, returning empty results",
			"error", err.Error(),
		)
		return map[string]string{}
	}
	return docs
}

// DeleteDocument 删除指定文档的全部向量块。
func (g *IndexGateway) DeleteDocument(ctx context.Context, documentID string) error {
	if err := g.store.DeleteDocument(ctx, g.config.Collection, documentID); err != nil {
		return errors.ErrDocQAVectorStoreUnavailable.WithCause(err)
	}
	logger.Infof("Deleted chunks for document %s", documentID)
	return nil
}

// Stats 返回集合中的实体总数。
func (g *IndexGateway) Stats(ctx context.Context) (int64, error) {
	return g.store.GetStats(ctx, g.config.Collection)
}

// Close 释放协程池并关闭存储连接。
func (g *IndexGateway) Close(ctx context.Context) error {
	g.pool.Release()
	return g.store.Close(ctx)
}
