package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/milvus-io/milvus/client/v2/entity"

	"github.com/kart-io/docqa/pkg/component/milvus"
)

// 文档块集合的标量字段。
var chunkOutputFields = []string{"document_id", "filename", "chunk_index", "content"}

// MilvusStore 实现基于 Milvus 的向量存储。
type MilvusStore struct {
	client *milvus.Client
}

// NewMilvusStore 创建 Milvus 存储实例。
func NewMilvusStore(client *milvus.Client) *MilvusStore {
	return &MilvusStore{client: client}
}

// CreateCollection 创建 Milvus 集合。
func (s *MilvusStore) CreateCollection(ctx context.Context, config *CollectionConfig) error {
	schema := &milvus.CollectionSchema{
		Name:        config.Name,
		Description: config.Description,
		Dimension:   config.Dimension,
		MetaFields: []milvus.MetaField{
			{Name: "document_id", DataType: entity.FieldTypeVarChar, MaxLen: 64},
			{Name: "filename", DataType: entity.FieldTypeVarChar, MaxLen: 255},
			{Name: "chunk_index", DataType: entity.FieldTypeInt64},
			{Name: "content", DataType: entity.FieldTypeVarChar, MaxLen: 65535},
		},
	}
	return s.client.CreateCollection(ctx, schema)
}

// Insert 批量插入文档块到 Milvus。
func (s *MilvusStore) Insert(ctx context.Context, collection string, chunks []*Chunk) ([]string, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, len(chunks))
	metadata := map[string][]any{
		"document_id": make([]any, len(chunks)),
		"filename":    make([]any, len(chunks)),
		"chunk_index": make([]any, len(chunks)),
		"content":     make([]any, len(chunks)),
	}

	for i, chunk := range chunks {
		embeddings[i] = chunk.Embedding
		metadata["document_id"][i] = chunk.DocumentID
		metadata["filename"][i] = chunk.Filename
		metadata["chunk_index"][i] = int64(chunk.ChunkIndex)
		metadata["content"][i] = chunk.Content
	}

	data := &milvus.InsertData{
		Embeddings: embeddings,
		Metadata:   metadata,
	}

	ids, err := s.client.Insert(ctx, collection, data)
	if err != nil {
		return nil, fmt.Errorf("failed to insert into milvus: %w", err)
	}

	// 将 int64 ID 转换为 string
	stringIDs := make([]string, len(ids))
	for i, id := range ids {
		stringIDs[i] = fmt.Sprintf("%d", id)
	}

	return stringIDs, nil
}

// Search 执行向量相似度搜索。
// documentID 非空时附加 document_id 过滤表达式。
func (s *MilvusStore) Search(ctx context.Context, collection string, embedding []float32, topK int, documentID string) ([]*SearchResult, error) {
	expr := ""
	if documentID != "" {
		expr = fmt.Sprintf("document_id == %q", documentID)
	}

	results, err := s.client.Search(ctx, collection, embedding, topK, expr, chunkOutputFields)
	if err != nil {
		return nil, fmt.Errorf("failed to search milvus: %w", err)
	}

	searchResults := make([]*SearchResult, 0, len(results))
	for _, r := range results {
		sr := &SearchResult{Score: r.Score}
		if v, ok := r.Metadata["document_id"].(string); ok {
			sr.DocumentID = v
		}
		if v, ok := r.Metadata["filename"].(string); ok {
			sr.Filename = v
		}
		if v, ok := r.Metadata["chunk_index"].(int64); ok {
			sr.ChunkIndex = int(v)
		}
		if v, ok := r.Metadata["content"].(string); ok {
			sr.Content = v
		}
		searchResults = append(searchResults, sr)
	}

	return searchResults, nil
}

// GetChunks 按块序号升序返回指定文档的全部块。
func (s *MilvusStore) GetChunks(ctx context.Context, collection string, documentID string) ([]*Chunk, error) {
	expr := fmt.Sprintf("document_id == %q", documentID)
	rows, err := s.client.Query(ctx, collection, expr, chunkOutputFields, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}

	chunks := make([]*Chunk, 0, len(rows))
	for _, row := range rows {
		chunk := &Chunk{}
		if v, ok := row["document_id"].(string); ok {
			chunk.DocumentID = v
		}
		if v, ok := row["filename"].(string); ok {
			chunk.Filename = v
		}
		if v, ok := row["chunk_index"].(int64); ok {
			chunk.ChunkIndex = int(v)
		}
		if v, ok := row["content"].(string); ok {
			chunk.Content = v
		}
		chunks = append(chunks, chunk)
	}

	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].ChunkIndex < chunks[j].ChunkIndex
	})

	return chunks, nil
}

// ListDocumentIDs 返回集合中出现过的文档 ID 到文件名的映射。
func (s *MilvusStore) ListDocumentIDs(ctx context.Context, collection string) (map[string]string, error) {
	rows, err := s.client.Query(ctx, collection, "document_id != \"\"", []string{"document_id", "filename"}, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	docs := make(map[string]string)
	for _, row := range rows {
		id, ok := row["document_id"].(string)
		if !ok || id == "" {
			continue
		}
		name, _ := row["filename"].(string)
		docs[id] = name
	}

	return docs, nil
}

// DeleteDocument 删除指定文档的全部块。
func (s *MilvusStore) DeleteDocument(ctx context.Context, collection string, documentID string) error {
	expr := fmt.Sprintf("document_id == %q", documentID)
	if err := s.client.DeleteByExpr(ctx, collection, expr); err != nil {
		return fmt.Errorf("failed to delete document chunks: %w", err)
	}
	return nil
}

// GetStats 获取集合统计信息。
func (s *MilvusStore) GetStats(ctx context.Context, collection string) (int64, error) {
	return s.client.GetCollectionStats(ctx, collection)
}

// Close 关闭 Milvus 连接。
func (s *MilvusStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

// 确保 MilvusStore 实现了 VectorStore 接口。
var _ VectorStore = (*MilvusStore)(nil)
