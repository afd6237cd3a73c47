package store

import (
	"context"
)

// Chunk 表示待入库的文档块。
type Chunk struct {
	// DocumentID 所属文档 ID。
	DocumentID string
	// Filename 原始文件名。
	Filename string
	// ChunkIndex 块在文档中的序号。
	ChunkIndex int
	// Content 块文本内容。
	Content string
	// Embedding 嵌入向量。
	Embedding []float32
}

// SearchResult 表示检索结果。
type SearchResult struct {
	// DocumentID 所属文档 ID。
	DocumentID string
	// Filename 原始文件名。
	Filename string
	// ChunkIndex 块在文档中的序号。
	ChunkIndex int
	// Content 块文本内容。
	Content string
	// Score 相似度分数。
	Score float32
}

// CollectionConfig 集合配置。
type CollectionConfig struct {
	// Name 集合名称。
	Name string
	// Description 集合描述。
	Description string
	// Dimension 向量维度。
	Dimension int
}

// VectorStore 定义向量索引存储接口。
type VectorStore interface {
	// CreateCollection 创建集合，已存在时为空操作。
	CreateCollection(ctx context.Context, config *CollectionConfig) error

	// Insert 批量插入文档块。
	Insert(ctx context.Context, collection string, chunks []*Chunk) ([]string, error)

	// Search 向量相似度搜索。documentID 非空时仅在该文档内检索。
	Search(ctx context.Context, collection string, embedding []float32, topK int, documentID string) ([]*SearchResult, error)

	// GetChunks 按块序号升序返回指定文档的全部块。
	GetChunks(ctx context.Context, collection string, documentID string) ([]*Chunk, error)

	// ListDocumentIDs 返回集合中出现过的文档 ID 与文件名。
	ListDocumentIDs(ctx context.Context, collection string) (map[string]string, error)

	// DeleteDocument 删除指定文档的全部块。
	DeleteDocument(ctx context.Context, collection string, documentID string) error

	// GetStats 获取集合中的实体总数。
	GetStats(ctx context.Context, collection string) (int64, error)

	// Close 关闭连接。
	Close(ctx context.Context) error
}
