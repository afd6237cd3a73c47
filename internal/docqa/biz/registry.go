package biz

import (
	"sort"
	"sync"

	"github.com/kart-io/docqa/internal/model"
)

// DocumentRegistry 维护已上传文档的内存元数据。
// 读写通过 RWMutex 保护，任何锁都不会跨越供应商调用持有。
type DocumentRegistry struct {
	mu   sync.RWMutex
	docs map[string]*model.Document
}

// NewDocumentRegistry 创建文档注册表实例。
func NewDocumentRegistry() *DocumentRegistry {
	return &DocumentRegistry{
		docs: make(map[string]*model.Document),
	}
}

// Register 登记或覆盖一个文档。
func (r *DocumentRegistry) Register(doc *model.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ID] = doc
}

// Remove 注销一个文档，返回其是否存在。
func (r *DocumentRegistry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.docs[id]; !ok {
		return false
	}
	delete(r.docs, id)
	return true
}

// Get 按 ID 查询文档，返回副本。
func (r *DocumentRegistry) Get(id string) (*model.Document, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.docs[id]
	if !ok {
		return nil, false
	}
	copied := *doc
	return &copied, true
}

// List 返回全部文档，按上传时间升序排列。
func (r *DocumentRegistry) List() []*model.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()

	docs := make([]*model.Document, 0, len(r.docs))
	for _, doc := range r.docs {
		copied := *doc
		docs = append(docs, &copied)
	}

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].UploadedAt.Equal(docs[j].UploadedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].UploadedAt.Before(docs[j].UploadedAt)
	})

	return docs
}

// Len 返回已登记的文档数。
func (r *DocumentRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}
