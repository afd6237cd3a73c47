package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/docqa/internal/docqa/biz"
	"github.com/kart-io/docqa/internal/model"
	"github.com/kart-io/docqa/pkg/utils/errors"
	"github.com/kart-io/docqa/pkg/utils/json"
)

// fakeService 测试用的固定返回服务实现。
type fakeService struct {
	uploadResult   *model.UploadResult
	uploadErr      error
	chatResult     *model.QueryResult
	chatErr        error
	searchResults  []*model.SearchResult
	searchErr      error
	docs           []*model.Document
	doc            *model.Document
	docErr         error
	chunks         []*model.Chunk
	stats          map[string]any
	deleteErr      error
	purgeCalled    bool
	lastMessage    string
	lastDocumentID string
	lastDeletedID  string
	lastFilename   string
	lastContent    []byte
}

func (f *fakeService) Upload(_ context.Context, content []byte, filename string) (*model.UploadResult, error) {
	f.lastContent = content
	f.lastFilename = filename
	return f.uploadResult, f.uploadErr
}

func (f *fakeService) Chat(_ context.Context, message, documentID string) (*model.QueryResult, error) {
	f.lastMessage = message
	f.lastDocumentID = documentID
	return f.chatResult, f.chatErr
}

func (f *fakeService) Search(_ context.Context, _ string, _ int) ([]*model.SearchResult, error) {
	return f.searchResults, f.searchErr
}

func (f *fakeService) ListDocuments(_ context.Context) []*model.Document {
	return f.docs
}

func (f *fakeService) GetDocument(_ context.Context, _ string) (*model.Document, error) {
	return f.doc, f.docErr
}

func (f *fakeService) DeleteDocument(_ context.Context, documentID string) error {
	f.lastDeletedID = documentID
	return f.deleteErr
}

func (f *fakeService) GetChunks(_ context.Context, _ string) ([]*model.Chunk, error) {
	return f.chunks, nil
}

func (f *fakeService) GetStats(_ context.Context) (map[string]any, error) {
	return f.stats, nil
}

func (f *fakeService) PurgeCache(_ context.Context) error {
	f.purgeCalled = true
	return nil
}

var _ biz.Service = (*fakeService)(nil)

func newTestRouter(svc biz.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewDocQAHandler(svc)

	v1 := r.Group("/v1/docqa")
	v1.POST("/upload", h.Upload)
	v1.POST("/chat", h.Chat)
	v1.POST("/search", h.Search)
	v1.GET("/documents", h.ListDocuments)
	v1.GET("/documents/:id", h.GetDocument)
	v1.GET("/documents/:id/chunks", h.GetChunks)
	v1.DELETE("/documents/:id", h.DeleteDocument)
	v1.GET("/stats", h.Stats)
	v1.POST("/cache/purge", h.PurgeCache)
	return r
}

func TestUploadHandler(t *testing.T) {
	t.Run("成功上传", func(t *testing.T) {
		svc := &fakeService{uploadResult: &model.UploadResult{
			DocumentID:  "doc-1",
			Filename:    "report.pdf",
			Status:      model.StatusProcessed,
			TotalChunks: 3,
		}}
		r := newTestRouter(svc)

		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, err := writer.CreateFormFile("file", "report.pdf")
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4 fake"))
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/v1/docqa/upload", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "report.pdf", svc.lastFilename)
		assert.Equal(t, []byte("%PDF-1.4 fake"), svc.lastContent)

		var resp SuccessResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 0, resp.Code)
	})

	t.Run("缺少 file 字段返回 400", func(t *testing.T) {
		r := newTestRouter(&fakeService{})

		req := httptest.NewRequest(http.MethodPost, "/v1/docqa/upload", strings.NewReader("no file"))
		req.Header.Set("Content-Type", "multipart/form-data; boundary=xxx")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("非 PDF 上传映射为 400", func(t *testing.T) {
		svc := &fakeService{uploadErr: errors.ErrDocQAUnsupportedType}
		r := newTestRouter(svc)

		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, _ := writer.CreateFormFile("file", "notes.txt")
		_, _ = part.Write([]byte("text"))
		_ = writer.Close()

		req := httptest.NewRequest(http.MethodPost, "/v1/docqa/upload", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, errors.ErrDocQAUnsupportedType.HTTPStatus(), w.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, errors.ErrDocQAUnsupportedType.Code, resp.Code)
	})
}

func TestChatHandler(t *testing.T) {
	t.Run("正常问答", func(t *testing.T) {
		svc := &fakeService{chatResult: &model.QueryResult{
			Answer:   "Revenue was 10M.",
			Sources:  []model.ChunkSource{{Content: "Revenue was 10M.", Filename: "report.pdf", Score: 0.95}},
			Metadata: model.QueryMetadata{ContextChunksFound: 1, QueryType: "rag"},
		}}
		r := newTestRouter(svc)

		req := httptest.NewRequest(http.MethodPost, "/v1/docqa/chat",
			strings.NewReader(`{"message":"what was the revenue?","document_id":"doc-1"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "what was the revenue?", svc.lastMessage)
		assert.Equal(t, "doc-1", svc.lastDocumentID)
		assert.Contains(t, w.Body.String(), "Revenue was 10M.")
	})

	t.Run("空消息也走正常流程", func(t *testing.T) {
		// 空消息的固定答案由 Biz 层处理，Handler 不拦截
		svc := &fakeService{chatResult: &model.QueryResult{
			Answer:   "Please provide a question about your uploaded documents.",
			Metadata: model.QueryMetadata{Error: "Empty message"},
		}}
		r := newTestRouter(svc)

		req := httptest.NewRequest(http.MethodPost, "/v1/docqa/chat", strings.NewReader(`{"message":""}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Please provide a question")
	})

	t.Run("非法 JSON 返回 400", func(t *testing.T) {
		r := newTestRouter(&fakeService{})

		req := httptest.NewRequest(http.MethodPost, "/v1/docqa/chat", strings.NewReader("{broken"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("问答超时返回 408", func(t *testing.T) {
		svc := &fakeService{chatErr: errors.ErrDocQAQueryTimeout.WithCause(context.DeadlineExceeded)}
		r := newTestRouter(svc)

		req := httptest.NewRequest(http.MethodPost, "/v1/docqa/chat",
			strings.NewReader(`{"message":"a very slow question"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestTimeout, w.Code)
		assert.Contains(t, w.Body.String(), "Chat timeout")
	})
}

func TestSearchHandler(t *testing.T) {
	t.Run("正常检索", func(t *testing.T) {
		svc := &fakeService{searchResults: []*model.SearchResult{
			{DocumentID: "doc-1", Filename: "a.pdf", Content: "alpha", Score: 0.8},
		}}
		r := newTestRouter(svc)

		req := httptest.NewRequest(http.MethodPost, "/v1/docqa/search",
			strings.NewReader(`{"query":"alpha","top_k":3}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "alpha")
	})

	t.Run("缺少 query 返回 400", func(t *testing.T) {
		r := newTestRouter(&fakeService{})

		req := httptest.NewRequest(http.MethodPost, "/v1/docqa/search", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDocumentHandlers(t *testing.T) {
	t.Run("文档列表", func(t *testing.T) {
		svc := &fakeService{docs: []*model.Document{
			{ID: "doc-1", Filename: "a.pdf"},
			{ID: "doc-2", Filename: "b.pdf"},
		}}
		r := newTestRouter(svc)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/docqa/documents", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "doc-1")
		assert.Contains(t, w.Body.String(), "doc-2")
	})

	t.Run("文档不存在返回 404", func(t *testing.T) {
		svc := &fakeService{docErr: errors.ErrDocQADocumentNotFound}
		r := newTestRouter(svc)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/docqa/documents/missing", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("删除文档", func(t *testing.T) {
		svc := &fakeService{}
		r := newTestRouter(svc)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/docqa/documents/doc-1", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "doc-1", svc.lastDeletedID)
		assert.Contains(t, w.Body.String(), "Document deleted successfully")
	})

	t.Run("删除不存在的文档返回 404", func(t *testing.T) {
		svc := &fakeService{deleteErr: errors.ErrDocQADocumentNotFound}
		r := newTestRouter(svc)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/docqa/documents/missing", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("文档块列表", func(t *testing.T) {
		svc := &fakeService{chunks: []*model.Chunk{
			{DocumentID: "doc-1", ChunkIndex: 0, Content: "hello"},
		}}
		r := newTestRouter(svc)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/docqa/documents/doc-1/chunks", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "hello")
	})
}

func TestStatsAndPurgeHandlers(t *testing.T) {
	svc := &fakeService{stats: map[string]any{"chunk_count": int64(42)}}
	r := newTestRouter(svc)

	t.Run("统计信息", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/docqa/stats", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "chunk_count")
	})

	t.Run("清空缓存", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/docqa/cache/purge", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, svc.purgeCalled)
		assert.Contains(t, w.Body.String(), "Cache cleared successfully")
	})
}
