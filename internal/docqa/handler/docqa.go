// Package handler provides HTTP handlers for the DocQA service.
package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/docqa/internal/docqa/biz"
	"github.com/kart-io/docqa/pkg/utils/errors"
)

// ChatTimeout 单次问答的最长处理时间，由路由层的超时中间件施加。
const ChatTimeout = 60 * time.Second

// DocQAHandler handles DocQA HTTP requests.
type DocQAHandler struct {
	service biz.Service
}

// NewDocQAHandler creates a new DocQAHandler.
func NewDocQAHandler(service biz.Service) *DocQAHandler {
	return &DocQAHandler{service: service}
}

// SuccessResponse is a standard success response.
type SuccessResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// writeError 将业务错误映射为 HTTP 响应。
func writeError(c *gin.Context, err error) {
	errno := errors.FromError(err)
	c.JSON(errno.HTTPStatus(), ErrorResponse{Code: errno.Code, Message: errno.MessageEN})
}

// Upload ingests an uploaded PDF document.
func (h *DocQAHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		writeError(c, errors.ErrDocQAInvalidRequest.WithCause(err))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(c, errors.ErrDocQAInvalidRequest.WithCause(err))
		return
	}

	result, err := h.service.Upload(c.Request.Context(), content, header.Filename)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Code: 0, Message: "success", Data: result})
}

// ChatRequest represents a chat request.
type ChatRequest struct {
	Message    string `json:"message"`
	DocumentID string `json:"document_id,omitempty"`
}

// Chat performs a RAG chat query over the uploaded documents.
// The request context carries the deadline installed by the timeout middleware.
func (h *DocQAHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.ErrDocQAInvalidRequest.WithCause(err))
		return
	}

	result, err := h.service.Chat(c.Request.Context(), req.Message, req.DocumentID)
	if err != nil {
		if errors.IsCode(err, errors.ErrDocQAQueryTimeout.Code) {
			c.JSON(http.StatusRequestTimeout, ErrorResponse{
				Code:    errors.ErrDocQAQueryTimeout.Code,
				Message: "Chat timeout: the request took too long to process. Please try again or simplify your question.",
			})
			return
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Code: 0, Message: "success", Data: result})
}

// SearchRequest represents a similarity search request.
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  int    `json:"top_k,omitempty"`
}

// Search performs a similarity search without answer generation.
func (h *DocQAHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.ErrDocQAInvalidRequest.WithCause(err))
		return
	}

	results, err := h.service.Search(c.Request.Context(), req.Query, req.TopK)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Code: 0, Message: "success", Data: results})
}

// ListDocuments lists all registered documents.
func (h *DocQAHandler) ListDocuments(c *gin.Context) {
	docs := h.service.ListDocuments(c.Request.Context())
	c.JSON(http.StatusOK, SuccessResponse{Code: 0, Message: "success", Data: docs})
}

// GetDocument returns a single document by ID.
func (h *DocQAHandler) GetDocument(c *gin.Context) {
	doc, err := h.service.GetDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Code: 0, Message: "success", Data: doc})
}

// DeleteDocument removes a document and its indexed chunks.
func (h *DocQAHandler) DeleteDocument(c *gin.Context) {
	if err := h.service.DeleteDocument(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Code: 0, Message: "Document deleted successfully"})
}

// GetChunks returns all chunks of a document.
func (h *DocQAHandler) GetChunks(c *gin.Context) {
	chunks, err := h.service.GetChunks(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Code: 0, Message: "success", Data: chunks})
}

// Stats returns service statistics.
func (h *DocQAHandler) Stats(c *gin.Context) {
	stats, err := h.service.GetStats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Code: 0, Message: "success", Data: stats})
}

// PurgeCache clears the query cache.
func (h *DocQAHandler) PurgeCache(c *gin.Context) {
	if err := h.service.PurgeCache(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Code: 0, Message: "Cache cleared successfully"})
}
