// Package router provides DocQA service routing.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/docqa/internal/docqa/handler"
	"github.com/kart-io/docqa/internal/docqa/metrics"
	"github.com/kart-io/docqa/pkg/middleware"
)

// Register registers the DocQA service routes.
func Register(engine *gin.Engine, docqaHandler *handler.DocQAHandler) {
	logger.Info("Registering DocQA routes...")

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	engine.GET("/metrics", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/plain; version=0.0.4; charset=utf-8",
			[]byte(metrics.GetMetrics().Export("docqa", "service")))
	})

	v1 := engine.Group("/v1")
	{
		docqa := v1.Group("/docqa")
		{
			// Document endpoints
			docqa.POST("/upload", docqaHandler.Upload)
			docqa.GET("/documents", docqaHandler.ListDocuments)
			docqa.GET("/documents/:id", docqaHandler.GetDocument)
			docqa.GET("/documents/:id/chunks", docqaHandler.GetChunks)
			docqa.DELETE("/documents/:id", docqaHandler.DeleteDocument)

			// Query endpoints
			docqa.POST("/chat", middleware.Timeout(handler.ChatTimeout), docqaHandler.Chat)
			docqa.POST("/search", docqaHandler.Search)

			// Ops endpoints
			docqa.GET("/stats", docqaHandler.Stats)
			docqa.POST("/cache/purge", docqaHandler.PurgeCache)
		}
	}

	logger.Info("HTTP routes registered")
}
