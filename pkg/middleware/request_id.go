package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderXRequestID is the request ID header name.
const HeaderXRequestID = "X-Request-ID"

// RequestIDConfig defines the config for RequestID middleware.
type RequestIDConfig struct {
	// Header is the header name to use for request ID.
	// Default: "X-Request-ID"
	Header string

	// Generator is the function to generate request IDs.
	// Default: UUID v4
	Generator func() string

	// ContextKey is the key to store request ID in the Gin context.
	// Default: "request_id"
	ContextKey string
}

// DefaultRequestIDConfig is the default RequestID middleware config.
var DefaultRequestIDConfig = RequestIDConfig{
	Header:     HeaderXRequestID,
	Generator:  uuid.NewString,
	ContextKey: "request_id",
}

// RequestID returns a middleware that adds a unique request ID to each request.
// The request ID is added to the response header and the Gin context.
// An incoming X-Request-ID header is passed through unchanged.
func RequestID() gin.HandlerFunc {
	return RequestIDWithConfig(DefaultRequestIDConfig)
}

// RequestIDWithConfig returns a RequestID middleware with custom config.
func RequestIDWithConfig(config RequestIDConfig) gin.HandlerFunc {
	if config.Header == "" {
		config.Header = DefaultRequestIDConfig.Header
	}
	if config.Generator == nil {
		config.Generator = DefaultRequestIDConfig.Generator
	}
	if config.ContextKey == "" {
		config.ContextKey = DefaultRequestIDConfig.ContextKey
	}

	return func(c *gin.Context) {
		requestID := c.GetHeader(config.Header)
		if requestID == "" {
			requestID = config.Generator()
		}

		c.Set(config.ContextKey, requestID)
		c.Header(config.Header, requestID)

		c.Next()
	}
}

// GetRequestID retrieves the request ID from the Gin context.
func GetRequestID(c *gin.Context) string {
	if id, ok := c.Get(DefaultRequestIDConfig.ContextKey); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
