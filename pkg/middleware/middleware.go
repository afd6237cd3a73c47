// Package middleware provides common Gin middleware for the DocQA platform.
//
// This package includes:
//   - Recovery: Panic recovery with JSON error response
//   - RequestID: Adds unique request ID to each request
//   - Logger: Structured request logging
//   - CORS: Cross-Origin Resource Sharing support
//   - Timeout: Request timeout handling
package middleware
