package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
)

// RecoveryConfig defines the config for Recovery middleware.
type RecoveryConfig struct {
	// StackTrace enables logging the stack trace on panic.
	// Default: true
	StackTrace bool
}

// DefaultRecoveryConfig is the default Recovery middleware config.
var DefaultRecoveryConfig = RecoveryConfig{
	StackTrace: true,
}

// Recovery returns a middleware that recovers from panics and responds
// with a JSON 500 error.
func Recovery() gin.HandlerFunc {
	return RecoveryWithConfig(DefaultRecoveryConfig)
}

// RecoveryWithConfig returns a Recovery middleware with custom config.
func RecoveryWithConfig(config RecoveryConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				fields := []interface{}{
					"panic", r,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				}
				if config.StackTrace {
					fields = append(fields, "stack", string(debug.Stack()))
				}
				logger.Errorw("panic recovered", fields...)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code":    http.StatusInternalServerError,
					"message": "Internal server error",
				})
			}
		}()

		c.Next()
	}
}
