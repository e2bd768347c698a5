package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "storefront/internal/errors"
)

// APIKeyMiddleware creates a Gin middleware that validates the X-API-Key
// header against the configured key. It guards operator endpoints such as
// /metrics; when no key is configured the endpoint is unavailable.
func APIKeyMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			abortWithError(c, apperrors.ErrAPIKeyNotConfigured)
			return
		}
		key := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			abortWithError(c, apperrors.ErrInvalidAPIKey)
			return
		}
		c.Next()
	}
}
