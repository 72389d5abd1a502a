package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"serenity/config"
	"serenity/utils"
)

// AdminAuthMiddleware guards the admin dashboard endpoints with a
// static API key. Full user authentication is delegated to an external
// provider in front of this service.
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := config.AppConfig.AdminAPIKey
		provided := c.GetHeader("X-Admin-Key")
		if expected == "" ||
			subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) != 1 {
			utils.JSONError(c, http.StatusUnauthorized, "unauthorized", "invalid admin key")
			c.Abort()
			return
		}
		c.Next()
	}
}
