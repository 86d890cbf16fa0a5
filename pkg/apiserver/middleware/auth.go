package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hireflow/hireflow/pkg/auth"
	"github.com/hireflow/hireflow/pkg/config"
)

// Auth requires a bearer token on every request. When a signing secret is
// configured the token is validated and the admin identity is attached to the
// request context for status-change attribution.
func Auth(cfg config.AuthConfig) gin.HandlerFunc {
	var manager *auth.TokenManager
	if cfg.JWTSecret != "" {
		manager = auth.NewTokenManager([]byte(cfg.JWTSecret), cfg.TokenTTL)
	}

	return func(c *gin.Context) {
		authorization := c.GetHeader("Authorization")
		if authorization == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}
		parts := strings.SplitN(authorization, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization"})
			return
		}
		token := strings.TrimSpace(parts[1])
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		if manager != nil {
			claims, err := manager.ValidateToken(token)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			c.Set("admin_id", claims.AdminID)
		}

		c.Next()
	}
}
