package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nginxforge/nginxforge/internal/services"
)

// SessionCookieName is set by the auth handler on login and read here as a
// fallback for browser clients.
const SessionCookieName = "ngf_session"

// AuthMiddleware validates the bearer token (or session cookie) and stores
// the caller's identity in the request context.
func AuthMiddleware(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
			token = cookie
		} else {
			header := c.GetHeader("Authorization")
			if header == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
				return
			}
			token = strings.TrimPrefix(header, "Bearer ")
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// RequireRole aborts with 403 unless the authenticated user has the given
// role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if got, ok := c.Get("role"); !ok || got != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		c.Next()
	}
}
