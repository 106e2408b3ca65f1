package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Adarsh-MG101/VerifyCert2/internal/services"
)

const (
	// AuthCookieName carries the token for browser sessions.
	AuthCookieName = "auth_token"

	ContextUserIDKey = "userID"
	ContextRoleKey   = "role"
	ContextOrgIDKey  = "orgID"
)

// Auth validates the bearer token (or session cookie) and loads the caller's
// identity into the request context.
func Auth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if h := c.GetHeader("Authorization"); h != "" {
			if !strings.HasPrefix(h, "Bearer ") {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
				return
			}
			token = strings.TrimPrefix(h, "Bearer ")
		} else if v, err := c.Cookie(AuthCookieName); err == nil {
			token = v
		}

		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		claims, err := authService.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextRoleKey, claims.Role)
		c.Set(ContextOrgIDKey, claims.OrganizationID)
		c.Next()
	}
}

// RequireRole rejects callers whose role is not in the allowed set.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		role := c.GetString(ContextRoleKey)
		if _, ok := allowed[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		c.Next()
	}
}
