package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxUserID    = "user_id"
	CtxRole      = "role"
	CtxSessionID = "session_id"
	CtxEmail     = "email"
)

// UserID returns the authenticated user's id set by the auth middleware.
func UserID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUserID))
}

// Role returns "owner", "seeker" or "" when unauthenticated.
func Role(c *gin.Context) string {
	return c.GetString(CtxRole)
}

// SessionID returns the session bound to the current access token.
func SessionID(c *gin.Context) string {
	return c.GetString(CtxSessionID)
}

// RequireRole rejects requests from users without the given role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			return
		}
		if Role(c) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "requires role " + role})
			return
		}
		c.Next()
	}
}
