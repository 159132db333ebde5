package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/workhub-app/workhub-backend/internal/auth"
	"github.com/workhub-app/workhub-backend/internal/auth/domain"
	"github.com/workhub-app/workhub-backend/internal/auth/token"
)

// SessionRefresher slides a live session forward.
type SessionRefresher interface {
	Refresh(ctx context.Context, id string) (*domain.Session, error)
}

// RequireAuth validates the bearer access token, refreshes the session it
// belongs to and stores the caller in the gin context.
func RequireAuth(issuer *token.Issuer, sessions SessionRefresher, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := extractToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization token"})
			return
		}

		claims, err := issuer.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		s, err := sessions.Refresh(c.Request.Context(), claims.SessionID)
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			return
		case err != nil:
			log.Errorw("refresh session failed", "session_id", claims.SessionID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if s.UserID != claims.Subject {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(auth.CtxUserID, claims.Subject)
		c.Set(auth.CtxRole, string(claims.Role))
		c.Set(auth.CtxSessionID, claims.SessionID)
		c.Next()
	}
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
