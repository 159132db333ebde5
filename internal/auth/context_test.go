package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRoleRouter(uid, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if uid != "" {
			c.Set(CtxUserID, uid)
			c.Set(CtxRole, role)
		}
		c.Next()
	})
	r.GET("/owner-only", RequireRole("owner"), func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})
	return r
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name string
		uid  string
		role string
		want int
	}{
		{"owner passes", "u1", "owner", http.StatusOK},
		{"seeker forbidden", "u2", "seeker", http.StatusForbidden},
		{"anonymous unauthorized", "", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/owner-only", nil)
			newRoleRouter(tt.uid, tt.role).ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
