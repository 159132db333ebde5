package http

import (
	"github.com/gin-gonic/gin"

	"github.com/workhub-app/workhub-backend/internal/auth"
)

// Register attaches project routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("", auth.RequireRole("owner"), h.create)
	rg.GET("", auth.RequireRole("owner"), h.listMine)
	rg.GET("/search", auth.RequireRole("seeker"), h.search)
	rg.GET("/:id", h.get)
}
