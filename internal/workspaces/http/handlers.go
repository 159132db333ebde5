package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/workhub-app/workhub-backend/internal/auth"
	"github.com/workhub-app/workhub-backend/internal/workspaces/domain"
)

// Store is the read side of the workspace repository.
type Store interface {
	ListForUser(ctx context.Context, userID string) ([]domain.Workspace, error)
	GetByID(ctx context.Context, id int64) (*domain.Workspace, error)
}

type Handler struct {
	store Store
}

func New(store Store) *Handler {
	return &Handler{store: store}
}

// Register attaches workspace routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.GET("/:id", h.get)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.store.ListForUser(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list workspaces"})
		return
	}
	if items == nil {
		items = []domain.Workspace{}
	}
	c.JSON(http.StatusOK, gin.H{"workspaces": items})
}

func (h *Handler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid workspace id"})
		return
	}
	w, err := h.store.GetByID(c.Request.Context(), id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "workspace not found"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load workspace"})
		return
	}
	if !w.HasMember(auth.UserID(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": domain.ErrNotMember.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"workspace": w})
}
