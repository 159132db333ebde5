package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/workhub-app/workhub-backend/internal/auth"
	"github.com/workhub-app/workhub-backend/internal/kanban/domain"
	"github.com/workhub-app/workhub-backend/internal/kanban/service"
	wsdomain "github.com/workhub-app/workhub-backend/internal/workspaces/domain"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts board and activity routes on the API group.
func (h *Handler) Register(api *gin.RouterGroup) {
	api.GET("/workspaces/:id/boards", h.listBoards)
	api.POST("/workspaces/:id/boards", h.createBoard)

	boards := api.Group("/boards")
	boards.DELETE("/:id", h.deleteBoard)
	boards.GET("/:id/kanban", h.kanban)
	boards.GET("/:id/activities", h.listActivities)
	boards.POST("/:id/activities", h.createActivity)

	activities := api.Group("/activities")
	activities.PUT("/:id", h.updateActivity)
	activities.DELETE("/:id", h.deleteActivity)
}

type createBoardReq struct {
	Title string `json:"board_title" binding:"required"`
}

type createActivityReq struct {
	Name        string        `json:"activity_name" binding:"required"`
	Description *string       `json:"activity_desc"`
	Status      domain.Status `json:"activity_status"`
	StartDate   *time.Time    `json:"activity_startdate"`
	EndDate     *time.Time    `json:"activity_enddate"`
}

func (h *Handler) listBoards(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	items, err := h.svc.ListBoards(c.Request.Context(), auth.UserID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"boards": items})
}

func (h *Handler) createBoard(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req createBoardReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
		return
	}
	b, err := h.svc.CreateBoard(c.Request.Context(), auth.UserID(c), id, req.Title)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"board": b})
}

func (h *Handler) deleteBoard(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteBoard(c.Request.Context(), auth.UserID(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) kanban(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	cols, err := h.svc.Columns(c.Request.Context(), auth.UserID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"board_id": id, "columns": cols})
}

// listActivities returns the flat list, or columns with ?group=status.
func (h *Handler) listActivities(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if c.Query("group") == "status" {
		cols, err := h.svc.Group(ctx, auth.UserID(c), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"board_id": id, "columns": cols})
		return
	}
	items, err := h.svc.ListActivities(ctx, auth.UserID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": items})
}

func (h *Handler) createActivity(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req createActivityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
		return
	}
	a, err := h.svc.CreateActivity(c.Request.Context(), auth.UserID(c), domain.Activity{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		BoardID:     id,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"activity": a})
}

func (h *Handler) updateActivity(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var patch domain.ActivityPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
		return
	}
	a, err := h.svc.UpdateActivity(c.Request.Context(), auth.UserID(c), id, patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": a})
}

func (h *Handler) deleteActivity(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteActivity(c.Request.Context(), auth.UserID(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrBoardNotFound),
		errors.Is(err, domain.ErrActivityNotFound),
		errors.Is(err, wsdomain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidStatus), errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
