package http

import (
	"time"

	"github.com/workhub-app/workhub-backend/internal/projects/service"
)

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	svc *service.ProjectService
}

func New(svc *service.ProjectService) *Handler {
	return &Handler{svc: svc}
}

type createReq struct {
	Title       string    `json:"project_title" binding:"required"`
	Description string    `json:"project_desc"`
	Deadline    time.Time `json:"project_deadline" binding:"required"`
	Fee         float64   `json:"project_fee"`
}
