package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/workhub-app/workhub-backend/internal/applications/domain"
	"github.com/workhub-app/workhub-backend/internal/auth"
	authdomain "github.com/workhub-app/workhub-backend/internal/auth/domain"
	authservice "github.com/workhub-app/workhub-backend/internal/auth/service"
	"github.com/workhub-app/workhub-backend/internal/lifecycle"
	projdomain "github.com/workhub-app/workhub-backend/internal/projects/domain"
)

// Reader is the read side of the application repository.
type Reader interface {
	GetByID(ctx context.Context, id int64) (*domain.Application, error)
	ListBySeeker(ctx context.Context, seekerID string) ([]domain.Summary, error)
}

type ProjectLookup interface {
	GetOwned(ctx context.Context, id int64, ownerID string) (*projdomain.Project, error)
}

type ProfileLookup interface {
	SeekerProfile(ctx context.Context, seekerID string) (*authservice.Profile, error)
}

type Handler struct {
	lc       lifecycle.Coordinator
	reader   Reader
	projects ProjectLookup
	profiles ProfileLookup
	events   Subscriber
	log      *zap.SugaredLogger
}

// New wires the handler. events may be nil, which disables the event stream.
func New(lc lifecycle.Coordinator, reader Reader, projects ProjectLookup, profiles ProfileLookup, events Subscriber, log *zap.SugaredLogger) *Handler {
	return &Handler{
		lc:       lc,
		reader:   reader,
		projects: projects,
		profiles: profiles,
		events:   events,
		log:      log.Named("applications"),
	}
}

type decisionReq struct {
	Decision  string `json:"decision" binding:"required"`
	ProjectID int64  `json:"project_id" binding:"required"`
}

// Register attaches the apply and review routes. submitLimit throttles
// submissions and may be nil.
func (h *Handler) Register(projects, applications *gin.RouterGroup, submitLimit gin.HandlerFunc) {
	submit := []gin.HandlerFunc{auth.RequireRole("seeker")}
	if submitLimit != nil {
		submit = append(submit, submitLimit)
	}
	projects.POST("/:id/applications", append(submit, h.submit)...)
	projects.GET("/:id/applicant", auth.RequireRole("owner"), h.applicant)
	projects.GET("/:id/events", auth.RequireRole("owner"), h.streamEvents)

	applications.GET("", auth.RequireRole("seeker"), h.listMine)
	applications.GET("/:id", h.get)
	applications.POST("/:id/decision", auth.RequireRole("owner"), h.decide)
}

func (h *Handler) submit(c *gin.Context) {
	projectID, ok := pathID(c, "invalid project id")
	if !ok {
		return
	}
	app, err := h.lc.SubmitApplication(c.Request.Context(), auth.UserID(c), projectID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"application": app})
}

// applicant shows the owner the latest application on their project
// together with the seeker's profile.
func (h *Handler) applicant(c *gin.Context) {
	projectID, ok := pathID(c, "invalid project id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.projects.GetOwned(ctx, projectID, auth.UserID(c)); err != nil {
		h.writeError(c, err)
		return
	}

	app, err := h.lc.ResolvePendingApplication(ctx, projectID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	profile, err := h.profiles.SeekerProfile(ctx, app.SeekerID)
	if err != nil && !errors.Is(err, authdomain.ErrUserNotFound) {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"application": app, "seeker": profile})
}

func (h *Handler) listMine(c *gin.Context) {
	items, err := h.reader.ListBySeeker(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if items == nil {
		items = []domain.Summary{}
	}
	c.JSON(http.StatusOK, gin.H{"applications": items})
}

// get is visible to the applicant and to the project's owner.
func (h *Handler) get(c *gin.Context) {
	id, ok := pathID(c, "invalid application id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	app, err := h.reader.GetByID(ctx, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if app.SeekerID != auth.UserID(c) {
		if _, err := h.projects.GetOwned(ctx, app.ProjectID, auth.UserID(c)); err != nil {
			if errors.Is(err, projdomain.ErrNotOwner) {
				// do not reveal other people's applications
				err = domain.ErrNotFound
			}
			h.writeError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"application": app})
}

func (h *Handler) decide(c *gin.Context) {
	id, ok := pathID(c, "invalid application id")
	if !ok {
		return
	}
	var req decisionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
		return
	}
	decision, err := domain.ParseDecision(req.Decision)
	if err != nil {
		h.writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.projects.GetOwned(ctx, req.ProjectID, auth.UserID(c)); err != nil {
		h.writeError(c, err)
		return
	}
	app, err := h.reader.GetByID(ctx, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if app.ProjectID != req.ProjectID {
		h.writeError(c, domain.ErrProjectMismatch)
		return
	}

	out, err := h.lc.DecideApplication(ctx, id, decision, req.ProjectID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func pathID(c *gin.Context, msg string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
	case errors.Is(err, projdomain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
	case errors.Is(err, projdomain.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidDecision):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrAlreadyDecided),
		errors.Is(err, domain.ErrDuplicate),
		errors.Is(err, domain.ErrProjectMismatch),
		errors.Is(err, lifecycle.ErrProjectNotAvailable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Errorw("application request failed", "path", c.FullPath(), "user_id", auth.UserID(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
