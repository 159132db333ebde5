package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/workhub-app/workhub-backend/internal/auth"
	"github.com/workhub-app/workhub-backend/internal/auth/domain"
	"github.com/workhub-app/workhub-backend/internal/auth/service"
)

type Handler struct {
	svc *service.AuthService
	log *zap.SugaredLogger
}

func New(svc *service.AuthService, log *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, log: log.Named("auth")}
}

type signUpReq struct {
	IDToken   string  `json:"id_token" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	Email     string  `json:"email"`
	Role      string  `json:"role" binding:"required"`
	CV        *string `json:"cv"`
	Portfolio *string `json:"portfolio"`
}

type signInReq struct {
	IDToken string `json:"id_token" binding:"required"`
}

type profileReq struct {
	CV        *string `json:"cv"`
	Portfolio *string `json:"portfolio"`
}

// Register attaches the public auth routes and the ones that need a
// signed-in caller.
func (h *Handler) Register(public, protected *gin.RouterGroup) {
	public.POST("/auth/sign-up", h.signUp)
	public.POST("/auth/sign-in", h.signIn)
	public.GET("/auth/oauth/google", h.googleStart)
	public.GET("/auth/oauth/google/callback", h.googleCallback)

	protected.POST("/auth/sign-out", h.signOut)
	protected.GET("/me", h.me)
	protected.PUT("/me/profile", h.updateProfile)
}

func (h *Handler) signUp(c *gin.Context) {
	var req signUpReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	pair, err := h.svc.SignUp(c.Request.Context(), service.SignUpInput{
		IDToken:   req.IDToken,
		Name:      req.Name,
		Email:     req.Email,
		Role:      domain.Role(req.Role),
		CV:        req.CV,
		Portfolio: req.Portfolio,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pair)
}

func (h *Handler) signIn(c *gin.Context) {
	var req signInReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	pair, err := h.svc.SignIn(c.Request.Context(), req.IDToken)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// signOut ends the current session; ?all=true ends every session.
func (h *Handler) signOut(c *gin.Context) {
	all := c.Query("all") == "true"
	if err := h.svc.SignOut(c.Request.Context(), auth.UserID(c), auth.SessionID(c), all); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) me(c *gin.Context) {
	p, err := h.svc.Me(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req profileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	p, err := h.svc.UpdateProfile(c.Request.Context(), auth.UserID(c), req.CV, req.Portfolio)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"seeker_profile": p})
}

func (h *Handler) googleStart(c *gin.Context) {
	url, err := h.svc.GoogleAuthURL(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}

func (h *Handler) googleCallback(c *gin.Context) {
	if e := c.Query("error"); e != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": e})
		return
	}
	pair, err := h.svc.GoogleCallback(c.Request.Context(), c.Query("state"), c.Query("code"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
	case errors.Is(err, domain.ErrEmailNotRegistered):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, domain.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidRole), errors.Is(err, domain.ErrInvalidState):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotSeeker):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrOAuthDisabled):
		c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
	default:
		h.log.Errorw("auth request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
