package bootstrap

import (
	"context"
	"database/sql"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/workhub-app/workhub-backend/config"
	httpapi "github.com/workhub-app/workhub-backend/internal/api/http"
	"github.com/workhub-app/workhub-backend/internal/api/http/middleware"
	apphttp "github.com/workhub-app/workhub-backend/internal/applications/http"
	apprepo "github.com/workhub-app/workhub-backend/internal/applications/repository"
	authhttp "github.com/workhub-app/workhub-backend/internal/auth/http"
	"github.com/workhub-app/workhub-backend/internal/auth/identity"
	authmw "github.com/workhub-app/workhub-backend/internal/auth/middleware"
	"github.com/workhub-app/workhub-backend/internal/auth/oauth"
	authrepo "github.com/workhub-app/workhub-backend/internal/auth/repository"
	authservice "github.com/workhub-app/workhub-backend/internal/auth/service"
	"github.com/workhub-app/workhub-backend/internal/auth/session"
	"github.com/workhub-app/workhub-backend/internal/auth/token"
	kanbanhttp "github.com/workhub-app/workhub-backend/internal/kanban/http"
	kanbanrepo "github.com/workhub-app/workhub-backend/internal/kanban/repository"
	kanbanservice "github.com/workhub-app/workhub-backend/internal/kanban/service"
	"github.com/workhub-app/workhub-backend/internal/lifecycle"
	projhttp "github.com/workhub-app/workhub-backend/internal/projects/http"
	projrepo "github.com/workhub-app/workhub-backend/internal/projects/repository"
	projservice "github.com/workhub-app/workhub-backend/internal/projects/service"
	wshttp "github.com/workhub-app/workhub-backend/internal/workspaces/http"
	wsrepo "github.com/workhub-app/workhub-backend/internal/workspaces/repository"
)

type RouterDeps struct {
	Config      *config.Config
	Log         *zap.SugaredLogger
	Pool        *pgxpool.Pool
	DB          *sql.DB
	Redis       *redis.Client
	Verifier    identity.Verifier
	Coordinator lifecycle.Coordinator
	ApplyLimit  *middleware.PerUserLimiter
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	cfg := dep.Config
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(dep.Log))
	r.Use(cors.New(corsConfig(cfg.App.CORSOrigins)))

	var pinger httpapi.Pinger
	if dep.Pool != nil {
		pinger = dep.Pool
	}
	healthHandler := httpapi.NewHealthHandler("workhub-backend", cfg.App.Version, pinger,
		func(ctx context.Context) error { return dep.Redis.Ping(ctx).Err() })
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")

	issuer := token.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
	sessions := session.NewManager(dep.Redis, cfg.Redis.SessionTTL)
	var google authservice.GoogleFlow
	if cfg.OAuth.Enabled() {
		google = oauth.NewGoogle(cfg.OAuth, dep.Redis)
	}
	authSvc := authservice.NewAuthService(authrepo.NewUserRepository(dep.DB), dep.Verifier, issuer, sessions, google)

	protected := api.Group("")
	protected.Use(authmw.RequireAuth(issuer, sessions, dep.Log))
	authhttp.New(authSvc, dep.Log).Register(api, protected)

	projSvc := projservice.NewProjectService(projrepo.NewProjectRepository(dep.DB))
	projectsGroup := protected.Group("/projects")
	projhttp.New(projSvc).Register(projectsGroup)

	var applyLimit gin.HandlerFunc
	if dep.ApplyLimit != nil {
		applyLimit = dep.ApplyLimit.Middleware()
	}
	var events apphttp.Subscriber
	if dep.Redis != nil {
		events = lifecycle.NewRedisPublisher(dep.Redis)
	}
	apphttp.New(dep.Coordinator, apprepo.NewApplicationRepository(dep.DB), projSvc, authSvc, events, dep.Log).
		Register(projectsGroup, protected.Group("/applications"), applyLimit)

	workspaces := wsrepo.NewWorkspaceRepository(dep.DB)
	wshttp.New(workspaces).Register(protected.Group("/workspaces"))

	kanbanSvc := kanbanservice.New(
		kanbanrepo.NewBoardRepository(dep.DB),
		kanbanrepo.NewActivityRepository(dep.DB),
		workspaces,
	)
	kanbanhttp.New(kanbanSvc).Register(protected)

	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
		c.AllowCredentials = false
	} else {
		c.AllowOrigins = origins
	}
	return c
}
