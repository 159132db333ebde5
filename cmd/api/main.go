// Package main runs the workhub HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/workhub-app/workhub-backend/config"
	"github.com/workhub-app/workhub-backend/internal/api/http/middleware"
	"github.com/workhub-app/workhub-backend/internal/auth/identity"
	"github.com/workhub-app/workhub-backend/internal/bootstrap"
	"github.com/workhub-app/workhub-backend/internal/logger"
	"github.com/workhub-app/workhub-backend/internal/storage/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.App.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	bootstrap.SetGinMode(cfg.App.Environment)

	if cfg.Database.AutoMigrate {
		mdb, err := postgres.NewConnection(ctx, &cfg.Database)
		if err != nil {
			log.Errorw("migration connection failed", "error", err)
			os.Exit(1)
		}
		err = postgres.Migrate(ctx, mdb)
		if err != nil {
			_ = mdb.Close()
			log.Errorw("migrations failed", "error", err)
			os.Exit(1)
		}
		if v, err := postgres.Version(ctx, mdb); err == nil {
			log.Infow("schema up to date", "version", v)
		}
		_ = mdb.Close()
	}

	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{
		DSN:      postgres.DSN(&cfg.Database),
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		log.Errorw("database init failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	db := bootstrap.SQLDB(pool)
	defer db.Close()

	rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		log.Errorw("redis init failed", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	verifier, err := identity.New(ctx, &cfg.Auth)
	if err != nil {
		log.Errorw("identity provider init failed", "error", err)
		os.Exit(1)
	}

	coord, err := bootstrap.NewCoordinator(cfg, db, rdb, log)
	if err != nil {
		log.Errorw("lifecycle init failed", "error", err)
		os.Exit(1)
	}

	applyLimit := middleware.NewPerUserLimiter(cfg.Server.ApplyRate, cfg.Server.ApplyBurst)
	go sweepLimiter(ctx, applyLimit)

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		Config:      cfg,
		Log:         log,
		Pool:        pool,
		DB:          db,
		Redis:       rdb,
		Verifier:    verifier,
		Coordinator: coord,
		ApplyLimit:  applyLimit,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.RequestTimeout,
	}

	go func() {
		log.Infow("listening", "addr", srv.Addr, "env", cfg.App.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("failed to start server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnw("server shutdown timeout", "timeout", cfg.Server.ShutdownTimeout, "error", err)
	}

	// let fire-and-forget workspace inserts of the sequential strategy land
	if w, ok := coord.(interface{ Wait() }); ok {
		done := make(chan struct{})
		go func() {
			w.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-shutdownCtx.Done():
			log.Warnw("pending workspace inserts abandoned at shutdown")
		}
	}
	log.Infow("server stopped")
}

func sweepLimiter(ctx context.Context, l *middleware.PerUserLimiter) {
	t := time.NewTicker(10 * time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.Sweep(30 * time.Minute)
		}
	}
}
