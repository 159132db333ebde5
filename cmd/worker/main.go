// Package main runs the background reconcile worker.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/workhub-app/workhub-backend/config"
	"github.com/workhub-app/workhub-backend/internal/bootstrap"
	"github.com/workhub-app/workhub-backend/internal/lifecycle"
	"github.com/workhub-app/workhub-backend/internal/logger"
	"github.com/workhub-app/workhub-backend/internal/reconcile"
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

	if !cfg.Reconcile.Enabled {
		log.Infow("reconcile disabled, nothing to do")
		return
	}

	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{
		DSN:      postgres.DSN(&cfg.Database),
		MaxConns: 2,
	})
	if err != nil {
		log.Errorw("database init failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	db := bootstrap.SQLDB(pool)
	defer db.Close()

	rec := reconcile.New(db, lifecycle.NewPostgresStore(db), log)
	sched := reconcile.NewScheduler(rec, log)
	if err := sched.Start(cfg.Reconcile.Schedule); err != nil {
		log.Errorw("scheduler init failed", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sched.Stop(stopCtx)
	log.Infow("worker stopped")
}
