package bootstrap

import (
	"database/sql"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/workhub-app/workhub-backend/config"
	"github.com/workhub-app/workhub-backend/internal/lifecycle"
	"github.com/workhub-app/workhub-backend/internal/remotestore"
)

// NewCoordinator builds the lifecycle strategy and backend named in cfg.
func NewCoordinator(cfg *config.Config, db *sql.DB, rdb *redis.Client, log *zap.SugaredLogger) (lifecycle.Coordinator, error) {
	var store lifecycle.Store
	switch cfg.Lifecycle.Backend {
	case "postgres":
		store = lifecycle.NewPostgresStore(db)
	case "remote":
		store = lifecycle.NewRemoteStore(remotestore.New(cfg.RemoteStore, log))
	default:
		return nil, fmt.Errorf("unknown lifecycle backend %q", cfg.Lifecycle.Backend)
	}

	var pub lifecycle.Publisher = lifecycle.NopPublisher{}
	if rdb != nil {
		pub = lifecycle.NewRedisPublisher(rdb)
	}

	c, err := lifecycle.New(cfg.Lifecycle.Mode, store, pub, log)
	if err != nil {
		return nil, err
	}
	log.Infow("lifecycle ready", "mode", cfg.Lifecycle.Mode, "backend", cfg.Lifecycle.Backend)
	return c, nil
}
