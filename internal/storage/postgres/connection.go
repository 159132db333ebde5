package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/workhub-app/workhub-backend/config"
	_ "github.com/lib/pq"
)

// NewConnection opens a lib/pq connection. It backs schema migrations and
// the CLI; request traffic goes through the pgx pool.
func NewConnection(ctx context.Context, cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)

	return db, nil
}
