package remotestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/supabase-community/postgrest-go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/workhub-app/workhub-backend/config"
)

// Error is an error answer from the store, carrying the PostgREST or
// SQLSTATE code when the body had one.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("remote store: %s: %s", e.Code, e.Message)
	}
	return "remote store: " + e.Message
}

// Client talks to the PostgREST endpoint of a hosted database.
type Client struct {
	rest    *postgrest.Client
	limiter *rate.Limiter
	log     *zap.SugaredLogger
}

func New(cfg config.RemoteStoreConfig, log *zap.SugaredLogger) *Client {
	base := strings.TrimRight(cfg.URL, "/")
	if !strings.HasPrefix(base, "http") {
		base = "https://" + base
	}
	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	rest := postgrest.NewClient(base+"/rest/v1", "public", map[string]string{
		"apikey":        cfg.ServiceKey,
		"Authorization": "Bearer " + cfg.ServiceKey,
	})
	return &Client{
		rest:    rest,
		limiter: rate.NewLimiter(limit, burst),
		log:     log.Named("remotestore"),
	}
}

// Insert adds row to table and decodes the stored rows into dest.
func (c *Client) Insert(ctx context.Context, table string, row, dest any) error {
	fb := c.rest.From(table).Insert(row, false, "", "representation", "")
	return c.execute(ctx, "insert", table, fb, dest)
}

// Select reads rows matching q into dest, which should be a slice pointer.
func (c *Client) Select(ctx context.Context, table string, q Query, dest any) error {
	fb := q.apply(c.rest.From(table).Select(q.columns(), "", false))
	return c.execute(ctx, "select", table, fb, dest)
}

// Update applies patch to rows matching filters.
func (c *Client) Update(ctx context.Context, table string, patch any, filters []Filter, dest any) error {
	if len(filters) == 0 {
		return fmt.Errorf("remote store: refusing unfiltered update of %s", table)
	}
	fb := applyFilters(c.rest.From(table).Update(patch, "representation", ""), filters)
	return c.execute(ctx, "update", table, fb, dest)
}

// Delete removes rows matching filters.
func (c *Client) Delete(ctx context.Context, table string, filters []Filter, dest any) error {
	if len(filters) == 0 {
		return fmt.Errorf("remote store: refusing unfiltered delete of %s", table)
	}
	fb := applyFilters(c.rest.From(table).Delete("representation", ""), filters)
	return c.execute(ctx, "delete", table, fb, dest)
}

// execute waits for the limiter, then runs the request. postgrest-go takes
// no context, so ctx is checked on both sides of the call.
func (c *Client) execute(ctx context.Context, op, table string, fb *postgrest.FilterBuilder, dest any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("remote store rate limit: %w", err)
	}

	start := time.Now()
	body, _, err := fb.Execute()
	c.log.Debugw("request", "op", op, "table", table, "took", time.Since(start), "error", err)
	if err != nil {
		return parseError(op, table, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if dest == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode %s rows: %w", table, err)
	}
	return nil
}

// postgrest-go reports error bodies as "(code) message".
var errorPattern = regexp.MustCompile(`^\(([^)]*)\) (.*)$`)

func parseError(op, table string, err error) error {
	if m := errorPattern.FindStringSubmatch(err.Error()); m != nil {
		return &Error{Code: m[1], Message: m[2]}
	}
	return fmt.Errorf("remote store %s %s: %w", op, table, err)
}
