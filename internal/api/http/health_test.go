package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func runHealth(t *testing.T, h *HealthHandler) (int, HealthResponse) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.RegisterRoutes(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestHealthCheck(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	redisPing := func(ctx context.Context) error { return rdb.Ping(ctx).Err() }

	up := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("refused") })

	code, resp := runHealth(t, NewHealthHandler("workhub", "1.0.0", up, redisPing))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "up", resp.DB)
	assert.Equal(t, "up", resp.Redis)

	code, resp = runHealth(t, NewHealthHandler("workhub", "1.0.0", down, redisPing))
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "down", resp.DB)

	mr.Close()
	code, resp = runHealth(t, NewHealthHandler("workhub", "1.0.0", nil, redisPing))
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "disabled", resp.DB)
	assert.Equal(t, "down", resp.Redis)
}
