package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/workhub-app/workhub-backend/config"
	"github.com/workhub-app/workhub-backend/internal/auth/domain"
)

func setupGoogle(t *testing.T) (*Google, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-1","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(GoogleUser{ID: "g-1", Email: "ana@example.com", VerifiedEmail: true, Name: "Ana"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	g := NewGoogle(config.OAuthConfig{
		GoogleClientID:     "client",
		GoogleClientSecret: "secret",
		GoogleRedirectURL:  "http://localhost/callback",
	}, rdb)
	g.cfg.Endpoint = oauth2.Endpoint{
		AuthURL:   srv.URL + "/auth",
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	g.userInfoURL = srv.URL + "/userinfo"
	return g, mr
}

func stateOf(t *testing.T, raw string) string {
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u.Query().Get("state")
}

func TestGoogle_Flow(t *testing.T) {
	g, mr := setupGoogle(t)
	ctx := context.Background()

	authURL, err := g.AuthURL(ctx)
	require.NoError(t, err)
	state := stateOf(t, authURL)
	require.NotEmpty(t, state)
	assert.True(t, mr.Exists(stateKeyPrefix+state))

	u, err := g.Callback(ctx, state, "good-code")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.False(t, mr.Exists(stateKeyPrefix+state))

	_, err = g.Callback(ctx, state, "good-code")
	assert.ErrorIs(t, err, domain.ErrInvalidState, "state is one-shot")
}

func TestGoogle_StateIsFreshUUID(t *testing.T) {
	g, mr := setupGoogle(t)
	ctx := context.Background()

	first, err := g.AuthURL(ctx)
	require.NoError(t, err)
	second, err := g.AuthURL(ctx)
	require.NoError(t, err)

	a, b := stateOf(t, first), stateOf(t, second)
	assert.NotEqual(t, a, b)
	for _, s := range []string{a, b} {
		_, err := uuid.Parse(s)
		assert.NoError(t, err, s)
		assert.True(t, mr.Exists(stateKeyPrefix+s))
	}
}

func TestGoogle_CallbackRejects(t *testing.T) {
	g, mr := setupGoogle(t)
	ctx := context.Background()

	_, err := g.Callback(ctx, "unknown", "good-code")
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = g.Callback(ctx, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	authURL, err := g.AuthURL(ctx)
	require.NoError(t, err)
	_, err = g.Callback(ctx, stateOf(t, authURL), "bad-code")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidState)

	authURL, err = g.AuthURL(ctx)
	require.NoError(t, err)
	state := stateOf(t, authURL)
	mr.FastForward(stateTTL + 1)
	_, err = g.Callback(ctx, state, "good-code")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}
