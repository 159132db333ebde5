package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/workhub-app/workhub-backend/config"
	"github.com/workhub-app/workhub-backend/internal/auth/domain"
)

const (
	stateKeyPrefix = "workhub:oauth:state:"
	stateTTL       = 10 * time.Minute

	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// GoogleUser is the subset of the userinfo response we rely on.
type GoogleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

// Google runs the authorization code flow. States are one-shot and live in
// Redis so any API replica can finish a flow another one started.
type Google struct {
	cfg         *oauth2.Config
	redis       *redis.Client
	userInfoURL string
}

func NewGoogle(cfg config.OAuthConfig, rdb *redis.Client) *Google {
	return &Google{
		cfg: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		redis:       rdb,
		userInfoURL: googleUserInfoURL,
	}
}

// AuthURL returns the consent page URL with a fresh state.
func (g *Google) AuthURL(ctx context.Context) (string, error) {
	state := uuid.NewString()
	if err := g.redis.Set(ctx, stateKeyPrefix+state, "1", stateTTL).Err(); err != nil {
		return "", fmt.Errorf("store oauth state: %w", err)
	}
	return g.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// Callback consumes the state, exchanges the code and fetches the profile.
func (g *Google) Callback(ctx context.Context, state, code string) (*GoogleUser, error) {
	if state == "" || code == "" {
		return nil, domain.ErrInvalidState
	}
	err := g.redis.GetDel(ctx, stateKeyPrefix+state).Err()
	if err == redis.Nil {
		return nil, domain.ErrInvalidState
	}
	if err != nil {
		return nil, fmt.Errorf("consume oauth state: %w", err)
	}

	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.cfg.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch userinfo: unexpected status %d", resp.StatusCode)
	}
	var u GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if u.Email == "" {
		return nil, fmt.Errorf("userinfo has no email")
	}
	return &u, nil
}
