package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/workhub-app/workhub-backend/internal/auth/domain"
)

const (
	sessionKeyPrefix = "workhub:session:" // workhub:session:{session_id}
	userSetPrefix    = "workhub:user:"    // workhub:user:{user_id}:sessions
)

// Manager keeps signed-in sessions in Redis. A session is started at
// sign-in, its TTL slides on every authenticated request, and it ends at
// sign-out.
type Manager struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(client *redis.Client, ttl time.Duration) *Manager {
	return &Manager{client: client, ttl: ttl, now: time.Now}
}

func (m *Manager) sessionKey(id string) string { return sessionKeyPrefix + id }
func (m *Manager) userKey(uid string) string   { return userSetPrefix + uid + ":sessions" }

// Start creates a session for the user.
func (m *Manager) Start(ctx context.Context, userID string, role domain.Role) (*domain.Session, error) {
	now := m.now()
	s := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      role,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}

	pipe := m.client.TxPipeline()
	pipe.Set(ctx, m.sessionKey(s.ID), data, m.ttl)
	pipe.SAdd(ctx, m.userKey(userID), s.ID)
	pipe.Expire(ctx, m.userKey(userID), m.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	return s, nil
}

// Get returns a live session.
func (m *Manager) Get(ctx context.Context, id string) (*domain.Session, error) {
	data, err := m.client.Get(ctx, m.sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	var s domain.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &s, nil
}

// Refresh extends a live session by the configured TTL.
func (m *Manager) Refresh(ctx context.Context, id string) (*domain.Session, error) {
	s, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.ExpiresAt = m.now().Add(m.ttl)
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}

	pipe := m.client.TxPipeline()
	pipe.Set(ctx, m.sessionKey(id), data, m.ttl)
	pipe.Expire(ctx, m.userKey(s.UserID), m.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	return s, nil
}

// End removes one session. Ending an unknown session is not an error.
func (m *Manager) End(ctx context.Context, id string) error {
	s, err := m.Get(ctx, id)
	if err == domain.ErrSessionNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	pipe := m.client.TxPipeline()
	pipe.Del(ctx, m.sessionKey(id))
	pipe.SRem(ctx, m.userKey(s.UserID), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

// EndAll signs the user out everywhere.
func (m *Manager) EndAll(ctx context.Context, userID string) (int, error) {
	ids, err := m.client.SMembers(ctx, m.userKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("list sessions: %w", err)
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, m.sessionKey(id))
	}
	keys = append(keys, m.userKey(userID))
	if err := m.client.Del(ctx, keys...).Err(); err != nil {
		return 0, fmt.Errorf("end sessions: %w", err)
	}
	return len(ids), nil
}
