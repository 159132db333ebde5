package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const projectEventChannelPrefix = "workhub:events:project:" // workhub:events:project:{project_id}

// Event types published after a committed transition.
const (
	EventApplicationSubmitted = "application.submitted"
	EventApplicationApproved  = "application.approved"
	EventApplicationRejected  = "application.rejected"
)

type Event struct {
	Type          string    `json:"type"`
	ProjectID     int64     `json:"project_id"`
	ApplicationID int64     `json:"application_id"`
	SeekerID      string    `json:"seeker_id,omitempty"`
	ProjectStatus string    `json:"project_status"`
	WorkspaceID   int64     `json:"workspace_id,omitempty"`
	At            time.Time `json:"at"`
}

// Publisher fans lifecycle events out to listeners.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// ProjectChannel is the Pub/Sub channel for one project's events.
func ProjectChannel(projectID int64) string {
	return fmt.Sprintf("%s%d", projectEventChannelPrefix, projectID)
}

type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.client.Publish(ctx, ProjectChannel(e.ProjectID), data).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// NopPublisher drops events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Subscribe streams one project's events until ctx is done. The channel is
// closed when the subscription ends.
func (p *RedisPublisher) Subscribe(ctx context.Context, projectID int64) (<-chan Event, error) {
	sub := p.client.Subscribe(ctx, ProjectChannel(projectID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var e Event
				if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
					continue
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
