package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/workhub-app/workhub-backend/internal/auth"
	"github.com/workhub-app/workhub-backend/internal/lifecycle"
)

// Subscriber streams lifecycle events for one project.
type Subscriber interface {
	Subscribe(ctx context.Context, projectID int64) (<-chan lifecycle.Event, error)
}

const keepAliveEvery = 15 * time.Second

// streamEvents pushes a project's lifecycle events to its owner using
// Server-Sent Events.
func (h *Handler) streamEvents(c *gin.Context) {
	projectID, ok := pathID(c, "invalid project id")
	if !ok {
		return
	}
	if h.events == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "event stream is not enabled"})
		return
	}

	// subscribe before reading the project so no transition falls between
	// the initial frame and the first event
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	events, err := h.events.Subscribe(ctx, projectID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	p, err := h.projects.GetOwned(ctx, projectID, auth.UserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	initial, _ := json.Marshal(gin.H{"project_id": p.ID, "project_status": p.Status})
	fmt.Fprintf(c.Writer, "event: initial\ndata: %s\n\n", initial)
	flusher.Flush()

	ticker := time.NewTicker(keepAliveEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()
		case e, ok := <-events:
			if !ok {
				return
			}
			data, _ := json.Marshal(e)
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", e.Type, data)
			flusher.Flush()
		}
	}
}
