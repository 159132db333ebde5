// Package lifecycle moves applications and projects through their statuses
// and provisions the project workspace on approval.
package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	appdomain "github.com/workhub-app/workhub-backend/internal/applications/domain"
	projdomain "github.com/workhub-app/workhub-backend/internal/projects/domain"
	wsdomain "github.com/workhub-app/workhub-backend/internal/workspaces/domain"
)

var ErrProjectNotAvailable = errors.New("project is not accepting applications")

// Mode names accepted by New.
const (
	ModeTransactional = "transactional"
	ModeSequential    = "sequential"
)

// Outcome is the state after a decision.
type Outcome struct {
	Application   appdomain.Application `json:"application"`
	ProjectStatus projdomain.Status     `json:"project_status"`
	// Workspace is nil when it was not provisioned within the call.
	Workspace *wsdomain.Workspace `json:"workspace,omitempty"`
}

// Coordinator runs the apply and decide workflows.
type Coordinator interface {
	SubmitApplication(ctx context.Context, seekerID string, projectID int64) (*appdomain.Application, error)
	DecideApplication(ctx context.Context, applicationID int64, decision appdomain.Decision, projectID int64) (*Outcome, error)
	ResolvePendingApplication(ctx context.Context, projectID int64) (*appdomain.Application, error)
}

// New picks the strategy for mode. The transactional strategy needs a
// TxStore.
func New(mode string, store Store, pub Publisher, log *zap.SugaredLogger) (Coordinator, error) {
	if pub == nil {
		pub = NopPublisher{}
	}
	switch mode {
	case ModeTransactional:
		txs, ok := store.(TxStore)
		if !ok {
			return nil, fmt.Errorf("lifecycle mode %q needs a transactional store", mode)
		}
		return NewTransactional(txs, pub, log), nil
	case ModeSequential:
		return NewSequential(store, pub, log), nil
	default:
		return nil, fmt.Errorf("unknown lifecycle mode %q", mode)
	}
}

func projectStatusFor(d appdomain.Decision) projdomain.Status {
	if d == appdomain.DecisionApprove {
		return projdomain.StatusUnavailable
	}
	return projdomain.StatusAvailable
}

func eventTypeFor(d appdomain.Decision) string {
	if d == appdomain.DecisionApprove {
		return EventApplicationApproved
	}
	return EventApplicationRejected
}

func publish(ctx context.Context, pub Publisher, log *zap.SugaredLogger, e Event) {
	if err := pub.Publish(context.WithoutCancel(ctx), e); err != nil {
		log.Warnw("publish lifecycle event failed", "type", e.Type, "project_id", e.ProjectID, "error", err)
	}
}
