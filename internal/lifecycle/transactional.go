package lifecycle

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	appdomain "github.com/workhub-app/workhub-backend/internal/applications/domain"
	projdomain "github.com/workhub-app/workhub-backend/internal/projects/domain"
	wsdomain "github.com/workhub-app/workhub-backend/internal/workspaces/domain"
)

// Transactional applies every transition in one database transaction with
// the project row locked, so a failed write leaves nothing behind and a
// decided application cannot be decided again.
type Transactional struct {
	store TxStore
	pub   Publisher
	log   *zap.SugaredLogger
	now   func() time.Time
}

func NewTransactional(store TxStore, pub Publisher, log *zap.SugaredLogger) *Transactional {
	return &Transactional{store: store, pub: pub, log: log.Named("lifecycle"), now: time.Now}
}

func (t *Transactional) SubmitApplication(ctx context.Context, seekerID string, projectID int64) (*appdomain.Application, error) {
	var app *appdomain.Application
	err := t.store.InTx(ctx, func(s Store) error {
		p, err := s.GetProject(ctx, projectID, true)
		if err != nil {
			return err
		}
		if p.Status != projdomain.StatusAvailable {
			return fmt.Errorf("%w: project %d is %s", ErrProjectNotAvailable, projectID, p.Status)
		}
		applied, err := s.HasApplied(ctx, seekerID, projectID)
		if err != nil {
			return err
		}
		if applied {
			return appdomain.ErrDuplicate
		}

		app, err = s.InsertApplication(ctx, seekerID, projectID, t.now())
		if err != nil {
			return err
		}
		return s.SetProjectStatus(ctx, projectID, projdomain.StatusInReview)
	})
	if err != nil {
		return nil, err
	}

	t.log.Infow("application submitted", "application_id", app.ID, "project_id", projectID, "seeker_id", seekerID)
	publish(ctx, t.pub, t.log, Event{
		Type:          EventApplicationSubmitted,
		ProjectID:     projectID,
		ApplicationID: app.ID,
		SeekerID:      seekerID,
		ProjectStatus: string(projdomain.StatusInReview),
		At:            app.AppliedAt,
	})
	return app, nil
}

func (t *Transactional) DecideApplication(ctx context.Context, applicationID int64, decision appdomain.Decision, projectID int64) (*Outcome, error) {
	if _, err := appdomain.ParseDecision(string(decision)); err != nil {
		return nil, err
	}

	var out Outcome
	err := t.store.InTx(ctx, func(s Store) error {
		// Lock the project before the application, the same order submit uses.
		p, err := s.GetProject(ctx, projectID, true)
		if err != nil {
			return err
		}
		app, err := s.GetApplication(ctx, applicationID, true)
		if err != nil {
			return err
		}
		if app.ProjectID != projectID {
			return appdomain.ErrProjectMismatch
		}
		if app.Status != appdomain.StatusInReview {
			return fmt.Errorf("%w: application %d is %s", appdomain.ErrAlreadyDecided, applicationID, app.Status)
		}

		if err := s.SetApplicationStatus(ctx, applicationID, appdomain.Status(decision)); err != nil {
			return err
		}
		app.Status = appdomain.Status(decision)

		if decision == appdomain.DecisionApprove {
			w := wsdomain.NewProject(p.ID, p.Title, p.OwnerID, app.SeekerID)
			if err := s.InsertWorkspace(ctx, w); err != nil {
				return err
			}
			out.Workspace = w
		}

		status := projectStatusFor(decision)
		if err := s.SetProjectStatus(ctx, projectID, status); err != nil {
			return err
		}
		out.Application = *app
		out.ProjectStatus = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.log.Infow("application decided", "application_id", applicationID, "project_id", projectID, "decision", decision)
	e := Event{
		Type:          eventTypeFor(decision),
		ProjectID:     projectID,
		ApplicationID: applicationID,
		SeekerID:      out.Application.SeekerID,
		ProjectStatus: string(out.ProjectStatus),
		At:            t.now(),
	}
	if out.Workspace != nil {
		e.WorkspaceID = out.Workspace.ID
	}
	publish(ctx, t.pub, t.log, e)
	return &out, nil
}

func (t *Transactional) ResolvePendingApplication(ctx context.Context, projectID int64) (*appdomain.Application, error) {
	return t.store.LatestApplication(ctx, projectID)
}
