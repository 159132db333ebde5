package lifecycle

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	appdomain "github.com/workhub-app/workhub-backend/internal/applications/domain"
	projdomain "github.com/workhub-app/workhub-backend/internal/projects/domain"
	wsdomain "github.com/workhub-app/workhub-backend/internal/workspaces/domain"
)

// Sequential issues the writes one after another with no preconditions and
// no rollback. On approval the workspace insert runs in the background and
// its failure is only logged. Works against stores without transactions.
type Sequential struct {
	store Store
	pub   Publisher
	log   *zap.SugaredLogger
	now   func() time.Time

	pending sync.WaitGroup
}

func NewSequential(store Store, pub Publisher, log *zap.SugaredLogger) *Sequential {
	return &Sequential{store: store, pub: pub, log: log.Named("lifecycle"), now: time.Now}
}

// SubmitApplication inserts the application, then marks the project in
// review. If the second write fails the application stays behind.
func (s *Sequential) SubmitApplication(ctx context.Context, seekerID string, projectID int64) (*appdomain.Application, error) {
	app, err := s.store.InsertApplication(ctx, seekerID, projectID, s.now())
	if err != nil {
		s.log.Errorw("insert application failed", "project_id", projectID, "seeker_id", seekerID, "error", err)
		return nil, err
	}
	if err := s.store.SetProjectStatus(ctx, projectID, projdomain.StatusInReview); err != nil {
		s.log.Errorw("set project in review failed", "project_id", projectID, "application_id", app.ID, "error", err)
		return nil, err
	}

	publish(ctx, s.pub, s.log, Event{
		Type:          EventApplicationSubmitted,
		ProjectID:     projectID,
		ApplicationID: app.ID,
		SeekerID:      seekerID,
		ProjectStatus: string(projdomain.StatusInReview),
		At:            app.AppliedAt,
	})
	return app, nil
}

// DecideApplication updates the application, then the project. Calling it
// twice repeats every side effect.
func (s *Sequential) DecideApplication(ctx context.Context, applicationID int64, decision appdomain.Decision, projectID int64) (*Outcome, error) {
	if _, err := appdomain.ParseDecision(string(decision)); err != nil {
		return nil, err
	}

	var (
		app     *appdomain.Application
		project *projdomain.Project
		err     error
	)
	if decision == appdomain.DecisionApprove {
		if app, err = s.store.GetApplication(ctx, applicationID, false); err != nil {
			return nil, err
		}
		if project, err = s.store.GetProject(ctx, projectID, false); err != nil {
			return nil, err
		}
	}

	if err := s.store.SetApplicationStatus(ctx, applicationID, appdomain.Status(decision)); err != nil {
		s.log.Errorw("update application status failed", "application_id", applicationID, "error", err)
		return nil, err
	}

	if decision == appdomain.DecisionApprove {
		w := wsdomain.NewProject(projectID, project.Title, project.OwnerID, app.SeekerID)
		s.pending.Add(1)
		go func(ctx context.Context) {
			defer s.pending.Done()
			if err := s.store.InsertWorkspace(ctx, w); err != nil {
				s.log.Errorw("add workspace failed", "project_id", projectID, "seeker_id", app.SeekerID, "error", err)
				return
			}
			s.log.Infow("workspace added", "workspace_id", w.ID, "project_id", projectID)
		}(context.WithoutCancel(ctx))
	}

	status := projectStatusFor(decision)
	if err := s.store.SetProjectStatus(ctx, projectID, status); err != nil {
		s.log.Errorw("update project status failed", "project_id", projectID, "status", status, "error", err)
		return nil, err
	}

	out := &Outcome{ProjectStatus: status}
	if app != nil {
		out.Application = *app
	} else {
		out.Application = appdomain.Application{ID: applicationID, ProjectID: projectID}
	}
	out.Application.Status = appdomain.Status(decision)

	publish(ctx, s.pub, s.log, Event{
		Type:          eventTypeFor(decision),
		ProjectID:     projectID,
		ApplicationID: applicationID,
		SeekerID:      out.Application.SeekerID,
		ProjectStatus: string(status),
		At:            s.now(),
	})
	return out, nil
}

func (s *Sequential) ResolvePendingApplication(ctx context.Context, projectID int64) (*appdomain.Application, error) {
	return s.store.LatestApplication(ctx, projectID)
}

// Wait blocks until background workspace inserts have finished.
func (s *Sequential) Wait() {
	s.pending.Wait()
}
