// Package reconcile repairs the half-finished states the sequential
// lifecycle can leave behind when one of its writes fails.
package reconcile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	appdomain "github.com/workhub-app/workhub-backend/internal/applications/domain"
	"github.com/workhub-app/workhub-backend/internal/lifecycle"
	projdomain "github.com/workhub-app/workhub-backend/internal/projects/domain"
	wsdomain "github.com/workhub-app/workhub-backend/internal/workspaces/domain"
)

// Report counts the repairs made by one pass.
type Report struct {
	ProjectsMarkedInReview int `json:"projects_marked_in_review"`
	WorkspacesProvisioned  int `json:"workspaces_provisioned"`
	ProjectsReopened       int `json:"projects_reopened"`
	// Skipped counts candidates that no longer matched once locked.
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

type result int

const (
	repaired result = iota
	skipped
	failed
)

// errStale aborts a repair whose row changed after the scan.
var errStale = errors.New("state changed since scan")

type Reconciler struct {
	db    *sql.DB
	store lifecycle.TxStore
	log   *zap.SugaredLogger
}

func New(db *sql.DB, store lifecycle.TxStore, log *zap.SugaredLogger) *Reconciler {
	return &Reconciler{db: db, store: store, log: log.Named("reconcile")}
}

// latest application per project, newest date then highest id
const latestApplication = `
JOIN LATERAL (
    SELECT a.application_status
    FROM applications a
    WHERE a.project_id = p.project_id
    ORDER BY a.application_date DESC, a.application_id DESC
    LIMIT 1
) la ON true`

const (
	// submit inserted the application but never moved the project
	queryStuckAvailable = `SELECT p.project_id FROM projects p` + latestApplication + `
WHERE p.project_status = 'available' AND la.application_status = 'in review'
ORDER BY p.project_id;`

	// reject updated the application but never reopened the project
	queryStuckInReview = `SELECT p.project_id FROM projects p` + latestApplication + `
WHERE p.project_status = 'in review' AND la.application_status = 'rejected'
ORDER BY p.project_id;`

	// approve updated the application but the workspace insert was lost
	queryMissingWorkspace = `
SELECT a.application_id, a.project_id, a.seeker_id
FROM applications a
WHERE a.application_status = 'approved'
  AND NOT EXISTS (
    SELECT 1 FROM workspaces w
    WHERE w.workspace_type = 'project'
      AND w.project_id = a.project_id
      AND w.seeker_id = a.seeker_id
  )
ORDER BY a.application_id;`
)

type approval struct {
	applicationID int64
	projectID     int64
	seekerID      string
}

// Run makes one pass over every rule. A failed repair is logged and
// counted; the pass continues.
func (r *Reconciler) Run(ctx context.Context) (*Report, error) {
	rep := &Report{}

	ids, err := r.projectIDs(ctx, queryStuckAvailable)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		rep.count(r.repairStatus(ctx, id, projdomain.StatusAvailable, appdomain.StatusInReview, projdomain.StatusInReview),
			&rep.ProjectsMarkedInReview)
	}

	approvals, err := r.missingWorkspaces(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range approvals {
		rep.count(r.provision(ctx, a), &rep.WorkspacesProvisioned)
	}

	ids, err = r.projectIDs(ctx, queryStuckInReview)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		rep.count(r.repairStatus(ctx, id, projdomain.StatusInReview, appdomain.StatusRejected, projdomain.StatusAvailable),
			&rep.ProjectsReopened)
	}

	r.log.Infow("reconcile pass finished",
		"marked_in_review", rep.ProjectsMarkedInReview,
		"workspaces_provisioned", rep.WorkspacesProvisioned,
		"reopened", rep.ProjectsReopened,
		"skipped", rep.Skipped,
		"failed", rep.Failed,
	)
	return rep, nil
}

func (rep *Report) count(res result, repairedCounter *int) {
	switch res {
	case repaired:
		*repairedCounter++
	case skipped:
		rep.Skipped++
	default:
		rep.Failed++
	}
}

func (r *Reconciler) projectIDs(ctx context.Context, q string) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("scan projects: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Reconciler) missingWorkspaces(ctx context.Context) ([]approval, error) {
	rows, err := r.db.QueryContext(ctx, queryMissingWorkspace)
	if err != nil {
		return nil, fmt.Errorf("scan approvals: %w", err)
	}
	defer rows.Close()

	var out []approval
	for rows.Next() {
		var a approval
		if err := rows.Scan(&a.applicationID, &a.projectID, &a.seekerID); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// repairStatus moves the project from one status to another when, with the
// project row locked, it still has status from and its latest application
// still has status latest.
func (r *Reconciler) repairStatus(ctx context.Context, projectID int64, from projdomain.Status, latest appdomain.Status, to projdomain.Status) result {
	err := r.store.InTx(ctx, func(s lifecycle.Store) error {
		p, err := s.GetProject(ctx, projectID, true)
		if err != nil {
			return err
		}
		if p.Status != from {
			return errStale
		}
		app, err := s.LatestApplication(ctx, projectID)
		if errors.Is(err, appdomain.ErrNotFound) {
			return errStale
		}
		if err != nil {
			return err
		}
		if app.Status != latest {
			return errStale
		}
		return s.SetProjectStatus(ctx, projectID, to)
	})
	return r.finish(err, "project status repaired", "project_id", projectID, "status", to)
}

// provision inserts the missing project workspace, then closes the project.
// The application and the workspace are checked again under the project
// lock; a concurrent insert that wins is caught by the unique index.
func (r *Reconciler) provision(ctx context.Context, a approval) result {
	err := r.store.InTx(ctx, func(s lifecycle.Store) error {
		p, err := s.GetProject(ctx, a.projectID, true)
		if err != nil {
			return err
		}
		app, err := s.GetApplication(ctx, a.applicationID, false)
		if err != nil {
			return err
		}
		if app.Status != appdomain.StatusApproved || app.ProjectID != p.ID {
			return errStale
		}
		exists, err := s.HasProjectWorkspace(ctx, p.ID, app.SeekerID)
		if err != nil {
			return err
		}
		if exists {
			return errStale
		}

		err = s.InsertWorkspace(ctx, wsdomain.NewProject(p.ID, p.Title, p.OwnerID, app.SeekerID))
		if errors.Is(err, wsdomain.ErrDuplicate) {
			return errStale
		}
		if err != nil {
			return err
		}
		return s.SetProjectStatus(ctx, p.ID, projdomain.StatusUnavailable)
	})
	return r.finish(err, "project workspace provisioned", "application_id", a.applicationID, "project_id", a.projectID)
}

func (r *Reconciler) finish(err error, msg string, kv ...any) result {
	switch {
	case err == nil:
		r.log.Infow(msg, kv...)
		return repaired
	case errors.Is(err, errStale):
		r.log.Debugw("repair skipped, state changed", kv...)
		return skipped
	default:
		r.log.Errorw("repair failed", append(kv, "error", err)...)
		return failed
	}
}
