package lifecycle

import (
	"context"
	"errors"
	"time"

	appdomain "github.com/workhub-app/workhub-backend/internal/applications/domain"
	apprepo "github.com/workhub-app/workhub-backend/internal/applications/repository"
	projdomain "github.com/workhub-app/workhub-backend/internal/projects/domain"
	projrepo "github.com/workhub-app/workhub-backend/internal/projects/repository"
	"github.com/workhub-app/workhub-backend/internal/remotestore"
	"github.com/workhub-app/workhub-backend/internal/storage/postgres"
	wsdomain "github.com/workhub-app/workhub-backend/internal/workspaces/domain"
	wsrepo "github.com/workhub-app/workhub-backend/internal/workspaces/repository"
)

// Tables shared with the SQL repositories. The REST endpoint must expose the
// database the DSN points at, otherwise the two backends diverge.
const (
	tableProject     = projrepo.Table
	tableApplication = apprepo.Table
	tableWorkspace   = wsrepo.Table
)

// RemoteStore backs the coordinator with the hosted REST interface of the
// application database. It has no transactions, so it only serves the
// sequential strategy.
type RemoteStore struct {
	client *remotestore.Client
}

var _ Store = (*RemoteStore)(nil)

func NewRemoteStore(client *remotestore.Client) *RemoteStore {
	return &RemoteStore{client: client}
}

// GetProject ignores forUpdate: the REST interface cannot lock rows.
func (s *RemoteStore) GetProject(ctx context.Context, id int64, _ bool) (*projdomain.Project, error) {
	var rows []projdomain.Project
	err := s.client.Select(ctx, tableProject, remotestore.Query{
		Filters: []remotestore.Filter{remotestore.Eq("project_id", id)},
		Limit:   1,
	}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, projdomain.ErrNotFound
	}
	return &rows[0], nil
}

func (s *RemoteStore) SetProjectStatus(ctx context.Context, id int64, status projdomain.Status) error {
	var rows []projdomain.Project
	err := s.client.Update(ctx, tableProject, map[string]any{"project_status": status},
		[]remotestore.Filter{remotestore.Eq("project_id", id)}, &rows)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return projdomain.ErrNotFound
	}
	return nil
}

func (s *RemoteStore) InsertApplication(ctx context.Context, seekerID string, projectID int64, at time.Time) (*appdomain.Application, error) {
	row := appdomain.Application{
		Status:    appdomain.StatusInReview,
		AppliedAt: at,
		SeekerID:  seekerID,
		ProjectID: projectID,
	}
	var rows []appdomain.Application
	if err := s.client.Insert(ctx, tableApplication, []appdomain.Application{row}, &rows); err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		return &rows[0], nil
	}
	return &row, nil
}

func (s *RemoteStore) GetApplication(ctx context.Context, id int64, _ bool) (*appdomain.Application, error) {
	return s.firstApplication(ctx, remotestore.Query{
		Filters: []remotestore.Filter{remotestore.Eq("application_id", id)},
		Limit:   1,
	})
}

// LatestApplication orders by application_date, then id, descending and
// takes the first row.
func (s *RemoteStore) LatestApplication(ctx context.Context, projectID int64) (*appdomain.Application, error) {
	return s.firstApplication(ctx, remotestore.Query{
		Filters: []remotestore.Filter{remotestore.Eq("project_id", projectID)},
		Order:   []remotestore.Order{
			{Column: "application_date", Desc: true},
			{Column: "application_id", Desc: true},
		},
		Limit: 1,
	})
}

func (s *RemoteStore) firstApplication(ctx context.Context, q remotestore.Query) (*appdomain.Application, error) {
	var rows []appdomain.Application
	if err := s.client.Select(ctx, tableApplication, q, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, appdomain.ErrNotFound
	}
	return &rows[0], nil
}

func (s *RemoteStore) SetApplicationStatus(ctx context.Context, id int64, status appdomain.Status) error {
	var rows []appdomain.Application
	err := s.client.Update(ctx, tableApplication, map[string]any{"application_status": status},
		[]remotestore.Filter{remotestore.Eq("application_id", id)}, &rows)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return appdomain.ErrNotFound
	}
	return nil
}

func (s *RemoteStore) HasApplied(ctx context.Context, seekerID string, projectID int64) (bool, error) {
	var rows []struct {
		ID int64 `json:"application_id"`
	}
	err := s.client.Select(ctx, tableApplication, remotestore.Query{
		Columns: "application_id",
		Filters: []remotestore.Filter{
			remotestore.Eq("seeker_id", seekerID),
			remotestore.Eq("project_id", projectID),
		},
		Limit: 1,
	}, &rows)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

func (s *RemoteStore) InsertWorkspace(ctx context.Context, w *wsdomain.Workspace) error {
	var rows []wsdomain.Workspace
	if err := s.client.Insert(ctx, tableWorkspace, []*wsdomain.Workspace{w}, &rows); err != nil {
		var rerr *remotestore.Error
		if errors.As(err, &rerr) && rerr.Code == postgres.CodeUniqueViolation {
			return wsdomain.ErrDuplicate
		}
		return err
	}
	if len(rows) > 0 {
		w.ID = rows[0].ID
	}
	return nil
}

func (s *RemoteStore) HasProjectWorkspace(ctx context.Context, projectID int64, seekerID string) (bool, error) {
	var rows []struct {
		ID int64 `json:"workspace_id"`
	}
	err := s.client.Select(ctx, tableWorkspace, remotestore.Query{
		Columns: "workspace_id",
		Filters: []remotestore.Filter{
			remotestore.Eq("workspace_type", wsdomain.TypeProject),
			remotestore.Eq("project_id", projectID),
			remotestore.Eq("seeker_id", seekerID),
		},
		Limit: 1,
	}, &rows)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}
