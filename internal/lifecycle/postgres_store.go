package lifecycle

import (
	"context"
	"database/sql"
	"time"

	appdomain "github.com/workhub-app/workhub-backend/internal/applications/domain"
	apprepo "github.com/workhub-app/workhub-backend/internal/applications/repository"
	projdomain "github.com/workhub-app/workhub-backend/internal/projects/domain"
	projrepo "github.com/workhub-app/workhub-backend/internal/projects/repository"
	"github.com/workhub-app/workhub-backend/internal/storage/postgres"
	wsdomain "github.com/workhub-app/workhub-backend/internal/workspaces/domain"
	wsrepo "github.com/workhub-app/workhub-backend/internal/workspaces/repository"
)

// PostgresStore backs the coordinator with the SQL repositories.
type PostgresStore struct {
	db           *sql.DB
	projects     *projrepo.ProjectRepository
	applications *apprepo.ApplicationRepository
	workspaces   *wsrepo.WorkspaceRepository
}

var _ TxStore = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:           db,
		projects:     projrepo.NewProjectRepository(db),
		applications: apprepo.NewApplicationRepository(db),
		workspaces:   wsrepo.NewWorkspaceRepository(db),
	}
}

// InTx runs fn with a store bound to one read-committed transaction.
func (s *PostgresStore) InTx(ctx context.Context, fn func(Store) error) error {
	return postgres.WithinTx(ctx, s.db, func(tx *sql.Tx) error {
		return fn(&PostgresStore{
			projects:     s.projects.WithTx(tx),
			applications: s.applications.WithTx(tx),
			workspaces:   s.workspaces.WithTx(tx),
		})
	})
}

func (s *PostgresStore) GetProject(ctx context.Context, id int64, forUpdate bool) (*projdomain.Project, error) {
	if forUpdate {
		return s.projects.GetForUpdate(ctx, id)
	}
	return s.projects.GetByID(ctx, id)
}

func (s *PostgresStore) SetProjectStatus(ctx context.Context, id int64, status projdomain.Status) error {
	return s.projects.UpdateStatus(ctx, id, status)
}

func (s *PostgresStore) InsertApplication(ctx context.Context, seekerID string, projectID int64, at time.Time) (*appdomain.Application, error) {
	return s.applications.Insert(ctx, seekerID, projectID, at)
}

func (s *PostgresStore) GetApplication(ctx context.Context, id int64, forUpdate bool) (*appdomain.Application, error) {
	if forUpdate {
		return s.applications.GetForUpdate(ctx, id)
	}
	return s.applications.GetByID(ctx, id)
}

func (s *PostgresStore) LatestApplication(ctx context.Context, projectID int64) (*appdomain.Application, error) {
	return s.applications.LatestForProject(ctx, projectID)
}

func (s *PostgresStore) SetApplicationStatus(ctx context.Context, id int64, status appdomain.Status) error {
	return s.applications.UpdateStatus(ctx, id, status)
}

func (s *PostgresStore) HasApplied(ctx context.Context, seekerID string, projectID int64) (bool, error) {
	return s.applications.HasApplied(ctx, seekerID, projectID)
}

func (s *PostgresStore) InsertWorkspace(ctx context.Context, w *wsdomain.Workspace) error {
	return s.workspaces.Insert(ctx, w)
}

func (s *PostgresStore) HasProjectWorkspace(ctx context.Context, projectID int64, seekerID string) (bool, error) {
	n, err := s.workspaces.CountForProject(ctx, projectID, seekerID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
