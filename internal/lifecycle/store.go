package lifecycle

import (
	"context"
	"time"

	appdomain "github.com/workhub-app/workhub-backend/internal/applications/domain"
	projdomain "github.com/workhub-app/workhub-backend/internal/projects/domain"
	wsdomain "github.com/workhub-app/workhub-backend/internal/workspaces/domain"
)

// Store is the row access the coordinator needs across the Project,
// Application and Workspace tables.
type Store interface {
	GetProject(ctx context.Context, id int64, forUpdate bool) (*projdomain.Project, error)
	SetProjectStatus(ctx context.Context, id int64, status projdomain.Status) error

	InsertApplication(ctx context.Context, seekerID string, projectID int64, at time.Time) (*appdomain.Application, error)
	GetApplication(ctx context.Context, id int64, forUpdate bool) (*appdomain.Application, error)
	LatestApplication(ctx context.Context, projectID int64) (*appdomain.Application, error)
	SetApplicationStatus(ctx context.Context, id int64, status appdomain.Status) error
	HasApplied(ctx context.Context, seekerID string, projectID int64) (bool, error)

	InsertWorkspace(ctx context.Context, w *wsdomain.Workspace) error
	HasProjectWorkspace(ctx context.Context, projectID int64, seekerID string) (bool, error)
}

// TxStore can run a group of Store calls atomically.
type TxStore interface {
	Store
	InTx(ctx context.Context, fn func(Store) error) error
}
