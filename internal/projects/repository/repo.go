package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/workhub-app/workhub-backend/internal/projects/domain"
	"github.com/workhub-app/workhub-backend/internal/storage/postgres"
)

// Table is the projects table. The hosted REST backend addresses the same table.
const Table = "projects"

const projectColumns = `project_id, project_title, project_desc, project_deadline, project_fee,
       project_status, project_date_created, owner_id`

// ProjectRepository provides persistence operations for projects
type ProjectRepository struct {
	db postgres.DBTX
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db postgres.DBTX) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *ProjectRepository) WithTx(tx postgres.DBTX) *ProjectRepository {
	return &ProjectRepository{db: tx}
}

// Create inserts a new project and fills in its id and creation time.
func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	const q = `
INSERT INTO projects (project_title, project_desc, project_deadline, project_fee, project_status, owner_id)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING project_id, project_date_created;
`
	err := r.db.QueryRowContext(ctx, q, p.Title, p.Description, p.Deadline, p.Fee, p.Status, p.OwnerID).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: owner %s has no owner profile", domain.ErrInvalidInput, p.OwnerID)
		}
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// GetByID returns a single project.
func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	q := `SELECT ` + projectColumns + ` FROM projects WHERE project_id = $1`
	return r.getOne(ctx, q, id)
}

// GetForUpdate returns the project and locks its row until the surrounding
// transaction ends.
func (r *ProjectRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Project, error) {
	q := `SELECT ` + projectColumns + ` FROM projects WHERE project_id = $1 FOR UPDATE`
	return r.getOne(ctx, q, id)
}

func (r *ProjectRepository) getOne(ctx context.Context, q string, id int64) (*domain.Project, error) {
	var p domain.Project
	err := scanProject(r.db.QueryRowContext(ctx, q, id), &p)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &p, nil
}

// ListByOwner returns the owner's projects, newest first.
func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Project, error) {
	q := `SELECT ` + projectColumns + `
FROM projects
WHERE owner_id = $1
ORDER BY project_date_created DESC;`
	return r.list(ctx, q, ownerID)
}

// ListAvailableForSeeker returns available projects the seeker has not
// applied to yet, newest first.
func (r *ProjectRepository) ListAvailableForSeeker(ctx context.Context, seekerID string) ([]domain.Project, error) {
	q := `SELECT ` + projectColumns + `
FROM projects
WHERE project_status = 'available'
  AND project_id NOT IN (SELECT project_id FROM applications WHERE seeker_id = $1)
ORDER BY project_date_created DESC;`
	return r.list(ctx, q, seekerID)
}

func (r *ProjectRepository) list(ctx context.Context, q string, args ...any) ([]domain.Project, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		var p domain.Project
		if err := scanProject(rows, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus sets project_status for one project.
func (r *ProjectRepository) UpdateStatus(ctx context.Context, id int64, status domain.Status) error {
	if !status.Valid() {
		return domain.ErrInvalidStatus
	}
	const q = `UPDATE projects SET project_status = $2 WHERE project_id = $1`
	res, err := r.db.ExecContext(ctx, q, id, status)
	if err != nil {
		return fmt.Errorf("update project status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner, p *domain.Project) error {
	return row.Scan(&p.ID, &p.Title, &p.Description, &p.Deadline, &p.Fee, &p.Status, &p.CreatedAt, &p.OwnerID)
}
