package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/workhub-app/workhub-backend/internal/storage/postgres"
	"github.com/workhub-app/workhub-backend/internal/workspaces/domain"
)

// Table is the workspaces table. The hosted REST backend addresses the same table.
const Table = "workspaces"

type WorkspaceRepository struct {
	db postgres.DBTX
}

func NewWorkspaceRepository(db postgres.DBTX) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

func (r *WorkspaceRepository) WithTx(tx postgres.DBTX) *WorkspaceRepository {
	return &WorkspaceRepository{db: tx}
}

// Insert stores w and sets its id.
func (r *WorkspaceRepository) Insert(ctx context.Context, w *domain.Workspace) error {
	const q = `
INSERT INTO workspaces (workspace_name, workspace_type, project_id, user_id, seeker_id)
VALUES ($1, $2, $3, $4, $5)
RETURNING workspace_id;
`
	if err := r.db.QueryRowContext(ctx, q, w.Name, w.Type, w.ProjectID, w.UserID, w.SeekerID).Scan(&w.ID); err != nil {
		if postgres.IsUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert workspace: %w", err)
	}
	return nil
}

// ListForUser returns workspaces where the user is owner or seeker, private
// ones first, then newest.
func (r *WorkspaceRepository) ListForUser(ctx context.Context, userID string) ([]domain.Workspace, error) {
	const q = `
SELECT workspace_id, workspace_name, workspace_type, project_id, user_id, seeker_id
FROM workspaces
WHERE user_id = $1 OR seeker_id = $1
ORDER BY workspace_type ASC, workspace_id DESC;
`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	defer rows.Close()

	var out []domain.Workspace
	for rows.Next() {
		var w domain.Workspace
		if err := scanWorkspace(rows, &w); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *WorkspaceRepository) GetByID(ctx context.Context, id int64) (*domain.Workspace, error) {
	const q = `
SELECT workspace_id, workspace_name, workspace_type, project_id, user_id, seeker_id
FROM workspaces WHERE workspace_id = $1`
	var w domain.Workspace
	err := scanWorkspace(r.db.QueryRowContext(ctx, q, id), &w)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get workspace: %w", err)
	}
	return &w, nil
}

// CountForProject returns how many project workspaces exist for the
// project and seeker pair.
func (r *WorkspaceRepository) CountForProject(ctx context.Context, projectID int64, seekerID string) (int, error) {
	const q = `
SELECT COUNT(*) FROM workspaces
WHERE workspace_type = 'project' AND project_id = $1 AND seeker_id = $2`
	var n int
	if err := r.db.QueryRowContext(ctx, q, projectID, seekerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count workspaces: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkspace(row rowScanner, w *domain.Workspace) error {
	var (
		projectID sql.NullInt64
		seekerID  sql.NullString
	)
	if err := row.Scan(&w.ID, &w.Name, &w.Type, &projectID, &w.UserID, &seekerID); err != nil {
		return err
	}
	if projectID.Valid {
		w.ProjectID = &projectID.Int64
	}
	if seekerID.Valid {
		w.SeekerID = &seekerID.String
	}
	return nil
}
