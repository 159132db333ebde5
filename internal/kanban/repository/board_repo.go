package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/workhub-app/workhub-backend/internal/kanban/domain"
	"github.com/workhub-app/workhub-backend/internal/storage/postgres"
)

type BoardRepository struct {
	db postgres.DBTX
}

func NewBoardRepository(db postgres.DBTX) *BoardRepository {
	return &BoardRepository{db: db}
}

func (r *BoardRepository) Create(ctx context.Context, b *domain.Board) error {
	const q = `INSERT INTO boards (board_title, workspace_id) VALUES ($1, $2) RETURNING board_id`
	if err := r.db.QueryRowContext(ctx, q, b.Title, b.WorkspaceID).Scan(&b.ID); err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: unknown workspace %d", domain.ErrInvalidInput, b.WorkspaceID)
		}
		return fmt.Errorf("insert board: %w", err)
	}
	return nil
}

func (r *BoardRepository) GetByID(ctx context.Context, id int64) (*domain.Board, error) {
	const q = `SELECT board_id, board_title, workspace_id FROM boards WHERE board_id = $1`
	var b domain.Board
	err := r.db.QueryRowContext(ctx, q, id).Scan(&b.ID, &b.Title, &b.WorkspaceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBoardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get board: %w", err)
	}
	return &b, nil
}

func (r *BoardRepository) ListByWorkspace(ctx context.Context, workspaceID int64) ([]domain.Board, error) {
	const q = `
SELECT board_id, board_title, workspace_id
FROM boards
WHERE workspace_id = $1
ORDER BY board_id ASC;
`
	rows, err := r.db.QueryContext(ctx, q, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	defer rows.Close()

	out := []domain.Board{}
	for rows.Next() {
		var b domain.Board
		if err := rows.Scan(&b.ID, &b.Title, &b.WorkspaceID); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Delete removes the board and, through the foreign key, its activities.
func (r *BoardRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM boards WHERE board_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrBoardNotFound
	}
	return nil
}
