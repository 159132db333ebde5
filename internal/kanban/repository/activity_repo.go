package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/workhub-app/workhub-backend/internal/kanban/domain"
	"github.com/workhub-app/workhub-backend/internal/storage/postgres"
)

const activityColumns = `activity_id, activity_name, activity_desc, activity_status,
       activity_startdate, activity_enddate, board_id`

type ActivityRepository struct {
	db postgres.DBTX
}

func NewActivityRepository(db postgres.DBTX) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, a *domain.Activity) error {
	const q = `
INSERT INTO activities (activity_name, activity_desc, activity_status, activity_startdate, activity_enddate, board_id)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING activity_id;
`
	err := r.db.QueryRowContext(ctx, q, a.Name, a.Description, a.Status, a.StartDate, a.EndDate, a.BoardID).Scan(&a.ID)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return domain.ErrBoardNotFound
		}
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (r *ActivityRepository) GetByID(ctx context.Context, id int64) (*domain.Activity, error) {
	q := `SELECT ` + activityColumns + ` FROM activities WHERE activity_id = $1`
	var a domain.Activity
	err := scanActivity(r.db.QueryRowContext(ctx, q, id), &a)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrActivityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	return &a, nil
}

// Update overwrites the editable fields. Moving a card between columns is
// an update of activity_status.
func (r *ActivityRepository) Update(ctx context.Context, a *domain.Activity) error {
	const q = `
UPDATE activities
SET activity_name = $2, activity_desc = $3, activity_status = $4,
    activity_startdate = $5, activity_enddate = $6
WHERE activity_id = $1`
	res, err := r.db.ExecContext(ctx, q, a.ID, a.Name, a.Description, a.Status, a.StartDate, a.EndDate)
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	return expectOne(res, domain.ErrActivityNotFound)
}

func (r *ActivityRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM activities WHERE activity_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	return expectOne(res, domain.ErrActivityNotFound)
}

func (r *ActivityRepository) ListByBoard(ctx context.Context, boardID int64) ([]domain.Activity, error) {
	q := `SELECT ` + activityColumns + ` FROM activities WHERE board_id = $1 ORDER BY activity_id ASC`
	return r.list(ctx, q, boardID)
}

func (r *ActivityRepository) ListByBoardAndStatus(ctx context.Context, boardID int64, status domain.Status) ([]domain.Activity, error) {
	q := `SELECT ` + activityColumns + `
FROM activities
WHERE board_id = $1 AND activity_status = $2
ORDER BY activity_id ASC`
	return r.list(ctx, q, boardID, status)
}

func (r *ActivityRepository) list(ctx context.Context, q string, args ...any) ([]domain.Activity, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	out := []domain.Activity{}
	for rows.Next() {
		var a domain.Activity
		if err := scanActivity(rows, &a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row rowScanner, a *domain.Activity) error {
	var (
		desc       sql.NullString
		start, end sql.NullTime
	)
	if err := row.Scan(&a.ID, &a.Name, &desc, &a.Status, &start, &end, &a.BoardID); err != nil {
		return err
	}
	if desc.Valid {
		a.Description = &desc.String
	}
	if start.Valid {
		a.StartDate = &start.Time
	}
	if end.Valid {
		a.EndDate = &end.Time
	}
	return nil
}

func expectOne(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
