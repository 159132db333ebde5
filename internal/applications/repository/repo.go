package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/workhub-app/workhub-backend/internal/applications/domain"
	"github.com/workhub-app/workhub-backend/internal/storage/postgres"
)

// Table is the applications table. The hosted REST backend addresses the same table.
const Table = "applications"

const applicationColumns = `application_id, application_status, application_date, seeker_id, project_id`

type ApplicationRepository struct {
	db postgres.DBTX
}

func NewApplicationRepository(db postgres.DBTX) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *ApplicationRepository) WithTx(tx postgres.DBTX) *ApplicationRepository {
	return &ApplicationRepository{db: tx}
}

// Insert records a new in-review application.
func (r *ApplicationRepository) Insert(ctx context.Context, seekerID string, projectID int64, at time.Time) (*domain.Application, error) {
	const q = `
INSERT INTO applications (application_status, application_date, seeker_id, project_id)
VALUES ($1, $2, $3, $4)
RETURNING application_id;
`
	a := &domain.Application{
		Status:    domain.StatusInReview,
		AppliedAt: at,
		SeekerID:  seekerID,
		ProjectID: projectID,
	}
	if err := r.db.QueryRowContext(ctx, q, a.Status, at, seekerID, projectID).Scan(&a.ID); err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("insert application: unknown seeker or project: %w", err)
		}
		return nil, fmt.Errorf("insert application: %w", err)
	}
	return a, nil
}

// GetByID returns one application.
func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	q := `SELECT ` + applicationColumns + ` FROM applications WHERE application_id = $1`
	return r.getOne(ctx, q, id)
}

// GetForUpdate returns the application and locks its row.
func (r *ApplicationRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Application, error) {
	q := `SELECT ` + applicationColumns + ` FROM applications WHERE application_id = $1 FOR UPDATE`
	return r.getOne(ctx, q, id)
}

// LatestForProject returns the most recent application for a project.
func (r *ApplicationRepository) LatestForProject(ctx context.Context, projectID int64) (*domain.Application, error) {
	q := `SELECT ` + applicationColumns + `
FROM applications
WHERE project_id = $1
ORDER BY application_date DESC, application_id DESC
LIMIT 1`
	return r.getOne(ctx, q, projectID)
}

// HasApplied reports whether the seeker already applied to the project.
func (r *ApplicationRepository) HasApplied(ctx context.Context, seekerID string, projectID int64) (bool, error) {
	const q = `
SELECT EXISTS (
    SELECT 1 FROM applications
    WHERE seeker_id = $1 AND project_id = $2
)`
	var ok bool
	if err := r.db.QueryRowContext(ctx, q, seekerID, projectID).Scan(&ok); err != nil {
		return false, fmt.Errorf("check application: %w", err)
	}
	return ok, nil
}

func (r *ApplicationRepository) getOne(ctx context.Context, q string, arg any) (*domain.Application, error) {
	var a domain.Application
	err := r.db.QueryRowContext(ctx, q, arg).Scan(&a.ID, &a.Status, &a.AppliedAt, &a.SeekerID, &a.ProjectID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	return &a, nil
}

// ListBySeeker returns the seeker's applications with project details,
// newest first.
func (r *ApplicationRepository) ListBySeeker(ctx context.Context, seekerID string) ([]domain.Summary, error) {
	const q = `
SELECT a.application_id, a.application_status, a.application_date, a.seeker_id, a.project_id,
       p.project_title, p.project_desc, p.project_fee
FROM applications a
JOIN projects p ON p.project_id = a.project_id
WHERE a.seeker_id = $1
ORDER BY a.application_date DESC;
`
	rows, err := r.db.QueryContext(ctx, q, seekerID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Summary, 0, 8)
	for rows.Next() {
		var s domain.Summary
		if err := rows.Scan(&s.ID, &s.Status, &s.AppliedAt, &s.SeekerID, &s.ProjectID,
			&s.ProjectTitle, &s.ProjectDesc, &s.ProjectFee); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateStatus sets application_status.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id int64, status domain.Status) error {
	const q = `UPDATE applications SET application_status = $2 WHERE application_id = $1`
	res, err := r.db.ExecContext(ctx, q, id, status)
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
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
