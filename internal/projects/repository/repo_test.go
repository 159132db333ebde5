package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workhub-app/workhub-backend/internal/projects/domain"
)

var projectCols = []string{
	"project_id", "project_title", "project_desc", "project_deadline", "project_fee",
	"project_status", "project_date_created", "owner_id",
}

func setupProjectRepo(t *testing.T) (*ProjectRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewProjectRepository(db), mock
}

func TestProjectRepository_Create(t *testing.T) {
	repo, mock := setupProjectRepo(t)
	deadline := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)

	t.Run("returns generated id", func(t *testing.T) {
		created := time.Now()
		mock.ExpectQuery(`INSERT INTO projects`).
			WithArgs("Logo Design", "vector logo", deadline, 150.0, domain.StatusAvailable, "owner-1").
			WillReturnRows(sqlmock.NewRows([]string{"project_id", "project_date_created"}).AddRow(int64(7), created))

		p := &domain.Project{
			Title: "Logo Design", Description: "vector logo", Deadline: deadline,
			Fee: 150, Status: domain.StatusAvailable, OwnerID: "owner-1",
		}
		require.NoError(t, repo.Create(context.Background(), p))
		assert.Equal(t, int64(7), p.ID)
		assert.Equal(t, created, p.CreatedAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing owner profile", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO projects`).
			WillReturnError(&pgconn.PgError{Code: "23503"})

		err := repo.Create(context.Background(), &domain.Project{OwnerID: "ghost", Status: domain.StatusAvailable})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProjectRepository_GetByID(t *testing.T) {
	repo, mock := setupProjectRepo(t)

	t.Run("found", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(`SELECT project_id, project_title`).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(projectCols).
				AddRow(int64(3), "Mobile App", "desc", now, "2500.00", "in review", now, "owner-1"))

		p, err := repo.GetByID(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusInReview, p.Status)
		assert.Equal(t, 2500.0, p.Fee)
		assert.Equal(t, "owner-1", p.OwnerID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT project_id, project_title`).
			WithArgs(int64(404)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(context.Background(), 404)
		assert.Equal(t, domain.ErrNotFound, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProjectRepository_GetForUpdate(t *testing.T) {
	repo, mock := setupProjectRepo(t)
	now := time.Now()

	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow(int64(5), "Site", "", now, 10.0, "available", now, "owner-2"))

	p, err := repo.GetForUpdate(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), p.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_ListAvailableForSeeker(t *testing.T) {
	repo, mock := setupProjectRepo(t)
	now := time.Now()

	mock.ExpectQuery(`NOT IN \(SELECT project_id FROM applications WHERE seeker_id = \$1\)`).
		WithArgs("seeker-1").
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow(int64(9), "B", "", now, 1.0, "available", now, "o").
			AddRow(int64(8), "A", "", now.Add(-time.Hour), 1.0, "available", now.Add(-time.Hour), "o"))

	items, err := repo.ListAvailableForSeeker(context.Background(), "seeker-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(9), items[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_UpdateStatus(t *testing.T) {
	repo, mock := setupProjectRepo(t)

	t.Run("updates", func(t *testing.T) {
		mock.ExpectExec(`UPDATE projects SET project_status`).
			WithArgs(int64(1), domain.StatusUnavailable).
			WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, repo.UpdateStatus(context.Background(), 1, domain.StatusUnavailable))
	})

	t.Run("missing row", func(t *testing.T) {
		mock.ExpectExec(`UPDATE projects SET project_status`).
			WithArgs(int64(2), domain.StatusAvailable).
			WillReturnResult(sqlmock.NewResult(0, 0))
		assert.Equal(t, domain.ErrNotFound, repo.UpdateStatus(context.Background(), 2, domain.StatusAvailable))
	})

	t.Run("rejects unknown status without a query", func(t *testing.T) {
		assert.Equal(t, domain.ErrInvalidStatus, repo.UpdateStatus(context.Background(), 1, "archived"))
	})

	require.NoError(t, mock.ExpectationsWereMet())
}
