package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workhub-app/workhub-backend/internal/workspaces/domain"
)

var wsCols = []string{"workspace_id", "workspace_name", "workspace_type", "project_id", "user_id", "seeker_id"}

func setupRepo(t *testing.T) (*WorkspaceRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewWorkspaceRepository(db), mock
}

func TestWorkspaceRepository_Insert(t *testing.T) {
	repo, mock := setupRepo(t)

	w := domain.NewProject(5, "Shop", "owner-1", "seeker-1")
	mock.ExpectQuery(`INSERT INTO workspaces`).
		WithArgs("Shop", domain.TypeProject, sqlmock.AnyArg(), "owner-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"workspace_id"}).AddRow(int64(31)))

	require.NoError(t, repo.Insert(context.Background(), w))
	assert.Equal(t, int64(31), w.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceRepository_ListForUser(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(`WHERE user_id = \$1 OR seeker_id = \$1\s+ORDER BY workspace_type ASC, workspace_id DESC`).
		WithArgs("seeker-1").
		WillReturnRows(sqlmock.NewRows(wsCols).
			AddRow(int64(2), "My Workspace", "private", nil, "seeker-1", nil).
			AddRow(int64(9), "Shop", "project", int64(5), "owner-1", "seeker-1"))

	items, err := repo.ListForUser(context.Background(), "seeker-1")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, domain.TypePrivate, items[0].Type)
	assert.Nil(t, items[0].ProjectID)
	assert.Nil(t, items[0].SeekerID)

	require.NotNil(t, items[1].ProjectID)
	assert.Equal(t, int64(5), *items[1].ProjectID)
	assert.True(t, items[1].HasMember("seeker-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceRepository_GetByID(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(`FROM workspaces WHERE workspace_id = \$1`).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(wsCols))

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceRepository_CountForProject(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM workspaces`).
		WithArgs(int64(5), "seeker-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := repo.CountForProject(context.Background(), 5, "seeker-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceRepository_InsertDuplicateProjectWorkspace(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(`INSERT INTO workspaces`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Insert(context.Background(), domain.NewProject(5, "Shop", "owner-1", "seeker-1"))
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}
