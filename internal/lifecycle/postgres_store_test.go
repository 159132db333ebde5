package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appdomain "github.com/workhub-app/workhub-backend/internal/applications/domain"
)

var (
	projectCols = []string{
		"project_id", "project_title", "project_desc", "project_deadline", "project_fee",
		"project_status", "project_date_created", "owner_id",
	}
	applicationCols = []string{"application_id", "application_status", "application_date", "seeker_id", "project_id"}
)

func TestPostgresStore_SubmitRunsInOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM projects WHERE project_id = \$1 FOR UPDATE`).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow(int64(4), "Shop", "", now, 50.0, "available", now, "owner-1"))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("seeker-1", int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`INSERT INTO applications`).
		WithArgs(appdomain.StatusInReview, sqlmock.AnyArg(), "seeker-1", int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"application_id"}).AddRow(int64(21)))
	mock.ExpectExec(`UPDATE projects SET project_status`).
		WithArgs(int64(4), "in review").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c := NewTransactional(NewPostgresStore(db), NopPublisher{}, zap.NewNop().Sugar())
	app, err := c.SubmitApplication(context.Background(), "seeker-1", 4)
	require.NoError(t, err)
	assert.Equal(t, int64(21), app.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DecideRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM projects WHERE project_id = \$1 FOR UPDATE`).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow(int64(4), "Shop", "", now, 50.0, "in review", now, "owner-1"))
	mock.ExpectQuery(`FROM applications WHERE application_id = \$1 FOR UPDATE`).
		WithArgs(int64(21)).
		WillReturnRows(sqlmock.NewRows(applicationCols).AddRow(int64(21), "in review", now, "seeker-1", int64(4)))
	mock.ExpectExec(`UPDATE applications SET application_status`).
		WithArgs(int64(21), "approved").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO workspaces`).
		WillReturnError(errInjected)
	mock.ExpectRollback()

	c := NewTransactional(NewPostgresStore(db), NopPublisher{}, zap.NewNop().Sugar())
	_, err = c.DecideApplication(context.Background(), 21, appdomain.DecisionApprove, 4)
	assert.ErrorIs(t, err, errInjected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DecideAlreadyDecided(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow(int64(4), "Shop", "", now, 50.0, "unavailable", now, "owner-1"))
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(int64(21)).
		WillReturnRows(sqlmock.NewRows(applicationCols).AddRow(int64(21), "approved", now, "seeker-1", int64(4)))
	mock.ExpectRollback()

	c := NewTransactional(NewPostgresStore(db), NopPublisher{}, zap.NewNop().Sugar())
	_, err = c.DecideApplication(context.Background(), 21, appdomain.DecisionReject, 4)
	assert.ErrorIs(t, err, appdomain.ErrAlreadyDecided)
	require.NoError(t, mock.ExpectationsWereMet())
}
