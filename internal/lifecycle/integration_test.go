//go:build integration

package lifecycle_test

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appdomain "github.com/workhub-app/workhub-backend/internal/applications/domain"
	apprepo "github.com/workhub-app/workhub-backend/internal/applications/repository"
	authdomain "github.com/workhub-app/workhub-backend/internal/auth/domain"
	authrepo "github.com/workhub-app/workhub-backend/internal/auth/repository"
	"github.com/workhub-app/workhub-backend/internal/lifecycle"
	projdomain "github.com/workhub-app/workhub-backend/internal/projects/domain"
	projrepo "github.com/workhub-app/workhub-backend/internal/projects/repository"
	"github.com/workhub-app/workhub-backend/internal/reconcile"
	"github.com/workhub-app/workhub-backend/internal/storage/postgres"
	wsdomain "github.com/workhub-app/workhub-backend/internal/workspaces/domain"
	wsrepo "github.com/workhub-app/workhub-backend/internal/workspaces/repository"
)

// setupPostgres uses TEST_DB_DSN when set, otherwise starts a throwaway
// container.
func setupPostgres(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		pool, err := dockertest.NewPool("")
		require.NoError(t, err)

		resource, err := pool.RunWithOptions(&dockertest.RunOptions{
			Repository: "postgres",
			Tag:        "16-alpine",
			Env: []string{
				"POSTGRES_PASSWORD=postgres",
				"POSTGRES_USER=postgres",
				"POSTGRES_DB=workhub_test",
			},
		}, func(hc *docker.HostConfig) {
			hc.AutoRemove = true
		})
		require.NoError(t, err)
		t.Cleanup(func() { _ = pool.Purge(resource) })

		dsn = "host=localhost port=" + resource.GetPort("5432/tcp") +
			" user=postgres password=postgres dbname=workhub_test sslmode=disable"
		require.NoError(t, pool.Retry(func() error {
			db, err := sql.Open("postgres", dsn)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()
			return db.Ping()
		}))
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, postgres.Migrate(context.Background(), db))
	return db
}

type fixture struct {
	db       *sql.DB
	projects *projrepo.ProjectRepository
	apps     *apprepo.ApplicationRepository
	ws       *wsrepo.WorkspaceRepository
	owner    string
	seekers  []string
}

func newFixture(t *testing.T, db *sql.DB, seekers int) *fixture {
	ctx := context.Background()
	users := authrepo.NewUserRepository(db)
	suffix := time.Now().Format("150405.000000000")

	f := &fixture{
		db:       db,
		projects: projrepo.NewProjectRepository(db),
		apps:     apprepo.NewApplicationRepository(db),
		ws:       wsrepo.NewWorkspaceRepository(db),
		owner:    "owner-" + suffix,
	}
	_, err := users.SignUp(ctx, authdomain.SignUpRequest{UserID: f.owner, Email: f.owner + "@example.com", Name: "Owner", Role: authdomain.RoleOwner})
	require.NoError(t, err)
	for i := 0; i < seekers; i++ {
		id := "seeker-" + string(rune('a'+i)) + "-" + suffix
		_, err := users.SignUp(ctx, authdomain.SignUpRequest{UserID: id, Email: id + "@example.com", Name: "Seeker", Role: authdomain.RoleSeeker})
		require.NoError(t, err)
		f.seekers = append(f.seekers, id)
	}
	return f
}

func (f *fixture) project(t *testing.T) int64 {
	p := &projdomain.Project{
		Title:    "Landing Page",
		Deadline: time.Now().Add(72 * time.Hour),
		Fee:      100,
		Status:   projdomain.StatusAvailable,
		OwnerID:  f.owner,
	}
	require.NoError(t, f.projects.Create(context.Background(), p))
	return p.ID
}

func TestTransactionalLifecycle_Integration(t *testing.T) {
	ctx := context.Background()
	db := setupPostgres(t)
	f := newFixture(t, db, 1)
	coord := lifecycle.NewTransactional(lifecycle.NewPostgresStore(db), lifecycle.NopPublisher{}, zap.NewNop().Sugar())

	pid := f.project(t)
	app, err := coord.SubmitApplication(ctx, f.seekers[0], pid)
	require.NoError(t, err)

	p, err := f.projects.GetByID(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, projdomain.StatusInReview, p.Status)

	out, err := coord.DecideApplication(ctx, app.ID, appdomain.DecisionApprove, pid)
	require.NoError(t, err)
	require.NotNil(t, out.Workspace)
	assert.Equal(t, projdomain.StatusUnavailable, out.ProjectStatus)

	_, err = coord.DecideApplication(ctx, app.ID, appdomain.DecisionApprove, pid)
	assert.ErrorIs(t, err, appdomain.ErrAlreadyDecided)

	n, err := f.ws.CountForProject(ctx, pid, f.seekers[0])
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTransactionalConcurrentSubmit_Integration(t *testing.T) {
	ctx := context.Background()
	db := setupPostgres(t)
	f := newFixture(t, db, 5)
	coord := lifecycle.NewTransactional(lifecycle.NewPostgresStore(db), lifecycle.NopPublisher{}, zap.NewNop().Sugar())
	pid := f.project(t)

	var wg sync.WaitGroup
	errs := make([]error, len(f.seekers))
	for i, s := range f.seekers {
		wg.Add(1)
		go func(i int, seeker string) {
			defer wg.Done()
			_, errs[i] = coord.SubmitApplication(ctx, seeker, pid)
		}(i, s)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, lifecycle.ErrProjectNotAvailable)
	}
	assert.Equal(t, 1, ok)
}

func TestReconcileRepairsOrphan_Integration(t *testing.T) {
	ctx := context.Background()
	db := setupPostgres(t)
	f := newFixture(t, db, 1)
	pid := f.project(t)

	// what a sequential submit leaves when the project update fails
	_, err := f.apps.Insert(ctx, f.seekers[0], pid, time.Now())
	require.NoError(t, err)

	rec := reconcile.New(db, lifecycle.NewPostgresStore(db), zap.NewNop().Sugar())
	rep, err := rec.Run(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, rep.ProjectsMarkedInReview, 1)

	p, err := f.projects.GetByID(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, projdomain.StatusInReview, p.Status)
}

func TestProjectWorkspaceIsUnique_Integration(t *testing.T) {
	ctx := context.Background()
	db := setupPostgres(t)
	f := newFixture(t, db, 1)
	pid := f.project(t)
	p, err := f.projects.GetByID(ctx, pid)
	require.NoError(t, err)

	require.NoError(t, f.ws.Insert(ctx, wsdomain.NewProject(pid, p.Title, p.OwnerID, f.seekers[0])))
	err = f.ws.Insert(ctx, wsdomain.NewProject(pid, p.Title, p.OwnerID, f.seekers[0]))
	assert.ErrorIs(t, err, wsdomain.ErrDuplicate)
}
