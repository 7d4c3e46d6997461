package postgres

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"bug-lifecycle-tracker/config"
	"bug-lifecycle-tracker/internal/entities"
	"bug-lifecycle-tracker/internal/lifecycle"
	"bug-lifecycle-tracker/internal/repository/uow"

	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	lead     = "u-lead"
	dev      = "u-dev"
	reporter = "u-reporter"
)

var errBoom = errors.New("boom")

func TestRepositoryIntegration(t *testing.T) {
	ctx := context.Background()
	repo := startRepo(t)
	m := lifecycle.New(nil)

	project := seedProject(t, repo)

	listed, err := repo.ListProjectsFor(ctx, dev)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Len(t, listed[0].Members, 3)

	bug := reportBug(t, repo, m, project, "b1")

	err = repo.RunInTx(ctx, func(tx uow.Tx) error {
		b, err := tx.BugForUpdate(ctx, project.ID, bug.ID)
		if err != nil {
			return err
		}
		next, err := m.Approve(project, *b, lead, entities.SeverityHigh)
		if err != nil {
			return err
		}
		next, err = m.Assign(project, next, lead, dev)
		if err != nil {
			return err
		}
		return tx.SaveBug(ctx, next)
	})
	require.NoError(t, err)

	stored, err := repo.GetBug(ctx, project.ID, bug.ID)
	require.NoError(t, err)
	require.Equal(t, entities.StatusAssigned, stored.Status)
	require.Equal(t, dev, stored.AssignedTo)
	require.Equal(t, entities.SeverityHigh, stored.Severity)
	require.Equal(t, []entities.Action{
		entities.ActionBugCreated,
		entities.ActionSeverityUpdated,
		entities.ActionBugApproved,
		entities.ActionBugAssigned,
	}, stored.History.Actions())

	last, _ := stored.History.Last()
	require.Equal(t, entities.StatusOpen, last.From)
	require.Equal(t, entities.StatusAssigned, last.To)

	submitFix(t, repo, m, project, bug.ID, "f1")

	fixes, err := repo.ListFixes(ctx, bug.ID)
	require.NoError(t, err)
	require.Len(t, fixes, 1)
	require.Equal(t, entities.FixPending, fixes[0].Status)

	stored, err = repo.GetBug(ctx, project.ID, bug.ID)
	require.NoError(t, err)
	require.Equal(t, entities.StatusAwaitingVerification, stored.Status)
	require.Equal(t, []string{"f1"}, stored.Fixes)

	err = repo.RunInTx(ctx, func(tx uow.Tx) error {
		return tx.CreateFix(ctx, entities.BugFix{
			ID: "f-dup", BugID: bug.ID, ProjectID: project.ID, SubmittedBy: dev,
			CommitURL: "https://github.com/org/repo/commit/2", Summary: "second attempt",
			Status: entities.FixPending, CreatedAt: time.Now(), UpdatedAt: time.Now(),
		})
	})
	require.ErrorIs(t, err, entities.ErrPendingFixExists)

	stats, err := repo.ProjectStats(ctx, project.ID)
	require.NoError(t, err)
	require.Equal(t, []entities.AssigneeStat{{UserID: dev, Awaiting: 1}}, stats.Workload)
	require.Equal(t, []entities.FixStat{{Status: entities.FixPending, FixCount: 1}}, stats.Fixes)

	_, err = repo.ProjectStats(ctx, "missing")
	require.ErrorIs(t, err, entities.ErrProjectNotFound)
}

func TestRunInTxRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := startRepo(t)
	m := lifecycle.New(nil)

	project := seedProject(t, repo)
	bug := reportBug(t, repo, m, project, "b-rollback")

	err := repo.RunInTx(ctx, func(tx uow.Tx) error {
		b, err := tx.BugForUpdate(ctx, project.ID, bug.ID)
		if err != nil {
			return err
		}
		next, err := m.Reject(project, *b, lead, "duplicate report")
		if err != nil {
			return err
		}
		if err := tx.SaveBug(ctx, next); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	stored, err := repo.GetBug(ctx, project.ID, bug.ID)
	require.NoError(t, err)
	require.Equal(t, entities.StatusPendingReview, stored.Status)
	require.Equal(t, 1, stored.History.Len())
}

func TestConcurrentSubmitFixIntegration(t *testing.T) {
	ctx := context.Background()
	repo := startRepo(t)
	m := lifecycle.New(nil)

	project := seedProject(t, repo)
	bug := reportBug(t, repo, m, project, "b-race")
	require.NoError(t, repo.RunInTx(ctx, func(tx uow.Tx) error {
		b, err := tx.BugForUpdate(ctx, project.ID, bug.ID)
		if err != nil {
			return err
		}
		next, err := m.Approve(project, *b, lead, "")
		if err != nil {
			return err
		}
		next, err = m.Assign(project, next, lead, dev)
		if err != nil {
			return err
		}
		return tx.SaveBug(ctx, next)
	}))

	results := make([]error, 2)
	var g errgroup.Group
	for i := range results {
		i := i
		g.Go(func() error {
			results[i] = repo.RunInTx(ctx, func(tx uow.Tx) error {
				return submitFixTx(ctx, tx, m, project, bug.ID, "f-race-"+strconv.Itoa(i))
			})
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var ok, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, entities.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, ok)
	require.Equal(t, 1, conflicts)

	fixes, err := repo.ListFixes(ctx, bug.ID)
	require.NoError(t, err)
	require.Len(t, fixes, 1)
}

func startRepo(t *testing.T) *Postgres {
	t.Helper()
	ctx := context.Background()

	cfg, cleanup := setupPostgres(t)
	t.Cleanup(cleanup)

	repo := New(ctx, testLogger(t), cfg)
	require.NoError(t, repo.OnStart(ctx))
	t.Cleanup(func() { _ = repo.OnStop(ctx) })
	return repo
}

func seedProject(t *testing.T, repo *Postgres) *entities.Project {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	for _, u := range []entities.User{
		{ID: lead, Name: "Lead", Email: "lead@example.com", CreatedAt: now},
		{ID: dev, Name: "Dev", Email: "dev@example.com", CreatedAt: now},
		{ID: reporter, Name: "Reporter", Email: "qa@example.com", CreatedAt: now},
	} {
		_, err := repo.CreateUser(ctx, u)
		require.NoError(t, err)
	}
	_, err := repo.CreateUser(ctx, entities.User{ID: "u-dup", Name: "Dup", Email: "LEAD@example.com", CreatedAt: now})
	require.ErrorIs(t, err, entities.ErrEmailTaken)

	project := entities.Project{
		ID:         "p1",
		Name:       "Tracker",
		LeadID:     lead,
		InviteCode: "ABCD1234",
		IsActive:   true,
		Members: []entities.Member{
			{UserID: lead, Role: entities.RoleFullstack, JoinedAt: now},
			{UserID: dev, Role: entities.RoleBackend, JoinedAt: now.Add(time.Second)},
			{UserID: reporter, Role: entities.RoleQA, JoinedAt: now.Add(2 * time.Second)},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.RunInTx(ctx, func(tx uow.Tx) error {
		return tx.CreateProject(ctx, project)
	}))

	err = repo.RunInTx(ctx, func(tx uow.Tx) error {
		dup := project
		dup.ID = "p2"
		return tx.CreateProject(ctx, dup)
	})
	require.ErrorIs(t, err, entities.ErrInviteCodeTaken)

	byCode, err := func() (*entities.Project, error) {
		var res *entities.Project
		err := repo.RunInTx(ctx, func(tx uow.Tx) error {
			var err error
			res, err = tx.ProjectByInviteCodeForUpdate(ctx, "ABCD1234")
			return err
		})
		return res, err
	}()
	require.NoError(t, err)
	require.Equal(t, project.ID, byCode.ID)

	stored, err := repo.GetProject(ctx, project.ID)
	require.NoError(t, err)
	return stored
}

func reportBug(t *testing.T, repo *Postgres, m *lifecycle.Machine, p *entities.Project, id string) entities.Bug {
	t.Helper()
	ctx := context.Background()

	b, err := m.Report(p, reporter, id, lifecycle.ReportInput{
		Title:       "Checkout crash",
		Description: "crash on submit in production checkout",
		BugType:     entities.BugTypeFunctional,
		Environment: entities.EnvProduction,
	})
	require.NoError(t, err)
	require.NoError(t, repo.RunInTx(ctx, func(tx uow.Tx) error {
		return tx.CreateBug(ctx, b)
	}))
	return b
}

func submitFix(t *testing.T, repo *Postgres, m *lifecycle.Machine, p *entities.Project, bugID, fixID string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repo.RunInTx(ctx, func(tx uow.Tx) error {
		return submitFixTx(ctx, tx, m, p, bugID, fixID)
	}))
}

func submitFixTx(ctx context.Context, tx uow.Tx, m *lifecycle.Machine, p *entities.Project, bugID, fixID string) error {
	b, err := tx.BugForUpdate(ctx, p.ID, bugID)
	if err != nil {
		return err
	}
	pending, err := tx.PendingFix(ctx, bugID)
	if err != nil {
		return err
	}
	next, fix, err := m.SubmitFix(p, *b, pending, dev, fixID, lifecycle.FixInput{
		CommitURL: "https://github.com/org/repo/commit/1",
		Summary:   "guard nil cart before submit",
	})
	if err != nil {
		return err
	}
	if err := tx.CreateFix(ctx, fix); err != nil {
		return err
	}
	return tx.SaveBug(ctx, next)
}

func setupPostgres(t *testing.T) (*config.Config, func()) {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err)

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_PASSWORD=postgres",
			"POSTGRES_USER=postgres",
			"POSTGRES_DB=bug_tracker_db",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
	})
	require.NoError(t, err)

	hostPort := resource.GetPort("5432/tcp")

	port, err := strconv.Atoi(hostPort)
	require.NoError(t, err)
	migrationsDir, err := filepath.Abs(filepath.Join("..", "..", "..", "db", "migrations"))
	require.NoError(t, err)
	require.DirExists(t, migrationsDir)

	cfg := &config.Config{
		Server:  config.ServerConfig{Host: "0.0.0.0", Port: 8080, ShutdownTimeout: 5 * time.Second},
		HTTP:    config.HTTPConfig{RequestTimeout: 5 * time.Second},
		Storage: config.StorageConfig{Backend: config.BackendPostgres},
		Postgres: config.PostgresConfig{
			Host:           "localhost",
			Port:           port,
			User:           "postgres",
			Password:       "postgres",
			DBName:         "bug_tracker_db",
			SSLMode:        "disable",
			MigrationsDir:  migrationsDir,
			QueryTimeout:   10 * time.Second,
			MigrateTimeout: 20 * time.Second,
			MaxConns:       4,
			MinConns:       1,
			TxMaxElapsed:   5 * time.Second,
		},
	}

	require.NoError(t, pool.Retry(func() error {
		db, err := sql.Open("postgres", "host=localhost port="+hostPort+" user=postgres password=postgres dbname=bug_tracker_db sslmode=disable")
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		return db.Ping()
	}))

	cleanup := func() {
		_ = pool.Purge(resource)
	}

	return cfg, cleanup
}

func testLogger(t *testing.T) *zap.SugaredLogger {
	t.Helper()

	l, _ := zap.NewDevelopment()
	t.Cleanup(func() { _ = l.Sync() })
	return l.Sugar()
}
