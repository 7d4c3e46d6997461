package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"bug-lifecycle-tracker/internal/entities"
	"bug-lifecycle-tracker/internal/repository/uow"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seeded(t *testing.T) *Store {
	t.Helper()
	s := New(zap.NewNop().Sugar())
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	err := s.RunInTx(context.Background(), func(tx uow.Tx) error {
		if err := tx.CreateProject(context.Background(), entities.Project{
			ID:         "p1",
			Name:       "Tracker",
			LeadID:     "lead",
			Members:    []entities.Member{{UserID: "lead", Role: entities.RoleFullstack, JoinedAt: now}},
			InviteCode: "ABCD1234",
			IsActive:   true,
			CreatedAt:  now,
		}); err != nil {
			return err
		}
		return tx.CreateBug(context.Background(), entities.Bug{
			ID:        "b1",
			ProjectID: "p1",
			CreatedBy: "lead",
			Status:    entities.StatusPendingReview,
			IsActive:  true,
			History:   entities.NewHistory(entities.HistoryEntry{Action: entities.ActionBugCreated, To: entities.StatusPendingReview, At: now}),
			CreatedAt: now,
		})
	})
	require.NoError(t, err)
	return s
}

func TestStore_RunInTxDiscardsFailedUnit(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)
	boom := errors.New("boom")

	err := s.RunInTx(ctx, func(tx uow.Tx) error {
		b, err := tx.BugForUpdate(ctx, "p1", "b1")
		require.NoError(t, err)
		b.Status = entities.StatusOpen
		require.NoError(t, tx.SaveBug(ctx, *b))
		return boom
	})
	require.ErrorIs(t, err, boom)

	b, err := s.GetBug(ctx, "p1", "b1")
	require.NoError(t, err)
	require.Equal(t, entities.StatusPendingReview, b.Status)
}

func TestStore_RunInTxDiscardsPanickedUnit(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)

	require.Panics(t, func() {
		_ = s.RunInTx(ctx, func(tx uow.Tx) error {
			p, err := tx.ProjectForUpdate(ctx, "p1")
			require.NoError(t, err)
			p.Name = "Renamed"
			require.NoError(t, tx.SaveProject(ctx, *p))
			panic("unexpected")
		})
	})

	p, err := s.GetProject(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "Tracker", p.Name)

	// the store stays usable after a panicking unit
	require.NoError(t, s.RunInTx(ctx, func(tx uow.Tx) error { return nil }))
}

func TestStore_RunInTxHonoursCancelledContext(t *testing.T) {
	s := seeded(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.RunInTx(ctx, func(tx uow.Tx) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, called)
}

func TestStore_SaveBugRejectsShrunkHistory(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)

	err := s.RunInTx(ctx, func(tx uow.Tx) error {
		b, err := tx.BugForUpdate(ctx, "p1", "b1")
		require.NoError(t, err)
		b.History = entities.History{}
		return tx.SaveBug(ctx, *b)
	})
	require.Error(t, err)

	b, err := s.GetBug(ctx, "p1", "b1")
	require.NoError(t, err)
	require.Equal(t, 1, b.History.Len())
}

func TestStore_OnePendingFixPerBug(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)
	fix := entities.BugFix{ID: "f1", BugID: "b1", ProjectID: "p1", SubmittedBy: "lead", Status: entities.FixPending}

	require.NoError(t, s.RunInTx(ctx, func(tx uow.Tx) error { return tx.CreateFix(ctx, fix) }))

	second := fix
	second.ID = "f2"
	err := s.RunInTx(ctx, func(tx uow.Tx) error { return tx.CreateFix(ctx, second) })
	require.ErrorIs(t, err, entities.ErrPendingFixExists)

	err = s.RunInTx(ctx, func(tx uow.Tx) error {
		pending, err := tx.PendingFix(ctx, "b1")
		require.NoError(t, err)
		require.NotNil(t, pending)
		pending.Status = entities.FixRejected
		if err := tx.SaveFix(ctx, *pending); err != nil {
			return err
		}
		return tx.CreateFix(ctx, second)
	})
	require.NoError(t, err)

	fixes, err := s.ListFixes(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, fixes, 2)
}

func TestStore_UsersAndInviteCodes(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)

	_, err := s.CreateUser(ctx, entities.User{ID: "u1", Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, entities.User{ID: "u2", Name: "Ann", Email: "ANN@example.com"})
	require.ErrorIs(t, err, entities.ErrEmailTaken)

	_, err = s.GetUser(ctx, "missing")
	require.ErrorIs(t, err, entities.ErrUserNotFound)

	err = s.RunInTx(ctx, func(tx uow.Tx) error {
		return tx.CreateProject(ctx, entities.Project{ID: "p2", Name: "Other", LeadID: "u1", InviteCode: "ABCD1234", IsActive: true})
	})
	require.ErrorIs(t, err, entities.ErrInviteCodeTaken)

	err = s.RunInTx(ctx, func(tx uow.Tx) error {
		p, err := tx.ProjectByInviteCodeForUpdate(ctx, "ABCD1234")
		require.NoError(t, err)
		require.Equal(t, "p1", p.ID)
		_, err = tx.ProjectByInviteCodeForUpdate(ctx, "NOPE0000")
		return err
	})
	require.ErrorIs(t, err, entities.ErrInviteCodeNotFound)
}
