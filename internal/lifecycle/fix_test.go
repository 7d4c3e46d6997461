package lifecycle

import (
	"testing"

	"bug-lifecycle-tracker/internal/entities"

	"github.com/stretchr/testify/require"
)

func assignedBug(t *testing.T, m *Machine, p *entities.Project) entities.Bug {
	t.Helper()
	b, err := m.Approve(p, newBug(t, m, p), lead, "")
	require.NoError(t, err)
	b, err = m.Assign(p, b, lead, dev)
	require.NoError(t, err)
	return b
}

func TestFixInputValidate(t *testing.T) {
	tests := []struct {
		name string
		in   FixInput
		ok   bool
	}{
		{name: "valid", in: validFix(), ok: true},
		{name: "http", in: FixInput{CommitURL: "http://git.local/c/1", Summary: "0123456789"}, ok: true},
		{name: "no_scheme", in: FixInput{CommitURL: "github.com/org/repo", Summary: "0123456789"}},
		{name: "no_dot", in: FixInput{CommitURL: "https://localhost/abc", Summary: "0123456789"}},
		{name: "short_summary", in: FixInput{CommitURL: "https://github.com/a", Summary: "  fixed  "}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, entities.ErrInvalidArgument)
		})
	}
}

func TestSubmitFix(t *testing.T) {
	m := New(fixedClock())
	p := testProject()
	b := assignedBug(t, m, p)

	_, _, err := m.SubmitFix(p, b, nil, reporter, "f1", validFix())
	require.ErrorIs(t, err, entities.ErrForbidden)

	_, _, err = m.SubmitFix(p, b, nil, "stranger", "f1", validFix())
	require.ErrorIs(t, err, entities.ErrForbidden)

	next, fix, err := m.SubmitFix(p, b, nil, dev, "f1", validFix())
	require.NoError(t, err)
	require.Equal(t, entities.StatusAwaitingVerification, next.Status)
	require.Equal(t, []string{"f1"}, next.Fixes)
	require.Empty(t, b.Fixes)
	require.Equal(t, entities.FixPending, fix.Status)
	require.Equal(t, b.ID, fix.BugID)
	require.Equal(t, p.ID, fix.ProjectID)

	last, _ := next.History.Last()
	require.Equal(t, entities.ActionFixSubmitted, last.Action)
	require.Equal(t, "f1", last.Meta)

	_, _, err = m.SubmitFix(p, next, &fix, dev, "f2", validFix())
	require.ErrorIs(t, err, entities.ErrPendingFixExists)
	require.ErrorIs(t, err, entities.ErrConflict)
}

func TestSubmitFixRequiresAssignedStatus(t *testing.T) {
	m := New(fixedClock())
	p := testProject()

	_, _, err := m.SubmitFix(p, newBug(t, m, p), nil, dev, "f1", validFix())
	require.ErrorIs(t, err, entities.ErrInvalidState)
}

func TestAcceptFix(t *testing.T) {
	m := New(fixedClock())
	p := testProject()
	b, f, err := m.SubmitFix(p, assignedBug(t, m, p), nil, dev, "f1", validFix())
	require.NoError(t, err)

	_, _, err = m.AcceptFix(p, b, f, dev)
	require.ErrorIs(t, err, entities.ErrForbidden)

	other := f
	other.BugID = "another"
	_, _, err = m.AcceptFix(p, b, other, lead)
	require.ErrorIs(t, err, entities.ErrFixNotFound)

	resolved, accepted, err := m.AcceptFix(p, b, f, lead)
	require.NoError(t, err)
	require.Equal(t, entities.StatusResolved, resolved.Status)
	require.Equal(t, entities.FixAccepted, accepted.Status)
	require.Equal(t, entities.FixPending, f.Status)
	require.Empty(t, resolved.AssignedTo)

	_, _, err = m.AcceptFix(p, resolved, accepted, lead)
	require.ErrorIs(t, err, entities.ErrInvalidState)

	_, _, err = m.RejectFix(p, b, accepted, lead, "late")
	require.ErrorIs(t, err, entities.ErrInvalidState)
}

func TestRejectFix(t *testing.T) {
	m := New(fixedClock())
	p := testProject()
	b, f, err := m.SubmitFix(p, assignedBug(t, m, p), nil, dev, "f1", validFix())
	require.NoError(t, err)

	_, _, err = m.RejectFix(p, b, f, lead, "")
	require.ErrorIs(t, err, entities.ErrInvalidArgument)

	back, rejected, err := m.RejectFix(p, b, f, lead, "tests fail")
	require.NoError(t, err)
	require.Equal(t, entities.StatusAssigned, back.Status)
	require.Equal(t, dev, back.AssignedTo)
	require.Equal(t, entities.FixRejected, rejected.Status)
	require.Equal(t, "tests fail", rejected.RejectionReason)

	last, _ := back.History.Last()
	require.Equal(t, entities.ActionFixRejected, last.Action)

	again, second, err := m.SubmitFix(p, back, &rejected, dev, "f2", validFix())
	require.NoError(t, err)
	require.Equal(t, []string{"f1", "f2"}, again.Fixes)
	require.Equal(t, entities.FixPending, second.Status)
}

func TestWithdrawFix(t *testing.T) {
	m := New(fixedClock())
	f := entities.BugFix{ID: "f1", Status: entities.FixPending}

	out, err := m.WithdrawFix(f, "Developer removed from project")
	require.NoError(t, err)
	require.Equal(t, entities.FixRejected, out.Status)
	require.Equal(t, "Developer removed from project", out.RejectionReason)

	_, err = m.WithdrawFix(out, "again")
	require.ErrorIs(t, err, entities.ErrInvalidState)
}
