package lifecycle

import (
	"testing"
	"time"

	"bug-lifecycle-tracker/internal/entities"

	"github.com/stretchr/testify/require"
)

const (
	lead     = "lead"
	dev      = "dev"
	reporter = "reporter"
)

func fixedClock() func() time.Time {
	t0 := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t0 = t0.Add(time.Second)
		return t0
	}
}

func testProject() *entities.Project {
	return &entities.Project{
		ID:     "p1",
		LeadID: lead,
		Members: []entities.Member{
			{UserID: lead, Role: entities.RoleFullstack},
			{UserID: dev, Role: entities.RoleBackend},
			{UserID: reporter, Role: entities.RoleQA},
		},
		IsActive: true,
	}
}

func reportInput() ReportInput {
	return ReportInput{
		Title:       "Login button",
		Description: "nothing happens on click",
		BugType:     entities.BugTypeUI,
		Environment: entities.EnvStaging,
	}
}

func newBug(t *testing.T, m *Machine, p *entities.Project) entities.Bug {
	t.Helper()
	b, err := m.Report(p, reporter, "b1", reportInput())
	require.NoError(t, err)
	return b
}

func resolvedBug(t *testing.T, m *Machine, p *entities.Project) entities.Bug {
	t.Helper()
	b := newBug(t, m, p)
	b, err := m.Approve(p, b, lead, "")
	require.NoError(t, err)
	b, err = m.Assign(p, b, lead, dev)
	require.NoError(t, err)
	b, f, err := m.SubmitFix(p, b, nil, dev, "f1", validFix())
	require.NoError(t, err)
	b, _, err = m.AcceptFix(p, b, f, lead)
	require.NoError(t, err)
	return b
}

func validFix() FixInput {
	return FixInput{CommitURL: "https://github.com/org/repo/commit/abc", Summary: "handle nil session on click"}
}

func TestReport(t *testing.T) {
	m := New(fixedClock())
	p := testProject()

	b := newBug(t, m, p)
	require.Equal(t, entities.StatusPendingReview, b.Status)
	require.Equal(t, entities.SeverityUnconfirmed, b.Severity)
	require.Equal(t, entities.SeverityMedium, b.SuggestedSeverity)
	require.True(t, b.IsActive)
	require.Equal(t, []entities.Action{entities.ActionBugCreated}, b.History.Actions())

	first, _ := b.History.Last()
	require.Empty(t, first.From)
	require.Equal(t, entities.StatusPendingReview, first.To)
}

func TestReportValidation(t *testing.T) {
	m := New(fixedClock())
	p := testProject()

	tests := []struct {
		name   string
		mutate func(*ReportInput)
	}{
		{name: "short_title", mutate: func(in *ReportInput) { in.Title = "ab" }},
		{name: "short_description", mutate: func(in *ReportInput) { in.Description = "short" }},
		{name: "bad_type", mutate: func(in *ReportInput) { in.BugType = "NOPE" }},
		{name: "bad_environment", mutate: func(in *ReportInput) { in.Environment = "LOCAL" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			in := reportInput()
			tt.mutate(&in)
			_, err := m.Report(p, reporter, "b1", in)
			require.ErrorIs(t, err, entities.ErrInvalidArgument)
		})
	}

	_, err := m.Report(p, "stranger", "b1", reportInput())
	require.ErrorIs(t, err, entities.ErrForbidden)
}

func TestHappyPathHistory(t *testing.T) {
	m := New(fixedClock())
	p := testProject()

	b := resolvedBug(t, m, p)
	require.Equal(t, entities.StatusResolved, b.Status)
	require.Equal(t, []entities.Action{
		entities.ActionBugCreated,
		entities.ActionBugApproved,
		entities.ActionBugAssigned,
		entities.ActionFixSubmitted,
		entities.ActionBugResolved,
	}, b.History.Actions())

	entries := b.History.Entries()
	for i := 1; i < len(entries); i++ {
		require.True(t, entries[i].At.After(entries[i-1].At))
		require.Equal(t, entries[i-1].To, entries[i].From)
	}
}

func TestApproveSeverity(t *testing.T) {
	m := New(fixedClock())
	p := testProject()

	t.Run("suggested", func(t *testing.T) {
		in := reportInput()
		in.Environment = entities.EnvProduction
		b, err := m.Report(p, reporter, "b1", in)
		require.NoError(t, err)

		b, err = m.Approve(p, b, lead, "")
		require.NoError(t, err)
		require.Equal(t, entities.SeverityHigh, b.Severity)
		require.Equal(t, []entities.Action{entities.ActionBugCreated, entities.ActionBugApproved}, b.History.Actions())
	})

	t.Run("explicit_override", func(t *testing.T) {
		b := newBug(t, m, p)
		b, err := m.Approve(p, b, lead, entities.SeverityCritical)
		require.NoError(t, err)
		require.Equal(t, entities.SeverityCritical, b.Severity)
		require.Equal(t, []entities.Action{
			entities.ActionBugCreated,
			entities.ActionSeverityUpdated,
			entities.ActionBugApproved,
		}, b.History.Actions())

		entries := b.History.Entries()
		require.False(t, entries[1].IsStatusChange())
		require.Equal(t, "MEDIUM -> CRITICAL", entries[1].Meta)
	})

	t.Run("explicit_equal_to_default", func(t *testing.T) {
		b := newBug(t, m, p)
		b, err := m.Approve(p, b, lead, entities.SeverityMedium)
		require.NoError(t, err)
		require.Len(t, b.History.Actions(), 2)
	})

	t.Run("missing_suggestion_defaults_medium", func(t *testing.T) {
		b := newBug(t, m, p)
		b.SuggestedSeverity = ""
		b, err := m.Approve(p, b, lead, "")
		require.NoError(t, err)
		require.Equal(t, entities.SeverityMedium, b.Severity)
	})

	t.Run("invalid", func(t *testing.T) {
		b := newBug(t, m, p)
		_, err := m.Approve(p, b, lead, entities.SeverityUnconfirmed)
		require.ErrorIs(t, err, entities.ErrInvalidArgument)
	})
}

func TestApproveIsNotRepeatable(t *testing.T) {
	m := New(fixedClock())
	p := testProject()

	b, err := m.Approve(p, newBug(t, m, p), lead, "")
	require.NoError(t, err)

	again, err := m.Approve(p, b, lead, "")
	require.ErrorIs(t, err, entities.ErrInvalidState)
	require.Equal(t, b.History.Actions(), again.History.Actions())
}

func TestApproveRequiresLead(t *testing.T) {
	m := New(fixedClock())
	p := testProject()

	_, err := m.Approve(p, newBug(t, m, p), dev, "")
	require.ErrorIs(t, err, entities.ErrForbidden)
}

func TestRejectDoesNotMutateInput(t *testing.T) {
	m := New(fixedClock())
	p := testProject()
	b := newBug(t, m, p)

	_, err := m.Reject(p, b, lead, "   ")
	require.ErrorIs(t, err, entities.ErrInvalidArgument)

	rejected, err := m.Reject(p, b, lead, "duplicate of #12")
	require.NoError(t, err)
	require.Equal(t, entities.StatusRejected, rejected.Status)
	require.Equal(t, entities.StatusPendingReview, b.Status)
	require.Equal(t, 1, b.History.Len())
	require.Equal(t, 2, rejected.History.Len())

	last, _ := rejected.History.Last()
	require.Equal(t, "duplicate of #12", last.Meta)
}

func TestAssign(t *testing.T) {
	m := New(fixedClock())
	p := testProject()
	b, err := m.Approve(p, newBug(t, m, p), lead, "")
	require.NoError(t, err)

	_, err = m.Assign(p, b, lead, "stranger")
	require.ErrorIs(t, err, entities.ErrInvalidArgument)

	_, err = m.Assign(p, b, dev, dev)
	require.ErrorIs(t, err, entities.ErrForbidden)

	b, err = m.Assign(p, b, lead, dev)
	require.NoError(t, err)
	require.Equal(t, entities.StatusAssigned, b.Status)
	require.Equal(t, dev, b.AssignedTo)

	_, err = m.Assign(p, b, lead, dev)
	require.ErrorIs(t, err, entities.ErrAlreadyAssigned)
	require.ErrorIs(t, err, entities.ErrConflict)

	b, err = m.Assign(p, b, lead, reporter)
	require.NoError(t, err)
	require.Equal(t, entities.StatusAssigned, b.Status)
	require.Equal(t, reporter, b.AssignedTo)

	last, _ := b.History.Last()
	require.Equal(t, entities.ActionBugReassigned, last.Action)
	require.Equal(t, entities.StatusAssigned, last.From)
	require.Equal(t, entities.StatusAssigned, last.To)
}

func TestAssignFromPendingReviewFails(t *testing.T) {
	m := New(fixedClock())
	p := testProject()

	_, err := m.Assign(p, newBug(t, m, p), lead, dev)
	require.ErrorIs(t, err, entities.ErrInvalidState)
}

func TestReopenWorkflow(t *testing.T) {
	m := New(fixedClock())
	p := testProject()

	t.Run("request_on_unresolved_fails", func(t *testing.T) {
		_, err := m.RequestReopen(p, newBug(t, m, p), reporter, "still broken")
		require.ErrorIs(t, err, entities.ErrInvalidState)
	})

	t.Run("request_requires_reason", func(t *testing.T) {
		_, err := m.RequestReopen(p, resolvedBug(t, m, p), reporter, "")
		require.ErrorIs(t, err, entities.ErrInvalidArgument)
	})

	t.Run("decision_without_request_fails", func(t *testing.T) {
		b := newBug(t, m, p)
		_, err := m.ApproveReopen(p, b, lead)
		require.ErrorIs(t, err, entities.ErrInvalidState)
		_, err = m.RejectReopen(p, b, lead, "no")
		require.ErrorIs(t, err, entities.ErrInvalidState)
	})

	t.Run("approve", func(t *testing.T) {
		b, err := m.RequestReopen(p, resolvedBug(t, m, p), reporter, "still broken")
		require.NoError(t, err)
		require.Equal(t, entities.StatusPendingReview, b.Status)
		require.Len(t, b.ReviewRequests, 1)
		b.AssignedTo = dev

		_, err = m.Approve(p, b, lead, "")
		require.ErrorIs(t, err, entities.ErrInvalidState)
		_, err = m.Reject(p, b, lead, "no")
		require.ErrorIs(t, err, entities.ErrInvalidState)

		b, err = m.ApproveReopen(p, b, lead)
		require.NoError(t, err)
		require.Equal(t, entities.StatusReopened, b.Status)
		require.Empty(t, b.AssignedTo)
		require.Equal(t, entities.ReviewApproved, b.ReviewRequests[0].Status)

		b, err = m.Assign(p, b, lead, dev)
		require.NoError(t, err)
		last, _ := b.History.Last()
		require.Equal(t, entities.ActionBugAssigned, last.Action)
	})

	t.Run("reject", func(t *testing.T) {
		b, err := m.RequestReopen(p, resolvedBug(t, m, p), reporter, "still broken")
		require.NoError(t, err)

		_, err = m.RejectReopen(p, b, lead, "")
		require.ErrorIs(t, err, entities.ErrInvalidArgument)

		b, err = m.RejectReopen(p, b, lead, "works as intended")
		require.NoError(t, err)
		require.Equal(t, entities.StatusResolved, b.Status)
		require.Equal(t, entities.ReviewRejected, b.ReviewRequests[0].Status)

		last, _ := b.History.Last()
		require.Equal(t, entities.ActionReopenRejected, last.Action)
		require.Equal(t, "works as intended", last.Meta)
	})
}

func TestMemberRemovalCorrections(t *testing.T) {
	m := New(fixedClock())
	p := testProject()

	t.Run("release", func(t *testing.T) {
		b, err := m.Approve(p, newBug(t, m, p), lead, "")
		require.NoError(t, err)
		_, err = m.ReleaseAssignment(b, lead, "gone")
		require.ErrorIs(t, err, entities.ErrInvalidState)

		b, err = m.Assign(p, b, lead, dev)
		require.NoError(t, err)
		b, err = m.ReleaseAssignment(b, lead, "gone")
		require.NoError(t, err)
		require.Equal(t, entities.StatusOpen, b.Status)
		require.Empty(t, b.AssignedTo)
	})

	t.Run("dismiss", func(t *testing.T) {
		b := newBug(t, m, p)
		b.ReviewRequests = []entities.ReviewRequest{{RequestedBy: dev, Status: entities.ReviewPending}}
		b, err := m.DismissReport(b, lead, "gone")
		require.NoError(t, err)
		require.Equal(t, entities.StatusRejected, b.Status)
		require.False(t, b.IsActive)
		require.Empty(t, b.ReviewRequests)
	})

	t.Run("cancel_requests", func(t *testing.T) {
		b := newBug(t, m, p)
		b.ReviewRequests = []entities.ReviewRequest{
			{RequestedBy: dev, Status: entities.ReviewPending},
			{RequestedBy: reporter, Status: entities.ReviewPending},
			{RequestedBy: dev, Status: entities.ReviewRejected},
		}
		next, n := m.CancelReviewRequests(b, lead, dev, "gone")
		require.Equal(t, 1, n)
		require.Equal(t, entities.ReviewCancelled, next.ReviewRequests[0].Status)
		require.Equal(t, entities.ReviewPending, next.ReviewRequests[1].Status)
		require.Equal(t, entities.ReviewPending, b.ReviewRequests[0].Status)
		require.Equal(t, b.Status, next.Status)

		last, _ := next.History.Last()
		require.Equal(t, entities.ActionReviewRequestCancelled, last.Action)
		require.False(t, last.IsStatusChange())

		same, n := m.CancelReviewRequests(next, lead, dev, "gone")
		require.Zero(t, n)
		require.Equal(t, next.History.Len(), same.History.Len())
	})
}

func TestReachable(t *testing.T) {
	reach := Reachable()
	for _, s := range []entities.BugStatus{
		entities.StatusPendingReview,
		entities.StatusOpen,
		entities.StatusAssigned,
		entities.StatusAwaitingVerification,
		entities.StatusResolved,
		entities.StatusReopened,
		entities.StatusRejected,
	} {
		require.True(t, reach[s], s)
	}
	require.False(t, reach[entities.StatusReviewRequested])
}
