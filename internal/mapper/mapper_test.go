package mapper

import (
	"testing"
	"time"

	"bug-lifecycle-tracker/internal/entities"
	"bug-lifecycle-tracker/internal/transport/http/dto"

	"github.com/stretchr/testify/require"
)

func TestToBugKeepsHistoryOrder(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	b := entities.Bug{
		ID:       "b1",
		Status:   entities.StatusOpen,
		Severity: entities.SeverityHigh,
		History: entities.NewHistory(
			entities.HistoryEntry{Action: entities.ActionBugCreated, To: entities.StatusPendingReview, At: at},
			entities.HistoryEntry{Action: entities.ActionSeverityUpdated, At: at, Meta: "MEDIUM -> HIGH"},
			entities.HistoryEntry{Action: entities.ActionBugApproved, From: entities.StatusPendingReview, To: entities.StatusOpen, At: at},
		),
	}

	res := ToBug(b)
	require.Nil(t, res.AssignedTo)
	require.NotNil(t, res.Fixes)
	require.Len(t, res.History, 3)

	require.Equal(t, "BUG_CREATED", res.History[0].Action)
	require.Nil(t, res.History[0].From)
	require.Equal(t, "PENDING_REVIEW", *res.History[0].To)

	require.Nil(t, res.History[1].From)
	require.Nil(t, res.History[1].To)
	require.Equal(t, "MEDIUM -> HIGH", res.History[1].Meta)

	require.Equal(t, "PENDING_REVIEW", *res.History[2].From)
	require.Equal(t, "OPEN", *res.History[2].To)
}

func TestFromCreateBugNormalizesEnums(t *testing.T) {
	in := FromCreateBug(dto.CreateBugRequest{Title: "t", BugType: " api ", Environment: "Production"})
	require.Equal(t, entities.BugTypeAPI, in.BugType)
	require.Equal(t, entities.EnvProduction, in.Environment)
}

func TestToMemberRemovalWithoutProject(t *testing.T) {
	res := ToMemberRemoval(entities.RemovalResult{ReopenedBugs: 2})
	require.Equal(t, 2, res.ReopenedBugs)
	require.Empty(t, res.Project.ProjectID)
}
