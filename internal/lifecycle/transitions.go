// Package lifecycle implements the bug workflow state machine.
//
// Every operation takes the current Bug (and BugFix where relevant) by value,
// validates the whole change first and returns updated copies. Inputs are never
// modified, so a rejected command leaves no partial change behind and callers
// persist the returned values as one unit.
package lifecycle

import (
	"fmt"

	"bug-lifecycle-tracker/internal/access"
	"bug-lifecycle-tracker/internal/entities"
)

// Op names a workflow operation.
type Op string

const (
	OpApprove       Op = "approve"
	OpReject        Op = "reject"
	OpApproveReopen Op = "approve_reopen"
	OpRejectReopen  Op = "reject_reopen"
	OpAssign        Op = "assign"
	OpSubmitFix     Op = "submit_fix"
	OpRequestReopen Op = "request_reopen"
	OpAcceptFix     Op = "accept_fix"
	OpRejectFix     Op = "reject_fix"

	// Corrections applied when a member leaves the project.
	OpReleaseAssignment Op = "release_assignment"
	OpDismissReport     Op = "dismiss_report"
)

// Transition is one row of the transition table.
type Transition struct {
	From []entities.BugStatus
	To   entities.BugStatus
	Role access.Role
}

var transitions = map[Op]Transition{
	OpApprove: {
		From: []entities.BugStatus{entities.StatusPendingReview},
		To:   entities.StatusOpen,
		Role: access.RoleLead,
	},
	OpReject: {
		From: []entities.BugStatus{entities.StatusPendingReview},
		To:   entities.StatusRejected,
		Role: access.RoleLead,
	},
	OpApproveReopen: {
		From: []entities.BugStatus{entities.StatusPendingReview},
		To:   entities.StatusReopened,
		Role: access.RoleLead,
	},
	OpRejectReopen: {
		From: []entities.BugStatus{entities.StatusPendingReview},
		To:   entities.StatusResolved,
		Role: access.RoleLead,
	},
	OpAssign: {
		From: []entities.BugStatus{entities.StatusOpen, entities.StatusReopened, entities.StatusAssigned},
		To:   entities.StatusAssigned,
		Role: access.RoleLead,
	},
	OpSubmitFix: {
		From: []entities.BugStatus{entities.StatusAssigned},
		To:   entities.StatusAwaitingVerification,
		Role: access.RoleMember,
	},
	OpRequestReopen: {
		From: []entities.BugStatus{entities.StatusResolved},
		To:   entities.StatusPendingReview,
		Role: access.RoleMember,
	},
	OpAcceptFix: {
		From: []entities.BugStatus{entities.StatusAwaitingVerification},
		To:   entities.StatusResolved,
		Role: access.RoleLead,
	},
	OpRejectFix: {
		From: []entities.BugStatus{entities.StatusAwaitingVerification},
		To:   entities.StatusAssigned,
		Role: access.RoleLead,
	},
	OpReleaseAssignment: {
		From: []entities.BugStatus{entities.StatusAssigned, entities.StatusAwaitingVerification},
		To:   entities.StatusOpen,
		Role: access.RoleLead,
	},
	OpDismissReport: {
		From: []entities.BugStatus{entities.StatusPendingReview},
		To:   entities.StatusRejected,
		Role: access.RoleLead,
	},
}

// Lookup returns the table row for op.
func Lookup(op Op) (Transition, bool) {
	t, ok := transitions[op]
	return t, ok
}

// Allowed reports whether op may fire from status.
func Allowed(op Op, status entities.BugStatus) bool {
	t, ok := transitions[op]
	if !ok {
		return false
	}
	for _, s := range t.From {
		if s == status {
			return true
		}
	}
	return false
}

// Reachable returns every status reachable from PENDING_REVIEW through the table.
func Reachable() map[entities.BugStatus]bool {
	seen := map[entities.BugStatus]bool{entities.StatusPendingReview: true}
	queue := []entities.BugStatus{entities.StatusPendingReview}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, t := range transitions {
			if seen[t.To] {
				continue
			}
			for _, s := range t.From {
				if s == cur {
					seen[t.To] = true
					queue = append(queue, t.To)
					break
				}
			}
		}
	}
	return seen
}

func checkFrom(op Op, status entities.BugStatus) error {
	if Allowed(op, status) {
		return nil
	}
	return fmt.Errorf("%w: cannot %s a bug in status %s", entities.ErrInvalidState, humanOp(op), status)
}

func humanOp(op Op) string {
	switch op {
	case OpApproveReopen:
		return "approve reopen of"
	case OpRejectReopen:
		return "reject reopen of"
	case OpSubmitFix:
		return "submit a fix for"
	case OpRequestReopen:
		return "request reopen of"
	case OpAcceptFix:
		return "accept a fix for"
	case OpRejectFix:
		return "reject a fix for"
	case OpReleaseAssignment:
		return "release"
	case OpDismissReport:
		return "dismiss"
	default:
		return string(op)
	}
}
