package lifecycle

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"bug-lifecycle-tracker/internal/access"
	"bug-lifecycle-tracker/internal/entities"
	"bug-lifecycle-tracker/internal/severity"
)

// Machine applies workflow operations.
type Machine struct {
	now func() time.Time
}

// New constructs a Machine. A nil clock means time.Now in UTC.
func New(now func() time.Time) *Machine {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Machine{now: now}
}

// ReportInput carries a new bug report.
type ReportInput struct {
	Title       string
	Description string
	BugType     entities.BugType
	Environment entities.Environment
	StackTrace  string
	ModuleName  string
}

// Report creates a bug in PENDING_REVIEW with its BUG_CREATED entry.
func (m *Machine) Report(p *entities.Project, actorID, bugID string, in ReportInput) (entities.Bug, error) {
	if err := access.Authorize(actorID, p, access.RoleMember); err != nil {
		return entities.Bug{}, err
	}

	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	switch {
	case utf8.RuneCountInString(title) < 3 || utf8.RuneCountInString(title) > 100:
		return entities.Bug{}, fmt.Errorf("%w: title must be 3 to 100 characters", entities.ErrInvalidArgument)
	case utf8.RuneCountInString(description) < 10 || utf8.RuneCountInString(description) > 5000:
		return entities.Bug{}, fmt.Errorf("%w: description must be 10 to 5000 characters", entities.ErrInvalidArgument)
	case !in.BugType.IsValid():
		return entities.Bug{}, fmt.Errorf("%w: invalid bug type", entities.ErrInvalidArgument)
	case !in.Environment.IsValid():
		return entities.Bug{}, fmt.Errorf("%w: invalid environment", entities.ErrInvalidArgument)
	}

	suggestion := severity.Suggest(severity.Input{Title: title, Description: description, Environment: in.Environment})
	now := m.now()
	bug := entities.Bug{
		ID:                bugID,
		ProjectID:         p.ID,
		CreatedBy:         actorID,
		Title:             title,
		Description:       description,
		BugType:           in.BugType,
		Environment:       in.Environment,
		Severity:          entities.SeverityUnconfirmed,
		SuggestedSeverity: suggestion.Severity,
		Status:            entities.StatusPendingReview,
		IsActive:          true,
		StackTrace:        in.StackTrace,
		ModuleName:        strings.TrimSpace(in.ModuleName),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	bug.History.Append(entities.HistoryEntry{
		Action:  entities.ActionBugCreated,
		To:      entities.StatusPendingReview,
		ActorID: actorID,
		At:      now,
	})
	return bug, nil
}

// Approve moves a reviewed report to OPEN and settles its severity: the explicit
// value when given, else the suggestion computed at creation, else MEDIUM.
// SEVERITY_UPDATED is logged only when the explicit value overrides that default.
func (m *Machine) Approve(p *entities.Project, b entities.Bug, actorID string, explicit entities.Severity) (entities.Bug, error) {
	if err := authorize(OpApprove, actorID, p); err != nil {
		return b, err
	}
	if explicit != "" && (!explicit.IsValid() || explicit == entities.SeverityUnconfirmed) {
		return b, fmt.Errorf("%w: invalid severity %q", entities.ErrInvalidArgument, explicit)
	}
	if err := checkFrom(OpApprove, b.Status); err != nil {
		return b, err
	}
	if reopenPending(b) {
		return b, fmt.Errorf("%w: bug has a pending reopen request, approve the reopen request instead", entities.ErrInvalidState)
	}

	baseline := b.SuggestedSeverity
	if baseline == "" || baseline == entities.SeverityUnconfirmed {
		baseline = entities.SeverityMedium
	}
	final := baseline
	if explicit != "" {
		final = explicit
	}

	now := m.now()
	next := b.Clone()
	if final != baseline {
		next.History.Append(entities.HistoryEntry{
			Action:  entities.ActionSeverityUpdated,
			ActorID: actorID,
			At:      now,
			Meta:    fmt.Sprintf("%s -> %s", baseline, final),
		})
	}
	next.Severity = final
	m.move(&next, OpApprove, entities.ActionBugApproved, actorID, "", now)
	return next, nil
}

// Reject closes a report as REJECTED.
func (m *Machine) Reject(p *entities.Project, b entities.Bug, actorID, reason string) (entities.Bug, error) {
	if err := authorize(OpReject, actorID, p); err != nil {
		return b, err
	}
	reason, err := requireReason(reason)
	if err != nil {
		return b, err
	}
	if err := checkFrom(OpReject, b.Status); err != nil {
		return b, err
	}
	if reopenPending(b) {
		return b, fmt.Errorf("%w: bug has a pending reopen request, reject the reopen request instead", entities.ErrInvalidState)
	}

	next := b.Clone()
	m.move(&next, OpReject, entities.ActionBugRejected, actorID, reason, m.now())
	return next, nil
}

// RequestReopen sends a RESOLVED bug back to review.
func (m *Machine) RequestReopen(p *entities.Project, b entities.Bug, actorID, reason string) (entities.Bug, error) {
	if err := authorize(OpRequestReopen, actorID, p); err != nil {
		return b, err
	}
	reason, err := requireReason(reason)
	if err != nil {
		return b, err
	}
	if err := checkFrom(OpRequestReopen, b.Status); err != nil {
		return b, err
	}

	now := m.now()
	next := b.Clone()
	next.ReviewRequests = append(next.ReviewRequests, entities.ReviewRequest{
		RequestedBy: actorID,
		Reason:      reason,
		Status:      entities.ReviewPending,
		CreatedAt:   now,
	})
	m.move(&next, OpRequestReopen, entities.ActionReopenRequested, actorID, reason, now)
	return next, nil
}

// ApproveReopen grants a pending reopen request. The bug loses its assignee.
func (m *Machine) ApproveReopen(p *entities.Project, b entities.Bug, actorID string) (entities.Bug, error) {
	if err := authorize(OpApproveReopen, actorID, p); err != nil {
		return b, err
	}
	if err := checkReopenDecision(OpApproveReopen, b); err != nil {
		return b, err
	}

	next := b.Clone()
	next.AssignedTo = ""
	settleReopenRequest(&next, entities.ReviewApproved)
	m.move(&next, OpApproveReopen, entities.ActionReopenApproved, actorID, "", m.now())
	return next, nil
}

// RejectReopen turns down a pending reopen request and restores RESOLVED.
func (m *Machine) RejectReopen(p *entities.Project, b entities.Bug, actorID, reason string) (entities.Bug, error) {
	if err := authorize(OpRejectReopen, actorID, p); err != nil {
		return b, err
	}
	reason, err := requireReason(reason)
	if err != nil {
		return b, err
	}
	if err := checkReopenDecision(OpRejectReopen, b); err != nil {
		return b, err
	}

	next := b.Clone()
	settleReopenRequest(&next, entities.ReviewRejected)
	m.move(&next, OpRejectReopen, entities.ActionReopenRejected, actorID, reason, m.now())
	return next, nil
}

// Assign hands the bug to assigneeID. Reassigning an ASSIGNED bug keeps the status
// and logs BUG_REASSIGNED.
func (m *Machine) Assign(p *entities.Project, b entities.Bug, actorID, assigneeID string) (entities.Bug, error) {
	if err := authorize(OpAssign, actorID, p); err != nil {
		return b, err
	}
	if err := checkFrom(OpAssign, b.Status); err != nil {
		return b, err
	}
	if !access.IsMember(p, assigneeID) {
		return b, fmt.Errorf("%w: assignee is not a project member", entities.ErrInvalidArgument)
	}
	if b.AssignedTo == assigneeID {
		return b, entities.ErrAlreadyAssigned
	}

	action := entities.ActionBugAssigned
	meta := assigneeID
	if b.AssignedTo != "" {
		action = entities.ActionBugReassigned
		meta = fmt.Sprintf("%s -> %s", b.AssignedTo, assigneeID)
	}

	next := b.Clone()
	next.AssignedTo = assigneeID
	m.move(&next, OpAssign, action, actorID, meta, m.now())
	return next, nil
}

// ReleaseAssignment drops the assignee of an ASSIGNED or AWAITING_VERIFICATION bug
// and reopens it as OPEN.
func (m *Machine) ReleaseAssignment(b entities.Bug, actorID, reason string) (entities.Bug, error) {
	if err := checkFrom(OpReleaseAssignment, b.Status); err != nil {
		return b, err
	}
	next := b.Clone()
	next.AssignedTo = ""
	m.move(&next, OpReleaseAssignment, entities.ActionStatusUpdated, actorID, reason, m.now())
	return next, nil
}

// DismissReport rejects and deactivates a report still in review.
func (m *Machine) DismissReport(b entities.Bug, actorID, reason string) (entities.Bug, error) {
	if err := checkFrom(OpDismissReport, b.Status); err != nil {
		return b, err
	}
	next := b.Clone()
	next.IsActive = false
	next.ReviewRequests = nil
	m.move(&next, OpDismissReport, entities.ActionBugRejected, actorID, reason, m.now())
	return next, nil
}

// CancelReviewRequests cancels the pending review requests made by requesterID.
// It reports how many were cancelled; nothing is logged when none were.
func (m *Machine) CancelReviewRequests(b entities.Bug, actorID, requesterID, reason string) (entities.Bug, int) {
	next := b.Clone()
	cancelled := 0
	for i, rr := range next.ReviewRequests {
		if rr.RequestedBy == requesterID && rr.Status == entities.ReviewPending {
			next.ReviewRequests[i].Status = entities.ReviewCancelled
			cancelled++
		}
	}
	if cancelled == 0 {
		return b, 0
	}
	now := m.now()
	next.History.Append(entities.HistoryEntry{
		Action:  entities.ActionReviewRequestCancelled,
		ActorID: actorID,
		At:      now,
		Meta:    reason,
	})
	next.UpdatedAt = now
	return next, cancelled
}

func (m *Machine) move(b *entities.Bug, op Op, action entities.Action, actorID, meta string, now time.Time) {
	t := transitions[op]
	b.History.Append(entities.HistoryEntry{
		Action:  action,
		From:    b.Status,
		To:      t.To,
		ActorID: actorID,
		At:      now,
		Meta:    meta,
	})
	b.Status = t.To
	b.UpdatedAt = now
}

func authorize(op Op, actorID string, p *entities.Project) error {
	return access.Authorize(actorID, p, transitions[op].Role)
}

func requireReason(reason string) (string, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "", fmt.Errorf("%w: reason is required", entities.ErrInvalidArgument)
	}
	if utf8.RuneCountInString(reason) > 1000 {
		return "", fmt.Errorf("%w: reason cannot exceed 1000 characters", entities.ErrInvalidArgument)
	}
	return reason, nil
}

func reopenPending(b entities.Bug) bool {
	last, ok := b.History.Last()
	return ok && last.Action == entities.ActionReopenRequested
}

func checkReopenDecision(op Op, b entities.Bug) error {
	if err := checkFrom(op, b.Status); err != nil {
		return err
	}
	if !reopenPending(b) {
		return fmt.Errorf("%w: bug has no pending reopen request", entities.ErrInvalidState)
	}
	return nil
}

// settleReopenRequest resolves the most recent pending review request.
func settleReopenRequest(b *entities.Bug, status entities.ReviewRequestStatus) {
	for i := len(b.ReviewRequests) - 1; i >= 0; i-- {
		if b.ReviewRequests[i].Status == entities.ReviewPending {
			b.ReviewRequests[i].Status = status
			return
		}
	}
}
