package lifecycle

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"bug-lifecycle-tracker/internal/entities"
)

var commitURLPattern = regexp.MustCompile(`^https?://.+\..+`)

// FixInput carries a fix submission.
type FixInput struct {
	CommitURL string
	Summary   string
	Proof     string
}

// Validate checks the submission payload.
func (in FixInput) Validate() error {
	if !commitURLPattern.MatchString(strings.TrimSpace(in.CommitURL)) {
		return fmt.Errorf("%w: commit url must be a valid http(s) URL", entities.ErrInvalidArgument)
	}
	n := utf8.RuneCountInString(strings.TrimSpace(in.Summary))
	if n < 10 {
		return fmt.Errorf("%w: fix summary must be at least 10 characters", entities.ErrInvalidArgument)
	}
	if n > 1000 {
		return fmt.Errorf("%w: fix summary cannot exceed 1000 characters", entities.ErrInvalidArgument)
	}
	return nil
}

// SubmitFix creates a PENDING fix and moves the bug to AWAITING_VERIFICATION.
// pending is the fix currently under review for the bug, if any.
func (m *Machine) SubmitFix(p *entities.Project, b entities.Bug, pending *entities.BugFix, actorID, fixID string, in FixInput) (entities.Bug, entities.BugFix, error) {
	if err := authorize(OpSubmitFix, actorID, p); err != nil {
		return b, entities.BugFix{}, err
	}
	if err := in.Validate(); err != nil {
		return b, entities.BugFix{}, err
	}
	if pending != nil && pending.Status == entities.FixPending {
		return b, entities.BugFix{}, entities.ErrPendingFixExists
	}
	if err := checkFrom(OpSubmitFix, b.Status); err != nil {
		return b, entities.BugFix{}, err
	}
	if b.AssignedTo != actorID {
		return b, entities.BugFix{}, fmt.Errorf("%w: only the assignee can submit a fix", entities.ErrForbidden)
	}

	now := m.now()
	fix := entities.BugFix{
		ID:          fixID,
		BugID:       b.ID,
		ProjectID:   b.ProjectID,
		SubmittedBy: actorID,
		CommitURL:   strings.TrimSpace(in.CommitURL),
		Summary:     strings.TrimSpace(in.Summary),
		Proof:       strings.TrimSpace(in.Proof),
		Status:      entities.FixPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	next := b.Clone()
	next.Fixes = append(next.Fixes, fix.ID)
	m.move(&next, OpSubmitFix, entities.ActionFixSubmitted, actorID, fix.ID, now)
	return next, fix, nil
}

// AcceptFix accepts the fix under review and resolves the bug.
func (m *Machine) AcceptFix(p *entities.Project, b entities.Bug, f entities.BugFix, actorID string) (entities.Bug, entities.BugFix, error) {
	if err := authorize(OpAcceptFix, actorID, p); err != nil {
		return b, f, err
	}
	if err := checkReview(OpAcceptFix, b, f); err != nil {
		return b, f, err
	}

	now := m.now()
	f.Status = entities.FixAccepted
	f.UpdatedAt = now

	next := b.Clone()
	next.AssignedTo = ""
	m.move(&next, OpAcceptFix, entities.ActionBugResolved, actorID, f.ID, now)
	return next, f, nil
}

// RejectFix rejects the fix under review and returns the bug to its assignee.
func (m *Machine) RejectFix(p *entities.Project, b entities.Bug, f entities.BugFix, actorID, reason string) (entities.Bug, entities.BugFix, error) {
	if err := authorize(OpRejectFix, actorID, p); err != nil {
		return b, f, err
	}
	reason, err := requireReason(reason)
	if err != nil {
		return b, f, err
	}
	if err := checkReview(OpRejectFix, b, f); err != nil {
		return b, f, err
	}

	now := m.now()
	f.Status = entities.FixRejected
	f.RejectionReason = reason
	f.UpdatedAt = now

	next := b.Clone()
	m.move(&next, OpRejectFix, entities.ActionFixRejected, actorID, fmt.Sprintf("%s: %s", f.ID, reason), now)
	return next, f, nil
}

// WithdrawFix rejects a pending fix without touching its bug.
func (m *Machine) WithdrawFix(f entities.BugFix, reason string) (entities.BugFix, error) {
	if f.Status != entities.FixPending {
		return f, fmt.Errorf("%w: fix is already %s", entities.ErrInvalidState, f.Status)
	}
	f.Status = entities.FixRejected
	f.RejectionReason = reason
	f.UpdatedAt = m.now()
	return f, nil
}

func checkReview(op Op, b entities.Bug, f entities.BugFix) error {
	if f.BugID != b.ID {
		return fmt.Errorf("%w: fix does not belong to this bug", entities.ErrFixNotFound)
	}
	if err := checkFrom(op, b.Status); err != nil {
		return err
	}
	if f.Status != entities.FixPending {
		return fmt.Errorf("%w: fix is already %s", entities.ErrInvalidState, f.Status)
	}
	return nil
}
