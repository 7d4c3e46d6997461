package domain

import (
	"context"
	"fmt"

	"bug-lifecycle-tracker/internal/entities"
	"bug-lifecycle-tracker/internal/lifecycle"
	"bug-lifecycle-tracker/internal/repository"
	"bug-lifecycle-tracker/internal/severity"
)

// CreateBug files a report in PENDING_REVIEW.
func (u *Usecase) CreateBug(ctx context.Context, actor entities.Principal, projectID string, in lifecycle.ReportInput) (*entities.Bug, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if projectID == "" {
		return nil, fmt.Errorf("%w: project id is required", entities.ErrInvalidArgument)
	}

	bugID := u.newID()
	var res entities.Bug
	err := u.repo.RunInTx(ctx, func(tx repository.Tx) error {
		p, err := tx.Project(ctx, projectID)
		if err != nil {
			return err
		}
		b, err := u.machine.Report(p, actor.UserID, bugID, in)
		if err != nil {
			return err
		}
		if err := tx.CreateBug(ctx, b); err != nil {
			return err
		}
		res = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Infow("bug created", "project_id", projectID, "bug_id", bugID, "suggested_severity", res.SuggestedSeverity)
	return &res, nil
}

// GetBug returns an active bug to project members.
func (u *Usecase) GetBug(ctx context.Context, actor entities.Principal, projectID, bugID string) (*entities.Bug, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if _, err := u.memberProject(ctx, actor, projectID); err != nil {
		return nil, err
	}
	if bugID == "" {
		return nil, fmt.Errorf("%w: bug id is required", entities.ErrInvalidArgument)
	}
	return u.repo.GetBug(ctx, projectID, bugID)
}

// ListBugs returns active bugs of the project.
func (u *Usecase) ListBugs(ctx context.Context, actor entities.Principal, projectID string, filter entities.BugFilter) ([]entities.Bug, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, fmt.Errorf("%w: invalid status filter %q", entities.ErrInvalidArgument, *filter.Status)
	}
	if _, err := u.memberProject(ctx, actor, projectID); err != nil {
		return nil, err
	}
	return u.repo.ListBugs(ctx, projectID, filter)
}

// ListFixes returns every fix submitted for the bug.
func (u *Usecase) ListFixes(ctx context.Context, actor entities.Principal, projectID, bugID string) ([]entities.BugFix, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if _, err := u.memberProject(ctx, actor, projectID); err != nil {
		return nil, err
	}
	if _, err := u.repo.GetBug(ctx, projectID, bugID); err != nil {
		return nil, err
	}
	return u.repo.ListFixes(ctx, bugID)
}

// SuggestSeverity previews the severity a report would be given.
func (u *Usecase) SuggestSeverity(in severity.Input) severity.Suggestion {
	return severity.Suggest(in)
}

// ApproveBug moves a report to OPEN, settling its severity.
func (u *Usecase) ApproveBug(ctx context.Context, actor entities.Principal, projectID, bugID string, sev entities.Severity) (*entities.Bug, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	b, err := u.bugCommand(ctx, actor, projectID, bugID, func(p *entities.Project, b entities.Bug) (entities.Bug, error) {
		return u.machine.Approve(p, b, actor.UserID, sev)
	})
	if err != nil {
		return nil, err
	}
	u.log.Infow("bug approved", "project_id", projectID, "bug_id", bugID, "severity", b.Severity)
	return b, nil
}

// RejectBug closes a report as REJECTED.
func (u *Usecase) RejectBug(ctx context.Context, actor entities.Principal, projectID, bugID, reason string) (*entities.Bug, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	b, err := u.bugCommand(ctx, actor, projectID, bugID, func(p *entities.Project, b entities.Bug) (entities.Bug, error) {
		return u.machine.Reject(p, b, actor.UserID, reason)
	})
	if err != nil {
		return nil, err
	}
	u.log.Infow("bug rejected", "project_id", projectID, "bug_id", bugID)
	return b, nil
}

// AssignBug hands the bug to a project member.
func (u *Usecase) AssignBug(ctx context.Context, actor entities.Principal, projectID, bugID, assigneeID string) (*entities.Bug, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if assigneeID == "" {
		return nil, fmt.Errorf("%w: assignee is required", entities.ErrInvalidArgument)
	}
	b, err := u.bugCommand(ctx, actor, projectID, bugID, func(p *entities.Project, b entities.Bug) (entities.Bug, error) {
		return u.machine.Assign(p, b, actor.UserID, assigneeID)
	})
	if err != nil {
		return nil, err
	}
	u.log.Infow("bug assigned", "project_id", projectID, "bug_id", bugID, "assignee_id", assigneeID)
	return b, nil
}

// RequestReopen asks the lead to revisit a RESOLVED bug.
func (u *Usecase) RequestReopen(ctx context.Context, actor entities.Principal, projectID, bugID, reason string) (*entities.Bug, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	b, err := u.bugCommand(ctx, actor, projectID, bugID, func(p *entities.Project, b entities.Bug) (entities.Bug, error) {
		return u.machine.RequestReopen(p, b, actor.UserID, reason)
	})
	if err != nil {
		return nil, err
	}
	u.log.Infow("reopen requested", "project_id", projectID, "bug_id", bugID, "requested_by", actor.UserID)
	return b, nil
}

// ApproveReopen grants the pending reopen request.
func (u *Usecase) ApproveReopen(ctx context.Context, actor entities.Principal, projectID, bugID string) (*entities.Bug, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	b, err := u.bugCommand(ctx, actor, projectID, bugID, func(p *entities.Project, b entities.Bug) (entities.Bug, error) {
		return u.machine.ApproveReopen(p, b, actor.UserID)
	})
	if err != nil {
		return nil, err
	}
	u.log.Infow("reopen approved", "project_id", projectID, "bug_id", bugID)
	return b, nil
}

// RejectReopen turns down the pending reopen request.
func (u *Usecase) RejectReopen(ctx context.Context, actor entities.Principal, projectID, bugID, reason string) (*entities.Bug, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	b, err := u.bugCommand(ctx, actor, projectID, bugID, func(p *entities.Project, b entities.Bug) (entities.Bug, error) {
		return u.machine.RejectReopen(p, b, actor.UserID, reason)
	})
	if err != nil {
		return nil, err
	}
	u.log.Infow("reopen rejected", "project_id", projectID, "bug_id", bugID)
	return b, nil
}
