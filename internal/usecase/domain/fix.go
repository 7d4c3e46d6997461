package domain

import (
	"context"
	"fmt"

	"bug-lifecycle-tracker/internal/entities"
	"bug-lifecycle-tracker/internal/lifecycle"
	"bug-lifecycle-tracker/internal/repository"
)

// SubmitFix records a fix for review and moves the bug to AWAITING_VERIFICATION.
// Fix creation and the bug transition commit together.
func (u *Usecase) SubmitFix(ctx context.Context, actor entities.Principal, projectID, bugID string, in lifecycle.FixInput) (*entities.Bug, *entities.BugFix, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := requireActor(actor); err != nil {
		return nil, nil, err
	}

	fixID := u.newID()
	var resBug entities.Bug
	var resFix entities.BugFix
	err := u.repo.RunInTx(ctx, func(tx repository.Tx) error {
		p, b, err := loadForBugCommand(ctx, tx, actor, projectID, bugID)
		if err != nil {
			return err
		}
		pending, err := tx.PendingFix(ctx, b.ID)
		if err != nil {
			return err
		}
		next, fix, err := u.machine.SubmitFix(p, *b, pending, actor.UserID, fixID, in)
		if err != nil {
			return err
		}
		if err := tx.CreateFix(ctx, fix); err != nil {
			return err
		}
		if err := tx.SaveBug(ctx, next); err != nil {
			return err
		}
		resBug, resFix = next, fix
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	u.log.Infow("fix submitted", "project_id", projectID, "bug_id", bugID, "fix_id", fixID)
	return &resBug, &resFix, nil
}

// AcceptFix accepts the fix under review and resolves the bug.
func (u *Usecase) AcceptFix(ctx context.Context, actor entities.Principal, projectID, bugID, fixID string) (*entities.Bug, *entities.BugFix, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	b, f, err := u.reviewFix(ctx, actor, projectID, bugID, fixID, func(p *entities.Project, b entities.Bug, f entities.BugFix) (entities.Bug, entities.BugFix, error) {
		return u.machine.AcceptFix(p, b, f, actor.UserID)
	})
	if err != nil {
		return nil, nil, err
	}
	u.log.Infow("fix accepted", "project_id", projectID, "bug_id", bugID, "fix_id", fixID)
	return b, f, nil
}

// RejectFix rejects the fix under review and returns the bug to its assignee.
func (u *Usecase) RejectFix(ctx context.Context, actor entities.Principal, projectID, bugID, fixID, reason string) (*entities.Bug, *entities.BugFix, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	b, f, err := u.reviewFix(ctx, actor, projectID, bugID, fixID, func(p *entities.Project, b entities.Bug, f entities.BugFix) (entities.Bug, entities.BugFix, error) {
		return u.machine.RejectFix(p, b, f, actor.UserID, reason)
	})
	if err != nil {
		return nil, nil, err
	}
	u.log.Infow("fix rejected", "project_id", projectID, "bug_id", bugID, "fix_id", fixID)
	return b, f, nil
}

func (u *Usecase) reviewFix(
	ctx context.Context,
	actor entities.Principal,
	projectID, bugID, fixID string,
	apply func(p *entities.Project, b entities.Bug, f entities.BugFix) (entities.Bug, entities.BugFix, error),
) (*entities.Bug, *entities.BugFix, error) {
	if err := requireActor(actor); err != nil {
		return nil, nil, err
	}
	if fixID == "" {
		return nil, nil, fmt.Errorf("%w: fix id is required", entities.ErrInvalidArgument)
	}

	var resBug entities.Bug
	var resFix entities.BugFix
	err := u.repo.RunInTx(ctx, func(tx repository.Tx) error {
		p, b, err := loadForBugCommand(ctx, tx, actor, projectID, bugID)
		if err != nil {
			return err
		}
		f, err := tx.FixForUpdate(ctx, fixID)
		if err != nil {
			return err
		}
		if f.ProjectID != projectID {
			return entities.ErrFixNotFound
		}
		nextBug, nextFix, err := apply(p, *b, *f)
		if err != nil {
			return err
		}
		if err := tx.SaveFix(ctx, nextFix); err != nil {
			return err
		}
		if err := tx.SaveBug(ctx, nextBug); err != nil {
			return err
		}
		resBug, resFix = nextBug, nextFix
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &resBug, &resFix, nil
}
