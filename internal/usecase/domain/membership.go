package domain

import (
	"context"
	"fmt"

	"bug-lifecycle-tracker/internal/access"
	"bug-lifecycle-tracker/internal/entities"
	"bug-lifecycle-tracker/internal/repository"
)

// Reasons recorded by the member removal cascade.
const (
	ReasonDeveloperRemoved = "Developer removed from project"
	ReasonReporterRemoved  = "Reporter removed from project"
	ReasonRequesterRemoved = "Requester removed from project"
)

// RemoveMember removes userID from the project and corrects the removed
// member's in-flight work. All corrections and the removal commit together.
func (u *Usecase) RemoveMember(ctx context.Context, actor entities.Principal, projectID, userID string) (entities.RemovalResult, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := requireActor(actor); err != nil {
		return entities.RemovalResult{}, err
	}
	if projectID == "" || userID == "" {
		return entities.RemovalResult{}, fmt.Errorf("%w: project id and user id are required", entities.ErrInvalidArgument)
	}

	var res entities.RemovalResult
	err := u.repo.RunInTx(ctx, func(tx repository.Tx) error {
		res = entities.RemovalResult{}

		p, err := tx.ProjectForUpdate(ctx, projectID)
		if err != nil {
			return err
		}
		if err := access.Authorize(actor.UserID, p, access.RoleLead); err != nil {
			return err
		}
		if access.IsLead(p, userID) {
			return fmt.Errorf("%w: the project lead cannot be removed", entities.ErrInvalidArgument)
		}
		if !access.IsMember(p, userID) {
			return entities.ErrMemberNotFound
		}

		if err := u.releaseAssignedBugs(ctx, tx, actor, p.ID, userID, &res); err != nil {
			return err
		}
		if err := u.dismissReports(ctx, tx, actor, p.ID, userID, &res); err != nil {
			return err
		}
		if err := u.cancelReviewRequests(ctx, tx, actor, p.ID, userID, &res); err != nil {
			return err
		}
		if err := u.withdrawFixes(ctx, tx, p.ID, userID, &res); err != nil {
			return err
		}

		next := p.Clone()
		members := make([]entities.Member, 0, len(next.Members))
		for _, m := range next.Members {
			if m.UserID != userID {
				members = append(members, m)
			}
		}
		next.Members = members
		next.UpdatedAt = u.now()
		if err := tx.SaveProject(ctx, next); err != nil {
			return err
		}
		res.Project = &next
		return nil
	})
	if err != nil {
		return entities.RemovalResult{}, err
	}

	u.log.Infow("member removed",
		"project_id", projectID,
		"user_id", userID,
		"reopened_bugs", res.ReopenedBugs,
		"rejected_bugs", res.RejectedBugs,
		"cancelled_requests", res.CancelledRequests,
		"rejected_fixes", res.RejectedFixes,
	)
	return res, nil
}

// releaseAssignedBugs returns bugs held by userID to OPEN, rejecting the fix
// under review first when there is one.
func (u *Usecase) releaseAssignedBugs(ctx context.Context, tx repository.Tx, actor entities.Principal, projectID, userID string, res *entities.RemovalResult) error {
	bugs, err := tx.BugsAssignedTo(ctx, projectID, userID, entities.StatusAssigned, entities.StatusAwaitingVerification)
	if err != nil {
		return err
	}
	for _, b := range bugs {
		if b.Status == entities.StatusAwaitingVerification {
			pending, err := tx.PendingFix(ctx, b.ID)
			if err != nil {
				return err
			}
			if pending != nil {
				f, err := u.machine.WithdrawFix(*pending, ReasonDeveloperRemoved)
				if err != nil {
					return err
				}
				if err := tx.SaveFix(ctx, f); err != nil {
					return err
				}
				res.RejectedFixes++
			}
		}
		next, err := u.machine.ReleaseAssignment(b, actor.UserID, ReasonDeveloperRemoved)
		if err != nil {
			return err
		}
		if err := tx.SaveBug(ctx, next); err != nil {
			return err
		}
		res.ReopenedBugs++
	}
	return nil
}

func (u *Usecase) dismissReports(ctx context.Context, tx repository.Tx, actor entities.Principal, projectID, userID string, res *entities.RemovalResult) error {
	bugs, err := tx.BugsReportedBy(ctx, projectID, userID, entities.StatusPendingReview)
	if err != nil {
		return err
	}
	for _, b := range bugs {
		next, err := u.machine.DismissReport(b, actor.UserID, ReasonReporterRemoved)
		if err != nil {
			return err
		}
		if err := tx.SaveBug(ctx, next); err != nil {
			return err
		}
		res.RejectedBugs++
	}
	return nil
}

func (u *Usecase) cancelReviewRequests(ctx context.Context, tx repository.Tx, actor entities.Principal, projectID, userID string, res *entities.RemovalResult) error {
	bugs, err := tx.BugsWithPendingReviewBy(ctx, projectID, userID)
	if err != nil {
		return err
	}
	for _, b := range bugs {
		next, n := u.machine.CancelReviewRequests(b, actor.UserID, userID, ReasonRequesterRemoved)
		if n == 0 {
			continue
		}
		if err := tx.SaveBug(ctx, next); err != nil {
			return err
		}
		res.CancelledRequests += n
	}
	return nil
}

// withdrawFixes rejects whatever fixes by userID are still pending, whatever
// the state of their bugs.
func (u *Usecase) withdrawFixes(ctx context.Context, tx repository.Tx, projectID, userID string, res *entities.RemovalResult) error {
	fixes, err := tx.PendingFixesBy(ctx, projectID, userID)
	if err != nil {
		return err
	}
	for _, f := range fixes {
		next, err := u.machine.WithdrawFix(f, ReasonDeveloperRemoved)
		if err != nil {
			return err
		}
		if err := tx.SaveFix(ctx, next); err != nil {
			return err
		}
		res.RejectedFixes++
	}
	return nil
}
