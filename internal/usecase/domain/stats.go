package domain

import (
	"context"

	"bug-lifecycle-tracker/internal/entities"
)

// ProjectStats returns bug and fix counters of a project to its members.
func (u *Usecase) ProjectStats(ctx context.Context, actor entities.Principal, projectID string) (entities.ProjectStats, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if _, err := u.memberProject(ctx, actor, projectID); err != nil {
		return entities.ProjectStats{}, err
	}
	return u.repo.ProjectStats(ctx, projectID)
}
