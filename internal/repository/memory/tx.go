package memory

import (
	"context"
	"fmt"

	"bug-lifecycle-tracker/internal/entities"
)

type tx struct {
	st *state
}

func (t *tx) User(_ context.Context, userID string) (*entities.User, error) {
	u, ok := t.st.users[userID]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	return &u, nil
}

func (t *tx) Project(ctx context.Context, projectID string) (*entities.Project, error) {
	return t.ProjectForUpdate(ctx, projectID)
}

func (t *tx) ProjectForUpdate(_ context.Context, projectID string) (*entities.Project, error) {
	p, ok := t.st.projects[projectID]
	if !ok {
		return nil, entities.ErrProjectNotFound
	}
	p = p.Clone()
	return &p, nil
}

func (t *tx) ProjectByInviteCodeForUpdate(_ context.Context, code string) (*entities.Project, error) {
	for _, p := range t.st.projects {
		if p.InviteCode == code {
			p = p.Clone()
			return &p, nil
		}
	}
	return nil, entities.ErrInviteCodeNotFound
}

func (t *tx) CreateProject(_ context.Context, p entities.Project) error {
	if _, ok := t.st.projects[p.ID]; ok {
		return fmt.Errorf("%w: project id already exists", entities.ErrConflict)
	}
	for _, existing := range t.st.projects {
		if existing.InviteCode == p.InviteCode {
			return entities.ErrInviteCodeTaken
		}
	}
	t.st.projects[p.ID] = p.Clone()
	return nil
}

func (t *tx) SaveProject(_ context.Context, p entities.Project) error {
	if _, ok := t.st.projects[p.ID]; !ok {
		return entities.ErrProjectNotFound
	}
	t.st.projects[p.ID] = p.Clone()
	return nil
}

func (t *tx) BugForUpdate(_ context.Context, projectID, bugID string) (*entities.Bug, error) {
	b, ok := t.st.bugs[bugID]
	if !ok || b.ProjectID != projectID || !b.IsActive {
		return nil, entities.ErrBugNotFound
	}
	b = b.Clone()
	return &b, nil
}

func (t *tx) CreateBug(_ context.Context, b entities.Bug) error {
	if _, ok := t.st.bugs[b.ID]; ok {
		return fmt.Errorf("%w: bug id already exists", entities.ErrConflict)
	}
	t.st.bugs[b.ID] = b.Clone()
	return nil
}

func (t *tx) SaveBug(_ context.Context, b entities.Bug) error {
	stored, ok := t.st.bugs[b.ID]
	if !ok {
		return entities.ErrBugNotFound
	}
	if b.History.Len() < stored.History.Len() {
		return fmt.Errorf("bug %s: history shrank from %d to %d entries", b.ID, stored.History.Len(), b.History.Len())
	}
	t.st.bugs[b.ID] = b.Clone()
	return nil
}

func (t *tx) BugsAssignedTo(_ context.Context, projectID, userID string, statuses ...entities.BugStatus) ([]entities.Bug, error) {
	return t.st.selectBugs(func(b entities.Bug) bool {
		if b.ProjectID != projectID || !b.IsActive || b.AssignedTo != userID {
			return false
		}
		for _, s := range statuses {
			if b.Status == s {
				return true
			}
		}
		return len(statuses) == 0
	}), nil
}

func (t *tx) BugsReportedBy(_ context.Context, projectID, userID string, status entities.BugStatus) ([]entities.Bug, error) {
	return t.st.selectBugs(func(b entities.Bug) bool {
		return b.ProjectID == projectID && b.IsActive && b.CreatedBy == userID && b.Status == status
	}), nil
}

func (t *tx) BugsWithPendingReviewBy(_ context.Context, projectID, userID string) ([]entities.Bug, error) {
	return t.st.selectBugs(func(b entities.Bug) bool {
		if b.ProjectID != projectID || !b.IsActive {
			return false
		}
		for _, r := range b.ReviewRequests {
			if r.RequestedBy == userID && r.Status == entities.ReviewPending {
				return true
			}
		}
		return false
	}), nil
}

func (t *tx) FixForUpdate(_ context.Context, fixID string) (*entities.BugFix, error) {
	f, ok := t.st.fixes[fixID]
	if !ok {
		return nil, entities.ErrFixNotFound
	}
	return &f, nil
}

func (t *tx) PendingFix(_ context.Context, bugID string) (*entities.BugFix, error) {
	for _, f := range t.st.fixes {
		if f.BugID == bugID && f.Status == entities.FixPending {
			return &f, nil
		}
	}
	return nil, nil
}

func (t *tx) PendingFixesBy(_ context.Context, projectID, userID string) ([]entities.BugFix, error) {
	return t.st.selectFixes(func(f entities.BugFix) bool {
		return f.ProjectID == projectID && f.SubmittedBy == userID && f.Status == entities.FixPending
	}), nil
}

func (t *tx) CreateFix(_ context.Context, f entities.BugFix) error {
	if _, ok := t.st.fixes[f.ID]; ok {
		return fmt.Errorf("%w: fix id already exists", entities.ErrConflict)
	}
	if f.Status == entities.FixPending {
		for _, existing := range t.st.fixes {
			if existing.BugID == f.BugID && existing.Status == entities.FixPending {
				return entities.ErrPendingFixExists
			}
		}
	}
	t.st.fixes[f.ID] = f
	return nil
}

func (t *tx) SaveFix(_ context.Context, f entities.BugFix) error {
	if _, ok := t.st.fixes[f.ID]; !ok {
		return entities.ErrFixNotFound
	}
	t.st.fixes[f.ID] = f
	return nil
}
