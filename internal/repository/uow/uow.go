// Package uow defines the unit-of-work contract shared by storage backends.
package uow

import (
	"context"

	"bug-lifecycle-tracker/internal/entities"
)

// Tx is the view of storage available inside a unit of work. Reads named
// ForUpdate lock the returned rows until the unit ends.
type Tx interface {
	User(ctx context.Context, userID string) (*entities.User, error)

	// Project reads the project with a shared lock: concurrent bug commands
	// proceed, membership changes wait.
	Project(ctx context.Context, projectID string) (*entities.Project, error)
	ProjectForUpdate(ctx context.Context, projectID string) (*entities.Project, error)
	ProjectByInviteCodeForUpdate(ctx context.Context, code string) (*entities.Project, error)
	CreateProject(ctx context.Context, p entities.Project) error
	SaveProject(ctx context.Context, p entities.Project) error

	BugForUpdate(ctx context.Context, projectID, bugID string) (*entities.Bug, error)
	CreateBug(ctx context.Context, b entities.Bug) error
	// SaveBug writes bug columns, appends history entries not yet stored and
	// replaces review requests. Stored history is never rewritten.
	SaveBug(ctx context.Context, b entities.Bug) error
	BugsAssignedTo(ctx context.Context, projectID, userID string, statuses ...entities.BugStatus) ([]entities.Bug, error)
	BugsReportedBy(ctx context.Context, projectID, userID string, status entities.BugStatus) ([]entities.Bug, error)
	BugsWithPendingReviewBy(ctx context.Context, projectID, userID string) ([]entities.Bug, error)

	FixForUpdate(ctx context.Context, fixID string) (*entities.BugFix, error)
	// PendingFix returns the fix under review for bugID, or nil when there is none.
	PendingFix(ctx context.Context, bugID string) (*entities.BugFix, error)
	PendingFixesBy(ctx context.Context, projectID, userID string) ([]entities.BugFix, error)
	CreateFix(ctx context.Context, f entities.BugFix) error
	SaveFix(ctx context.Context, f entities.BugFix) error
}

// UnitOfWork runs fn as one atomic unit. A nil return commits every write made
// through tx; an error or panic discards all of them and the error is returned.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(tx Tx) error) error
}
