package usecase

import (
	"context"

	"bug-lifecycle-tracker/internal/entities"
	"bug-lifecycle-tracker/internal/lifecycle"
	"bug-lifecycle-tracker/internal/severity"
)

// UserUsecaseInterface abstracts user-related operations for delivery layer.
type UserUsecaseInterface interface {
	RegisterUser(ctx context.Context, name, email string) (*entities.User, error)
	User(ctx context.Context, userID string) (*entities.User, error)
}

// ProjectUsecaseInterface abstracts project and membership operations.
type ProjectUsecaseInterface interface {
	CreateProject(ctx context.Context, actor entities.Principal, name, description string) (*entities.Project, error)
	JoinProject(ctx context.Context, actor entities.Principal, inviteCode string, role entities.MemberRole) (*entities.Project, error)
	AddMember(ctx context.Context, actor entities.Principal, projectID, userID string, role entities.MemberRole) (*entities.Project, error)
	RemoveMember(ctx context.Context, actor entities.Principal, projectID, userID string) (entities.RemovalResult, error)
	ListMyProjects(ctx context.Context, actor entities.Principal) ([]entities.Project, error)
	GetProject(ctx context.Context, actor entities.Principal, projectID string) (*entities.Project, error)
}

// BugUsecaseInterface abstracts bug reads and lifecycle commands.
type BugUsecaseInterface interface {
	CreateBug(ctx context.Context, actor entities.Principal, projectID string, in lifecycle.ReportInput) (*entities.Bug, error)
	GetBug(ctx context.Context, actor entities.Principal, projectID, bugID string) (*entities.Bug, error)
	ListBugs(ctx context.Context, actor entities.Principal, projectID string, filter entities.BugFilter) ([]entities.Bug, error)
	SuggestSeverity(in severity.Input) severity.Suggestion
	ApproveBug(ctx context.Context, actor entities.Principal, projectID, bugID string, sev entities.Severity) (*entities.Bug, error)
	RejectBug(ctx context.Context, actor entities.Principal, projectID, bugID, reason string) (*entities.Bug, error)
	AssignBug(ctx context.Context, actor entities.Principal, projectID, bugID, assigneeID string) (*entities.Bug, error)
	RequestReopen(ctx context.Context, actor entities.Principal, projectID, bugID, reason string) (*entities.Bug, error)
	ApproveReopen(ctx context.Context, actor entities.Principal, projectID, bugID string) (*entities.Bug, error)
	RejectReopen(ctx context.Context, actor entities.Principal, projectID, bugID, reason string) (*entities.Bug, error)
}

// FixUsecaseInterface abstracts the fix review workflow.
type FixUsecaseInterface interface {
	ListFixes(ctx context.Context, actor entities.Principal, projectID, bugID string) ([]entities.BugFix, error)
	SubmitFix(ctx context.Context, actor entities.Principal, projectID, bugID string, in lifecycle.FixInput) (*entities.Bug, *entities.BugFix, error)
	AcceptFix(ctx context.Context, actor entities.Principal, projectID, bugID, fixID string) (*entities.Bug, *entities.BugFix, error)
	RejectFix(ctx context.Context, actor entities.Principal, projectID, bugID, fixID, reason string) (*entities.Bug, *entities.BugFix, error)
}

// StatsUsecaseInterface abstracts statistics operations.
type StatsUsecaseInterface interface {
	ProjectStats(ctx context.Context, actor entities.Principal, projectID string) (entities.ProjectStats, error)
}
