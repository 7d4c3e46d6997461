// Package repository contains repository interfaces for persistence layers.
package repository

import (
	"context"

	"bug-lifecycle-tracker/internal/entities"
	"bug-lifecycle-tracker/internal/repository/uow"
)

// LifecycleInterface describes storage startup/shutdown hooks.
type LifecycleInterface interface {
	OnStart(_ context.Context) error
	OnStop(_ context.Context) error
}

// Tx is the view of storage available inside a unit of work.
type Tx = uow.Tx

// UnitOfWork runs a function as one atomic unit.
type UnitOfWork = uow.UnitOfWork

// UserInterface exposes user-related operations.
type UserInterface interface {
	CreateUser(ctx context.Context, u entities.User) (*entities.User, error)
	GetUser(ctx context.Context, userID string) (*entities.User, error)
}

// ProjectInterface exposes project reads.
type ProjectInterface interface {
	GetProject(ctx context.Context, projectID string) (*entities.Project, error)
	ListProjectsFor(ctx context.Context, userID string) ([]entities.Project, error)
}

// BugInterface exposes bug and fix reads.
type BugInterface interface {
	GetBug(ctx context.Context, projectID, bugID string) (*entities.Bug, error)
	ListBugs(ctx context.Context, projectID string, filter entities.BugFilter) ([]entities.Bug, error)
	ListFixes(ctx context.Context, bugID string) ([]entities.BugFix, error)
}

// StatsInterface exposes aggregated statistics operations.
type StatsInterface interface {
	ProjectStats(ctx context.Context, projectID string) (entities.ProjectStats, error)
}
