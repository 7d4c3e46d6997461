// Package repository provides factory for repositories.
package repository

import (
	"context"
	"fmt"

	"bug-lifecycle-tracker/config"
	"bug-lifecycle-tracker/internal/repository/memory"
	"bug-lifecycle-tracker/internal/repository/postgres"

	"go.uber.org/zap"
)

// Repository aggregates all persistence interfaces.
type Repository interface {
	LifecycleInterface
	UnitOfWork
	UserInterface
	ProjectInterface
	BugInterface
	StatsInterface
}

var (
	_ Repository = (*postgres.Postgres)(nil)
	_ Repository = (*memory.Store)(nil)
)

// New constructs the repository backend selected by storage.backend.
func New(ctx context.Context, backend string, log *zap.SugaredLogger, cfg *config.Config) (Repository, error) {
	switch backend {
	case config.BackendPostgres:
		return postgres.New(ctx, log, cfg), nil
	case config.BackendMemory:
		return memory.New(log), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", backend)
	}
}
