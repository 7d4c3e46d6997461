// Package domain implements the application commands: authorize the actor,
// load state inside a unit of work, apply the lifecycle and persist the result.
package domain

import (
	"context"
	"fmt"
	"time"

	"bug-lifecycle-tracker/internal/access"
	"bug-lifecycle-tracker/internal/entities"
	"bug-lifecycle-tracker/internal/lifecycle"
	"bug-lifecycle-tracker/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Usecase struct implements all usecase interfaces.
type Usecase struct {
	ctx        context.Context
	log        *zap.SugaredLogger
	repo       repository.Repository
	machine    *lifecycle.Machine
	timeout    time.Duration
	now        func() time.Time
	newID      func() string
	inviteCode func() (string, error)
}

// New constructs a new usecase layer with its dependencies.
func New(
	log *zap.SugaredLogger,
	ctx context.Context,
	repo repository.Repository,
	timeout time.Duration,
) *Usecase {
	now := func() time.Time { return time.Now().UTC() }
	return &Usecase{
		ctx:        ctx,
		log:        log.Named("usecase"),
		repo:       repo,
		machine:    lifecycle.New(now),
		timeout:    timeout,
		now:        now,
		newID:      func() string { return uuid.Must(uuid.NewV7()).String() },
		inviteCode: generateInviteCode,
	}
}

// withTimeout bounds ctx by the usecase timeout; a non-positive timeout only
// adds cancellation.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func requireActor(actor entities.Principal) error {
	if actor.UserID == "" {
		return fmt.Errorf("%w: missing principal", entities.ErrUnauthenticated)
	}
	return nil
}

// memberProject loads a project outside a unit of work and checks the actor
// belongs to it.
func (u *Usecase) memberProject(ctx context.Context, actor entities.Principal, projectID string) (*entities.Project, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if projectID == "" {
		return nil, fmt.Errorf("%w: project id is required", entities.ErrInvalidArgument)
	}
	p, err := u.repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(actor.UserID, p, access.RoleMember); err != nil {
		return nil, err
	}
	return p, nil
}

// bugCommand runs apply against the locked bug inside one unit of work and
// persists the bug it returns.
func (u *Usecase) bugCommand(
	ctx context.Context,
	actor entities.Principal,
	projectID, bugID string,
	apply func(p *entities.Project, b entities.Bug) (entities.Bug, error),
) (*entities.Bug, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if projectID == "" || bugID == "" {
		return nil, fmt.Errorf("%w: project id and bug id are required", entities.ErrInvalidArgument)
	}

	var res entities.Bug
	err := u.repo.RunInTx(ctx, func(tx repository.Tx) error {
		p, b, err := loadForBugCommand(ctx, tx, actor, projectID, bugID)
		if err != nil {
			return err
		}
		next, err := apply(p, *b)
		if err != nil {
			return err
		}
		if err := tx.SaveBug(ctx, next); err != nil {
			return err
		}
		res = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func loadForBugCommand(ctx context.Context, tx repository.Tx, actor entities.Principal, projectID, bugID string) (*entities.Project, *entities.Bug, error) {
	p, err := tx.Project(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	if err := access.Authorize(actor.UserID, p, access.RoleMember); err != nil {
		return nil, nil, err
	}
	b, err := tx.BugForUpdate(ctx, projectID, bugID)
	if err != nil {
		return nil, nil, err
	}
	return p, b, nil
}
