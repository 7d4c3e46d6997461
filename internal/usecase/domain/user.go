package domain

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"bug-lifecycle-tracker/internal/entities"
)

// RegisterUser stores a new user record.
func (u *Usecase) RegisterUser(ctx context.Context, name, email string) (*entities.User, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
		return nil, fmt.Errorf("%w: name must be 2 to 100 characters", entities.ErrInvalidArgument)
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, fmt.Errorf("%w: invalid email", entities.ErrInvalidArgument)
	}

	user, err := u.repo.CreateUser(ctx, entities.User{
		ID:        u.newID(),
		Name:      name,
		Email:     email,
		CreatedAt: u.now(),
	})
	if err != nil {
		return nil, err
	}
	u.log.Infow("user registered", "user_id", user.ID)
	return user, nil
}

// User returns user by id.
func (u *Usecase) User(ctx context.Context, userID string) (*entities.User, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", entities.ErrInvalidArgument)
	}
	return u.repo.GetUser(ctx, userID)
}
