package postgres

import (
	"context"
	"errors"
	"fmt"

	"bug-lifecycle-tracker/internal/entities"

	"github.com/jackc/pgx/v5"
)

const (
	insertUserQuery = `INSERT INTO users(id, name, email, created_at) VALUES ($1,$2,$3,$4)`
	selectUserQuery = `SELECT id, name, email, created_at FROM users WHERE id=$1`
)

// CreateUser inserts a user record.
func (p *Postgres) CreateUser(ctx context.Context, u entities.User) (*entities.User, error) {
	if _, err := p.db.Exec(ctx, insertUserQuery, u.ID, u.Name, u.Email, u.CreatedAt); err != nil {
		p.log.Errorw("failed to insert user", "error", err, "user_id", u.ID)
		if constraint, ok := uniqueViolation(err); ok {
			if constraint == "users_email_uq" {
				return nil, entities.ErrEmailTaken
			}
			return nil, fmt.Errorf("%w: user id already exists", entities.ErrConflict)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	p.log.Infow("user created", "user_id", u.ID)
	return &u, nil
}

// GetUser returns user by id.
func (p *Postgres) GetUser(ctx context.Context, userID string) (*entities.User, error) {
	return getUser(ctx, p.db, userID)
}

func getUser(ctx context.Context, q querier, userID string) (*entities.User, error) {
	var u entities.User
	if err := q.QueryRow(ctx, selectUserQuery, userID).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrUserNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}
