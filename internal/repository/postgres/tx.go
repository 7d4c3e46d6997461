package postgres

import (
	"context"

	"bug-lifecycle-tracker/internal/entities"
)

// tx implements uow.Tx over an open pgx transaction.
type tx struct {
	q querier
}

func (t *tx) User(ctx context.Context, userID string) (*entities.User, error) {
	return getUser(ctx, t.q, userID)
}
