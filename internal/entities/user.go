// Package entities contains core business entities.
package entities

import "time"

// User is a registered account. Credentials live in the authentication collaborator.
type User struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}

// Principal is the authenticated caller of an operation.
type Principal struct {
	UserID string
}
