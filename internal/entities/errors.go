// Package entities contains core business entities and errors.
package entities

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the workflow engine wraps exactly one of them.
var (
	// ErrInvalidArgument signals failed input validation.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidState signals an operation that is not legal in the current status.
	ErrInvalidState = errors.New("invalid state")
	// ErrUnauthenticated signals a missing or invalid credential.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden signals that the caller lacks the required role or membership.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrConflict signals a uniqueness or duplicate-operation conflict.
	ErrConflict = errors.New("conflict")
)

var (
	// ErrProjectNotFound signals missing project.
	ErrProjectNotFound = fmt.Errorf("project %w", ErrNotFound)
	// ErrBugNotFound signals missing or deactivated bug.
	ErrBugNotFound = fmt.Errorf("bug %w", ErrNotFound)
	// ErrFixNotFound signals missing fix or a fix that belongs to another bug.
	ErrFixNotFound = fmt.Errorf("fix %w", ErrNotFound)
	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
	// ErrMemberNotFound signals that the user is not a project member.
	ErrMemberNotFound = fmt.Errorf("member %w", ErrNotFound)
	// ErrInviteCodeNotFound signals an unknown or inactive invite code.
	ErrInviteCodeNotFound = fmt.Errorf("invite code %w", ErrNotFound)

	// ErrPendingFixExists signals a second fix submission while one is under review.
	ErrPendingFixExists = fmt.Errorf("%w: bug already has a pending fix", ErrConflict)
	// ErrAlreadyMember signals duplicate membership.
	ErrAlreadyMember = fmt.Errorf("%w: user is already a member", ErrConflict)
	// ErrAlreadyAssigned signals assignment to the current assignee.
	ErrAlreadyAssigned = fmt.Errorf("%w: bug is already assigned to this user", ErrConflict)
	// ErrEmailTaken signals user email uniqueness violation.
	ErrEmailTaken = fmt.Errorf("%w: email already exists", ErrConflict)
	// ErrInviteCodeTaken signals invite code collision; callers retry with a new code.
	ErrInviteCodeTaken = fmt.Errorf("%w: invite code already exists", ErrConflict)
)
