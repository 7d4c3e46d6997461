// Package access answers membership questions about a project.
package access

import (
	"fmt"

	"bug-lifecycle-tracker/internal/entities"
)

// Role is the authority an operation requires.
type Role int

const (
	// RoleMember is held by every user in the member set, the lead included.
	RoleMember Role = iota
	// RoleLead is held by the project lead only.
	RoleLead
)

func (r Role) String() string {
	switch r {
	case RoleLead:
		return "lead"
	default:
		return "member"
	}
}

// IsMember reports whether userID is in the project's member set.
func IsMember(p *entities.Project, userID string) bool {
	if p == nil || userID == "" {
		return false
	}
	_, ok := p.Member(userID)
	return ok
}

// IsLead reports whether userID is the project lead.
func IsLead(p *entities.Project, userID string) bool {
	return p != nil && userID != "" && p.LeadID == userID
}

// Authorize returns nil when actorID holds role in p, an ErrForbidden otherwise.
func Authorize(actorID string, p *entities.Project, role Role) error {
	switch role {
	case RoleLead:
		if IsLead(p, actorID) {
			return nil
		}
	case RoleMember:
		if IsMember(p, actorID) || IsLead(p, actorID) {
			return nil
		}
	}
	return fmt.Errorf("%w: project %s required", entities.ErrForbidden, role)
}
