// Package entities contains core business entities.
package entities

import "time"

// MemberRole is the discipline a member works in. It carries no authority.
type MemberRole string

// Member roles.
const (
	RoleFullstack MemberRole = "FULLSTACK"
	RoleFrontend  MemberRole = "FRONTEND"
	RoleBackend   MemberRole = "BACKEND"
	RoleQA        MemberRole = "QA"
	RoleDesigner  MemberRole = "DESIGNER"
	RoleOther     MemberRole = "OTHER"
)

// IsValid reports whether r is a known member role.
func (r MemberRole) IsValid() bool {
	switch r {
	case RoleFullstack, RoleFrontend, RoleBackend, RoleQA, RoleDesigner, RoleOther:
		return true
	}
	return false
}

// Member is a user entry of a project's member set.
type Member struct {
	UserID   string
	Role     MemberRole
	JoinedAt time.Time
}

// Project groups members under one lead. The lead is always a member.
type Project struct {
	ID          string
	Name        string
	Description string
	LeadID      string
	Members     []Member
	InviteCode  string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Member returns the member entry for userID.
func (p *Project) Member(userID string) (Member, bool) {
	for _, m := range p.Members {
		if m.UserID == userID {
			return m, true
		}
	}
	return Member{}, false
}

// Clone returns a deep copy of the project.
func (p Project) Clone() Project {
	p.Members = append([]Member(nil), p.Members...)
	return p
}
