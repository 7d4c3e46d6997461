package domain

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"bug-lifecycle-tracker/internal/access"
	"bug-lifecycle-tracker/internal/entities"
	"bug-lifecycle-tracker/internal/repository"
)

const inviteCodeAttempts = 3

var errInviteCodeExhausted = errors.New("could not generate a unique invite code")

func generateInviteCode() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

// CreateProject creates a project led by the actor, who becomes its first member.
func (u *Usecase) CreateProject(ctx context.Context, actor entities.Principal, name, description string) (*entities.Project, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
		return nil, fmt.Errorf("%w: project name must be 2 to 100 characters", entities.ErrInvalidArgument)
	}
	if utf8.RuneCountInString(description) > 500 {
		return nil, fmt.Errorf("%w: project description cannot exceed 500 characters", entities.ErrInvalidArgument)
	}

	now := u.now()
	project := entities.Project{
		ID:          u.newID(),
		Name:        name,
		Description: description,
		LeadID:      actor.UserID,
		Members:     []entities.Member{{UserID: actor.UserID, Role: entities.RoleFullstack, JoinedAt: now}},
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for attempt := 1; attempt <= inviteCodeAttempts; attempt++ {
		code, err := u.inviteCode()
		if err != nil {
			return nil, err
		}
		project.InviteCode = code

		err = u.repo.RunInTx(ctx, func(tx repository.Tx) error {
			if _, err := tx.User(ctx, actor.UserID); err != nil {
				return err
			}
			return tx.CreateProject(ctx, project)
		})
		if errors.Is(err, entities.ErrInviteCodeTaken) {
			u.log.Warnw("invite code collision", "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, err
		}
		u.log.Infow("project created", "project_id", project.ID, "lead_id", actor.UserID)
		return &project, nil
	}
	u.log.Errorw("failed to create project", "error", errInviteCodeExhausted)
	return nil, errInviteCodeExhausted
}

// JoinProject adds the actor to the project holding inviteCode.
func (u *Usecase) JoinProject(ctx context.Context, actor entities.Principal, inviteCode string, role entities.MemberRole) (*entities.Project, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	code := strings.ToUpper(strings.TrimSpace(inviteCode))
	if code == "" {
		return nil, fmt.Errorf("%w: invite code is required", entities.ErrInvalidArgument)
	}
	role, err := normalizeRole(role)
	if err != nil {
		return nil, err
	}

	var res entities.Project
	err = u.repo.RunInTx(ctx, func(tx repository.Tx) error {
		p, err := tx.ProjectByInviteCodeForUpdate(ctx, code)
		if err != nil {
			return err
		}
		if !p.IsActive {
			return fmt.Errorf("%w: project is not active", entities.ErrInvalidState)
		}
		if access.IsMember(p, actor.UserID) {
			return entities.ErrAlreadyMember
		}
		if _, err := tx.User(ctx, actor.UserID); err != nil {
			return err
		}
		res = u.withMember(*p, actor.UserID, role)
		return tx.SaveProject(ctx, res)
	})
	if err != nil {
		return nil, err
	}
	u.log.Infow("member joined", "project_id", res.ID, "user_id", actor.UserID, "role", role)
	res.InviteCode = ""
	return &res, nil
}

// AddMember lets the lead add an existing user to the project.
func (u *Usecase) AddMember(ctx context.Context, actor entities.Principal, projectID, userID string, role entities.MemberRole) (*entities.Project, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if projectID == "" || userID == "" {
		return nil, fmt.Errorf("%w: project id and user id are required", entities.ErrInvalidArgument)
	}
	role, err := normalizeRole(role)
	if err != nil {
		return nil, err
	}

	var res entities.Project
	err = u.repo.RunInTx(ctx, func(tx repository.Tx) error {
		p, err := tx.ProjectForUpdate(ctx, projectID)
		if err != nil {
			return err
		}
		if err := access.Authorize(actor.UserID, p, access.RoleLead); err != nil {
			return err
		}
		if access.IsMember(p, userID) {
			return entities.ErrAlreadyMember
		}
		if _, err := tx.User(ctx, userID); err != nil {
			return err
		}
		res = u.withMember(*p, userID, role)
		return tx.SaveProject(ctx, res)
	})
	if err != nil {
		return nil, err
	}
	u.log.Infow("member added", "project_id", projectID, "user_id", userID, "role", role)
	return &res, nil
}

// ListMyProjects returns projects the actor leads or belongs to. Invite codes are hidden.
func (u *Usecase) ListMyProjects(ctx context.Context, actor entities.Principal) ([]entities.Project, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	projects, err := u.repo.ListProjectsFor(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		projects[i].InviteCode = ""
	}
	return projects, nil
}

// GetProject returns a project to its members. Only the lead sees the invite code.
func (u *Usecase) GetProject(ctx context.Context, actor entities.Principal, projectID string) (*entities.Project, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	p, err := u.memberProject(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	if !access.IsLead(p, actor.UserID) {
		p.InviteCode = ""
	}
	return p, nil
}

func (u *Usecase) withMember(p entities.Project, userID string, role entities.MemberRole) entities.Project {
	now := u.now()
	p = p.Clone()
	p.Members = append(p.Members, entities.Member{UserID: userID, Role: role, JoinedAt: now})
	p.UpdatedAt = now
	return p
}

func normalizeRole(role entities.MemberRole) (entities.MemberRole, error) {
	if role == "" {
		return entities.RoleFullstack, nil
	}
	role = entities.MemberRole(strings.ToUpper(strings.TrimSpace(string(role))))
	if !role.IsValid() {
		return "", fmt.Errorf("%w: invalid member role %q", entities.ErrInvalidArgument, role)
	}
	return role, nil
}
