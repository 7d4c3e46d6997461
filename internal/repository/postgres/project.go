package postgres

import (
	"context"
	"errors"
	"fmt"

	"bug-lifecycle-tracker/internal/entities"

	"github.com/jackc/pgx/v5"
)

const (
	projectColumns = `p.id, p.name, p.description, p.lead_id, p.invite_code, p.is_active, p.created_at, p.updated_at`

	selectProjectQuery             = `SELECT ` + projectColumns + ` FROM projects p WHERE p.id=$1`
	selectProjectForShareQuery     = selectProjectQuery + ` FOR SHARE`
	selectProjectForUpdateQuery    = selectProjectQuery + ` FOR UPDATE`
	selectProjectByCodeForUpdQuery = `SELECT ` + projectColumns + ` FROM projects p WHERE p.invite_code=$1 FOR UPDATE`
	selectProjectsForUserQuery     = `
SELECT ` + projectColumns + `
FROM projects p
WHERE p.lead_id=$1 OR EXISTS (
    SELECT 1 FROM project_members m WHERE m.project_id = p.id AND m.user_id = $1
)
ORDER BY p.created_at DESC, p.id DESC`
	insertProjectQuery = `
INSERT INTO projects(id, name, description, lead_id, invite_code, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	updateProjectQuery = `
UPDATE projects
SET name=$2, description=$3, lead_id=$4, invite_code=$5, is_active=$6, updated_at=$7
WHERE id=$1`
	selectMembersQuery = `
SELECT project_id, user_id, role, joined_at
FROM project_members
WHERE project_id = ANY($1::text[])
ORDER BY joined_at, user_id`
	deleteMembersQuery = `DELETE FROM project_members WHERE project_id=$1`
	insertMemberQuery  = `INSERT INTO project_members(project_id, user_id, role, joined_at) VALUES ($1,$2,$3,$4)`
)

// GetProject returns project with members.
func (p *Postgres) GetProject(ctx context.Context, projectID string) (*entities.Project, error) {
	return loadProject(ctx, p.db, selectProjectQuery, projectID, entities.ErrProjectNotFound)
}

// ListProjectsFor returns projects where userID is lead or member, newest first.
func (p *Postgres) ListProjectsFor(ctx context.Context, userID string) ([]entities.Project, error) {
	rows, err := p.db.Query(ctx, selectProjectsForUserQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]entities.Project, 0)
	for rows.Next() {
		pr, err := scanProject(rows)
		if err != nil {
			p.log.Errorw("failed to scan project", "error", err, "user_id", userID)
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}

	if err := loadMembers(ctx, p.db, projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (t *tx) Project(ctx context.Context, projectID string) (*entities.Project, error) {
	return loadProject(ctx, t.q, selectProjectForShareQuery, projectID, entities.ErrProjectNotFound)
}

func (t *tx) ProjectForUpdate(ctx context.Context, projectID string) (*entities.Project, error) {
	return loadProject(ctx, t.q, selectProjectForUpdateQuery, projectID, entities.ErrProjectNotFound)
}

func (t *tx) ProjectByInviteCodeForUpdate(ctx context.Context, code string) (*entities.Project, error) {
	return loadProject(ctx, t.q, selectProjectByCodeForUpdQuery, code, entities.ErrInviteCodeNotFound)
}

func (t *tx) CreateProject(ctx context.Context, pr entities.Project) error {
	if _, err := t.q.Exec(ctx, insertProjectQuery,
		pr.ID, pr.Name, pr.Description, pr.LeadID, pr.InviteCode, pr.IsActive, pr.CreatedAt, pr.UpdatedAt,
	); err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			if constraint == "projects_invite_code_key" {
				return entities.ErrInviteCodeTaken
			}
			return fmt.Errorf("%w: project id already exists", entities.ErrConflict)
		}
		return fmt.Errorf("insert project: %w", err)
	}
	return insertMembers(ctx, t.q, pr)
}

func (t *tx) SaveProject(ctx context.Context, pr entities.Project) error {
	tag, err := t.q.Exec(ctx, updateProjectQuery,
		pr.ID, pr.Name, pr.Description, pr.LeadID, pr.InviteCode, pr.IsActive, pr.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrProjectNotFound
	}
	if _, err := t.q.Exec(ctx, deleteMembersQuery, pr.ID); err != nil {
		return fmt.Errorf("delete members: %w", err)
	}
	return insertMembers(ctx, t.q, pr)
}

func loadProject(ctx context.Context, q querier, query, arg string, notFound error) (*entities.Project, error) {
	pr, err := scanProject(q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound
		}
		return nil, fmt.Errorf("select project: %w", err)
	}

	projects := []entities.Project{pr}
	if err := loadMembers(ctx, q, projects); err != nil {
		return nil, err
	}
	return &projects[0], nil
}

func scanProject(row pgx.Row) (entities.Project, error) {
	var pr entities.Project
	err := row.Scan(&pr.ID, &pr.Name, &pr.Description, &pr.LeadID, &pr.InviteCode, &pr.IsActive, &pr.CreatedAt, &pr.UpdatedAt)
	return pr, err
}

func loadMembers(ctx context.Context, q querier, projects []entities.Project) error {
	if len(projects) == 0 {
		return nil
	}
	ids := make([]string, 0, len(projects))
	index := make(map[string]int, len(projects))
	for i, pr := range projects {
		ids = append(ids, pr.ID)
		index[pr.ID] = i
		projects[i].Members = make([]entities.Member, 0)
	}

	rows, err := q.Query(ctx, selectMembersQuery, ids)
	if err != nil {
		return fmt.Errorf("select members: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var projectID string
		var m entities.Member
		if err := rows.Scan(&projectID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return fmt.Errorf("scan member: %w", err)
		}
		i := index[projectID]
		projects[i].Members = append(projects[i].Members, m)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate members: %w", err)
	}
	return nil
}

func insertMembers(ctx context.Context, q querier, pr entities.Project) error {
	for _, m := range pr.Members {
		if _, err := q.Exec(ctx, insertMemberQuery, pr.ID, m.UserID, m.Role, m.JoinedAt); err != nil {
			if _, ok := uniqueViolation(err); ok {
				return entities.ErrAlreadyMember
			}
			return fmt.Errorf("insert member: %w", err)
		}
	}
	return nil
}
