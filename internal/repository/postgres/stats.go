package postgres

import (
	"context"
	"errors"
	"fmt"

	"bug-lifecycle-tracker/internal/entities"

	"github.com/jackc/pgx/v5"
)

const (
	projectExistsQuery   = `SELECT true FROM projects WHERE id=$1`
	statsByStatusQuery   = `SELECT status, COUNT(*) FROM bugs WHERE project_id=$1 AND is_active GROUP BY status ORDER BY status`
	statsBySeverityQuery = `SELECT severity, COUNT(*) FROM bugs WHERE project_id=$1 AND is_active GROUP BY severity ORDER BY severity`
	statsWorkloadQuery   = `
SELECT assigned_to,
       COUNT(*) FILTER (WHERE status = 'ASSIGNED'),
       COUNT(*) FILTER (WHERE status = 'AWAITING_VERIFICATION')
FROM bugs
WHERE project_id=$1 AND is_active AND assigned_to IS NOT NULL
  AND status IN ('ASSIGNED', 'AWAITING_VERIFICATION')
GROUP BY assigned_to
ORDER BY assigned_to`
	statsFixesQuery = `SELECT status, COUNT(*) FROM bug_fixes WHERE project_id=$1 GROUP BY status ORDER BY status`
)

// ProjectStats aggregates bug and fix counters of one project.
func (p *Postgres) ProjectStats(ctx context.Context, projectID string) (entities.ProjectStats, error) {
	res := entities.ProjectStats{ProjectID: projectID}

	var exists bool
	if err := p.db.QueryRow(ctx, projectExistsQuery, projectID).Scan(&exists); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return res, entities.ErrProjectNotFound
		}
		return res, fmt.Errorf("check project: %w", err)
	}

	rows, err := p.db.Query(ctx, statsByStatusQuery, projectID)
	if err != nil {
		return res, fmt.Errorf("stats by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s entities.StatusStat
		if err := rows.Scan(&s.Status, &s.BugCount); err != nil {
			return res, fmt.Errorf("scan status stat: %w", err)
		}
		res.ByStatus = append(res.ByStatus, s)
	}
	if err := rows.Err(); err != nil {
		return res, fmt.Errorf("iterate status stat: %w", err)
	}

	rows2, err := p.db.Query(ctx, statsBySeverityQuery, projectID)
	if err != nil {
		return res, fmt.Errorf("stats by severity: %w", err)
	}
	defer rows2.Close()
	for rows2.Next() {
		var s entities.SeverityStat
		if err := rows2.Scan(&s.Severity, &s.BugCount); err != nil {
			return res, fmt.Errorf("scan severity stat: %w", err)
		}
		res.BySeverity = append(res.BySeverity, s)
	}
	if err := rows2.Err(); err != nil {
		return res, fmt.Errorf("iterate severity stat: %w", err)
	}

	rows3, err := p.db.Query(ctx, statsWorkloadQuery, projectID)
	if err != nil {
		return res, fmt.Errorf("stats workload: %w", err)
	}
	defer rows3.Close()
	for rows3.Next() {
		var s entities.AssigneeStat
		if err := rows3.Scan(&s.UserID, &s.Assigned, &s.Awaiting); err != nil {
			return res, fmt.Errorf("scan workload stat: %w", err)
		}
		res.Workload = append(res.Workload, s)
	}
	if err := rows3.Err(); err != nil {
		return res, fmt.Errorf("iterate workload stat: %w", err)
	}

	rows4, err := p.db.Query(ctx, statsFixesQuery, projectID)
	if err != nil {
		return res, fmt.Errorf("stats fixes: %w", err)
	}
	defer rows4.Close()
	for rows4.Next() {
		var s entities.FixStat
		if err := rows4.Scan(&s.Status, &s.FixCount); err != nil {
			return res, fmt.Errorf("scan fix stat: %w", err)
		}
		res.Fixes = append(res.Fixes, s)
	}
	if err := rows4.Err(); err != nil {
		return res, fmt.Errorf("iterate fix stat: %w", err)
	}

	return res, nil
}
