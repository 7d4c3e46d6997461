package postgres

import (
	"context"
	"errors"
	"fmt"

	"bug-lifecycle-tracker/internal/entities"

	"github.com/jackc/pgx/v5"
)

const (
	fixColumns = `f.id, f.bug_id, f.project_id, f.submitted_by, f.commit_url, f.summary, f.proof, f.status,
f.rejection_reason, f.created_at, f.updated_at`

	selectFixForUpdateQuery = `SELECT ` + fixColumns + ` FROM bug_fixes f WHERE f.id=$1 FOR UPDATE`
	selectPendingFixQuery   = `SELECT ` + fixColumns + ` FROM bug_fixes f WHERE f.bug_id=$1 AND f.status='PENDING' FOR UPDATE`
	selectPendingFixesQuery = `SELECT ` + fixColumns + ` FROM bug_fixes f
WHERE f.project_id=$1 AND f.submitted_by=$2 AND f.status='PENDING'
ORDER BY f.created_at, f.id FOR UPDATE`
	selectFixesByBugQuery = `SELECT ` + fixColumns + ` FROM bug_fixes f WHERE f.bug_id=$1 ORDER BY f.created_at, f.id`
	insertFixQuery        = `
INSERT INTO bug_fixes(id, bug_id, project_id, submitted_by, commit_url, summary, proof, status,
    rejection_reason, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	updateFixQuery = `UPDATE bug_fixes SET status=$2, rejection_reason=$3, updated_at=$4 WHERE id=$1`
)

// ListFixes returns fixes of the bug in submission order.
func (p *Postgres) ListFixes(ctx context.Context, bugID string) ([]entities.BugFix, error) {
	fixes, err := queryFixes(ctx, p.db, selectFixesByBugQuery, bugID)
	if err != nil {
		p.log.Errorw("failed to list fixes", "error", err, "bug_id", bugID)
		return nil, err
	}
	return fixes, nil
}

func (t *tx) FixForUpdate(ctx context.Context, fixID string) (*entities.BugFix, error) {
	f, err := scanFix(t.q.QueryRow(ctx, selectFixForUpdateQuery, fixID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrFixNotFound
		}
		return nil, fmt.Errorf("select fix: %w", err)
	}
	return &f, nil
}

func (t *tx) PendingFix(ctx context.Context, bugID string) (*entities.BugFix, error) {
	f, err := scanFix(t.q.QueryRow(ctx, selectPendingFixQuery, bugID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select pending fix: %w", err)
	}
	return &f, nil
}

func (t *tx) PendingFixesBy(ctx context.Context, projectID, userID string) ([]entities.BugFix, error) {
	return queryFixes(ctx, t.q, selectPendingFixesQuery, projectID, userID)
}

func (t *tx) CreateFix(ctx context.Context, f entities.BugFix) error {
	if _, err := t.q.Exec(ctx, insertFixQuery,
		f.ID, f.BugID, f.ProjectID, f.SubmittedBy, f.CommitURL, f.Summary, f.Proof, f.Status,
		f.RejectionReason, f.CreatedAt, f.UpdatedAt,
	); err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			if constraint == "bug_fixes_one_pending_uq" {
				return entities.ErrPendingFixExists
			}
			return fmt.Errorf("%w: fix id already exists", entities.ErrConflict)
		}
		return fmt.Errorf("insert fix: %w", err)
	}
	return nil
}

func (t *tx) SaveFix(ctx context.Context, f entities.BugFix) error {
	tag, err := t.q.Exec(ctx, updateFixQuery, f.ID, f.Status, f.RejectionReason, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update fix: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrFixNotFound
	}
	return nil
}

func queryFixes(ctx context.Context, q querier, query string, args ...any) ([]entities.BugFix, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select fixes: %w", err)
	}
	defer rows.Close()

	fixes := make([]entities.BugFix, 0)
	for rows.Next() {
		f, err := scanFix(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fix: %w", err)
		}
		fixes = append(fixes, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fixes: %w", err)
	}
	return fixes, nil
}

func scanFix(row pgx.Row) (entities.BugFix, error) {
	var f entities.BugFix
	err := row.Scan(
		&f.ID, &f.BugID, &f.ProjectID, &f.SubmittedBy, &f.CommitURL, &f.Summary, &f.Proof, &f.Status,
		&f.RejectionReason, &f.CreatedAt, &f.UpdatedAt,
	)
	return f, err
}
