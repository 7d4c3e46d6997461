package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"bug-lifecycle-tracker/internal/entities"

	"github.com/jackc/pgx/v5"
)

const (
	bugColumns = `b.id, b.project_id, b.created_by, b.assigned_to, b.title, b.description, b.bug_type,
b.environment, b.severity, b.suggested_severity, b.status, b.is_active, b.stack_trace, b.module_name,
b.created_at, b.updated_at`

	selectBugQuery          = `SELECT ` + bugColumns + ` FROM bugs b WHERE b.id=$1 AND b.project_id=$2 AND b.is_active`
	selectBugForUpdateQuery = selectBugQuery + ` FOR UPDATE`
	bugOrder                = ` ORDER BY b.created_at, b.id`
	selectBugsAssignedQuery = `SELECT ` + bugColumns + ` FROM bugs b
WHERE b.project_id=$1 AND b.assigned_to=$2 AND b.is_active AND (cardinality($3::text[]) = 0 OR b.status = ANY($3::text[]))` + bugOrder + ` FOR UPDATE`
	selectBugsReportedQuery = `SELECT ` + bugColumns + ` FROM bugs b
WHERE b.project_id=$1 AND b.created_by=$2 AND b.status=$3 AND b.is_active` + bugOrder + ` FOR UPDATE`
	selectBugsPendingReviewQuery = `SELECT ` + bugColumns + ` FROM bugs b
WHERE b.project_id=$1 AND b.is_active AND EXISTS (
    SELECT 1 FROM bug_review_requests r WHERE r.bug_id = b.id AND r.requested_by = $2 AND r.status = 'PENDING'
)` + bugOrder + ` FOR UPDATE`

	insertBugQuery = `
INSERT INTO bugs(id, project_id, created_by, assigned_to, title, description, bug_type, environment,
    severity, suggested_severity, status, is_active, stack_trace, module_name, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`
	updateBugQuery = `
UPDATE bugs
SET assigned_to=$2, title=$3, description=$4, severity=$5, status=$6, is_active=$7, updated_at=$8
WHERE id=$1`

	selectHistoryQuery = `
SELECT bug_id, action, from_status, to_status, actor_id, meta, created_at
FROM bug_history
WHERE bug_id = ANY($1::text[])
ORDER BY bug_id, seq`
	selectHistoryLenQuery = `SELECT COALESCE(MAX(seq), 0) FROM bug_history WHERE bug_id=$1`
	insertHistoryQuery    = `
INSERT INTO bug_history(bug_id, seq, action, from_status, to_status, actor_id, meta, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	selectReviewRequestsQuery = `
SELECT bug_id, requested_by, reason, status, created_at
FROM bug_review_requests
WHERE bug_id = ANY($1::text[])
ORDER BY bug_id, seq`
	deleteReviewRequestsQuery = `DELETE FROM bug_review_requests WHERE bug_id=$1`
	insertReviewRequestQuery  = `
INSERT INTO bug_review_requests(bug_id, seq, requested_by, reason, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6)`

	selectBugFixIDsQuery = `
SELECT bug_id, id
FROM bug_fixes
WHERE bug_id = ANY($1::text[])
ORDER BY created_at, id`
)

// GetBug returns an active bug of the project.
func (p *Postgres) GetBug(ctx context.Context, projectID, bugID string) (*entities.Bug, error) {
	return loadBug(ctx, p.db, selectBugQuery, bugID, projectID)
}

// ListBugs returns active bugs of the project in creation order.
func (p *Postgres) ListBugs(ctx context.Context, projectID string, filter entities.BugFilter) ([]entities.Bug, error) {
	query, args := buildBugFilter(projectID, filter)
	bugs, err := queryBugs(ctx, p.db, query, args...)
	if err != nil {
		p.log.Errorw("failed to list bugs", "error", err, "project_id", projectID)
		return nil, err
	}
	return bugs, nil
}

func (t *tx) BugForUpdate(ctx context.Context, projectID, bugID string) (*entities.Bug, error) {
	return loadBug(ctx, t.q, selectBugForUpdateQuery, bugID, projectID)
}

func (t *tx) CreateBug(ctx context.Context, b entities.Bug) error {
	if _, err := t.q.Exec(ctx, insertBugQuery,
		b.ID, b.ProjectID, b.CreatedBy, nullable(b.AssignedTo), b.Title, b.Description, b.BugType, b.Environment,
		b.Severity, b.SuggestedSeverity, b.Status, b.IsActive, b.StackTrace, b.ModuleName, b.CreatedAt, b.UpdatedAt,
	); err != nil {
		if _, ok := uniqueViolation(err); ok {
			return fmt.Errorf("%w: bug id already exists", entities.ErrConflict)
		}
		return fmt.Errorf("insert bug: %w", err)
	}
	if err := appendHistory(ctx, t.q, b.ID, 0, b.History.Entries()); err != nil {
		return err
	}
	return replaceReviewRequests(ctx, t.q, b)
}

func (t *tx) SaveBug(ctx context.Context, b entities.Bug) error {
	tag, err := t.q.Exec(ctx, updateBugQuery,
		b.ID, nullable(b.AssignedTo), b.Title, b.Description, b.Severity, b.Status, b.IsActive, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update bug: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrBugNotFound
	}

	var stored int
	if err := t.q.QueryRow(ctx, selectHistoryLenQuery, b.ID).Scan(&stored); err != nil {
		return fmt.Errorf("history length: %w", err)
	}
	if stored > b.History.Len() {
		return fmt.Errorf("bug %s: history shrank from %d to %d entries", b.ID, stored, b.History.Len())
	}
	if err := appendHistory(ctx, t.q, b.ID, stored, b.History.Since(stored)); err != nil {
		return err
	}
	return replaceReviewRequests(ctx, t.q, b)
}

func (t *tx) BugsAssignedTo(ctx context.Context, projectID, userID string, statuses ...entities.BugStatus) ([]entities.Bug, error) {
	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, string(s))
	}
	return queryBugs(ctx, t.q, selectBugsAssignedQuery, projectID, userID, names)
}

func (t *tx) BugsReportedBy(ctx context.Context, projectID, userID string, status entities.BugStatus) ([]entities.Bug, error) {
	return queryBugs(ctx, t.q, selectBugsReportedQuery, projectID, userID, status)
}

func (t *tx) BugsWithPendingReviewBy(ctx context.Context, projectID, userID string) ([]entities.Bug, error) {
	return queryBugs(ctx, t.q, selectBugsPendingReviewQuery, projectID, userID)
}

func loadBug(ctx context.Context, q querier, query, bugID, projectID string) (*entities.Bug, error) {
	b, err := scanBug(q.QueryRow(ctx, query, bugID, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrBugNotFound
		}
		return nil, fmt.Errorf("select bug: %w", err)
	}

	bugs := []entities.Bug{b}
	if err := hydrateBugs(ctx, q, bugs); err != nil {
		return nil, err
	}
	return &bugs[0], nil
}

func queryBugs(ctx context.Context, q querier, query string, args ...any) ([]entities.Bug, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select bugs: %w", err)
	}
	defer rows.Close()

	bugs := make([]entities.Bug, 0)
	for rows.Next() {
		b, err := scanBug(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bug: %w", err)
		}
		bugs = append(bugs, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bugs: %w", err)
	}

	if err := hydrateBugs(ctx, q, bugs); err != nil {
		return nil, err
	}
	return bugs, nil
}

func scanBug(row pgx.Row) (entities.Bug, error) {
	var b entities.Bug
	var assignedTo *string
	err := row.Scan(
		&b.ID, &b.ProjectID, &b.CreatedBy, &assignedTo, &b.Title, &b.Description, &b.BugType,
		&b.Environment, &b.Severity, &b.SuggestedSeverity, &b.Status, &b.IsActive, &b.StackTrace, &b.ModuleName,
		&b.CreatedAt, &b.UpdatedAt,
	)
	b.AssignedTo = deref(assignedTo)
	return b, err
}

// hydrateBugs loads history, review requests and fix ids for bugs in three queries.
func hydrateBugs(ctx context.Context, q querier, bugs []entities.Bug) error {
	if len(bugs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(bugs))
	index := make(map[string]int, len(bugs))
	for i, b := range bugs {
		ids = append(ids, b.ID)
		index[b.ID] = i
	}

	entries := make(map[string][]entities.HistoryEntry, len(bugs))
	rows, err := q.Query(ctx, selectHistoryQuery, ids)
	if err != nil {
		return fmt.Errorf("select history: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var bugID string
		var from, to *string
		var e entities.HistoryEntry
		if err := rows.Scan(&bugID, &e.Action, &from, &to, &e.ActorID, &e.Meta, &e.At); err != nil {
			return fmt.Errorf("scan history: %w", err)
		}
		e.From = entities.BugStatus(deref(from))
		e.To = entities.BugStatus(deref(to))
		entries[bugID] = append(entries[bugID], e)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate history: %w", err)
	}
	for id, list := range entries {
		bugs[index[id]].History = entities.NewHistory(list...)
	}

	reqRows, err := q.Query(ctx, selectReviewRequestsQuery, ids)
	if err != nil {
		return fmt.Errorf("select review requests: %w", err)
	}
	defer reqRows.Close()
	for reqRows.Next() {
		var bugID string
		var r entities.ReviewRequest
		if err := reqRows.Scan(&bugID, &r.RequestedBy, &r.Reason, &r.Status, &r.CreatedAt); err != nil {
			return fmt.Errorf("scan review request: %w", err)
		}
		i := index[bugID]
		bugs[i].ReviewRequests = append(bugs[i].ReviewRequests, r)
	}
	if err := reqRows.Err(); err != nil {
		return fmt.Errorf("iterate review requests: %w", err)
	}

	fixRows, err := q.Query(ctx, selectBugFixIDsQuery, ids)
	if err != nil {
		return fmt.Errorf("select fix ids: %w", err)
	}
	defer fixRows.Close()
	for fixRows.Next() {
		var bugID, fixID string
		if err := fixRows.Scan(&bugID, &fixID); err != nil {
			return fmt.Errorf("scan fix id: %w", err)
		}
		i := index[bugID]
		bugs[i].Fixes = append(bugs[i].Fixes, fixID)
	}
	if err := fixRows.Err(); err != nil {
		return fmt.Errorf("iterate fix ids: %w", err)
	}
	return nil
}

func appendHistory(ctx context.Context, q querier, bugID string, offset int, entries []entities.HistoryEntry) error {
	for i, e := range entries {
		if _, err := q.Exec(ctx, insertHistoryQuery,
			bugID, offset+i+1, e.Action, nullable(string(e.From)), nullable(string(e.To)), e.ActorID, e.Meta, e.At,
		); err != nil {
			return fmt.Errorf("insert history: %w", err)
		}
	}
	return nil
}

func replaceReviewRequests(ctx context.Context, q querier, b entities.Bug) error {
	if _, err := q.Exec(ctx, deleteReviewRequestsQuery, b.ID); err != nil {
		return fmt.Errorf("delete review requests: %w", err)
	}
	for i, r := range b.ReviewRequests {
		if _, err := q.Exec(ctx, insertReviewRequestQuery,
			b.ID, i+1, r.RequestedBy, r.Reason, r.Status, r.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert review request: %w", err)
		}
	}
	return nil
}

func buildBugFilter(projectID string, filter entities.BugFilter) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(bugColumns)
	b.WriteString(" FROM bugs b WHERE b.project_id=$1 AND b.is_active")

	args := []any{projectID}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		b.WriteString(" AND b.status=$" + strconv.Itoa(len(args)))
	}
	if filter.AssignedTo != "" {
		args = append(args, filter.AssignedTo)
		b.WriteString(" AND b.assigned_to=$" + strconv.Itoa(len(args)))
	}
	b.WriteString(bugOrder)
	return b.String(), args
}
