package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tracehq/trace/internal/types"
)

// issueColumns is the SELECT list shared by single and bulk issue reads.
const issueColumns = `id, project_id, title, description, status, priority,
       created_at, updated_at, closed_at`

// CreateIssue inserts a new issue. When issue.ID is empty a fresh identifier
// is generated from the title and projectName (the sanitized human name, which
// becomes the ID prefix). issue.Project must carry the owning project handle.
func (s *Store) CreateIssue(ctx context.Context, issue *types.Issue, projectName string) error {
	if issue.Project == "" {
		return fmt.Errorf("issue has no project: %w", ErrInvalidID)
	}

	now := s.now()
	if issue.CreatedAt.IsZero() {
		issue.CreatedAt = now
	}
	if issue.UpdatedAt.IsZero() {
		issue.UpdatedAt = now
	}
	if issue.Status == "" {
		issue.Status = types.StatusOpen
	}
	if issue.Status == types.StatusClosed && issue.ClosedAt == nil {
		issue.ClosedAt = &now
	}

	if issue.ID == "" {
		existing, err := s.ExistingIDs(ctx, projectName)
		if err != nil {
			return err
		}
		id, err := s.ids.Generate(issue.Title, projectName, existing)
		if err != nil {
			return err
		}
		issue.ID = id
	}

	if err := issue.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO issues (id, project_id, title, description, status, priority,
		                    created_at, updated_at, closed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		issue.ID, issue.Project, issue.Title, issue.Description,
		string(issue.Status), issue.Priority,
		issue.CreatedAt, issue.UpdatedAt, nullableTime(issue.ClosedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("issue %s already exists: %w", issue.ID, ErrConflict)
		}
		return fmt.Errorf("failed to create issue: %w", err)
	}
	return nil
}

// GetIssue loads a single issue with its dependencies and comments attached.
func (s *Store) GetIssue(ctx context.Context, id string) (*types.Issue, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+issueColumns+` FROM issues WHERE id = ?`, id)
	issue, err := scanIssue(row)
	if err != nil {
		return nil, wrapNotFound(err, "issue", id)
	}

	issue.Dependencies, err = s.GetDependencies(ctx, id)
	if err != nil {
		return nil, err
	}
	issue.Comments, err = s.GetComments(ctx, id)
	if err != nil {
		return nil, err
	}
	return issue, nil
}

// ListIssues returns issues matching the filter, ordered by priority
// ascending then creation time descending. Dependencies and comments are not
// attached; use GetIssue for a full record.
func (s *Store) ListIssues(ctx context.Context, filter types.IssueFilter) ([]*types.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues`
	var conds []string
	var args []any

	if filter.Project != "" {
		conds = append(conds, "project_id = ?")
		args = append(args, filter.Project)
	}
	if len(filter.Statuses) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(filter.Statuses)), ",")
		conds = append(conds, "status IN ("+placeholders+")")
		for _, st := range filter.Statuses {
			args = append(args, string(st))
		}
	}
	if filter.Priority != nil {
		conds = append(conds, "priority = ?")
		args = append(args, *filter.Priority)
	}
	if filter.UpdatedSince != nil {
		conds = append(conds, "updated_at >= ?")
		args = append(args, filter.UpdatedSince.UTC())
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY priority ASC, created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	defer rows.Close()

	var issues []*types.Issue
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

// UpdateIssue writes the mutable columns of an existing issue. updated_at is
// set to now; closed_at tracks the status (set on close, cleared on reopen).
func (s *Store) UpdateIssue(ctx context.Context, issue *types.Issue) error {
	if err := issue.Validate(); err != nil {
		return err
	}

	now := s.now()
	issue.UpdatedAt = now
	if issue.Status == types.StatusClosed {
		if issue.ClosedAt == nil {
			issue.ClosedAt = &now
		}
	} else {
		issue.ClosedAt = nil
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE issues
		SET title = ?, description = ?, status = ?, priority = ?,
		    updated_at = ?, closed_at = ?
		WHERE id = ?`,
		issue.Title, issue.Description, string(issue.Status), issue.Priority,
		issue.UpdatedAt, nullableTime(issue.ClosedAt), issue.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update issue: %w", err)
	}
	return requireRow(res, "issue", issue.ID)
}

// ImportIssue upserts an issue from a log record, preserving the record's
// timestamps instead of stamping the local clock. Returns whether a new row
// was created. Existing rows keep their project handle and creation time;
// everything else follows the record.
func (s *Store) ImportIssue(ctx context.Context, issue *types.Issue) (bool, error) {
	if issue.ID == "" {
		return false, fmt.Errorf("imported issue has no id: %w", ErrInvalidID)
	}
	issue.SetDefaults()
	if err := issue.Validate(); err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE issues
		SET title = ?, description = ?, status = ?, priority = ?,
		    updated_at = ?, closed_at = ?
		WHERE id = ?`,
		issue.Title, issue.Description, string(issue.Status), issue.Priority,
		issue.UpdatedAt, nullableTime(issue.ClosedAt), issue.ID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update imported issue: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO issues (id, project_id, title, description, status, priority,
		                    created_at, updated_at, closed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		issue.ID, issue.Project, issue.Title, issue.Description,
		string(issue.Status), issue.Priority,
		issue.CreatedAt, issue.UpdatedAt, nullableTime(issue.ClosedAt),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert imported issue: %w", err)
	}
	return true, nil
}

// CloseIssue marks an issue closed and stamps closed_at.
func (s *Store) CloseIssue(ctx context.Context, id string) error {
	now := s.now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE issues SET status = ?, closed_at = ?, updated_at = ?
		WHERE id = ?`,
		string(types.StatusClosed), now, now, id,
	)
	if err != nil {
		return fmt.Errorf("failed to close issue: %w", err)
	}
	return requireRow(res, "issue", id)
}

// DeleteIssue removes an issue. Dependencies and comments cascade.
func (s *Store) DeleteIssue(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM issues WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete issue: %w", err)
	}
	return requireRow(res, "issue", id)
}

// MoveIssue renames an issue to newID under newProject, rewriting every
// dependency edge and comment that references the old identifier. The whole
// rewrite happens in one transaction with FK checks deferred to commit.
func (s *Store) MoveIssue(ctx context.Context, oldID, newID, newProject string) error {
	if oldID == "" || newID == "" {
		return fmt.Errorf("empty identifier: %w", ErrInvalidID)
	}
	if oldID == newID {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM issues WHERE id = ?`, newID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check target id: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("issue %s already exists: %w", newID, ErrConflict)
	}

	// The edge and comment rows still point at the old id while it is being
	// renamed, so FK enforcement must wait until commit.
	if _, err := tx.ExecContext(ctx, "PRAGMA defer_foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to defer foreign keys: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE issues SET id = ?, project_id = ?, updated_at = ?
		WHERE id = ?`,
		newID, newProject, s.now(), oldID,
	)
	if err != nil {
		return fmt.Errorf("failed to rename issue: %w", err)
	}
	if err := requireRow(res, "issue", oldID); err != nil {
		return err
	}

	for _, stmt := range []string{
		`UPDATE dependencies SET issue_id = ? WHERE issue_id = ?`,
		`UPDATE dependencies SET depends_on_id = ? WHERE depends_on_id = ?`,
		`UPDATE comments SET issue_id = ? WHERE issue_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, newID, oldID); err != nil {
			return fmt.Errorf("failed to rewrite references: %w", err)
		}
	}

	return tx.Commit()
}

// ExistingIDs returns every issue id carrying the given project-name prefix,
// as a set for collision avoidance during generation.
func (s *Store) ExistingIDs(ctx context.Context, prefix string) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM issues WHERE id LIKE ?`, prefix+"-%")
	if err != nil {
		return nil, fmt.Errorf("failed to query existing ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// DistinctHandles returns every project handle that owns at least one issue.
func (s *Store) DistinctHandles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT project_id FROM issues ORDER BY project_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query handles: %w", err)
	}
	defer rows.Close()

	var handles []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		handles = append(handles, h)
	}
	return handles, rows.Err()
}

// SetIssueProject reassigns a single issue to another project handle without
// touching its id.
func (s *Store) SetIssueProject(ctx context.Context, id, handle string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE issues SET project_id = ? WHERE id = ?`, handle, id)
	if err != nil {
		return fmt.Errorf("failed to reassign issue: %w", err)
	}
	return requireRow(res, "issue", id)
}

// RewriteProjectReferences repoints every issue owned by oldHandle at
// newHandle and returns how many issues moved. Issue ids are untouched; a
// handle change does not invalidate already-minted identifiers.
func (s *Store) RewriteProjectReferences(ctx context.Context, oldHandle, newHandle string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE issues SET project_id = ? WHERE project_id = ?`,
		newHandle, oldHandle,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to rewrite project references: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanIssue(row scanner) (*types.Issue, error) {
	var issue types.Issue
	var status string
	var closedAt sql.NullTime
	err := row.Scan(
		&issue.ID, &issue.Project, &issue.Title, &issue.Description,
		&status, &issue.Priority,
		&issue.CreatedAt, &issue.UpdatedAt, &closedAt,
	)
	if err != nil {
		return nil, err
	}
	issue.Status = types.Status(status)
	if closedAt.Valid {
		t := closedAt.Time
		issue.ClosedAt = &t
	}
	return &issue, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}
