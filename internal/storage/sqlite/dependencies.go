package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tracehq/trace/internal/types"
)

// AddDependency records an edge from dep.IssueID to dep.DependsOnID. A parent
// edge goes through Reparent so the single-parent and acyclicity rules hold;
// blocks and related edges are deduplicated on the (issue, target) pair.
func (s *Store) AddDependency(ctx context.Context, dep *types.Dependency) error {
	if !dep.Type.IsValid() {
		return fmt.Errorf("invalid dependency type %q", dep.Type)
	}
	if dep.IssueID == dep.DependsOnID {
		return fmt.Errorf("issue %s cannot depend on itself: %w", dep.IssueID, ErrCycle)
	}
	if dep.Type == types.DepParent {
		return s.Reparent(ctx, dep.IssueID, dep.DependsOnID)
	}

	for _, id := range []string{dep.IssueID, dep.DependsOnID} {
		if err := s.requireIssue(ctx, id); err != nil {
			return err
		}
	}

	createdAt := dep.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO dependencies (issue_id, depends_on_id, type, created_at)
		VALUES (?, ?, ?, ?)`,
		dep.IssueID, dep.DependsOnID, string(dep.Type), createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add dependency: %w", err)
	}
	return nil
}

// RemoveDependency deletes the edge between two issues, whatever its type.
func (s *Store) RemoveDependency(ctx context.Context, issueID, dependsOnID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM dependencies WHERE issue_id = ? AND depends_on_id = ?`,
		issueID, dependsOnID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove dependency: %w", err)
	}
	return requireRow(res, "dependency", issueID+" -> "+dependsOnID)
}

// GetDependencies returns the outgoing edges of an issue, ordered by target
// id so callers see a stable sequence.
func (s *Store) GetDependencies(ctx context.Context, issueID string) ([]*types.Dependency, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT issue_id, depends_on_id, type, created_at
		FROM dependencies WHERE issue_id = ?
		ORDER BY depends_on_id`, issueID)
	if err != nil {
		return nil, fmt.Errorf("failed to get dependencies: %w", err)
	}
	defer rows.Close()

	var deps []*types.Dependency
	for rows.Next() {
		var dep types.Dependency
		var depType string
		if err := rows.Scan(&dep.IssueID, &dep.DependsOnID, &depType, &dep.CreatedAt); err != nil {
			return nil, err
		}
		dep.Type = types.DependencyType(depType)
		deps = append(deps, &dep)
	}
	return deps, rows.Err()
}

// GetChildren returns the issues whose parent edge points at id.
func (s *Store) GetChildren(ctx context.Context, id string) ([]*types.Issue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+issueColumns+` FROM issues
		WHERE id IN (
			SELECT issue_id FROM dependencies
			WHERE depends_on_id = ? AND type = 'parent'
		)
		ORDER BY priority ASC, created_at DESC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get children: %w", err)
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

// GetBlockers returns the non-closed issues this issue has a blocks edge to.
func (s *Store) GetBlockers(ctx context.Context, id string) ([]*types.Issue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+issueColumns+` FROM issues
		WHERE id IN (
			SELECT depends_on_id FROM dependencies
			WHERE issue_id = ? AND type = 'blocks'
		) AND status != 'closed'
		ORDER BY priority ASC, created_at DESC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get blockers: %w", err)
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

// IsBlocked reports whether the issue has a blocks edge to a non-closed
// issue. Blocking is a single hop: a blocked blocker does not propagate.
func (s *Store) IsBlocked(ctx context.Context, id string) (bool, error) {
	var blocked bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM dependencies d
			JOIN issues i ON i.id = d.depends_on_id
			WHERE d.issue_id = ? AND d.type = 'blocks' AND i.status != 'closed'
		)`, id).Scan(&blocked)
	if err != nil {
		return false, fmt.Errorf("failed to check blocked: %w", err)
	}
	return blocked, nil
}

// HasOpenChildren reports whether any child of id is not closed. Ready-work
// views use this to keep parents out of the list until their children finish.
func (s *Store) HasOpenChildren(ctx context.Context, id string) (bool, error) {
	var open bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM dependencies d
			JOIN issues i ON i.id = d.issue_id
			WHERE d.depends_on_id = ? AND d.type = 'parent' AND i.status != 'closed'
		)`, id).Scan(&open)
	if err != nil {
		return false, fmt.Errorf("failed to check children: %w", err)
	}
	return open, nil
}

// Reparent replaces the issue's parent edge with one pointing at newParentID,
// or removes it when newParentID is empty. The parent chain above the new
// parent is walked with a visited set; reaching the issue means the edge
// would close a cycle.
func (s *Store) Reparent(ctx context.Context, issueID, newParentID string) error {
	if err := s.requireIssue(ctx, issueID); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if newParentID != "" {
		if issueID == newParentID {
			return fmt.Errorf("issue %s cannot be its own parent: %w", issueID, ErrCycle)
		}
		var exists int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM issues WHERE id = ?`, newParentID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return fmt.Errorf("issue %s: %w", newParentID, ErrNotFound)
		}

		visited := map[string]struct{}{}
		for cur := newParentID; cur != ""; {
			if cur == issueID {
				return fmt.Errorf("reparenting %s under %s: %w", issueID, newParentID, ErrCycle)
			}
			if _, seen := visited[cur]; seen {
				break // pre-existing cycle in stored data; do not loop forever
			}
			visited[cur] = struct{}{}
			cur, err = parentOf(ctx, tx, cur)
			if err != nil {
				return err
			}
		}
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM dependencies WHERE issue_id = ? AND type = 'parent'`, issueID)
	if err != nil {
		return fmt.Errorf("failed to clear parent: %w", err)
	}

	if newParentID != "" {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO dependencies (issue_id, depends_on_id, type, created_at)
			VALUES (?, ?, 'parent', ?)`,
			issueID, newParentID, s.now(),
		)
		if err != nil {
			return fmt.Errorf("failed to set parent: %w", err)
		}
	}

	return tx.Commit()
}

// ReplaceDependencies swaps an issue's outgoing edges for the given set.
// Edges whose target is not in the store are dropped silently; the target may
// live in a project that was never synced on this machine.
func (s *Store) ReplaceDependencies(ctx context.Context, issueID string, deps []*types.Dependency) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM dependencies WHERE issue_id = ?`, issueID)
	if err != nil {
		return fmt.Errorf("failed to clear dependencies: %w", err)
	}

	for _, dep := range deps {
		if !dep.Type.IsValid() || dep.DependsOnID == issueID {
			continue
		}
		var exists int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM issues WHERE id = ?`, dep.DependsOnID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			continue
		}
		createdAt := dep.CreatedAt
		if createdAt.IsZero() {
			createdAt = s.now()
		}
		_, err = tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO dependencies (issue_id, depends_on_id, type, created_at)
			VALUES (?, ?, ?, ?)`,
			issueID, dep.DependsOnID, string(dep.Type), createdAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert dependency: %w", err)
		}
	}

	return tx.Commit()
}

// Parent returns the issue's parent id, or "" when it has none.
func (s *Store) Parent(ctx context.Context, issueID string) (string, error) {
	return parentOf(ctx, s.db, issueID)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func parentOf(ctx context.Context, q querier, issueID string) (string, error) {
	var parent string
	err := q.QueryRowContext(ctx, `
		SELECT depends_on_id FROM dependencies
		WHERE issue_id = ? AND type = 'parent'`, issueID).Scan(&parent)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up parent: %w", err)
	}
	return parent, nil
}

func (s *Store) requireIssue(ctx context.Context, id string) error {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM issues WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return err
	}
	if exists == 0 {
		return fmt.Errorf("issue %s: %w", id, ErrNotFound)
	}
	return nil
}
