package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/tracehq/trace/internal/types"
)

// AddComment appends a comment to an issue and fills in the assigned row id
// and timestamp. Comments are append-only; there is no edit or delete.
func (s *Store) AddComment(ctx context.Context, comment *types.Comment) error {
	if strings.TrimSpace(comment.Content) == "" {
		return fmt.Errorf("comment content is empty")
	}
	if err := s.requireIssue(ctx, comment.IssueID); err != nil {
		return err
	}

	if comment.Source == "" {
		comment.Source = types.DefaultCommentSource
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = s.now()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (issue_id, content, source, created_at)
		VALUES (?, ?, ?, ?)`,
		comment.IssueID, comment.Content, comment.Source, comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add comment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	comment.ID = id
	return nil
}

// GetComments returns an issue's comments in insertion order.
func (s *Store) GetComments(ctx context.Context, issueID string) ([]*types.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, issue_id, content, source, created_at
		FROM comments WHERE issue_id = ?
		ORDER BY id`, issueID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	defer rows.Close()

	var comments []*types.Comment
	for rows.Next() {
		var c types.Comment
		if err := rows.Scan(&c.ID, &c.IssueID, &c.Content, &c.Source, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}

// ReplaceComments swaps an issue's comments for the given set, preserving the
// incoming order. Import uses this; local row ids are not stable across
// machines so they are reassigned.
func (s *Store) ReplaceComments(ctx context.Context, issueID string, comments []*types.Comment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM comments WHERE issue_id = ?`, issueID)
	if err != nil {
		return fmt.Errorf("failed to clear comments: %w", err)
	}

	for _, c := range comments {
		if strings.TrimSpace(c.Content) == "" {
			continue
		}
		source := c.Source
		if source == "" {
			source = types.DefaultCommentSource
		}
		createdAt := c.CreatedAt
		if createdAt.IsZero() {
			createdAt = s.now()
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO comments (issue_id, content, source, created_at)
			VALUES (?, ?, ?, ?)`,
			issueID, c.Content, source, createdAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert comment: %w", err)
		}
	}

	return tx.Commit()
}
