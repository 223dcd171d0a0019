package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tracehq/trace/internal/types"
)

func TestAddCommentDefaults(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	issue := mustCreate(t, store, "proj", "proj", "Commented")

	comment := &types.Comment{IssueID: issue.ID, Content: "first note"}
	if err := store.AddComment(ctx, comment); err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if comment.ID == 0 {
		t.Error("row id not assigned")
	}
	if comment.Source != types.DefaultCommentSource {
		t.Errorf("source = %q, want %q", comment.Source, types.DefaultCommentSource)
	}
	if comment.CreatedAt.IsZero() {
		t.Error("created_at not stamped")
	}
}

func TestAddCommentValidation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	issue := mustCreate(t, store, "proj", "proj", "Commented")

	if err := store.AddComment(ctx, &types.Comment{IssueID: issue.ID, Content: "   "}); err == nil {
		t.Error("blank comment accepted")
	}
	err := store.AddComment(ctx, &types.Comment{IssueID: "proj-zzzzzz", Content: "orphan"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("comment on missing issue: %v, want ErrNotFound", err)
	}
}

func TestGetCommentsOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	issue := mustCreate(t, store, "proj", "proj", "Commented")

	for _, content := range []string{"one", "two", "three"} {
		if err := store.AddComment(ctx, &types.Comment{
			IssueID: issue.ID, Content: content, Source: "agent",
		}); err != nil {
			t.Fatalf("AddComment(%q): %v", content, err)
		}
	}

	comments, err := store.GetComments(ctx, issue.ID)
	if err != nil {
		t.Fatalf("GetComments: %v", err)
	}
	var got []string
	for _, c := range comments {
		got = append(got, c.Content)
	}
	if diff := cmp.Diff([]string{"one", "two", "three"}, got); diff != "" {
		t.Errorf("comment order (-want +got):\n%s", diff)
	}
}

func TestReplaceComments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	issue := mustCreate(t, store, "proj", "proj", "Commented")

	if err := store.AddComment(ctx, &types.Comment{IssueID: issue.ID, Content: "stale"}); err != nil {
		t.Fatalf("AddComment: %v", err)
	}

	stamp := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	err := store.ReplaceComments(ctx, issue.ID, []*types.Comment{
		{Content: "fresh one", Source: "agent", CreatedAt: stamp},
		{Content: "fresh two", CreatedAt: stamp},
	})
	if err != nil {
		t.Fatalf("ReplaceComments: %v", err)
	}

	comments, err := store.GetComments(ctx, issue.ID)
	if err != nil {
		t.Fatalf("GetComments: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("comments = %d, want 2", len(comments))
	}
	if comments[0].Content != "fresh one" || comments[0].Source != "agent" {
		t.Errorf("first comment = %+v", comments[0])
	}
	if comments[1].Source != types.DefaultCommentSource {
		t.Errorf("default source not applied: %+v", comments[1])
	}
	if !comments[0].CreatedAt.Equal(stamp) {
		t.Errorf("created_at = %v, want %v", comments[0].CreatedAt, stamp)
	}
}
