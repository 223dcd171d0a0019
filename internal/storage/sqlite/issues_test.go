package sqlite

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/tracehq/trace/internal/types"
)

func TestCreateIssueGeneratesID(t *testing.T) {
	store := newTestStore(t)
	issue := mustCreate(t, store, "github.com/acme/widget", "widget factory", "Add login")

	want := regexp.MustCompile(`^widget-factory-[0-9a-z]{6}$`)
	if !want.MatchString(issue.ID) {
		t.Errorf("generated id %q does not match %v", issue.ID, want)
	}
	if issue.CreatedAt.IsZero() || issue.UpdatedAt.IsZero() {
		t.Error("timestamps not stamped on create")
	}
}

func TestCreateIssueRespectsProvidedID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	issue := &types.Issue{
		ID:      "widget-aaaaaa",
		Project: "github.com/acme/widget",
		Title:   "Imported",
	}
	if err := store.CreateIssue(ctx, issue, "widget"); err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}
	if issue.ID != "widget-aaaaaa" {
		t.Errorf("id rewritten to %q", issue.ID)
	}

	dup := &types.Issue{ID: "widget-aaaaaa", Project: "github.com/acme/widget", Title: "Dup"}
	err := store.CreateIssue(ctx, dup, "widget")
	if !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate create error = %v, want ErrConflict", err)
	}
}

func TestCreateIssueValidation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		issue *types.Issue
	}{
		{"no project", &types.Issue{Title: "x"}},
		{"no title", &types.Issue{Project: "p"}},
		{"bad status", &types.Issue{Project: "p", Title: "x", Status: "done"}},
		{"bad priority", &types.Issue{Project: "p", Title: "x", Priority: 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.CreateIssue(ctx, tt.issue, "p"); err == nil {
				t.Error("CreateIssue accepted invalid issue")
			}
		})
	}
}

func TestGetIssueRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	closed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issue := &types.Issue{
		Project:     "github.com/acme/widget",
		Title:       "Round trip",
		Description: "with every field set",
		Status:      types.StatusClosed,
		Priority:    1,
		CreatedAt:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC),
		ClosedAt:    &closed,
	}
	if err := store.CreateIssue(ctx, issue, "widget"); err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}

	got, err := store.GetIssue(ctx, issue.ID)
	if err != nil {
		t.Fatalf("GetIssue: %v", err)
	}
	if diff := cmp.Diff(issue, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("issue mismatch (-want +got):\n%s", diff)
	}
}

func TestGetIssueNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetIssue(context.Background(), "widget-zzzzzz")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestUpdateIssueClosedAtTracksStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	issue := mustCreate(t, store, "github.com/acme/widget", "widget", "Lifecycle")

	issue.Status = types.StatusClosed
	if err := store.UpdateIssue(ctx, issue); err != nil {
		t.Fatalf("close via update: %v", err)
	}
	got, _ := store.GetIssue(ctx, issue.ID)
	if got.ClosedAt == nil {
		t.Fatal("closed_at not set on close")
	}

	got.Status = types.StatusOpen
	if err := store.UpdateIssue(ctx, got); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	reopened, _ := store.GetIssue(ctx, issue.ID)
	if reopened.ClosedAt != nil {
		t.Error("closed_at not cleared on reopen")
	}
}

func TestCloseIssue(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	issue := mustCreate(t, store, "github.com/acme/widget", "widget", "To close")

	if err := store.CloseIssue(ctx, issue.ID); err != nil {
		t.Fatalf("CloseIssue: %v", err)
	}
	got, _ := store.GetIssue(ctx, issue.ID)
	if got.Status != types.StatusClosed || got.ClosedAt == nil {
		t.Errorf("after close: status=%s closedAt=%v", got.Status, got.ClosedAt)
	}

	if err := store.CloseIssue(ctx, "widget-zzzzzz"); !errors.Is(err, ErrNotFound) {
		t.Errorf("closing missing issue: %v, want ErrNotFound", err)
	}
}

func TestDeleteIssueCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	parent := mustCreate(t, store, "github.com/acme/widget", "widget", "Parent")
	child := mustCreate(t, store, "github.com/acme/widget", "widget", "Child")

	if err := store.Reparent(ctx, child.ID, parent.ID); err != nil {
		t.Fatalf("Reparent: %v", err)
	}
	if err := store.AddComment(ctx, &types.Comment{IssueID: child.ID, Content: "note"}); err != nil {
		t.Fatalf("AddComment: %v", err)
	}

	if err := store.DeleteIssue(ctx, child.ID); err != nil {
		t.Fatalf("DeleteIssue: %v", err)
	}

	deps, err := store.GetDependencies(ctx, child.ID)
	if err != nil {
		t.Fatalf("GetDependencies: %v", err)
	}
	if len(deps) != 0 {
		t.Errorf("dependencies survived delete: %v", deps)
	}
	comments, err := store.GetComments(ctx, child.ID)
	if err != nil {
		t.Fatalf("GetComments: %v", err)
	}
	if len(comments) != 0 {
		t.Errorf("comments survived delete: %v", comments)
	}
}

func TestListIssuesFiltersAndOrder(t *testing.T) {
	store := newTestStore(t)
	store.SetClock(stepClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	ctx := context.Background()

	a := &types.Issue{Project: "proj-a", Title: "Urgent", Priority: 0}
	b := &types.Issue{Project: "proj-a", Title: "Backlog", Priority: 4}
	c := &types.Issue{Project: "proj-a", Title: "Normal older", Priority: 2}
	d := &types.Issue{Project: "proj-a", Title: "Normal newer", Priority: 2}
	e := &types.Issue{Project: "proj-b", Title: "Other project", Priority: 2}
	for _, iss := range []*types.Issue{a, b, c, d, e} {
		if err := store.CreateIssue(ctx, iss, "proj"); err != nil {
			t.Fatalf("CreateIssue(%q): %v", iss.Title, err)
		}
	}
	if err := store.CloseIssue(ctx, b.ID); err != nil {
		t.Fatalf("CloseIssue: %v", err)
	}

	two := 2
	since := d.CreatedAt
	tests := []struct {
		name   string
		filter types.IssueFilter
		want   []string
	}{
		{
			"project scope, ordered",
			types.IssueFilter{Project: "proj-a"},
			[]string{"Urgent", "Normal newer", "Normal older", "Backlog"},
		},
		{
			"status filter",
			types.IssueFilter{Project: "proj-a", Statuses: []types.Status{types.StatusClosed}},
			[]string{"Backlog"},
		},
		{
			"priority filter",
			types.IssueFilter{Project: "proj-a", Priority: &two},
			[]string{"Normal newer", "Normal older"},
		},
		{
			"updated since",
			types.IssueFilter{Project: "proj-a", UpdatedSince: &since},
			[]string{"Normal newer", "Backlog"},
		},
		{
			"all projects",
			types.IssueFilter{Statuses: []types.Status{types.StatusOpen}},
			[]string{"Urgent", "Other project", "Normal newer", "Normal older"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues, err := store.ListIssues(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListIssues: %v", err)
			}
			var titles []string
			for _, iss := range issues {
				titles = append(titles, iss.Title)
			}
			if diff := cmp.Diff(tt.want, titles); diff != "" {
				t.Errorf("titles mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMoveIssueRewritesReferences(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	issue := mustCreate(t, store, "github.com/acme/widget", "widget", "Moving")
	other := mustCreate(t, store, "github.com/acme/widget", "widget", "Depends on moving")

	if err := store.AddDependency(ctx, &types.Dependency{
		IssueID: other.ID, DependsOnID: issue.ID, Type: types.DepBlocks,
	}); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}
	if err := store.AddComment(ctx, &types.Comment{IssueID: issue.ID, Content: "keep me"}); err != nil {
		t.Fatalf("AddComment: %v", err)
	}

	newID := "gadget-bbbbbb"
	if err := store.MoveIssue(ctx, issue.ID, newID, "github.com/acme/gadget"); err != nil {
		t.Fatalf("MoveIssue: %v", err)
	}

	if _, err := store.GetIssue(ctx, issue.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("old id still resolves: %v", err)
	}
	moved, err := store.GetIssue(ctx, newID)
	if err != nil {
		t.Fatalf("GetIssue(new): %v", err)
	}
	if moved.Project != "github.com/acme/gadget" {
		t.Errorf("project = %q", moved.Project)
	}
	if len(moved.Comments) != 1 {
		t.Errorf("comments after move = %d, want 1", len(moved.Comments))
	}

	deps, err := store.GetDependencies(ctx, other.ID)
	if err != nil {
		t.Fatalf("GetDependencies: %v", err)
	}
	if len(deps) != 1 || deps[0].DependsOnID != newID {
		t.Errorf("inbound edge not rewritten: %+v", deps)
	}
}

func TestMoveIssueConflicts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	a := mustCreate(t, store, "proj", "proj", "A")
	b := mustCreate(t, store, "proj", "proj", "B")

	if err := store.MoveIssue(ctx, a.ID, b.ID, "proj"); !errors.Is(err, ErrConflict) {
		t.Errorf("move onto existing id: %v, want ErrConflict", err)
	}
	if err := store.MoveIssue(ctx, "proj-zzzzzz", "proj-yyyyyy", "proj"); !errors.Is(err, ErrNotFound) {
		t.Errorf("move of missing issue: %v, want ErrNotFound", err)
	}
}

func TestRewriteProjectReferences(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	a := mustCreate(t, store, "/old/path", "widget", "One")
	mustCreate(t, store, "/old/path", "widget", "Two")
	mustCreate(t, store, "github.com/other/repo", "repo", "Elsewhere")

	n, err := store.RewriteProjectReferences(ctx, "/old/path", "github.com/acme/widget")
	if err != nil {
		t.Fatalf("RewriteProjectReferences: %v", err)
	}
	if n != 2 {
		t.Errorf("moved %d issues, want 2", n)
	}

	got, _ := store.GetIssue(ctx, a.ID)
	if got.Project != "github.com/acme/widget" {
		t.Errorf("project = %q", got.Project)
	}
	if got.ID != a.ID {
		t.Errorf("issue id changed during handle rewrite: %q", got.ID)
	}

	handles, err := store.DistinctHandles(ctx)
	if err != nil {
		t.Fatalf("DistinctHandles: %v", err)
	}
	want := []string{"github.com/acme/widget", "github.com/other/repo"}
	if diff := cmp.Diff(want, handles); diff != "" {
		t.Errorf("handles mismatch (-want +got):\n%s", diff)
	}
}
