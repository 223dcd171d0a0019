package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/tracehq/trace/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// stepClock hands out strictly increasing timestamps so ordering assertions
// are deterministic.
func stepClock(start time.Time) func() time.Time {
	cur := start
	return func() time.Time {
		cur = cur.Add(time.Second)
		return cur
	}
}

func mustCreate(t *testing.T, s *Store, project, projectName, title string) *types.Issue {
	t.Helper()
	issue := &types.Issue{
		Project:  project,
		Title:    title,
		Priority: types.PriorityDefault,
	}
	if err := s.CreateIssue(context.Background(), issue, projectName); err != nil {
		t.Fatalf("CreateIssue(%q): %v", title, err)
	}
	return issue
}

func TestNewCreatesSchema(t *testing.T) {
	store := newTestStore(t)

	version, err := store.GetMetadata(context.Background(), schemaVersionKey)
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if version != "4" {
		t.Errorf("schema version = %q, want %q", version, "4")
	}
}

func TestNewCreatesParentDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deeper", "trace.db")

	store, err := New(context.Background(), path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer store.Close()

	if store.Path() == "" {
		t.Error("Path() returned empty string")
	}
}

func TestFileStorePersists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trace.db")
	ctx := context.Background()

	store, err := New(ctx, path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	issue := mustCreate(t, store, "github.com/acme/widget", "widget", "Persisted issue")
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := New(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetIssue(ctx, issue.ID)
	if err != nil {
		t.Fatalf("GetIssue after reopen: %v", err)
	}
	if got.Title != "Persisted issue" {
		t.Errorf("title = %q, want %q", got.Title, "Persisted issue")
	}
}
