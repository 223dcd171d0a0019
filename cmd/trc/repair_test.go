package main

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/tracehq/trace/internal/contamination"
	"github.com/tracehq/trace/internal/types"
)

func TestRepairExportsEveryAffectedLog(t *testing.T) {
	ctx := context.Background()
	store, srcLog, dstLog := newMoveFixture(t)

	// A gadget issue sitting under widget's handle, as a copied log causes.
	stray := &types.Issue{
		ID:      "gadget-abc123",
		Project: "github.com/acme/widget",
		Title:   "Filed in the wrong place",
	}
	if err := store.CreateIssue(ctx, stray, "widget"); err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}

	result, err := contamination.Repair(ctx, store, "", false)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if result.Repaired != 1 {
		t.Fatalf("Repaired = %d, want 1", result.Repaired)
	}
	if err := exportAffectedLogs(ctx, store, result.AffectedProjects); err != nil {
		t.Fatalf("exportAffectedLogs: %v", err)
	}

	// The issue lands in gadget's log without gadget's tree ever running a
	// command, and widget's log no longer carries it.
	data, err := os.ReadFile(dstLog)
	if err != nil {
		t.Fatalf("read gadget log: %v", err)
	}
	if !strings.Contains(string(data), "gadget-abc123") {
		t.Errorf("gadget log missing repaired issue:\n%s", data)
	}
	data, err = os.ReadFile(srcLog)
	if err != nil {
		t.Fatalf("read widget log: %v", err)
	}
	if strings.Contains(string(data), "gadget-abc123") {
		t.Errorf("widget log still carries repaired issue:\n%s", data)
	}
}

func TestExportAffectedLogsSkipsUnknownTrees(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newMoveFixture(t)

	// Handles without a resolvable working tree are skipped, not fatal.
	if err := exportAffectedLogs(ctx, store, []string{"github.com/acme/vanished"}); err != nil {
		t.Fatalf("exportAffectedLogs: %v", err)
	}
}
