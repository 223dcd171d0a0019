package main

import (
	"context"
	"testing"

	"github.com/tracehq/trace/internal/storage/sqlite"
)

func TestCheckVersionRecordsRunningVersion(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.New(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	checkVersion(ctx, store)

	got, err := store.GetMetadata(ctx, versionKey)
	if err != nil {
		t.Fatalf("get metadata: %v", err)
	}
	if got != Version {
		t.Errorf("recorded version = %q, want %q", got, Version)
	}

	// A second run with the same version is a no-op.
	checkVersion(ctx, store)
	got, err = store.GetMetadata(ctx, versionKey)
	if err != nil {
		t.Fatalf("get metadata: %v", err)
	}
	if got != Version {
		t.Errorf("recorded version after rerun = %q, want %q", got, Version)
	}
}

func TestCheckVersionUpgradeOverwrites(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.New(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	if err := store.SetMetadata(ctx, versionKey, "0.1.0"); err != nil {
		t.Fatalf("seed version: %v", err)
	}

	checkVersion(ctx, store)

	got, err := store.GetMetadata(ctx, versionKey)
	if err != nil {
		t.Fatalf("get metadata: %v", err)
	}
	if got != Version {
		t.Errorf("recorded version = %q, want %q", got, Version)
	}
}
