package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/tracehq/trace/internal/lockfile"
	"github.com/tracehq/trace/internal/project"
	"github.com/tracehq/trace/internal/storage/sqlite"
	"github.com/tracehq/trace/internal/syncer"
)

// FatalError writes an error to stderr and exits non-zero.
func FatalError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// FatalErrorWithHint writes an error with an actionable suggestion and exits.
func FatalErrorWithHint(message, hint string) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
	fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	os.Exit(1)
}

// Warn writes a highlighted warning to stderr and returns.
func Warn(format string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		FatalError("encoding output: %v", err)
	}
}

// withStore serializes a command through the user lock, opens the cache, and
// syncs the repository containing the working directory before running fn.
// info is nil when the working directory is not inside a git repository.
//
// When fn reports a mutation, the project log is re-exported and the sync
// clock advanced past the export so the next command does not re-import our
// own writes.
func withStore(fn func(ctx context.Context, store *sqlite.Store, info *project.Info) (mutated bool, err error)) {
	ctx := rootCtx

	lock, err := lockfile.Acquire(cfg.LockPath(), cfg.LockTimeout)
	if err != nil {
		if errors.Is(err, lockfile.ErrLockTimeout) {
			FatalErrorWithHint(
				fmt.Sprintf("another trc process is holding %s", cfg.LockPath()),
				"wait for it to finish, or raise lock_timeout in ~/.trace/config.yaml")
		}
		FatalError("acquiring lock: %v", err)
	}
	defer lock.Release()

	store, err := sqlite.New(ctx, cfg.DBPath())
	if err != nil {
		FatalError("opening cache: %v", err)
	}
	defer store.Close()

	checkVersion(ctx, store)

	cwd, err := os.Getwd()
	if err != nil {
		FatalError("%v", err)
	}
	info, err := syncer.Sync(ctx, store, cwd)
	if err != nil {
		FatalError("sync: %v", err)
	}

	mutated, err := fn(ctx, store, info)
	if err != nil {
		FatalError("%v", err)
	}

	if mutated && info != nil && project.IsInitialized(info.Path) {
		if err := exportProject(ctx, store, info.Handle, info.LogPath()); err != nil {
			FatalError("export: %v", err)
		}
	}
}

// exportProject writes the log and advances the sync clock to its new mtime.
func exportProject(ctx context.Context, store *sqlite.Store, handle, logPath string) error {
	if err := syncer.Export(ctx, store, handle, logPath); err != nil {
		return err
	}
	fi, err := os.Stat(logPath)
	if err != nil {
		return err
	}
	return store.SetLastSyncTime(ctx, handle, fi.ModTime())
}

// requireProject aborts with a hint when the working directory is not an
// initialized trc project.
func requireProject(info *project.Info) {
	if info == nil {
		FatalErrorWithHint("not inside a git repository", "trc tracks issues per git repository")
	}
	if !project.IsInitialized(info.Path) {
		FatalErrorWithHint(
			fmt.Sprintf("project %s is not initialized", info.Name),
			"run 'trc init' in the repository first")
	}
}
