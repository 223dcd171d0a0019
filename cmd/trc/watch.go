package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tracehq/trace/internal/debug"
	"github.com/tracehq/trace/internal/lockfile"
	"github.com/tracehq/trace/internal/project"
	"github.com/tracehq/trace/internal/storage/sqlite"
	"github.com/tracehq/trace/internal/syncer"
	"github.com/tracehq/trace/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the project log and keep the cache in sync",
	Long: `Watch the project log and keep the cache in sync.

Re-imports whenever the log changes on disk, which is what a git pull,
merge, or checkout does. Runs until interrupted. The user lock is taken
only around each import, so other trc commands keep working.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cwd, err := os.Getwd()
		if err != nil {
			FatalError("%v", err)
		}
		info, err := project.Detect(cwd)
		if err != nil {
			FatalErrorWithHint("not inside a git repository", "trc tracks issues per git repository")
		}
		requireProject(info)

		w, err := watcher.New(info.LogPath())
		if err != nil {
			FatalError("watching %s: %v", info.LogPath(), err)
		}
		if err := w.Start(); err != nil {
			FatalError("watching %s: %v", info.LogPath(), err)
		}
		defer w.Stop()

		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Watching %s (ctrl-c to stop)\n", info.LogPath())
		resyncOnce(ctx, info)

		for {
			select {
			case <-ctx.Done():
				return
			case <-w.Changes():
				resyncOnce(ctx, info)
			case err, ok := <-w.Errors():
				if !ok {
					return
				}
				Warn("watch: %v", err)
			}
		}
	},
}

// resyncOnce runs one locked sync pass. Failures are reported and the watch
// continues; a transient lock timeout just means another trc command ran.
func resyncOnce(ctx context.Context, info *project.Info) {
	lock, err := lockfile.Acquire(cfg.LockPath(), cfg.LockTimeout)
	if err != nil {
		Warn("sync skipped: %v", err)
		return
	}
	defer lock.Release()

	store, err := sqlite.New(ctx, cfg.DBPath())
	if err != nil {
		Warn("sync skipped: %v", err)
		return
	}
	defer store.Close()

	if _, err := syncer.Sync(ctx, store, info.Path); err != nil {
		Warn("sync failed: %v", err)
		return
	}
	debug.PrintNormal("synced %s\n", info.Name)
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
