package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"

	"github.com/tracehq/trace/internal/debug"
	"github.com/tracehq/trace/internal/storage/sqlite"
)

const versionKey = "trc_version"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the trc version",
	Run: func(cmd *cobra.Command, args []string) {
		if jsonOutput {
			printJSON(map[string]string{"version": Version})
			return
		}
		fmt.Println("trc", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// checkVersion records the running version in the cache and announces
// upgrades. A downgrade gets a warning: an older binary may not understand
// state written by a newer one.
func checkVersion(ctx context.Context, store *sqlite.Store) {
	previous, err := store.GetMetadata(ctx, versionKey)
	if err != nil {
		debug.Logf("version check: %v", err)
		return
	}
	if previous == Version {
		return
	}

	switch {
	case previous == "":
		// First run.
	case semver.Compare("v"+Version, "v"+previous) > 0:
		debug.PrintNormal("trc upgraded %s -> %s\n", previous, Version)
	case semver.Compare("v"+Version, "v"+previous) < 0:
		Warn("running trc %s against state last touched by %s", Version, previous)
	}

	if err := store.SetMetadata(ctx, versionKey, Version); err != nil {
		debug.Logf("version check: %v", err)
	}
}
