package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tracehq/trace/internal/project"
	"github.com/tracehq/trace/internal/storage/sqlite"
	"github.com/tracehq/trace/internal/syncer"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Force a full log import and re-export",
	Long: `Force a full log import and re-export for the current project.

Every command already syncs when the log is newer than the cache; this
re-reads the log unconditionally, which recovers from a cache that has
drifted or been rebuilt.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withStore(func(ctx context.Context, store *sqlite.Store, info *project.Info) (bool, error) {
			requireProject(info)

			stats, err := syncer.Import(ctx, store, info.LogPath(), info.Handle)
			if err != nil {
				return false, err
			}

			if jsonOutput {
				printJSON(stats)
			} else {
				fmt.Printf("Synced %s: %d created, %d updated, %d skipped, %d errors\n",
					info.Name, stats.Created, stats.Updated, stats.Skipped, stats.Errors)
			}
			return true, nil
		})
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
