package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tracehq/trace/internal/project"
	"github.com/tracehq/trace/internal/storage/sqlite"
)

var closeCmd = &cobra.Command{
	Use:   "close <id>...",
	Short: "Close one or more issues",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withStore(func(ctx context.Context, store *sqlite.Store, info *project.Info) (bool, error) {
			requireProject(info)

			closed := make([]string, 0, len(args))
			for _, id := range args {
				if err := store.CloseIssue(ctx, id); err != nil {
					return len(closed) > 0, err
				}
				closed = append(closed, id)
			}

			if jsonOutput {
				printJSON(map[string]any{"closed": closed})
			} else {
				for _, id := range closed {
					fmt.Printf("Closed %s\n", id)
				}
			}
			return true, nil
		})
	},
}

func init() {
	rootCmd.AddCommand(closeCmd)
}
