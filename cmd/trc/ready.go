package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tracehq/trace/internal/project"
	"github.com/tracehq/trace/internal/storage/sqlite"
	"github.com/tracehq/trace/internal/types"
	"github.com/tracehq/trace/internal/ui"
)

var readyCmd = &cobra.Command{
	Use:   "ready",
	Short: "List issues that are ready to work on",
	Long: `List issues that are ready to work on.

An issue is ready when it is open, nothing it depends on blocks it, and it
has no open children; parent issues become actionable only once their
children are done.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withStore(func(ctx context.Context, store *sqlite.Store, info *project.Info) (bool, error) {
			requireProject(info)

			issues, err := store.ListIssues(ctx, types.IssueFilter{
				Project:  info.Handle,
				Statuses: []types.Status{types.StatusOpen},
			})
			if err != nil {
				return false, err
			}

			var ready []*types.Issue
			for _, issue := range issues {
				blocked, err := store.IsBlocked(ctx, issue.ID)
				if err != nil {
					return false, err
				}
				if blocked {
					continue
				}
				open, err := store.HasOpenChildren(ctx, issue.ID)
				if err != nil {
					return false, err
				}
				if open {
					continue
				}
				ready = append(ready, issue)
			}

			if jsonOutput {
				printJSON(ready)
				return false, nil
			}
			if len(ready) == 0 {
				fmt.Println("Nothing is ready; check 'trc list' for blocked work")
				return false, nil
			}
			for _, issue := range ready {
				fmt.Println(ui.IssueLine(issue))
			}
			return false, nil
		})
	},
}

func init() {
	rootCmd.AddCommand(readyCmd)
}
