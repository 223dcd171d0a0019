package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/tracehq/trace/internal/project"
	"github.com/tracehq/trace/internal/storage/sqlite"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an issue and its dependencies and comments",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withStore(func(ctx context.Context, store *sqlite.Store, info *project.Info) (bool, error) {
			requireProject(info)

			issue, err := store.GetIssue(ctx, args[0])
			if err != nil {
				return false, err
			}

			if !deleteForce {
				var confirmed bool
				prompt := huh.NewConfirm().
					Title(fmt.Sprintf("Delete %s: %s?", issue.ID, issue.Title)).
					Description("Dependencies and comments go with it.").
					Value(&confirmed)
				if err := prompt.Run(); err != nil {
					return false, err
				}
				if !confirmed {
					fmt.Println("Aborted")
					return false, nil
				}
			}

			if err := store.DeleteIssue(ctx, issue.ID); err != nil {
				return false, err
			}

			if jsonOutput {
				printJSON(map[string]string{"deleted": issue.ID})
			} else {
				fmt.Printf("Deleted %s\n", issue.ID)
			}
			return true, nil
		})
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation")
	rootCmd.AddCommand(deleteCmd)
}
