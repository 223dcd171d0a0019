package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tracehq/trace/internal/project"
	"github.com/tracehq/trace/internal/storage/sqlite"
	"github.com/tracehq/trace/internal/types"
)

var (
	updateTitle       string
	updateDescription string
	updatePriority    int
	updateStatus      string
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update fields of an existing issue",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withStore(func(ctx context.Context, store *sqlite.Store, info *project.Info) (bool, error) {
			requireProject(info)

			issue, err := store.GetIssue(ctx, args[0])
			if err != nil {
				return false, err
			}

			if cmd.Flags().Changed("title") {
				issue.Title = updateTitle
			}
			if cmd.Flags().Changed("description") {
				issue.Description = updateDescription
			}
			if cmd.Flags().Changed("priority") {
				issue.Priority = updatePriority
			}
			if cmd.Flags().Changed("status") {
				status := types.Status(updateStatus)
				if !status.IsValid() {
					return false, fmt.Errorf("invalid status: %s", updateStatus)
				}
				issue.Status = status
			}

			if err := store.UpdateIssue(ctx, issue); err != nil {
				return false, err
			}

			if jsonOutput {
				printJSON(issue)
			} else {
				fmt.Printf("Updated %s\n", issue.ID)
			}
			return true, nil
		})
	},
}

func init() {
	updateCmd.Flags().StringVar(&updateTitle, "title", "", "New title")
	updateCmd.Flags().StringVarP(&updateDescription, "description", "d", "", "New description")
	updateCmd.Flags().IntVarP(&updatePriority, "priority", "p", types.PriorityDefault, "New priority")
	updateCmd.Flags().StringVarP(&updateStatus, "status", "s", "", "New status")
	rootCmd.AddCommand(updateCmd)
}
