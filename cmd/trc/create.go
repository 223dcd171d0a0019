package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tracehq/trace/internal/config"
	"github.com/tracehq/trace/internal/project"
	"github.com/tracehq/trace/internal/storage/sqlite"
	"github.com/tracehq/trace/internal/types"
)

var (
	createDescription string
	createPriority    int
	createStatus      string
	createParent      string
)

var createCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new issue",
	Long: `Create a new issue in the current project.

The issue id is derived from the title and project name, so independent
clones creating the same issue converge on the same id.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withStore(func(ctx context.Context, store *sqlite.Store, info *project.Info) (bool, error) {
			requireProject(info)

			priority := createPriority
			if !cmd.Flags().Changed("priority") {
				priority = cfg.DefaultPriority
				pc, err := config.LoadProject(info.StateDir())
				if err != nil {
					return false, err
				}
				if pc.DefaultPriority != nil {
					priority = *pc.DefaultPriority
				}
			}

			status := types.Status(createStatus)
			if !status.IsValid() {
				return false, fmt.Errorf("invalid status: %s", createStatus)
			}

			issue := &types.Issue{
				Project:     info.Handle,
				Title:       args[0],
				Description: createDescription,
				Status:      status,
				Priority:    priority,
			}
			if err := store.CreateIssue(ctx, issue, info.Name); err != nil {
				return false, err
			}

			if createParent != "" {
				if err := store.Reparent(ctx, issue.ID, createParent); err != nil {
					return false, err
				}
			}

			if jsonOutput {
				printJSON(issue)
			} else {
				fmt.Printf("Created %s: %s\n", issue.ID, issue.Title)
			}
			return true, nil
		})
	},
}

func init() {
	createCmd.Flags().StringVarP(&createDescription, "description", "d", "", "Issue description")
	createCmd.Flags().IntVarP(&createPriority, "priority", "p", types.PriorityDefault, "Priority (0=critical..4=backlog)")
	createCmd.Flags().StringVarP(&createStatus, "status", "s", string(types.StatusOpen), "Initial status")
	createCmd.Flags().StringVar(&createParent, "parent", "", "Parent issue id")
	rootCmd.AddCommand(createCmd)
}
