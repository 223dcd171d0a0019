package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tracehq/trace/internal/project"
	"github.com/tracehq/trace/internal/storage/sqlite"
	"github.com/tracehq/trace/internal/types"
	"github.com/tracehq/trace/internal/ui"
)

var showFormat string

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show full details of an issue",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withStore(func(ctx context.Context, store *sqlite.Store, info *project.Info) (bool, error) {
			requireProject(info)

			issue, err := store.GetIssue(ctx, args[0])
			if err != nil {
				return false, err
			}

			switch {
			case jsonOutput || showFormat == "json":
				printJSON(issue)
			case showFormat == "yaml":
				enc := yaml.NewEncoder(os.Stdout)
				enc.SetIndent(2)
				if err := enc.Encode(issue); err != nil {
					return false, err
				}
				if err := enc.Close(); err != nil {
					return false, err
				}
			case showFormat == "":
				blocked, err := store.IsBlocked(ctx, issue.ID)
				if err != nil {
					return false, err
				}
				printIssueDetail(issue, blocked)
			default:
				return false, fmt.Errorf("unknown format: %s", showFormat)
			}
			return false, nil
		})
	},
}

func printIssueDetail(issue *types.Issue, blocked bool) {
	fmt.Printf("%s %s\n", ui.HeaderStyle.Render(issue.ID), issue.Title)
	fmt.Printf("Status:   %s", ui.StatusLabel(issue.Status))
	if blocked {
		fmt.Printf(" (%s)", ui.BlockedStyle.Render("blocked"))
	}
	fmt.Println()
	fmt.Printf("Priority: %s\n", ui.PriorityLabel(issue.Priority))
	fmt.Printf("Created:  %s\n", issue.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Printf("Updated:  %s\n", issue.UpdatedAt.Local().Format("2006-01-02 15:04"))
	if issue.ClosedAt != nil {
		fmt.Printf("Closed:   %s\n", issue.ClosedAt.Local().Format("2006-01-02 15:04"))
	}
	if issue.Description != "" {
		fmt.Printf("\n%s\n", issue.Description)
	}
	if len(issue.Dependencies) > 0 {
		fmt.Printf("\n%s\n", ui.HeaderStyle.Render("Dependencies"))
		for _, dep := range issue.Dependencies {
			fmt.Printf("  %-8s %s\n", dep.Type, dep.DependsOnID)
		}
	}
	if len(issue.Comments) > 0 {
		fmt.Printf("\n%s\n", ui.HeaderStyle.Render("Comments"))
		for _, c := range issue.Comments {
			fmt.Printf("  [%s] %s\n", c.CreatedAt.Local().Format("2006-01-02 15:04"), c.Content)
		}
	}
}

func init() {
	showCmd.Flags().StringVar(&showFormat, "format", "", "Output format (json or yaml)")
	rootCmd.AddCommand(showCmd)
}
