package main

import (
	"context"
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"

	"github.com/tracehq/trace/internal/project"
	"github.com/tracehq/trace/internal/storage/sqlite"
	"github.com/tracehq/trace/internal/types"
	"github.com/tracehq/trace/internal/ui"
)

var (
	listStatus      string
	listPriority    int
	listAllProjects bool
	listSince       string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List issues",
	Long: `List issues in the current project.

By default closed issues are hidden; ask for them with --status closed or
--status open,closed. --since accepts natural language ("yesterday",
"3 days ago", "last monday") as well as dates.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withStore(func(ctx context.Context, store *sqlite.Store, info *project.Info) (bool, error) {
			filter := types.IssueFilter{}
			if !listAllProjects {
				requireProject(info)
				filter.Project = info.Handle
			}

			statuses, err := types.ParseStatuses(listStatus)
			if err != nil {
				return false, err
			}
			if statuses == nil {
				statuses = []types.Status{types.StatusOpen, types.StatusInProgress, types.StatusBlocked}
			}
			filter.Statuses = statuses

			if cmd.Flags().Changed("priority") {
				filter.Priority = &listPriority
			}
			if listSince != "" {
				since, err := parseSince(listSince)
				if err != nil {
					return false, err
				}
				filter.UpdatedSince = &since
			}

			issues, err := store.ListIssues(ctx, filter)
			if err != nil {
				return false, err
			}

			if jsonOutput {
				printJSON(issues)
				return false, nil
			}
			if len(issues) == 0 {
				fmt.Println("No matching issues")
				return false, nil
			}
			for _, issue := range issues {
				fmt.Println(ui.IssueLine(issue))
			}
			return false, nil
		})
	},
}

// parseSince resolves a natural-language or RFC3339-ish point in time.
func parseSince(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	r, err := w.Parse(s, time.Now())
	if err != nil {
		return time.Time{}, err
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("cannot parse time expression: %q", s)
	}
	return r.Time, nil
}

func init() {
	listCmd.Flags().StringVarP(&listStatus, "status", "s", "", "Filter by status (comma-separated)")
	listCmd.Flags().IntVarP(&listPriority, "priority", "p", types.PriorityDefault, "Filter by exact priority")
	listCmd.Flags().BoolVar(&listAllProjects, "all-projects", false, "List issues across every registered project")
	listCmd.Flags().StringVar(&listSince, "since", "", "Only issues updated since this time")
	rootCmd.AddCommand(listCmd)
}
