package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tracehq/trace/internal/project"
	"github.com/tracehq/trace/internal/storage/sqlite"
	"github.com/tracehq/trace/internal/types"
	"github.com/tracehq/trace/internal/ui"
)

var treeAll bool

var treeCmd = &cobra.Command{
	Use:   "tree [id]",
	Short: "Show the parent/child hierarchy of the project's issues",
	Long: `Show the parent/child hierarchy of the project's issues.

With an id, only that issue's subtree is printed. Closed issues are hidden
unless --all is given.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withStore(func(ctx context.Context, store *sqlite.Store, info *project.Info) (bool, error) {
			requireProject(info)

			filter := types.IssueFilter{Project: info.Handle}
			if !treeAll {
				filter.Statuses = []types.Status{types.StatusOpen, types.StatusInProgress, types.StatusBlocked}
			}
			issues, err := store.ListIssues(ctx, filter)
			if err != nil {
				return false, err
			}

			byID := make(map[string]*types.Issue, len(issues))
			for _, issue := range issues {
				byID[issue.ID] = issue
			}

			children := map[string][]string{}
			var roots []string
			for _, issue := range issues {
				parent, err := store.Parent(ctx, issue.ID)
				if err != nil {
					return false, err
				}
				if parent == "" || byID[parent] == nil {
					roots = append(roots, issue.ID)
					continue
				}
				children[parent] = append(children[parent], issue.ID)
			}
			if len(args) == 1 {
				if byID[args[0]] == nil {
					return false, fmt.Errorf("issue not found: %s", args[0])
				}
				roots = []string{args[0]}
			}
			sort.Strings(roots)
			for _, ids := range children {
				sort.Strings(ids)
			}

			visited := map[string]bool{}
			for _, id := range roots {
				if visited[id] {
					continue
				}
				visited[id] = true
				fmt.Println(ui.IssueLine(byID[id]))
				printChildren(byID, children, visited, id, "")
			}
			return false, nil
		})
	},
}

// printChildren renders the descendants of id. The visited set guards
// against cycles already present in the cache.
func printChildren(byID map[string]*types.Issue, children map[string][]string, visited map[string]bool, id, prefix string) {
	kids := children[id]
	for i, kid := range kids {
		if visited[kid] {
			continue
		}
		visited[kid] = true
		connector, childPrefix := ui.TreeBranch, prefix+ui.TreePipe
		if i == len(kids)-1 {
			connector, childPrefix = ui.TreeLast, prefix+ui.TreeSpace
		}
		fmt.Printf("%s%s%s\n", prefix, connector, ui.IssueLine(byID[kid]))
		printChildren(byID, children, visited, kid, childPrefix)
	}
}

func init() {
	treeCmd.Flags().BoolVarP(&treeAll, "all", "a", false, "Include closed issues")
	rootCmd.AddCommand(treeCmd)
}
