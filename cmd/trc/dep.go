package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tracehq/trace/internal/project"
	"github.com/tracehq/trace/internal/storage/sqlite"
	"github.com/tracehq/trace/internal/types"
)

var depType string

var depCmd = &cobra.Command{
	Use:   "dep",
	Short: "Manage dependencies between issues",
}

var depAddCmd = &cobra.Command{
	Use:   "add <id> <depends-on-id>",
	Short: "Add a dependency edge",
	Long: `Add a dependency edge from one issue to another.

Edge types: blocks (the target must close before the issue is ready),
parent (hierarchy; an issue has at most one parent), related (informational).`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		withStore(func(ctx context.Context, store *sqlite.Store, info *project.Info) (bool, error) {
			requireProject(info)

			dt := types.DependencyType(depType)
			if !dt.IsValid() {
				return false, fmt.Errorf("invalid dependency type: %s", depType)
			}
			dep := &types.Dependency{IssueID: args[0], DependsOnID: args[1], Type: dt}
			if err := store.AddDependency(ctx, dep); err != nil {
				return false, err
			}
			if !jsonOutput {
				fmt.Printf("%s %s %s\n", args[0], dt, args[1])
			}
			return true, nil
		})
	},
}

var depRmCmd = &cobra.Command{
	Use:   "rm <id> <depends-on-id>",
	Short: "Remove a dependency edge",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		withStore(func(ctx context.Context, store *sqlite.Store, info *project.Info) (bool, error) {
			requireProject(info)

			if err := store.RemoveDependency(ctx, args[0], args[1]); err != nil {
				return false, err
			}
			if !jsonOutput {
				fmt.Printf("Removed %s -> %s\n", args[0], args[1])
			}
			return true, nil
		})
	},
}

func init() {
	depAddCmd.Flags().StringVarP(&depType, "type", "t", string(types.DepBlocks), "Edge type (blocks, parent, related)")
	depCmd.AddCommand(depAddCmd)
	depCmd.AddCommand(depRmCmd)
	rootCmd.AddCommand(depCmd)
}
