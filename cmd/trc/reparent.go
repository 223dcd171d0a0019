package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tracehq/trace/internal/project"
	"github.com/tracehq/trace/internal/storage/sqlite"
)

var reparentNone bool

var reparentCmd = &cobra.Command{
	Use:   "reparent <id> [new-parent-id]",
	Short: "Move an issue under a different parent",
	Long: `Move an issue under a different parent, replacing any existing one.

With --none the issue is detached and becomes a root. Reparenting onto a
descendant is rejected; hierarchies stay acyclic.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		withStore(func(ctx context.Context, store *sqlite.Store, info *project.Info) (bool, error) {
			requireProject(info)

			parent := ""
			switch {
			case reparentNone && len(args) == 2:
				return false, fmt.Errorf("--none takes no parent argument")
			case !reparentNone && len(args) < 2:
				return false, fmt.Errorf("need a new parent id, or --none to detach")
			case len(args) == 2:
				parent = args[1]
			}

			if err := store.Reparent(ctx, args[0], parent); err != nil {
				return false, err
			}

			if !jsonOutput {
				if parent == "" {
					fmt.Printf("%s is now a root issue\n", args[0])
				} else {
					fmt.Printf("%s is now a child of %s\n", args[0], parent)
				}
			}
			return true, nil
		})
	},
}

func init() {
	reparentCmd.Flags().BoolVar(&reparentNone, "none", false, "Detach from the current parent")
	rootCmd.AddCommand(reparentCmd)
}
