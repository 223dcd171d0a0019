package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tracehq/trace/internal/project"
	"github.com/tracehq/trace/internal/storage/sqlite"
	"github.com/tracehq/trace/internal/ui"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List registered projects",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withStore(func(ctx context.Context, store *sqlite.Store, info *project.Info) (bool, error) {
			projects, err := store.ListProjects(ctx)
			if err != nil {
				return false, err
			}

			if jsonOutput {
				printJSON(projects)
				return false, nil
			}
			if len(projects) == 0 {
				fmt.Println("No projects registered; run 'trc init' inside a repository")
				return false, nil
			}
			for _, p := range projects {
				marker := "  "
				if info != nil && p.Handle == info.Handle {
					marker = "* "
				}
				fmt.Printf("%s%-24s %s\n", marker, ui.HeaderStyle.Render(p.Name), ui.MutedStyle.Render(p.CurrentPath))
			}
			return false, nil
		})
	},
}

func init() {
	rootCmd.AddCommand(projectsCmd)
}
