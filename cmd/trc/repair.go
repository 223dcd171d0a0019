package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tracehq/trace/internal/contamination"
	"github.com/tracehq/trace/internal/debug"
	"github.com/tracehq/trace/internal/project"
	"github.com/tracehq/trace/internal/storage/sqlite"
	"github.com/tracehq/trace/internal/syncer"
)

var (
	repairProject string
	repairDryRun  bool
)

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Reassign issues filed under the wrong project",
	Long: `Reassign issues filed under the wrong project.

An issue is contaminated when its id prefix names a different project than
the one it is stored under, which happens when a log is copied between
repositories. Repair moves each such issue to the project its id names and
rewrites every affected project's log; ids never change. Issues whose
prefix matches no registered project are reported as orphaned and left
alone.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withStore(func(ctx context.Context, store *sqlite.Store, info *project.Info) (bool, error) {
			scope := ""
			if repairProject != "" {
				p, err := store.ResolveProject(ctx, repairProject)
				if err != nil {
					return false, fmt.Errorf("resolving project %q: %w", repairProject, err)
				}
				scope = p.Handle
			}

			result, err := contamination.Repair(ctx, store, scope, repairDryRun)
			if err != nil {
				return false, err
			}
			if !repairDryRun && result.Repaired > 0 {
				if err := exportAffectedLogs(ctx, store, result.AffectedProjects); err != nil {
					return false, err
				}
			}

			if jsonOutput {
				printJSON(result)
			} else {
				verb := "repaired"
				if repairDryRun {
					verb = "would repair"
				}
				fmt.Printf("Examined %d issues: %d contaminated, %s %d, %d orphaned\n",
					result.Examined, result.Contaminated, verb, result.Repaired, result.Orphaned)
				if len(result.AffectedProjects) > 0 {
					fmt.Printf("Affected projects: %s\n", strings.Join(result.AffectedProjects, ", "))
				}
			}
			// exportAffectedLogs already covered every touched project,
			// including the current one when it was affected.
			return false, nil
		})
	},
}

// exportAffectedLogs rewrites the log of every project a repair pass
// touched, so reassigned issues land in their correct log immediately
// instead of waiting for those projects to mutate.
func exportAffectedLogs(ctx context.Context, store *sqlite.Store, handles []string) error {
	for _, handle := range handles {
		path, err := syncer.ProjectPath(ctx, store, handle)
		if err != nil {
			debug.Logf("repair: no working tree for %s: %v", handle, err)
			continue
		}
		if !project.IsInitialized(path) {
			continue
		}
		logPath := filepath.Join(path, project.StateDirName, project.LogFileName)
		if err := exportProject(ctx, store, handle, logPath); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	repairCmd.Flags().StringVar(&repairProject, "project", "", "Limit the scan to one project")
	repairCmd.Flags().BoolVar(&repairDryRun, "dry-run", false, "Report without modifying anything")
	rootCmd.AddCommand(repairCmd)
}
