package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tracehq/trace/internal/debug"
	"github.com/tracehq/trace/internal/idgen"
	"github.com/tracehq/trace/internal/project"
	"github.com/tracehq/trace/internal/storage/sqlite"
	"github.com/tracehq/trace/internal/syncer"
)

var moveCmd = &cobra.Command{
	Use:   "move <id> <project>",
	Short: "Move an issue to another project",
	Long: `Move an issue to another registered project.

The target may be named by handle, name, or path. The issue gets a fresh id
under the target's prefix; dependency edges and comments follow it.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		withStore(func(ctx context.Context, store *sqlite.Store, info *project.Info) (bool, error) {
			requireProject(info)

			res, err := performMove(ctx, store, args[0], args[1])
			if err != nil {
				return false, err
			}

			if jsonOutput {
				printJSON(res)
			} else {
				fmt.Printf("Moved %s -> %s (%s)\n", res.OldID, res.NewID, res.Project)
			}
			// performMove already exported both affected logs by handle.
			return false, nil
		})
	},
}

type moveResult struct {
	OldID   string `json:"old_id"`
	NewID   string `json:"new_id"`
	Project string `json:"project"`
}

// performMove relocates an issue to another registered project. Both logs
// are imported first so the cache reflects anything git brought in that a
// subsequent export would otherwise drop, then both are rewritten. The
// source log is handled by the issue's own handle, not the working
// directory's project; a move can be run from anywhere.
func performMove(ctx context.Context, store *sqlite.Store, issueID, targetKey string) (*moveResult, error) {
	issue, err := store.GetIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	target, err := store.ResolveProject(ctx, targetKey)
	if err != nil {
		return nil, fmt.Errorf("resolving target project %q: %w", targetKey, err)
	}
	if target.Handle == issue.Project {
		return nil, fmt.Errorf("%s already belongs to %s", issue.ID, target.Name)
	}

	srcLog, err := importProjectLog(ctx, store, issue.Project)
	if err != nil {
		return nil, err
	}
	dstLog, err := importProjectLog(ctx, store, target.Handle)
	if err != nil {
		return nil, err
	}

	// The import may have changed this issue; reload before copying fields.
	issue, err = store.GetIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}

	existing, err := store.ExistingIDs(ctx, target.Name)
	if err != nil {
		return nil, err
	}
	newID, err := idgen.Generate(issue.Title, target.Name, existing)
	if err != nil {
		return nil, err
	}

	if err := store.MoveIssue(ctx, issue.ID, newID, target.Handle); err != nil {
		return nil, err
	}

	for handle, logPath := range map[string]string{issue.Project: srcLog, target.Handle: dstLog} {
		if logPath == "" {
			continue
		}
		if err := exportProject(ctx, store, handle, logPath); err != nil {
			return nil, err
		}
	}

	return &moveResult{OldID: issue.ID, NewID: newID, Project: target.Name}, nil
}

// importProjectLog re-reads a project's log into the cache and returns the
// log path. An unknown or uninitialized working tree yields "" and no error;
// the project then changes in the cache only, until its next sync.
func importProjectLog(ctx context.Context, store *sqlite.Store, handle string) (string, error) {
	path, err := syncer.ProjectPath(ctx, store, handle)
	if err != nil {
		debug.Logf("move: no working tree for %s: %v", handle, err)
		return "", nil
	}
	if !project.IsInitialized(path) {
		return "", nil
	}
	logPath := filepath.Join(path, project.StateDirName, project.LogFileName)
	if _, err := syncer.Import(ctx, store, logPath, handle); err != nil {
		return "", fmt.Errorf("re-reading %s before move: %w", logPath, err)
	}
	return logPath, nil
}

func init() {
	rootCmd.AddCommand(moveCmd)
}
