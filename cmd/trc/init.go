package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tracehq/trace/internal/debug"
	"github.com/tracehq/trace/internal/project"
	"github.com/tracehq/trace/internal/storage/sqlite"
	"github.com/tracehq/trace/internal/types"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize issue tracking for the current repository",
	Long: `Initialize issue tracking for the current repository.

Creates .trace/ with an empty issues.jsonl log and a stable project UUID,
and registers the project in the local cache. Commit the .trace directory;
the log is how issue state reaches the rest of the team.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withStore(func(ctx context.Context, store *sqlite.Store, info *project.Info) (bool, error) {
			if info == nil {
				FatalErrorWithHint("not inside a git repository", "run trc init from within a git repository")
			}
			if project.IsInitialized(info.Path) {
				debug.PrintNormal("%s is already initialized\n", info.Name)
				return false, nil
			}

			if err := os.MkdirAll(info.StateDir(), 0o750); err != nil {
				return false, err
			}
			logPath := info.LogPath()
			if _, err := os.Stat(logPath); os.IsNotExist(err) {
				if err := os.WriteFile(logPath, nil, 0o644); err != nil {
					return false, err
				}
			}

			uuid := project.ReadUUID(info.StateDir())
			if uuid == "" {
				var err error
				uuid, err = project.GenerateUUID()
				if err != nil {
					return false, err
				}
				if err := project.WriteUUID(info.StateDir(), uuid); err != nil {
					return false, err
				}
			}

			if err := store.UpsertProject(ctx, &types.Project{
				Handle:      info.Handle,
				Name:        info.Name,
				CurrentPath: info.Path,
				UUID:        uuid,
			}); err != nil {
				return false, err
			}

			if jsonOutput {
				printJSON(map[string]string{
					"project": info.Name,
					"handle":  info.Handle,
					"log":     filepath.Join(project.StateDirName, project.LogFileName),
				})
			} else {
				fmt.Printf("Initialized %s (%s)\n", info.Name, info.Handle)
				fmt.Printf("Commit %s to share issues with your team\n",
					filepath.Join(project.StateDirName, project.LogFileName))
			}
			return false, nil
		})
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
