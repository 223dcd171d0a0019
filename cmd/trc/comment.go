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

var commentSource string

var commentCmd = &cobra.Command{
	Use:   "comment <id> <text>",
	Short: "Add a comment to an issue",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		withStore(func(ctx context.Context, store *sqlite.Store, info *project.Info) (bool, error) {
			requireProject(info)

			source := commentSource
			if source == "" {
				pc, err := config.LoadProject(info.StateDir())
				if err != nil {
					return false, err
				}
				source = pc.CommentSource
			}
			comment := &types.Comment{
				IssueID: args[0],
				Content: args[1],
				Source:  source,
			}
			if err := store.AddComment(ctx, comment); err != nil {
				return false, err
			}
			if jsonOutput {
				printJSON(comment)
			} else {
				fmt.Printf("Commented on %s\n", args[0])
			}
			return true, nil
		})
	},
}

var commentsCmd = &cobra.Command{
	Use:   "comments <id>",
	Short: "List the comments on an issue",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withStore(func(ctx context.Context, store *sqlite.Store, info *project.Info) (bool, error) {
			requireProject(info)

			comments, err := store.GetComments(ctx, args[0])
			if err != nil {
				return false, err
			}
			if jsonOutput {
				printJSON(comments)
				return false, nil
			}
			if len(comments) == 0 {
				fmt.Printf("No comments on %s\n", args[0])
				return false, nil
			}
			for _, c := range comments {
				fmt.Printf("[%s] %s: %s\n", c.CreatedAt.Local().Format("2006-01-02 15:04"), c.Source, c.Content)
			}
			return false, nil
		})
	},
}

func init() {
	commentCmd.Flags().StringVar(&commentSource, "source", "", "Origin tag for the comment (default from project config)")
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(commentsCmd)
}
