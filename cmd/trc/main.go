// Command trc is a git-native, local-first issue tracker. Issue state lives
// in a per-project JSONL log committed alongside the code; a per-user SQLite
// cache makes queries fast and is rebuilt from the log whenever git brings
// changes in.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tracehq/trace/internal/config"
	"github.com/tracehq/trace/internal/debug"
)

// Version is set at build time via -ldflags.
var Version = "0.4.0-dev"

var (
	jsonOutput bool
	verbose    bool
	quiet      bool

	cfg     *config.Config
	rootCtx = context.Background()
)

var rootCmd = &cobra.Command{
	Use:   "trc",
	Short: "Git-native issue tracking",
	Long: `trc tracks work items in a JSONL log committed with your code.

State replicates through git: trc writes .trace/issues.jsonl, you commit it,
and every clone rebuilds its local cache from the log. There is no server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if verbose || cfg.Verbose {
			debug.SetVerbose(true)
		}
		if quiet {
			debug.SetQuiet(true)
		}
		debug.SetLogFile(cfg.DebugLogPath())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
