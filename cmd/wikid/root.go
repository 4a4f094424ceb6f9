package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/nao1215/wikid/internal/config"
	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitOK = 0
	// exitError is used for usage, configuration and I/O errors.
	exitError = 1
	// exitNoPath is used when a search ran but did not reach the destination.
	exitNoPath = 2
)

// NewRootCmd creates the root command for wikid.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wikid",
		Short: "Relevance-guided path discovery between Wikipedia articles",
		Long: `wikid finds a chain of links leading from one Wikipedia article to another.

Instead of a blind breadth-first crawl, every link on a fetched page is
scored for its similarity to the destination, and the most promising
unexplored link in the whole graph is followed next. The final path is
the strongest chain of links from start to destination.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs to stderr as JSON")
	cmd.PersistentFlags().String("db-dir", config.XDGDataDir(), "Directory of the search history database")

	// Add subcommands
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewBatchCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewScoreCmd())
	cmd.AddCommand(NewFiltersCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// exitCode maps a command error to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var noPath *noPathError
	if errors.As(err, &noPath) {
		return exitNoPath
	}
	return exitError
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}
