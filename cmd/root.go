package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var verbose bool

// rootCmd defines the base command for the gitsync CLI.
// All subcommands (init, hash-object, cat-file) register under this root.
// Uses cobra for command parsing, flag handling, and help generation.
var rootCmd = &cobra.Command{
	Use:   "gitsync",
	Short: "A content-addressable object store compatible with git",
	Long: `GitSync stores file contents as git loose objects: typed, SHA-1 identified
and zlib compressed under .git/objects. Objects it writes can be read by git and vice versa.`,
	PersistentPreRunE: setupLogging,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug details to stderr")
	rootCmd.SetFlagErrorFunc(flagError)
}

// setupLogging installs the default slog logger writing to the command's stderr.
func setupLogging(cmd *cobra.Command, _ []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return nil
}

// Execute runs the root command and returns the process exit code.
// Called from main.go to start CLI execution.
func Execute() int {
	cmd, err := rootCmd.ExecuteC()

	// A command without a run function only fails on a bad invocation
	if err != nil && !cmd.Runnable() {
		err = &usageError{err: err}
	}
	return ExitCode(err)
}
