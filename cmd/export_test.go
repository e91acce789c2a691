package cmd

import (
	"bytes"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// createTestRootCmd creates fresh root command with the given subcommand.
// Flags of the shared subcommand are reset so tests do not leak state.
func createTestRootCmd(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		flag.Value.Set(flag.DefValue)
		flag.Changed = false
	})
	cmd.SilenceUsage = true

	testRootCmd := &cobra.Command{Use: "gitsync"}
	testRootCmd.SetFlagErrorFunc(flagError)
	testRootCmd.AddCommand(cmd)
	return testRootCmd
}

// captureStdout returns command stdout output as string.
func captureStdout(cmd *cobra.Command) *bytes.Buffer {
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	return &stdout
}

// captureStderr returns command stderr output as string.
func captureStderr(cmd *cobra.Command) *bytes.Buffer {
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)
	return &stderr
}

// changeToRepoDir changes working directory to repo path and registers cleanup.
func changeToRepoDir(t *testing.T, repoPath string) {
	t.Helper()

	oldDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get current directory: %v", err)
	}

	if err := os.Chdir(repoPath); err != nil {
		t.Fatalf("Failed to change to directory %s: %v", repoPath, err)
	}

	t.Cleanup(func() {
		os.Chdir(oldDir)
	})
}

// runCommand executes args against a fresh root holding cmd and returns stdout and the error.
func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	testRootCmd := createTestRootCmd(cmd)
	stdout := captureStdout(testRootCmd)
	captureStderr(testRootCmd)
	testRootCmd.SetArgs(args)

	err := testRootCmd.Execute()
	return stdout.String(), err
}
