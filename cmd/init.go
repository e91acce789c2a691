package cmd

import (
	"fmt"

	"github.com/KostasZigo/gitsync/internal/constants"
	"github.com/KostasZigo/gitsync/internal/repository"
	"github.com/KostasZigo/gitsync/utils"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Initialize a new GitSync repository",
	Long: `The 'init' command sets up a new repository in the current or given directory.
It creates a .git directory with objects/, refs/, branches/, config, description and HEAD.
If a repository already exists, the command will not overwrite existing data.`,
	SilenceUsage: true,
	Args:         maximumArgs(1),
	RunE:         runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

// runInit executes repository initialization at specified or current directory.
func runInit(cmd *cobra.Command, args []string) error {
	dirPath := "."
	if len(args) > 0 {
		dirPath = args[0]
	}

	if _, err := repository.Init(dirPath); err != nil {
		return fmt.Errorf("failed to initialize repository - %w", err)
	}

	cmd.Printf("Initialized empty GitSync repository in %s\n", utils.BuildDirPath(dirPath, constants.GitDir))
	return nil
}
