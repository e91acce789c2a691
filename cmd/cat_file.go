package cmd

import (
	"errors"
	"fmt"

	"github.com/KostasZigo/gitsync/internal/objects"
	"github.com/KostasZigo/gitsync/internal/repository"
	"github.com/KostasZigo/gitsync/utils"
	"github.com/spf13/cobra"
)

var errTypeMismatch = errors.New("object type mismatch")

var catFileCmd = &cobra.Command{
	Use:   "cat-file <type> <object>",
	Short: "Print the content of a stored object",
	Long: `Read the object with the given hash from .git/objects, check that it has the
expected type and write its raw content to standard output.

Examples:
  gitsync cat-file blob 2bb09523ce4baf1940ee8fef49f6cade5afe3d03`,
	SilenceUsage: true,
	Args:         exactArgs(2, "type and object"),
	RunE:         runCatFile,
}

func init() {
	rootCmd.AddCommand(catFileCmd)
}

// runCatFile reads an object and writes its body to stdout.
func runCatFile(cmd *cobra.Command, args []string) error {
	objectType, err := objects.ParseObjectType(args[0])
	if err != nil {
		return err
	}

	hash := args[1]
	if err := utils.ValidateHash(hash); err != nil {
		return err
	}

	repo, err := repository.Find(".")
	if err != nil {
		return err
	}

	obj, err := objects.NewObjectStore(repo).Read(hash)
	if err != nil {
		return err
	}

	if obj.Type() != objectType {
		return fmt.Errorf("%w: object %s is a %s, not a %s", errTypeMismatch, hash, obj.Type(), objectType)
	}

	return obj.Serialize(cmd.OutOrStdout())
}
