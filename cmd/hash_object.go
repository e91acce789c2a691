package cmd

import (
	"fmt"

	"github.com/KostasZigo/gitsync/internal/objects"
	"github.com/KostasZigo/gitsync/internal/repository"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var hashObjectCmd = &cobra.Command{
	Use:   "hash-object [--stdin | <filepath>]",
	Short: "Compute object hash and optionally store the object",
	Long: `Compute the object hash (SHA-1 hash) for a file's content or for standard input.
Optionally write the resulting object into the objects folder.

Examples:
  # Compute hash without storing
  gitsync hash-object myfile.txt

  # Compute hash and store in .git/objects
  gitsync hash-object -w myfile.txt

  # Hash standard input
  echo hello | gitsync hash-object --stdin`,
	SilenceUsage: true,
	Args:         hashObjectArgs,
	RunE:         runHashObject,
}

var (
	writeFlag      bool
	stdinFlag      bool
	hashObjectType = objectTypeValue(objects.BlobObjectType)
)

func init() {
	rootCmd.AddCommand(hashObjectCmd)

	// Add flag using Cobra's flag system
	hashObjectCmd.Flags().BoolVarP(&writeFlag, "write", "w", false, "Write the object into the objects folder")
	hashObjectCmd.Flags().BoolVar(&stdinFlag, "stdin", false, "Read the object from standard input instead of a file")
	hashObjectCmd.Flags().VarP(&hashObjectType, "type", "t", "Object type (blob, commit, tree, tag)")
}

// objectTypeValue is a pflag.Value accepting only known object types.
type objectTypeValue objects.ObjectType

var _ pflag.Value = (*objectTypeValue)(nil)

func (v *objectTypeValue) String() string {
	return string(*v)
}

func (v *objectTypeValue) Set(name string) error {
	objectType, err := objects.ParseObjectType(name)
	if err != nil {
		return err
	}
	*v = objectTypeValue(objectType)
	return nil
}

func (v *objectTypeValue) Type() string {
	return "type"
}

// hashObjectArgs requires exactly one input source: a filepath or --stdin.
func hashObjectArgs(cmd *cobra.Command, args []string) error {
	if stdinFlag {
		if len(args) > 0 {
			return usagef(cmd, "%s command does not accept a filepath with --stdin, received %d", cmd.Name(), len(args))
		}
		return nil
	}
	return exactArgs(1, "filepath")(cmd, args)
}

// runHashObject computes hash and optionally stores the object.
func runHashObject(cmd *cobra.Command, args []string) error {
	obj, err := readObject(cmd, args)
	if err != nil {
		return err
	}

	hash, err := objects.Hash(obj)
	if err != nil {
		return err
	}

	// Print hash to stdout
	fmt.Fprintln(cmd.OutOrStdout(), hash)

	if writeFlag {
		repo, err := repository.Find(".")
		if err != nil {
			return err
		}

		store := objects.NewObjectStore(repo)
		if _, err := store.Store(obj); err != nil {
			return fmt.Errorf("failed to store object: %w", err)
		}
	}

	return nil
}

// readObject builds the object named by --type from the selected input.
func readObject(cmd *cobra.Command, args []string) (objects.Object, error) {
	var blob *objects.Blob
	var err error
	if stdinFlag {
		blob, err = objects.NewBlobFromReader(cmd.InOrStdin())
	} else {
		blob, err = objects.NewBlobFromFile(args[0])
	}
	if err != nil {
		return nil, err
	}

	objectType := objects.ObjectType(hashObjectType)
	if objectType == objects.BlobObjectType {
		return blob, nil
	}
	return objects.Deserialize(objectType, blob.Content())
}
