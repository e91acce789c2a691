package utils

import (
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KostasZigo/gitsync/internal/constants"
)

// ErrInvalidHash reports a digest that is not 40 hex characters.
var ErrInvalidHash = errors.New("invalid object hash")

// ValidateHash checks that hash is a full SHA-1 hex digest.
func ValidateHash(hash string) error {
	if len(hash) != constants.HashStringLength {
		return fmt.Errorf("%w: %q must be %d characters, got %d", ErrInvalidHash, hash, constants.HashStringLength, len(hash))
	}
	if _, err := hex.DecodeString(hash); err != nil {
		return fmt.Errorf("%w: %q is not hexadecimal", ErrInvalidHash, hash)
	}
	return nil
}

// BuildDirPath constructs os-agnostic display directory path with trailing separator preserving all components.
// Unlike filepath.Join, does not normalize "." or remove redundant separators.
func BuildDirPath(dirs ...string) string {
	return strings.Join(dirs, string(filepath.Separator)) + string(filepath.Separator)
}
