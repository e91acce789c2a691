package cmd

import (
	"errors"
	"log/slog"

	"github.com/KostasZigo/gitsync/internal/fanout"
	"github.com/KostasZigo/gitsync/internal/objects"
	"github.com/KostasZigo/gitsync/internal/repository"
	"github.com/KostasZigo/gitsync/utils"
)

// Process exit codes.
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitUsage         = 2
	ExitNotRepository = 3
	ExitNotFound      = 4
	ExitCorrupt       = 5
	ExitUnknownType   = 6
	ExitUnimplemented = 7
	ExitInvalidHash   = 8
	ExitSoftware      = 70
)

// exitCodes is matched in order; the first rule whose error matches wins.
var exitCodes = []struct {
	target error
	code   int
}{
	{fanout.ErrSinkDivergence, ExitSoftware},
	{utils.ErrInvalidHash, ExitInvalidHash},
	{repository.ErrNotRepository, ExitNotRepository},
	{repository.ErrInvalidConfig, ExitNotRepository},
	{repository.ErrUnsupportedFormat, ExitNotRepository},
	{objects.ErrObjectNotFound, ExitNotFound},
	{objects.ErrUnknownType, ExitUnknownType},
	{objects.ErrUnimplementedStructure, ExitUnimplemented},
	{objects.ErrMalformedHeader, ExitCorrupt},
	{objects.ErrInvalidLength, ExitCorrupt},
	{objects.ErrSizeMismatch, ExitCorrupt},
	{objects.ErrHashMismatch, ExitCorrupt},
	{objects.ErrCorruptStream, ExitCorrupt},
}

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var usage *usageError
	if errors.As(err, &usage) {
		return ExitUsage
	}

	for _, rule := range exitCodes {
		if errors.Is(err, rule.target) {
			if rule.code == ExitSoftware {
				slog.Error("Internal invariant violated",
					"error", err)
			}
			return rule.code
		}
	}
	return ExitFailure
}
