package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// usageError marks a bad invocation: wrong arguments or flags.
type usageError struct {
	err error
}

func (e *usageError) Error() string {
	return e.err.Error()
}

func (e *usageError) Unwrap() error {
	return e.err
}

// usagef builds a usageError and enables usage printing for cmd.
func usagef(cmd *cobra.Command, format string, args ...any) error {
	cmd.SilenceUsage = false
	return &usageError{err: fmt.Errorf(format, args...)}
}

// flagError turns flag parsing failures into usage errors.
func flagError(cmd *cobra.Command, err error) error {
	cmd.SilenceUsage = false
	return &usageError{err: err}
}

// exactArgs validates command receives exactly n positional arguments.
// enables usage printing in case of error
func exactArgs(n int, names string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usagef(cmd, "%s command requires exactly %d argument(s) (%s), received %d", cmd.Name(), n, names, len(args))
		}
		return nil
	}
}

// maximumArgs validates command receives at most n positional arguments.
// Returns error with usage help if argument limit exceeded.
func maximumArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > n {
			return usagef(cmd, "%s command accepts at most %d arg(s), received %d", cmd.Name(), n, len(args))
		}
		return nil
	}
}
