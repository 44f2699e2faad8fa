package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/jcrsync/pkg/models"
)

// Exit codes
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// ExitCode maps an error returned by a command to the process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var usageErr *models.UsageError
	if errors.As(err, &usageErr) {
		return ExitUsage
	}
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		return ExitUsage
	}
	return ExitError
}

// optionalPath accepts at most one path operand
func optionalPath(cmd *cobra.Command, args []string) error {
	if len(args) > 1 {
		return &models.UsageError{
			Reason:  models.ReasonInvalidPath,
			Message: fmt.Sprintf("%s accepts at most one path, got %d", cmd.Name(), len(args)),
		}
	}
	return nil
}

// requiredPath demands exactly one path operand
func requiredPath(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return &models.UsageError{
			Reason:  models.ReasonMissingPath,
			Message: fmt.Sprintf("%s requires a repository path", cmd.Name()),
		}
	}
	return optionalPath(cmd, args)
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return &models.UsageError{
			Reason:  models.ReasonInvalidPath,
			Message: fmt.Sprintf("%s takes no arguments", cmd.Name()),
		}
	}
	return nil
}

// flagError turns flag parsing failures into usage errors
func flagError(cmd *cobra.Command, err error) error {
	return &models.UsageError{
		Reason:  models.ReasonInvalidFlag,
		Message: err.Error(),
	}
}

// pathArg returns the path operand, defaulting to the working directory
func pathArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}
