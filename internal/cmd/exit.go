package cmd

import (
	"fmt"

	"github.com/Iron-Ham/posthub/internal/config"
	"github.com/Iron-Ham/posthub/internal/errors"
	"github.com/spf13/cobra"
)

// Exit codes for posthub commands.
const (
	ExitSuccess = 0 // Successful execution
	ExitUsage   = 1 // Bad arguments, unknown command, invalid configuration
	ExitFailure = 2 // Delivery, consumption or roster failure
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int    // Exit code (ExitUsage or ExitFailure)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil and ExitFailure for errors that carry no code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if isUsage(err) {
		return ExitUsage
	}
	return ExitFailure
}

func isUsage(err error) bool {
	var verrs config.ValidationErrors
	return errors.IsUsageError(err) || errors.As(err, &verrs)
}

// classify attaches an exit code to an error returned by a command.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	if isUsage(err) {
		return &ExitError{Code: ExitUsage, Message: "usage error", Err: err}
	}
	return &ExitError{Code: ExitFailure, Message: "operation failed", Err: err}
}

// usageArgs turns argument validation failures into usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return WrapExitError(ExitUsage, fmt.Sprintf("usage: %s", cmd.UseLine()), err)
		}
		return nil
	}
}

// flagError reports flag parsing failures as usage errors.
func flagError(cmd *cobra.Command, err error) error {
	return WrapExitError(ExitUsage, fmt.Sprintf("usage: %s", cmd.UseLine()), err)
}
