package cli

import (
	"errors"

	"github.com/thenoetrevino/boardsync/internal/models"
)

// Exit codes for CLI commands.
// These codes follow Unix conventions and provide consistent error reporting
// across all CLI commands.
const (
	// ExitSuccess indicates the command completed successfully.
	// Use for: Normal, successful command execution.
	ExitSuccess = 0

	// ExitError indicates a general error occurred.
	// Use for: Database errors, network errors, unexpected failures,
	// or any error that doesn't fit the specific categories below.
	ExitError = 1

	// ExitUsage indicates incorrect command usage.
	// Use for: Missing required flags, invalid flag combinations,
	// or when the user needs to provide different arguments.
	ExitUsage = 2

	// ExitNotFound indicates a requested resource was not found.
	// Use for: Board not found, column not found, card not found,
	// or any case where a resource ID doesn't exist.
	ExitNotFound = 3

	// ExitDataErr indicates invalid or malformed data.
	// Use for: Invalid JSON input, corrupted data, or data that cannot be processed.
	ExitDataErr = 4

	// ExitValidation indicates a validation error.
	// Use for: Malformed ids, empty titles, a predecessor in another column,
	// or any case where input fails validation rules.
	ExitValidation = 5

	// ExitForbidden indicates the user's access level is too low.
	ExitForbidden = 6

	// ExitConflict indicates the store stayed busy through every retry.
	// The operation can be run again.
	ExitConflict = 7
)

// CommandError carries the process exit code of a failed command. The
// message has already been shown to the user.
type CommandError struct {
	Code int
	Err  error
}

func (e *CommandError) Error() string { return e.Err.Error() }
func (e *CommandError) Unwrap() error { return e.Err }

// ExitCodeFor maps a command error onto an exit code.
func ExitCodeFor(err error) int {
	var exit *CommandError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &exit):
		return exit.Code
	case errors.Is(err, models.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, models.ErrForbidden):
		return ExitForbidden
	case errors.Is(err, models.ErrInvalidArgument):
		return ExitValidation
	case errors.Is(err, models.ErrStorageConflict):
		return ExitConflict
	default:
		return ExitError
	}
}
