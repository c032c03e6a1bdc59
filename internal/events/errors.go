package events

import (
	"errors"

	"github.com/thenoetrevino/boardsync/internal/models"
)

// ErrorCode is the caller-visible failure class.
type ErrorCode string

const (
	CodeNotFound        ErrorCode = "not_found"
	CodeForbidden       ErrorCode = "forbidden"
	CodeInvalidArgument ErrorCode = "invalid_argument"
	CodeConflict        ErrorCode = "storage_conflict"
	CodeInternal        ErrorCode = "internal"
	CodeUnknownMethod   ErrorCode = "unknown_method"
)

// Error is the failure carried in a result frame.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Is lets errors.Is match a wire error against the shared sentinels, so
// client code can branch the same way server code does.
func (e *Error) Is(target error) bool {
	switch e.Code {
	case CodeNotFound:
		return target == models.ErrNotFound
	case CodeForbidden:
		return target == models.ErrForbidden
	case CodeInvalidArgument:
		return target == models.ErrInvalidArgument
	case CodeConflict:
		return target == models.ErrStorageConflict
	}
	return false
}

// ClassifyError maps any error onto the wire taxonomy. Invariant
// violations and unknown failures are opaque: the detail stays in the
// server log. Internal reports whether the server should log it as a fault.
func ClassifyError(err error) (wire *Error, internal bool) {
	if err == nil {
		return nil, false
	}

	var already *Error
	if errors.As(err, &already) {
		return already, false
	}

	switch {
	case errors.Is(err, models.ErrNotFound):
		return &Error{Code: CodeNotFound, Message: err.Error()}, false
	case errors.Is(err, models.ErrForbidden):
		return &Error{Code: CodeForbidden, Message: "access denied"}, false
	case errors.Is(err, models.ErrInvalidArgument):
		return &Error{Code: CodeInvalidArgument, Message: err.Error()}, false
	case errors.Is(err, models.ErrStorageConflict):
		return &Error{Code: CodeConflict, Message: "write conflict, retry the operation"}, false
	default:
		return &Error{Code: CodeInternal, Message: "internal error"}, true
	}
}
