package models

import "errors"

// Failure taxonomy shared by the ledger, the materializer and the services.
// Callers wrap these with fmt.Errorf("...: %w") and classify with errors.Is.
var (
	// ErrNotFound means a referenced id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the caller's access level is below what the
	// operation requires.
	ErrForbidden = errors.New("access denied")

	// ErrInvalidArgument means a required field is empty or inconsistent.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvariantViolation means a stored chain is broken (no head, several
	// heads, a fork or a cycle). It always indicates a server-side bug.
	ErrInvariantViolation = errors.New("ordering invariant violated")

	// ErrStorageConflict means a write transaction lost a conflict and made
	// no change. The whole operation may be retried.
	ErrStorageConflict = errors.New("storage conflict")
)
