package models

import "errors"

// Error kinds callers branch on. Services wrap these with %w and context;
// check with errors.Is.
var (
	// ErrNotFound means a referenced group, user, or member does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict means the user already holds a filled slot in the group.
	ErrConflict = errors.New("already a member")

	// ErrCapacityExceeded means every slot in the group is already filled.
	ErrCapacityExceeded = errors.New("group capacity exceeded")

	// ErrInvalidState means the operation is not permitted in the current status.
	ErrInvalidState = errors.New("invalid state for operation")

	// ErrInvalidArgument means the input fails basic validation.
	ErrInvalidArgument = errors.New("invalid argument")
)
