package attachment

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidIdentifier is returned when the message ID is empty or
	// not a hexadecimal number.
	ErrInvalidIdentifier = errors.New("invalid message ID format, expected a hexadecimal string")

	// ErrMissingCredentials is returned when the mailbox username or
	// password is empty.
	ErrMissingCredentials = errors.New("username and password must be provided")
)

// WriteError aborts a download when the disk cannot take further writes.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write attachment %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
