package util

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCmdAbort is reported when user aborts the program.
	ErrCmdAbort = errors.New("aborted by user")
)

// NotFoundError is reported when a package directory, a repository layout
// or a source file is missing.
type NotFoundError struct {
	// What names the kind of the missing object.
	What string
	// Path is the location that was looked up.
	Path string
}

// Error implements the [error] interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.What, e.Path)
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(what, path string) error {
	return &NotFoundError{What: what, Path: path}
}

// ValidationError describes a schema or shape violation of a document.
type ValidationError struct {
	// Path is the document location.
	Path string
	// Reason is a human readable description of the violation.
	Reason string
	// Sections contains offending section names, if any.
	Sections []string
}

// Error implements the [error] interface.
func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid document %s: %s", e.Path, e.Reason)
	if len(e.Sections) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, strings.Join(e.Sections, ", "))
	}
	return msg
}

// ExitError is reported when an external program exits with a nonzero status.
type ExitError struct {
	// Program is the executed program name.
	Program string
	// Code is the exit status. -1 means the program was not started
	// or was killed by a signal.
	Code int
	// Err is the underlying error.
	Err error
}

// Error implements the [error] interface.
func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d: %s", e.Program, e.Code, e.Err)
}

// Unwrap returns the underlying error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode extracts the exit status from err. It returns 0 for nil error and
// -1 if err carries no exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return -1
}
