package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/momentum/internal/logger"
)

// RemoteError is returned whenever a backend call fails. Message is the
// human-readable text shown to the user.
type RemoteError struct {
	Op      string
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	return e.Message
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Remote wraps a backend failure for the named operation. It returns nil for
// a nil error and leaves an existing RemoteError untouched.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	var re *RemoteError
	if stderrors.As(err, &re) {
		return err
	}
	return &RemoteError{Op: op, Message: err.Error(), Err: err}
}

// Remotef builds a RemoteError without an underlying driver error
func Remotef(op string, format string, args ...interface{}) error {
	return &RemoteError{Op: op, Message: fmt.Sprintf(format, args...)}
}

// IsRemote reports whether err is or wraps a RemoteError
func IsRemote(err error) bool {
	var re *RemoteError
	return stderrors.As(err, &re)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
