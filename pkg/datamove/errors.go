package datamove

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// Callers distinguish failure classes with errors.Is().
//
// Example usage:
//
//	_, err := manager.Connect(ctx)
//	if errors.Is(err, datamove.ErrAuthenticationFailed) {
//	    // No ambient identity available; do not retry.
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrAuthenticationFailed indicates the credential provider could not
	// issue an access token. Never retried.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrConnectionFailed indicates the transport connection could not be
	// established after exhausting the retry budget.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrNoConnection indicates a statement was executed before a live
	// connection existed. Programmer error.
	ErrNoConnection = errors.New("no active connection")

	// ErrExecutionFailed indicates SQL execution failed. The in-flight
	// transaction has been rolled back.
	ErrExecutionFailed = errors.New("execution failed")

	// ErrFrameTooLarge indicates a frame exceeds the destination's capacity
	// (e.g. the Google Sheets cell budget).
	ErrFrameTooLarge = errors.New("frame too large")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrAuthenticationFailed):
		return ExitAuthError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrNoConnection):
		return ExitExecutionFailed
	case errors.Is(err, ErrExecutionFailed):
		return ExitExecutionFailed
	case errors.Is(err, ErrFrameTooLarge):
		return ExitConfigError
	}

	// Fall back to message patterns for errors raised below the sentinel layer.
	errStr := err.Error()
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
