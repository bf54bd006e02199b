package datamove

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Operation completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration or parameters
	ExitConnectionError = 11 // Failed to connect after exhausting retries
	ExitAuthError       = 12 // Credential provider could not issue a token
	ExitExecutionFailed = 13 // SQL execution failed
)

const (
	// DefaultAttemptLimit is the default connection retry budget. The
	// attempt counter is compared inclusively against this limit, so a
	// limit of 3 permits up to 4 transport attempts.
	DefaultAttemptLimit = 3

	// DefaultAttemptDelay is the minimum spacing between the start of a
	// failed connection attempt and the start of the next one.
	DefaultAttemptDelay = 45 * time.Second

	// DefaultBatchRows is the number of rows bound per batch insert.
	DefaultBatchRows = 10000
)
