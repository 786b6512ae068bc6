package cli

import (
	"errors"

	flagutils "github.com/twangodev/gemote/internal/utils/flags"
)

// Process exit codes.
const (
	ExitCodeSuccess = 0
	ExitCodeFailure = 1
	ExitCodeUsage   = 2
)

// ExitCode maps a command error to the process exit code: usage errors exit with 2 and any
// other failure with 1.
func ExitCode(executionError error) int {
	if executionError == nil {
		return ExitCodeSuccess
	}
	var usageError flagutils.UsageError
	if errors.As(executionError, &usageError) {
		return ExitCodeUsage
	}
	return ExitCodeFailure
}
