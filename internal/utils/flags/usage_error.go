package flags

import "github.com/spf13/cobra"

// UsageError marks a failure caused by invalid command-line arguments or flag values.
type UsageError struct {
	Err error
}

// NewUsageError wraps the error as a usage error. A nil error stays nil.
func NewUsageError(err error) error {
	if err == nil {
		return nil
	}
	return UsageError{Err: err}
}

// Error returns the wrapped message.
func (usageError UsageError) Error() string {
	if usageError.Err == nil {
		return ""
	}
	return usageError.Err.Error()
}

// Unwrap exposes the wrapped error.
func (usageError UsageError) Unwrap() error {
	return usageError.Err
}

// UsageArguments wraps a positional argument validator so its failures are usage errors.
func UsageArguments(validator cobra.PositionalArgs) cobra.PositionalArgs {
	return func(command *cobra.Command, arguments []string) error {
		if validator == nil {
			return nil
		}
		return NewUsageError(validator(command, arguments))
	}
}
