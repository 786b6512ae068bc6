// Package errors defines the typed failures surfaced by repository reconciliation.
package errors

import (
	"fmt"
	"strings"
)

const (
	configErrorTemplate           = "invalid configuration %s: %s"
	configErrorWithCauseTemplate  = "invalid configuration %s: %s: %v"
	configMessageTemplate         = "error: %s: %s\n"
	repoAccessErrorTemplate       = "repository %s: %s: %v"
	repoAccessMessageTemplate     = "error: cannot %s in %s: %v\n"
	mutationErrorTemplate         = "repository %s: %s: %v"
	mutationMessageTemplate       = "error: failed to %s in %s: %v\n"
	unknownLocationValueConstant  = "<unknown>"
	unknownOperationValueConstant = "access repository"
)

// OperationError is implemented by failures that carry a user-facing message.
type OperationError interface {
	error
	Message() string
}

// ConfigError reports a configuration document that cannot be loaded or violates model constraints.
type ConfigError struct {
	Location string
	Reason   string
	Cause    error
}

// Error describes the configuration failure.
func (configError ConfigError) Error() string {
	location := displayLocation(configError.Location)
	if configError.Cause != nil {
		return fmt.Sprintf(configErrorWithCauseTemplate, location, configError.Reason, configError.Cause)
	}
	return fmt.Sprintf(configErrorTemplate, location, configError.Reason)
}

// Message renders the failure for the error stream.
func (configError ConfigError) Message() string {
	reason := configError.Reason
	if configError.Cause != nil {
		reason = fmt.Sprintf("%s: %v", reason, configError.Cause)
	}
	return fmt.Sprintf(configMessageTemplate, displayLocation(configError.Location), reason)
}

// Unwrap exposes the underlying cause.
func (configError ConfigError) Unwrap() error {
	return configError.Cause
}

// RepoAccessError reports a repository that could not be opened or read.
type RepoAccessError struct {
	Repository string
	Operation  string
	Cause      error
}

// Error describes the access failure.
func (accessError RepoAccessError) Error() string {
	return fmt.Sprintf(repoAccessErrorTemplate, displayLocation(accessError.Repository), accessError.operation(), accessError.Cause)
}

// Message renders the failure for the error stream.
func (accessError RepoAccessError) Message() string {
	return fmt.Sprintf(repoAccessMessageTemplate, accessError.operation(), displayLocation(accessError.Repository), accessError.Cause)
}

// Unwrap exposes the underlying cause.
func (accessError RepoAccessError) Unwrap() error {
	return accessError.Cause
}

func (accessError RepoAccessError) operation() string {
	trimmed := strings.TrimSpace(accessError.Operation)
	if len(trimmed) == 0 {
		return unknownOperationValueConstant
	}
	return trimmed
}

// MutationError reports a single remote mutation that the repository rejected.
type MutationError struct {
	Repository string
	Action     fmt.Stringer
	Cause      error
}

// Error describes the rejected mutation.
func (mutationError MutationError) Error() string {
	return fmt.Sprintf(mutationErrorTemplate, displayLocation(mutationError.Repository), mutationError.action(), mutationError.Cause)
}

// Message renders the failure for the error stream.
func (mutationError MutationError) Message() string {
	return fmt.Sprintf(mutationMessageTemplate, mutationError.action(), displayLocation(mutationError.Repository), mutationError.Cause)
}

// Unwrap exposes the underlying cause.
func (mutationError MutationError) Unwrap() error {
	return mutationError.Cause
}

func (mutationError MutationError) action() string {
	if mutationError.Action == nil {
		return unknownOperationValueConstant
	}
	return mutationError.Action.String()
}

func displayLocation(location string) string {
	trimmed := strings.TrimSpace(location)
	if len(trimmed) == 0 {
		return unknownLocationValueConstant
	}
	return trimmed
}
