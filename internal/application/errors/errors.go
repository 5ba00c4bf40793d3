// Package apperrors defines application-level error types.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotSupported marks configurations the generator refuses to merge,
	// such as an unknown output type or two sinks of one kind in a group.
	ErrNotSupported = errors.New("not supported")

	// ErrMissingDependency indicates a step ran before the token or
	// attachment it reads was produced.
	ErrMissingDependency = errors.New("missing required dependency")

	// ErrSecretNotFound is returned when a secret reference cannot be resolved.
	ErrSecretNotFound = errors.New("secret not found")

	// ErrPlaintextSecret indicates a sanitized definition still holds a
	// plaintext secret.
	ErrPlaintextSecret = errors.New("plaintext secret in sanitized definition")
)

// ValidationError indicates the flow definition or the session state is not
// acceptable for config generation.
type ValidationError struct {
	Cause   error    // Sentinel or underlying error, may be nil
	Field   string   // Field that failed validation
	Message string   // Error message
	Details []string // Additional details
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s: %s (%d issues)", e.Field, e.Message, len(e.Details))
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string, details ...string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Details: details,
	}
}

// NewNotSupportedError creates a validation error wrapping ErrNotSupported.
func NewNotSupportedError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Cause:   ErrNotSupported,
	}
}

// NewMissingDependencyError creates a validation error for a token or
// attachment that an earlier step should have produced.
func NewMissingDependencyError(name string) *ValidationError {
	return &ValidationError{
		Field:   name,
		Message: "required value was not produced by an earlier step",
		Cause:   ErrMissingDependency,
	}
}

// VaultError indicates a secret vault operation failed.
type VaultError struct {
	Cause     error
	Op        string // "resolve" or "save"
	Reference string // Secret reference or name, never the value
}

func (e *VaultError) Error() string {
	return fmt.Sprintf("vault %s %s: %v", e.Op, e.Reference, e.Cause)
}

func (e *VaultError) Unwrap() error {
	return e.Cause
}

// NewVaultError creates a new vault error.
func NewVaultError(op, reference string, cause error) *VaultError {
	return &VaultError{
		Op:        op,
		Reference: reference,
		Cause:     cause,
	}
}

// StepError indicates a pipeline step failed and the session was aborted.
type StepError struct {
	Cause error
	Step  string
	Phase string // "process" or "sensitive-data"
}

func (e *StepError) Error() string {
	if e.Phase != "" && e.Phase != "process" {
		return fmt.Sprintf("step %s (%s) failed: %v", e.Step, e.Phase, e.Cause)
	}
	return fmt.Sprintf("step %s failed: %v", e.Step, e.Cause)
}

func (e *StepError) Unwrap() error {
	return e.Cause
}

// NewStepError creates a new step error.
func NewStepError(step, phase string, cause error) *StepError {
	return &StepError{
		Step:  step,
		Phase: phase,
		Cause: cause,
	}
}

// ConfigurationError indicates system config or setup issue.
type ConfigurationError struct {
	Cause   error
	Aspect  string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error (%s): %s: %v", e.Aspect, e.Message, e.Cause)
	}
	return fmt.Sprintf("configuration error (%s): %s", e.Aspect, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// NewConfigurationError creates a new configuration error.
func NewConfigurationError(aspect, message string, cause error) *ConfigurationError {
	return &ConfigurationError{
		Aspect:  aspect,
		Message: message,
		Cause:   cause,
	}
}
