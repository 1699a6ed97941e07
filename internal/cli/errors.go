// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types and exit codes shared by every command.
//
// Commands always return errors; Execute decides how to display them and
// which exit code to use.

package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jeranaias/orb-tui/internal/config"
	"github.com/jeranaias/orb-tui/internal/dispatch"
	"github.com/jeranaias/orb-tui/internal/storage"
	"github.com/jeranaias/orb-tui/internal/webhook"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitAuthError indicates the webhook rejected the credentials
	ExitAuthError = 4
	// ExitNetworkError indicates the webhook could not be reached or failed
	ExitNetworkError = 5
	// ExitNotFoundError indicates a resource was not found
	ExitNotFoundError = 7
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
	// ExitInterrupted indicates the user cancelled the operation
	ExitInterrupted = 130
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "history")
	Action  string // Action being performed (e.g., "export")
	Reason  string // Human-readable reason
	Err     error  // Underlying error (if any)
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ValidationError represents invalid user input.
type ValidationError struct {
	Field   string // Field that failed validation
	Value   string // Value that was provided
	Reason  string // Why validation failed
	Example string // Example of a valid value (optional)
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// ExitError carries an exit code for an error that has already been shown,
// for example as a JSON error document.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR CONSTRUCTION HELPERS
// =============================================================================

// NewCommandError creates a new command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{
		Command: command,
		Action:  action,
		Reason:  reason,
		Err:     err,
	}
}

// NewValidationError creates a new validation error.
func NewValidationError(field, value, reason string) error {
	return &ValidationError{
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// NewValidationErrorWithExample creates a validation error with an example.
func NewValidationErrorWithExample(field, value, reason, example string) error {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Reason:  reason,
		Example: example,
	}
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// ExitCode picks the process exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var clientErr *webhook.ClientError
	if errors.As(err, &clientErr) {
		switch clientErr.Type {
		case webhook.ErrTypeTimeout:
			return ExitTimeoutError
		case webhook.ErrTypeCanceled:
			return ExitInterrupted
		case webhook.ErrTypeNotConfigured:
			return ExitConfigError
		case webhook.ErrTypeStatus:
			if clientErr.StatusCode == http.StatusUnauthorized || clientErr.StatusCode == http.StatusForbidden {
				return ExitAuthError
			}
			return ExitNetworkError
		default:
			return ExitNetworkError
		}
	}

	var validationErr *ValidationError
	var ttyErr *TTYRequiredError
	var cfgErrs config.ValidateErrors
	var cfgErr config.ValidationError
	switch {
	case errors.As(err, &validationErr), errors.As(err, &ttyErr):
		return ExitUsageError
	case errors.As(err, &cfgErrs), errors.As(err, &cfgErr):
		return ExitConfigError
	case errors.Is(err, storage.ErrInvalidScope):
		return ExitUsageError
	case errors.Is(err, dispatch.ErrEmptyAnswer):
		return ExitNetworkError
	}
	return ExitGeneralError
}

// =============================================================================
// ERROR DISPLAY
// =============================================================================

// DisplayError writes err to w unless it was already shown.
func DisplayError(w io.Writer, err error) {
	if err == nil {
		return
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())
}

// warn writes a warning line to w.
func warn(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "%s %s\n", WarningStyle.Render("[!]"), fmt.Sprintf(format, args...))
}
