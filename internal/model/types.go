package model

import (
	"fmt"
)

// ExitCode defines the process exit codes of fluxcast-backup.
// Scripts and cron wrappers can rely on these to tell a configuration
// mistake apart from an rsync failure.
type ExitCode int

const (
	// ExitSuccess indicates the backup pass completed.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitInvalidConfig indicates the source or destination settings are
	// unusable (relative path, missing trailing separator, unreadable
	// config file) or a doctor check failed.
	ExitInvalidConfig ExitCode = 2

	// ExitToolNotFound indicates the rsync binary could not be started.
	ExitToolNotFound ExitCode = 3

	// ExitSyncFailed indicates rsync ran and exited with a non-zero status.
	ExitSyncFailed ExitCode = 4
)

// String returns a short label for the exit code, used in JSON error output.
func (c ExitCode) String() string {
	switch c {
	case ExitSuccess:
		return "success"
	case ExitGeneralError:
		return "general-error"
	case ExitInvalidConfig:
		return "invalid-config"
	case ExitToolNotFound:
		return "tool-not-found"
	case ExitSyncFailed:
		return "sync-failed"
	default:
		return fmt.Sprintf("exit-%d", int(c))
	}
}

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
