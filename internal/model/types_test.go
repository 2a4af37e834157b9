package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExitCode_String verifies the labels used in JSON error output.
func TestExitCode_String(t *testing.T) {
	tests := []struct {
		code     ExitCode
		expected string
	}{
		{ExitSuccess, "success"},
		{ExitGeneralError, "general-error"},
		{ExitInvalidConfig, "invalid-config"},
		{ExitToolNotFound, "tool-not-found"},
		{ExitSyncFailed, "sync-failed"},
		{ExitCode(42), "exit-42"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.code.String())
		})
	}
}

// TestExitCodes_Distinct guards against two failure kinds sharing a code.
func TestExitCodes_Distinct(t *testing.T) {
	codes := []ExitCode{ExitSuccess, ExitGeneralError, ExitInvalidConfig, ExitToolNotFound, ExitSyncFailed}
	seen := make(map[ExitCode]bool)
	for _, c := range codes {
		assert.False(t, seen[c], "exit code %d is used twice", c)
		seen[c] = true
	}
}

func TestCLIError_Error(t *testing.T) {
	plain := NewCLIError(ExitInvalidConfig, "source must be absolute")
	assert.Equal(t, "source must be absolute", plain.Error())
	assert.Nil(t, plain.Unwrap())

	wrapped := WrapCLIError(ExitSyncFailed, "rsync failed", errors.New("exit status 23"))
	assert.Equal(t, "rsync failed: exit status 23", wrapped.Error())
}

// TestCLIError_Unwrap verifies errors.Is and errors.As see through the CLIError
// and through further fmt.Errorf wrapping.
func TestCLIError_Unwrap(t *testing.T) {
	sentinel := errors.New("boom")
	err := fmt.Errorf("running backup: %w", WrapCLIError(ExitToolNotFound, "rsync not found", sentinel))

	assert.True(t, errors.Is(err, sentinel))

	var cliErr *CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, ExitToolNotFound, cliErr.Code)
}
