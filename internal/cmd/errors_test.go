package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osgify/cli/internal/config"
	oerrors "github.com/osgify/cli/internal/errors"
	"github.com/osgify/cli/internal/feature"
	"github.com/osgify/cli/internal/pipeline"
	"github.com/osgify/cli/internal/platform"
)

func TestExitCodeFromError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "nil error returns success",
			err:      nil,
			expected: ExitSuccess,
		},
		{
			name:     "validation error",
			err:      oerrors.ErrValidation,
			expected: ExitValidationError,
		},
		{
			name:     "schema validation errors",
			err:      config.ValidationErrors{{Field: "workers", Message: "invalid"}},
			expected: ExitValidationError,
		},
		{
			name:     "feature cycle",
			err:      &feature.CycleError{Cycle: []string{"x", "y", "x"}},
			expected: ExitValidationError,
		},
		{
			name:     "failed bundles",
			err:      &pipeline.FailedBundlesError{IDs: []string{"a:1"}, Total: 2},
			expected: ExitSynthesisError,
		},
		{
			name:     "permission error",
			err:      oerrors.ErrPermission,
			expected: ExitPermissionDenied,
		},
		{
			name:     "missing artifact",
			err:      &pipeline.MissingArtifactError{Path: "/x.jar"},
			expected: ExitNotFound,
		},
		{
			name:     "malformed platform",
			err:      &platform.MalformedPlatformError{Input: "linux"},
			expected: ExitPlatformError,
		},
		{
			name:     "platform detail error",
			err:      oerrors.NewPlatformError("unknown", "x.y.z"),
			expected: ExitPlatformError,
		},
		{
			name:     "wrapped validation error",
			err:      fmt.Errorf("failed to validate: %w", oerrors.ErrValidation),
			expected: ExitValidationError,
		},
		{
			name:     "unknown error returns general error",
			err:      errors.New("something went wrong"),
			expected: ExitGeneralError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExitCodeFromError(tt.err))
		})
	}
}

func TestExitError(t *testing.T) {
	inner := errors.New("boom")
	err := NewExitError(inner, ExitSynthesisError)

	assert.Equal(t, "boom", err.Error())
	assert.True(t, errors.Is(err, inner))
	assert.Equal(t, ExitSynthesisError, ExitCodeFromError(fmt.Errorf("wrapped: %w", err)))

	var exitErr *ExitError
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &exitErr))
	assert.Equal(t, ExitSynthesisError, exitErr.Code)

	assert.Equal(t, "Not Found", (&ExitError{Code: ExitNotFound}).Error())
}
