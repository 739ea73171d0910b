package cmd

import (
	"errors"

	"github.com/osgify/cli/internal/config"
	oerrors "github.com/osgify/cli/internal/errors"
	"github.com/osgify/cli/internal/feature"
	"github.com/osgify/cli/internal/platform"
)

// ExitError wraps an error with an exit code.
type ExitError struct {
	Err  error
	Code int

	// Printed is set when the command already reported the error.
	Printed bool
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return ExitCodeName(e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given error and exit code.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{Err: err, Code: code}
}

// ExitCodeFromError determines the appropriate exit code for an error.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var validationErrs config.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		return ExitValidationError
	case errors.Is(err, oerrors.ErrValidation),
		errors.Is(err, feature.ErrFeatureCycle),
		errors.Is(err, feature.ErrUnknownFeature),
		errors.Is(err, feature.ErrUnknownBundle),
		errors.Is(err, feature.ErrDuplicateFeature):
		return ExitValidationError
	case errors.Is(err, oerrors.ErrSynthesis):
		return ExitSynthesisError
	case errors.Is(err, oerrors.ErrPermission):
		return ExitPermissionDenied
	case errors.Is(err, oerrors.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, oerrors.ErrPlatform),
		errors.Is(err, platform.ErrUnsupportedPlatform),
		errors.Is(err, platform.ErrMalformedPlatform):
		return ExitPlatformError
	default:
		return ExitGeneralError
	}
}
