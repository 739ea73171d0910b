package synth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/osgify/cli/internal/bnd"
)

// Sentinel errors for synthesis failures.
var (
	// ErrManifestCalculation indicates the analyzer reported errors.
	ErrManifestCalculation = errors.New("manifest calculation failed")

	// ErrDefaultPackage indicates classes in the default package prevented
	// manifest calculation.
	ErrDefaultPackage = errors.New("default package not permitted")

	// ErrPersistence indicates the wrapped jar could not be written.
	ErrPersistence = errors.New("persisting bundle failed")
)

// ManifestCalculationError is returned when the analyzer reports errors that
// were not tolerated.
type ManifestCalculationError struct {
	Artifact string
	Errors   []string
	Cause    error
}

func (e *ManifestCalculationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "calculating manifest for %s", e.Artifact)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	if len(e.Errors) > 0 {
		fmt.Fprintf(&b, ": %s", strings.Join(e.Errors, "; "))
	}
	return b.String()
}

// Unwrap exposes ErrManifestCalculation, ErrDefaultPackage when the analyzer
// rejected default package classes, and the cause.
func (e *ManifestCalculationError) Unwrap() []error {
	errs := []error{ErrManifestCalculation}
	if e.DefaultPackage() {
		errs = append(errs, ErrDefaultPackage)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// DefaultPackage reports whether any analyzer error concerns the default
// package.
func (e *ManifestCalculationError) DefaultPackage() bool {
	for _, msg := range e.Errors {
		if strings.Contains(msg, bnd.DefaultPackageMessage) {
			return true
		}
	}
	return false
}

// PersistenceError is returned when the target jar could not be written. The
// target is removed before it is returned.
type PersistenceError struct {
	Artifact string
	Target   string
	Err      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("writing bundle %s for %s: %v", e.Target, e.Artifact, e.Err)
}

// Unwrap exposes ErrPersistence and the cause.
func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}
