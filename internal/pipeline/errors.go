package pipeline

import (
	"fmt"
	"strings"

	oerrors "github.com/osgify/cli/internal/errors"
)

// ArtifactError is implemented by errors tied to one declared artifact.
type ArtifactError interface {
	error

	// Artifact returns the artifact path or ID where the error occurred.
	Artifact() string
}

// MissingArtifactError indicates a declared jar does not exist.
type MissingArtifactError struct {
	// Path is the resolved jar location.
	Path string

	// Index is the position of the entry in the build file.
	Index int
}

func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("artifacts[%d]: %s does not exist", e.Index, e.Path)
}

func (e *MissingArtifactError) Artifact() string {
	return e.Path
}

// Unwrap lets errors.Is match ErrNotFound.
func (e *MissingArtifactError) Unwrap() error {
	return oerrors.ErrNotFound
}

// FailedBundlesError lists the artifacts whose synthesis failed.
type FailedBundlesError struct {
	// IDs are the failed artifact IDs, in build order.
	IDs []string

	// Total is the number of artifacts in the build.
	Total int
}

func (e *FailedBundlesError) Error() string {
	return fmt.Sprintf("%d of %d artifacts failed: %s", len(e.IDs), e.Total, strings.Join(e.IDs, ", "))
}

// Artifact returns the first failed artifact.
func (e *FailedBundlesError) Artifact() string {
	if len(e.IDs) == 0 {
		return ""
	}
	return e.IDs[0]
}

// Unwrap lets errors.Is match ErrSynthesis.
func (e *FailedBundlesError) Unwrap() error {
	return oerrors.ErrSynthesis
}
