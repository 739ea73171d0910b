// Package feature assembles bundles and nested features into the feature
// graph of an update site.
package feature

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/osgify/cli/internal/osgi"
)

// Sentinel errors for feature assembly.
var (
	// ErrFeatureFrozen is returned when a frozen feature is modified.
	ErrFeatureFrozen = errors.New("feature is frozen")

	// ErrFeatureCycle is matched by CycleError.
	ErrFeatureCycle = errors.New("feature cycle detected")

	// ErrDuplicateFeature is returned when a feature ID is defined twice.
	ErrDuplicateFeature = errors.New("duplicate feature")

	// ErrUnknownFeature is returned for includes of undefined features.
	ErrUnknownFeature = errors.New("unknown feature")

	// ErrUnknownBundle is returned for bundle references missing from the
	// registry.
	ErrUnknownBundle = errors.New("unknown bundle")
)

// MatchRule is the version match rule of a required feature.
type MatchRule string

// Match rules understood by update sites.
const (
	MatchPerfect        MatchRule = "perfect"
	MatchEquivalent     MatchRule = "equivalent"
	MatchCompatible     MatchRule = "compatible"
	MatchGreaterOrEqual MatchRule = "greaterOrEqual"
)

// ParseMatchRule parses a match rule, ignoring case. "exact" is accepted for
// perfect. The empty string yields the empty rule, meaning unspecified.
func ParseMatchRule(s string) (MatchRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "perfect", "exact":
		return MatchPerfect, nil
	case "equivalent":
		return MatchEquivalent, nil
	case "compatible":
		return MatchCompatible, nil
	case "greaterorequal":
		return MatchGreaterOrEqual, nil
	}
	return "", fmt.Errorf("unknown match rule %q", s)
}

// RequiredFeature declares a dependency on another feature. It is recorded
// verbatim and never resolved here.
type RequiredFeature struct {
	FeatureName string    `json:"feature"`
	Version     string    `json:"version,omitempty"`
	Match       MatchRule `json:"match,omitempty"`
}

// Feature is a named, versioned group of bundles and nested features.
//
// The member collections may change until Freeze is called; afterwards
// mutators return ErrFeatureFrozen.
type Feature struct {
	ID          string
	Label       string
	Version     osgi.Version
	Provider    string
	License     string
	Description string
	Copyright   string
	Plugin      string

	mu       sync.RWMutex
	frozen   bool
	bundles  []string
	includes []string
	requires []RequiredFeature
}

// New creates an empty feature.
func New(id string) *Feature {
	return &Feature{ID: id}
}

// Bundles returns the member artifact IDs in order.
func (f *Feature) Bundles() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.bundles...)
}

// IncludedFeatures returns the IDs of nested features in order.
func (f *Feature) IncludedFeatures() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.includes...)
}

// RequiredFeatures returns the declared dependencies.
func (f *Feature) RequiredFeatures() []RequiredFeature {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]RequiredFeature(nil), f.requires...)
}

// AddBundle appends member artifacts. IDs already present are ignored.
func (f *Feature) AddBundle(ids ...string) error {
	return f.mutate(func() {
		for _, id := range ids {
			if !slices.Contains(f.bundles, id) {
				f.bundles = append(f.bundles, id)
			}
		}
	})
}

// Include appends nested features. IDs already present are ignored.
func (f *Feature) Include(ids ...string) error {
	return f.mutate(func() {
		for _, id := range ids {
			if !slices.Contains(f.includes, id) {
				f.includes = append(f.includes, id)
			}
		}
	})
}

// Require appends dependency declarations.
func (f *Feature) Require(reqs ...RequiredFeature) error {
	return f.mutate(func() {
		f.requires = append(f.requires, reqs...)
	})
}

// Freeze ends the configuration phase of the feature.
func (f *Feature) Freeze() {
	f.mu.Lock()
	f.frozen = true
	f.mu.Unlock()
}

// Frozen reports whether Freeze was called.
func (f *Feature) Frozen() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.frozen
}

func (f *Feature) mutate(fn func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.frozen {
		return fmt.Errorf("feature %s: %w", f.ID, ErrFeatureFrozen)
	}
	fn()
	return nil
}
