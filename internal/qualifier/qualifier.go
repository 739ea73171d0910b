// Package qualifier assigns the qualifier segment of bundle and feature
// versions.
//
// Two strategies are provided. ContentHash uses the instance identity token
// (the digest of the applied bnd configuration) directly: it is stateless,
// deterministic and safe for parallel use, and is the default. Counter hands
// out short readable qualifiers from per-artifact counters; given a state
// file it reproduces the same qualifier for unchanged inputs across runs.
package qualifier

import (
	"github.com/osgify/cli/internal/osgi"
)

// Artifact kinds passed as the type tag.
const (
	KindBundle  = "bundle"
	KindFeature = "feature"
)

// Strategy maps an artifact instance to the qualifier appended to its
// version. Implementations must be deterministic for identical inputs and
// must not panic.
type Strategy interface {
	Qualifier(kind, name string, version osgi.Version, ident string) string
}

// DefaultFallback is the ContentHash qualifier for artifacts without an
// identity token.
const DefaultFallback = "default"

// ContentHash returns the identity token as qualifier.
type ContentHash struct {
	// Prefix is prepended to every qualifier.
	Prefix string
	// Fallback is used when the identity token is empty.
	Fallback string
}

// NewContentHash creates a ContentHash strategy with the default fallback.
func NewContentHash(prefix string) *ContentHash {
	return &ContentHash{Prefix: prefix, Fallback: DefaultFallback}
}

// Qualifier returns prefix + ident, sanitized to the qualifier alphabet.
func (c *ContentHash) Qualifier(_, _ string, _ osgi.Version, ident string) string {
	if ident == "" {
		ident = c.Fallback
	}
	return osgi.SanitizeQualifier(c.Prefix + ident)
}

// Apply computes the qualifier for an artifact and applies it to version.
func Apply(s Strategy, kind, name string, version osgi.Version, ident string) osgi.Version {
	return version.WithQualifier(s.Qualifier(kind, name, version.Base(), ident))
}
