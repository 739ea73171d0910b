// Package bundle models the jars that become OSGi bundles: their identity,
// wrap eligibility and source/binary pairing.
package bundle

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/osgify/cli/internal/bnd"
	"github.com/osgify/cli/internal/osgi"
	"github.com/osgify/cli/internal/platform"
	"github.com/osgify/cli/internal/qualifier"
)

// ReasonAlreadyBundle is the no-wrap reason of jars that carry OSGi metadata.
const ReasonAlreadyBundle = "already a bundle"

// SourcesClassifier marks source jars.
const SourcesClassifier = "sources"

// sourceSuffix is appended to the symbolic name of source bundles.
const sourceSuffix = ".source"

// Coordinates identify an artifact the way a Maven-style resolver does.
type Coordinates struct {
	Group      string `json:"group,omitempty"`
	Name       string `json:"name"`
	Version    string `json:"version,omitempty"`
	Classifier string `json:"classifier,omitempty"`
}

// String renders group:name:version[:classifier], omitting an empty group.
func (c Coordinates) String() string {
	parts := make([]string, 0, 4)
	if c.Group != "" {
		parts = append(parts, c.Group)
	}
	parts = append(parts, c.Name, c.Version)
	if c.Classifier != "" {
		parts = append(parts, c.Classifier)
	}
	return strings.Join(parts, ":")
}

// IsSource reports whether the coordinates name a sources jar.
func (c Coordinates) IsSource() bool {
	return c.Classifier == SourcesClassifier
}

// Binary returns the coordinates without classifier.
func (c Coordinates) Binary() Coordinates {
	c.Classifier = ""
	return c
}

// CoordinatesFromFile derives coordinates from a jar file name such as
// foo-1.2.0.jar or foo-1.2.0-sources.jar. The group is left empty.
func CoordinatesFromFile(path string) Coordinates {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var c Coordinates
	if trimmed, ok := strings.CutSuffix(base, "-"+SourcesClassifier); ok {
		c.Classifier = SourcesClassifier
		base = trimmed
	}

	c.Name = base
	for i := len(base) - 1; i > 0; i-- {
		if base[i-1] == '-' && base[i] >= '0' && base[i] <= '9' {
			c.Name = base[:i-1]
			c.Version = base[i:]
			break
		}
	}
	return c
}

// SymbolicNameFor derives a bundle symbolic name from Maven coordinates.
// A name repeating the last group segment is collapsed into the group, so
// org.apache.commons:commons-lang3 becomes org.apache.commons.lang3.
func SymbolicNameFor(group, name string) string {
	if group == "" {
		return name
	}
	last := group[strings.LastIndex(group, ".")+1:]
	switch {
	case name == last:
		return group
	case strings.HasPrefix(name, group+"."):
		return name
	case strings.HasPrefix(name, last+"-"), strings.HasPrefix(name, last+"."):
		return group + "." + name[len(last)+1:]
	}
	return group + "." + name
}

// Artifact is one file destined to become, or already being, an OSGi bundle.
//
// Identity fields are fixed at construction. Everything else is mutable until
// Freeze is called, after which mutators return ErrFrozen.
type Artifact struct {
	ID          string
	File        string
	Coordinates Coordinates

	// OriginalVersion is the resolver-side version from the coordinates or
	// the file name.
	OriginalVersion string

	// ManifestVersion is the Bundle-Version of a jar that already is a
	// bundle. Bundles that are not rewrapped keep it.
	ManifestVersion string

	Source bool

	mu              sync.RWMutex
	frozen          bool
	modifiedVersion osgi.Version
	bundleName      string
	symbolicName    string
	bsnParameters   string
	wrap            bool
	noWrapReason    string
	platform        *platform.Triple
	bndConfig       bnd.Config
}

// NewArtifact creates a wrap-eligible artifact for file.
func NewArtifact(file string, coords Coordinates) *Artifact {
	return &Artifact{
		ID:              coords.String(),
		File:            file,
		Coordinates:     coords,
		OriginalVersion: coords.Version,
		Source:          coords.IsSource(),
		bundleName:      coords.Name,
		wrap:            true,
	}
}

// String returns the artifact ID.
func (a *Artifact) String() string {
	return a.ID
}

// ModifiedVersion is the original version with the assigned qualifier.
func (a *Artifact) ModifiedVersion() osgi.Version {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.modifiedVersion
}

// BundleName is the human readable Bundle-Name.
func (a *Artifact) BundleName() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.bundleName
}

// SymbolicName is the Bundle-SymbolicName.
func (a *Artifact) SymbolicName() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.symbolicName
}

// SymbolicNameHeader is the Bundle-SymbolicName header value: the symbolic
// name followed by the directives and attributes of the original manifest.
func (a *Artifact) SymbolicNameHeader() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.symbolicName + a.bsnParameters
}

// Wrap reports whether the artifact is synthesized with bnd.
func (a *Artifact) Wrap() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.wrap
}

// NoWrapReason explains why Wrap is false.
func (a *Artifact) NoWrapReason() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.noWrapReason
}

// Platform is the platform filter triple, or nil.
func (a *Artifact) Platform() *platform.Triple {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.platform == nil {
		return nil
	}
	t := *a.platform
	return &t
}

// BndConfig is the resolved bnd configuration applied when wrapping.
func (a *Artifact) BndConfig() bnd.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.bndConfig
}

// TargetFileName is the output file name: <symbolic-name>_<version>.jar.
func (a *Artifact) TargetFileName() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.symbolicName + "_" + a.modifiedVersion.String() + ".jar"
}

// Frozen reports whether Freeze was called.
func (a *Artifact) Frozen() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.frozen
}

// Freeze makes the artifact immutable. It is called once synthesis consumed
// the artifact and cannot be undone.
func (a *Artifact) Freeze() {
	a.mu.Lock()
	a.frozen = true
	a.mu.Unlock()
}

// SetSymbolicName overrides the symbolic name.
func (a *Artifact) SetSymbolicName(name string) error {
	return a.mutate(func() { a.symbolicName = name })
}

// SetBundleName overrides the Bundle-Name.
func (a *Artifact) SetBundleName(name string) error {
	return a.mutate(func() { a.bundleName = name })
}

// SetPlatform restricts the bundle to a platform. A nil triple removes the
// restriction.
func (a *Artifact) SetPlatform(t *platform.Triple) error {
	return a.mutate(func() {
		if t == nil {
			a.platform = nil
			return
		}
		c := *t
		a.platform = &c
	})
}

// SetModifiedVersion sets the final bundle version.
func (a *Artifact) SetModifiedVersion(v osgi.Version) error {
	return a.mutate(func() { a.modifiedVersion = v })
}

// SkipWrap marks the artifact as not to be wrapped. The reason is required.
func (a *Artifact) SkipWrap(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("artifact %s: no-wrap reason must not be empty", a.ID)
	}
	return a.mutate(func() {
		a.wrap = false
		a.noWrapReason = reason
	})
}

// ForceWrap marks the artifact for wrapping and clears any no-wrap reason.
func (a *Artifact) ForceWrap() error {
	return a.mutate(func() {
		a.wrap = true
		a.noWrapReason = ""
	})
}

// Configure applies a resolved bnd configuration and derives the modified
// version from the original version with a qualifier keyed on the
// configuration identity. Artifacts that are not wrapped keep their version,
// preferring the manifest's Bundle-Version.
func (a *Artifact) Configure(cfg bnd.Config, strategy qualifier.Strategy) error {
	wrap := a.Wrap()
	raw := a.OriginalVersion
	if !wrap && a.ManifestVersion != "" {
		raw = a.ManifestVersion
	}
	original, err := osgi.ParseVersion(raw)
	if err != nil {
		return fmt.Errorf("artifact %s: %w", a.ID, err)
	}
	return a.mutate(func() {
		a.bndConfig = cfg
		if !wrap {
			a.modifiedVersion = original
			return
		}
		a.modifiedVersion = qualifier.Apply(strategy, qualifier.KindBundle, a.symbolicName, original, cfg.Identity())
	})
}

// alignWithBinary makes a source artifact follow its binary's symbolic name
// and version.
func (a *Artifact) alignWithBinary(binary *Artifact) error {
	bsn := binary.SymbolicName()
	version := binary.ModifiedVersion()
	name := binary.BundleName()
	return a.mutate(func() {
		a.symbolicName = bsn + sourceSuffix
		a.modifiedVersion = version
		a.bundleName = name + " Sources"
	})
}

func (a *Artifact) mutate(fn func()) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.frozen {
		return fmt.Errorf("artifact %s: %w", a.ID, ErrFrozen)
	}
	fn()
	return nil
}
