package bundle

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/osgify/cli/internal/bnd"
	"github.com/osgify/cli/internal/osgi"
	"github.com/osgify/cli/internal/qualifier"
)

// Classifier turns incoming files into artifacts.
type Classifier struct {
	// Store supplies the bnd fragments evaluated per artifact.
	Store bnd.Source
	// Strategy assigns version qualifiers.
	Strategy qualifier.Strategy
}

// NewClassifier creates a Classifier. A nil strategy selects ContentHash.
func NewClassifier(store bnd.Source, strategy qualifier.Strategy) *Classifier {
	if store == nil {
		store = bnd.NewStore()
	}
	if strategy == nil {
		strategy = qualifier.NewContentHash("")
	}
	return &Classifier{Store: store, Strategy: strategy}
}

// Overrides replace derived naming before the version qualifier is assigned.
type Overrides struct {
	SymbolicName string
	BundleName   string
}

// Classify inspects the jar at path and builds its artifact. Missing
// coordinate parts are derived from the file name.
//
// Jars whose manifest already declares a Bundle-SymbolicName are not wrapped
// unless a non-empty bnd configuration applies to them. Jars that cannot be
// opened are classified as plain jars; synthesis reports them as skipped.
func (c *Classifier) Classify(path string, coords Coordinates) (*Artifact, error) {
	return c.ClassifyWith(path, coords, Overrides{})
}

// ClassifyWith is Classify with naming overrides. The qualifier is keyed on
// the overridden symbolic name.
func (c *Classifier) ClassifyWith(path string, coords Coordinates, ov Overrides) (*Artifact, error) {
	fromFile := CoordinatesFromFile(path)
	if coords.Name == "" {
		coords.Name = fromFile.Name
	}
	if coords.Version == "" {
		coords.Version = fromFile.Version
	}
	if coords.Classifier == "" {
		coords.Classifier = fromFile.Classifier
	}
	if coords.Name == "" {
		return nil, fmt.Errorf("classifying %s: cannot derive an artifact name", path)
	}

	a := NewArtifact(path, coords)
	a.symbolicName = SymbolicNameFor(coords.Group, coords.Name)
	if a.Source {
		a.symbolicName += sourceSuffix
		a.bundleName += " Sources"
	}

	cfg := c.Store.Evaluate(bnd.EvalContext{
		Group:   coords.Group,
		Name:    coords.Name,
		Version: coords.Version,
		File:    filepath.Base(path),
	})

	// An unreadable manifest is left to the synthesis probe.
	m, err := bnd.ReadJarManifest(path)
	if err == nil && m.IsBundle() {
		a.symbolicName = m.SymbolicName()
		a.bsnParameters = m.SymbolicNameParameters()
		if v := strings.TrimSpace(m.Main.Value(osgi.BundleVersion)); v != "" {
			a.ManifestVersion = v
			if a.OriginalVersion == "" {
				a.OriginalVersion = v
			}
		}
		if name := m.Main.Value(osgi.BundleName); name != "" {
			a.bundleName = name
		}
		if cfg.IsEmpty() {
			a.wrap = false
			a.noWrapReason = ReasonAlreadyBundle
		}
	}

	if ov.SymbolicName != "" {
		a.symbolicName = ov.SymbolicName
	}
	if ov.BundleName != "" {
		a.bundleName = ov.BundleName
	}

	if err := a.Configure(cfg, c.Strategy); err != nil {
		return nil, err
	}
	return a, nil
}
