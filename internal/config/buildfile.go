package config

import (
	"fmt"
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"

	"github.com/osgify/cli/internal/bnd"
	"github.com/osgify/cli/internal/feature"
)

// DefaultBuildFile is the build file name looked up in the working directory.
const DefaultBuildFile = "osgify.yaml"

// ArtifactEntry declares one input jar.
type ArtifactEntry struct {
	// Path is the jar location, relative to the build file.
	Path string `json:"path"`

	// Group, Name and Version override the coordinates derived from the
	// file name.
	Group      string `json:"group,omitempty"`
	Name       string `json:"name,omitempty"`
	Version    string `json:"version,omitempty"`
	Classifier string `json:"classifier,omitempty"`

	// SymbolicName and BundleName override the derived bundle identity.
	SymbolicName string `json:"symbolicName,omitempty"`
	BundleName   string `json:"bundleName,omitempty"`

	// Platform restricts the bundle to one ws.os.arch triple.
	Platform string `json:"platform,omitempty"`
}

// BndEntry is a block of bnd instructions applied to matching artifacts.
type BndEntry struct {
	Match        bnd.Match         `json:"match,omitempty"`
	Instructions map[string]string `json:"instructions"`
}

// BuildFile is a project build description (osgify.yaml).
type BuildFile struct {
	Output          string               `json:"output,omitempty"`
	Workers         int                  `json:"workers,omitempty"`
	RemoveSignature bool                 `json:"removeSignature,omitempty"`
	TolerateErrors  bool                 `json:"tolerateErrors,omitempty"`
	CopyBundles     bool                 `json:"copyBundles,omitempty"`
	Uncompressed    bool                 `json:"uncompressed,omitempty"`
	Qualifier       QualifierConfig      `json:"qualifier,omitempty"`
	Artifacts       []ArtifactEntry      `json:"artifacts,omitempty"`
	Bnd             []BndEntry           `json:"bnd,omitempty"`
	Features        []feature.Definition `json:"features,omitempty"`
	Log             LogConfig            `json:"log,omitempty"`

	// Dir is the directory holding the build file. Relative paths resolve
	// against it.
	Dir string `json:"-"`
}

// LoadBuildFile reads and decodes the build file at path.
// Unknown fields are rejected.
func LoadBuildFile(path string) (*BuildFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading build file: %w", err)
	}

	bf, err := ParseBuildFile(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	bf.Dir = abs

	return bf, nil
}

// ParseBuildFile decodes build file YAML.
func ParseBuildFile(data []byte) (*BuildFile, error) {
	var bf BuildFile
	if err := yaml.UnmarshalStrict(data, &bf); err != nil {
		return nil, err
	}
	return &bf, nil
}

// Resolve returns p relative to the build file directory.
func (b *BuildFile) Resolve(p string) string {
	p = ExpandTilde(p)
	if p == "" || filepath.IsAbs(p) || b.Dir == "" {
		return p
	}
	return filepath.Join(b.Dir, p)
}

// Store builds the bnd configuration store from the bnd blocks, in file
// order.
func (b *BuildFile) Store() *bnd.Store {
	store := bnd.NewStore()
	for _, e := range b.Bnd {
		_ = store.Add(bnd.Instructions{
			Match:  e.Match,
			Values: bnd.PropertiesFromMap(e.Instructions),
		})
	}
	return store
}

// Merge fills fields unset in the build file from the user configuration.
func (b *BuildFile) Merge(cfg *Config) {
	if cfg == nil {
		return
	}
	if b.Output == "" {
		b.Output = cfg.Output
	}
	if b.Workers == 0 {
		b.Workers = cfg.Workers
	}
	if b.Qualifier.Strategy == "" {
		b.Qualifier.Strategy = cfg.Qualifier.Strategy
	}
	if b.Qualifier.Prefix == "" {
		b.Qualifier.Prefix = cfg.Qualifier.Prefix
	}
	if b.Qualifier.StateFile == "" {
		b.Qualifier.StateFile = cfg.Qualifier.StateFile
	}
	if b.Log.Timestamps == nil {
		b.Log.Timestamps = cfg.Log.Timestamps
	}
}
