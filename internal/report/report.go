// Package report records the outcome of a build as YAML and compares reports
// of two builds.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/osgify/cli/internal/bundle"
	"github.com/osgify/cli/internal/feature"
	"github.com/osgify/cli/internal/synth"
)

// FileName is the report written into the output directory.
const FileName = "bundles.yaml"

// Bundle is the report entry of one artifact.
type Bundle struct {
	ID           string   `yaml:"id"`
	File         string   `yaml:"file"`
	SymbolicName string   `yaml:"symbolicName"`
	Version      string   `yaml:"version"`
	State        string   `yaml:"state"`
	Target       string   `yaml:"target,omitempty"`
	Reason       string   `yaml:"reason,omitempty"`
	Source       bool     `yaml:"source,omitempty"`
	Binary       string   `yaml:"binary,omitempty"`
	SourceBundle string   `yaml:"sourceBundle,omitempty"`
	Platform     string   `yaml:"platform,omitempty"`
	Identity     string   `yaml:"identity,omitempty"`
	Warnings     []string `yaml:"warnings,omitempty"`
	Error        string   `yaml:"error,omitempty"`
}

// Requirement is a required feature entry.
type Requirement struct {
	Feature string `yaml:"feature"`
	Version string `yaml:"version,omitempty"`
	Match   string `yaml:"match,omitempty"`
}

// Feature is the report entry of one feature.
type Feature struct {
	ID       string        `yaml:"id"`
	Label    string        `yaml:"label,omitempty"`
	Version  string        `yaml:"version"`
	Provider string        `yaml:"provider,omitempty"`
	Bundles  []string      `yaml:"bundles,omitempty"`
	Includes []string      `yaml:"includes,omitempty"`
	Requires []Requirement `yaml:"requires,omitempty"`
}

// Report is the outcome of one build.
type Report struct {
	Bundles  []Bundle  `yaml:"bundles"`
	Features []Feature `yaml:"features,omitempty"`
}

// New builds a report from synthesis results and assembled features.
// Results are reported in the given order.
func New(results []synth.Result, reg *bundle.Registry, features []*feature.Feature) *Report {
	r := &Report{Bundles: make([]Bundle, 0, len(results))}
	for _, res := range results {
		r.Bundles = append(r.Bundles, bundleEntry(res, reg))
	}
	for _, f := range features {
		r.Features = append(r.Features, featureEntry(f))
	}
	return r
}

func bundleEntry(res synth.Result, reg *bundle.Registry) Bundle {
	a := res.Artifact
	b := Bundle{
		ID:           a.ID,
		File:         a.File,
		SymbolicName: a.SymbolicName(),
		Version:      a.ModifiedVersion().String(),
		State:        res.State.String(),
		Reason:       res.Reason,
		Source:       a.Source,
		Identity:     a.BndConfig().Identity(),
		Warnings:     res.Warnings,
	}
	if res.Target != "" {
		b.Target = filepath.Base(res.Target)
	}
	if t := a.Platform(); t != nil {
		b.Platform = t.String()
	}
	if res.Err != nil {
		b.Error = res.Err.Error()
	}
	if reg != nil {
		if bin, ok := reg.BinaryFor(a.ID); ok {
			b.Binary = bin.ID
		}
		if src, ok := reg.SourceFor(a.ID); ok {
			b.SourceBundle = src.ID
		}
	}
	return b
}

func featureEntry(f *feature.Feature) Feature {
	entry := Feature{
		ID:       f.ID,
		Label:    f.Label,
		Version:  f.Version.String(),
		Provider: f.Provider,
		Bundles:  f.Bundles(),
		Includes: f.IncludedFeatures(),
	}
	for _, req := range f.RequiredFeatures() {
		entry.Requires = append(entry.Requires, Requirement{
			Feature: req.FeatureName,
			Version: req.Version,
			Match:   string(req.Match),
		})
	}
	return entry
}

// Bundle returns the entry with the given ID.
func (r *Report) Bundle(id string) (Bundle, bool) {
	for _, b := range r.Bundles {
		if b.ID == id {
			return b, true
		}
	}
	return Bundle{}, false
}

// Marshal renders the report as YAML.
func (r *Report) Marshal() ([]byte, error) {
	return yaml.Marshal(r)
}

// Write writes the report to path.
func (r *Report) Write(path string) error {
	data, err := r.Marshal()
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// Load reads a report written by Write.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing report %s: %w", path, err)
	}
	return &r, nil
}
