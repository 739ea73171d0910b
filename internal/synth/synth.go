// Package synth wraps plain jars into OSGi bundles.
//
// Each artifact runs through a small state machine: jars that are already
// bundles or that fail the archive probe are skipped, everything else is
// analyzed and written to the output directory. A failed synthesis never
// leaves a target file behind.
package synth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/osgify/cli/internal/bnd"
	"github.com/osgify/cli/internal/bundle"
	"github.com/osgify/cli/internal/osgi"
	"github.com/osgify/cli/internal/output"
)

// Baseline instructions applied before any configured override.
const (
	DefaultImportPackage = "*;resolution:=optional"
	DefaultExportPackage = "*"
)

// Options control synthesis.
type Options struct {
	// OutputDir receives the wrapped bundles.
	OutputDir string

	// RemoveSignature strips META-INF signature files before analysis.
	RemoveSignature bool

	// TolerateErrors turns analyzer errors into warnings.
	TolerateErrors bool

	// Compress deflates the entries of written jars.
	Compress bool

	// Classpath is passed to the analyzer.
	Classpath []string
}

// Result is the outcome of synthesizing one artifact.
type Result struct {
	Artifact *bundle.Artifact
	State    State

	// Target is the file written to the output directory. Empty unless the
	// artifact was wrapped or copied.
	Target string

	// Reason explains a skipped state.
	Reason string

	// Warnings holds analyzer warnings and tolerated errors.
	Warnings []string

	Err      error
	Duration time.Duration
}

// Synthesizer runs the wrap state machine.
type Synthesizer struct {
	opts        Options
	newAnalyzer bnd.AnalyzerFactory
	registry    *bundle.Registry
}

// New creates a Synthesizer. A nil factory selects the built-in
// InstructionAnalyzer. The registry resolves the binary of source bundles and
// may be nil.
func New(opts Options, factory bnd.AnalyzerFactory, registry *bundle.Registry) *Synthesizer {
	if factory == nil {
		factory = bnd.NewInstructionAnalyzerFactory()
	}
	return &Synthesizer{opts: opts, newAnalyzer: factory, registry: registry}
}

// Options returns the synthesis options.
func (s *Synthesizer) Options() Options {
	return s.opts
}

// Synthesize wraps a with the resolved configuration cfg. The artifact is
// frozen once this returns.
func (s *Synthesizer) Synthesize(ctx context.Context, a *bundle.Artifact, cfg bnd.Config) Result {
	start := time.Now()
	res := Result{Artifact: a, State: Classified}
	defer a.Freeze()

	finish := func(state State, err error) Result {
		res.State = state
		res.Err = err
		res.Duration = time.Since(start)
		return res
	}

	if err := ctx.Err(); err != nil {
		return finish(Failed, err)
	}

	if !a.Wrap() {
		res.Reason = a.NoWrapReason()
		return finish(SkippedNotApplicable, nil)
	}

	if reason := probe(a.File); reason != "" {
		res.Reason = reason
		return finish(SkippedEmptyArchive, nil)
	}

	target := filepath.Join(s.opts.OutputDir, a.TargetFileName())
	if err := removeTarget(target); err != nil {
		return finish(Failed, &PersistenceError{Artifact: a.ID, Target: target, Err: err})
	}

	res.State = Analyzing
	log := output.ArtifactLogger(a.ID)
	log.Debug("wrapping", "file", a.File, "target", filepath.Base(target))

	warnings, err := s.wrap(a, cfg, target)
	res.Warnings = warnings
	for _, w := range warnings {
		log.Warn(w)
	}
	if err != nil {
		_ = removeTarget(target)
		return finish(Failed, err)
	}

	res.Target = target
	return finish(Wrapped, nil)
}

// probe checks that path is a readable, non-empty archive. It returns the
// reason for skipping, or "" when the archive can be wrapped.
func probe(path string) string {
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Sprintf("not a valid archive: %v", err)
	}
	defer r.Close()
	if len(r.File) == 0 {
		return "archive is empty"
	}
	return ""
}

func removeTarget(target string) error {
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// baseline returns the instructions every wrap starts from.
func (s *Synthesizer) baseline(a *bundle.Artifact) *bnd.Properties {
	props := bnd.NewProperties(
		bnd.NoExtraHeaders, "true",
		osgi.ImportPackage, DefaultImportPackage,
		osgi.ExportPackage, DefaultExportPackage,
		osgi.BundleSymbolicName, a.SymbolicNameHeader(),
		osgi.BundleVersion, a.ModifiedVersion().String(),
	)
	if name := a.BundleName(); name != "" {
		props.Set(osgi.BundleName, name)
	}
	if t := a.Platform(); t != nil {
		props.Set(osgi.EclipsePlatformFilter, t.PlatformFilter())
	}
	if a.Source {
		bsn, version := s.binaryOf(a)
		props.Set(osgi.EclipseSourceBundle, sourceBundleHeader(bsn, version))
	}
	if s.opts.TolerateErrors {
		props.Set(bnd.FailOK, "true")
	}
	return props
}

// ownedHeaders lists the baseline headers the configuration does not set.
// Replacing an existing bundle's value for them is expected.
func ownedHeaders(base, overrides *bnd.Properties) []string {
	var owned []string
	for _, k := range base.Keys() {
		if strings.HasPrefix(k, "-") {
			continue
		}
		if _, ok := overrides.Get(k); !ok {
			owned = append(owned, k)
		}
	}
	return owned
}

// binaryOf returns the symbolic name and version of the binary bundle a
// source artifact belongs to.
func (s *Synthesizer) binaryOf(a *bundle.Artifact) (string, osgi.Version) {
	if s.registry != nil {
		if bin, ok := s.registry.BinaryFor(a.ID); ok {
			return bin.SymbolicName(), bin.ModifiedVersion()
		}
	}
	return strings.TrimSuffix(a.SymbolicName(), ".source"), a.ModifiedVersion()
}

// wrap runs one analyzer session. The analyzer is closed on every path.
func (s *Synthesizer) wrap(a *bundle.Artifact, cfg bnd.Config, target string) (warnings []string, err error) {
	an := s.newAnalyzer()
	defer func() {
		if cerr := an.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing analyzer for %s: %w", a.ID, cerr)
		}
	}()

	if len(s.opts.Classpath) > 0 {
		an.AddClasspath(s.opts.Classpath...)
	}
	if err := an.SetJar(a.File); err != nil {
		return nil, &ManifestCalculationError{Artifact: a.ID, Cause: err}
	}

	base := s.baseline(a)
	overrides := cfg.Properties()
	if owned := ownedHeaders(base, overrides); len(owned) > 0 {
		base.Set(bnd.NoOverrideWarning, strings.Join(owned, ","))
	}
	an.AddProperties(base)
	an.AddProperties(overrides)

	if s.opts.RemoveSignature {
		if removed := StripSignatures(an.Jar()); len(removed) > 0 {
			output.Debug("removed signature files", "artifact", a.ID, "files", strings.Join(removed, ","))
		}
	}

	if _, err := an.CalcManifest(); err != nil {
		return nil, &ManifestCalculationError{Artifact: a.ID, Cause: err}
	}

	warnings = an.Warnings()
	errs := an.Errors()
	if !an.IsOK() || (len(errs) > 0 && !s.opts.TolerateErrors) {
		return warnings, &ManifestCalculationError{Artifact: a.ID, Errors: errs}
	}
	for _, e := range errs {
		warnings = append(warnings, "ignored analyzer error: "+e)
	}

	if err := s.persist(an, a, target); err != nil {
		return warnings, err
	}
	return warnings, nil
}

// persist saves the analyzed jar to a temporary file next to target and
// renames it into place.
func (s *Synthesizer) persist(an bnd.Analyzer, a *bundle.Artifact, target string) error {
	fail := func(err error) error {
		return &PersistenceError{Artifact: a.ID, Target: target, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fail(err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".osgify-*.jar")
	if err != nil {
		return fail(err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fail(err)
	}

	if err := an.Save(tmpPath, s.opts.Compress); err != nil {
		_ = os.Remove(tmpPath)
		return fail(err)
	}
	if !an.IsOK() {
		_ = os.Remove(tmpPath)
		return fail(fmt.Errorf("analyzer reported errors while saving: %s", strings.Join(an.Errors(), "; ")))
	}
	if _, err := os.Stat(tmpPath); err != nil {
		return fail(fmt.Errorf("saved bundle is missing: %w", err))
	}
	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return fail(err)
	}
	return nil
}

// CopyBundle copies an artifact that is not wrapped into dir under its target
// file name.
func CopyBundle(a *bundle.Artifact, dir string) (string, error) {
	target := filepath.Join(dir, a.TargetFileName())
	data, err := os.ReadFile(a.File)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", a.File, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		_ = os.Remove(target)
		return "", &PersistenceError{Artifact: a.ID, Target: target, Err: err}
	}
	return target, nil
}
