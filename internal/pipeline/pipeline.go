// Package pipeline drives a complete build: it classifies the declared jars,
// pairs sources with their binaries, assembles features, synthesizes bundles
// in parallel and records the outcome in a report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/osgify/cli/internal/bnd"
	"github.com/osgify/cli/internal/bundle"
	"github.com/osgify/cli/internal/config"
	"github.com/osgify/cli/internal/feature"
	"github.com/osgify/cli/internal/output"
	"github.com/osgify/cli/internal/platform"
	"github.com/osgify/cli/internal/qualifier"
	"github.com/osgify/cli/internal/report"
	"github.com/osgify/cli/internal/synth"
)

// Options configures a build.
type Options struct {
	// BuildFile declares the artifacts, bnd instructions and features.
	// Required.
	BuildFile *config.BuildFile

	// OutputDir overrides BuildFile.Output.
	OutputDir string

	// Factory creates manifest analyzers. Nil selects the built-in one.
	Factory bnd.AnalyzerFactory

	// Strategy overrides the qualifier strategy declared in the build file.
	Strategy qualifier.Strategy

	// NoReport skips writing the report file.
	NoReport bool
}

// Validate checks the options.
func (o Options) Validate() error {
	if o.BuildFile == nil {
		return errors.New("build file is required")
	}
	if o.outputDir() == "" {
		return errors.New("output directory is required")
	}
	return nil
}

func (o Options) outputDir() string {
	if o.OutputDir != "" {
		return o.OutputDir
	}
	if o.BuildFile == nil || o.BuildFile.Output == "" {
		return ""
	}
	return o.BuildFile.Resolve(o.BuildFile.Output)
}

// Result is the outcome of a build.
type Result struct {
	// Bundles holds one synthesis result per declared artifact, in build
	// file order.
	Bundles []synth.Result

	// Features are the assembled features, leaves first.
	Features []*feature.Feature

	// Registry holds every classified artifact and its pairing.
	Registry *bundle.Registry

	// Report is the build report. ReportPath is empty when it was not
	// written.
	Report     *report.Report
	ReportPath string
}

// Failed returns the IDs of artifacts whose synthesis failed.
func (r *Result) Failed() []string {
	var ids []string
	for _, b := range r.Bundles {
		if b.State == synth.Failed {
			ids = append(ids, b.Artifact.ID)
		}
	}
	return ids
}

// Err returns a FailedBundlesError when any artifact failed, else nil.
func (r *Result) Err() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}
	return &FailedBundlesError{IDs: failed, Total: len(r.Bundles)}
}

// Pipeline runs builds.
type Pipeline struct {
	opts Options
}

// New creates a Pipeline.
func New(opts Options) *Pipeline {
	return &Pipeline{opts: opts}
}

// Run executes the build.
//
// Phase sequence:
//  1. CLASSIFY:  declared jars -> *bundle.Artifact with modified versions
//  2. PAIR:      sources matched to binaries by coordinates
//  3. ASSEMBLE:  features built leaves first; a cycle is fatal
//  4. SYNTHESIZE: wrap-eligible artifacts in parallel
//  5. COPY:      already-bundles copied when copyBundles is set
//  6. RECORD:    qualifier state saved and report written
//
// Fatal errors from phases 1-3 return (nil, err) before any file is written.
// Per-artifact failures land in Result.Bundles; use Result.Err to test for
// them. Context cancellation during synthesis is fatal.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	if err := p.opts.Validate(); err != nil {
		return nil, err
	}
	bf := p.opts.BuildFile
	outDir := p.opts.outputDir()

	strategy, counter, err := p.strategy()
	if err != nil {
		return nil, err
	}

	// Phase 1: CLASSIFY
	store := bnd.Seal(bf.Store())
	classifier := bundle.NewClassifier(store, strategy)

	reg := bundle.NewRegistry()
	for i, entry := range bf.Artifacts {
		a, err := classify(classifier, bf, i, entry)
		if err != nil {
			return nil, err
		}
		if err := reg.Add(a); err != nil {
			return nil, fmt.Errorf("artifacts[%d]: %w", i, err)
		}
		output.Debug("artifact classified",
			"id", a.ID,
			"symbolicName", a.SymbolicName(),
			"version", a.ModifiedVersion().String(),
			"wrap", a.Wrap(),
		)
	}

	// Phase 2: PAIR
	paired, err := reg.PairByCoordinates()
	if err != nil {
		return nil, err
	}
	output.Debug("sources paired", "count", paired)

	// Phase 3: ASSEMBLE
	assembler := feature.NewAssembler(strategy)
	for _, d := range bf.Features {
		if err := assembler.Define(d); err != nil {
			return nil, err
		}
	}
	features, err := assembler.Assemble(reg)
	if err != nil {
		return nil, err
	}

	// Phase 4: SYNTHESIZE
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	s := synth.New(synth.Options{
		OutputDir:       outDir,
		RemoveSignature: bf.RemoveSignature,
		TolerateErrors:  bf.TolerateErrors,
		Compress:        !bf.Uncompressed,
	}, p.opts.Factory, reg)

	artifacts := reg.All()
	jobs := make([]synth.Job, 0, len(artifacts))
	for _, a := range artifacts {
		jobs = append(jobs, synth.Job{Artifact: a, Config: a.BndConfig()})
	}

	results := synth.NewPool(s, bf.Workers).Run(ctx, jobs)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Phase 5: COPY
	if bf.CopyBundles {
		copyBundles(results, outDir)
	}

	// Phase 6: RECORD
	if counter != nil {
		if err := counter.Save(config.ExpandTilde(bf.Qualifier.StateFile)); err != nil {
			return nil, fmt.Errorf("saving qualifier state: %w", err)
		}
	}

	result := &Result{
		Bundles:  results,
		Features: features,
		Registry: reg,
		Report:   report.New(results, reg, features),
	}

	if !p.opts.NoReport {
		result.ReportPath = filepath.Join(outDir, report.FileName)
		if err := result.Report.Write(result.ReportPath); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// strategy returns the qualifier strategy. The counter is returned separately
// so its state can be saved after the build.
func (p *Pipeline) strategy() (qualifier.Strategy, *qualifier.Counter, error) {
	if p.opts.Strategy != nil {
		counter, _ := p.opts.Strategy.(*qualifier.Counter)
		return p.opts.Strategy, counter, nil
	}

	q := p.opts.BuildFile.Qualifier
	switch q.Strategy {
	case "", config.StrategyContentHash:
		return qualifier.NewContentHash(q.Prefix), nil, nil
	case config.StrategyCounter:
		if q.StateFile == "" {
			return nil, nil, errors.New("qualifier.stateFile is required by the counter strategy")
		}
		counter, err := qualifier.LoadCounter(config.ExpandTilde(q.StateFile), q.Prefix)
		if err != nil {
			return nil, nil, fmt.Errorf("loading qualifier state: %w", err)
		}
		return counter, counter, nil
	default:
		return nil, nil, fmt.Errorf("unknown qualifier strategy %q", q.Strategy)
	}
}

func classify(c *bundle.Classifier, bf *config.BuildFile, index int, entry config.ArtifactEntry) (*bundle.Artifact, error) {
	path := bf.Resolve(entry.Path)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, &MissingArtifactError{Path: path, Index: index}
		}
		return nil, err
	}

	a, err := c.ClassifyWith(path, bundle.Coordinates{
		Group:      entry.Group,
		Name:       entry.Name,
		Version:    entry.Version,
		Classifier: entry.Classifier,
	}, bundle.Overrides{
		SymbolicName: entry.SymbolicName,
		BundleName:   entry.BundleName,
	})
	if err != nil {
		return nil, fmt.Errorf("artifacts[%d]: %w", index, err)
	}

	if entry.Platform != "" {
		t, err := platform.Parse(entry.Platform)
		if err != nil {
			return nil, fmt.Errorf("artifacts[%d]: %w", index, err)
		}
		if err := a.SetPlatform(&t); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// copyBundles copies artifacts that are already bundles into outDir. A failed
// copy marks the result as failed.
func copyBundles(results []synth.Result, outDir string) {
	for i := range results {
		res := &results[i]
		if res.State != synth.SkippedNotApplicable || res.Artifact.NoWrapReason() != bundle.ReasonAlreadyBundle {
			continue
		}
		target, err := synth.CopyBundle(res.Artifact, outDir)
		if err != nil {
			res.State = synth.Failed
			res.Err = err
			output.ArtifactLogger(res.Artifact.ID).Error("copying bundle", "err", err)
			continue
		}
		res.Target = target
		output.ArtifactLogger(res.Artifact.ID).Debug("bundle copied", "target", filepath.Base(target))
	}
}
