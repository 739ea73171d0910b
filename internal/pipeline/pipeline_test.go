package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osgify/cli/internal/bnd"
	"github.com/osgify/cli/internal/bundle"
	"github.com/osgify/cli/internal/config"
	oerrors "github.com/osgify/cli/internal/errors"
	"github.com/osgify/cli/internal/feature"
	"github.com/osgify/cli/internal/osgi"
	"github.com/osgify/cli/internal/qualifier"
	"github.com/osgify/cli/internal/report"
	"github.com/osgify/cli/internal/synth"
	"github.com/osgify/cli/internal/testutil"
)

// fixedQualifier hands out the same qualifier for every bundle and feature.
type fixedQualifier string

func (f fixedQualifier) Qualifier(_, _ string, _ osgi.Version, _ string) string {
	return string(f)
}

// recordingQualifier remembers the bundle names it was asked to qualify.
type recordingQualifier struct {
	mu    sync.Mutex
	names []string
}

func (r *recordingQualifier) Qualifier(kind, name string, _ osgi.Version, _ string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if kind == qualifier.KindBundle {
		r.names = append(r.names, name)
	}
	return "q"
}

// sampleBuild lays out a plain jar with its sources, an existing bundle and a
// feature over all of them.
func sampleBuild(t *testing.T) *config.BuildFile {
	t.Helper()
	dir := t.TempDir()
	libs := filepath.Join(dir, "libs")
	testutil.PlainJar(t, libs, "foo-1.2.0.jar")
	testutil.PlainJar(t, libs, "foo-1.2.0-sources.jar")
	testutil.BundleJar(t, libs, "bar-2.0.0.jar", "org.example.bar", "2.0.0")

	return &config.BuildFile{
		Dir:         dir,
		Output:      "out",
		CopyBundles: true,
		Artifacts: []config.ArtifactEntry{
			{Path: "libs/foo-1.2.0.jar", Group: "org.example"},
			{Path: "libs/foo-1.2.0-sources.jar", Group: "org.example"},
			{Path: "libs/bar-2.0.0.jar", Platform: "gtk.linux.x86_64"},
		},
		Bnd: []config.BndEntry{
			{Match: bnd.Match{Name: "foo"}, Instructions: map[string]string{osgi.BundleVendor: "Acme"}},
		},
		Features: []feature.Definition{
			{ID: "org.example.base", Bundles: []string{"org.example.bar"}},
			{ID: "org.example.all", Bundles: []string{"foo"}, Includes: []string{"org.example.base"}},
		},
	}
}

func TestRun_EndToEnd(t *testing.T) {
	bf := sampleBuild(t)

	result, err := New(Options{BuildFile: bf, Strategy: fixedQualifier("abc123")}).Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, result.Err())

	require.Len(t, result.Bundles, 3)
	foo, src, bar := result.Bundles[0], result.Bundles[1], result.Bundles[2]

	outDir := filepath.Join(bf.Dir, "out")
	assert.Equal(t, synth.Wrapped, foo.State)
	assert.Equal(t, filepath.Join(outDir, "org.example.foo_1.2.0.abc123.jar"), foo.Target)
	assert.Equal(t, "Acme", testutil.ReadManifest(t, foo.Target).Main.Value(osgi.BundleVendor))

	assert.Equal(t, synth.Wrapped, src.State)
	assert.Equal(t, filepath.Join(outDir, "org.example.foo.source_1.2.0.abc123.jar"), src.Target)
	paired, ok := result.Registry.SourceFor(foo.Artifact.ID)
	require.True(t, ok)
	assert.Equal(t, src.Artifact.ID, paired.ID)

	assert.Equal(t, synth.SkippedNotApplicable, bar.State)
	assert.Equal(t, bundle.ReasonAlreadyBundle, bar.Reason)
	assert.Equal(t, filepath.Join(outDir, "org.example.bar_2.0.0.jar"), bar.Target, "existing bundles are copied")
	require.NotNil(t, bar.Artifact.Platform())
	assert.Equal(t, "gtk.linux.x86_64", bar.Artifact.Platform().String())

	require.Len(t, result.Features, 2)
	assert.Equal(t, "org.example.base", result.Features[0].ID, "included features come first")
	all := result.Features[1]
	assert.Equal(t, "1.0.0.abc123", all.Version.String())
	assert.Equal(t, []string{foo.Artifact.ID, src.Artifact.ID}, all.Bundles())
	assert.True(t, all.Frozen())

	require.Equal(t, filepath.Join(outDir, report.FileName), result.ReportPath)
	loaded, err := report.Load(result.ReportPath)
	require.NoError(t, err)
	assert.Len(t, loaded.Bundles, 3)
	assert.Len(t, loaded.Features, 2)
}

func TestRun_MissingArtifact(t *testing.T) {
	bf := sampleBuild(t)
	bf.Artifacts = append(bf.Artifacts, config.ArtifactEntry{Path: "libs/missing-1.0.jar"})

	result, err := New(Options{BuildFile: bf}).Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, result)

	var missing *MissingArtifactError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, 3, missing.Index)
	assert.True(t, errors.Is(err, oerrors.ErrNotFound))
	assert.NoDirExists(t, filepath.Join(bf.Dir, "out"), "nothing is written before synthesis")
}

func TestRun_FeatureCycleIsFatal(t *testing.T) {
	bf := sampleBuild(t)
	bf.Features = []feature.Definition{
		{ID: "x", Includes: []string{"y"}},
		{ID: "y", Includes: []string{"x"}},
	}

	result, err := New(Options{BuildFile: bf}).Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, feature.ErrFeatureCycle))
	assert.NoFileExists(t, filepath.Join(bf.Dir, "out", report.FileName))
}

func TestRun_FailedBundleDoesNotStopSiblings(t *testing.T) {
	bf := sampleBuild(t)
	testutil.WriteJar(t, filepath.Join(bf.Dir, "libs"), "bad-1.0.0.jar",
		testutil.JarEntry{Name: "Main.class", Content: "x"},
	)
	bf.Artifacts = append(bf.Artifacts, config.ArtifactEntry{Path: "libs/bad-1.0.0.jar"})

	result, err := New(Options{BuildFile: bf, Strategy: fixedQualifier("q")}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, synth.Wrapped, result.Bundles[0].State)
	assert.Equal(t, synth.Failed, result.Bundles[3].State)
	assert.Equal(t, []string{result.Bundles[3].Artifact.ID}, result.Failed())

	runErr := result.Err()
	require.Error(t, runErr)
	assert.True(t, errors.Is(runErr, oerrors.ErrSynthesis))

	entry, ok := result.Report.Bundle(result.Bundles[3].Artifact.ID)
	require.True(t, ok)
	assert.Equal(t, "failed", entry.State)
	assert.NotEmpty(t, entry.Error)
}

func TestRun_CounterStrategyPersistsState(t *testing.T) {
	bf := sampleBuild(t)
	bf.Features = nil
	bf.Qualifier = config.QualifierConfig{
		Strategy:  config.StrategyCounter,
		StateFile: filepath.Join(t.TempDir(), "state", "qualifiers.yaml"),
	}

	first, err := New(Options{BuildFile: bf}).Run(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, bf.Qualifier.StateFile)

	second, err := New(Options{BuildFile: bf}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t,
		first.Bundles[0].Artifact.ModifiedVersion(),
		second.Bundles[0].Artifact.ModifiedVersion(),
		"unchanged input keeps its qualifier across builds",
	)
}

func TestRun_SymbolicNameOverrideKeysQualifier(t *testing.T) {
	bf := sampleBuild(t)
	bf.Features = nil
	bf.Artifacts[0].SymbolicName = "com.acme.foo"
	strategy := &recordingQualifier{}

	result, err := New(Options{BuildFile: bf, Strategy: strategy, NoReport: true}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "com.acme.foo", result.Bundles[0].Artifact.SymbolicName())
	assert.Contains(t, strategy.names, "com.acme.foo")
	assert.NotContains(t, strategy.names, "org.example.foo")
}

func TestRun_CancelledContext(t *testing.T) {
	bf := sampleBuild(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New(Options{BuildFile: bf}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

func TestRun_NoReport(t *testing.T) {
	bf := sampleBuild(t)

	result, err := New(Options{BuildFile: bf, NoReport: true}).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.ReportPath)
	assert.NotNil(t, result.Report)
	assert.NoFileExists(t, filepath.Join(bf.Dir, "out", report.FileName))
}

func TestOptions_Validate(t *testing.T) {
	assert.Error(t, Options{}.Validate())
	assert.Error(t, Options{BuildFile: &config.BuildFile{}}.Validate(), "output directory is required")
	assert.NoError(t, Options{BuildFile: &config.BuildFile{}, OutputDir: t.TempDir()}.Validate())
}

func TestRun_UnknownStrategy(t *testing.T) {
	bf := sampleBuild(t)
	bf.Qualifier.Strategy = "random"

	_, err := New(Options{BuildFile: bf}).Run(context.Background())
	assert.ErrorContains(t, err, `unknown qualifier strategy "random"`)
}

func TestFailedBundlesError(t *testing.T) {
	err := &FailedBundlesError{IDs: []string{"a:1", "b:2"}, Total: 5}

	assert.Equal(t, "2 of 5 artifacts failed: a:1, b:2", err.Error())
	assert.Equal(t, "a:1", err.Artifact())
	assert.Empty(t, (&FailedBundlesError{}).Artifact())
	assert.True(t, errors.Is(err, oerrors.ErrSynthesis))

	var _ ArtifactError = err
	var _ ArtifactError = &MissingArtifactError{}
}
