package feature

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osgify/cli/internal/bundle"
	"github.com/osgify/cli/internal/osgi"
)

func registry(t *testing.T) *bundle.Registry {
	t.Helper()
	reg := bundle.NewRegistry()
	foo := bundle.NewArtifact("foo.jar", bundle.Coordinates{Group: "org.example", Name: "foo", Version: "1.0.0"})
	require.NoError(t, foo.SetSymbolicName("org.example.foo"))
	require.NoError(t, foo.SetModifiedVersion(osgi.MustParseVersion("1.0.0.q1")))
	fooSrc := bundle.NewArtifact("foo-sources.jar", bundle.Coordinates{Group: "org.example", Name: "foo", Version: "1.0.0", Classifier: "sources"})
	bar := bundle.NewArtifact("bar.jar", bundle.Coordinates{Name: "bar", Version: "2.0.0"})
	require.NoError(t, bar.SetSymbolicName("bar"))
	require.NoError(t, reg.Add(foo, fooSrc, bar))
	require.NoError(t, reg.Pair(foo.ID, fooSrc.ID))
	return reg
}

func ids(features []*Feature) []string {
	out := make([]string, 0, len(features))
	for _, f := range features {
		out = append(out, f.ID)
	}
	return out
}

func TestParseMatchRule(t *testing.T) {
	tests := map[string]MatchRule{
		"":               "",
		"perfect":        MatchPerfect,
		"exact":          MatchPerfect,
		"Equivalent":     MatchEquivalent,
		"compatible":     MatchCompatible,
		"greaterOrEqual": MatchGreaterOrEqual,
	}
	for in, want := range tests {
		got, err := ParseMatchRule(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseMatchRule("newest")
	assert.Error(t, err)
}

func TestAssemble_BottomUp(t *testing.T) {
	a := NewAssembler(nil)
	require.NoError(t, a.Define(Definition{ID: "top", Includes: []string{"mid", "leaf"}}))
	require.NoError(t, a.Define(Definition{ID: "mid", Includes: []string{"leaf"}, Bundles: []string{"bar"}}))
	require.NoError(t, a.Define(Definition{ID: "leaf", Bundles: []string{"org.example.foo"}}))

	features, err := a.Assemble(registry(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"leaf", "mid", "top"}, ids(features))

	for _, f := range features {
		assert.True(t, f.Frozen(), f.ID)
	}
}

func TestAssemble_AttachesPairedSources(t *testing.T) {
	a := NewAssembler(nil)
	require.NoError(t, a.Define(Definition{ID: "f", Bundles: []string{"org.example:foo:1.0.0", "bar"}}))

	features, err := a.Assemble(registry(t))
	require.NoError(t, err)
	require.Len(t, features, 1)
	assert.Equal(t, []string{"org.example:foo:1.0.0", "org.example:foo:1.0.0:sources", "bar:2.0.0"}, features[0].Bundles())
}

func TestAssemble_RecordsRequirementsVerbatim(t *testing.T) {
	a := NewAssembler(nil)
	require.NoError(t, a.Define(Definition{
		ID: "f",
		Requires: []RequiredFeature{
			{FeatureName: "org.eclipse.platform", Version: "4.2.0", Match: "greaterOrEqual"},
			{FeatureName: "org.eclipse.rcp", Version: "4.2.0", Match: "exact"},
			{FeatureName: "not.defined.anywhere"},
		},
	}))

	features, err := a.Assemble(registry(t))
	require.NoError(t, err)
	assert.Equal(t, []RequiredFeature{
		{FeatureName: "org.eclipse.platform", Version: "4.2.0", Match: MatchGreaterOrEqual},
		{FeatureName: "org.eclipse.rcp", Version: "4.2.0", Match: "exact"},
		{FeatureName: "not.defined.anywhere"},
	}, features[0].RequiredFeatures())
}

func TestAssemble_RejectsUnknownMatchRule(t *testing.T) {
	a := NewAssembler(nil)
	require.NoError(t, a.Define(Definition{
		ID:       "f",
		Requires: []RequiredFeature{{FeatureName: "g", Match: "newest"}},
	}))

	_, err := a.Assemble(registry(t))
	assert.Error(t, err)
}

func TestAssemble_CycleDetected(t *testing.T) {
	a := NewAssembler(nil)
	require.NoError(t, a.Define(Definition{ID: "x", Includes: []string{"y"}}))
	require.NoError(t, a.Define(Definition{ID: "y", Includes: []string{"x"}}))
	require.NoError(t, a.Define(Definition{ID: "z"}))

	features, err := a.Assemble(registry(t))
	require.Error(t, err)
	assert.Nil(t, features, "no feature in a cycle is assembled")
	assert.True(t, errors.Is(err, ErrFeatureCycle))

	var cycleErr *CycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.Equal(t, []string{"x", "y", "x"}, cycleErr.Cycle)
	assert.Contains(t, err.Error(), "x -> y -> x")
}

func TestAssemble_SelfInclude(t *testing.T) {
	a := NewAssembler(nil)
	require.NoError(t, a.Define(Definition{ID: "self", Includes: []string{"self"}}))

	_, err := a.Assemble(registry(t))
	var cycleErr *CycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.Equal(t, []string{"self", "self"}, cycleErr.Cycle)
}

func TestAssemble_UnknownReferences(t *testing.T) {
	a := NewAssembler(nil)
	require.NoError(t, a.Define(Definition{ID: "f", Includes: []string{"missing"}}))
	_, err := a.Assemble(registry(t))
	assert.ErrorIs(t, err, ErrUnknownFeature)

	b := NewAssembler(nil)
	require.NoError(t, b.Define(Definition{ID: "f", Bundles: []string{"nope"}}))
	_, err = b.Assemble(registry(t))
	assert.ErrorIs(t, err, ErrUnknownBundle)
}

func TestDefine_Duplicate(t *testing.T) {
	a := NewAssembler(nil)
	require.NoError(t, a.Define(Definition{ID: "f"}))
	assert.ErrorIs(t, a.Define(Definition{ID: "f"}), ErrDuplicateFeature)
	assert.Error(t, a.Define(Definition{}))
}

func TestAssemble_Versions(t *testing.T) {
	a := NewAssembler(nil)
	require.NoError(t, a.Define(Definition{ID: "defaulted", Bundles: []string{"bar"}}))
	require.NoError(t, a.Define(Definition{ID: "pinned", Version: "2.3.4.final"}))

	features, err := a.Assemble(registry(t))
	require.NoError(t, err)

	defaulted, pinned := features[0], features[1]
	assert.Equal(t, 1, defaulted.Version.Major)
	assert.NotEmpty(t, defaulted.Version.Qualifier)
	assert.Equal(t, "2.3.4.final", pinned.Version.String())
	assert.Equal(t, "defaulted", defaulted.Label, "label defaults to id")
}

func TestAssemble_QualifierFollowsMembers(t *testing.T) {
	build := func(bundles ...string) osgi.Version {
		a := NewAssembler(nil)
		require.NoError(t, a.Define(Definition{ID: "f", Bundles: bundles}))
		features, err := a.Assemble(registry(t))
		require.NoError(t, err)
		return features[0].Version
	}

	assert.Equal(t, build("bar"), build("bar"))
	assert.NotEqual(t, build("bar"), build("bar", "org.example.foo"))
}

func TestFeature_FrozenRejectsMutation(t *testing.T) {
	f := New("f")
	require.NoError(t, f.AddBundle("a", "a", "b"))
	assert.Equal(t, []string{"a", "b"}, f.Bundles())
	f.Freeze()

	assert.ErrorIs(t, f.AddBundle("c"), ErrFeatureFrozen)
	assert.ErrorIs(t, f.Include("g"), ErrFeatureFrozen)
	assert.ErrorIs(t, f.Require(RequiredFeature{FeatureName: "r"}), ErrFeatureFrozen)

	got := f.Bundles()
	got[0] = "changed"
	assert.Equal(t, []string{"a", "b"}, f.Bundles(), "accessors return copies")
}
