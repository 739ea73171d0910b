package feature

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/osgify/cli/internal/bundle"
	"github.com/osgify/cli/internal/osgi"
	"github.com/osgify/cli/internal/qualifier"
)

// DefaultVersion is used for features defined without a version.
const DefaultVersion = "1.0.0"

// CycleError reports features that include themselves, directly or
// transitively. Cycle starts and ends with the same feature ID.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("feature cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// Unwrap returns ErrFeatureCycle.
func (e *CycleError) Unwrap() error {
	return ErrFeatureCycle
}

// Definition is the configured form of a feature.
type Definition struct {
	ID          string            `json:"id"`
	Label       string            `json:"label,omitempty"`
	Version     string            `json:"version,omitempty"`
	Provider    string            `json:"provider,omitempty"`
	License     string            `json:"license,omitempty"`
	Description string            `json:"description,omitempty"`
	Copyright   string            `json:"copyright,omitempty"`
	Plugin      string            `json:"plugin,omitempty"`
	Bundles     []string          `json:"bundles,omitempty"`
	Includes    []string          `json:"includes,omitempty"`
	Requires    []RequiredFeature `json:"requires,omitempty"`
}

// Assembler builds the feature graph from definitions.
type Assembler struct {
	strategy qualifier.Strategy
	defs     []Definition
	index    map[string]int
}

// NewAssembler creates an Assembler. A nil strategy selects ContentHash.
func NewAssembler(strategy qualifier.Strategy) *Assembler {
	if strategy == nil {
		strategy = qualifier.NewContentHash("")
	}
	return &Assembler{strategy: strategy, index: make(map[string]int)}
}

// Define registers a feature definition.
func (a *Assembler) Define(d Definition) error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("feature definition without id")
	}
	if _, ok := a.index[d.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateFeature, d.ID)
	}
	a.index[d.ID] = len(a.defs)
	a.defs = append(a.defs, d)
	return nil
}

// Assemble validates the definitions against the registry and builds every
// feature bottom-up: included features come before the features including
// them. Paired source bundles are added next to their binaries and every
// returned feature is frozen.
//
// A cycle among included features fails the whole assembly with a
// CycleError; no feature is returned in that case.
func (a *Assembler) Assemble(reg *bundle.Registry) ([]*Feature, error) {
	resolved := make(map[string][]string, len(a.defs))
	for _, d := range a.defs {
		for _, inc := range d.Includes {
			if _, ok := a.index[inc]; !ok {
				return nil, fmt.Errorf("feature %s includes %q: %w", d.ID, inc, ErrUnknownFeature)
			}
		}
		ids, err := resolveBundles(reg, d)
		if err != nil {
			return nil, err
		}
		resolved[d.ID] = ids
	}

	order, err := a.order()
	if err != nil {
		return nil, err
	}

	built := make(map[string]*Feature, len(order))
	features := make([]*Feature, 0, len(order))
	for _, id := range order {
		d := a.defs[a.index[id]]
		f, err := a.build(d, resolved[id], reg, built)
		if err != nil {
			return nil, err
		}
		f.Freeze()
		built[id] = f
		features = append(features, f)
	}
	return features, nil
}

// order returns feature IDs leaves first. Depth-first search keeps the path
// being visited so a cycle can be reported exactly.
func (a *Assembler) order() ([]string, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(a.defs))
	var path, order []string

	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case done:
			return nil
		case visiting:
			start := 0
			for i, p := range path {
				if p == id {
					start = i
					break
				}
			}
			cycle := append(append([]string(nil), path[start:]...), id)
			return &CycleError{Cycle: cycle}
		}

		state[id] = visiting
		path = append(path, id)
		for _, inc := range a.defs[a.index[id]].Includes {
			if err := visit(inc); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		state[id] = done
		order = append(order, id)
		return nil
	}

	for _, d := range a.defs {
		if err := visit(d.ID); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// build creates one feature. Included features must already be built.
func (a *Assembler) build(d Definition, bundles []string, reg *bundle.Registry, built map[string]*Feature) (*Feature, error) {
	f := New(d.ID)
	f.Label = d.Label
	f.Provider = d.Provider
	f.License = d.License
	f.Description = d.Description
	f.Copyright = d.Copyright
	f.Plugin = d.Plugin
	if f.Label == "" {
		f.Label = d.ID
	}

	for _, id := range bundles {
		if err := f.AddBundle(id); err != nil {
			return nil, err
		}
		if src, ok := reg.SourceFor(id); ok {
			if err := f.AddBundle(src.ID); err != nil {
				return nil, err
			}
		}
	}
	if err := f.Include(d.Includes...); err != nil {
		return nil, err
	}
	// Requirements keep the configured spelling; the rule is only checked.
	for _, r := range d.Requires {
		if _, err := ParseMatchRule(string(r.Match)); err != nil {
			return nil, fmt.Errorf("feature %s requires %s: %w", d.ID, r.FeatureName, err)
		}
		if err := f.Require(r); err != nil {
			return nil, err
		}
	}

	raw := d.Version
	if raw == "" {
		raw = DefaultVersion
	}
	version, err := osgi.ParseVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("feature %s: %w", d.ID, err)
	}
	if version.Qualifier == "" {
		ident := memberIdentity(f, reg, built)
		version = qualifier.Apply(a.strategy, qualifier.KindFeature, f.ID, version, ident)
	}
	f.Version = version
	return f, nil
}

// memberIdentity digests the member bundles and included features with
// their final versions, so a feature's qualifier changes whenever a member
// changes.
func memberIdentity(f *Feature, reg *bundle.Registry, built map[string]*Feature) string {
	h := blake3.New()
	for _, id := range f.Bundles() {
		version := ""
		if art, ok := reg.Get(id); ok {
			version = art.SymbolicName() + "@" + art.ModifiedVersion().String()
		}
		fmt.Fprintf(h, "b\x00%s\x00%s\n", id, version)
	}
	for _, id := range f.IncludedFeatures() {
		fmt.Fprintf(h, "f\x00%s\x00%s\n", id, built[id].Version.String())
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:8])
}

// resolveBundles maps the bundle references of d to artifact IDs. A
// reference is an artifact ID, a symbolic name or an artifact name.
func resolveBundles(reg *bundle.Registry, d Definition) ([]string, error) {
	ids := make([]string, 0, len(d.Bundles))
	for _, ref := range d.Bundles {
		id, ok := lookupBundle(reg, ref)
		if !ok {
			return nil, fmt.Errorf("feature %s references %q: %w", d.ID, ref, ErrUnknownBundle)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func lookupBundle(reg *bundle.Registry, ref string) (string, bool) {
	if a, ok := reg.Get(ref); ok {
		return a.ID, true
	}
	for _, a := range reg.All() {
		if a.Source {
			continue
		}
		if a.SymbolicName() == ref || a.Coordinates.Name == ref {
			return a.ID, true
		}
	}
	return "", false
}
