package bnd

import (
	"errors"
	"path"
	"sync"
)

// ErrImmutableConfig is returned when a sealed configuration is modified.
var ErrImmutableConfig = errors.New("immutable configuration")

// EvalContext identifies the artifact a configuration is evaluated for.
type EvalContext struct {
	Group   string
	Name    string
	Version string
	File    string
}

// Fragment is a deferred unit producing properties for an artifact.
type Fragment interface {
	Apply(ctx EvalContext, props *Properties)
}

// FragmentFunc adapts a function to a Fragment.
type FragmentFunc func(ctx EvalContext, props *Properties)

// Apply calls f.
func (f FragmentFunc) Apply(ctx EvalContext, props *Properties) {
	f(ctx, props)
}

// Match restricts a fragment to artifacts by glob patterns (path.Match
// syntax). Empty patterns match everything.
type Match struct {
	Group   string `json:"group,omitempty"`
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
}

// Matches reports whether ctx satisfies every non-empty pattern.
func (m Match) Matches(ctx EvalContext) bool {
	return globMatch(m.Group, ctx.Group) && globMatch(m.Name, ctx.Name) && globMatch(m.Version, ctx.Version)
}

func globMatch(pattern, value string) bool {
	if pattern == "" {
		return true
	}
	ok, err := path.Match(pattern, value)
	return err == nil && ok
}

// Instructions is a static fragment: a set of properties applied to every
// artifact its Match accepts.
type Instructions struct {
	Match  Match
	Values *Properties
}

// Apply merges the instruction values when the artifact matches.
func (i Instructions) Apply(ctx EvalContext, props *Properties) {
	if i.Match.Matches(ctx) {
		props.Merge(i.Values)
	}
}

// Source is the read side of a configuration store. Both Store and Sealed
// implement it, so either can be merged into another Store.
type Source interface {
	// Fragments returns a copy of the ordered fragments.
	Fragments() []Fragment
	// IsEmpty reports whether there are no fragments.
	IsEmpty() bool
	// Evaluate folds the fragments for ctx; later fragments win.
	Evaluate(ctx EvalContext) Config
}

// Target is the write side of a configuration store.
type Target interface {
	Append(other Source) error
}

// Store is an ordered, append-only sequence of configuration fragments.
// It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	fragments []Fragment
}

// NewStore creates a store holding the given fragments.
func NewStore(fragments ...Fragment) *Store {
	s := &Store{}
	s.fragments = append(s.fragments, fragments...)
	return s
}

// Add appends fragments.
func (s *Store) Add(fragments ...Fragment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fragments = append(s.fragments, fragments...)
	return nil
}

// Append appends every fragment of other, preserving order (other -> s).
func (s *Store) Append(other Source) error {
	if other == nil {
		return nil
	}
	fragments := other.Fragments()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fragments = append(s.fragments, fragments...)
	return nil
}

// MergeInto appends the fragments of s to dst (s -> dst).
func (s *Store) MergeInto(dst Target) error {
	return dst.Append(s)
}

// Fragments returns a copy of the fragments.
func (s *Store) Fragments() []Fragment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Fragment, len(s.fragments))
	copy(out, s.fragments)
	return out
}

// IsEmpty reports whether the store has no fragments.
func (s *Store) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fragments) == 0
}

// Evaluate folds every fragment in order into a resolved Config.
func (s *Store) Evaluate(ctx EvalContext) Config {
	props := NewProperties()
	for _, f := range s.Fragments() {
		f.Apply(ctx, props)
	}
	return Config{props: props}
}

// Sealed is a read-only view of a store. It forwards reads and can be the
// source of another store's merge, but rejects every modification. Sealing
// takes a snapshot, so later changes to the original store are not visible.
type Sealed struct {
	inner *Store
}

// Seal returns a sealed snapshot of src. There is no way back.
func Seal(src Source) *Sealed {
	if sealed, ok := src.(*Sealed); ok {
		return sealed
	}
	return &Sealed{inner: NewStore(src.Fragments()...)}
}

// Add always fails with ErrImmutableConfig.
func (s *Sealed) Add(...Fragment) error {
	return ErrImmutableConfig
}

// Append always fails with ErrImmutableConfig.
func (s *Sealed) Append(Source) error {
	return ErrImmutableConfig
}

// MergeInto appends the sealed fragments to dst.
func (s *Sealed) MergeInto(dst Target) error {
	return dst.Append(s)
}

// Fragments returns a copy of the sealed fragments.
func (s *Sealed) Fragments() []Fragment {
	return s.inner.Fragments()
}

// IsEmpty reports whether the sealed store has no fragments.
func (s *Sealed) IsEmpty() bool {
	return s.inner.IsEmpty()
}

// Evaluate forwards to the sealed store.
func (s *Sealed) Evaluate(ctx EvalContext) Config {
	return s.inner.Evaluate(ctx)
}
