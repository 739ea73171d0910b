package bundle

import (
	"errors"
	"fmt"
	"sync"
)

// Sentinel errors for artifact bookkeeping.
var (
	// ErrFrozen is returned when a frozen artifact is modified.
	ErrFrozen = errors.New("artifact is frozen")

	// ErrAlreadyPaired is returned when a binary or source is paired twice.
	ErrAlreadyPaired = errors.New("artifact already paired")

	// ErrUnknownArtifact is returned for IDs missing from the registry.
	ErrUnknownArtifact = errors.New("unknown artifact")

	// ErrDuplicateArtifact is returned when an ID is registered twice.
	ErrDuplicateArtifact = errors.New("duplicate artifact")
)

// Registry owns the artifacts of one build and the source/binary lookup
// table between them. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	artifacts map[string]*Artifact
	order     []string
	sourceOf  map[string]string
	binaryOf  map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		artifacts: make(map[string]*Artifact),
		sourceOf:  make(map[string]string),
		binaryOf:  make(map[string]string),
	}
}

// Add registers artifacts in order.
func (r *Registry) Add(artifacts ...*Artifact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range artifacts {
		if _, ok := r.artifacts[a.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateArtifact, a.ID)
		}
		r.artifacts[a.ID] = a
		r.order = append(r.order, a.ID)
	}
	return nil
}

// Get returns the artifact with the given ID.
func (r *Registry) Get(id string) (*Artifact, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.artifacts[id]
	return a, ok
}

// All returns every artifact in registration order.
func (r *Registry) All() []*Artifact {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Artifact, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.artifacts[id])
	}
	return out
}

// Len returns the number of registered artifacts.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Pair links a binary artifact with its source artifact in both directions.
// Each side can be paired once, and only while both are unfrozen. The source
// takes over the binary's symbolic name and version.
func (r *Registry) Pair(binaryID, sourceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	binary, ok := r.artifacts[binaryID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownArtifact, binaryID)
	}
	source, ok := r.artifacts[sourceID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownArtifact, sourceID)
	}
	if !source.Source || binary.Source {
		return fmt.Errorf("pairing %s with %s: expected a binary and a source artifact", binaryID, sourceID)
	}
	if existing, ok := r.sourceOf[binaryID]; ok {
		return fmt.Errorf("%w: %s has source %s", ErrAlreadyPaired, binaryID, existing)
	}
	if existing, ok := r.binaryOf[sourceID]; ok {
		return fmt.Errorf("%w: %s has binary %s", ErrAlreadyPaired, sourceID, existing)
	}
	if binary.Frozen() {
		return fmt.Errorf("pairing %s: %w", binaryID, ErrFrozen)
	}
	if err := source.alignWithBinary(binary); err != nil {
		return err
	}

	r.sourceOf[binaryID] = sourceID
	r.binaryOf[sourceID] = binaryID
	return nil
}

// SourceFor returns the source artifact paired with a binary.
func (r *Registry) SourceFor(binaryID string) (*Artifact, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.sourceOf[binaryID]
	if !ok {
		return nil, false
	}
	return r.artifacts[id], true
}

// BinaryFor returns the binary artifact paired with a source.
func (r *Registry) BinaryFor(sourceID string) (*Artifact, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.binaryOf[sourceID]
	if !ok {
		return nil, false
	}
	return r.artifacts[id], true
}

// PairByCoordinates pairs every unpaired source artifact with the binary
// artifact sharing its group, name and version. It returns the number of
// pairs created.
func (r *Registry) PairByCoordinates() (int, error) {
	byCoords := make(map[Coordinates]string)
	var sources []*Artifact
	for _, a := range r.All() {
		if a.Source {
			sources = append(sources, a)
			continue
		}
		byCoords[a.Coordinates.Binary()] = a.ID
	}

	paired := 0
	for _, s := range sources {
		if _, ok := r.BinaryFor(s.ID); ok {
			continue
		}
		binaryID, ok := byCoords[s.Coordinates.Binary()]
		if !ok {
			continue
		}
		if _, ok := r.SourceFor(binaryID); ok {
			continue
		}
		if err := r.Pair(binaryID, s.ID); err != nil {
			return paired, err
		}
		paired++
	}
	return paired, nil
}
