package qualifier

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/osgify/cli/internal/osgi"
)

// counterDigits is the zero padding of counter qualifiers.
const counterDigits = 3

// Counter hands out increasing qualifiers per (kind, name, version). The same
// identity token always maps to the same qualifier. It is safe for concurrent
// use.
type Counter struct {
	Prefix string

	mu    sync.Mutex
	state counterState
	dirty bool
}

// counterState is the persisted form of a Counter.
type counterState struct {
	// Next holds the next counter value per artifact key.
	Next map[string]int `yaml:"next"`
	// Assigned maps artifact key + identity to the qualifier handed out.
	Assigned map[string]string `yaml:"assigned"`
}

// NewCounter creates an empty in-memory Counter.
func NewCounter(prefix string) *Counter {
	return &Counter{
		Prefix: prefix,
		state: counterState{
			Next:     make(map[string]int),
			Assigned: make(map[string]string),
		},
	}
}

// LoadCounter creates a Counter from a state file. A missing file yields an
// empty Counter.
func LoadCounter(path, prefix string) (*Counter, error) {
	c := NewCounter(prefix)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading qualifier state: %w", err)
	}

	var st counterState
	if err := yaml.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parsing qualifier state %s: %w", path, err)
	}
	if st.Next != nil {
		c.state.Next = st.Next
	}
	if st.Assigned != nil {
		c.state.Assigned = st.Assigned
	}
	return c, nil
}

// Qualifier returns the qualifier assigned to ident, assigning the next
// counter value for (kind, name, version) on first use.
func (c *Counter) Qualifier(kind, name string, version osgi.Version, ident string) string {
	key := kind + ":" + name + ":" + version.String()
	assignedKey := key + "#" + ident

	c.mu.Lock()
	defer c.mu.Unlock()

	if q, ok := c.state.Assigned[assignedKey]; ok {
		return q
	}

	n := c.state.Next[key]
	c.state.Next[key] = n + 1
	q := osgi.SanitizeQualifier(fmt.Sprintf("%s%0*d", c.Prefix, counterDigits, n))
	c.state.Assigned[assignedKey] = q
	c.dirty = true
	return q
}

// Save writes the counter state to path when it changed since loading.
func (c *Counter) Save(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty {
		return nil
	}
	data, err := yaml.Marshal(&c.state)
	if err != nil {
		return fmt.Errorf("encoding qualifier state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating qualifier state dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing qualifier state: %w", err)
	}
	c.dirty = false
	return nil
}
