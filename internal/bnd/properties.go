// Package bnd holds the configuration fed to bundle manifest synthesis and the
// manifest-calculation capability the synthesizer drives.
package bnd

import "sort"

// Properties is an ordered string map. Setting an existing key overwrites the
// value in place.
type Properties struct {
	keys   []string
	values map[string]string
}

// NewProperties creates properties from alternating key/value pairs.
// A trailing key without value is ignored.
func NewProperties(kv ...string) *Properties {
	p := &Properties{values: make(map[string]string)}
	for i := 0; i+1 < len(kv); i += 2 {
		p.Set(kv[i], kv[i+1])
	}
	return p
}

// PropertiesFromMap creates properties from a map, in sorted key order.
func PropertiesFromMap(m map[string]string) *Properties {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	p := NewProperties()
	for _, k := range keys {
		p.Set(k, m[k])
	}
	return p
}

// Set sets a property.
func (p *Properties) Set(key, value string) {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Get returns a property value.
func (p *Properties) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Value returns a property value or "".
func (p *Properties) Value(key string) string {
	return p.values[key]
}

// Keys returns the keys in insertion order.
func (p *Properties) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Len returns the number of properties.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Merge copies every property of other into p; other wins on conflicts.
func (p *Properties) Merge(other *Properties) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		p.Set(k, other.values[k])
	}
}

// Clone returns an independent copy.
func (p *Properties) Clone() *Properties {
	c := NewProperties()
	c.Merge(p)
	return c
}

// Map returns the properties as a plain map.
func (p *Properties) Map() map[string]string {
	m := make(map[string]string, len(p.keys))
	for k, v := range p.values {
		m[k] = v
	}
	return m
}
