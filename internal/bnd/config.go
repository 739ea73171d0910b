package bnd

import (
	"encoding/hex"
	"sort"

	"github.com/zeebo/blake3"
)

// identityLength is the number of digest bytes kept in a config identity.
const identityLength = 8

// Config is a resolved bnd configuration for one artifact.
type Config struct {
	props *Properties
}

// NewConfig creates a resolved configuration from properties.
func NewConfig(props *Properties) Config {
	if props == nil {
		props = NewProperties()
	}
	return Config{props: props.Clone()}
}

// Properties returns a copy of the resolved properties.
func (c Config) Properties() *Properties {
	if c.props == nil {
		return NewProperties()
	}
	return c.props.Clone()
}

// IsEmpty reports whether no property was configured.
func (c Config) IsEmpty() bool {
	return c.props.Len() == 0
}

// Identity is a short content digest of the configuration. Two configurations
// with the same key/value pairs share an identity regardless of insertion
// order. The empty configuration has the empty identity.
func (c Config) Identity() string {
	if c.IsEmpty() {
		return ""
	}

	keys := c.props.Keys()
	sort.Strings(keys)

	h := blake3.New()
	for _, k := range keys {
		_, _ = h.Write([]byte(k))
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(c.props.Value(k)))
		_, _ = h.Write([]byte{'\n'})
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:identityLength])
}
