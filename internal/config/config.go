// Package config provides configuration loading and management.
package config

// Qualifier strategies.
const (
	StrategyContentHash = "contentHash"
	StrategyCounter     = "counter"
)

// QualifierConfig selects how version qualifiers are assigned.
type QualifierConfig struct {
	// Strategy is "contentHash" (default) or "counter".
	// Env: OSGIFY_QUALIFIER_STRATEGY
	Strategy string `json:"strategy,omitempty"`

	// Prefix is prepended to every generated qualifier.
	Prefix string `json:"prefix,omitempty"`

	// StateFile persists counter assignments between builds.
	// Default: ~/.osgify/state/qualifiers.yaml
	StateFile string `json:"stateFile,omitempty"`
}

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: true. Override with --timestamps flag.
	Timestamps *bool `json:"timestamps,omitempty"`
}

// Config represents the user-level osgify configuration.
// Loaded from ~/.osgify/config.yaml. Build files override these values.
type Config struct {
	// Output is the default output directory for bundles.
	// Env: OSGIFY_OUTPUT, Default: "bundles"
	Output string `json:"output,omitempty"`

	// Workers bounds parallel synthesis. Zero means one per CPU.
	// Env: OSGIFY_WORKERS
	Workers int `json:"workers,omitempty"`

	// Qualifier selects the qualifier strategy.
	Qualifier QualifierConfig `json:"qualifier,omitempty"`

	// Log contains logging-related settings.
	Log LogConfig `json:"log,omitempty"`
}

// DefaultOutput is the output directory used when none is configured.
const DefaultOutput = "bundles"

// DefaultConfig returns a Config with all default values populated.
// Used by `osgify config init` to generate the initial config file.
func DefaultConfig() *Config {
	return &Config{
		Output: DefaultOutput,
		Qualifier: QualifierConfig{
			Strategy:  StrategyContentHash,
			StateFile: "~/.osgify/state/qualifiers.yaml",
		},
	}
}

// WithDefaults returns a copy of c with unset fields taken from DefaultConfig.
func (c *Config) WithDefaults() *Config {
	def := DefaultConfig()
	out := *c
	if out.Output == "" {
		out.Output = def.Output
	}
	if out.Qualifier.Strategy == "" {
		out.Qualifier.Strategy = def.Qualifier.Strategy
	}
	if out.Qualifier.StateFile == "" {
		out.Qualifier.StateFile = def.Qualifier.StateFile
	}
	return &out
}

// ResolvedValue records where a configuration value came from and what it
// shadowed.
type ResolvedValue struct {
	Key      string
	Value    any
	Source   ConfigSource
	Shadowed map[ConfigSource]any
}
