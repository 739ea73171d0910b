package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	assert.NotNil(t, loader)
	assert.NotNil(t, loader.v)
}

func TestLoaderLoad(t *testing.T) {
	t.Run("loads config from file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "config.yaml")

		content := `
output: /srv/bundles
workers: 3
qualifier:
  strategy: counter
  prefix: ci
  stateFile: /srv/state.yaml
log:
  timestamps: false
`
		require.NoError(t, os.WriteFile(configFile, []byte(content), 0o644))

		cfg, err := NewLoader().Load(configFile)

		require.NoError(t, err)
		assert.Equal(t, "/srv/bundles", cfg.Output)
		assert.Equal(t, 3, cfg.Workers)
		assert.Equal(t, StrategyCounter, cfg.Qualifier.Strategy)
		assert.Equal(t, "ci", cfg.Qualifier.Prefix)
		assert.Equal(t, "/srv/state.yaml", cfg.Qualifier.StateFile)
		require.NotNil(t, cfg.Log.Timestamps)
		assert.False(t, *cfg.Log.Timestamps)
	})

	t.Run("returns empty config for missing file", func(t *testing.T) {
		configFile := filepath.Join(t.TempDir(), "nonexistent.yaml")

		cfg, err := NewLoader().Load(configFile)

		require.NoError(t, err)
		assert.Empty(t, cfg.Output)
		assert.Zero(t, cfg.Workers)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		configFile := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("output: /from/file\n"), 0o644))

		t.Setenv("OSGIFY_OUTPUT", "/from/env")
		t.Setenv("OSGIFY_QUALIFIER_STRATEGY", "counter")

		cfg, err := NewLoader().Load(configFile)

		require.NoError(t, err)
		assert.Equal(t, "/from/env", cfg.Output)
		assert.Equal(t, StrategyCounter, cfg.Qualifier.Strategy)
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		configFile := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("output: [unclosed\n"), 0o644))

		_, err := NewLoader().Load(configFile)
		assert.Error(t, err)
	})
}

func TestLoaderLoadWithDefaults(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(""), 0o644))

	cfg, err := NewLoader().LoadWithDefaults(configFile)

	require.NoError(t, err)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, StrategyContentHash, cfg.Qualifier.Strategy)
}

func TestConfigFileExists(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("returns true for existing file", func(t *testing.T) {
		configFile := filepath.Join(tmpDir, "exists.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("output: x\n"), 0o644))

		exists, err := ConfigFileExists(configFile)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("returns false for missing file", func(t *testing.T) {
		exists, err := ConfigFileExists(filepath.Join(tmpDir, "missing.yaml"))
		require.NoError(t, err)
		assert.False(t, exists)
	})
}
