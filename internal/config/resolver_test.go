package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveString_FlagPrecedence(t *testing.T) {
	t.Setenv("OSGIFY_OUTPUT", "/env")

	result := ResolveString(ResolveOptions{
		Key:         "output",
		FlagValue:   "/flag",
		EnvVar:      "OSGIFY_OUTPUT",
		BuildValue:  "/build",
		ConfigValue: "/config",
		Default:     DefaultOutput,
	})

	assert.Equal(t, "/flag", result.Value)
	assert.Equal(t, SourceFlag, result.Source)
	assert.Equal(t, "/env", result.Shadowed[SourceEnv])
	assert.Equal(t, "/build", result.Shadowed[SourceBuildFile])
	assert.Equal(t, "/config", result.Shadowed[SourceConfig])
	assert.Equal(t, DefaultOutput, result.Shadowed[SourceDefault])
}

func TestResolveString_EnvPrecedence(t *testing.T) {
	t.Setenv("OSGIFY_OUTPUT", "/env")

	result := ResolveString(ResolveOptions{
		Key:        "output",
		EnvVar:     "OSGIFY_OUTPUT",
		BuildValue: "/build",
	})

	assert.Equal(t, "/env", result.Value)
	assert.Equal(t, SourceEnv, result.Source)
	assert.Equal(t, "/build", result.Shadowed[SourceBuildFile])
	assert.NotContains(t, result.Shadowed, SourceFlag)
}

func TestResolveString_BuildFileBeatsConfig(t *testing.T) {
	result := ResolveString(ResolveOptions{
		Key:         "output",
		BuildValue:  "/build",
		ConfigValue: "/config",
	})

	assert.Equal(t, "/build", result.Value)
	assert.Equal(t, SourceBuildFile, result.Source)
	assert.Equal(t, "/config", result.Shadowed[SourceConfig])
}

func TestResolveString_Default(t *testing.T) {
	result := ResolveString(ResolveOptions{Key: "output", Default: DefaultOutput})

	assert.Equal(t, DefaultOutput, result.Value)
	assert.Equal(t, SourceDefault, result.Source)
	assert.Empty(t, result.Shadowed)
}

func TestResolveString_Unset(t *testing.T) {
	result := ResolveString(ResolveOptions{Key: "output"})

	assert.Equal(t, "", result.Value)
	assert.Empty(t, result.Source)
}

func TestResolveConfigPath_FlagPrecedence(t *testing.T) {
	t.Setenv("OSGIFY_CONFIG", "/env/path/config.yaml")

	result, err := ResolveConfigPath(ResolveConfigPathOptions{
		FlagValue: "/flag/path/config.yaml",
	})
	require.NoError(t, err)

	assert.Equal(t, "/flag/path/config.yaml", result.ConfigPath)
	assert.Equal(t, SourceFlag, result.Source)
	assert.Equal(t, "/env/path/config.yaml", result.Shadowed[SourceEnv])
	assert.NotEmpty(t, result.Shadowed[SourceDefault])
}

func TestResolveConfigPath_EnvPrecedence(t *testing.T) {
	t.Setenv("OSGIFY_CONFIG", "/env/path/config.yaml")

	result, err := ResolveConfigPath(ResolveConfigPathOptions{})
	require.NoError(t, err)

	assert.Equal(t, "/env/path/config.yaml", result.ConfigPath)
	assert.Equal(t, SourceEnv, result.Source)
	assert.NotEmpty(t, result.Shadowed[SourceDefault])
}

func TestResolveConfigPath_Default(t *testing.T) {
	t.Setenv("OSGIFY_CONFIG", "")

	result, err := ResolveConfigPath(ResolveConfigPathOptions{})
	require.NoError(t, err)

	assert.Contains(t, result.ConfigPath, ".osgify")
	assert.Contains(t, result.ConfigPath, "config.yaml")
	assert.Equal(t, SourceDefault, result.Source)
	assert.Empty(t, result.Shadowed)
}

func TestSource_String(t *testing.T) {
	assert.Equal(t, "flag", string(SourceFlag))
	assert.Equal(t, "env", string(SourceEnv))
	assert.Equal(t, "build", string(SourceBuildFile))
	assert.Equal(t, "config", string(SourceConfig))
	assert.Equal(t, "default", string(SourceDefault))
}
