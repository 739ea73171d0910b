package config

import (
	"os"
	"path/filepath"
)

// Paths contains standard filesystem paths for osgify.
type Paths struct {
	// ConfigFile is the path to the config file (~/.osgify/config.yaml).
	ConfigFile string

	// StateDir holds durable build state such as qualifier counters
	// (~/.osgify/state).
	StateDir string

	// HomeDir is the osgify home directory (~/.osgify).
	HomeDir string
}

// DefaultPaths returns the default paths for osgify.
func DefaultPaths() (*Paths, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	home := filepath.Join(homeDir, ".osgify")

	return &Paths{
		ConfigFile: filepath.Join(home, "config.yaml"),
		StateDir:   filepath.Join(home, "state"),
		HomeDir:    home,
	}, nil
}

// GetConfigFile returns the config file path.
// If OSGIFY_CONFIG is set, it takes precedence.
func GetConfigFile() (string, error) {
	if envPath := os.Getenv("OSGIFY_CONFIG"); envPath != "" {
		return envPath, nil
	}

	paths, err := DefaultPaths()
	if err != nil {
		return "", err
	}

	return paths.ConfigFile, nil
}

// GetStateDir returns the state directory path.
// If OSGIFY_STATE_DIR is set, it takes precedence.
func GetStateDir() (string, error) {
	if envPath := os.Getenv("OSGIFY_STATE_DIR"); envPath != "" {
		return envPath, nil
	}

	paths, err := DefaultPaths()
	if err != nil {
		return "", err
	}

	return paths.StateDir, nil
}

// EnsureHomeDir creates the osgify home directory if it doesn't exist.
func EnsureHomeDir() error {
	paths, err := DefaultPaths()
	if err != nil {
		return err
	}

	return os.MkdirAll(paths.HomeDir, 0o755)
}

// ExpandTilde expands a leading ~ to the user's home directory.
// ~username forms are returned unchanged.
func ExpandTilde(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if len(path) == 1 {
		return homeDir
	}

	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	return path
}
