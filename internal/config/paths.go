package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// ProjectDirName holds project-local stackgen files.
	ProjectDirName = ".stackgen"
	// ConfigFileName is the config file name in both locations.
	ConfigFileName = "config.json"
)

// UserConfigDir returns the user config directory
// ($XDG_CONFIG_HOME/stackgen on Linux).
func UserConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("getting user config directory: %w", err)
	}
	return filepath.Join(base, "stackgen"), nil
}

// UserConfigPath returns the user-level config file path.
func UserConfigPath() (string, error) {
	dir, err := UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// ProjectConfigDir returns the project-level config directory.
func ProjectConfigDir() string {
	return ProjectDirName
}

// ProjectConfigPath returns the project-level config file path.
func ProjectConfigPath() string {
	return filepath.Join(ProjectDirName, ConfigFileName)
}
