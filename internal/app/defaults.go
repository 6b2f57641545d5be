package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment
// variables first.
// Environment variables:
//   - MIG_CONFIG_PATH: config file location (default: ~/.config/mig.toml)
//   - MIG_HOME: base directory for mig data (default: ~/.local/share/mig)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// getConfigPath returns the config file path, checking MIG_CONFIG_PATH
// first, then falling back to ~/.config/mig.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("MIG_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "mig.toml"), nil
}

// getBaseDir returns the base directory for mig data, checking MIG_HOME
// first, then falling back to the XDG default ~/.local/share/mig.
func getBaseDir() (string, error) {
	if path := os.Getenv("MIG_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "mig"), nil
}
