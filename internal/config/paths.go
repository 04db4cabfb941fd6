package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	APP_DIR_NAME  = "openaq-archiver"
	DB_NAME       = "archive.sqlite"
	REGISTRY_NAME = "stations.yaml"
)

// DBPath is where the fetch-run archive lives, overridable for tests and
// one-off runs.
func DBPath() string {
	if dbPath := os.Getenv("OPENAQ_ARCHIVER_DB_PATH"); dbPath != "" {
		return dbPath
	}

	return filepath.Join(DataDir(), DB_NAME)
}

// DefaultRegistryPath is where the station registry is looked up when no
// --registry flag is given.
func DefaultRegistryPath() string {
	if registryPath := os.Getenv("OPENAQ_ARCHIVER_REGISTRY_PATH"); registryPath != "" {
		return registryPath
	}

	return filepath.Join(ConfigDir(), REGISTRY_NAME)
}

func DataDir() string {
	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return filepath.Join(xdgDataHome, APP_DIR_NAME)
	}

	homeDir, err := os.UserHomeDir()
	// In case the home directory cannot be determined use the current working directory
	if err != nil {
		currentDir, err := os.Getwd()
		if err != nil {
			return "."
		}
		return currentDir
	}

	localSharePath := filepath.Join(homeDir, ".local", "share")
	if _, err := os.Stat(localSharePath); err == nil {
		return filepath.Join(localSharePath, APP_DIR_NAME)
	}

	return filepath.Join(homeDir, fmt.Sprintf(".%s", APP_DIR_NAME))
}

func ConfigDir() string {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, APP_DIR_NAME)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	localConfigPath := filepath.Join(homeDir, ".config")
	if _, err := os.Stat(localConfigPath); err == nil {
		return filepath.Join(localConfigPath, APP_DIR_NAME)
	}

	return filepath.Join(homeDir, fmt.Sprintf(".%s", APP_DIR_NAME))
}
