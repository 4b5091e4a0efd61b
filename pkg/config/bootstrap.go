package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// LoadFromDir loads turtlebridge.yaml from configDir. A missing file is not
// an error: defaults and environment overrides are used instead.
func LoadFromDir(configDir string) (*Config, string, error) {
	path := filepath.Join(configDir, DefaultConfigFile)

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg, err := LoadConfig("")
			return cfg, "", err
		}
		return nil, "", fmt.Errorf("error checking config file '%s': %w", path, err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}
