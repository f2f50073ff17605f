package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned when a loaded config cannot drive a simulation.
var ErrInvalid = errors.New("invalid config")

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	// Explicit path takes priority
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the engines cannot work with.
func (c *Config) Validate() error {
	switch {
	case c.Destruction.TreeHeight < 0 || c.Destruction.TreeHeight > 20:
		return fmt.Errorf("%w: tree_height %d out of range [0, 20]", ErrInvalid, c.Destruction.TreeHeight)
	case c.Destruction.MaxSampleTries <= 0:
		return fmt.Errorf("%w: max_sample_tries must be positive", ErrInvalid)
	case c.Destruction.Density <= 0:
		return fmt.Errorf("%w: density must be positive", ErrInvalid)
	case c.Fragmentation.ShallowDepth < 1 || c.Fragmentation.DeepDepth < 1:
		return fmt.Errorf("%w: explosion depths must be at least 1", ErrInvalid)
	case c.Fragmentation.Estimator != "overlap" && c.Fragmentation.Estimator != "center":
		return fmt.Errorf("%w: unknown estimator %q", ErrInvalid, c.Fragmentation.Estimator)
	case c.Healing.LevelsUp < 0:
		return fmt.Errorf("%w: levels_up must not be negative", ErrInvalid)
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./shatter.yaml",
		filepath.Join(ConfigDir(), "shatter.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Shatter")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Shatter")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "shatter")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "shatter")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
