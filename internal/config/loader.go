package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load resolves configuration by layering, lowest precedence first:
// built-in defaults, the global config file, the workspace-local file,
// then environment variables. localPath may be empty when running
// outside a workspace.
func Load(localPath string) (*Config, error) {
	cfg := DefaultConfig()

	if globalPath := GlobalConfigPath(); globalPath != "" {
		if err := loadFromFile(cfg, globalPath); err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	if localPath != "" {
		if err := loadFromFile(cfg, localPath); err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	loadFromEnv(cfg)

	if cfg.Complexity.Threshold < 0 || cfg.Complexity.Threshold > 1 {
		return nil, fmt.Errorf("complexity.threshold must be in [0,1], got %v", cfg.Complexity.Threshold)
	}
	return cfg, nil
}

// GlobalConfigPath returns the user-level config file location.
func GlobalConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "kodo", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "kodo", "config.yaml")
}

// loadFromFile overlays a YAML file onto cfg. Environment variables in
// the file are expanded before parsing.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// loadFromEnv applies environment overrides.
func loadFromEnv(cfg *Config) {
	if m := os.Getenv("KODO_MODE"); m != "" {
		cfg.Mode.Default = m
	}
	if lvl := os.Getenv("KODO_LOG_LEVEL"); lvl != "" {
		cfg.Logging.Level = lvl
		cfg.Logging.Enabled = true
	}
}
