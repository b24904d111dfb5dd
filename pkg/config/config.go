package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	configFile = "config.toml"
	dotDir     = ".recall"
)

// resolveDir returns the directory config.toml lives in. An explicit
// override wins; otherwise ~/.recall is used (created lazily by Save).
func resolveDir(override string) (string, error) {
	if override != "" {
		return override, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home dir: %w", err)
	}

	return filepath.Join(home, dotDir), nil
}

// Load reads config.toml from configDir (default resolution when empty).
// A missing file yields the defaults, not an error.
func Load(configDir string) (*Config, error) {
	dir, err := resolveDir(configDir)
	if err != nil {
		return nil, err
	}

	cfg := NewDefaultConfig()

	data, err := os.ReadFile(filepath.Join(dir, configFile))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save persists the configuration to config.toml, creating the directory
// when needed.
func Save(configDir string, cfg *Config) error {
	dir, err := resolveDir(configDir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	path := filepath.Join(dir, configFile)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
