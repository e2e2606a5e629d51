package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const netrisFile = "netris.yaml"

// LoadNetris loads the game configuration.
// Search order: customPath -> ~/.netris/configs/netris.yaml ->
// ./configs/netris.yaml -> embedded default -> DefaultNetrisConfig.
// Keys missing from a file keep their default values. Only an explicit
// customPath that cannot be read or parsed is an error.
func LoadNetris(customPath string) (NetrisConfig, error) {
	if customPath != "" {
		cfg, err := readNetris(customPath)
		if err != nil {
			return cfg, err
		}
		if err := cfg.Validate(); err != nil {
			return cfg, fmt.Errorf("config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	for _, path := range []string{userConfigPath(netrisFile), filepath.Join("configs", netrisFile)} {
		if path == "" {
			continue
		}
		if cfg, err := readNetris(path); err == nil && cfg.Validate() == nil {
			return cfg, nil
		}
	}

	cfg := DefaultNetrisConfig()
	if err := yaml.Unmarshal(defaultNetrisYAML, &cfg); err != nil {
		return DefaultNetrisConfig(), nil
	}
	return cfg, nil
}

func readNetris(path string) (NetrisConfig, error) {
	cfg := DefaultNetrisConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// userConfigPath returns the path of a user config file, or empty if the
// home directory is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".netris", "configs", filename)
}

// Save writes cfg as YAML, creating parent directories.
func Save(path string, cfg NetrisConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
