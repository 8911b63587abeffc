// Package config loads the optional YAML configuration file. Every value
// has a default, and CLI flags override whatever the file says.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the runtime settings.
type Config struct {
	// DataDir is where record and allocator files live.
	DataDir string `yaml:"data_dir"`
	// Workers sizes the background pool.
	Workers int `yaml:"workers"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the settings used when no file and no flags say
// otherwise.
func Default() Config {
	return Config{
		DataDir:  "./data",
		Workers:  4,
		LogLevel: "info",
	}
}

// Load reads the YAML file at path over the defaults. A missing file is
// not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.Workers < 1 {
		return cfg, fmt.Errorf("config %s: workers must be at least 1", path)
	}
	return cfg, nil
}
