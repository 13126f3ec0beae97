package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"failtrack/internal/types"
)

// Default output locations
const (
	DefaultOutputDir     = "output"
	DefaultLocalLLMUrl   = "http://localhost:11434/api/generate"
	DefaultLocalLLMModel = "tinyllama"
	DefaultDashboardAddr = ":8080"
)

// LoadConfig reads the configuration from the given path
func LoadConfig(path string) (*types.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	var cfg types.Config
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	validateConfig(&cfg)
	return &cfg, nil
}

// Default returns the configuration used when no file is given
func Default() *types.Config {
	var cfg types.Config
	validateConfig(&cfg)
	return &cfg
}

// validateConfig applies defaults. The auth log path is deliberately left
// empty so the CLI can ask for it.
func validateConfig(cfg *types.Config) {
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = DefaultOutputDir
	}
	if cfg.Detection.LocalLLMUrl == "" {
		cfg.Detection.LocalLLMUrl = DefaultLocalLLMUrl
	}
	if cfg.Detection.LocalLLMModel == "" {
		cfg.Detection.LocalLLMModel = DefaultLocalLLMModel
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Dashboard.Addr == "" {
		cfg.Dashboard.Addr = DefaultDashboardAddr
	}
}
