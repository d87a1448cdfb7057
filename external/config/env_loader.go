package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/foxseedlab/tsuyaku/internal/config"
	"gopkg.in/yaml.v3"
)

const configFileEnv = "CONFIG_FILE"

// Load layers defaults, the optional YAML file named by CONFIG_FILE, and
// environment variables, in that order.
func Load() (*internalconfig.Config, error) {
	cfg := internalconfig.Default()

	if path := os.Getenv(configFileEnv); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("environment variables are invalid: %w", err)
	}
	if cfg.MigrateDeprecatedModel() {
		slog.Warn("deprecated elevenlabs model replaced", "model", cfg.ElevenLabsModel)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *internalconfig.Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config file %s does not exist", path)
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}
