package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/banksync-dev/banksync/internal/normalize"
)

// FileName is the configuration file expected at a project root.
const FileName = "banksync.yaml"

// Config represents the top-level banksync.yaml configuration.
type Config struct {
	User     UserConfig     `yaml:"user"`
	Database DatabaseConfig `yaml:"database"`
	Sync     SyncConfig     `yaml:"sync"`
}

// UserConfig identifies the owner of the synced accounts.
type UserConfig struct {
	Name string `yaml:"name"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// SyncConfig controls the reconciliation run.
type SyncConfig struct {
	Institution string `yaml:"institution"`
	// LookbackDays bounds how old an authorization date recovered from a
	// description may be, relative to the settlement date.
	LookbackDays int `yaml:"lookback_days"`
}

// Load reads a banksync.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(userName string) *Config {
	return &Config{
		User: UserConfig{
			Name: userName,
		},
		Database: DatabaseConfig{
			Path: "banksync.db",
		},
		Sync: SyncConfig{
			Institution:  "ptsb",
			LookbackDays: normalize.DefaultLookbackDays,
		},
	}
}
