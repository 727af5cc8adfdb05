// Package config provides configuration loading and structs for issuelens.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	GitHub  GitHubConfig  `yaml:"github"`
	Summary SummaryConfig `yaml:"summary"`
	Cache   CacheConfig   `yaml:"cache"`
}

// GitHubConfig holds GitHub API settings.
type GitHubConfig struct {
	// Token is the API token. Empty means unauthenticated requests; the
	// GITHUB_TOKEN environment variable overrides an empty value.
	Token          string `yaml:"token"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// SummaryConfig holds summarization length budgets and batching.
type SummaryConfig struct {
	MaxLength int `yaml:"max_length"`
	MinLength int `yaml:"min_length"`
	// BatchSize bounds how many issue bodies are summarized concurrently.
	BatchSize int `yaml:"batch_size"`
}

// CacheConfig selects and tunes the cache backend.
type CacheConfig struct {
	// Backend is one of "memory", "sqlite", or "disk".
	Backend string `yaml:"backend"`
	// Path is the database file (sqlite) or entry directory (disk).
	Path              string `yaml:"path"`
	DefaultTTLSeconds int    `yaml:"default_ttl_seconds"`
	KeyPrefix         string `yaml:"key_prefix"`
}

// Load reads and parses the config file at path, applies defaults, expands
// the cache path, and fills the GitHub token from the environment when unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	cfg.Cache.Path = expandPath(cfg.Cache.Path, filepath.Dir(path))

	if cfg.GitHub.Token == "" {
		cfg.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings that cannot work together.
func (c *Config) Validate() error {
	if c.Summary.MaxLength <= c.Summary.MinLength {
		return fmt.Errorf("summary max_length (%d) must exceed min_length (%d)",
			c.Summary.MaxLength, c.Summary.MinLength)
	}
	switch c.Cache.Backend {
	case "memory", "sqlite", "disk":
	default:
		return fmt.Errorf("unknown cache backend: %s", c.Cache.Backend)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative
// to configDir; other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
