// Package config provides application configuration from the environment
// and an optional YAML rules file.
package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds the server settings, processed from DEVPULSE_* environment
// variables with the plain GitHub/Redis names accepted as fallbacks.
type Config struct {
	Host        string `default:"0.0.0.0"`
	Port        int    `default:"8080"`
	Development bool   `default:"false"`

	GitHubToken             string `envconfig:"GITHUB_TOKEN"`
	GitHubInstallationToken string `envconfig:"GITHUB_INSTALLATION_TOKEN"`
	GitHubInstallationID    int64  `envconfig:"GITHUB_INSTALLATION_ID"`

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisUsername string `envconfig:"REDIS_USERNAME"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDatabase int    `envconfig:"REDIS_DB"`

	CORSAllowedOrigins []string `split_words:"true" default:"*"`
}

// Load processes the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("devpulse", &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}
	if cfg.GitHubToken == "" && cfg.GitHubInstallationToken == "" {
		return Config{}, fmt.Errorf("either GITHUB_TOKEN or GITHUB_INSTALLATION_TOKEN must be set")
	}
	return cfg, nil
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CacheRules sets the freshness lifetime, in seconds, per response
// namespace. Values of zero fall back to the defaults.
type CacheRules struct {
	Commits      int `yaml:"commits"`
	Repositories int `yaml:"repositories"`
	Summary      int `yaml:"summary"`
}

// Default cache lifetimes in seconds.
const (
	DefaultCommitsMaxAge      = 60
	DefaultRepositoriesMaxAge = 300
	DefaultSummaryMaxAge      = 120
)

// LoadCacheRules reads per-namespace TTL overrides from a YAML file. An
// empty path yields the defaults.
func LoadCacheRules(path string) (CacheRules, error) {
	rules := CacheRules{
		Commits:      DefaultCommitsMaxAge,
		Repositories: DefaultRepositoriesMaxAge,
		Summary:      DefaultSummaryMaxAge,
	}
	if path == "" {
		return rules, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return CacheRules{}, fmt.Errorf("read cache rules file: %w", err)
	}
	var parsed CacheRules
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return CacheRules{}, fmt.Errorf("unmarshal cache rules file: %w", err)
	}

	if parsed.Commits > 0 {
		rules.Commits = parsed.Commits
	}
	if parsed.Repositories > 0 {
		rules.Repositories = parsed.Repositories
	}
	if parsed.Summary > 0 {
		rules.Summary = parsed.Summary
	}
	return rules, nil
}
