package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	GitHub   GitHubConfig   `yaml:"github"`
	Insight  InsightConfig  `yaml:"insight"`
	Feeds    FeedsConfig    `yaml:"feeds"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Server   ServerConfig   `yaml:"server"`
}

// DatabaseConfig configures SQLite storage.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// GitHubConfig configures the repository source.
type GitHubConfig struct {
	Username string `yaml:"username"`
	Token    string `yaml:"token"`
	// Enrich fetches per-repo languages and contributor counts.
	Enrich bool `yaml:"enrich"`
}

// InsightConfig configures the optional LLM insight generator.
type InsightConfig struct {
	Enabled bool   `yaml:"enabled"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// FeedsConfig configures the portfolio's blog feed sources.
type FeedsConfig struct {
	Enabled bool       `yaml:"enabled"`
	Limit   int        `yaml:"limit"`
	Feeds   []FeedItem `yaml:"feeds"`
}

// FeedItem is a single RSS/Atom feed entry.
type FeedItem struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// ScheduleConfig configures sync and feed refresh intervals.
type ScheduleConfig struct {
	SyncInterval string `yaml:"sync_interval"`
	FeedInterval string `yaml:"feed_interval"`
}

// ParseSyncInterval returns the sync interval as time.Duration.
func (s ScheduleConfig) ParseSyncInterval() time.Duration {
	d, err := time.ParseDuration(s.SyncInterval)
	if err != nil {
		return time.Hour
	}
	return d
}

// ParseFeedInterval returns the feed refresh interval as time.Duration.
func (s ScheduleConfig) ParseFeedInterval() time.Duration {
	d, err := time.ParseDuration(s.FeedInterval)
	if err != nil {
		return 6 * time.Hour
	}
	return d
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./gitfolio.db"},
		GitHub:   GitHubConfig{Enrich: true},
		Insight: InsightConfig{
			Model: "gpt-4o-mini",
		},
		Feeds: FeedsConfig{
			Enabled: false,
			Limit:   20,
		},
		Schedule: ScheduleConfig{
			SyncInterval: "1h",
			FeedInterval: "6h",
		},
		Server: ServerConfig{Port: 8080},
	}
}

// Load reads configuration from a YAML file and applies env var overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if cfg.GitHub.Username == "" {
		return nil, fmt.Errorf("github.username is required (or set GITHUB_USERNAME)")
	}
	return cfg, nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GITFOLIO_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("GITHUB_USERNAME"); v != "" {
		cfg.GitHub.Username = v
	}
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		cfg.GitHub.Token = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Insight.APIKey = v
		cfg.Insight.Enabled = true
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.Insight.BaseURL = v
	}
}
