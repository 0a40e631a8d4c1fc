// Package config loads application configuration from embedded
// defaults, an optional YAML file, and WRITECRAFT_* environment
// variables, in increasing order of precedence.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config is the full application configuration.
type Config struct {
	Claude   ClaudeConfig   `yaml:"claude"`
	Supabase SupabaseConfig `yaml:"supabase"`
	Log      LogConfig      `yaml:"log"`
}

// ClaudeConfig configures the Messages API client.
type ClaudeConfig struct {
	APIURL    string `yaml:"api_url"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

// SupabaseConfig configures the auth backend.
type SupabaseConfig struct {
	URL         string `yaml:"url"`
	AnonKey     string `yaml:"anon_key"`
	RedirectURL string `yaml:"redirect_url"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the embedded default configuration with environment
// overrides applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parse embedded defaults: %w", err)
	}
	cfg.applyEnv()
	return cfg, nil
}

// Load overlays the YAML file at path on the embedded defaults, then
// applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parse embedded defaults: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// Environment variables recognized by applyEnv.
const (
	envAPIURL          = "WRITECRAFT_API_URL"
	envModel           = "WRITECRAFT_MODEL"
	envMaxTokens       = "WRITECRAFT_MAX_TOKENS"
	envSupabaseURL     = "WRITECRAFT_SUPABASE_URL"
	envSupabaseAnonKey = "WRITECRAFT_SUPABASE_ANON_KEY"
	envRedirectURL     = "WRITECRAFT_REDIRECT_URL"
	envLogLevel        = "WRITECRAFT_LOG_LEVEL"
)

func (c *Config) applyEnv() {
	if v := os.Getenv(envAPIURL); v != "" {
		c.Claude.APIURL = v
	}
	if v := os.Getenv(envModel); v != "" {
		c.Claude.Model = v
	}
	if v := os.Getenv(envMaxTokens); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Claude.MaxTokens = n
		}
	}
	if v := os.Getenv(envSupabaseURL); v != "" {
		c.Supabase.URL = v
	}
	if v := os.Getenv(envSupabaseAnonKey); v != "" {
		c.Supabase.AnonKey = v
	}
	if v := os.Getenv(envRedirectURL); v != "" {
		c.Supabase.RedirectURL = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		c.Log.Level = v
	}
}

// Logger builds a text slog.Logger at the configured level. Unknown
// levels fall back to info.
func (c *Config) Logger() *slog.Logger {
	var level slog.Level
	switch c.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
