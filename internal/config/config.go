package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName        string `mapstructure:"app_name"`
	Env            string `mapstructure:"app_env"`
	LogLevel       string `mapstructure:"log_level"`
	APIURL         string `mapstructure:"api_url"`
	APIOrigin      string `mapstructure:"api_origin"`
	MaxTokens      int    `mapstructure:"max_tokens"`
	PublishersFile string `mapstructure:"publishers_file"`

	ArchiveType            string        `mapstructure:"archive_type"`
	ArchivePath            string        `mapstructure:"archive_path"`
	ArchiveTTLSeconds      int64         `mapstructure:"archive_ttl_seconds"`
	ArchiveCleanupSeconds  int64         `mapstructure:"archive_cleanup_interval_seconds"`
	ArchiveTTL             time.Duration `mapstructure:"-"`
	ArchiveCleanupInterval time.Duration `mapstructure:"-"`

	// BaseURL is APIURL resolved against APIOrigin when relative.
	BaseURL string `mapstructure:"-"`
}

const (
	DefaultAPIURL    = "/api"
	DefaultAPIOrigin = "http://localhost:5000"
	DefaultMaxTokens = 8000
)

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	return LoadWithOverrides(nil)
}

// LoadWithOverrides behaves like Load but lets callers (CLI flags) replace
// individual keys after the environment has been applied.
func LoadWithOverrides(overrides map[string]any) (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "docquery")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("api_origin", DefaultAPIOrigin)
	v.SetDefault("max_tokens", DefaultMaxTokens)
	v.SetDefault("publishers_file", "")
	v.SetDefault("archive_type", "bbolt")
	v.SetDefault("archive_path", "./data/responses.db")
	v.SetDefault("archive_ttl_seconds", int64((30*24*time.Hour)/time.Second))
	v.SetDefault("archive_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()

	for key, val := range overrides {
		if s, ok := val.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		v.Set(key, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.MaxTokens <= 0 {
		return nil, fmt.Errorf("invalid max_tokens (must be positive)")
	}
	if cfg.ArchiveTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid archive_ttl_seconds (must be positive seconds)")
	}
	if cfg.ArchiveCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid archive_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.ArchiveTTL = time.Duration(cfg.ArchiveTTLSeconds) * time.Second
	cfg.ArchiveCleanupInterval = time.Duration(cfg.ArchiveCleanupSeconds) * time.Second

	base, err := ResolveBaseURL(cfg.APIURL, cfg.APIOrigin)
	if err != nil {
		return nil, err
	}
	cfg.BaseURL = base

	return &cfg, nil
}

// ResolveBaseURL returns apiURL unchanged when it is absolute, otherwise joins
// it onto origin. An empty apiURL falls back to DefaultAPIURL.
func ResolveBaseURL(apiURL, origin string) (string, error) {
	apiURL = strings.TrimSpace(apiURL)
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	u, err := url.Parse(apiURL)
	if err != nil {
		return "", fmt.Errorf("parse api_url %q: %w", apiURL, err)
	}
	if u.IsAbs() {
		if u.Host == "" {
			return "", fmt.Errorf("api_url %q has no host", apiURL)
		}
		return strings.TrimRight(u.String(), "/"), nil
	}

	origin = strings.TrimSpace(origin)
	if origin == "" {
		origin = DefaultAPIOrigin
	}
	o, err := url.Parse(origin)
	if err != nil {
		return "", fmt.Errorf("parse api_origin %q: %w", origin, err)
	}
	if !o.IsAbs() || o.Host == "" {
		return "", fmt.Errorf("api_origin %q must be an absolute URL", origin)
	}
	return strings.TrimRight(o.ResolveReference(u).String(), "/"), nil
}
