package config

import (
	"testing"
	"time"
)

func TestResolveBaseURL(t *testing.T) {
	cases := []struct {
		name   string
		apiURL string
		origin string
		want   string
	}{
		{name: "default relative", apiURL: "", origin: "", want: "http://localhost:5000/api"},
		{name: "relative against origin", apiURL: "/api", origin: "https://docs.example.com", want: "https://docs.example.com/api"},
		{name: "absolute wins", apiURL: "http://10.0.0.5:5000/api/", origin: "https://ignored", want: "http://10.0.0.5:5000/api"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolveBaseURL(tc.apiURL, tc.origin)
			if err != nil {
				t.Fatalf("ResolveBaseURL: %v", err)
			}
			if got != tc.want {
				t.Fatalf("ResolveBaseURL(%q, %q) = %q, want %q", tc.apiURL, tc.origin, got, tc.want)
			}
		})
	}
}

func TestResolveBaseURLRejectsRelativeOrigin(t *testing.T) {
	if _, err := ResolveBaseURL("/api", "localhost"); err == nil {
		t.Fatalf("expected error for origin without scheme")
	}
}

func TestLoadAppliesEnvironmentAndDefaults(t *testing.T) {
	t.Setenv("API_URL", "http://api.internal:8080/api")
	t.Setenv("ARCHIVE_TTL_SECONDS", "60")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "http://api.internal:8080/api" {
		t.Fatalf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.MaxTokens != DefaultMaxTokens {
		t.Fatalf("MaxTokens = %d, want %d", cfg.MaxTokens, DefaultMaxTokens)
	}
	if cfg.ArchiveTTL != time.Minute {
		t.Fatalf("ArchiveTTL = %v, want 1m", cfg.ArchiveTTL)
	}
}

func TestLoadWithOverridesPrefersFlags(t *testing.T) {
	t.Setenv("API_URL", "http://from-env/api")

	cfg, err := LoadWithOverrides(map[string]any{
		"api_url":   "http://from-flag/api",
		"log_level": "",
	})
	if err != nil {
		t.Fatalf("LoadWithOverrides: %v", err)
	}
	if cfg.BaseURL != "http://from-flag/api" {
		t.Fatalf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("empty override should keep default log level, got %q", cfg.LogLevel)
	}
}

func TestLoadRejectsNonPositiveMaxTokens(t *testing.T) {
	t.Setenv("MAX_TOKENS", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for max_tokens=0")
	}
}
