package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Adda-Baaj/docquery/internal/config"
	"github.com/Adda-Baaj/docquery/pkg/publishers"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		BaseURL:                "http://localhost:5000/api",
		MaxTokens:              config.DefaultMaxTokens,
		ArchiveType:            "bbolt",
		ArchivePath:            filepath.Join(t.TempDir(), "responses.db"),
		ArchiveTTL:             time.Hour,
		ArchiveCleanupInterval: time.Hour,
	}
}

func TestNewRequiresConfig(t *testing.T) {
	if _, err := New(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestNewWiresClientAndArchive(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	if a.Client().BaseURL() != "http://localhost:5000/api" {
		t.Fatalf("base url = %s", a.Client().BaseURL())
	}
	archive, err := a.Archive()
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if err := archive.Put("r.md", []byte(`{}`)); err != nil {
		t.Fatalf("archive Put: %v", err)
	}
	if _, err := a.Publish(context.Background(), "q", 10, []byte(`{}`)); !errors.Is(err, ErrNoPublishers) {
		t.Fatalf("expected ErrNoPublishers, got %v", err)
	}
}

func TestPublishDeliversToConfiguredSinks(t *testing.T) {
	var got publishers.Event
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer sink.Close()

	file := filepath.Join(t.TempDir(), "publishers.yaml")
	yaml := "publishers:\n  - id: hook\n    type: http\n    http:\n      url: " + sink.URL + "\n"
	if err := os.WriteFile(file, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write publishers file: %v", err)
	}

	cfg := testConfig(t)
	cfg.PublishersFile = file
	a, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	n, err := a.Publish(context.Background(), "what is new?", 500, []byte(`{"response":"ok"}`))
	if err != nil || n != 1 {
		t.Fatalf("Publish n=%d err=%v", n, err)
	}
	if got.Query != "what is new?" || got.MaxTokens != 500 || got.Source != cfg.BaseURL {
		t.Fatalf("unexpected event %+v", got)
	}
}

func TestNewFailsOnBadPublishersFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.PublishersFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := New(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for missing publishers file")
	}
}

func TestArchiveOpensOnFirstUse(t *testing.T) {
	cfg := testConfig(t)

	first, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New first: %v", err)
	}
	defer first.Close()
	if _, err := first.Archive(); err != nil {
		t.Fatalf("first Archive: %v", err)
	}

	// a second runtime on the same path must not contend for the file lock
	// until it actually needs the archive
	second, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New second while archive held: %v", err)
	}
	defer second.Close()

	if err := first.Close(); err != nil {
		t.Fatalf("Close first: %v", err)
	}
	archive, err := second.Archive()
	if err != nil {
		t.Fatalf("second Archive after release: %v", err)
	}
	if _, found, err := archive.Get("missing"); err != nil || found {
		t.Fatalf("Get found=%v err=%v", found, err)
	}
}

func TestNewDoesNotCreateArchiveFile(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(cfg.ArchivePath); !os.IsNotExist(err) {
		t.Fatalf("archive file should not exist before first use, stat err=%v", err)
	}
}
