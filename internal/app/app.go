package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Adda-Baaj/docquery/internal/config"
	"github.com/Adda-Baaj/docquery/internal/logger"
	"github.com/Adda-Baaj/docquery/internal/storage"
	"github.com/Adda-Baaj/docquery/pkg/apiclient"
	"github.com/Adda-Baaj/docquery/pkg/publishers"
)

// ErrNoPublishers is returned by Publish when no publishers file is configured.
var ErrNoPublishers = errors.New("no publishers configured")

// App is the CLI runtime. It owns the API client, the local response archive
// and the optional publisher fanout, and releases them on Close.
type App struct {
	cfg    *config.Config
	client *apiclient.Client
	fanout *publishers.Fanout
	log    logger.Logger

	// archive is opened on first use; bbolt holds an exclusive file lock.
	archiveMu sync.Mutex
	archive   storage.Store
}

// New builds the runtime from cfg.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := apiclient.New(cfg.BaseURL, apiclient.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("init api client: %w", err)
	}
	log.DebugObj("api client ready", "api_config", map[string]any{
		"base_url":   client.BaseURL(),
		"max_tokens": cfg.MaxTokens,
	})

	a := &App{cfg: cfg, client: client, log: log}

	if strings.TrimSpace(cfg.PublishersFile) != "" {
		fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
		if err != nil {
			return nil, err
		}
		a.fanout = fanout
	}
	return a, nil
}

func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	reg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := reg.Enabled()
	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, p := range enabled {
		summaries = append(summaries, map[string]string{"id": p.ID, "type": p.Type})
	}
	log.DebugObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubs), nil
}

// Config returns the configuration the runtime was built from.
func (a *App) Config() *config.Config { return a.cfg }

// Client returns the API client.
func (a *App) Client() *apiclient.Client { return a.client }

// Archive opens the local response archive on first call and returns it.
func (a *App) Archive() (storage.Store, error) {
	a.archiveMu.Lock()
	defer a.archiveMu.Unlock()
	if a.archive != nil {
		return a.archive, nil
	}

	cfg := a.cfg
	archive, err := storage.NewStore(cfg.ArchiveType, cfg.ArchivePath, storage.Options{
		EntryTTL:        cfg.ArchiveTTL,
		CleanupInterval: cfg.ArchiveCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init archive: %w", err)
	}
	a.log.DebugObj("archive initialized", "archive_config", map[string]any{
		"type":                     cfg.ArchiveType,
		"path":                     cfg.ArchivePath,
		"ttl_seconds":              int(cfg.ArchiveTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.ArchiveCleanupInterval.Seconds()),
	})
	a.archive = archive
	return archive, nil
}

// Logger returns the logger components should trace through.
func (a *App) Logger() logger.Logger { return a.log }

// Publish sends one answered query to every configured publisher and returns
// how many accepted it.
func (a *App) Publish(ctx context.Context, query string, maxTokens int, answer []byte) (int, error) {
	if a.fanout.Size() == 0 {
		return 0, ErrNoPublishers
	}
	evt := publishers.NewEvent(a.client.BaseURL(), query, maxTokens, answer)
	n, err := a.fanout.Publish(ctx, evt)
	a.log.InfoObj("answer published", "publish_meta", map[string]any{
		"delivered":  n,
		"publishers": a.fanout.Size(),
	})
	return n, err
}

// Close releases the archive and publisher connections.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	a.archiveMu.Lock()
	if a.archive != nil {
		if err := a.archive.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close archive: %w", err))
		}
		a.archive = nil
	}
	a.archiveMu.Unlock()
	if err := a.fanout.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
