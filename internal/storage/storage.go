// Package storage keeps a local archive of response bodies fetched from the API.
package storage

import (
	"fmt"
	"strings"
	"time"
)

// Entry is one archived response.
type Entry struct {
	Path      string
	Body      []byte
	SavedAt   time.Time
	ExpiresAt time.Time
}

// Store archives response bodies keyed by their server path.
type Store interface {
	Close() error
	Put(path string, body []byte) error
	Get(path string) (Entry, bool, error)
	List() ([]Entry, error)
	Delete(path string) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	EntryTTL        time.Duration
	CleanupInterval time.Duration
}

const (
	defaultEntryTTL        = 30 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.EntryTTL <= 0 {
		opts.EntryTTL = defaultEntryTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                    { return nil }
func (noopStore) Put(string, []byte) error        { return nil }
func (noopStore) Get(string) (Entry, bool, error) { return Entry{}, false, nil }
func (noopStore) List() ([]Entry, error)          { return nil, nil }
func (noopStore) Delete(string) error             { return nil }
