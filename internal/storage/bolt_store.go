package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	responseBucket = "responses"
	// value layout: expiry unix (8) | saved unix (8) | body
	headerBytes = 16
)

// boltStore implements a Store backed by BoltDB.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	entryTTL        time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(responseBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	store := &boltStore{
		db:              db,
		entryTTL:        opts.EntryTTL,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
	}
	store.lastCleanup.Store(store.now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Put archives body under path, replacing any previous entry.
func (b *boltStore) Put(path string, body []byte) error {
	if b == nil || b.db == nil {
		return nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(responseBucket))
		if bucket == nil {
			return fmt.Errorf("response bucket missing")
		}
		return bucket.Put([]byte(path), encodeEntry(now, now.Add(b.entryTTL), body))
	})
}

// Get returns the archived entry for path. Expired entries are removed and
// reported as missing.
func (b *boltStore) Get(path string) (Entry, bool, error) {
	if b == nil || b.db == nil {
		return Entry{}, false, nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return Entry{}, false, err
	}

	var (
		entry Entry
		found bool
	)
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(responseBucket))
		if bucket == nil {
			return fmt.Errorf("response bucket missing")
		}

		key := []byte(path)
		value := bucket.Get(key)
		if value == nil {
			return nil
		}

		e, ok := decodeEntry(path, value)
		if !ok || !e.ExpiresAt.After(now) {
			return bucket.Delete(key)
		}
		entry, found = e, true
		return nil
	})
	return entry, found, err
}

// List returns live entries ordered by path.
func (b *boltStore) List() ([]Entry, error) {
	if b == nil || b.db == nil {
		return nil, nil
	}

	now := b.now()
	var out []Entry
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(responseBucket))
		if bucket == nil {
			return fmt.Errorf("response bucket missing")
		}
		return bucket.ForEach(func(k, v []byte) error {
			e, ok := decodeEntry(string(k), v)
			if ok && e.ExpiresAt.After(now) {
				out = append(out, e)
			}
			return nil
		})
	})
	return out, err
}

// Delete removes path from the archive; missing paths are not an error.
func (b *boltStore) Delete(path string) error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(responseBucket))
		if bucket == nil {
			return fmt.Errorf("response bucket missing")
		}
		return bucket.Delete([]byte(path))
	})
}

// maybeCleanupExpired removes expired entries on a fixed cadence to avoid unbounded growth.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(responseBucket))
		if bucket == nil {
			return fmt.Errorf("response bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			e, ok := decodeEntry(string(k), v)
			if !ok || !e.ExpiresAt.After(now) {
				if err := cursor.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

func encodeEntry(saved, expiry time.Time, body []byte) []byte {
	buf := make([]byte, headerBytes+len(body))
	binary.BigEndian.PutUint64(buf[0:8], uint64(expiry.Unix()))
	binary.BigEndian.PutUint64(buf[8:16], uint64(saved.Unix()))
	copy(buf[headerBytes:], body)
	return buf
}

// decodeEntry copies value out of the bolt page; the slice is only valid inside the transaction.
func decodeEntry(path string, value []byte) (Entry, bool) {
	if len(value) < headerBytes {
		return Entry{}, false
	}
	expiry := int64(binary.BigEndian.Uint64(value[0:8]))
	saved := int64(binary.BigEndian.Uint64(value[8:16]))
	if expiry <= 0 {
		return Entry{}, false
	}
	body := make([]byte, len(value)-headerBytes)
	copy(body, value[headerBytes:])
	return Entry{
		Path:      path,
		Body:      body,
		SavedAt:   time.Unix(saved, 0),
		ExpiresAt: time.Unix(expiry, 0),
	}, true
}
