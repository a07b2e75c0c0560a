// Package store implements the persistent key/value capability spec.md
// §9 describes as "an injected capability with get(key)/put(key, value)
// over a JSON-like value space" — batch configuration records, recent-
// batch records, and input history (spec.md §6). Grounded on the
// teacher's internal/cache.Cache bbolt-backed pattern (bucket-per-concern,
// JSON/binary-encoded values, one *bolt.DB guarded by the process), with
// one deliberate departure: the teacher's Cache is a disposable,
// self-cleaning read/write-DB pair rebuilt every run (orphaned entries
// are dropped on close); Store holds configuration a user expects to
// survive indefinitely, so it opens one durable *bolt.DB instead of the
// teacher's swap-on-close pair (see DESIGN.md for this departure's
// justification). cmd/blastmerge is the only caller; internal/batch and
// internal/orchestrator never import this package, keeping persistence
// out of the core (spec.md §9).
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	bucketBatches = "batches"
	bucketRecent  = "recent"
	bucketHistory = "history"

	maxRecentEntries  = 10
	maxHistoryEntries = 20
)

// BatchConfig is the persisted shape of one named batch definition
// (spec.md §6).
type BatchConfig struct {
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	Patterns         []string `json:"patterns"`
	SearchPaths      []string `json:"search_paths"`
	Exclusions       []string `json:"exclusions,omitempty"`
	SkipEmpty        bool     `json:"skip_empty"`
	PromptBeforeEach bool     `json:"prompt_before_each"`
}

// RecentBatch records when a batch was last run (spec.md §6).
type RecentBatch struct {
	Name         string `json:"name"`
	LastUsedUTC  string `json:"last_used_utc_iso8601"`
}

// Store is a durable bbolt-backed key/value store for the three
// persisted shapes spec.md §6 names.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if absent) a bbolt database at path with the three
// buckets this package needs.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{bucketBatches, bucketRecent, bucketHistory} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init store buckets: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// PutBatch saves (or replaces) a named batch configuration.
func (s *Store) PutBatch(cfg BatchConfig) error {
	return s.putJSON(bucketBatches, cfg.Name, cfg)
}

// GetBatch loads a named batch configuration. ok is false if no batch by
// that name has been saved.
func (s *Store) GetBatch(name string) (cfg BatchConfig, ok bool, err error) {
	ok, err = s.getJSON(bucketBatches, name, &cfg)
	return cfg, ok, err
}

// ListBatchNames returns every saved batch's name, ascending.
func (s *Store) ListBatchNames() ([]string, error) {
	return s.keys(bucketBatches)
}

// DeleteBatch removes a named batch configuration.
func (s *Store) DeleteBatch(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketBatches)).Delete([]byte(name))
	})
}

// TouchRecent records batchName as just-used, keeping the most-recent
// maxRecentEntries names (spec.md §6's "recent-batch record", most-recent
// first, capped at 10).
func (s *Store) TouchRecent(batchName string, nowUTCISO8601 string) error {
	recents, err := s.ListRecent()
	if err != nil {
		return err
	}

	filtered := recents[:0]
	for _, r := range recents {
		if r.Name != batchName {
			filtered = append(filtered, r)
		}
	}
	updated := append([]RecentBatch{{Name: batchName, LastUsedUTC: nowUTCISO8601}}, filtered...)
	if len(updated) > maxRecentEntries {
		updated = updated[:maxRecentEntries]
	}

	return s.putJSON(bucketRecent, "list", updated)
}

// ListRecent returns the recent-batch list, most-recent first.
func (s *Store) ListRecent() ([]RecentBatch, error) {
	var recents []RecentBatch
	_, err := s.getJSON(bucketRecent, "list", &recents)
	return recents, err
}

// AppendHistory appends value to promptKey's input history, keeping the
// most recent maxHistoryEntries entries (spec.md §6).
func (s *Store) AppendHistory(promptKey, value string) error {
	history, err := s.ListHistory(promptKey)
	if err != nil {
		return err
	}
	history = append(history, value)
	if len(history) > maxHistoryEntries {
		history = history[len(history)-maxHistoryEntries:]
	}
	return s.putJSON(bucketHistory, promptKey, history)
}

// ListHistory returns promptKey's recorded input history, oldest first.
func (s *Store) ListHistory(promptKey string) ([]string, error) {
	var history []string
	_, err := s.getJSON(bucketHistory, promptKey, &history)
	return history, err
}

func (s *Store) putJSON(bucket, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", bucket, key, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Put([]byte(key), data)
	})
}

func (s *Store) getJSON(bucket, key string, dest any) (bool, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucket)).Get([]byte(key))
		if v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decode %s/%s: %w", bucket, key, err)
	}
	return true, nil
}

func (s *Store) keys(bucket string) ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucket)).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}
