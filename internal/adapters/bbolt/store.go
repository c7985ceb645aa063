// Package bbolt implements the ports.Storage interface using bbolt (embedded
// B+ tree). Each mirror set gets its own top-level bucket holding the
// JSON-serialized corpus snapshot. Writes are transactional — a crash
// mid-write cannot corrupt a previously committed snapshot. The index is not
// persisted: it is a pure function of the corpus and is rebuilt on load.
package bbolt

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fortetroy/fedramp-explorer/internal/ports"
)

var (
	keyCorpus  = []byte("corpus")
	keySavedAt = []byte("saved_at")
)

// Store implements ports.Storage backed by bbolt.
type Store struct {
	db *bolt.DB
}

// NewStore opens (or creates) a bbolt database at the given path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveCorpus persists the corpus snapshot for a mirror set, replacing any
// prior snapshot in the same bucket.
func (s *Store) SaveCorpus(mirrorID string, corpus *ports.Corpus) error {
	if corpus == nil {
		return fmt.Errorf("nil corpus")
	}
	data, err := json.Marshal(corpus)
	if err != nil {
		return fmt.Errorf("marshal corpus: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(mirrorID))
		if err != nil {
			return err
		}
		if err := b.Put(keyCorpus, data); err != nil {
			return err
		}
		return b.Put(keySavedAt, []byte(time.Now().UTC().Format(time.RFC3339)))
	})
}

// LoadCorpus retrieves the snapshot for a mirror set.
// Returns nil, nil if none exists (fresh mirror).
func (s *Store) LoadCorpus(mirrorID string) (*ports.Corpus, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(mirrorID))
		if b == nil {
			return nil
		}
		if v := b.Get(keyCorpus); v != nil {
			// Copy out of the transaction: bbolt memory is only valid
			// inside the View callback.
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	corpus := ports.NewCorpus()
	if err := json.Unmarshal(data, corpus); err != nil {
		return nil, fmt.Errorf("unmarshal corpus: %w", err)
	}
	return corpus, nil
}

// DeleteMirror removes all data for a mirror set.
// Idempotent: deleting a nonexistent mirror is not an error.
func (s *Store) DeleteMirror(mirrorID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(mirrorID)) == nil {
			return nil
		}
		return tx.DeleteBucket([]byte(mirrorID))
	})
}
