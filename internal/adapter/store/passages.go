package store

import (
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

var bucketPassages = []byte("passages")

// BoltPassageStore keeps the full text of every ingested passage keyed by
// its record ID. The vector index only returns IDs and distances, so this
// lookup is what lets the query path ground answers in real passage text.
type BoltPassageStore struct {
	db *bbolt.DB
}

// NewBoltPassageStore opens (or creates) the passage database at path.
func NewBoltPassageStore(path string) (*BoltPassageStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create passage db directory: %w", err)
		}
	}

	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open passage db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketPassages)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create passages bucket: %w", err)
	}

	return &BoltPassageStore{db: db}, nil
}

// Put stores the full text for each record ID in one transaction.
func (s *BoltPassageStore) Put(passages map[string]string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketPassages)
		for id, text := range passages {
			if err := b.Put([]byte(id), []byte(text)); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetText returns the stored text for a record ID.
func (s *BoltPassageStore) GetText(id string) (string, bool, error) {
	var text string
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketPassages).Get([]byte(id))
		if data != nil {
			text = string(data)
			found = true
		}
		return nil
	})
	return text, found, err
}

// Count returns the number of stored passages.
func (s *BoltPassageStore) Count() (int, error) {
	var count int
	err := s.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket(bucketPassages).Stats().KeyN
		return nil
	})
	return count, err
}

func (s *BoltPassageStore) Close() error {
	return s.db.Close()
}
