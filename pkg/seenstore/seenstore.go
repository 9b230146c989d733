// Package seenstore persists the set of post links that already went through
// the pipeline, so scheduled runs do not re-ingest the same posts. Links are
// marked only after a post was fully aggregated, a failed post stays eligible
// for the next run.
package seenstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketName = []byte("seen_links")

type Store struct {
	db *bolt.DB
	mu sync.RWMutex
}

// Open creates the database file (and its directory) if needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("seenstore: create directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("seenstore: open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("seenstore: create bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Seen reports whether the link was marked by an earlier run.
func (s *Store) Seen(link string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var seen bool
	err := s.db.View(func(tx *bolt.Tx) error {
		seen = tx.Bucket(bucketName).Get([]byte(link)) != nil
		return nil
	})
	return seen, err
}

// Mark records the link. The stored value is the mark time, useful when
// inspecting the database by hand.
func (s *Store) Mark(link string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put(
			[]byte(link),
			[]byte(time.Now().Format(time.RFC3339)))
	})
}

// Clear drops every marked link.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketName); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketName)
		return err
	})
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
