package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var bucketState = []byte("state")

// Store implements domain.KeyValueStore using BoltDB.
type Store struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// NewStore opens the state database under baseDir. A non-empty profile scopes
// the database to its own subdirectory. An empty baseDir yields a memory-only
// store that forgets everything on Close.
func NewStore(baseDir, profile string) (*Store, error) {
	if baseDir == "" {
		// Memory-only mode (no persistence)
		return &Store{cache: make(map[string][]byte)}, nil
	}

	dir := baseDir
	if profile != "" {
		dir = filepath.Join(baseDir, hashProfile(profile))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "podcatch.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketState)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, cache: make(map[string][]byte)}, nil
}

func hashProfile(profile string) string {
	normalized := strings.TrimSpace(strings.ToLower(profile))
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get returns a copy of the value stored under key
func (s *Store) Get(key string) ([]byte, bool) {
	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return clone(data), true
	}
	s.mu.RUnlock()

	if s.db == nil {
		return nil, false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketState)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = clone(v)
		}
		return nil
	})

	if data == nil {
		return nil, false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[key] = data
	s.mu.Unlock()

	return clone(data), true
}

// Set stores value under key. The memory cache is updated before the disk
// write, so readers in this session see the value even if persisting fails.
func (s *Store) Set(key string, value []byte) error {
	data := clone(value)

	s.mu.Lock()
	s.cache[key] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketState)
		return b.Put([]byte(key), data)
	})
}

func (s *Store) Delete(key string) error {
	s.mu.Lock()
	delete(s.cache, key)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketState)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

// Clear wipes every key
func (s *Store) Clear() error {
	s.mu.Lock()
	s.cache = make(map[string][]byte)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketState) != nil {
			if err := tx.DeleteBucket(bucketState); err != nil {
				return err
			}
		}
		_, err := tx.CreateBucket(bucketState)
		return err
	})
}

// Keys lists stored keys in byte order
func (s *Store) Keys() []string {
	if s.db == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		keys := make([]string, 0, len(s.cache))
		for k := range s.cache {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return keys
	}

	var keys []string
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketState)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
