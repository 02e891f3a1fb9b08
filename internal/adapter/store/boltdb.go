package store

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"fngroup/internal/domain"
)

var (
	bucketEntries = []byte("entries")
	bucketMeta    = []byte("meta")
)

// BoltStore is the generation cache: one entry per .fng source, keyed by
// its absolute path.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketEntries, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// OpenReadOnly opens an existing cache without write access, for runs that
// must not change it.
func OpenReadOnly(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 2 * time.Second, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.View(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketEntries, bucketMeta} {
			if tx.Bucket(b) == nil {
				return fmt.Errorf("missing bucket %s", b)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

type entryMeta struct {
	OutputPath string `json:"output_path"`
	SourceHash string `json:"source_hash"`
	OutputHash string `json:"output_hash"`
	Groups     int    `json:"groups"`
}

func (s *BoltStore) Get(sourcePath string) (domain.CacheEntry, bool, error) {
	var entry domain.CacheEntry
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketEntries).Get([]byte(sourcePath))
		if data == nil {
			return nil
		}
		var meta entryMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			return fmt.Errorf("corrupt cache entry %s: %w", sourcePath, err)
		}
		entry = toEntry(sourcePath, meta)
		found = true
		return nil
	})
	return entry, found, err
}

func (s *BoltStore) Put(entry domain.CacheEntry) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(entryMeta{
			OutputPath: entry.OutputPath,
			SourceHash: entry.SourceHash,
			OutputHash: entry.OutputHash,
			Groups:     entry.Groups,
		})
		if err != nil {
			return err
		}
		return tx.Bucket(bucketEntries).Put([]byte(entry.SourcePath), data)
	})
}

func (s *BoltStore) Delete(sourcePath string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEntries).Delete([]byte(sourcePath))
	})
}

// List returns every entry in source path order.
func (s *BoltStore) List() ([]domain.CacheEntry, error) {
	var entries []domain.CacheEntry
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEntries).ForEach(func(k, v []byte) error {
			var meta entryMeta
			if err := json.Unmarshal(v, &meta); err != nil {
				return fmt.Errorf("corrupt cache entry %s: %w", k, err)
			}
			entries = append(entries, toEntry(string(k), meta))
			return nil
		})
	})
	return entries, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func toEntry(sourcePath string, meta entryMeta) domain.CacheEntry {
	return domain.CacheEntry{
		SourcePath: sourcePath,
		OutputPath: meta.OutputPath,
		SourceHash: meta.SourceHash,
		OutputHash: meta.OutputHash,
		Groups:     meta.Groups,
	}
}
