package port

import "fngroup/internal/domain"

// GenCache remembers what was generated for each source so unchanged files
// can be skipped.
type GenCache interface {
	Get(sourcePath string) (domain.CacheEntry, bool, error)

	Put(entry domain.CacheEntry) error

	Delete(sourcePath string) error

	List() ([]domain.CacheEntry, error)

	Close() error
}
