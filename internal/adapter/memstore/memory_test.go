package memstore

import (
	"testing"

	"fngroup/internal/domain"
)

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache()

	if _, found, _ := c.Get("/src/b.fng"); found {
		t.Fatal("expected empty cache")
	}

	c.Put(domain.CacheEntry{SourcePath: "/src/b.fng", Groups: 2})
	c.Put(domain.CacheEntry{SourcePath: "/src/a.fng", Groups: 1})

	entry, found, err := c.Get("/src/b.fng")
	if err != nil || !found {
		t.Fatalf("expected entry, got found=%v err=%v", found, err)
	}
	if entry.Groups != 2 {
		t.Errorf("expected Groups=2, got %d", entry.Groups)
	}

	entries, _ := c.List()
	if len(entries) != 2 || entries[0].SourcePath != "/src/a.fng" {
		t.Errorf("expected sorted entries, got %+v", entries)
	}

	c.Delete("/src/a.fng")
	entries, _ = c.List()
	if len(entries) != 1 {
		t.Errorf("expected 1 entry after delete, got %d", len(entries))
	}
}
