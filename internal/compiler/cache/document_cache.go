package cache

import (
	"sync"
	"time"

	"github.com/cfgschema/schemac/internal/compiler/builder"
)

// CachedDocument is the build result of one document
type CachedDocument struct {
	Result   *builder.Result
	Hash     string // hash of the expanded text
	Path     string
	CachedAt time.Time
}

// DocumentCache keeps per-document build results between recompilations.
// An entry is only reused when the expanded text hashes the same, so a
// changed fragment invalidates every document including it.
type DocumentCache struct {
	entries map[string]*CachedDocument
	hits    int
	misses  int
	mu      sync.RWMutex
}

// NewDocumentCache creates an empty cache
func NewDocumentCache() *DocumentCache {
	return &DocumentCache{
		entries: make(map[string]*CachedDocument),
	}
}

// Get returns a copy of the cached result for path if it was built from text
// with the given hash.
func (dc *DocumentCache) Get(path, hash string) (*builder.Result, bool) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	entry, exists := dc.entries[path]
	if !exists || entry.Hash != hash {
		dc.misses++
		return nil, false
	}
	dc.hits++
	return entry.Result.Clone(), true
}

// Set stores a copy of result for path
func (dc *DocumentCache) Set(path, hash string, result *builder.Result) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	dc.entries[path] = &CachedDocument{
		Result:   result.Clone(),
		Hash:     hash,
		Path:     path,
		CachedAt: time.Now(),
	}
}

// Invalidate removes an entry from the cache
func (dc *DocumentCache) Invalidate(path string) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	delete(dc.entries, path)
}

// InvalidateAll clears the entire cache
func (dc *DocumentCache) InvalidateAll() {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	dc.entries = make(map[string]*CachedDocument)
}

// Retain drops every entry whose path is not in keep
func (dc *DocumentCache) Retain(keep []string) int {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	set := make(map[string]bool, len(keep))
	for _, k := range keep {
		set[k] = true
	}

	dropped := 0
	for path := range dc.entries {
		if !set[path] {
			delete(dc.entries, path)
			dropped++
		}
	}
	return dropped
}

// Size returns the number of cached entries
func (dc *DocumentCache) Size() int {
	dc.mu.RLock()
	defer dc.mu.RUnlock()

	return len(dc.entries)
}

// Stats returns the number of cache hits and misses so far
func (dc *DocumentCache) Stats() (hits, misses int) {
	dc.mu.RLock()
	defer dc.mu.RUnlock()

	return dc.hits, dc.misses
}

// HitRate returns the cache hit rate as a percentage
func (dc *DocumentCache) HitRate() float64 {
	hits, misses := dc.Stats()
	if hits+misses == 0 {
		return 0.0
	}
	return float64(hits) / float64(hits+misses) * 100.0
}
