package excel

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type cacheEntry[T any] struct {
	size    int64
	modTime time.Time
	value   T
}

// ParseCache remembers the result of parsing a file for as long as its
// size and modification time do not change. There is no eviction.
type ParseCache[T any] struct {
	mu      sync.Mutex
	entries map[string]cacheEntry[T]
}

// NewParseCache creates an empty cache
func NewParseCache[T any]() *ParseCache[T] {
	return &ParseCache[T]{entries: make(map[string]cacheEntry[T])}
}

// GetOrParse returns the cached value for path or calls parse and stores
// its result. Errors are not cached.
func (c *ParseCache[T]) GetOrParse(path string, parse func(path string) (T, error)) (T, error) {
	var zero T

	abs, err := filepath.Abs(path)
	if err != nil {
		return zero, fmt.Errorf("failed to resolve path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return zero, err
	}

	c.mu.Lock()
	entry, ok := c.entries[abs]
	c.mu.Unlock()
	if ok && entry.size == info.Size() && entry.modTime.Equal(info.ModTime()) {
		return entry.value, nil
	}

	value, err := parse(abs)
	if err != nil {
		return zero, err
	}

	c.mu.Lock()
	c.entries[abs] = cacheEntry[T]{size: info.Size(), modTime: info.ModTime(), value: value}
	c.mu.Unlock()
	return value, nil
}

// Invalidate forgets path. It is a no-op on a nil cache.
func (c *ParseCache[T]) Invalidate(path string) {
	if c == nil {
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	c.mu.Lock()
	delete(c.entries, abs)
	c.mu.Unlock()
}

// Len returns the number of cached files
func (c *ParseCache[T]) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
