package core

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FingerprintCache stores the last accepted fingerprint per room.
//
// No cross-process locking is provided: one orchestrator owns a cache at a time.
type FingerprintCache interface {
	// Previous returns the stored fingerprint for room. A missing or
	// unreadable entry reports ok == false.
	Previous(room string) (fp Fingerprint, ok bool)

	// Commit replaces the stored fingerprint for room.
	Commit(room string, fp Fingerprint) error
}

// FileCache implements FingerprintCache with one plain-text file per room.
//
// Structure:
//
//	{Dir}/
//	  {room-name}   (entire content is the fingerprint)
type FileCache struct {
	// Dir is the root directory for cache storage.
	Dir string
}

// NewFileCache creates the cache directory if needed and returns the cache.
// An already existing directory is not an error.
func NewFileCache(dir string) (*FileCache, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &FileCache{Dir: dir}, nil
}

// Previous reads {Dir}/{room}.
func (c *FileCache) Previous(room string) (Fingerprint, bool) {
	data, err := os.ReadFile(c.entryPath(room))
	if err != nil {
		return "", false
	}
	return Fingerprint(data), true
}

// Commit writes fp to {Dir}/{room}, creating Dir if it was removed since
// construction.
func (c *FileCache) Commit(room string, fp Fingerprint) error {
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	if err := writeFileAtomic(c.entryPath(room), []byte(fp), 0o644); err != nil {
		return fmt.Errorf("writing cache entry for %q: %w", room, err)
	}
	return nil
}

func (c *FileCache) entryPath(room string) string {
	return filepath.Join(c.Dir, room)
}

// writeFileAtomic writes through a temp file in the same directory and renames
// it into place, so a crash never leaves a truncated fingerprint behind.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	tmp, err := os.CreateTemp(dir, "."+base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	_ = tmp.Sync()
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// MemoryCache implements FingerprintCache in memory.
// Useful for testing and short-lived processes.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]Fingerprint
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]Fingerprint)}
}

// Previous returns the stored fingerprint.
func (c *MemoryCache) Previous(room string) (Fingerprint, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fp, ok := c.entries[room]
	return fp, ok
}

// Commit stores fp.
func (c *MemoryCache) Commit(room string, fp Fingerprint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[room] = fp
	return nil
}

// Len reports the number of stored entries.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
