// Package cache persists proof conclusions between runs, keyed by the
// contract file's content hash. Proving is far more expensive than
// loading, so unchanged files skip straight to their recorded verdicts.
package cache

import (
	"crypto/md5"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/covenant-dev/covenant"
)

const fileName = "proof_cache.gob"

// DefaultMaxAge bounds how long a conclusion stays trusted. Verdicts do
// not decay, but the prover itself changes between releases.
const DefaultMaxAge = 7 * 24 * time.Hour

type fileMetadata struct {
	Hash         string
	LastModified time.Time
}

// Entry is one cached proof run for a contract file.
type Entry struct {
	Metadata    fileMetadata
	Conclusions []*covenant.Conclusion
	CreatedAt   time.Time
}

// Cache maps contract file paths to their last conclusions.
type Cache struct {
	dir     string
	mutex   sync.RWMutex
	entries map[string]Entry
	maxAge  time.Duration
}

// New opens (or creates) the cache rooted at dir.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	c := &Cache{
		dir:     dir,
		entries: map[string]Entry{},
		maxAge:  DefaultMaxAge,
	}
	if err := c.load(); err != nil {
		return nil, fmt.Errorf("loading cache: %w", err)
	}
	return c, nil
}

// SetMaxAge overrides the entry expiry.
func (c *Cache) SetMaxAge(d time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.maxAge = d
}

// Get returns the cached conclusions for a contract file, or false when
// the file changed, the entry expired, or none was recorded.
func (c *Cache) Get(path string) ([]*covenant.Conclusion, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, ok := c.entries[path]
	if !ok {
		return nil, false
	}
	if c.stale(path, entry) {
		delete(c.entries, path)
		return nil, false
	}
	return entry.Conclusions, true
}

// Set records the conclusions for a contract file and persists the
// cache.
func (c *Cache) Set(path string, concls []*covenant.Conclusion) error {
	meta, err := metadataOf(path)
	if err != nil {
		return fmt.Errorf("hashing %s: %w", path, err)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries[path] = Entry{
		Metadata:    meta,
		Conclusions: concls,
		CreatedAt:   time.Now(),
	}
	return c.save()
}

// InvalidateAll drops every entry.
func (c *Cache) InvalidateAll() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries = map[string]Entry{}
	_ = c.save()
}

func (c *Cache) stale(path string, entry Entry) bool {
	if time.Since(entry.CreatedAt) > c.maxAge {
		return true
	}
	meta, err := metadataOf(path)
	return err != nil || meta != entry.Metadata
}

func (c *Cache) load() error {
	file, err := os.Open(filepath.Join(c.dir, fileName))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer file.Close()
	return gob.NewDecoder(file).Decode(&c.entries)
}

func (c *Cache) save() error {
	file, err := os.Create(filepath.Join(c.dir, fileName))
	if err != nil {
		return err
	}
	defer file.Close()
	return gob.NewEncoder(file).Encode(c.entries)
}

func metadataOf(path string) (fileMetadata, error) {
	file, err := os.Open(path)
	if err != nil {
		return fileMetadata{}, err
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return fileMetadata{}, err
	}
	info, err := file.Stat()
	if err != nil {
		return fileMetadata{}, err
	}
	return fileMetadata{
		Hash:         fmt.Sprintf("%x", hash.Sum(nil)),
		LastModified: info.ModTime(),
	}, nil
}
