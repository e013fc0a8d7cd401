package loader

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"datadash/domain/dataset"
	"datadash/internal"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes successfully loaded datasets until they are evicted.
// Concurrent loads of the same key share a single fetch/parse; failures are
// not stored, so a later call with the same key tries again.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*dataset.Dataset
	group   singleflight.Group
	logger  *internal.Logger
}

// NewCache creates an empty cache
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]*dataset.Dataset),
		logger:  internal.NewLogger("Cache"),
	}
}

// Get returns the dataset stored under key
func (c *Cache) Get(key string) (*dataset.Dataset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ds, ok := c.entries[key]
	return ds, ok
}

// Do returns the cached dataset for key, or runs load and caches its result.
func (c *Cache) Do(key string, load func() (*dataset.Dataset, error)) (*dataset.Dataset, error) {
	if ds, ok := c.Get(key); ok {
		c.logger.Debugf("hit %s", key)
		return ds, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if ds, ok := c.Get(key); ok {
			return ds, nil
		}
		ds, err := load()
		if err != nil {
			c.logger.Debugf("load of %s failed, not cached", key)
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = ds
		c.mu.Unlock()
		c.logger.Debugf("stored %s (%d rows)", key, ds.NumRows())
		return ds, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*dataset.Dataset), nil
}

// Len returns the number of cached datasets
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Evict drops the dataset stored under key, if any
func (c *Cache) Evict(key string) {
	c.mu.Lock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	remaining := len(c.entries)
	c.mu.Unlock()
	if ok {
		c.logger.Infof("Evicted %s (%d datasets cached)", key, remaining)
	}
}

// RemoteKey encodes the remote loader's arguments. The length prefix keeps
// ("a/b", "c") and ("a", "b/c") apart.
func RemoteKey(repoURL, filePath string) string {
	return fmt.Sprintf("remote:%d:%s|%s", len(repoURL), repoURL, filePath)
}

// UploadKey identifies an upload by the hash of its bytes and the extension
// that selects its parser. The filename itself is not part of the key.
func UploadKey(ext string, content []byte) string {
	sum := sha256.Sum256(content)
	return fmt.Sprintf("upload:%s:%s", ext, hex.EncodeToString(sum[:]))
}
