package loader

import (
	"log"
	"strings"
	"sync"

	"datadash/adapters/tabular"
	"datadash/domain/dataset"
	apperrors "datadash/internal/errors"
)

// Extension returns the lower-cased text after the last "." in filename,
// or "" when there is no ".".
func Extension(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(filename[i+1:])
}

// UploadLoader parses uploaded files, choosing the parser by extension.
// Parsed uploads stay cached while some holder (a dashboard session) has
// retained their key.
type UploadLoader struct {
	cache *Cache

	mu    sync.Mutex
	holds map[string]int
}

// NewUploadLoader creates an upload loader backed by cache
func NewUploadLoader(cache *Cache) *UploadLoader {
	if cache == nil {
		cache = NewCache()
	}
	return &UploadLoader{cache: cache, holds: make(map[string]int)}
}

// Key returns the cache key an upload is stored under
func (l *UploadLoader) Key(filename string, content []byte) string {
	return UploadKey(Extension(filename), content)
}

// Load parses content according to filename's extension. Identical content
// with the same extension is parsed once.
func (l *UploadLoader) Load(filename string, content []byte) (*dataset.Dataset, error) {
	ext := Extension(filename)
	format, ok := tabular.FormatForExtension(ext)
	if !ok {
		log.Printf("[UploadLoader] FAILED - unsupported extension %q for file %s", ext, filename)
		return nil, apperrors.UnsupportedFormat(ext)
	}

	source := dataset.SourceDescriptor{Origin: dataset.OriginUploaded, Locator: filename}
	ds, err := l.cache.Do(UploadKey(ext, content), func() (*dataset.Dataset, error) {
		log.Printf("[UploadLoader] Parsing %s as %s (%d bytes)", filename, format, len(content))
		parsed, err := tabular.Parser(format)(content)
		if err != nil {
			return nil, apperrors.Parse(string(format), err)
		}
		return parsed, nil
	})
	if err != nil {
		return nil, err
	}
	return ds.WithSource(source), nil
}

// Lookup returns a previously loaded upload by its key
func (l *UploadLoader) Lookup(key, filename string) (*dataset.Dataset, bool) {
	ds, ok := l.cache.Get(key)
	if !ok {
		return nil, false
	}
	return ds.WithSource(dataset.SourceDescriptor{Origin: dataset.OriginUploaded, Locator: filename}), true
}

// Retain records one more holder of the upload stored under key
func (l *UploadLoader) Retain(key string) {
	l.mu.Lock()
	l.holds[key]++
	l.mu.Unlock()
}

// Release drops one holder of key and evicts the upload once none remain
func (l *UploadLoader) Release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.holds[key] > 1 {
		l.holds[key]--
		return
	}
	delete(l.holds, key)
	l.cache.Evict(key)
}

// Discard evicts the upload stored under key unless something retains it
func (l *UploadLoader) Discard(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.holds[key] == 0 {
		l.cache.Evict(key)
	}
}
