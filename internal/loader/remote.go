package loader

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"datadash/adapters/tabular"
	"datadash/domain/dataset"
	apperrors "datadash/internal/errors"
)

// RemoteLoader fetches a CSV file from a repository host's raw-file endpoint
type RemoteLoader struct {
	httpClient *http.Client
	cache      *Cache
}

// NewRemoteLoader creates a remote loader. A nil client means a plain
// http.Client with no timeout.
func NewRemoteLoader(httpClient *http.Client, cache *Cache) *RemoteLoader {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cache == nil {
		cache = NewCache()
	}
	return &RemoteLoader{httpClient: httpClient, cache: cache}
}

// Load returns the dataset at repoURL/raw/main/filePath. The body is always
// parsed as CSV, whatever the file path's extension. Results are memoized per
// (repoURL, filePath).
func (l *RemoteLoader) Load(ctx context.Context, repoURL, filePath string) (*dataset.Dataset, error) {
	url := RawFileURL(repoURL, filePath)
	return l.cache.Do(RemoteKey(repoURL, filePath), func() (*dataset.Dataset, error) {
		return l.fetch(ctx, url)
	})
}

func (l *RemoteLoader) fetch(ctx context.Context, url string) (*dataset.Dataset, error) {
	log.Printf("[RemoteLoader] Fetching %s", url)
	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.RemoteFetch(0, "invalid remote URL", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		log.Printf("[RemoteLoader] FAILED - request to %s: %v", url, err)
		return nil, apperrors.RemoteFetch(0, "failed to reach remote source", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		log.Printf("[RemoteLoader] FAILED - %s returned status %d", url, resp.StatusCode)
		return nil, apperrors.RemoteFetch(resp.StatusCode, statusMessage(resp.StatusCode, url), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.RemoteFetch(0, "failed to read remote response", err)
	}
	log.Printf("[RemoteLoader] Fetched %d bytes in %.2fms", len(body), float64(time.Since(startTime).Nanoseconds())/1e6)

	ds, err := tabular.ParseCSV(body)
	if err != nil {
		return nil, apperrors.Parse(string(tabular.FormatCSV), err)
	}
	return ds.WithSource(dataset.SourceDescriptor{Origin: dataset.OriginRemote, Locator: url}), nil
}

func statusMessage(code int, url string) string {
	kind := "Client Error"
	if code >= http.StatusInternalServerError {
		kind = "Server Error"
	}
	return fmt.Sprintf("%d %s: %s for url: %s", code, kind, http.StatusText(code), url)
}
