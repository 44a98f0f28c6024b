package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// IndexPath is where a CPAN mirror publishes its package index.
	IndexPath = "modules/02packages.details.txt.gz"

	DefaultCacheTTL = 24 * time.Hour
)

// Fetcher downloads a mirror's package index into a local cache.
type Fetcher struct {
	mirror   string
	cacheDir string
	ttl      time.Duration
	client   *http.Client
}

// NewFetcher creates a fetcher for mirror caching under cacheDir. A
// non-positive ttl uses DefaultCacheTTL.
func NewFetcher(mirror, cacheDir string, ttl time.Duration) *Fetcher {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Fetcher{
		mirror:   strings.TrimSuffix(mirror, "/"),
		cacheDir: cacheDir,
		ttl:      ttl,
		client:   &http.Client{},
	}
}

// Fetch returns the path of the cached index, downloading it first when the
// cache is missing or older than ttl.
func Fetch(ctx context.Context, mirror, cacheDir string, ttl time.Duration) (string, error) {
	return NewFetcher(mirror, cacheDir, ttl).Fetch(ctx)
}

// Fetch refreshes the cache if needed and returns the cached path.
func (f *Fetcher) Fetch(ctx context.Context) (string, error) {
	if err := os.MkdirAll(f.cacheDir, 0755); err != nil {
		return "", fmt.Errorf("creating cache dir: %w", err)
	}

	if f.isCacheValid() {
		return f.CachePath(), nil
	}

	if err := f.download(ctx); err != nil {
		return "", err
	}
	return f.CachePath(), nil
}

func (f *Fetcher) isCacheValid() bool {
	info, err := os.Stat(f.CachePath())
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) < f.ttl
}

func (f *Fetcher) download(ctx context.Context) error {
	url := fmt.Sprintf("%s/%s", f.mirror, IndexPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("downloading index: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading index: HTTP %d", resp.StatusCode)
	}

	// Write to temp file first, then rename
	dest := f.CachePath()
	tmpPath := dest + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating cache file: %w", err)
	}

	_, err = io.Copy(out, resp.Body)
	out.Close()
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing cache file: %w", err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming cache file: %w", err)
	}

	return nil
}

// CachePath returns where the index is cached.
func (f *Fetcher) CachePath() string {
	return filepath.Join(f.cacheDir, filepath.Base(IndexPath))
}

// Mirror returns the configured mirror URL.
func (f *Fetcher) Mirror() string {
	return f.mirror
}
