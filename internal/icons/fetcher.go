// Package icons resolves app icon references. Theme names pass
// through untouched; http(s) references are fetched with retries and
// cached on disk so the desktop renders offline after first use.
package icons

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/opendesk/deskshell/internal/logging"
)

const (
	fetchTimeout  = 10 * time.Second
	maxIconBytes  = 4 << 20 // 4 MiB is plenty for an icon
	fetchRetryMax = 3
)

// Fetcher resolves icon references to local paths.
type Fetcher struct {
	client   *retryablehttp.Client
	cacheDir string
	logger   *logging.Logger
}

// NewFetcher creates a fetcher caching under cacheDir, creating the
// directory if needed.
func NewFetcher(cacheDir string, logger *logging.Logger) (*Fetcher, error) {
	if err := os.MkdirAll(cacheDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create icon cache directory: %w", err)
	}

	client := retryablehttp.NewClient()
	client.RetryMax = fetchRetryMax
	client.HTTPClient.Timeout = fetchTimeout
	client.Logger = nil // quiet; outcomes are logged below

	return &Fetcher{
		client:   client,
		cacheDir: cacheDir,
		logger:   logger,
	}, nil
}

// IsRemote reports whether an icon reference needs fetching.
func IsRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// Resolve returns a local path or theme name for an icon reference.
// Non-remote references pass through. Remote references resolve to the
// cached file, fetching on a cache miss; fetch failures fall back to
// the raw reference so rendering degrades instead of breaking.
func (f *Fetcher) Resolve(ref string) string {
	if !IsRemote(ref) {
		return ref
	}

	cached := f.cachePath(ref)
	if _, err := os.Stat(cached); err == nil {
		return cached
	}

	if err := f.fetch(ref, cached); err != nil {
		f.logger.Warn().Err(err).Str("icon", ref).Msg("Icon fetch failed, using reference as-is")
		return ref
	}
	return cached
}

// cachePath derives a stable cache file name from the reference URL.
func (f *Fetcher) cachePath(ref string) string {
	sum := sha256.Sum256([]byte(ref))
	name := hex.EncodeToString(sum[:16])

	ext := ""
	if u, err := url.Parse(ref); err == nil {
		ext = path.Ext(u.Path)
		if len(ext) > 8 {
			ext = ""
		}
	}
	return filepath.Join(f.cacheDir, name+ext)
}

func (f *Fetcher) fetch(ref, dest string) error {
	resp, err := f.client.Get(ref)
	if err != nil {
		return fmt.Errorf("failed to fetch icon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return fmt.Errorf("failed to fetch icon: status %d", resp.StatusCode)
	}

	tmp := dest + ".tmp"
	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}

	_, err = io.Copy(out, io.LimitReader(resp.Body, maxIconBytes))
	closeErr := out.Close()
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if closeErr != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close cache file: %w", closeErr)
	}

	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to save cache file: %w", err)
	}

	f.logger.Debug().Str("icon", ref).Str("path", dest).Msg("Icon cached")
	return nil
}
