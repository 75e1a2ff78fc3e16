package sc4pac

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/sc4pac/sc4pac-core/internal/flock"
	"github.com/sc4pac/sc4pac-core/pkg/logger"
)

// FileCache is a content-addressed on-disk cache keyed by URL, with a
// sidecar CheckFile per entry and resumable downloads via Downloader.
type FileCache struct {
	root           string
	client         *http.Client
	store          *JsonStore
	maxParallel    *semaphore.Weighted
	sessionCookies func(host string) string
	handlers       *Handlers
	log            logger.Logger
}

// NewFileCache constructs a FileCache rooted at root, using client for HTTP
// and bounding concurrent downloads to maxParallel.
func NewFileCache(root string, client *http.Client, maxParallel int) *FileCache {
	if maxParallel <= 0 {
		maxParallel = DefaultMaxParallelism
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &FileCache{
		root:        root,
		client:      client,
		store:       NewJsonStore(),
		maxParallel: semaphore.NewWeighted(int64(maxParallel)),
		log:         logger.NewNopLogger(),
	}
}

// SetLogger installs l as the destination for this cache's cache-hit/miss
// and download lifecycle messages.
func (c *FileCache) SetLogger(l logger.Logger) {
	if l != nil {
		c.log = l
	}
}

// SetSessionCookieResolver installs a callback used to attach an
// authenticated-host session cookie to outgoing requests.
func (c *FileCache) SetSessionCookieResolver(resolve func(host string) string) {
	c.sessionCookies = resolve
}

// SetHandlers wires progress/completion callbacks into every download this
// cache performs from here on.
func (c *FileCache) SetHandlers(h *Handlers) {
	c.handlers = h
}

// localPath derives the stable on-disk path for rawURL: sha256(rawURL) as
// the filename, under root, so repeated calls for the same URL always agree
// without needing a separate index.
func (c *FileCache) localPath(rawURL string) string {
	h := sha256.Sum256([]byte(rawURL))
	return filepath.Join(c.root, hex.EncodeToString(h[:]))
}

func (c *FileCache) sidecarPath(localPath string) string {
	return localPath + ChecksumSidecarExt
}

func (c *FileCache) lockPath(rawURL string) string {
	return c.localPath(rawURL) + ".lock"
}

// TTL returns the sidecar's last-modified time, or false if the artifact
// has never been fetched.
func (c *FileCache) TTL(rawURL string) (time.Time, bool) {
	info, err := os.Stat(c.sidecarPath(c.localPath(rawURL)))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// isFresh reports whether rawURL's cached entry, if any, still satisfies
// ttl. changing artifacts (e.g. the channel index) always need a positive
// ttl to ever be considered fresh; non-changing artifacts with ttl<=0 are
// trusted indefinitely once fetched, since their URL already encodes the
// content identity.
func (c *FileCache) isFresh(rawURL string, ttl time.Duration, changing bool) bool {
	modTime, ok := c.TTL(rawURL)
	if !ok {
		return false
	}
	if _, err := os.Stat(c.localPath(rawURL)); err != nil {
		return false
	}
	if ttl <= 0 {
		return !changing
	}
	return time.Since(modTime) < ttl
}

// File returns a local path for the artifact at rawURL, downloading on a
// cache miss or once ttl has elapsed since the last fetch.
func (c *FileCache) File(ctx context.Context, rawURL string, ttl time.Duration, changing bool) (string, error) {
	dest := c.localPath(rawURL)

	if c.isFresh(rawURL, ttl, changing) {
		c.log.Info("cache hit: %s", rawURL)
		return dest, nil
	}

	if err := c.maxParallel.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer c.maxParallel.Release(1)

	lock, ok, err := flock.TryAcquire(c.lockPath(rawURL))
	if err != nil {
		return "", fmt.Errorf("filecache: %w", err)
	}
	if !ok {
		return "", ErrLocked
	}
	defer lock.Unlock()

	// Re-check freshness now that we hold the lock: another process may
	// have just finished fetching it while we waited.
	if c.isFresh(rawURL, ttl, changing) {
		return dest, nil
	}

	if err := os.MkdirAll(c.root, DefaultDirMode); err != nil {
		return "", fmt.Errorf("filecache: mkdir %s: %w", c.root, err)
	}

	var cookie string
	if c.sessionCookies != nil {
		if host, err := hostOf(rawURL); err == nil {
			cookie = c.sessionCookies(host)
		}
	}

	c.log.Info("fetching %s", rawURL)
	downloader := NewDownloader(c.client, DownloaderOpts{SessionCookie: cookie, Handlers: c.handlers})
	sum, err := downloader.Download(ctx, rawURL, dest)
	if err != nil {
		c.log.Error("fetch failed for %s: %v", rawURL, err)
		return "", err
	}

	check := CheckFile{Filename: filenameFromURL(rawURL), Checksum: ChecksumC{SHA256: sum}}
	raw, err := jsonMarshalIndent(check)
	if err != nil {
		return "", err
	}
	// We hold the per-URL lock, so any existing sidecar is ours to replace
	// unconditionally rather than go through JsonStore's CAS path.
	if err := c.store.writeAtomic(c.sidecarPath(dest), raw); err != nil {
		return "", err
	}

	return dest, nil
}

// Verify recomputes the SHA-256 of the cached file at rawURL and compares
// it against the sidecar CheckFile, returning a ChecksumError on mismatch.
func (c *FileCache) Verify(rawURL string) error {
	dest := c.localPath(rawURL)
	var check CheckFile
	if _, err := c.store.Read(c.sidecarPath(dest), &check); err != nil {
		return fmt.Errorf("filecache: read sidecar: %w", err)
	}
	sum, err := hashFile(dest)
	if err != nil {
		return err
	}
	if !check.Matches(sum) {
		return &ChecksumError{URL: rawURL, Expected: check.Checksum.SHA256, Got: sum}
	}
	return nil
}

func jsonMarshalIndent(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// hostOf returns the host component of a URL.
func hostOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return u.Hostname(), nil
}

// filenameFromURL derives a sanitized candidate filename from a URL's last
// path segment, used to populate CheckFile.Filename. Response headers such
// as Content-Disposition are not consulted.
func filenameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return sanitizeFilename(path.Base(u.Path))
}
