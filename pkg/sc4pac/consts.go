// Package sc4pac implements the resolve-stage-publish pipeline of the
// sc4pac package manager core: dependency resolution over channel metadata,
// a two-tier content-addressed cache with resumable downloads, extraction
// staging, and atomic publish into a managed plugins directory.
package sc4pac

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// Size unit constants.
const (
	B  int64 = 1
	KB       = 1024 * B
	MB       = 1024 * KB
	GB       = 1024 * MB
)

const (
	// DefaultChunkSize is the buffered copy size used by the Downloader.
	DefaultChunkSize = 32 * KB
	// OverlapBytes is the number of trailing bytes re-verified on resume.
	OverlapBytes = 8 * KB
	// DefaultUserAgent is sent with every request unless overridden.
	DefaultUserAgent = "sc4pac/1.0"
	// DefaultMaxParallelism is the FileCache's default concurrent-download knob.
	DefaultMaxParallelism = 2

	// DefaultFileMode is used for files written by sc4pac-core.
	DefaultFileMode = 0644
	// DefaultDirMode is used for directories created by sc4pac-core.
	DefaultDirMode = 0755

	// SC4PacSuffix marks an sc4pac-owned extraction tree on disk.
	SC4PacSuffix = ".sc4pac"
)

// ChecksumSidecarExt is the suffix of a FileCache sidecar CheckFile.
const ChecksumSidecarExt = ".checked"

// DefaultChangingTTL is the revalidation interval applied to "changing"
// artifacts such as the channel index.
const DefaultChangingTTL = 1 * time.Hour

// sanitizeFilename removes characters that are invalid on common filesystems
// and strips path separators so a server-advertised filename (an untrusted
// Content-Disposition value or CheckFile.Filename) can never escape the
// cache or staging directory.
func sanitizeFilename(name string) string {
	if name == "" {
		return name
	}
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	// Never allow the decoded name to reintroduce a path component.
	name = filepath.Base(name)

	invalid := []string{"<", ">", ":", "\"", "|", "?", "*"}
	for _, c := range invalid {
		name = strings.ReplaceAll(name, c, "_")
	}
	var b strings.Builder
	for _, r := range name {
		if r >= 32 {
			b.WriteRune(r)
		}
	}
	name = strings.Trim(b.String(), " .")
	if name == "" || name == "." || name == ".." {
		name = "download"
	}
	return name
}
