package sc4pac

import (
	"errors"
	"fmt"
)

// Sentinel errors, in a flat var block.
var (
	// ErrAbort is returned when the user cancels at an interactive prompt.
	ErrAbort = errors.New("operation aborted by user")
	// ErrNotInteractive is returned when a required prompt occurs in non-interactive mode.
	ErrNotInteractive = errors.New("a prompt is required but the session is non-interactive")

	// ErrChannelsNotAvailable is returned when every configured channel failed to load.
	ErrChannelsNotAvailable = errors.New("no configured channel is available")
	// ErrNoCommonKeys is returned when DecisionTree construction finds metadata that is ambiguous.
	ErrNoCommonKeys = errors.New("variant metadata is ambiguous: no common key across remaining candidates")
	// ErrUnsatisfiableVariantConstraints is returned when the user's configured variant value
	// contradicts the package metadata (no declared value matches).
	ErrUnsatisfiableVariantConstraints = errors.New("configured variant value is not offered by this package")

	// ErrLocked is returned when a cache or lockfile advisory lock is held elsewhere.
	ErrLocked = errors.New("resource is locked by another process")

	// ErrStale is returned by JsonStore when a CAS write's expected-prior value doesn't match.
	ErrStale = errors.New("stale write: on-disk content changed since last read")

	// ErrFileNameNotFound is returned when a download can't name its file.
	ErrFileNameNotFound = errors.New("file name can't be determined")
	// ErrContentLengthInvalid is returned when Content-Length is present but zero/negative-invalid.
	ErrContentLengthInvalid = errors.New("content length is invalid")
	// ErrWrongLength is returned when the bytes actually written don't match the expected length.
	ErrWrongLength = errors.New("downloaded byte count does not match expected content length")
	// ErrStalePartial is returned when resumed bytes don't match the previously-downloaded overlap.
	ErrStalePartial = errors.New("stale partial download: server content changed, retry from scratch")

	// ErrCrossDeviceMove indicates os.Rename failed with EXDEV; caller should copy+remove.
	ErrCrossDeviceMove = errors.New("cross-device move: rename not supported, falling back to copy")
)

// VersionNotFoundError is returned when no configured channel publishes a module.
type VersionNotFoundError struct {
	Module BareModule
}

func (e *VersionNotFoundError) Error() string {
	return fmt.Sprintf("no channel publishes module %s", e.Module)
}

// AssetNotFoundError is returned when a referenced asset id is unknown to every channel.
type AssetNotFoundError struct {
	AssetID string
}

func (e *AssetNotFoundError) Error() string {
	return fmt.Sprintf("asset %q is referenced but not found in any channel", e.AssetID)
}

// MissingVariantError is the recoverable signal raised by the Resolver when a
// package's DecisionTree needs a variant key the caller hasn't decided yet.
// It is never surfaced to the end user as a hard failure: the command driver
// catches it, prompts, and re-resolves.
type MissingVariantError struct {
	Package      BareModule
	Key          string
	Alternatives []string
}

func (e *MissingVariantError) Error() string {
	return fmt.Sprintf("package %s requires a choice for variant key %q (options: %v)", e.Package, e.Key, e.Alternatives)
}

// DownloadError wraps a terminal network failure with its URL and cause.
type DownloadError struct {
	URL   string
	Cause error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download failed for %s: %v", e.URL, e.Cause)
}

func (e *DownloadError) Unwrap() error { return e.Cause }

// ForbiddenError represents an HTTP 403 response.
type ForbiddenError struct{ URL string }

func (e *ForbiddenError) Error() string { return fmt.Sprintf("forbidden: %s", e.URL) }

// UnauthorizedError represents an HTTP 401 response with its realm, if any.
type UnauthorizedError struct {
	URL   string
	Realm string
}

func (e *UnauthorizedError) Error() string {
	if e.Realm != "" {
		return fmt.Sprintf("unauthorized (realm %q): %s", e.Realm, e.URL)
	}
	return fmt.Sprintf("unauthorized: %s", e.URL)
}

// NotFoundError represents a permanent HTTP 404 response.
type NotFoundError struct{ URL string }

func (e *NotFoundError) Error() string { return fmt.Sprintf("not found: %s", e.URL) }

// ChecksumError is returned when a downloaded artifact's SHA-256 doesn't
// match the sidecar CheckFile.
type ChecksumError struct {
	URL      string
	Expected string
	Got      string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: expected %s, got %s", e.URL, e.Expected, e.Got)
}

// ExtractionFailedError wraps an Extractor failure with the archive path.
type ExtractionFailedError struct {
	Archive string
	Cause   error
}

func (e *ExtractionFailedError) Error() string {
	return fmt.Sprintf("extraction failed for %s: %v", e.Archive, e.Cause)
}

func (e *ExtractionFailedError) Unwrap() error { return e.Cause }

// PublishWarning collects packages whose staged files could not be moved
// into place during Publish; the lockfile still reflects what succeeded.
type PublishWarning struct {
	Packages []BareModule
}

func (e *PublishWarning) Error() string {
	return fmt.Sprintf("manual intervention needed: %s", joinModules(e.Packages))
}

func joinModules(mods []BareModule) string {
	s := ""
	for i, m := range mods {
		if i > 0 {
			s += " "
		}
		s += m.String()
	}
	return s
}
