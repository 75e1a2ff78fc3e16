package sc4pac

// Handlers is the set of caller-supplied callbacks fired while resolving,
// downloading, staging, and publishing. Every field is optional; a nil
// field is simply not invoked. cmd/sc4pac wires these to a vbauerster/mpb
// progress bar (see progress.go); tests can instead record calls directly.
type Handlers struct {
	// DownloadProgress reports bytes transferred so far and the expected
	// total (0 when unknown) for the artifact at url.
	DownloadProgress func(url string, nread, total int64)
	// DownloadComplete fires once an artifact's bytes have been moved to
	// their final cache path and hashed, before FileCache writes the sidecar
	// CheckFile.
	DownloadComplete func(url string)
	// MissingVariant fires each time the Resolver needs an answer for a
	// variant key it cannot find in the global variant.
	MissingVariant func(pkg BareModule, key string, alternatives []string)
	// PackageWarning fires when a package's info.warning is non-empty
	// during staging.
	PackageWarning func(pkg BareModule, warning string)
	// PublishProgress reports which dependency is currently being moved
	// into the plugins tree.
	PublishProgress func(dep Dep)
}

func (h *Handlers) fireProgress(url string, nread, total int64) {
	if h != nil && h.DownloadProgress != nil {
		h.DownloadProgress(url, nread, total)
	}
}

func (h *Handlers) fireDownloadComplete(url string) {
	if h != nil && h.DownloadComplete != nil {
		h.DownloadComplete(url)
	}
}

func (h *Handlers) fireMissingVariant(pkg BareModule, key string, alternatives []string) {
	if h != nil && h.MissingVariant != nil {
		h.MissingVariant(pkg, key, alternatives)
	}
}

func (h *Handlers) firePackageWarning(pkg BareModule, warning string) {
	if h != nil && h.PackageWarning != nil {
		h.PackageWarning(pkg, warning)
	}
}

func (h *Handlers) firePublishProgress(dep Dep) {
	if h != nil && h.PublishProgress != nil {
		h.PublishProgress(dep)
	}
}
