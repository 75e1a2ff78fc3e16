package sc4pac

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// JsonStore provides typed read/write of JSON-encoded state (the plugins
// config, the plugins lock, and CheckFile sidecars) with optimistic
// concurrency on writes.
//
// A write specifies expectedPrior — the byte-for-byte content the caller
// last read (nil meaning "file must not exist yet"). If the file's current
// content doesn't match, the write fails with ErrStale.
type JsonStore struct{}

// NewJsonStore constructs a JsonStore. It has no state of its own: every
// operation is parameterized by an explicit path rather than a hidden
// singleton.
func NewJsonStore() *JsonStore { return &JsonStore{} }

// Read decodes the JSON file at path into v. Returns the raw bytes read too,
// so the caller can pass them back as expectedPrior on a subsequent Write.
func (s *JsonStore) Read(path string, v interface{}) (raw []byte, err error) {
	raw, err = os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return raw, fmt.Errorf("jsonstore: decode %s: %w", path, err)
	}
	return raw, nil
}

// ReadOrInit reads path into v, or — if the file is absent — writes def
// (marshaled) to path and decodes that into v instead.
func (s *JsonStore) ReadOrInit(path string, v interface{}, def interface{}) (raw []byte, err error) {
	raw, err = os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		raw, err = json.MarshalIndent(def, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("jsonstore: marshal default for %s: %w", path, err)
		}
		if err := s.writeAtomic(path, raw); err != nil {
			return nil, err
		}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return raw, fmt.Errorf("jsonstore: decode %s: %w", path, err)
	}
	return raw, nil
}

// Write performs a compare-and-swap write of v to path: if expectedPrior is
// non-nil, the file's current bytes must equal it exactly, or the file must
// be absent when expectedPrior is nil. On mismatch it returns
// ErrStale without touching the file.
func (s *JsonStore) Write(path string, v interface{}, expectedPrior []byte) error {
	current, err := os.ReadFile(path)
	switch {
	case err == nil:
		if expectedPrior == nil || !bytes.Equal(current, expectedPrior) {
			return ErrStale
		}
	case os.IsNotExist(err):
		if expectedPrior != nil {
			return ErrStale
		}
	default:
		return err
	}

	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonstore: marshal %s: %w", path, err)
	}
	return s.writeAtomic(path, raw)
}

// WriteRetryStale retries a single Write once on ErrStale by re-reading the
// current content as the new expectedPrior and invoking merge to recompute
// v from the fresh on-disk state. Retried internally at most once; a second
// ErrStale is surfaced to the caller.
func (s *JsonStore) WriteRetryStale(path string, merge func(priorRaw []byte) (v interface{}, err error)) error {
	prior, readErr := os.ReadFile(path)
	if readErr != nil && !os.IsNotExist(readErr) {
		return readErr
	}
	if os.IsNotExist(readErr) {
		prior = nil
	}
	v, err := merge(prior)
	if err != nil {
		return err
	}
	err = s.Write(path, v, prior)
	if err != ErrStale {
		return err
	}
	// Retry once against the now-current content.
	prior2, readErr2 := os.ReadFile(path)
	if readErr2 != nil && !os.IsNotExist(readErr2) {
		return readErr2
	}
	if os.IsNotExist(readErr2) {
		prior2 = nil
	}
	v2, err := merge(prior2)
	if err != nil {
		return err
	}
	return s.Write(path, v2, prior2)
}

// writeAtomic writes data to path via a temp file + rename so a concurrent
// reader never observes a partially-written file.
func (s *JsonStore) writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DefaultDirMode); err != nil {
		return fmt.Errorf("jsonstore: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("jsonstore: create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("jsonstore: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("jsonstore: sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("jsonstore: close temp: %w", err)
	}
	if err := os.Chmod(tmpName, DefaultFileMode); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("jsonstore: chmod temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("jsonstore: rename into place: %w", err)
	}
	return nil
}
