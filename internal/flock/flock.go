// Package flock provides advisory, cross-process exclusive file locking,
// used to serialize writers on the plugins lockfile and artifact cache
// entries that multiple sc4pac-core processes might touch concurrently.
//
// The unix/windows split follows the common daemon-pidfile pattern: one
// shared Lock type here, one syscall-backed implementation per platform.
package flock

import (
	"fmt"
	"os"
)

// Lock is a held advisory lock on a path. Call Unlock to release it.
type Lock struct {
	file *os.File
	path string
}

// Path returns the filesystem path this lock was acquired on.
func (l *Lock) Path() string { return l.path }

// Acquire blocks until it obtains an exclusive advisory lock on path,
// creating the file if necessary. The lock is released by calling Unlock
// on the returned Lock, or automatically when the process exits.
func Acquire(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("flock: open %s: %w", path, err)
	}
	if err := lockExclusive(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("flock: lock %s: %w", path, err)
	}
	return &Lock{file: f, path: path}, nil
}

// TryAcquire attempts to obtain the lock without blocking. ok is false
// (with a nil error) if the lock is currently held elsewhere.
func TryAcquire(path string) (l *Lock, ok bool, err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, false, fmt.Errorf("flock: open %s: %w", path, err)
	}
	acquired, err := tryLockExclusive(f)
	if err != nil {
		f.Close()
		return nil, false, fmt.Errorf("flock: trylock %s: %w", path, err)
	}
	if !acquired {
		f.Close()
		return nil, false, nil
	}
	return &Lock{file: f, path: path}, true, nil
}

// Unlock releases the lock and closes the underlying file handle.
func (l *Lock) Unlock() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := unlock(l.file)
	closeErr := l.file.Close()
	l.file = nil
	if err != nil {
		return err
	}
	return closeErr
}
