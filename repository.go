package exchange

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"
)

// Observer is notified of lock acquisitions and store saves.
type Observer interface {
	LockAcquired(mode LockMode, waited time.Duration)
	StoreSaved()
}

// Option configures a Repository.
type Option func(*Repository)

// WithObserver installs an observer on the repository.
func WithObserver(o Observer) Option {
	return func(r *Repository) { r.observer = o }
}

// Repository is the single handle on a store file. Every access goes through
// WithReadLock or WithWriteLock, which hold the whole-store lock across the
// full load-mutate-save sequence.
//
// A Repository is safe for concurrent use.
type Repository struct {
	path     string
	file     *os.File
	lock     *Coordinator
	observer Observer
}

// Open opens, or creates, the store file at path.
func Open(path string, opts ...Option) (*Repository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("could not create directory for store %q: %w", path, err)
		}
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("could not open store file %q: %w", path, err)
	}
	r := &Repository{path: path, file: f}
	for _, opt := range opts {
		opt(r)
	}
	r.lock = &Coordinator{file: newFileLock(f)}
	if r.observer != nil {
		r.lock.observe = r.observer.LockAcquired
	}
	return r, nil
}

// Path returns the store file path.
func (r *Repository) Path() string { return r.path }

// Close closes the store file. No lock may be held.
func (r *Repository) Close() error { return r.file.Close() }

// WithReadLock loads the store under the shared lock and passes it to fn.
// Changes fn makes to the store are discarded.
func (r *Repository) WithReadLock(fn func(*Store) error) (err error) {
	release, err := r.lock.Acquire(Shared)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, release()) }()

	s, err := r.load()
	if err != nil {
		return err
	}
	return fn(s)
}

// WithWriteLock loads the store under the exclusive lock, passes it to fn
// and, if fn succeeds, saves it back. When fn fails the store file is left
// untouched and fn's error is returned.
func (r *Repository) WithWriteLock(fn func(*Store) error) (err error) {
	release, err := r.lock.Acquire(Exclusive)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, release()) }()

	s, err := r.load()
	if err != nil {
		return err
	}
	if err := fn(s); err != nil {
		return err
	}
	return r.save(s)
}

// Verify checks the store file under the shared lock. It returns one
// message per dropped record or broken invariant.
func (r *Repository) Verify() (problems []string, err error) {
	release, err := r.lock.Acquire(Shared)
	if err != nil {
		return nil, err
	}
	defer func() { err = errors.Join(err, release()) }()
	return VerifyStore(io.NewSectionReader(r.file, 0, math.MaxInt64))
}

// load decodes the whole file. It reads with ReadAt so that concurrent
// readers sharing the handle do not race on the file offset.
func (r *Repository) load() (*Store, error) {
	s, err := DecodeStore(io.NewSectionReader(r.file, 0, math.MaxInt64))
	if err != nil {
		return nil, fmt.Errorf("could not load store %q: %w", r.path, err)
	}
	return s, nil
}

// save replaces the whole file content and flushes it to stable storage.
// The caller holds the exclusive lock.
func (r *Repository) save(s *Store) error {
	var b bytes.Buffer
	if err := EncodeStore(&b, s); err != nil {
		return err
	}
	if err := r.file.Truncate(0); err != nil {
		return fmt.Errorf("could not truncate store %q: %w", r.path, err)
	}
	if _, err := r.file.WriteAt(b.Bytes(), 0); err != nil {
		return fmt.Errorf("could not write store %q: %w", r.path, err)
	}
	if err := r.file.Sync(); err != nil {
		return fmt.Errorf("could not sync store %q: %w", r.path, err)
	}
	if r.observer != nil {
		r.observer.StoreSaved()
	}
	return nil
}
