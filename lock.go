package exchange

import (
	"fmt"
	"sync"
	"time"
)

// LockMode selects shared (read) or exclusive (write) access to the store.
type LockMode int

const (
	Shared LockMode = iota
	Exclusive
)

func (m LockMode) String() string {
	if m == Exclusive {
		return "exclusive"
	}
	return "shared"
}

// fileLock is an advisory lock on the backing file, shared with other
// processes opening the same store.
type fileLock interface {
	lock(mode LockMode) error
	unlock() error
}

// Coordinator is the whole-store lock. Exclusive holders exclude everybody,
// shared holders only exclude exclusive ones.
//
// Within the process, writers are preferred: once a writer waits, new readers
// queue behind it, so a steady flow of readers cannot starve writers. Waiting
// readers are then admitted together when the writer releases.
//
// Across processes the same modes are taken on the backing file. In-process
// readers share a single shared file lock, taken by the first reader and
// released by the last one.
type Coordinator struct {
	rw      sync.RWMutex
	file    fileLock // nil when the store has no backing file lock
	mu      sync.Mutex
	readers int // in-process holders of the shared file lock
	observe func(mode LockMode, waited time.Duration)
}

// Acquire blocks until the lock is granted in the given mode and returns the
// function releasing it. An error means the lock could not be taken and
// nothing is held.
func (c *Coordinator) Acquire(mode LockMode) (release func() error, err error) {
	start := time.Now()
	if mode == Exclusive {
		release, err = c.acquireExclusive()
	} else {
		release, err = c.acquireShared()
	}
	if err == nil && c.observe != nil {
		c.observe(mode, time.Since(start))
	}
	return release, err
}

func (c *Coordinator) acquireExclusive() (func() error, error) {
	c.rw.Lock()
	if c.file != nil {
		if err := c.file.lock(Exclusive); err != nil {
			c.rw.Unlock()
			return nil, fmt.Errorf("could not lock store: %w", err)
		}
	}
	return func() error {
		defer c.rw.Unlock()
		if c.file != nil {
			if err := c.file.unlock(); err != nil {
				return fmt.Errorf("could not unlock store: %w", err)
			}
		}
		return nil
	}, nil
}

func (c *Coordinator) acquireShared() (func() error, error) {
	c.rw.RLock()
	if c.file != nil {
		c.mu.Lock()
		if c.readers == 0 {
			if err := c.file.lock(Shared); err != nil {
				c.mu.Unlock()
				c.rw.RUnlock()
				return nil, fmt.Errorf("could not lock store: %w", err)
			}
		}
		c.readers++
		c.mu.Unlock()
	}
	return func() error {
		defer c.rw.RUnlock()
		if c.file == nil {
			return nil
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		c.readers--
		if c.readers == 0 {
			if err := c.file.unlock(); err != nil {
				return fmt.Errorf("could not unlock store: %w", err)
			}
		}
		return nil
	}, nil
}
