//go:build unix

package exchange

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// flock locks the whole backing file with flock(2).
type flock struct{ fd int }

func newFileLock(f *os.File) fileLock { return flock{fd: int(f.Fd())} }

func (l flock) lock(mode LockMode) error {
	how := unix.LOCK_SH
	if mode == Exclusive {
		how = unix.LOCK_EX
	}
	for {
		err := unix.Flock(l.fd, how)
		if !errors.Is(err, unix.EINTR) {
			return err
		}
	}
}

func (l flock) unlock() error {
	for {
		err := unix.Flock(l.fd, unix.LOCK_UN)
		if !errors.Is(err, unix.EINTR) {
			return err
		}
	}
}
