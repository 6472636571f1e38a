//go:build !unix

package exchange

import "os"

// Without flock(2) only the in-process lock protects the store.
func newFileLock(*os.File) fileLock { return nil }
