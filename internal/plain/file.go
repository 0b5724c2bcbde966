package plain

import (
	"fmt"
	"io"
	"os"
)

// The helpers below hold an advisory lock for exactly one read or one
// write. A caller that reads, modifies and writes back is not protected
// against another process writing in between; stores are last-write-wins.

// readLocked returns the content of path under a shared lock.
func readLocked(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := lockFile(f, false); err != nil {
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}
	defer unlockFile(f)

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// writeLocked replaces the content of path in place under an exclusive lock.
// The file is rewritten rather than renamed over so that the lock, which
// belongs to the inode, covers the data other processes will read.
func writeLocked(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0o600)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if err := lockFile(f, true); err != nil {
		return fmt.Errorf("locking %s: %w", path, err)
	}
	defer unlockFile(f)

	return replaceContent(f, path, data)
}

// rewriteLocked reads path and writes back fn's result while holding one
// exclusive lock across both steps. A missing file reads as empty.
func rewriteLocked(path string, fn func(old []byte) []byte) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if err := lockFile(f, true); err != nil {
		return fmt.Errorf("locking %s: %w", path, err)
	}
	defer unlockFile(f)

	old, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return replaceContent(f, path, fn(old))
}

func replaceContent(f *os.File, path string, data []byte) error {
	if err := f.Truncate(0); err != nil {
		return fmt.Errorf("truncating %s: %w", path, err)
	}
	if _, err := f.WriteAt(data, 0); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing %s: %w", path, err)
	}
	return nil
}
