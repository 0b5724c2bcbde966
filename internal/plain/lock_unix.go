//go:build unix

package plain

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// lockFile takes a POSIX advisory lock on f, shared or exclusive, waiting
// until it is granted.
func lockFile(f *os.File, exclusive bool) error {
	how := unix.LOCK_SH
	if exclusive {
		how = unix.LOCK_EX
	}
	for {
		err := unix.Flock(int(f.Fd()), how)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		return err
	}
}

// unlockFile releases the lock taken by lockFile.
func unlockFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
