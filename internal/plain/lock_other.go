//go:build !unix

package plain

import "os"

// Advisory locks are a POSIX facility; elsewhere access is unlocked.

func lockFile(*os.File, bool) error { return nil }

func unlockFile(*os.File) error { return nil }
