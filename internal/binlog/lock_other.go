//go:build !unix

package binlog

import "os"

// Only unix builds take an advisory lock.
func lockFile(*os.File) error { return nil }

func unlockFile(*os.File) error { return nil }
