//go:build !windows
// +build !windows

package fdlimit

import "syscall"

const (
	minOpenFilesLimit = 1024
)

// Raise increases the soft limit of open files to minOpenFilesLimit if the
// current limit is below it and the hard limit allows it; otherwise the limit
// is left unchanged. A wide merge keeps one descriptor per input run
// open at once.
func Raise() error {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		return err
	}

	if rLimit.Cur >= minOpenFilesLimit {
		return nil
	}

	if rLimit.Max < minOpenFilesLimit {
		return nil
	}

	rLimit.Cur = minOpenFilesLimit

	return syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
}
