//go:build linux && (amd64 || arm64)

package publish

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// fileLock is the advisory single-writer lock guarding publication. It
// is non-blocking try followed by a blocking wait, never honoring
// max_wait: the swap's timed wait applies only to the registry mutex.
type fileLock struct {
	file *os.File
}

func acquireFileLock(path string) (*fileLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("publish: open lock file %s: %w", path, err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
			f.Close()
			return nil, fmt.Errorf("publish: flock %s: %w", path, err)
		}
	}
	return &fileLock{file: f}, nil
}

func (l *fileLock) release() error {
	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		l.file.Close()
		return fmt.Errorf("publish: unlock %s: %w", l.file.Name(), err)
	}
	return l.file.Close()
}
