//go:build linux && (amd64 || arm64)

package publish

import "golang.org/x/sys/unix"

// lockResidency attempts to lock the process's pages into physical
// memory. Failure is never fatal: the caller logs and continues.
func lockResidency() error {
	return unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE)
}
