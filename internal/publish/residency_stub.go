//go:build !linux || !(amd64 || arm64)

package publish

import "errors"

// lockResidency is unsupported on this platform.
func lockResidency() error {
	return errors.New("publish: mlockall unsupported on this platform")
}
