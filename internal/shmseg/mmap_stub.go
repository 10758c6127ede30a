//go:build !linux || !(amd64 || arm64)

package shmseg

import "errors"

// ErrUnsupportedPlatform is returned by every operation in this package
// on platforms other than linux/amd64 and linux/arm64, matching the
// teacher transport's own platform restriction.
var ErrUnsupportedPlatform = errors.New("shmseg: shared memory segments not supported on this platform")

func init() {
	unmapMemory = func([]byte) error { return ErrUnsupportedPlatform }
}

func CreateKeyed(key byte, size uint64) (*Segment, error) { return nil, ErrUnsupportedPlatform }
func OpenKeyed(key byte) (*Segment, error)                { return nil, ErrUnsupportedPlatform }
func RemoveKeyed(key byte) error                          { return ErrUnsupportedPlatform }
func KeyedExists(key byte) bool                            { return false }
func CreateNamed(name string, size uint64) (*Segment, error) { return nil, ErrUnsupportedPlatform }
func OpenNamed(name string) (*Segment, error)                 { return nil, ErrUnsupportedPlatform }
func OpenOrCreateNamed(name string, size uint64) (*Segment, bool, error) {
	return nil, false, ErrUnsupportedPlatform
}
