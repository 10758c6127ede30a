package shmseg

import (
	"os"
	"unsafe"
)

// unmapMemory is set by the platform-specific file in this package
// (mmap_unix.go, or the stub on unsupported platforms).
var unmapMemory func([]byte) error

// Segment is a single mmap'd shared-memory-backed file: a data segment
// keyed by a single byte, or the registry's named control region. Once
// the writer has finished populating it, a segment's bytes are read-only
// from every other attached process's point of view.
type Segment struct {
	File *os.File
	Mem  []byte
	Path string
}

// BasePtr returns a pointer to the segment's first byte. Valid only
// while the segment remains mapped.
func (s *Segment) BasePtr() unsafe.Pointer {
	return unsafe.Pointer(&s.Mem[0])
}

// Size returns the segment's mapped length in bytes.
func (s *Segment) Size() uint64 {
	return uint64(len(s.Mem))
}

// Close unmaps the segment and closes its backing file descriptor. It
// does not remove the backing file; removal is a separate, explicit step
// (RemoveKeyed for data segments) so that a process can close its own mapping
// without destroying a segment other processes still have open.
func (s *Segment) Close() error {
	var firstErr error
	if s.Mem != nil {
		if err := unmapMemory(s.Mem); err != nil && firstErr == nil {
			firstErr = err
		}
		s.Mem = nil
	}
	if s.File != nil {
		if err := s.File.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.File = nil
	}
	return firstErr
}
