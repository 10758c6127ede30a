//go:build linux && (amd64 || arm64)

package shmseg

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

func init() {
	unmapMemory = munmapImpl
}

// CreateKeyed creates a new data segment of size bytes for the key,
// failing if one already exists.
func CreateKeyed(key byte, size uint64) (*Segment, error) {
	return createFile(keyPath(key), size)
}

// OpenKeyed maps an existing data segment for key.
func OpenKeyed(key byte) (*Segment, error) {
	return openFile(keyPath(key))
}

// RemoveKeyed removes the backing file for key. Processes that already
// have the segment mapped keep their mapping; the filesystem reclaims
// the storage once every mapping is gone.
func RemoveKeyed(key byte) error {
	return removeFile(keyPath(key))
}

// KeyedExists reports whether a data segment for key is present on
// disk, used as a recovery check before reusing a key.
func KeyedExists(key byte) bool {
	return existsFile(keyPath(key))
}

// CreateNamed creates a new named object (the control region) of size
// bytes, failing if one already exists.
func CreateNamed(name string, size uint64) (*Segment, error) {
	return createFile(namedPath(name), size)
}

// OpenNamed maps an existing named object.
func OpenNamed(name string) (*Segment, error) {
	return openFile(namedPath(name))
}

// OpenOrCreateNamed opens the named object if it exists, or creates and
// zero-initializes one of size bytes otherwise. created reports which
// branch was taken, so the caller knows whether to initialize the
// control-region header.
func OpenOrCreateNamed(name string, size uint64) (seg *Segment, created bool, err error) {
	seg, err = openFile(namedPath(name))
	if err == nil {
		return seg, false, nil
	}
	if !os.IsNotExist(err) {
		return nil, false, err
	}
	seg, err = createFile(namedPath(name), size)
	if err != nil {
		return nil, false, err
	}
	return seg, true, nil
}

func createFile(path string, size uint64) (*Segment, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("shmseg: create %s: %w", path, err)
	}
	cleanup := func() {
		file.Close()
		os.Remove(path)
	}
	if err := file.Truncate(int64(size)); err != nil {
		cleanup()
		return nil, fmt.Errorf("shmseg: truncate %s: %w", path, err)
	}
	mem, err := mmapFile(file, int(size))
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("shmseg: mmap %s: %w", path, err)
	}
	return &Segment{File: file, Mem: mem, Path: path}, nil
}

func openFile(path string) (*Segment, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("shmseg: stat %s: %w", path, err)
	}
	mem, err := mmapFile(file, int(info.Size()))
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("shmseg: mmap %s: %w", path, err)
	}
	return &Segment{File: file, Mem: mem, Path: path}, nil
}

func removeFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("shmseg: remove %s: %w", path, err)
	}
	return nil
}

func existsFile(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func mmapFile(file *os.File, size int) ([]byte, error) {
	return unix.Mmap(int(file.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
}

func munmapImpl(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return unix.Munmap(data)
}
