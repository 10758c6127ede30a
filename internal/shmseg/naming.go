package shmseg

import (
	"fmt"
	"os"
	"path/filepath"
)

// segmentPrefix namespaces this service's objects within /dev/shm (or the
// temp-dir fallback) so it never collides with an unrelated process's
// shared memory.
const segmentPrefix = "osrm_shm_"

// keyPath returns the backing file path for the data segment identified
// by key, a single byte in [1, 255].
func keyPath(key byte) string {
	return objectPath(fmt.Sprintf("%s%d", segmentPrefix, key))
}

// namedPath returns the backing file path for a named object, such as
// the registry's control region.
func namedPath(name string) string {
	return objectPath(segmentPrefix + name)
}

func objectPath(fileName string) string {
	if isDevShmAvailable() {
		return filepath.Join("/dev/shm", fileName)
	}
	return filepath.Join(os.TempDir(), fileName)
}

func isDevShmAvailable() bool {
	info, err := os.Stat("/dev/shm")
	if err != nil {
		return false
	}
	return info.IsDir()
}
