package publish

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/visp-2/osrm-backend/internal/registry"
	"github.com/visp-2/osrm-backend/internal/shmseg"
)

func writeFixture(t *testing.T, dir, name string, size int) {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0600); err != nil {
		t.Fatalf("WriteFile %s: %v", name, err)
	}
}

func writeMinimalDataset(t *testing.T, dir, dataset string) {
	t.Helper()
	for _, e := range staticFileTable {
		if e.required {
			writeFixture(t, dir, dataset+e.suffix, 16)
		}
	}
	for _, e := range updatableFileTable {
		if e.required {
			writeFixture(t, dir, dataset+e.suffix, 16)
		}
	}
}

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	writeMinimalDataset(t, dir, "berlin")
	return Config{
		DatasetRoot:       dir,
		ControlRegionName: fmt.Sprintf("test_%s", t.Name()),
		LockPath:          filepath.Join(dir, "datastore.lock"),
		NoMlock:           true,
	}
}

func TestRunFreshPublication(t *testing.T) {
	cfg := testConfig(t)
	ctl := NewController(cfg)

	if err := ctl.Run("berlin", InfiniteWait); err != nil {
		t.Fatalf("Run: %v", err)
	}

	reg, err := registry.Open(cfg.ControlRegionName)
	if err != nil {
		t.Fatalf("registry.Open: %v", err)
	}
	defer reg.Close()

	entries := reg.Stat()
	if len(entries) != 2 {
		t.Fatalf("got %d in-use slots, want 2", len(entries))
	}
	for _, e := range entries {
		if e.Timestamp != 1 {
			t.Fatalf("entry %s has timestamp %d, want 1", e.Name, e.Timestamp)
		}
		if e.ShmKey == 0 {
			t.Fatalf("entry %s has zero shm_key", e.Name)
		}
	}
}

func TestRunMissingRequiredFile(t *testing.T) {
	cfg := testConfig(t)
	if err := os.Remove(filepath.Join(cfg.DatasetRoot, "berlin"+staticFileTable[0].suffix)); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	ctl := NewController(cfg)

	err := ctl.Run("berlin", InfiniteWait)
	if err == nil {
		t.Fatalf("Run succeeded, want ErrMissingRequiredFile")
	}

	reg, err2 := registry.Open(cfg.ControlRegionName)
	if err2 != nil {
		t.Fatalf("registry.Open: %v", err2)
	}
	defer reg.Close()
	if entries := reg.Stat(); len(entries) != 0 {
		t.Fatalf("got %d in-use slots after failed Run, want 0", len(entries))
	}
}

func TestRunRepublicationBumpsTimestampAndRecyclesKeys(t *testing.T) {
	cfg := testConfig(t)
	ctl := NewController(cfg)

	if err := ctl.Run("berlin", InfiniteWait); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if err := ctl.Run("berlin", InfiniteWait); err != nil {
		t.Fatalf("second Run: %v", err)
	}

	reg, err := registry.Open(cfg.ControlRegionName)
	if err != nil {
		t.Fatalf("registry.Open: %v", err)
	}
	defer reg.Close()

	entries := reg.Stat()
	if len(entries) != 2 {
		t.Fatalf("got %d in-use slots, want 2", len(entries))
	}
	for _, e := range entries {
		if e.Timestamp != 2 {
			t.Fatalf("entry %s has timestamp %d after republication, want 2", e.Name, e.Timestamp)
		}
	}

	// The first run's keys (1 and 2) are released once their segments
	// are retired, so the lowest free key is 1 again.
	if err := reg.Mutex().Lock(); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	key, err := reg.ReserveKey()
	if err != nil {
		t.Fatalf("ReserveKey after republication: %v", err)
	}
	if key != 1 {
		t.Fatalf("ReserveKey returned %d after republication, want 1 (old keys recycled)", key)
	}
	if err := reg.ReleaseKey(key); err != nil {
		t.Fatalf("ReleaseKey: %v", err)
	}
	if err := reg.Mutex().Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
}

func TestRunSwapTimesOutWhenMutexHeldExternally(t *testing.T) {
	cfg := testConfig(t)

	holder, err := registry.Open(cfg.ControlRegionName)
	if err != nil {
		t.Fatalf("registry.Open: %v", err)
	}
	defer holder.Close()
	if err := holder.Mutex().Lock(); err != nil {
		t.Fatalf("Lock: %v", err)
	}

	ctl := NewController(cfg)
	start := time.Now()
	runErr := ctl.Run("berlin", 1)
	elapsed := time.Since(start)

	if !errors.Is(runErr, ErrSwapTimedOut) {
		t.Fatalf("Run = %v, want ErrSwapTimedOut", runErr)
	}
	if elapsed < 900*time.Millisecond {
		t.Fatalf("Run returned after %v, want >= 1s", elapsed)
	}

	if entries := holder.Stat(); len(entries) != 0 {
		t.Fatalf("got %d in-use slots after timed-out Run, want 0", len(entries))
	}

	if err := holder.Mutex().Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}

	if err := holder.Mutex().Lock(); err != nil {
		t.Fatalf("re-Lock: %v", err)
	}
	key, err := holder.ReserveKey()
	if err != nil {
		t.Fatalf("ReserveKey after timed-out Run: %v", err)
	}
	if key != 1 {
		t.Fatalf("ReserveKey returned %d after timed-out Run, want 1 (no keys leaked)", key)
	}
	if err := holder.ReleaseKey(key); err != nil {
		t.Fatalf("ReleaseKey: %v", err)
	}
	if err := holder.Mutex().Unlock(); err != nil {
		t.Fatalf("final Unlock: %v", err)
	}

	for k := byte(1); k <= 2; k++ {
		if shmseg.KeyedExists(k) {
			t.Fatalf("segment for key %d exists after timed-out Run, want removed", k)
		}
	}
}
