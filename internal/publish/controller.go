package publish

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/visp-2/osrm-backend/internal/ipc"
	"github.com/visp-2/osrm-backend/internal/layout"
	"github.com/visp-2/osrm-backend/internal/registry"
	"github.com/visp-2/osrm-backend/internal/shmseg"
)

// InfiniteWait is the max_wait sentinel meaning "block indefinitely" on
// the registry mutex during the swap's commit step.
const InfiniteWait = -1

// PublicationController runs the writer-side publication protocol: one
// call to Run walks a dataset directory, builds and populates a segment
// per region, then commits them into the region registry.
type PublicationController struct {
	cfg Config
}

// NewController returns a controller bound to cfg.
func NewController(cfg Config) *PublicationController {
	return &PublicationController{cfg: cfg}
}

// preparedRegion is a region whose segment has been allocated and
// populated but not yet committed to the registry.
type preparedRegion struct {
	name string
	key  byte
	seg  *shmseg.Segment
}

// Run materializes datasetName's static and updatable regions and
// atomically publishes them. maxWaitSeconds is the swap's
// registry-mutex timeout; pass InfiniteWait to block indefinitely.
func (c *PublicationController) Run(datasetName string, maxWaitSeconds int) error {
	lock, err := acquireFileLock(c.cfg.LockPath)
	if err != nil {
		return err
	}
	defer lock.release()

	if !c.cfg.NoMlock {
		if err := lockResidency(); err != nil {
			log.Printf("publish: page residency lock refused (continuing): %v", err)
		}
	}

	reg, err := registry.Open(c.cfg.ControlRegionName)
	if err != nil {
		return fmt.Errorf("publish: open control region: %w", err)
	}
	defer reg.Close()

	regions := []struct {
		suffix string
		name   string
	}{
		{StaticRegionSuffix, datasetName + "/" + StaticRegionSuffix},
		{UpdatableRegionSuffix, datasetName + "/" + UpdatableRegionSuffix},
	}

	prepared := make([]*preparedRegion, 0, len(regions))
	cleanup := func() {
		for _, p := range prepared {
			p.seg.Close()
			if err := shmseg.RemoveKeyed(p.key); err != nil {
				log.Printf("publish: cleanup: remove segment for key %d: %v", p.key, err)
			}
			c.releaseKey(reg, p.key)
		}
	}

	for _, r := range regions {
		p, err := c.prepareRegion(reg, datasetName, r.name, r.suffix, maxWaitSeconds)
		if err != nil {
			cleanup()
			return err
		}
		prepared = append(prepared, p)
	}

	if err := c.swap(reg, prepared, maxWaitSeconds); err != nil {
		cleanup()
		return err
	}
	return nil
}

// lockRegistryMutex acquires reg's mutex, blocking indefinitely if
// maxWaitSeconds is negative or for at most maxWaitSeconds otherwise.
// A timeout is reported as ipc.ErrTimeout, not translated here, so
// callers can decide how to surface it.
func lockRegistryMutex(reg *registry.RegionRegistry, maxWaitSeconds int) error {
	if maxWaitSeconds < 0 {
		return reg.Mutex().Lock()
	}
	return reg.Mutex().LockTimeout(time.Duration(maxWaitSeconds) * time.Second)
}

// prepareRegion builds a layout by walking regionSuffix's file table,
// reserves a key, allocates a segment sized to the descriptor plus
// body, and populates every present block. Reserving the key shares
// maxWaitSeconds with the swap's own commit step, so a caller that
// bounds the whole publication's wait on the registry mutex is bounded
// here too, not just once a region has already been prepared.
func (c *PublicationController) prepareRegion(reg *registry.RegionRegistry, datasetName, regionName, regionSuffix string, maxWaitSeconds int) (*preparedRegion, error) {
	table := fileTableFor(regionSuffix)
	l := layout.New()
	present := make([]fileEntry, 0, len(table))

	for _, e := range table {
		path := filepath.Join(c.cfg.DatasetRoot, datasetName+e.suffix)
		info, err := os.Stat(path)
		if err != nil {
			if e.required {
				return nil, fmt.Errorf("%w: %s", ErrMissingRequiredFile, path)
			}
			log.Printf("publish: optional file missing, skipping: %s", path)
			continue
		}
		if err := l.SetBlock(e.blockName, layout.Sized[byte](uint64(info.Size()))); err != nil {
			return nil, fmt.Errorf("publish: %s: %w", e.blockName, err)
		}
		present = append(present, e)
	}

	if err := lockRegistryMutex(reg, maxWaitSeconds); err != nil {
		if errors.Is(err, ipc.ErrTimeout) {
			return nil, ErrSwapTimedOut
		}
		return nil, err
	}
	key, err := reg.ReserveKey()
	reg.Mutex().Unlock()
	if err != nil {
		return nil, err
	}

	if shmseg.KeyedExists(key) {
		log.Printf("publish: stale segment exists for key %d, removing", key)
		if err := shmseg.RemoveKeyed(key); err != nil {
			log.Printf("publish: remove stale segment for key %d: %v", key, err)
		}
	}

	sl := computeSegmentLayout(l)
	seg, err := shmseg.CreateKeyed(key, sl.segmentSize)
	if err != nil {
		c.releaseKey(reg, key)
		return nil, fmt.Errorf("publish: allocate segment for %s: %w", regionName, err)
	}

	writeHeader(seg.Mem, sl)

	reader := StubReader{}
	for _, e := range present {
		block, err := bodyBlock(seg.Mem, sl, l, e.blockName)
		if err != nil {
			seg.Close()
			shmseg.RemoveKeyed(key)
			c.releaseKey(reg, key)
			return nil, err
		}
		if block == nil {
			continue
		}
		path := filepath.Join(c.cfg.DatasetRoot, datasetName+e.suffix)
		if err := reader.ReadInto(path, block); err != nil {
			seg.Close()
			shmseg.RemoveKeyed(key)
			c.releaseKey(reg, key)
			return nil, err
		}
	}

	if err := checkConnectivity(seg.Mem, sl, l); err != nil {
		seg.Close()
		shmseg.RemoveKeyed(key)
		c.releaseKey(reg, key)
		return nil, err
	}

	return &preparedRegion{name: regionName, key: key, seg: seg}, nil
}

func (c *PublicationController) releaseKey(reg *registry.RegionRegistry, key byte) {
	reg.Mutex().Lock()
	if err := reg.ReleaseKey(key); err != nil {
		log.Printf("publish: release key %d: %v", key, err)
	}
	reg.Mutex().Unlock()
}

type retiredHandle struct {
	key      byte
	retiring bool
}

// swap commits prepared under the registry mutex, broadcasts, then
// reclaims whatever the commit displaced.
func (c *PublicationController) swap(reg *registry.RegionRegistry, prepared []*preparedRegion, maxWaitSeconds int) error {
	if lockErr := lockRegistryMutex(reg, maxWaitSeconds); lockErr != nil {
		if errors.Is(lockErr, ipc.ErrTimeout) {
			return ErrSwapTimedOut
		}
		return lockErr
	}

	slots := make([]int, len(prepared))
	var newCount uint32
	for i, p := range prepared {
		if len(p.name) > registry.MaxRegionNameLen {
			reg.Mutex().Unlock()
			return registry.ErrNameTooLong
		}
		slots[i] = reg.Find(p.name)
		if slots[i] == registry.Invalid {
			newCount++
		}
	}
	if newCount > reg.FreeSlotCount() {
		reg.Mutex().Unlock()
		return registry.ErrRegistryFull
	}

	retired := make([]retiredHandle, len(prepared))
	for i, p := range prepared {
		if slots[i] == registry.Invalid {
			if _, err := reg.Register(p.name, p.key); err != nil {
				reg.Mutex().Unlock()
				return err
			}
			retired[i] = retiredHandle{retiring: false}
			continue
		}
		oldKey, _, err := reg.Republish(slots[i], p.key)
		if err != nil {
			reg.Mutex().Unlock()
			return err
		}
		retired[i] = retiredHandle{key: oldKey, retiring: true}
	}

	if err := reg.Mutex().Unlock(); err != nil {
		return err
	}
	if err := reg.Cond().Broadcast(); err != nil {
		return err
	}

	for _, rh := range retired {
		if !rh.retiring {
			continue
		}
		if err := shmseg.RemoveKeyed(rh.key); err != nil {
			log.Printf("publish: remove retired segment for key %d: %v", rh.key, err)
		}
		if err := reg.WaitForZeroAttach(rh.key); err != nil {
			log.Printf("publish: %v: %v", ErrDetachWaitInterrupted, err)
			continue
		}
		c.releaseKey(reg, rh.key)
	}
	return nil
}
