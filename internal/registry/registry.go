package registry

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/visp-2/osrm-backend/internal/ipc"
	"github.com/visp-2/osrm-backend/internal/shmseg"
)

// RegistryEntry is a value-copy snapshot of one slot, safe to hand to a
// caller after the underlying memory has moved on.
type RegistryEntry struct {
	Name      string
	ShmKey    byte
	Timestamp uint32
	InUse     bool
}

// RegionRegistry is the name-to-slot map described in package doc.go: a
// fixed DefaultCapacity array of entries resident in a shared-memory
// control region, guarded by an interprocess Mutex/Cond pair that also
// live in that region.
type RegionRegistry struct {
	seg    *shmseg.Segment
	base   unsafe.Pointer
	header *controlHeader
	mu     *ipc.Mutex
	cond   *ipc.Cond
}

// Open maps the named control region, creating and initializing it if
// this is the first process to reference name. If two processes race to
// create the same name, the one that loses the O_CREAT|O_EXCL race in
// shmseg gets an error; it does not fall back to opening the winner's
// region.
func Open(name string) (*RegionRegistry, error) {
	size := ControlRegionSize(DefaultCapacity)
	seg, created, err := shmseg.OpenOrCreateNamed(name, size)
	if err != nil {
		return nil, fmt.Errorf("registry: open %q: %w", name, err)
	}
	base := seg.BasePtr()
	header := ptrAt[controlHeader](base, 0)

	if created {
		copy(header.magic[:], ControlRegionMagic)
		atomic.StoreUint32(&header.version, ControlRegionVersion)
		atomic.StoreUint32(&header.capacity, DefaultCapacity)
	} else {
		if string(header.magic[:]) != ControlRegionMagic {
			seg.Close()
			return nil, fmt.Errorf("registry: %q: not a control region (bad magic)", name)
		}
		if atomic.LoadUint32(&header.version) != ControlRegionVersion {
			seg.Close()
			return nil, fmt.Errorf("registry: %q: unsupported control region version %d", name, header.version)
		}
	}

	return &RegionRegistry{
		seg:    seg,
		base:   base,
		header: header,
		mu:     ipc.NewMutex(&header.mutexState),
		cond:   ipc.NewCond(&header.condSeq),
	}, nil
}

// Close unmaps the control region. It does not remove the backing
// object: other processes may still have it mapped.
func (r *RegionRegistry) Close() error {
	return r.seg.Close()
}

// Mutex returns the registry's interprocess mutex. Every mutation
// (Register, Republish, ReserveKey, ReleaseKey) must happen while this
// is held by the caller; the registry itself does not lock around them.
func (r *RegionRegistry) Mutex() *ipc.Mutex { return r.mu }

// Cond returns the registry's condition variable, signaled after a
// publication so blocked readers can re-check for new data.
func (r *RegionRegistry) Cond() *ipc.Cond { return r.cond }

// Capacity returns the fixed number of slots this control region
// provides.
func (r *RegionRegistry) Capacity() uint32 { return r.header.Capacity() }

// ReserveKey claims the lowest-numbered unused shared-memory key in
// [1, 255] (0 is reserved as the "no key" sentinel) and returns it.
// Callers must hold Mutex().
func (r *RegionRegistry) ReserveKey() (byte, error) {
	bm := bitmapAt(r.base)
	for bit := 1; bit < 256; bit++ {
		if !bitmapTest(bm, bit) {
			bitmapSet(bm, bit)
			return byte(bit), nil
		}
	}
	return 0, ErrKeyExhausted
}

// ReleaseKey returns key to the free pool. Callers must hold Mutex().
func (r *RegionRegistry) ReleaseKey(key byte) error {
	if key == 0 {
		return ErrInvalidSlot
	}
	bitmapClear(bitmapAt(r.base), int(key))
	return nil
}

// Find returns the slot id of the in-use entry named name, or Invalid
// if none matches. It performs no locking: it is the lock-free fast
// read path consumers use, safe because entries only ever transition
// monotonically (unused -> in-use -> republished) and never un-publish
// in place.
func (r *RegionRegistry) Find(name string) int {
	capacity := r.Capacity()
	for i := uint32(0); i < capacity; i++ {
		e := entryAt(r.base, i)
		if atomic.LoadUint32(&e.inUse) == 0 {
			continue
		}
		n := int(e.nameLen)
		if n != len(name) {
			continue
		}
		if string(e.name[:n]) == name {
			return int(i)
		}
	}
	return Invalid
}

// Register claims a free slot for name bound to key and returns its
// slot id. If name is already registered, use Republish instead.
// Callers must hold Mutex().
func (r *RegionRegistry) Register(name string, key byte) (int, error) {
	if len(name) > MaxRegionNameLen {
		return Invalid, ErrNameTooLong
	}
	capacity := r.Capacity()
	for i := uint32(0); i < capacity; i++ {
		e := entryAt(r.base, i)
		if atomic.LoadUint32(&e.inUse) != 0 {
			continue
		}
		copy(e.name[:], name)
		e.nameLen = uint16(len(name))
		atomic.StoreUint32(&e.shmKey, uint32(key))
		atomic.StoreUint32(&e.timestamp, 1)
		atomic.StoreUint32(&e.inUse, 1)
		return int(i), nil
	}
	return Invalid, ErrRegistryFull
}

// FreeSlotCount returns the number of slots currently unused. Callers
// that need to commit several new names atomically can check this
// against the number of registrations they are about to perform before
// mutating anything, so a registry-full condition on the Nth name
// doesn't leave the first N-1 committed with nothing to roll them back
// to. Callers must hold Mutex() for the count to be meaningful against
// a subsequent Register.
func (r *RegionRegistry) FreeSlotCount() uint32 {
	capacity := r.Capacity()
	var free uint32
	for i := uint32(0); i < capacity; i++ {
		e := entryAt(r.base, i)
		if atomic.LoadUint32(&e.inUse) == 0 {
			free++
		}
	}
	return free
}

// GetRegion returns a snapshot of the slot at slotID.
func (r *RegionRegistry) GetRegion(slotID int) (RegistryEntry, error) {
	capacity := int(r.Capacity())
	if slotID < 0 || slotID >= capacity {
		return RegistryEntry{}, ErrInvalidSlot
	}
	e := entryAt(r.base, uint32(slotID))
	return snapshot(e), nil
}

// Republish atomically rebinds the slot at slotID to newKey, bumping its
// timestamp, and returns the key it previously held so the caller can
// schedule that segment's reclamation. Callers must hold Mutex().
func (r *RegionRegistry) Republish(slotID int, newKey byte) (oldKey byte, newTimestamp uint32, err error) {
	capacity := int(r.Capacity())
	if slotID < 0 || slotID >= capacity {
		return 0, 0, ErrInvalidSlot
	}
	e := entryAt(r.base, uint32(slotID))
	if atomic.LoadUint32(&e.inUse) == 0 {
		return 0, 0, ErrInvalidSlot
	}
	oldKey = byte(atomic.LoadUint32(&e.shmKey))
	ts := atomic.AddUint32(&e.timestamp, 1)
	atomic.StoreUint32(&e.shmKey, uint32(newKey))
	return oldKey, ts, nil
}

// Stat returns a snapshot of every in-use slot, for introspection
// tooling (the CLI's list subcommand).
func (r *RegionRegistry) Stat() []RegistryEntry {
	capacity := r.Capacity()
	out := make([]RegistryEntry, 0, capacity)
	for i := uint32(0); i < capacity; i++ {
		e := entryAt(r.base, i)
		if atomic.LoadUint32(&e.inUse) == 0 {
			continue
		}
		out = append(out, snapshot(e))
	}
	return out
}

func snapshot(e *rawEntry) RegistryEntry {
	n := int(e.nameLen)
	return RegistryEntry{
		Name:      string(e.name[:n]),
		ShmKey:    byte(atomic.LoadUint32(&e.shmKey)),
		Timestamp: atomic.LoadUint32(&e.timestamp),
		InUse:     atomic.LoadUint32(&e.inUse) != 0,
	}
}

// Attach increments key's attach count and returns the new count. A
// consumer calls this immediately after resolving a region via Find, so
// a concurrent reclaim can see it is still in use.
func (r *RegionRegistry) Attach(key byte) (uint32, error) {
	if key == 0 {
		return 0, ErrInvalidSlot
	}
	counts := attachCountsAt(r.base)
	return atomic.AddUint32(&counts[key], 1), nil
}

// Detach decrements key's attach count and wakes any WaitForZeroAttach
// caller if the count reached zero.
func (r *RegionRegistry) Detach(key byte) (uint32, error) {
	if key == 0 {
		return 0, ErrInvalidSlot
	}
	counts := attachCountsAt(r.base)
	n := atomic.AddUint32(&counts[key], ^uint32(0)) // decrement
	if n == 0 {
		if _, err := ipc.Wake(&counts[key], 1); err != nil {
			return n, err
		}
	}
	return n, nil
}

// AttachCount returns key's current attach count.
func (r *RegionRegistry) AttachCount(key byte) uint32 {
	if key == 0 {
		return 0
	}
	return atomic.LoadUint32(&attachCountsAt(r.base)[key])
}

// WaitForZeroAttach blocks until key's attach count reaches zero. This
// backs PublicationController's reclaim step: the old segment's key is
// only released for reuse once every consumer that resolved it has
// Detach'd.
func (r *RegionRegistry) WaitForZeroAttach(key byte) error {
	if key == 0 {
		return ErrInvalidSlot
	}
	counts := attachCountsAt(r.base)
	for {
		cur := atomic.LoadUint32(&counts[key])
		if cur == 0 {
			return nil
		}
		if err := ipc.Wait(&counts[key], cur); err != nil {
			return err
		}
	}
}
