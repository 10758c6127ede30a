package registry

import "errors"

// ErrKeyExhausted is returned by ReserveKey when every key in [1, 255]
// is already reserved.
var ErrKeyExhausted = errors.New("registry: no shared-memory keys available")

// ErrRegistryFull is returned by Register when every slot is occupied.
var ErrRegistryFull = errors.New("registry: no free registry slots")

// ErrInvalidSlot is returned by GetRegion for a slot id outside
// [0, capacity) or for Invalid itself.
var ErrInvalidSlot = errors.New("registry: invalid slot id")

// ErrNameTooLong is returned by Register for a name longer than the
// control region's fixed per-entry name field can hold.
var ErrNameTooLong = errors.New("registry: region name too long")
