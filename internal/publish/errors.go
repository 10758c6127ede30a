package publish

import "errors"

// ErrMissingRequiredFile is returned by Run when a region's file table
// names a required file absent from the dataset directory.
var ErrMissingRequiredFile = errors.New("publish: missing required dataset file")

// ErrSwapTimedOut is returned when max_wait elapses before the registry
// mutex could be acquired, either to reserve a region's key or for the
// swap's commit step.
var ErrSwapTimedOut = errors.New("publish: swap timed out waiting for registry mutex")

// ErrMismatchedChecksum is returned when a region's edges-derived data
// and its optional graph file (.osrm.hsgr / .osrm.mldgr) carry different
// connectivity checksums.
var ErrMismatchedChecksum = errors.New("publish: mismatched connectivity checksum between edges and graph file")

// ErrDetachWaitInterrupted is logged (not returned) by the reclaim step
// when waiting for an old segment's attach count to reach zero fails;
// the swap itself still succeeds. The segment's
// backing file has already been removed (mark-for-destroy happens
// before the wait) but its key is not released, leaving it retired and
// recoverable on a later run rather than double-allocated.
var ErrDetachWaitInterrupted = errors.New("publish: interrupted waiting for old segment to reach zero attachments")
