package unpacking

import "math"

// EdgeKey identifies one memoized edge-unpacking result. Generation is
// supplied by the caller from the most recently observed
// registry.RegistryEntry.Timestamp for the segment the edge was read
// from; bumping it on every lookup after a republication makes stale
// entries miss without any explicit cache flush.
type EdgeKey struct {
	NodeSource   uint32
	NodeTarget   uint32
	ExcludeIndex byte
	Generation   uint32
}

// PathAnnotation is the per-edge value a cache entry stores: the
// shortest-path duration and distance recovered by unpacking a
// contracted edge back into its constituent original-graph edges.
type PathAnnotation struct {
	Duration int32
	Distance int32
}

// MaxPathAnnotation is the sentinel callers may substitute for a cache
// miss when they need the "treat as maximal cost" fallback the original
// MAXIMAL_EDGE_DURATION/MAXIMAL_EDGE_DISTANCE constants provided. The
// cache itself never returns this value; Get reports a plain miss.
var MaxPathAnnotation = PathAnnotation{Duration: math.MaxInt32, Distance: math.MaxInt32}
