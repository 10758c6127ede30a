// Package unpacking implements the UnpackingCache: a bounded,
// concurrency-safe LRU keyed on a graph-edge quadruple, used by consumer
// query threads to memoize expensive shortest-path edge unpacking. The
// cache is sharded so that Get's LRU-position promotion — a mutation —
// never needs a process-wide exclusive lock.
package unpacking
