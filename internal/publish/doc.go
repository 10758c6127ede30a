// Package publish implements the PublicationController: the writer-side
// protocol that turns a dataset directory on disk into a set of
// published shared-memory regions. It serializes publishers against each
// other with an advisory file lock, builds a layout.LayoutDescriptor per
// region by walking a fixed file table, allocates and populates a
// shmseg.Segment for each, then commits the swap into a
// registry.RegionRegistry under its mutex before reclaiming whatever the
// swap displaced.
package publish
