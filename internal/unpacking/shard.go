package unpacking

import (
	"container/list"
	"sync"
)

// shardEntry pairs a key/value pair with its position in the shard's LRU
// order, the same element-pointer-in-map idiom
// deploymenttheory-go-apfs/internal/services/object_map_btree_cache.go
// uses for its node and block caches.
type shardEntry struct {
	key   EdgeKey
	value PathAnnotation
	elem  *list.Element
}

// shard is one exclusively-locked partition of the cache. Contains and
// Get both mutate LRU order on a hit, so both take the same exclusive
// lock as Insert — there is no separate shared-lock fast path.
type shard struct {
	mu       sync.Mutex
	capacity int
	items    map[EdgeKey]*shardEntry
	order    *list.List

	hits      int64
	misses    int64
	evictions int64
}

func newShard(capacity int) *shard {
	if capacity < 1 {
		capacity = 1
	}
	return &shard{
		capacity: capacity,
		items:    make(map[EdgeKey]*shardEntry, capacity),
		order:    list.New(),
	}
}

func (s *shard) contains(key EdgeKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[key]
	if !ok {
		s.misses++
		return false
	}
	s.order.MoveToFront(e.elem)
	s.hits++
	return true
}

func (s *shard) get(key EdgeKey) (PathAnnotation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[key]
	if !ok {
		s.misses++
		return PathAnnotation{}, false
	}
	s.order.MoveToFront(e.elem)
	s.hits++
	return e.value, true
}

func (s *shard) insert(key EdgeKey, value PathAnnotation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.items[key]; ok {
		e.value = value
		s.order.MoveToFront(e.elem)
		return
	}
	entry := &shardEntry{key: key, value: value}
	entry.elem = s.order.PushFront(entry)
	s.items[key] = entry

	if len(s.items) > s.capacity {
		back := s.order.Back()
		if back != nil {
			s.order.Remove(back)
			delete(s.items, back.Value.(*shardEntry).key)
			s.evictions++
		}
	}
}

func (s *shard) stats() (hits, misses, evictions int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits, s.misses, s.evictions
}
