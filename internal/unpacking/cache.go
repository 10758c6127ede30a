package unpacking

// DefaultShardCount is the default number of LRU partitions a Cache
// splits its capacity across.
const DefaultShardCount = 16

// Cache is the UnpackingCache: a bounded, sharded LRU. It is
// process-local: each consumer process maintains its own, since the
// unpacked annotations it memoizes are a pure function of data already
// resident in that process's mapped segments.
type Cache struct {
	shards     []*shard
	shardCount uint64
}

// New returns a cache whose capacity is split across DefaultShardCount
// shards, as NewSharded describes.
func New(capacity int) *Cache {
	return NewSharded(capacity, DefaultShardCount)
}

// NewSharded returns a cache split across shardCount shards, each holding
// capacity/shardCount entries (at least one), so the total held is that
// per-shard figure times shardCount rather than exactly capacity. Tests
// exercising the single-shard boundary pass 1.
func NewSharded(capacity, shardCount int) *Cache {
	if shardCount < 1 {
		shardCount = 1
	}
	perShard := capacity / shardCount
	shards := make([]*shard, shardCount)
	for i := range shards {
		shards[i] = newShard(perShard)
	}
	return &Cache{shards: shards, shardCount: uint64(shardCount)}
}

func (c *Cache) shardFor(key EdgeKey) *shard {
	return c.shards[hashKey(key)%c.shardCount]
}

// hashKey mixes EdgeKey's fields with an FNV-1a-style multiply-xor
// chain, cheap enough to run under every Get/Insert without its own
// allocation.
func hashKey(k EdgeKey) uint64 {
	const prime = 1099511628211
	h := uint64(14695981039346656037)
	h = (h ^ uint64(k.NodeSource)) * prime
	h = (h ^ uint64(k.NodeTarget)) * prime
	h = (h ^ uint64(k.ExcludeIndex)) * prime
	h = (h ^ uint64(k.Generation)) * prime
	return h
}

// Contains reports whether key is present, promoting it to
// most-recently-used on a hit.
func (c *Cache) Contains(key EdgeKey) bool {
	return c.shardFor(key).contains(key)
}

// Get returns key's value and true on a hit, promoting it to
// most-recently-used. A miss returns (PathAnnotation{}, false); callers
// wanting the original's maximal-cost fallback should substitute
// MaxPathAnnotation themselves.
func (c *Cache) Get(key EdgeKey) (PathAnnotation, bool) {
	return c.shardFor(key).get(key)
}

// Insert inserts or replaces key's value, promoting it to
// most-recently-used. If the owning shard is at capacity, its
// least-recently-used entry is evicted.
func (c *Cache) Insert(key EdgeKey, value PathAnnotation) {
	c.shardFor(key).insert(key, value)
}

// Stats sums hit/miss/eviction counters across every shard, for
// diagnostics.
func (c *Cache) Stats() (hits, misses, evictions int64) {
	for _, s := range c.shards {
		h, m, e := s.stats()
		hits += h
		misses += m
		evictions += e
	}
	return hits, misses, evictions
}
