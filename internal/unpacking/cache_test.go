package unpacking

import "testing"

func key(source uint32, generation uint32) EdgeKey {
	return EdgeKey{NodeSource: source, NodeTarget: source + 1, ExcludeIndex: 0, Generation: generation}
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewSharded(3, 1)

	k1, k2, k3, k4 := key(1, 0), key(2, 0), key(3, 0), key(4, 0)
	c.Insert(k1, PathAnnotation{Duration: 1})
	c.Insert(k2, PathAnnotation{Duration: 2})
	c.Insert(k3, PathAnnotation{Duration: 3})

	if _, ok := c.Get(k1); !ok {
		t.Fatalf("Get(k1) miss before eviction")
	}
	c.Insert(k4, PathAnnotation{Duration: 4})

	if c.Contains(k2) {
		t.Fatalf("k2 should have been evicted as least-recently-used")
	}
	for _, k := range []EdgeKey{k1, k3, k4} {
		if !c.Contains(k) {
			t.Fatalf("key %+v should still be present", k)
		}
	}
}

func TestGenerationalInvalidationForcesStaleMiss(t *testing.T) {
	c := NewSharded(10, 1)

	k1Gen5 := key(1, 5)
	c.Insert(k1Gen5, PathAnnotation{Duration: 100})

	if !c.Contains(k1Gen5) {
		t.Fatalf("Contains with matching generation should hit")
	}

	k1Gen6 := key(1, 6)
	if c.Contains(k1Gen6) {
		t.Fatalf("Contains with bumped generation should miss")
	}
	if _, ok := c.Get(k1Gen6); ok {
		t.Fatalf("Get with bumped generation should miss")
	}

	if !c.Contains(k1Gen5) {
		t.Fatalf("entry at the original generation should still hit: not yet evicted")
	}
}

func TestInsertReplacesAndPromotesExistingKey(t *testing.T) {
	c := NewSharded(2, 1)

	k1, k2 := key(1, 0), key(2, 0)
	c.Insert(k1, PathAnnotation{Duration: 1})
	c.Insert(k2, PathAnnotation{Duration: 2})
	c.Insert(k1, PathAnnotation{Duration: 42})

	k3 := key(3, 0)
	c.Insert(k3, PathAnnotation{Duration: 3})

	if c.Contains(k2) {
		t.Fatalf("k2 should have been evicted: k1 was refreshed more recently")
	}
	v, ok := c.Get(k1)
	if !ok || v.Duration != 42 {
		t.Fatalf("Get(k1) = (%+v, %v), want (Duration:42, true)", v, ok)
	}
}

func TestShardingDistributesAcrossMultipleShards(t *testing.T) {
	c := NewSharded(16, 16)

	for i := uint32(0); i < 64; i++ {
		c.Insert(key(i, 0), PathAnnotation{Duration: int32(i)})
	}
	hits, misses, _ := c.Stats()
	if hits != 0 || misses != 0 {
		t.Fatalf("Insert should not affect hit/miss counters: got hits=%d misses=%d", hits, misses)
	}

	var found int
	for i := uint32(0); i < 64; i++ {
		if c.Contains(key(i, 0)) {
			found++
		}
	}
	if found == 0 {
		t.Fatalf("expected at least some of 64 inserts to survive across 16 shards of capacity 1 each")
	}
}

func TestMaxPathAnnotationIsDistinctFromZeroValue(t *testing.T) {
	if MaxPathAnnotation == (PathAnnotation{}) {
		t.Fatalf("MaxPathAnnotation must not equal the zero value")
	}
}
