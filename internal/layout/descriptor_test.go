package layout

import (
	"fmt"
	"math/rand"
	"testing"
	"unsafe"
)

func TestSetBlockAndOffsets(t *testing.T) {
	l := New()
	if err := l.SetBlock("names", Sized[byte](80)); err != nil {
		t.Fatalf("SetBlock names: %v", err)
	}
	if err := l.SetBlock("offsets", Sized[uint32](11)); err != nil {
		t.Fatalf("SetBlock offsets: %v", err)
	}

	size, err := l.GetBlockSize("names")
	if err != nil || size != 80 {
		t.Fatalf("GetBlockSize(names) = %d, %v; want 80, nil", size, err)
	}

	off, err := l.offset("offsets")
	if err != nil {
		t.Fatalf("offset(offsets): %v", err)
	}
	if off != 80 { // 80 is already 8-byte aligned
		t.Fatalf("offset(offsets) = %d, want 80", off)
	}

	if l.GetSizeOfLayout() != alignUp(80+44) {
		t.Fatalf("GetSizeOfLayout() = %d, want %d", l.GetSizeOfLayout(), alignUp(80+44))
	}
}

func TestGetBlockPtrUnknown(t *testing.T) {
	l := New()
	buf := make([]byte, 64)
	if _, err := GetBlockPtr[byte](l, unsafe.Pointer(&buf[0]), "missing"); err != ErrUnknownBlock {
		t.Fatalf("GetBlockPtr(missing) err = %v, want ErrUnknownBlock", err)
	}
}

func TestSetBlockInvalidName(t *testing.T) {
	l := New()
	cases := []string{"", string(make([]byte, 257)), "bad\x00name"}
	for _, name := range cases {
		if err := l.SetBlock(name, Sized[byte](1)); err != ErrInvalidBlockName {
			t.Errorf("SetBlock(%q) err = %v, want ErrInvalidBlockName", name, err)
		}
	}
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	l := New()
	must(t, l.SetBlock("names", Block{ElementCount: 10, ByteSize: 80}))
	must(t, l.SetBlock("offsets", Block{ElementCount: 11, ByteSize: 44}))

	encoded := l.Serialize()
	decoded, err := Deserialize(encoded, 0)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if !l.Equal(decoded) {
		t.Fatalf("round trip mismatch: %+v vs %+v", l.entries, decoded.entries)
	}
	if !bytesEqual(encoded, decoded.Serialize()) {
		t.Fatalf("re-serialized bytes differ")
	}
}

func TestSerializeDeserializeRoundTripFuzz(t *testing.T) {
	for _, seed := range []int64{1, 2, 3, 42, 1337} {
		rng := rand.New(rand.NewSource(seed))
		n := 1 + rng.Intn(64)

		l := New()
		for i := 0; i < n; i++ {
			name := fmt.Sprintf("block_%d_%d", seed, i)
			block := Block{
				ElementCount: rng.Uint64() % 1_000_000,
				ByteSize:     rng.Uint64() % (1 << 20),
			}
			must(t, l.SetBlock(name, block))
		}

		encoded := l.Serialize()
		decoded, err := Deserialize(encoded, 0)
		if err != nil {
			t.Fatalf("seed %d: Deserialize: %v", seed, err)
		}
		if !l.Equal(decoded) {
			t.Fatalf("seed %d: round trip mismatch: %+v vs %+v", seed, l.entries, decoded.entries)
		}
		if !bytesEqual(encoded, decoded.Serialize()) {
			t.Fatalf("seed %d: re-serialized bytes differ", seed)
		}
	}
}

func TestDeserializeTruncated(t *testing.T) {
	l := New()
	must(t, l.SetBlock("a", Sized[byte](4)))
	encoded := l.Serialize()

	for n := 0; n < len(encoded); n++ {
		if _, err := Deserialize(encoded[:n], 0); err == nil {
			t.Fatalf("Deserialize(truncated to %d) succeeded, want error", n)
		}
	}
}

func TestDeserializeDuplicateName(t *testing.T) {
	// Hand-craft two records with the same name; Serialize can't produce
	// this (SetBlock dedupes), so we build the bytes directly.
	var b []byte
	b = append(b, 2, 0) // block count = 2
	appendRecord := func(name string, count, size uint64) {
		nb := []byte(name)
		b = append(b, byte(len(nb)), byte(len(nb)>>8))
		b = append(b, nb...)
		for i := 0; i < 8; i++ {
			b = append(b, byte(count>>(8*i)))
		}
		for i := 0; i < 8; i++ {
			b = append(b, byte(size>>(8*i)))
		}
	}
	appendRecord("dup", 1, 8)
	appendRecord("dup", 1, 8)

	if _, err := Deserialize(b, 0); err == nil {
		t.Fatalf("Deserialize(duplicate names) succeeded, want error")
	}
}

func TestDeserializeSizeCap(t *testing.T) {
	l := New()
	must(t, l.SetBlock("huge", Block{ElementCount: 1, ByteSize: 1 << 20}))
	encoded := l.Serialize()
	if _, err := Deserialize(encoded, 1<<10); err == nil {
		t.Fatalf("Deserialize exceeding cap succeeded, want error")
	}
}

func TestEqualDetectsDifference(t *testing.T) {
	a := New()
	must(t, a.SetBlock("x", Sized[byte](1)))
	b := New()
	must(t, b.SetBlock("x", Sized[byte](2)))
	if a.Equal(b) {
		t.Fatalf("descriptors with different sizes compared equal")
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
