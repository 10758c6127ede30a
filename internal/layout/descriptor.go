package layout

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unsafe"
)

// DefaultMaxTotalSize is the cap Deserialize enforces on the sum of
// declared block byte sizes, absent an explicit override.
const DefaultMaxTotalSize = 16 << 30 // 16 GiB

// entry pairs a block's name with its declaration, kept in insertion
// order so offset computation is deterministic and two descriptors with
// identical block sequences serialize identically.
type entry struct {
	name  string
	block Block
}

// LayoutDescriptor is an ordered mapping from block name to Block. It is
// the single source of truth for where each block lives within a
// segment's body; it has no hidden state beyond the block sequence
// itself.
type LayoutDescriptor struct {
	entries []entry
	index   map[string]int
}

// New returns an empty LayoutDescriptor.
func New() *LayoutDescriptor {
	return &LayoutDescriptor{index: make(map[string]int)}
}

func validName(name string) bool {
	if len(name) == 0 || len(name) > maxNameLen {
		return false
	}
	return !strings.ContainsRune(name, 0)
}

// SetBlock inserts or overwrites the block named name. An overwrite
// keeps the block's original position in insertion order so offsets of
// every other block are unaffected.
func (l *LayoutDescriptor) SetBlock(name string, b Block) error {
	if !validName(name) {
		return ErrInvalidBlockName
	}
	if idx, ok := l.index[name]; ok {
		l.entries[idx].block = b
		return nil
	}
	l.index[name] = len(l.entries)
	l.entries = append(l.entries, entry{name: name, block: b})
	return nil
}

// GetBlockSize returns the byte_size declared for name.
func (l *LayoutDescriptor) GetBlockSize(name string) (uint64, error) {
	idx, ok := l.index[name]
	if !ok {
		return 0, ErrUnknownBlock
	}
	return l.entries[idx].block.ByteSize, nil
}

// BlockCount returns the number of declared blocks.
func (l *LayoutDescriptor) BlockCount() int {
	return len(l.entries)
}

// offset returns the padded cumulative byte offset of the named block
// within the body, iterating declared blocks in insertion order and
// padding each to blockAlignment.
func (l *LayoutDescriptor) offset(name string) (uint64, error) {
	idx, ok := l.index[name]
	if !ok {
		return 0, ErrUnknownBlock
	}
	var off uint64
	for i := 0; i < idx; i++ {
		off = alignUp(off + l.entries[i].block.ByteSize)
	}
	return off, nil
}

// GetBlockPtr returns a typed pointer to the named block's data, given
// base, the first byte of the segment body. Callers are responsible for
// ensuring T matches the element type the block was declared with;
// mismatches are a protocol error outside what the descriptor can check.
func GetBlockPtr[T any](l *LayoutDescriptor, base unsafe.Pointer, name string) (*T, error) {
	off, err := l.offset(name)
	if err != nil {
		return nil, err
	}
	return (*T)(unsafe.Pointer(uintptr(base) + uintptr(off))), nil
}

// GetSizeOfLayout returns the total padded body size: the offset one
// past the last block.
func (l *LayoutDescriptor) GetSizeOfLayout() uint64 {
	var off uint64
	for _, e := range l.entries {
		off = alignUp(off + e.block.ByteSize)
	}
	return off
}

// Equal reports whether two descriptors have identical block sequences
// (same names, same Block values, same order).
func (l *LayoutDescriptor) Equal(other *LayoutDescriptor) bool {
	if other == nil || len(l.entries) != len(other.entries) {
		return false
	}
	for i, e := range l.entries {
		o := other.entries[i]
		if e.name != o.name || e.block != o.block {
			return false
		}
	}
	return true
}

// Serialize encodes the descriptor as a length-prefixed list of
// (name_length: u16, name_bytes, element_count: u64, byte_size: u64)
// records, preceded by a u16 block count. It does not include the
// u32 descriptor_byte_length prefix used by the segment header — that
// is added by the segment writer, which knows the descriptor's encoded
// length only once Serialize has run.
func (l *LayoutDescriptor) Serialize() []byte {
	size := 2
	for _, e := range l.entries {
		size += 2 + len(e.name) + 8 + 8
	}
	out := make([]byte, size)
	i := 0
	binary.LittleEndian.PutUint16(out[i:i+2], uint16(len(l.entries)))
	i += 2
	for _, e := range l.entries {
		binary.LittleEndian.PutUint16(out[i:i+2], uint16(len(e.name)))
		i += 2
		copy(out[i:i+len(e.name)], e.name)
		i += len(e.name)
		binary.LittleEndian.PutUint64(out[i:i+8], e.block.ElementCount)
		i += 8
		binary.LittleEndian.PutUint64(out[i:i+8], e.block.ByteSize)
		i += 8
	}
	return out
}

// Deserialize decodes a descriptor previously produced by Serialize.
// maxTotalSize caps the sum of declared byte sizes; pass 0 to use
// DefaultMaxTotalSize.
func Deserialize(b []byte, maxTotalSize uint64) (*LayoutDescriptor, error) {
	if maxTotalSize == 0 {
		maxTotalSize = DefaultMaxTotalSize
	}
	if len(b) < 2 {
		return nil, &MalformedLayoutError{Reason: "truncated block count", Offset: 0}
	}
	count := int(binary.LittleEndian.Uint16(b[0:2]))
	l := New()
	i := 2
	var total uint64
	for n := 0; n < count; n++ {
		if len(b)-i < 2 {
			return nil, &MalformedLayoutError{Reason: "truncated name length", Offset: i}
		}
		nameLen := int(binary.LittleEndian.Uint16(b[i : i+2]))
		i += 2
		if len(b)-i < nameLen {
			return nil, &MalformedLayoutError{Reason: "truncated name bytes", Offset: i}
		}
		name := string(b[i : i+nameLen])
		i += nameLen
		if len(b)-i < 16 {
			return nil, &MalformedLayoutError{Reason: "truncated block record", Offset: i}
		}
		elementCount := binary.LittleEndian.Uint64(b[i : i+8])
		i += 8
		byteSize := binary.LittleEndian.Uint64(b[i : i+8])
		i += 8
		if !validName(name) {
			return nil, &MalformedLayoutError{Reason: fmt.Sprintf("invalid block name %q", name), Offset: i}
		}
		if _, dup := l.index[name]; dup {
			return nil, &MalformedLayoutError{Reason: fmt.Sprintf("duplicate block name %q", name), Offset: i}
		}
		total += byteSize
		if total > maxTotalSize {
			return nil, &MalformedLayoutError{Reason: "total declared size exceeds cap", Offset: i}
		}
		l.index[name] = len(l.entries)
		l.entries = append(l.entries, entry{name: name, block: Block{ElementCount: elementCount, ByteSize: byteSize}})
	}
	return l, nil
}
