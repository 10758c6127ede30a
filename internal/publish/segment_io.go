package publish

import (
	"encoding/binary"
	"unsafe"

	"github.com/visp-2/osrm-backend/internal/layout"
)

// headerAlignment is the padding boundary between the serialized
// descriptor and the body.
const headerAlignment = 8

func alignUp8(n uint64) uint64 {
	return (n + headerAlignment - 1) &^ (headerAlignment - 1)
}

// segmentLayout computes the on-disk sizes for a segment hosting l:
// the descriptor's serialized bytes, the total header length (the u32
// length prefix plus the serialized descriptor, padded to 8 bytes), and
// the total segment size once the body is appended.
type segmentLayout struct {
	descriptor     []byte
	headerTotalLen uint64
	bodySize       uint64
	segmentSize    uint64
}

func computeSegmentLayout(l *layout.LayoutDescriptor) segmentLayout {
	descriptor := l.Serialize()
	headerTotalLen := alignUp8(4 + uint64(len(descriptor)))
	bodySize := l.GetSizeOfLayout()
	return segmentLayout{
		descriptor:     descriptor,
		headerTotalLen: headerTotalLen,
		bodySize:       bodySize,
		segmentSize:    headerTotalLen + bodySize,
	}
}

// writeHeader encodes the segment binary layout's fixed preamble into
// mem: a u32 descriptor byte length, followed by the serialized
// descriptor itself, with the remainder up to headerTotalLen left zeroed
// as padding.
func writeHeader(mem []byte, sl segmentLayout) {
	binary.LittleEndian.PutUint32(mem[0:4], uint32(len(sl.descriptor)))
	copy(mem[4:4+len(sl.descriptor)], sl.descriptor)
}

// bodyBlock returns the byte slice for the named block within a mapped
// segment's body, given the segment's mapped memory and the descriptor
// that describes it.
func bodyBlock(mem []byte, sl segmentLayout, l *layout.LayoutDescriptor, blockName string) ([]byte, error) {
	size, err := l.GetBlockSize(blockName)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, nil
	}
	bodyBase := unsafe.Pointer(&mem[sl.headerTotalLen])
	ptr, err := layout.GetBlockPtr[byte](l, bodyBase, blockName)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice(ptr, size), nil
}
