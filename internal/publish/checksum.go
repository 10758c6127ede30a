package publish

import (
	"encoding/binary"

	"github.com/visp-2/osrm-backend/internal/layout"
)

// connectivityChecksum reads the leading 4 bytes of a block as a
// little-endian connectivity checksum. This is a deliberate
// simplification: the original file formats carry their checksum
// somewhere within a richer header that per-domain parsing (out of
// scope here) would locate; the generic blitting reader instead treats
// every edges/graph file's first 4 bytes as its checksum so the
// connectivity cross-check has something concrete to compare.
func connectivityChecksum(block []byte) (uint32, bool) {
	if len(block) < 4 {
		return 0, false
	}
	return binary.LittleEndian.Uint32(block[0:4]), true
}

// checkConnectivity cross-checks the edges block's checksum against
// every present graph block's checksum, returning ErrMismatchedChecksum
// on the first divergence.
func checkConnectivity(mem []byte, sl segmentLayout, l *layout.LayoutDescriptor) error {
	edges, err := bodyBlock(mem, sl, l, edgesBlockName)
	if err != nil || edges == nil {
		return nil
	}
	edgesSum, ok := connectivityChecksum(edges)
	if !ok {
		return nil
	}
	for _, name := range graphBlockNames {
		graph, err := bodyBlock(mem, sl, l, name)
		if err != nil || graph == nil {
			continue
		}
		graphSum, ok := connectivityChecksum(graph)
		if !ok {
			continue
		}
		if graphSum != edgesSum {
			return ErrMismatchedChecksum
		}
	}
	return nil
}
