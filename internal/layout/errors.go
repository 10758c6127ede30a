package layout

import "errors"

// ErrUnknownBlock is returned by GetBlockSize/GetBlockPtr when the
// requested name was never declared via SetBlock. Callers hitting this on
// an attached, published segment have a protocol mismatch with the
// publisher and should treat it as a programmer error, per spec.
var ErrUnknownBlock = errors.New("layout: unknown block")

// ErrInvalidBlockName is returned by SetBlock for names that are empty,
// longer than 256 bytes, or contain an interior NUL.
var ErrInvalidBlockName = errors.New("layout: invalid block name")

// MalformedLayoutError is returned by Deserialize on truncated input,
// duplicate block names, or a total declared size exceeding the
// configured cap. Offset records the byte position in the input at which
// decoding failed, for diagnostics.
type MalformedLayoutError struct {
	Reason string
	Offset int
}

func (e *MalformedLayoutError) Error() string {
	return "layout: malformed layout: " + e.Reason
}
