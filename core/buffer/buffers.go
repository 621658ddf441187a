// File: core/buffer/buffers.go
// Author: momentics <momentics@gmail.com>
//
// Shared buffer helpers and the canonical empty buffer.

package buffer

import "github.com/momentics/hioload-mem/api"

// Empty is the canonical zero-capacity read-only buffer. Zero-size
// allocations all resolve to this instance; disposing it is a no-op.
var Empty api.Buffer = emptyBuf()

func emptyBuf() *ByteBuf {
	b := NewByteBuf(nil)
	b.readOnly = true
	return b
}

// SetPositionLimit updates both cursors in one call. The limit moves first so
// a shrinking window cannot trap the position out of range.
func SetPositionLimit(b api.Buffer, pos, lim int) {
	b.SetLimit(lim)
	b.SetPosition(pos)
}
