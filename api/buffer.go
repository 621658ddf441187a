// File: api/buffer.go
// Author: momentics <momentics@gmail.com>
//
// Byte buffer contracts used by the memory manager and the buffer pools.
// Buffers carry NIO-style position/limit cursors over a fixed backing region;
// derived views (slice/duplicate/read-only/split) share that region zero-copy.

package api

// Buffer is a byte buffer with position/limit cursor semantics over a fixed
// capacity region. All view operations are zero-copy.
type Buffer interface {
	// Capacity returns the total size of the backing region in bytes.
	Capacity() int

	// Position returns the read/write cursor.
	Position() int

	// SetPosition moves the cursor. Panics if pos is negative or past the limit.
	SetPosition(pos int)

	// Limit returns the first index that must not be touched.
	Limit() int

	// SetLimit moves the limit. The position is clamped to the new limit.
	// Panics if lim is negative or past the capacity.
	SetLimit(lim int)

	// Remaining returns limit - position.
	Remaining() int

	// Clear resets position to zero and limit to capacity.
	Clear()

	// Bytes returns the [position, limit) window. For contiguous buffers the
	// slice aliases the backing region; composites return a copy.
	Bytes() []byte

	// Put copies src's remaining bytes into this buffer, advancing both
	// cursors. Panics on overflow.
	Put(src Buffer)

	// PutBytes copies p into the buffer at the current position, advancing it.
	// Panics on overflow.
	PutBytes(p []byte)

	// GetBytes copies up to len(dst) remaining bytes into dst, advancing the
	// position. Returns the number of bytes copied.
	GetBytes(dst []byte) int

	// Slice returns a view of the [position, limit) window with independent
	// cursors.
	Slice() Buffer

	// Duplicate returns a view of the whole region with copied cursors.
	Duplicate() Buffer

	// AsReadOnly returns a duplicate that rejects mutation.
	AsReadOnly() Buffer

	// Split cuts the buffer at the given capacity offset: the receiver keeps
	// [0, at), the returned buffer wraps [at, capacity). Cursors are clamped
	// against the cut on both sides.
	Split(at int) Buffer

	// IsReadOnly reports whether mutation is rejected.
	IsReadOnly() bool

	// IsComposite reports whether the buffer is backed by multiple segments.
	IsComposite() bool

	// AllowDispose marks the buffer as eligible for TryDispose.
	AllowDispose(allow bool)

	// TryDispose disposes the buffer if it was marked eligible and reports
	// whether it did.
	TryDispose() bool

	// Dispose releases the buffer unconditionally. Pooled buffers return to
	// their slice once the last shared view is disposed.
	Dispose()
}

// CompositeBuffer is a logical buffer assembled from multiple fixed-size
// segments. Its capacity is the sum of the segment capacities.
type CompositeBuffer interface {
	Buffer

	// Append adds a segment at the tail, extending capacity and limit.
	// Returns ErrNotAppendable if the composite is frozen.
	Append(seg Buffer) error

	// Trim drops the segments lying wholly past the limit, disposing them if
	// internal dispose is allowed.
	Trim()

	// IsAppendable reports whether Append is currently permitted.
	IsAppendable() bool

	// SetAppendable toggles the Append permission.
	SetAppendable(appendable bool)

	// AllowInternalBuffersDispose controls whether segments are disposed when
	// trimmed or when the composite itself is disposed.
	AllowInternalBuffersDispose(allow bool)

	// SegmentCount returns the number of segments currently attached.
	SegmentCount() int
}
