// File: core/buffer/composite.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Composite buffer: a logical byte buffer assembled from multiple fixed-size
// segments. The pool manager builds composites for requests larger than the
// biggest size class and extends or trims them on reallocation.

package buffer

import (
	"fmt"

	"github.com/momentics/hioload-mem/api"
)

// backingProvider lets the composite address a segment's storage regardless
// of the segment's own cursor state.
type backingProvider interface {
	Backing() []byte
}

type segment struct {
	buf   api.Buffer
	view  []byte // window captured at append time
	start int    // logical offset of view[0]
}

// Composite implements api.CompositeBuffer over an ordered list of segments.
// Segment windows are fixed at append time; the composite's position and
// limit address the concatenation of those windows.
type Composite struct {
	mgr      api.MemoryManager
	segments []segment

	capacity int
	pos, lim int

	appendable      bool
	readOnly        bool
	allowDispose    bool
	internalDispose bool
}

// NewComposite returns an empty appendable composite. The manager reference
// is informational; segments are disposed through their own dispose path.
func NewComposite(mgr api.MemoryManager) *Composite {
	return &Composite{mgr: mgr, appendable: true}
}

// Append adds a segment at the tail. The segment's remaining window at call
// time becomes its addressable range; capacity grows by its length and the
// limit moves to the new capacity.
func (c *Composite) Append(seg api.Buffer) error {
	if !c.appendable {
		return api.ErrNotAppendable
	}
	view := segmentWindow(seg)
	c.segments = append(c.segments, segment{buf: seg, view: view, start: c.capacity})
	c.capacity += len(view)
	c.lim = c.capacity
	return nil
}

// segmentWindow resolves the addressable byte range of a segment.
func segmentWindow(seg api.Buffer) []byte {
	if bp, ok := seg.(backingProvider); ok {
		backing := bp.Backing()
		return backing[seg.Position():seg.Limit()]
	}
	return seg.Bytes()
}

// Trim drops the segments lying wholly at or past the limit.
func (c *Composite) Trim() {
	keep := len(c.segments)
	for keep > 0 && c.segments[keep-1].start >= c.lim {
		keep--
	}
	for _, s := range c.segments[keep:] {
		if c.internalDispose {
			s.buf.TryDispose()
		}
	}
	c.segments = c.segments[:keep]
	c.capacity = 0
	if keep > 0 {
		last := c.segments[keep-1]
		c.capacity = last.start + len(last.view)
	}
	if c.lim > c.capacity {
		c.lim = c.capacity
	}
	if c.pos > c.lim {
		c.pos = c.lim
	}
}

// IsAppendable reports whether Append is permitted.
func (c *Composite) IsAppendable() bool { return c.appendable }

// SetAppendable toggles the Append permission.
func (c *Composite) SetAppendable(appendable bool) { c.appendable = appendable }

// AllowInternalBuffersDispose controls segment disposal on trim and dispose.
func (c *Composite) AllowInternalBuffersDispose(allow bool) { c.internalDispose = allow }

// SegmentCount returns the number of attached segments.
func (c *Composite) SegmentCount() int { return len(c.segments) }

// Capacity returns the sum of the segment window lengths.
func (c *Composite) Capacity() int { return c.capacity }

// Position returns the logical cursor.
func (c *Composite) Position() int { return c.pos }

// SetPosition moves the logical cursor.
func (c *Composite) SetPosition(pos int) {
	if pos < 0 || pos > c.lim {
		panic(fmt.Errorf("position %d out of range [0, %d]", pos, c.lim))
	}
	c.pos = pos
}

// Limit returns the logical limit.
func (c *Composite) Limit() int { return c.lim }

// SetLimit moves the logical limit, clamping the position.
func (c *Composite) SetLimit(lim int) {
	if lim < 0 || lim > c.capacity {
		panic(fmt.Errorf("limit %d out of range [0, %d]", lim, c.capacity))
	}
	c.lim = lim
	if c.pos > lim {
		c.pos = lim
	}
}

// Remaining returns limit - position.
func (c *Composite) Remaining() int { return c.lim - c.pos }

// Clear resets position to zero and limit to capacity.
func (c *Composite) Clear() {
	c.pos = 0
	c.lim = c.capacity
}

// Bytes returns a contiguous copy of the [position, limit) range. Composites
// cannot alias their segments into one slice, so this is the one non-zero-copy
// accessor.
func (c *Composite) Bytes() []byte {
	out := make([]byte, c.lim-c.pos)
	c.copyOut(c.pos, out)
	return out
}

// locate finds the segment covering logical offset p.
func (c *Composite) locate(p int) int {
	for i, s := range c.segments {
		if p < s.start+len(s.view) {
			return i
		}
	}
	return len(c.segments)
}

func (c *Composite) copyOut(from int, dst []byte) int {
	copied := 0
	for i := c.locate(from); i < len(c.segments) && copied < len(dst); i++ {
		s := c.segments[i]
		off := from + copied - s.start
		copied += copy(dst[copied:], s.view[off:])
	}
	return copied
}

func (c *Composite) copyIn(from int, src []byte) {
	written := 0
	for i := c.locate(from); i < len(c.segments) && written < len(src); i++ {
		s := c.segments[i]
		off := from + written - s.start
		written += copy(s.view[off:], src[written:])
	}
}

// Put copies src's remaining bytes into the composite.
func (c *Composite) Put(src api.Buffer) {
	c.checkWritable()
	n := src.Remaining()
	if n > c.lim-c.pos {
		panic(fmt.Errorf("buffer overflow: put of %d bytes, %d remaining", n, c.lim-c.pos))
	}
	c.copyIn(c.pos, src.Bytes())
	src.SetPosition(src.Position() + n)
	c.pos += n
}

// PutBytes copies p into the composite at the current position.
func (c *Composite) PutBytes(p []byte) {
	c.checkWritable()
	if len(p) > c.lim-c.pos {
		panic(fmt.Errorf("buffer overflow: put of %d bytes, %d remaining", len(p), c.lim-c.pos))
	}
	c.copyIn(c.pos, p)
	c.pos += len(p)
}

// GetBytes copies up to len(dst) remaining bytes into dst.
func (c *Composite) GetBytes(dst []byte) int {
	n := c.lim - c.pos
	if n > len(dst) {
		n = len(dst)
	}
	c.copyOut(c.pos, dst[:n])
	c.pos += n
	return n
}

func (c *Composite) checkWritable() {
	if c.readOnly {
		panic(fmt.Errorf("write to read-only buffer"))
	}
}

// Duplicate returns a shallow view sharing the segments with copied cursors.
func (c *Composite) Duplicate() api.Buffer {
	dup := *c
	dup.segments = append([]segment(nil), c.segments...)
	return &dup
}

// AsReadOnly returns a read-only duplicate.
func (c *Composite) AsReadOnly() api.Buffer {
	dup := c.Duplicate().(*Composite)
	dup.readOnly = true
	return dup
}

// Slice is not supported on composites.
func (c *Composite) Slice() api.Buffer { panic(api.ErrNotSupported) }

// Split is not supported on composites.
func (c *Composite) Split(int) api.Buffer { panic(api.ErrNotSupported) }

// IsReadOnly reports whether mutation is rejected.
func (c *Composite) IsReadOnly() bool { return c.readOnly }

// IsComposite reports true.
func (c *Composite) IsComposite() bool { return true }

// AllowDispose marks the composite as eligible for TryDispose.
func (c *Composite) AllowDispose(allow bool) { c.allowDispose = allow }

// TryDispose disposes the composite if it was marked eligible.
func (c *Composite) TryDispose() bool {
	if !c.allowDispose {
		return false
	}
	c.Dispose()
	return true
}

// Dispose releases all segments (when internal dispose is allowed) and
// detaches them.
func (c *Composite) Dispose() {
	if c.internalDispose {
		for _, s := range c.segments {
			s.buf.TryDispose()
		}
	}
	c.segments = nil
	c.capacity = 0
	c.pos = 0
	c.lim = 0
}

var _ api.CompositeBuffer = (*Composite)(nil)
