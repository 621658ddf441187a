// File: core/buffer/bytebuf.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Contiguous byte buffer with position/limit cursors. Views created by
// Slice/Duplicate/AsReadOnly/Split alias the same backing region; no copy
// happens until the caller moves bytes explicitly.

package buffer

import (
	"fmt"

	"github.com/momentics/hioload-mem/api"
)

// ByteBuf is the contiguous api.Buffer implementation. The zero value is an
// empty buffer; use MakeByteBuf/NewByteBuf to wrap existing storage.
type ByteBuf struct {
	data     []byte
	pos, lim int
	readOnly bool

	allowDispose bool

	// guard, when set, runs before every buffer operation. The pool layer
	// installs its use-after-dispose check here.
	guard func()
}

// MakeByteBuf returns a ByteBuf value wrapping data with position 0 and
// limit len(data).
func MakeByteBuf(data []byte) ByteBuf {
	return ByteBuf{data: data, lim: len(data)}
}

// NewByteBuf returns a ByteBuf wrapping data.
func NewByteBuf(data []byte) *ByteBuf {
	b := MakeByteBuf(data)
	return &b
}

// SetGuard installs a hook invoked before every buffer operation.
func (b *ByteBuf) SetGuard(fn func()) { b.guard = fn }

func (b *ByteBuf) check() {
	if b.guard != nil {
		b.guard()
	}
}

func (b *ByteBuf) checkWritable() {
	b.check()
	if b.readOnly {
		panic(fmt.Errorf("write to read-only buffer"))
	}
}

// Capacity returns the size of the backing region.
func (b *ByteBuf) Capacity() int { return len(b.data) }

// Position returns the cursor.
func (b *ByteBuf) Position() int {
	b.check()
	return b.pos
}

// SetPosition moves the cursor.
func (b *ByteBuf) SetPosition(pos int) {
	b.check()
	if pos < 0 || pos > b.lim {
		panic(fmt.Errorf("position %d out of range [0, %d]", pos, b.lim))
	}
	b.pos = pos
}

// Limit returns the current limit.
func (b *ByteBuf) Limit() int {
	b.check()
	return b.lim
}

// SetLimit moves the limit, clamping the position against it.
func (b *ByteBuf) SetLimit(lim int) {
	b.check()
	if lim < 0 || lim > len(b.data) {
		panic(fmt.Errorf("limit %d out of range [0, %d]", lim, len(b.data)))
	}
	b.lim = lim
	if b.pos > lim {
		b.pos = lim
	}
}

// Remaining returns limit - position.
func (b *ByteBuf) Remaining() int {
	b.check()
	return b.lim - b.pos
}

// Clear resets position to zero and limit to capacity.
func (b *ByteBuf) Clear() {
	b.check()
	b.pos = 0
	b.lim = len(b.data)
}

// Bytes returns the [position, limit) window aliasing the backing region.
func (b *ByteBuf) Bytes() []byte {
	b.check()
	return b.data[b.pos:b.lim]
}

// Backing returns the full backing region regardless of cursor state.
func (b *ByteBuf) Backing() []byte { return b.data }

// ResetBacking replaces the backing region and clears the cursors. It does
// not run the access guard: the pool layer calls it while recycling an
// already-disposed buffer.
func (b *ByteBuf) ResetBacking(data []byte) {
	b.data = data
	b.pos = 0
	b.lim = len(data)
}

// Put copies src's remaining bytes into the buffer, advancing both cursors.
func (b *ByteBuf) Put(src api.Buffer) {
	b.checkWritable()
	n := src.Remaining()
	if n > b.lim-b.pos {
		panic(fmt.Errorf("buffer overflow: put of %d bytes, %d remaining", n, b.lim-b.pos))
	}
	copy(b.data[b.pos:b.lim], src.Bytes())
	src.SetPosition(src.Position() + n)
	b.pos += n
}

// PutBytes copies p into the buffer at the current position.
func (b *ByteBuf) PutBytes(p []byte) {
	b.checkWritable()
	if len(p) > b.lim-b.pos {
		panic(fmt.Errorf("buffer overflow: put of %d bytes, %d remaining", len(p), b.lim-b.pos))
	}
	copy(b.data[b.pos:b.lim], p)
	b.pos += len(p)
}

// GetBytes copies up to len(dst) remaining bytes into dst.
func (b *ByteBuf) GetBytes(dst []byte) int {
	b.check()
	n := copy(dst, b.data[b.pos:b.lim])
	b.pos += n
	return n
}

// SliceBuf returns a view of the [position, limit) window as a ByteBuf.
func (b *ByteBuf) SliceBuf() *ByteBuf {
	b.check()
	nb := NewByteBuf(b.data[b.pos:b.lim:b.lim])
	nb.readOnly = b.readOnly
	return nb
}

// DuplicateBuf returns a view of the whole region with copied cursors.
func (b *ByteBuf) DuplicateBuf() *ByteBuf {
	b.check()
	return &ByteBuf{data: b.data, pos: b.pos, lim: b.lim, readOnly: b.readOnly}
}

// AsReadOnlyBuf returns a read-only duplicate.
func (b *ByteBuf) AsReadOnlyBuf() *ByteBuf {
	nb := b.DuplicateBuf()
	nb.readOnly = true
	return nb
}

// SplitBuf cuts the region at the given offset. The receiver keeps [0, at);
// the returned buffer wraps [at, capacity). Cursors are distributed across
// the cut: a cursor left of it stays with the receiver, a cursor right of it
// moves to the returned buffer rebased by at.
func (b *ByteBuf) SplitBuf(at int) *ByteBuf {
	b.check()
	if at < 0 || at > len(b.data) {
		panic(fmt.Errorf("split position %d out of range [0, %d]", at, len(b.data)))
	}
	oldPos, oldLim := b.pos, b.lim

	left := b.data[:at:at]
	right := NewByteBuf(b.data[at:len(b.data):len(b.data)])
	right.readOnly = b.readOnly

	b.data = left
	if oldPos < at {
		b.pos = oldPos
		right.pos = 0
	} else {
		b.pos = at
		right.pos = oldPos - at
	}
	if oldLim < at {
		b.lim = oldLim
		right.lim = 0
	} else {
		b.lim = at
		right.lim = oldLim - at
	}
	return right
}

// Slice implements api.Buffer.
func (b *ByteBuf) Slice() api.Buffer { return b.SliceBuf() }

// Duplicate implements api.Buffer.
func (b *ByteBuf) Duplicate() api.Buffer { return b.DuplicateBuf() }

// AsReadOnly implements api.Buffer.
func (b *ByteBuf) AsReadOnly() api.Buffer { return b.AsReadOnlyBuf() }

// Split implements api.Buffer.
func (b *ByteBuf) Split(at int) api.Buffer { return b.SplitBuf(at) }

// IsReadOnly reports whether mutation is rejected.
func (b *ByteBuf) IsReadOnly() bool { return b.readOnly }

// IsComposite reports false.
func (b *ByteBuf) IsComposite() bool { return false }

// AllowDispose marks the buffer as eligible for TryDispose.
func (b *ByteBuf) AllowDispose(allow bool) { b.allowDispose = allow }

// IsDisposeAllowed reports whether TryDispose may dispose the buffer.
func (b *ByteBuf) IsDisposeAllowed() bool { return b.allowDispose }

// TryDispose disposes the buffer if it was marked eligible.
func (b *ByteBuf) TryDispose() bool {
	if !b.allowDispose {
		return false
	}
	b.Dispose()
	return true
}

// Dispose drops the backing region so the garbage collector can reclaim it.
func (b *ByteBuf) Dispose() {
	b.data = nil
	b.pos = 0
	b.lim = 0
}

var _ api.Buffer = (*ByteBuf)(nil)
