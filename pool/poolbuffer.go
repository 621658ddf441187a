// File: pool/poolbuffer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// PoolBuffer: a pooled byte buffer plus its share-counted view machinery.
// A buffer and every view derived from it (slice, duplicate, read-only,
// split halves) share one atomic counter; the buffer travels back to its
// slice only when the last holder disposes.

package pool

import (
	"runtime/debug"
	"sync/atomic"

	"github.com/momentics/hioload-mem/api"
	"github.com/momentics/hioload-mem/core/buffer"
)

// PoolBuffer wraps a fixed-size byte region owned by a PoolSlice.
type PoolBuffer struct {
	buffer.ByteBuf

	// owner is the slice this buffer returns to. Nil for child views.
	owner *PoolSlice

	// free is true while the buffer sits in the ring or has been disposed.
	free bool

	// shareCount tracks the child views derived from this buffer. The
	// source cannot return to the pool until it reaches zero.
	shareCount *atomic.Int32

	// source points at the original pool-owned buffer. Non-nil in any child
	// view created from it.
	source *PoolBuffer

	// origData captures the original backing region before a split replaces
	// it, so the full region can be restored on return to the pool.
	origData []byte

	// disposeSite retains the stack of the first dispose when tracking is
	// enabled.
	disposeSite []byte
	trackSite   bool
}

func newPoolBuffer(data []byte, owner *PoolSlice) *PoolBuffer {
	b := &PoolBuffer{
		ByteBuf:    buffer.MakeByteBuf(data),
		owner:      owner,
		shareCount: new(atomic.Int32),
		trackSite:  owner.trackSite,
	}
	b.SetGuard(b.checkDispose)
	return b
}

// wrap derives a child view sharing the receiver's count and source.
func (b *PoolBuffer) wrap(bb *buffer.ByteBuf) *PoolBuffer {
	source := b.source
	if source == nil {
		source = b
	}
	child := &PoolBuffer{
		ByteBuf:    *bb,
		source:     source,
		shareCount: b.shareCount,
		trackSite:  b.trackSite,
	}
	child.SetGuard(child.checkDispose)
	child.AllowDispose(true)
	child.shareCount.Add(1)
	return child
}

// checkDispose fails loudly once the buffer has been returned.
func (b *PoolBuffer) checkDispose() {
	if b.free {
		panic(&api.DisposedError{Site: b.disposeSite})
	}
}

// Slice returns a shared view of the [position, limit) window.
func (b *PoolBuffer) Slice() api.Buffer {
	b.checkDispose()
	return b.wrap(b.SliceBuf())
}

// Duplicate returns a shared view of the whole region.
func (b *PoolBuffer) Duplicate() api.Buffer {
	b.checkDispose()
	return b.wrap(b.DuplicateBuf())
}

// AsReadOnly returns a shared read-only view.
func (b *PoolBuffer) AsReadOnly() api.Buffer {
	b.checkDispose()
	return b.wrap(b.AsReadOnlyBuf())
}

// Split cuts the buffer at the given offset, keeping [0, at) and returning a
// shared view of [at, capacity). The original backing region is saved before
// the cut so the pool gets the whole region back on return.
func (b *PoolBuffer) Split(at int) api.Buffer {
	b.checkDispose()
	if b.origData == nil {
		b.origData = b.Backing()
	}
	return b.wrap(b.SplitBuf(at))
}

// TryDispose disposes the buffer if it was marked eligible.
func (b *PoolBuffer) TryDispose() bool {
	if !b.IsDisposeAllowed() {
		return false
	}
	b.Dispose()
	return true
}

// Dispose releases this holder's claim. Only the last of {original, slice,
// duplicate, read-only, split halves} actually sends the source buffer back
// to its slice; earlier disposes just decrement the share count.
func (b *PoolBuffer) Dispose() {
	if b.free {
		return
	}
	b.free = true
	if b.trackSite {
		b.disposeSite = debug.Stack()
	}

	if b.shareCount.Load() != 0 {
		b.shareCount.Add(-1)
		return
	}

	if b.source != nil && b.source.free {
		// Last view standing; the source was disposed earlier and can now
		// safely travel back.
		b.source.recycle()
	} else if b.source == nil && b.owner != nil {
		// The unshared case: the original goes straight back.
		b.recycle()
	}
}

// recycle restores the full backing region, clears the cursors and offers
// the buffer to its slice. A refused offer drops the region to the garbage
// collector.
func (b *PoolBuffer) recycle() {
	if b.origData != nil {
		b.ResetBacking(b.origData)
		b.origData = nil
	} else {
		// ResetBacking clears the cursors without tripping the dispose
		// guard; the buffer is already marked free at this point.
		b.ResetBacking(b.Backing())
	}
	if !b.owner.Offer(b) {
		b.ResetBacking(nil)
		b.owner.probes.BufferReleased(b.owner.bufferSize)
	}
}

var _ api.Buffer = (*PoolBuffer)(nil)
