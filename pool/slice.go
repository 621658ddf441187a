// File: pool/slice.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// PoolSlice: one lock-free bounded MPMC ring of fixed-size buffers.
//
// The ring can only address 2^30-1 slots instead of the usual 2^32-1.
// Bit 30 of each index carries the read/write pointer 'wrapping' status;
// without it there is no telling a full ring from an empty one when both
// pointers land on the same slot. The ring is full when the pointers refer
// to the same index and the wrap bits differ, empty when index and wrap bit
// are both equal. The wrap bit doubles as the selector between the two
// backing arrays, so a single CAS on a pointer advances the slot and the
// array crossover at once.

package pool

import (
	"fmt"

	"github.com/trivago/tgo/tsync"

	"github.com/momentics/hioload-mem/control"
)

const (
	// stride is the step between logically adjacent slots. Elements are
	// accessed at (offset + index + stride) so neighbouring operations land
	// on distant cache lines.
	stride = 16

	// idxMask extracts the lower 30 bits of an index: the array slot.
	idxMask = 0x3FFFFFFF

	// wrapBit carries the wrap status and selects the backing array.
	wrapBit = 0x40000000
)

// sliceOptions carries the construction-time toggles shared by all slices
// of a manager.
type sliceOptions struct {
	skipWaitLoop bool
	trackSite    bool
}

// PoolSlice is a fixed-capacity lock-free ring of buffers, all of one size.
// Allocation requests are striped across the slices of a Pool.
type PoolSlice struct {
	owner *Pool

	// Two parallel slot arrays. The wrap bit of an index selects which one
	// it addresses; producers and consumers may be on opposite arrays at the
	// same time.
	arrayA, arrayB *slotArray

	// Separate read/write pointers, each on its own cache line.
	pollIdx  *paddedInt32
	offerIdx *paddedInt32

	maxPoolSize  int
	bufferSize   int
	skipWaitLoop bool
	trackSite    bool

	probes *control.Registry
}

// newPoolSlice builds a slice budgeted to totalBytes and pre-populates the
// first array. Returns an error if the resulting slot count cannot be
// encoded in 30 bits.
func newPoolSlice(owner *Pool, totalBytes int64, bufferSize int, opts sliceOptions, probes *control.Registry) (*PoolSlice, error) {
	initialSize := int(totalBytes / int64(bufferSize))

	// Round up to the nearest multiple of stride; the index scheme steps by
	// stride and needs the array length to divide evenly.
	maxPoolSize := (initialSize + (stride - 1)) &^ (stride - 1)
	if maxPoolSize < stride {
		maxPoolSize = stride
	}
	if maxPoolSize >= wrapBit {
		return nil, fmt.Errorf("cannot manage a pool slice larger than 2^30-1 slots (got %d)", maxPoolSize)
	}

	s := &PoolSlice{
		owner:        owner,
		maxPoolSize:  maxPoolSize,
		bufferSize:   bufferSize,
		skipWaitLoop: opts.skipWaitLoop,
		trackSite:    opts.trackSite,
		probes:       probes,
		pollIdx:      &paddedInt32{},
		offerIdx:     &paddedInt32{},
	}
	s.offerIdx.Store(wrapBit)

	s.arrayA = newSlotArray(maxPoolSize)
	for i := 0; i < maxPoolSize; i++ {
		b := s.Allocate()
		b.AllowDispose(true)
		b.free = true
		s.arrayA.set(i, b)
	}
	s.arrayB = newSlotArray(maxPoolSize)
	return s, nil
}

// Poll removes and returns one buffer, or nil if the ring was observed
// empty. The emptiness check is weak: concurrent operations may produce
// false positives.
func (s *PoolSlice) Poll() *PoolBuffer {
	var ridx int32
	for {
		ridx = s.pollIdx.Load()
		widx := s.offerIdx.Load()
		if isEmpty(ridx, widx) {
			return nil
		}
		if s.pollIdx.CompareAndSwap(ridx, s.nextIndex(ridx)) {
			break
		}
	}

	slot := int(unmask(ridx))
	arr := s.array(ridx)

	var b *PoolBuffer
	if !s.skipWaitLoop {
		spin := tsync.NewSpinner(tsync.SpinPriorityRealtime)
		for {
			b = arr.swap(slot, nil)
			if b != nil {
				break
			}
			// The offer that owns this slot has won its index CAS but not
			// published yet; give it time to complete.
			spin.Yield()
		}
	} else {
		b = arr.swap(slot, nil)
		if b == nil {
			return nil
		}
	}

	s.probes.BufferAllocatedFromPool(s.bufferSize)
	return b
}

// Offer inserts b, returning false if b belongs to another slice or the
// ring was observed full. The fullness check is weak in the same way the
// emptiness check of Poll is.
func (s *PoolSlice) Offer(b *PoolBuffer) bool {
	if b.owner != s {
		return false
	}

	var widx int32
	for {
		widx = s.offerIdx.Load()
		ridx := s.pollIdx.Load()
		if isFull(ridx, widx) {
			return false
		}
		if s.offerIdx.CompareAndSwap(widx, s.nextIndex(widx)) {
			break
		}
	}

	slot := int(unmask(widx))
	arr := s.array(widx)

	if !s.skipWaitLoop {
		spin := tsync.NewSpinner(tsync.SpinPriorityRealtime)
		for {
			if arr.casEmpty(slot, b) {
				break
			}
			// The poll that owns this slot has not emptied it yet.
			spin.Yield()
		}
	} else {
		if !arr.casEmpty(slot, b) {
			return false
		}
	}

	s.probes.BufferReleasedToPool(s.bufferSize)
	return true
}

// Allocate creates a fresh buffer of the slice's size, bypassing the ring.
func (s *PoolSlice) Allocate() *PoolBuffer {
	b := newPoolBuffer(make([]byte, s.bufferSize), s)
	s.probes.BufferAllocated(s.bufferSize)
	return b
}

// ElementsCount returns the approximate number of pooled buffers. The value
// is consistent with one snapshot of both indices but is not linearized
// against concurrent operations.
func (s *PoolSlice) ElementsCount() int {
	return s.elementsCount(s.pollIdx.Load(), s.offerIdx.Load())
}

// Size returns the pooled byte count.
func (s *PoolSlice) Size() int64 {
	return int64(s.ElementsCount()) * int64(s.bufferSize)
}

// BufferSize returns the size of every buffer in this slice.
func (s *PoolSlice) BufferSize() int { return s.bufferSize }

// MaxPoolSize returns the slot capacity of the ring.
func (s *PoolSlice) MaxPoolSize() int { return s.maxPoolSize }

// Clear drains the ring, dropping the polled buffers for the garbage
// collector to reclaim.
func (s *PoolSlice) Clear() {
	for s.Poll() != nil {
	}
}

func (s *PoolSlice) String() string {
	ridx, widx := s.pollIdx.Load(), s.offerIdx.Load()
	return fmt.Sprintf(
		"PoolSlice[%p]{buffer size=%d, elements in pool=%d, poll index=%d, poll wrap bit=%d, offer index=%d, offer wrap bit=%d, maxPoolSize=%d}",
		s, s.bufferSize, s.elementsCount(ridx, widx),
		unmask(ridx), wrapFlag(ridx), unmask(widx), wrapFlag(widx), s.maxPoolSize)
}

// There are two cases to consider: both indices on the same array, and
// indices on different arrays (wrap bits differ). On the same array the
// element count is the difference of the de-virtualized indices. Across
// arrays that difference goes negative and maxPoolSize has to be added
// back in, which the fillHighestOneBitRight mask arranges branch-free.
func (s *PoolSlice) elementsCount(ridx, widx int32) int {
	return s.unstride(unmask(widx)) - s.unstride(unmask(ridx)) +
		int(int32(s.maxPoolSize)&fillHighestOneBitRight((ridx^widx)&wrapBit))
}

// unstride recovers the visit-order counter from a strided array index.
func (s *PoolSlice) unstride(idx int32) int {
	return int(idx)/stride + (int(idx)%stride)*(s.maxPoolSize/stride)
}

// array resolves the backing array an index addresses.
func (s *PoolSlice) array(idx int32) *slotArray {
	if idx&wrapBit == 0 {
		return s.arrayA
	}
	return s.arrayB
}

// nextIndex advances an index by one stride step, folding back with an
// offset shift at the array end and flipping the wrap bit once the whole
// array has been visited.
func (s *PoolSlice) nextIndex(cur int32) int32 {
	arrayIndex := unmask(cur)
	if int(arrayIndex)+stride < s.maxPoolSize {
		return cur + stride
	}
	offset := arrayIndex - int32(s.maxPoolSize) + stride + 1
	if offset == stride {
		// Reached the end of the current array: zero the lower 30 bits and
		// flip the wrap bit, moving to the other array.
		return wrapBit ^ (cur & wrapBit)
	}
	return offset | (cur & wrapBit)
}

func isEmpty(ridx, widx int32) bool { return ridx == widx }

func isFull(ridx, widx int32) bool { return (ridx ^ widx) == wrapBit }

// unmask returns the lower 30 bits: the actual array index.
func unmask(idx int32) int32 { return idx & idxMask }

func wrapFlag(idx int32) int32 {
	return fillHighestOneBitRight(idx&wrapBit) & 1
}

// fillHighestOneBitRight propagates the highest one bit to the right, e.g.
// 0x40000000 becomes 0x7FFFFFFF. The result serves as a mask. Part of this
// came from HD figure 15-5.
func fillHighestOneBitRight(v int32) int32 {
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	return v
}
