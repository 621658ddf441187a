// File: pool/padded.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Cache-line padded atomics. The poll/offer counters of a slice are heavily
// contended; padding keeps each of them alone on its cache line so a CAS on
// one never invalidates the other. Slot arrays get guard cells on both ends
// for the same reason: without them the tail of one array and the head of
// the next could share a line.

package pool

import "sync/atomic"

const cacheLineBytes = 64

// paddedInt32 is a 32-bit atomic counter isolated on its own cache line.
type paddedInt32 struct {
	_ [cacheLineBytes]byte
	v atomic.Int32
	_ [cacheLineBytes - 4]byte
}

func (p *paddedInt32) Load() int32 { return p.v.Load() }

func (p *paddedInt32) Store(val int32) { p.v.Store(val) }

func (p *paddedInt32) CompareAndSwap(old, new int32) bool {
	return p.v.CompareAndSwap(old, new)
}

// padCells is the number of pointer-sized guard cells placed before and
// after the live slot region.
const padCells = cacheLineBytes / 8

// slotArray is a fixed-length array of atomic buffer slots with guard cells
// on both ends.
type slotArray struct {
	cells []atomic.Pointer[PoolBuffer]
}

func newSlotArray(n int) *slotArray {
	backing := make([]atomic.Pointer[PoolBuffer], n+2*padCells)
	return &slotArray{cells: backing[padCells : padCells+n : padCells+n]}
}

func (a *slotArray) length() int { return len(a.cells) }

// swap atomically replaces slot i with b and returns the prior value.
func (a *slotArray) swap(i int, b *PoolBuffer) *PoolBuffer {
	return a.cells[i].Swap(b)
}

// casEmpty publishes b into slot i only if the slot is empty.
func (a *slotArray) casEmpty(i int, b *PoolBuffer) bool {
	return a.cells[i].CompareAndSwap(nil, b)
}

// set stores b into slot i without ordering constraints beyond the store
// itself; used only during pre-population.
func (a *slotArray) set(i int, b *PoolBuffer) {
	a.cells[i].Store(b)
}

// get reads slot i; used by tests and diagnostics.
func (a *slotArray) get(i int) *PoolBuffer {
	return a.cells[i].Load()
}
