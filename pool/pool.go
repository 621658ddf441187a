// File: pool/pool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Pool: one size class. Owns a set of PoolSlices and spreads allocation
// requests across them; a dry slice degrades to a fresh heap allocation, so
// the pool never blocks.

package pool

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/momentics/hioload-mem/control"
)

// Pool is a size class: a set of slices all holding buffers of one size.
// Immutable after construction.
type Pool struct {
	slices     []*PoolSlice
	bufferSize int
}

func newPool(bufferSize int, memoryPerPool int64, slicesPerPool int, opts sliceOptions, probes *control.Registry) (*Pool, error) {
	p := &Pool{bufferSize: bufferSize}
	p.slices = make([]*PoolSlice, slicesPerPool)
	memoryPerSlice := memoryPerPool / int64(slicesPerPool)
	for i := range p.slices {
		s, err := newPoolSlice(p, memoryPerSlice, bufferSize, opts, probes)
		if err != nil {
			return nil, err
		}
		p.slices[i] = s
	}
	return p, nil
}

// Allocate hands out one buffer of the pool's size. A slice is picked at
// random per request; random selection balances load across slices without
// pinning any size class to a thread, so a buffer produced on one goroutine
// and released on another stays poolable.
func (p *Pool) Allocate() *PoolBuffer {
	slice := p.slices[rand.IntN(len(p.slices))]
	b := slice.Poll()
	if b == nil {
		b = slice.Allocate()
	}
	b.AllowDispose(true)
	b.free = false
	return b
}

// BufferSize returns the fixed buffer size of this class.
func (p *Pool) BufferSize() int { return p.bufferSize }

// Slices returns a snapshot copy of the slice set.
func (p *Pool) Slices() []*PoolSlice {
	out := make([]*PoolSlice, len(p.slices))
	copy(out, p.slices)
	return out
}

// ElementsCount sums the approximate element counts of all slices.
func (p *Pool) ElementsCount() int {
	sum := 0
	for _, s := range p.slices {
		sum += s.ElementsCount()
	}
	return sum
}

// Size returns the pooled byte count of the whole class.
func (p *Pool) Size() int64 {
	return int64(p.ElementsCount()) * int64(p.bufferSize)
}

func (p *Pool) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Pool[%p]{buffer size=%d, slices count=%d", p, p.bufferSize, len(p.slices))
	for i, s := range p.slices {
		if i == 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "\t[%d] %s\n", i, s)
	}
	sb.WriteByte('}')
	return sb.String()
}
