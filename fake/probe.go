// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake probe and host environment implementations for testing.

package fake

import (
	"sync"

	"github.com/momentics/hioload-mem/api"
)

// Probe is a recording implementation of api.MemoryProbe.
type Probe struct {
	mu        sync.Mutex
	Allocated []int
	FromPool  []int
	ToPool    []int
	Released  []int
}

// NewProbe creates an empty recording probe.
func NewProbe() *Probe {
	return &Probe{}
}

// BufferAllocated records a fresh allocation.
func (p *Probe) BufferAllocated(size int) {
	p.mu.Lock()
	p.Allocated = append(p.Allocated, size)
	p.mu.Unlock()
}

// BufferAllocatedFromPool records a pooled hand-out.
func (p *Probe) BufferAllocatedFromPool(size int) {
	p.mu.Lock()
	p.FromPool = append(p.FromPool, size)
	p.mu.Unlock()
}

// BufferReleasedToPool records a buffer returning to a slice.
func (p *Probe) BufferReleasedToPool(size int) {
	p.mu.Lock()
	p.ToPool = append(p.ToPool, size)
	p.mu.Unlock()
}

// BufferReleased records a buffer dropped to the garbage collector.
func (p *Probe) BufferReleased(size int) {
	p.mu.Lock()
	p.Released = append(p.Released, size)
	p.mu.Unlock()
}

// Counts returns the number of events recorded per kind.
func (p *Probe) Counts() (allocated, fromPool, toPool, released int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Allocated), len(p.FromPool), len(p.ToPool), len(p.Released)
}

var _ api.MemoryProbe = (*Probe)(nil)
