// File: control/registry.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Probe registry. The pools call the notifier methods inline on their
// allocation paths, so dispatch reads a copy-on-write snapshot instead of
// taking a lock.

package control

import (
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-mem/api"
)

// Registry holds the MemoryProbe set of one manager and fans lifecycle
// events out to it.
type Registry struct {
	mu       sync.Mutex // serializes Add/Remove/Clear
	snapshot atomic.Pointer[[]api.MemoryProbe]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	probes := make([]api.MemoryProbe, 0)
	r.snapshot.Store(&probes)
	return r
}

// Add registers a probe.
func (r *Registry) Add(p api.MemoryProbe) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur := *r.snapshot.Load()
	next := make([]api.MemoryProbe, len(cur)+1)
	copy(next, cur)
	next[len(cur)] = p
	r.snapshot.Store(&next)
}

// Remove unregisters a previously added probe. Reports whether it was found.
func (r *Registry) Remove(p api.MemoryProbe) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur := *r.snapshot.Load()
	for i, existing := range cur {
		if existing == p {
			next := make([]api.MemoryProbe, 0, len(cur)-1)
			next = append(next, cur[:i]...)
			next = append(next, cur[i+1:]...)
			r.snapshot.Store(&next)
			return true
		}
	}
	return false
}

// Clear unregisters all probes.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	probes := make([]api.MemoryProbe, 0)
	r.snapshot.Store(&probes)
}

// Probes returns the current probe snapshot; callers must not mutate it.
func (r *Registry) Probes() []api.MemoryProbe {
	return *r.snapshot.Load()
}

// BufferAllocated notifies all probes of a fresh buffer allocation.
func (r *Registry) BufferAllocated(size int) {
	for _, p := range *r.snapshot.Load() {
		p.BufferAllocated(size)
	}
}

// BufferAllocatedFromPool notifies all probes of a pooled hand-out.
func (r *Registry) BufferAllocatedFromPool(size int) {
	for _, p := range *r.snapshot.Load() {
		p.BufferAllocatedFromPool(size)
	}
}

// BufferReleasedToPool notifies all probes of a buffer returning to a slice.
func (r *Registry) BufferReleasedToPool(size int) {
	for _, p := range *r.snapshot.Load() {
		p.BufferReleasedToPool(size)
	}
}

// BufferReleased notifies all probes of a buffer dropped to the garbage
// collector.
func (r *Registry) BufferReleased(size int) {
	for _, p := range *r.snapshot.Load() {
		p.BufferReleased(size)
	}
}
