// File: api/probe.go
// Author: momentics <momentics@gmail.com>
//
// Monitoring probe contract. Probes observe buffer lifecycle events emitted
// by the pools; registration happens through control.Registry.

package api

// MemoryProbe receives buffer lifecycle notifications. Implementations must
// be cheap and must not block: probes run inline on the allocation path.
type MemoryProbe interface {
	// BufferAllocated fires when a fresh buffer is created, either to
	// pre-populate a slice or because a slice ran dry.
	BufferAllocated(size int)

	// BufferAllocatedFromPool fires when a pooled buffer is handed out.
	BufferAllocatedFromPool(size int)

	// BufferReleasedToPool fires when a buffer re-enters its slice.
	BufferReleasedToPool(size int)

	// BufferReleased fires when a buffer is dropped to the garbage collector
	// because its slice refused the return.
	BufferReleased(size int)
}
