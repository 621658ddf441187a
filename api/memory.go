// File: api/memory.go
// Author: momentics <momentics@gmail.com>
//
// Memory manager contracts: tiered allocation, reallocation and release of
// byte buffers, plus wrapping of caller-owned storage.

package api

// MemoryManager serves allocate/release requests for variable-sized byte
// buffers out of a table of fixed-size pools.
type MemoryManager interface {
	// Allocate returns a buffer with limit == size. The capacity may be
	// larger: it equals the buffer size of the chosen size class.
	Allocate(size int) (Buffer, error)

	// AllocateAtLeast returns a buffer with capacity >= size and limit set to
	// the full capacity of the chosen class.
	AllocateAtLeast(size int) (Buffer, error)

	// Reallocate resizes old to newSize, preserving the first
	// min(oldCapacity, newSize) bytes. The old buffer must not be used after
	// the call.
	Reallocate(old Buffer, newSize int) (Buffer, error)

	// Release hands the buffer back; equivalent to TryDispose.
	Release(b Buffer)

	// WillAllocateDirect reports whether an allocation of the given size
	// would be served off-heap. Always false for the pooled manager.
	WillAllocateDirect(size int) bool
}

// WrapperAware is implemented by managers that can adopt caller-owned storage
// without copying.
type WrapperAware interface {
	// Wrap returns a buffer over the given storage.
	Wrap(data []byte) Buffer

	// WrapRange returns a buffer over data[off : off+n].
	WrapRange(data []byte, off, n int) Buffer

	// WrapString returns a read-only buffer over the bytes of s.
	WrapString(s string) Buffer
}
