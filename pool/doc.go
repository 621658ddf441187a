// Package pool
// Author: momentics <momentics@gmail.com>
//
// Tiered, sliced, lock-free buffer pool for hioload-mem.
// A Manager owns a table of Pools (size classes); each Pool stripes
// allocation requests across PoolSlices, and each PoolSlice is a bounded
// lock-free MPMC ring of fixed-size PoolBuffers. Buffers hand out
// share-counted views and return to their slice when the last view is
// disposed. Requests above the largest size class are served as composites.
// See slice.go for the ring mechanics and manager.go for the façade.
package pool
