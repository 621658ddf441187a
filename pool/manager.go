// File: pool/manager.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Manager: the memory manager façade. Validates configuration, builds the
// pool table, dispatches allocate/reallocate/release and exposes the
// monitoring registry. Requests above the largest size class are assembled
// from pool-sized segments into a composite buffer.

package pool

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/momentics/hioload-mem/api"
	"github.com/momentics/hioload-mem/control"
	"github.com/momentics/hioload-mem/core/buffer"
)

// Manager serves allocation requests out of a table of size-class pools.
// The main advantage over thread-local pooling schemes is that buffers can
// cross goroutines freely: a buffer released anywhere returns to its slice,
// so no size class fragments toward one thread.
type Manager struct {
	pools               []*Pool
	maxPooledBufferSize int

	probes *control.Registry
	debug  *control.DebugProbes
}

// NewManager builds a manager from cfg, or from DefaultConfig() when cfg is
// nil. The per-pool memory budget is maxHeap * HeapFraction / NumberOfPools.
func NewManager(cfg *Config) (*Manager, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	m := &Manager{
		probes: control.NewRegistry(),
		debug:  control.NewDebugProbes(),
	}

	heapSize := cfg.Env.MaxHeapBytes()
	memoryPerPool := int64(float64(heapSize) * cfg.HeapFraction / float64(cfg.NumberOfPools))

	opts := sliceOptions{
		skipWaitLoop: cfg.SkipBufferWaitLoop,
		trackSite:    cfg.TrackDisposeSite,
	}

	m.pools = make([]*Pool, cfg.NumberOfPools)
	bufferSize := cfg.BaseBufferSize
	for i := 0; i < cfg.NumberOfPools; i++ {
		p, err := newPool(bufferSize, memoryPerPool, cfg.SlicesPerPool, opts, m.probes)
		if err != nil {
			return nil, err
		}
		m.pools[i] = p
		bufferSize <<= cfg.GrowthFactor
	}
	m.maxPooledBufferSize = m.pools[cfg.NumberOfPools-1].bufferSize

	m.debug.RegisterProbe("pools", func() any { return m.poolStates() })

	logrus.WithFields(logrus.Fields{
		"pools":         cfg.NumberOfPools,
		"baseSize":      cfg.BaseBufferSize,
		"growthFactor":  cfg.GrowthFactor,
		"slicesPerPool": cfg.SlicesPerPool,
		"perPoolBytes":  memoryPerPool,
	}).Debug("buffer pool table built")

	return m, nil
}

// Allocate returns a buffer with limit set to exactly size. The capacity may
// be larger; the memory beyond the limit stays usable.
func (m *Manager) Allocate(size int) (api.Buffer, error) {
	b, err := m.AllocateAtLeast(size)
	if err != nil {
		return nil, err
	}
	b.SetLimit(size)
	return b, nil
}

// AllocateAtLeast returns a buffer of at least the requested size: the whole
// capacity of the chosen size class, or a composite above the largest class.
func (m *Manager) AllocateAtLeast(size int) (api.Buffer, error) {
	if size < 0 {
		return nil, api.ErrInvalidSize
	}
	if size == 0 {
		return buffer.Empty, nil
	}
	if size <= m.maxPooledBufferSize {
		return m.poolFor(size).Allocate(), nil
	}
	return m.allocateToComposite(m.newComposite(), size), nil
}

// Reallocate resizes old to at least newSize, preserving the first
// min(oldCapacity, newSize) bytes and the clamped cursors. The old buffer is
// disposed unless it is returned itself or, when growing past the largest
// size class, becomes the first segment of the returned composite.
func (m *Manager) Reallocate(old api.Buffer, newSize int) (api.Buffer, error) {
	if newSize < 0 {
		return nil, api.ErrInvalidSize
	}
	if newSize == 0 {
		old.TryDispose()
		return buffer.Empty, nil
	}

	switch b := old.(type) {
	case *PoolBuffer:
		return m.reallocatePooled(b, newSize), nil
	case api.CompositeBuffer:
		return m.reallocateComposite(b, newSize), nil
	default:
		return nil, api.ErrNotSupported
	}
}

func (m *Manager) reallocatePooled(old *PoolBuffer, newSize int) api.Buffer {
	curBufSize := old.Capacity()

	if curBufSize >= newSize {
		newPool := m.poolFor(newSize)
		if newPool != old.owner.owner {
			// Same bytes fit, but in a smaller size class; migrate so the
			// oversized buffer can go back to its pool.
			pos := min(old.Position(), newSize)
			lim := min(old.Limit(), newSize)

			newBuf := newPool.Allocate()
			buffer.SetPositionLimit(old, 0, newSize)
			newBuf.Put(old)
			buffer.SetPositionLimit(newBuf, pos, lim)

			old.TryDispose()
			return newBuf
		}
		old.SetLimit(newSize)
		return old
	}

	pos := old.Position()
	lim := old.Limit()
	buffer.SetPositionLimit(old, 0, curBufSize)

	if newSize <= m.maxPooledBufferSize {
		newBuf := m.poolFor(newSize).Allocate()
		newBuf.Put(old)
		buffer.SetPositionLimit(newBuf, pos, lim)

		old.TryDispose()
		return newBuf
	}

	// Oversize growth: wrap the old buffer into a composite and extend it
	// with pool segments.
	cb := m.newComposite()
	cb.Append(old)
	m.allocateToComposite(cb, newSize-curBufSize)
	buffer.SetPositionLimit(cb, pos, newSize)
	return cb
}

func (m *Manager) reallocateComposite(old api.CompositeBuffer, newSize int) api.Buffer {
	curBufSize := old.Capacity()
	if curBufSize > newSize {
		oldPos := old.Position()
		buffer.SetPositionLimit(old, newSize, newSize)
		old.Trim()
		old.SetPosition(min(oldPos, newSize))
		return old
	}
	return m.allocateToComposite(old, newSize-curBufSize)
}

// Release hands the buffer back to its pool.
func (m *Manager) Release(b api.Buffer) {
	b.TryDispose()
}

// WillAllocateDirect reports false: this manager never allocates off-heap.
func (m *Manager) WillAllocateDirect(int) bool { return false }

// MaxPooledBufferSize returns the buffer size of the largest size class.
func (m *Manager) MaxPooledBufferSize() int { return m.maxPooledBufferSize }

// Pools returns a snapshot copy of the pool table.
func (m *Manager) Pools() []*Pool {
	out := make([]*Pool, len(m.pools))
	copy(out, m.pools)
	return out
}

// Probes returns the monitoring registry; callers attach MemoryProbe
// implementations to observe buffer lifecycle events.
func (m *Manager) Probes() *control.Registry { return m.probes }

// Debug returns the debug probe registry with the built-in "pools" state
// dump registered.
func (m *Manager) Debug() *control.DebugProbes { return m.debug }

// Wrap returns a buffer over the given storage. Wrapped buffers are not
// pooled; disposing them only drops the reference.
func (m *Manager) Wrap(data []byte) api.Buffer {
	return buffer.NewByteBuf(data)
}

// WrapRange returns a buffer over data[off : off+n].
func (m *Manager) WrapRange(data []byte, off, n int) api.Buffer {
	return buffer.NewByteBuf(data[off : off+n : off+n])
}

// WrapString returns a read-only buffer over the bytes of s.
func (m *Manager) WrapString(s string) api.Buffer {
	return buffer.NewByteBuf([]byte(s)).AsReadOnly()
}

// poolFor picks the smallest pool able to satisfy size. The table is tiny
// (a handful of entries), so a linear scan wins over anything cleverer.
func (m *Manager) poolFor(size int) *Pool {
	for _, p := range m.pools {
		if p.bufferSize >= size {
			return p
		}
	}
	// Unreachable in a valid configuration: oversize requests take the
	// composite path before a direct pool lookup.
	panic(fmt.Errorf("no pool big enough to allocate %d bytes", size))
}

// allocateToComposite extends cb by size additional bytes of pool segments:
// top-class buffers while the remainder covers a whole one, then a single
// buffer from the smallest class covering what is left.
func (m *Manager) allocateToComposite(cb api.CompositeBuffer, size int) api.CompositeBuffer {
	oldAppendable := cb.IsAppendable()
	cb.SetAppendable(true)

	if size >= m.maxPooledBufferSize {
		topPool := m.pools[len(m.pools)-1]
		for size >= m.maxPooledBufferSize {
			cb.Append(topPool.Allocate())
			size -= m.maxPooledBufferSize
		}
	}
	for _, p := range m.pools {
		if p.bufferSize >= size {
			cb.Append(p.Allocate())
			break
		}
	}

	cb.SetAppendable(oldAppendable)
	return cb
}

func (m *Manager) newComposite() api.CompositeBuffer {
	cb := buffer.NewComposite(m)
	cb.AllowInternalBuffersDispose(true)
	cb.AllowDispose(true)
	return cb
}

// poolStates snapshots the pool table for the debug registry.
func (m *Manager) poolStates() []control.PoolState {
	out := make([]control.PoolState, len(m.pools))
	for i, p := range m.pools {
		out[i] = control.PoolState{
			BufferSize:    p.BufferSize(),
			Slices:        len(p.slices),
			ElementsCount: p.ElementsCount(),
			SizeBytes:     p.Size(),
		}
	}
	return out
}

var (
	_ api.MemoryManager = (*Manager)(nil)
	_ api.WrapperAware  = (*Manager)(nil)
)
