// File: control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// go-metrics probe adapter. Registers pool lifecycle counters and meters in
// a metrics registry so embedders can feed them into whatever reporter they
// already run.

package control

import (
	metrics "github.com/rcrowley/go-metrics"

	"github.com/momentics/hioload-mem/api"
)

// Metric names registered by MetricsProbe.
const (
	MetricBuffersAllocated = "mem.buffers.allocated"
	MetricBuffersFromPool  = "mem.buffers.allocated-from-pool"
	MetricBuffersToPool    = "mem.buffers.released-to-pool"
	MetricBuffersDropped   = "mem.buffers.dropped"
	MetricBytesAllocated   = "mem.bytes.allocated"
	MetricAllocationRate   = "mem.allocations.rate"
	MetricPoolHitRate      = "mem.pool-hits.rate"
)

// MetricsProbe implements api.MemoryProbe over a go-metrics registry.
type MetricsProbe struct {
	allocated metrics.Counter
	fromPool  metrics.Counter
	toPool    metrics.Counter
	dropped   metrics.Counter
	bytes     metrics.Counter
	allocRate metrics.Meter
	hitRate   metrics.Meter
}

// NewMetricsProbe registers the pool metrics in r and returns the probe.
// Passing nil selects the go-metrics default registry.
func NewMetricsProbe(r metrics.Registry) *MetricsProbe {
	if r == nil {
		r = metrics.DefaultRegistry
	}
	return &MetricsProbe{
		allocated: metrics.GetOrRegisterCounter(MetricBuffersAllocated, r),
		fromPool:  metrics.GetOrRegisterCounter(MetricBuffersFromPool, r),
		toPool:    metrics.GetOrRegisterCounter(MetricBuffersToPool, r),
		dropped:   metrics.GetOrRegisterCounter(MetricBuffersDropped, r),
		bytes:     metrics.GetOrRegisterCounter(MetricBytesAllocated, r),
		allocRate: metrics.GetOrRegisterMeter(MetricAllocationRate, r),
		hitRate:   metrics.GetOrRegisterMeter(MetricPoolHitRate, r),
	}
}

// BufferAllocated counts a fresh heap allocation.
func (m *MetricsProbe) BufferAllocated(size int) {
	m.allocated.Inc(1)
	m.bytes.Inc(int64(size))
	m.allocRate.Mark(1)
}

// BufferAllocatedFromPool counts a pooled hand-out.
func (m *MetricsProbe) BufferAllocatedFromPool(int) {
	m.fromPool.Inc(1)
	m.allocRate.Mark(1)
	m.hitRate.Mark(1)
}

// BufferReleasedToPool counts a buffer returning to its slice.
func (m *MetricsProbe) BufferReleasedToPool(int) {
	m.toPool.Inc(1)
}

// BufferReleased counts a buffer dropped to the garbage collector.
func (m *MetricsProbe) BufferReleased(size int) {
	m.dropped.Inc(1)
	m.bytes.Inc(int64(-size))
}

var _ api.MemoryProbe = (*MetricsProbe)(nil)
