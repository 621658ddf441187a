// File: control/history.go
// Author: momentics <momentics@gmail.com>
//
// Bounded probe event history. An opt-in debugging probe that keeps the
// last N lifecycle events; not meant for production hot paths.

package control

import (
	"sync"
	"time"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-mem/api"
)

// EventKind identifies a buffer lifecycle event.
type EventKind int

const (
	EventAllocated EventKind = iota
	EventAllocatedFromPool
	EventReleasedToPool
	EventReleased
)

func (k EventKind) String() string {
	switch k {
	case EventAllocated:
		return "allocated"
	case EventAllocatedFromPool:
		return "allocated-from-pool"
	case EventReleasedToPool:
		return "released-to-pool"
	case EventReleased:
		return "released"
	default:
		return "unknown"
	}
}

// ProbeEvent is one recorded lifecycle event.
type ProbeEvent struct {
	Kind EventKind
	Size int
	When time.Time
}

// EventHistory records the most recent lifecycle events up to a fixed
// capacity. It implements api.MemoryProbe; register it like any other probe.
type EventHistory struct {
	mu       sync.Mutex
	events   *queue.Queue
	capacity int
}

// NewEventHistory returns a history bounded to capacity events.
func NewEventHistory(capacity int) *EventHistory {
	if capacity < 1 {
		capacity = 1
	}
	return &EventHistory{
		events:   queue.New(),
		capacity: capacity,
	}
}

func (h *EventHistory) record(kind EventKind, size int) {
	h.mu.Lock()
	h.events.Add(ProbeEvent{Kind: kind, Size: size, When: time.Now()})
	for h.events.Length() > h.capacity {
		h.events.Remove()
	}
	h.mu.Unlock()
}

// Snapshot returns the recorded events, oldest first.
func (h *EventHistory) Snapshot() []ProbeEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]ProbeEvent, h.events.Length())
	for i := range out {
		out[i] = h.events.Get(i).(ProbeEvent)
	}
	return out
}

// BufferAllocated implements api.MemoryProbe.
func (h *EventHistory) BufferAllocated(size int) { h.record(EventAllocated, size) }

// BufferAllocatedFromPool implements api.MemoryProbe.
func (h *EventHistory) BufferAllocatedFromPool(size int) { h.record(EventAllocatedFromPool, size) }

// BufferReleasedToPool implements api.MemoryProbe.
func (h *EventHistory) BufferReleasedToPool(size int) { h.record(EventReleasedToPool, size) }

// BufferReleased implements api.MemoryProbe.
func (h *EventHistory) BufferReleased(size int) { h.record(EventReleased, size) }

var _ api.MemoryProbe = (*EventHistory)(nil)
