// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import "github.com/momentics/hioload-mem/api"

// Env is a fixed host environment; tests use it to make slice capacities
// deterministic.
type Env struct {
	Procs     int
	HeapBytes int64
}

// AvailableProcessors returns the configured processor count.
func (e Env) AvailableProcessors() int { return e.Procs }

// MaxHeapBytes returns the configured heap ceiling.
func (e Env) MaxHeapBytes() int64 { return e.HeapBytes }

var _ api.HostEnv = Env{}
