// File: hostenv/hostenv.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package hostenv

import (
	"math"
	"runtime"
	"runtime/debug"

	"github.com/momentics/hioload-mem/api"
)

type systemEnv struct{}

// Default returns the real host environment.
func Default() api.HostEnv {
	return systemEnv{}
}

// AvailableProcessors returns the number of logical CPUs usable by the
// process.
func (systemEnv) AvailableProcessors() int {
	return runtime.NumCPU()
}

// MaxHeapBytes returns the heap ceiling: the runtime soft memory limit when
// one is set, otherwise the physical memory of the host.
func (systemEnv) MaxHeapBytes() int64 {
	if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < math.MaxInt64 {
		return limit
	}
	return physicalMemoryBytes()
}
