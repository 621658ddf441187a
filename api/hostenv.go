// Package api
// Author: momentics <momentics@gmail.com>
//
// Host environment contract: the facts about the machine the pool table is
// budgeted against.

package api

// HostEnv reports host facts used to size the pool table.
type HostEnv interface {
	// AvailableProcessors returns the number of logical CPUs usable by the
	// process.
	AvailableProcessors() int

	// MaxHeapBytes returns the upper bound of heap memory the process should
	// assume, in bytes.
	MaxHeapBytes() int64
}
