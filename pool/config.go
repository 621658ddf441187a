// File: pool/config.go
// Author: momentics <momentics@gmail.com>
//
// Immutable manager configuration and its validation. All fields influence
// construction only; nothing is tunable at runtime.

package pool

import (
	"github.com/pkg/errors"

	"github.com/momentics/hioload-mem/api"
	"github.com/momentics/hioload-mem/hostenv"
)

// Defaults used when no explicit configuration is provided.
const (
	DefaultBaseBufferSize = 4 * 1024
	DefaultNumberOfPools  = 3
	DefaultGrowthFactor   = 2
	DefaultHeapFraction   = 0.1
)

// Config holds the parameters of a Manager, immutable per instance.
type Config struct {
	// BaseBufferSize is the buffer size of the first pool, in bytes. Every
	// next pool n holds buffers of size BaseBufferSize << (n*GrowthFactor).
	// Must be a power of two.
	BaseBufferSize int

	// NumberOfPools is the number of size classes.
	NumberOfPools int

	// GrowthFactor defines the 2^x multiplier between consecutive size
	// classes. Must be a power of two, and non-zero when NumberOfPools > 1.
	GrowthFactor int

	// SlicesPerPool is the number of slices every pool stripes allocation
	// requests across. Zero selects the host processor count.
	SlicesPerPool int

	// HeapFraction is the share of the max heap budgeted for all pools
	// combined. Must lie strictly between 0 and 1.
	HeapFraction float64

	// SkipBufferWaitLoop makes the post-CAS slot reconciliation in
	// Poll/Offer fail fast instead of spinning for the counterpart
	// operation. Best-effort path; off by default.
	SkipBufferWaitLoop bool

	// TrackDisposeSite retains the stack of the first dispose of every
	// buffer so use-after-dispose panics can point at it.
	TrackDisposeSite bool

	// Env supplies the host facts the pool table is budgeted against.
	// Nil selects the real host environment.
	Env api.HostEnv
}

// DefaultConfig returns the default manager configuration: 4 KiB base
// buffers, 3 pools growing by 2^2 (4 KiB, 16 KiB, 64 KiB), one slice per
// processor and 10% of the heap.
func DefaultConfig() *Config {
	return &Config{
		BaseBufferSize: DefaultBaseBufferSize,
		NumberOfPools:  DefaultNumberOfPools,
		GrowthFactor:   DefaultGrowthFactor,
		HeapFraction:   DefaultHeapFraction,
	}
}

// normalize fills derived defaults and validates the result.
func (c *Config) normalize() error {
	if c.Env == nil {
		c.Env = hostenv.Default()
	}
	if c.SlicesPerPool == 0 {
		c.SlicesPerPool = c.Env.AvailableProcessors()
	}
	return c.validate()
}

func (c *Config) validate() error {
	if c.BaseBufferSize <= 0 {
		return errors.Wrap(api.ErrInvalidConfig, "baseBufferSize must be greater than zero")
	}
	if c.NumberOfPools <= 0 {
		return errors.Wrap(api.ErrInvalidConfig, "numberOfPools must be greater than zero")
	}
	if c.GrowthFactor == 0 && c.NumberOfPools > 1 {
		return errors.Wrap(api.ErrInvalidConfig, "growthFactor must be greater than zero when more than one pool is configured")
	}
	if c.GrowthFactor < 0 {
		return errors.Wrap(api.ErrInvalidConfig, "growthFactor must be greater or equal to zero")
	}
	if c.SlicesPerPool <= 0 {
		return errors.Wrap(api.ErrInvalidConfig, "slicesPerPool must be greater than zero")
	}
	if !isPowerOfTwo(c.BaseBufferSize) || !isPowerOfTwo(c.GrowthFactor) {
		return errors.Wrap(api.ErrInvalidConfig, "baseBufferSize and growthFactor must be powers of two")
	}
	if c.HeapFraction <= 0.0 || c.HeapFraction >= 1.0 {
		return errors.Wrap(api.ErrInvalidConfig, "heapFraction must be greater than zero and less than 1")
	}
	return nil
}

func isPowerOfTwo(v int) bool {
	return v&(v-1) == 0
}
