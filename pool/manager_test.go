package pool_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/momentics/hioload-mem/api"
	"github.com/momentics/hioload-mem/fake"
	"github.com/momentics/hioload-mem/pool"
)

// testConfig budgets the pool table against a fixed 30 MiB heap so slice
// capacities are deterministic: 256/64/16 buffers for the 4/16/64 KiB
// classes with a single slice each.
func testConfig() *pool.Config {
	return &pool.Config{
		BaseBufferSize: 4096,
		NumberOfPools:  3,
		GrowthFactor:   2,
		SlicesPerPool:  1,
		HeapFraction:   0.1,
		Env:            fake.Env{Procs: 2, HeapBytes: 30 << 20},
	}
}

func newTestManager(t *testing.T) *pool.Manager {
	t.Helper()
	m, err := pool.NewManager(testConfig())
	if err != nil {
		t.Fatalf("manager construction failed: %v", err)
	}
	return m
}

func TestManagerPoolTable(t *testing.T) {
	m := newTestManager(t)
	pools := m.Pools()
	if len(pools) != 3 {
		t.Fatalf("pool count = %d, want 3", len(pools))
	}
	for i, want := range []int{4096, 16384, 65536} {
		if got := pools[i].BufferSize(); got != want {
			t.Errorf("pool %d buffer size = %d, want %d", i, got, want)
		}
	}
	if got := m.MaxPooledBufferSize(); got != 65536 {
		t.Errorf("max pooled buffer size = %d, want 65536", got)
	}
}

func TestConfigValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*pool.Config)
	}{
		{"zero base size", func(c *pool.Config) { c.BaseBufferSize = 0 }},
		{"base size not power of two", func(c *pool.Config) { c.BaseBufferSize = 3000 }},
		{"zero pools", func(c *pool.Config) { c.NumberOfPools = 0 }},
		{"zero growth with several pools", func(c *pool.Config) { c.GrowthFactor = 0 }},
		{"growth not power of two", func(c *pool.Config) { c.GrowthFactor = 3 }},
		{"negative growth", func(c *pool.Config) { c.GrowthFactor = -2 }},
		{"negative slices", func(c *pool.Config) { c.SlicesPerPool = -1 }},
		{"zero heap fraction", func(c *pool.Config) { c.HeapFraction = 0 }},
		{"full heap fraction", func(c *pool.Config) { c.HeapFraction = 1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(cfg)
			if _, err := pool.NewManager(cfg); !errors.Is(err, api.ErrInvalidConfig) {
				t.Errorf("got %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestSinglePoolAllowsZeroGrowth(t *testing.T) {
	cfg := testConfig()
	cfg.NumberOfPools = 1
	cfg.GrowthFactor = 0
	if _, err := pool.NewManager(cfg); err != nil {
		t.Fatalf("single-pool zero-growth config rejected: %v", err)
	}
}

func TestAllocateSmall(t *testing.T) {
	m := newTestManager(t)
	before := m.Pools()[0].ElementsCount()

	b, err := m.Allocate(1000)
	if err != nil {
		t.Fatal(err)
	}
	if b.Capacity() != 4096 {
		t.Errorf("capacity = %d, want 4096", b.Capacity())
	}
	if b.Limit() != 1000 {
		t.Errorf("limit = %d, want 1000", b.Limit())
	}
	if got := m.Pools()[0].ElementsCount(); got != before-1 {
		t.Errorf("pool 0 count = %d, want %d (allocation must come from pool 0)", got, before-1)
	}
}

func TestAllocateMedium(t *testing.T) {
	m := newTestManager(t)
	before := m.Pools()[2].ElementsCount()

	b, err := m.Allocate(20000)
	if err != nil {
		t.Fatal(err)
	}
	if b.Capacity() != 65536 {
		t.Errorf("capacity = %d, want 65536", b.Capacity())
	}
	if b.Limit() != 20000 {
		t.Errorf("limit = %d, want 20000", b.Limit())
	}
	if got := m.Pools()[2].ElementsCount(); got != before-1 {
		t.Errorf("pool 2 count = %d, want %d", got, before-1)
	}
}

func TestAllocateOversizeComposite(t *testing.T) {
	m := newTestManager(t)

	b, err := m.Allocate(200000)
	if err != nil {
		t.Fatal(err)
	}
	if !b.IsComposite() {
		t.Fatal("oversize allocation did not return a composite")
	}
	cb := b.(api.CompositeBuffer)
	if got := cb.SegmentCount(); got != 4 {
		t.Errorf("segment count = %d, want 4 (3 x 64 KiB + 1 x 4 KiB)", got)
	}
	if got := cb.Capacity(); got != 3*65536+4096 {
		t.Errorf("capacity = %d, want %d", got, 3*65536+4096)
	}
	if got := cb.Limit(); got != 200000 {
		t.Errorf("limit = %d, want 200000", got)
	}
}

func TestAllocateZeroReturnsEmpty(t *testing.T) {
	m := newTestManager(t)
	b, err := m.Allocate(0)
	if err != nil {
		t.Fatal(err)
	}
	if b.Capacity() != 0 {
		t.Errorf("capacity = %d, want 0", b.Capacity())
	}
	b2, _ := m.Allocate(0)
	if b != b2 {
		t.Error("zero-size allocations must resolve to the canonical empty buffer")
	}
}

func TestAllocateNegativeRejected(t *testing.T) {
	m := newTestManager(t)
	if _, err := m.Allocate(-1); !errors.Is(err, api.ErrInvalidSize) {
		t.Errorf("got %v, want ErrInvalidSize", err)
	}
	if _, err := m.AllocateAtLeast(-5); !errors.Is(err, api.ErrInvalidSize) {
		t.Errorf("got %v, want ErrInvalidSize", err)
	}
}

func TestAllocateAtLeastKeepsFullCapacity(t *testing.T) {
	m := newTestManager(t)
	b, err := m.AllocateAtLeast(5000)
	if err != nil {
		t.Fatal(err)
	}
	if b.Capacity() != 16384 || b.Limit() != 16384 {
		t.Errorf("capacity/limit = %d/%d, want 16384/16384", b.Capacity(), b.Limit())
	}
}

func TestReleaseRestoresSliceCount(t *testing.T) {
	m := newTestManager(t)
	before := m.Pools()[0].ElementsCount()

	b, _ := m.Allocate(1000)
	m.Release(b)

	if got := m.Pools()[0].ElementsCount(); got != before {
		t.Errorf("pool 0 count after release = %d, want %d", got, before)
	}
}

func TestWillAllocateDirect(t *testing.T) {
	m := newTestManager(t)
	if m.WillAllocateDirect(1 << 30) {
		t.Error("pooled manager must never allocate direct")
	}
}

func fill(b api.Buffer, n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i*7 + 3)
	}
	b.PutBytes(data)
	b.SetPosition(0)
	return data
}

func TestReallocateShrinkSameClass(t *testing.T) {
	m := newTestManager(t)
	b, _ := m.Allocate(3000)

	nb, err := m.Reallocate(b, 2000)
	if err != nil {
		t.Fatal(err)
	}
	if nb != b {
		t.Error("shrink within the same class must happen in place")
	}
	if nb.Limit() != 2000 || nb.Capacity() != 4096 {
		t.Errorf("limit/capacity = %d/%d, want 2000/4096", nb.Limit(), nb.Capacity())
	}
}

func TestReallocateShrinkAcrossClasses(t *testing.T) {
	m := newTestManager(t)
	before := m.Pools()[2].ElementsCount()

	b, _ := m.Allocate(20000)
	data := fill(b, 1000)

	nb, err := m.Reallocate(b, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if nb.Capacity() != 4096 {
		t.Errorf("capacity = %d, want 4096 (migrated to the small class)", nb.Capacity())
	}
	got := make([]byte, 1000)
	nb.GetBytes(got)
	if !bytes.Equal(got, data) {
		t.Error("content lost across class migration")
	}
	if cnt := m.Pools()[2].ElementsCount(); cnt != before {
		t.Errorf("old buffer not returned to pool 2: count %d, want %d", cnt, before)
	}
}

func TestReallocateGrowWithinPools(t *testing.T) {
	m := newTestManager(t)
	b, _ := m.Allocate(1000)
	data := fill(b, 1000)
	b.SetPosition(500)

	nb, err := m.Reallocate(b, 20000)
	if err != nil {
		t.Fatal(err)
	}
	if nb.Capacity() != 65536 {
		t.Errorf("capacity = %d, want 65536", nb.Capacity())
	}
	if nb.Position() != 500 || nb.Limit() != 1000 {
		t.Errorf("cursors = %d/%d, want 500/1000", nb.Position(), nb.Limit())
	}
	nb.SetPosition(0)
	got := make([]byte, 1000)
	nb.GetBytes(got)
	if !bytes.Equal(got, data) {
		t.Error("content lost while growing")
	}
}

func TestReallocateGrowBeyondPools(t *testing.T) {
	m := newTestManager(t)
	b, _ := m.Allocate(4096)
	data := fill(b, 4096)

	nb, err := m.Reallocate(b, 100000)
	if err != nil {
		t.Fatal(err)
	}
	if !nb.IsComposite() {
		t.Fatal("oversize growth must produce a composite")
	}
	if nb.Limit() != 100000 {
		t.Errorf("limit = %d, want 100000", nb.Limit())
	}
	if nb.Capacity() < 100000 {
		t.Errorf("capacity = %d, want >= 100000", nb.Capacity())
	}
	got := make([]byte, 4096)
	nb.GetBytes(got)
	if !bytes.Equal(got, data) {
		t.Error("content lost wrapping into a composite")
	}
}

func TestReallocateCompositeShrink(t *testing.T) {
	m := newTestManager(t)
	b, _ := m.Allocate(200000)
	cb := b.(api.CompositeBuffer)
	if cb.SegmentCount() != 4 {
		t.Fatalf("segment count = %d, want 4", cb.SegmentCount())
	}

	nb, err := m.Reallocate(b, 60000)
	if err != nil {
		t.Fatal(err)
	}
	ncb := nb.(api.CompositeBuffer)
	if got := ncb.SegmentCount(); got != 1 {
		t.Errorf("segment count after shrink = %d, want 1", got)
	}
	if ncb.Limit() != 60000 {
		t.Errorf("limit = %d, want 60000", ncb.Limit())
	}
}

func TestReallocateCompositeGrow(t *testing.T) {
	m := newTestManager(t)
	b, _ := m.Allocate(200000)

	nb, err := m.Reallocate(b, 400000)
	if err != nil {
		t.Fatal(err)
	}
	if nb.Capacity() < 400000 {
		t.Errorf("capacity = %d, want >= 400000", nb.Capacity())
	}
	if !nb.IsComposite() {
		t.Error("composite growth must stay composite")
	}
}

func TestReallocateToZeroDisposes(t *testing.T) {
	m := newTestManager(t)
	before := m.Pools()[0].ElementsCount()

	b, _ := m.Allocate(100)
	nb, err := m.Reallocate(b, 0)
	if err != nil {
		t.Fatal(err)
	}
	if nb.Capacity() != 0 {
		t.Errorf("capacity = %d, want 0", nb.Capacity())
	}
	if got := m.Pools()[0].ElementsCount(); got != before {
		t.Errorf("old buffer not returned: count %d, want %d", got, before)
	}
}

func TestWrap(t *testing.T) {
	m := newTestManager(t)

	data := []byte("wrapped storage")
	b := m.Wrap(data)
	if b.Capacity() != len(data) {
		t.Errorf("capacity = %d, want %d", b.Capacity(), len(data))
	}
	data[0] = 'W'
	if b.Bytes()[0] != 'W' {
		t.Error("wrap must alias the caller's storage")
	}

	r := m.WrapRange(data, 8, 7)
	if string(r.Bytes()) != "storage" {
		t.Errorf("wrapped range = %q, want %q", r.Bytes(), "storage")
	}

	s := m.WrapString("abc")
	if !s.IsReadOnly() {
		t.Error("wrapped string must be read-only")
	}
	if string(s.Bytes()) != "abc" {
		t.Errorf("wrapped string = %q, want %q", s.Bytes(), "abc")
	}
}

func TestProbesObserveLifecycle(t *testing.T) {
	cfg := testConfig()
	m, err := pool.NewManager(cfg)
	if err != nil {
		t.Fatal(err)
	}
	probe := fake.NewProbe()
	m.Probes().Add(probe)

	b, _ := m.Allocate(1000)
	m.Release(b)

	_, fromPool, toPool, _ := probe.Counts()
	if fromPool != 1 {
		t.Errorf("allocated-from-pool events = %d, want 1", fromPool)
	}
	if toPool != 1 {
		t.Errorf("released-to-pool events = %d, want 1", toPool)
	}
}

func TestDebugDumpContainsPools(t *testing.T) {
	m := newTestManager(t)
	dump := m.Debug().DumpState()
	if _, ok := dump["pools"]; !ok {
		t.Error("debug dump missing the pools probe")
	}
}

func TestPoolsSnapshotIsCopy(t *testing.T) {
	m := newTestManager(t)
	p1 := m.Pools()
	p1[0] = nil
	if m.Pools()[0] == nil {
		t.Error("Pools must return a defensive copy")
	}
}
