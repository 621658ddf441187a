package pool

import (
	"testing"

	"github.com/momentics/hioload-mem/control"
)

// newTestSlice builds a single-slice pool with exactly slots ring capacity.
func newTestSlice(t *testing.T, slots, bufferSize int, opts sliceOptions) *PoolSlice {
	t.Helper()
	p, err := newPool(bufferSize, int64(slots*bufferSize), 1, opts, control.NewRegistry())
	if err != nil {
		t.Fatalf("pool construction failed: %v", err)
	}
	return p.slices[0]
}

func TestSliceStartsFull(t *testing.T) {
	s := newTestSlice(t, 64, 128, sliceOptions{})
	if got := s.ElementsCount(); got != 64 {
		t.Errorf("fresh slice count = %d, want 64", got)
	}
	if got := s.Size(); got != 64*128 {
		t.Errorf("fresh slice size = %d, want %d", got, 64*128)
	}
}

func TestSliceCapacityRoundedToStride(t *testing.T) {
	// 100 buffers round up to 112 slots.
	s := newTestSlice(t, 100, 64, sliceOptions{})
	if s.MaxPoolSize()%stride != 0 {
		t.Errorf("maxPoolSize %d is not a multiple of %d", s.MaxPoolSize(), stride)
	}
	if s.MaxPoolSize() != 112 {
		t.Errorf("maxPoolSize = %d, want 112", s.MaxPoolSize())
	}
}

func TestSliceCapacityOverflowRejected(t *testing.T) {
	p := &Pool{bufferSize: 1}
	_, err := newPoolSlice(p, int64(wrapBit), 1, sliceOptions{}, control.NewRegistry())
	if err == nil {
		t.Fatal("expected construction error for a 2^30 slot ring")
	}
}

func TestPollDrainsToEmpty(t *testing.T) {
	s := newTestSlice(t, 32, 64, sliceOptions{})
	seen := make(map[*PoolBuffer]bool)
	for i := 0; i < 32; i++ {
		b := s.Poll()
		if b == nil {
			t.Fatalf("poll %d returned nil on a non-empty ring", i)
		}
		if seen[b] {
			t.Fatalf("poll %d returned a duplicate buffer", i)
		}
		seen[b] = true
	}
	if b := s.Poll(); b != nil {
		t.Error("poll on a drained ring returned a buffer")
	}
	if got := s.ElementsCount(); got != 0 {
		t.Errorf("drained slice count = %d, want 0", got)
	}
}

func TestOfferRefillsToFull(t *testing.T) {
	s := newTestSlice(t, 32, 64, sliceOptions{})
	var polled []*PoolBuffer
	for b := s.Poll(); b != nil; b = s.Poll() {
		polled = append(polled, b)
	}
	for i, b := range polled {
		if !s.Offer(b) {
			t.Fatalf("offer %d refused on a non-full ring", i)
		}
	}
	if got := s.ElementsCount(); got != 32 {
		t.Errorf("refilled slice count = %d, want 32", got)
	}
	extra := s.Allocate()
	if s.Offer(extra) {
		t.Error("offer on a full ring succeeded")
	}
}

func TestOfferForeignBufferRejected(t *testing.T) {
	s1 := newTestSlice(t, 16, 64, sliceOptions{})
	s2 := newTestSlice(t, 16, 64, sliceOptions{})
	b := s1.Poll()
	if b == nil {
		t.Fatal("poll returned nil")
	}
	if s2.Offer(b) {
		t.Error("foreign buffer accepted")
	}
	if !s1.Offer(b) {
		t.Error("owner slice refused its own buffer")
	}
}

// Drain/refill cycles cross the array boundary repeatedly, exercising the
// wrap bit flip and the two-array crossover.
func TestWrapAroundPreservesBuffers(t *testing.T) {
	const slots = 48
	s := newTestSlice(t, slots, 64, sliceOptions{})
	initial := make(map[*PoolBuffer]bool)

	for cycle := 0; cycle < 5; cycle++ {
		var polled []*PoolBuffer
		for b := s.Poll(); b != nil; b = s.Poll() {
			polled = append(polled, b)
		}
		if len(polled) != slots {
			t.Fatalf("cycle %d drained %d buffers, want %d", cycle, len(polled), slots)
		}
		for _, b := range polled {
			if cycle == 0 {
				initial[b] = true
			} else if !initial[b] {
				t.Fatalf("cycle %d returned a buffer not in the initial set", cycle)
			}
			if !s.Offer(b) {
				t.Fatalf("cycle %d refill refused", cycle)
			}
		}
	}
}

func TestIndexLaws(t *testing.T) {
	const slots = 64
	s := newTestSlice(t, slots, 64, sliceOptions{})

	// Walk one full array traversal: every slot visited exactly once, then
	// the wrap bit flips.
	idx := int32(0)
	visited := make(map[int32]bool)
	for i := 0; i < slots; i++ {
		if visited[unmask(idx)] {
			t.Fatalf("slot %d visited twice", unmask(idx))
		}
		visited[unmask(idx)] = true
		idx = s.nextIndex(idx)
	}
	if len(visited) != slots {
		t.Fatalf("traversal covered %d slots, want %d", len(visited), slots)
	}
	if idx != wrapBit {
		t.Fatalf("index after full traversal = %#x, want wrap bit set and zero slot", idx)
	}
	// Second traversal returns to the origin.
	for i := 0; i < slots; i++ {
		idx = s.nextIndex(idx)
	}
	if idx != 0 {
		t.Fatalf("index after two traversals = %#x, want 0", idx)
	}
}

// Stored counters stay inside the array: the strided walk only ever lands
// on offset + k*stride positions with the offset below stride.
func TestStoredIndicesStayInRange(t *testing.T) {
	s := newTestSlice(t, 64, 64, sliceOptions{})
	for i := 0; i < 200; i++ {
		if b := s.Poll(); b != nil {
			s.Offer(b)
		}
		for _, idx := range []int32{s.pollIdx.Load(), s.offerIdx.Load()} {
			slot := int(unmask(idx))
			if slot < 0 || slot >= s.maxPoolSize {
				t.Fatalf("stored index %d outside [0, %d)", slot, s.maxPoolSize)
			}
		}
	}
}

func TestElementsCountMidRing(t *testing.T) {
	const slots = 64
	s := newTestSlice(t, slots, 64, sliceOptions{})
	var polled []*PoolBuffer
	for k := 1; k <= 16; k++ {
		polled = append(polled, s.Poll())
		if got := s.ElementsCount(); got != slots-k {
			t.Errorf("count after %d polls = %d, want %d", k, got, slots-k)
		}
	}
	for i, b := range polled {
		s.Offer(b)
		if got := s.ElementsCount(); got != slots-16+i+1 {
			t.Errorf("count after %d refills = %d, want %d", i+1, got, slots-16+i+1)
		}
	}
}

func TestCountMatchesPhysicalSlots(t *testing.T) {
	s := newTestSlice(t, 48, 64, sliceOptions{})
	for k := 0; k < 20; k++ {
		b := s.Poll()
		if k%3 == 0 {
			s.Offer(b)
		}
	}
	physical := 0
	for _, arr := range []*slotArray{s.arrayA, s.arrayB} {
		for i := 0; i < arr.length(); i++ {
			if arr.get(i) != nil {
				physical++
			}
		}
	}
	if got := s.ElementsCount(); got != physical {
		t.Errorf("count = %d, physical non-empty slots = %d", got, physical)
	}
}

func TestClear(t *testing.T) {
	s := newTestSlice(t, 32, 64, sliceOptions{})
	s.Clear()
	if got := s.ElementsCount(); got != 0 {
		t.Errorf("count after clear = %d, want 0", got)
	}
	if b := s.Poll(); b != nil {
		t.Error("poll after clear returned a buffer")
	}
}

func TestSkipWaitLoopSingleThreaded(t *testing.T) {
	s := newTestSlice(t, 32, 64, sliceOptions{skipWaitLoop: true})
	b := s.Poll()
	if b == nil {
		t.Fatal("poll returned nil with skip-wait-loop enabled")
	}
	if !s.Offer(b) {
		t.Fatal("offer refused with skip-wait-loop enabled")
	}
	if got := s.ElementsCount(); got != 32 {
		t.Errorf("count = %d, want 32", got)
	}
}
