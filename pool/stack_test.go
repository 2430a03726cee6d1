package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestStackCapacityBound is property P2: a Stack never retains more than
// MaxCapacityPerThread handles, regardless of how many distinct objects
// are recycled into it.
func TestStackCapacityBound(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxCapacityPerThread = 8
	opts.Interval = 0 // disable admission sampling so every recycle is kept
	opts = opts.normalize()

	p := New(func(h *Handle[*widget]) *widget { return &widget{h: h} }, opts)
	l := Bind()

	const n = 64
	ws := make([]*widget, n)
	for i := range ws {
		ws[i] = p.Get(l)
	}
	for _, w := range ws {
		w.h.Recycle(l)
	}

	st := stackFor(l, p)
	require.LessOrEqual(t, st.size, opts.MaxCapacityPerThread)
}

// TestStackGrowsByDoublingUnderCap checks the element array grows by
// doubling and never exceeds MaxCapacityPerThread.
func TestStackGrowsByDoublingUnderCap(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxCapacityPerThread = 1000
	opts = opts.normalize()

	p := New(func(h *Handle[*widget]) *widget { return &widget{h: h} }, opts)
	l := Bind()
	st := stackFor(l, p)

	st.grow(300)
	require.Equal(t, 2*initialStackCapacity, len(st.elements))

	st.grow(1000)
	require.Equal(t, opts.MaxCapacityPerThread, len(st.elements))
}

// TestPopReturnsNilWhenEmpty covers the base case: a fresh Stack with no
// inbound queues and nothing recycled yet has nothing to pop.
func TestPopReturnsNilWhenEmpty(t *testing.T) {
	p := New(func(h *Handle[*widget]) *widget { return &widget{h: h} })
	l := Bind()
	st := stackFor(l, p)
	require.Nil(t, st.pop())
}
