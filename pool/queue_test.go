package pool

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestHandoffQueueTransferPreservesOrder is property P7: handles land in
// a HandoffQueue's home Stack in the order they were enqueued.
func TestHandoffQueueTransferPreservesOrder(t *testing.T) {
	opts := DefaultOptions()
	opts.Interval = 0
	opts.DelayedQueueInterval = 0
	opts.LinkCapacity = 16
	opts = opts.normalize()

	p := New(func(h *Handle[*widget]) *widget { return &widget{h: h} }, opts)
	owner := Bind()
	st := stackFor(owner, p)

	foreign := Bind()
	const n = 40
	ws := make([]*widget, n)
	for i := range ws {
		ws[i] = p.Get(owner)
		ws[i].val = i
	}
	for _, w := range ws {
		w.h.Recycle(foreign)
	}

	for st.scavenge() {
	}

	require.Equal(t, n, st.size)
	for i := 0; i < n; i++ {
		h := st.elements[i]
		require.Equal(t, i, h.obj.val)
	}
}

// TestHandoffQueueReservesSharedCapacity checks that opening a
// HandoffQueue spends one Link's worth of the home Stack's shared
// capacity budget immediately.
func TestHandoffQueueReservesSharedCapacity(t *testing.T) {
	opts := DefaultOptions()
	opts.Interval = 0
	opts.DelayedQueueInterval = 0
	opts.LinkCapacity = 16
	opts.MaxSharedCapacityFactor = 2
	opts = opts.normalize()

	p := New(func(h *Handle[*widget]) *widget { return &widget{h: h} }, opts)
	owner := Bind()
	st := stackFor(owner, p)
	budget := st.sharedCap.Load()

	foreign := Bind()
	w := p.Get(owner)
	w.h.Recycle(foreign)
	require.Equal(t, budget-int64(opts.LinkCapacity), st.sharedCap.Load())
}

// TestHandoffQueueReclaimsOnDeadProducer is the dead-producer half of
// section 4.4 scavenge: once a queue's producer Local becomes
// unreachable, the next scavenge drains whatever it holds, unlinks it,
// and refunds its reserved Links back to the home Stack's budget.
func TestHandoffQueueReclaimsOnDeadProducer(t *testing.T) {
	opts := DefaultOptions()
	opts.Interval = 0
	opts.DelayedQueueInterval = 0
	opts.LinkCapacity = 16
	opts = opts.normalize()

	p := New(func(h *Handle[*widget]) *widget { return &widget{h: h} }, opts)
	owner := Bind()
	st := stackFor(owner, p)
	budget := st.sharedCap.Load()

	// foreignQueue is linked in first, so a second queue created after it
	// becomes the chain's new head and keeps foreignQueue from ever being
	// the un-unlinkable first entry (section 4.4: the chain's head is
	// never unlinked even once its producer is observed dead). Both objects
	// are taken out before either is recycled: a Get issued after the first
	// recycle would scavenge that object straight back.
	w := p.Get(owner)
	anchorW := p.Get(owner)

	func() {
		foreign := Bind()
		w.h.Recycle(foreign)
	}()

	anchor := Bind()
	anchorW.h.Recycle(anchor)

	runtime.GC()
	runtime.GC()

	for st.scavenge() {
	}
	// anchor's queue only stands in front of foreignQueue as a live
	// predecessor while anchor itself is still reachable.
	runtime.KeepAlive(anchor)

	require.Equal(t, budget-int64(opts.LinkCapacity), st.sharedCap.Load())
	require.Equal(t, 2, st.size)
}
