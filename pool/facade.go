package pool

import "sync/atomic"

// PoolStats is a point-in-time snapshot of a Pool's traffic, exposed for
// the ambient metrics layer in package control (control.PoolRecorder).
type PoolStats struct {
	Allocated uint64 // factory invocations (cache misses)
	Reused    uint64 // Gets served from a Stack or HandoffQueue
	Recycled  uint64 // Recycle calls that actually returned a Handle

	AdmissionDrops  uint64 // novel handles discarded by admission sampling
	CapacityDenied  uint64 // Link reservations refused, shared budget exhausted
	StateInvariants uint64 // recycleID/lastRecycledID corruption observed
	HandoffDepth    uint64 // handles currently parked in inbound HandoffQueues

	// Live is the net of objects handed out but not yet recycled
	// (Allocated+Reused-Recycled), the "objects live" gauge SPEC_FULL.md
	// section 10.2 names.
	Live uint64
}

type poolCounters struct {
	allocated atomic.Uint64
	reused    atomic.Uint64
	recycled  atomic.Uint64

	admissionDrops  atomic.Uint64
	capacityDenied  atomic.Uint64
	stateInvariants atomic.Uint64
	handoffDepth    atomic.Int64
}

// Pool binds a factory function to per-owner Stacks of T. The zero
// value is not usable; construct with New.
type Pool[T any] struct {
	id   uint64
	opts atomic.Pointer[Options]
	new  func(h *Handle[T]) T

	counters    poolCounters
	diagnostics *diagnosticLog
}

// New builds a Pool around newFn. newFn is invoked on a cache miss and
// is responsible for wiring h into the object it returns (typically by
// embedding *Handle[T] and assigning it) so the caller can later call
// Recycle on the object itself. Passing no opts uses DefaultOptions.
func New[T any](newFn func(h *Handle[T]) T, opts ...Options) *Pool[T] {
	o := DefaultOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	o = o.normalize()
	p := &Pool[T]{id: nextID(), new: newFn, diagnostics: newDiagnosticLog()}
	p.opts.Store(&o)
	return p
}

// SetOptions replaces the Options applied to any Stack a Local creates
// from this point on. Stacks a Local already holds keep the Options
// snapshot they were built with — fields like LinkCapacity are baked
// into already-allocated Links, so changing them retroactively would
// corrupt in-flight capacity bookkeeping. control.WatchPoolOptions
// drives this from a control.ConfigStore's reload hook.
func (p *Pool[T]) SetOptions(o Options) {
	o = o.normalize()
	p.opts.Store(&o)
}

// Options returns the Options currently applied to new Stacks.
func (p *Pool[T]) Options() Options {
	return *p.opts.Load()
}

// Get returns a T: reused from l's home Stack or one of its inbound
// HandoffQueues if available, freshly constructed otherwise. If the
// Pool was built with MaxCapacityPerThread == 0, pooling is disabled and
// every Get allocates.
func (p *Pool[T]) Get(l *Local) T {
	if p.opts.Load().MaxCapacityPerThread == 0 {
		h := &Handle[T]{}
		obj := p.new(h)
		h.obj = obj
		p.counters.allocated.Add(1)
		return obj
	}

	st := stackFor(l, p)
	h := st.pop()
	if h == nil {
		h = &Handle[T]{home: st}
		h.container.Store(st)
		obj := p.new(h)
		h.obj = obj
		p.counters.allocated.Add(1)
		return obj
	}
	p.counters.reused.Add(1)
	return h.obj
}

// RecycleHandle is the deprecated two-argument recycle path (section 7:
// AlienHandle). It reports whether h belongs to p before delegating to
// Handle.Recycle; prefer calling Recycle directly on the object's
// embedded Handle.
func (p *Pool[T]) RecycleHandle(l *Local, h *Handle[T]) bool {
	if h.home != nil && h.home.pool != p {
		return false
	}
	h.Recycle(l)
	return true
}

// Stats returns a snapshot of this Pool's traffic counters.
func (p *Pool[T]) Stats() PoolStats {
	allocated := p.counters.allocated.Load()
	reused := p.counters.reused.Load()
	recycled := p.counters.recycled.Load()

	live := int64(allocated+reused) - int64(recycled)
	if live < 0 {
		live = 0
	}

	depth := p.counters.handoffDepth.Load()
	if depth < 0 {
		depth = 0
	}

	return PoolStats{
		Allocated:       allocated,
		Reused:          reused,
		Recycled:        recycled,
		AdmissionDrops:  p.counters.admissionDrops.Load(),
		CapacityDenied:  p.counters.capacityDenied.Load(),
		StateInvariants: p.counters.stateInvariants.Load(),
		HandoffDepth:    uint64(depth),
		Live:            uint64(live),
	}
}

// RecentDiagnostics returns every DoubleRecycle/StateInvariant occurrence
// this Pool currently retains, oldest first. The source a
// control.DebugProbes hook reads from when dumping pool state.
func (p *Pool[T]) RecentDiagnostics() []DiagnosticEvent {
	return p.diagnostics.recent()
}
