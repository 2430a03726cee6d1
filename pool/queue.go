package pool

import (
	"sync/atomic"
	"weak"
)

// handoffQueue is a single-producer/single-consumer channel from one
// foreign Local back to a home Stack. The producer is whichever Local
// calls enqueue; the consumer is always the home Stack's owner, driven
// from Stack.scavenge.
//
// A handoffQueue has no Stack-typed field: it reaches its home Stack
// only through the shared-capacity counter (sharedCap) and refers
// weakly to its own producer. sharedCap points into the Stack, and
// queued Handles keep their home pointer, so a queue that is still
// referenced keeps its home Stack reachable. A queue's producer can die
// out from under it, which scavenge detects via producer.Value() == nil
// and treats as "drain and unlink."
type handoffQueue[T any] struct {
	id uint64

	producer weak.Pointer[Local]

	sharedCap    *atomic.Int64
	linkCapacity int
	admission    admission[T]

	// counters points at the home Stack's Pool counters, for
	// CapacityDenied and HandoffDepth accounting (AdmissionDrops is
	// folded into admission itself).
	counters *poolCounters

	// head/tail are each touched by exactly one side after construction:
	// head only by the consumer (the home Stack's owner, via transfer),
	// tail only by the producer (via enqueue). Safe publication to the
	// consumer runs through the atomic Stack.headQueue chain this queue
	// is linked into before either side touches it again.
	head *link[T]
	tail *link[T]

	// next chains this queue into its home Stack's inbound list. Written
	// once at link-in time (under the Stack's mutex) and thereafter
	// mutated only by the Stack's owner during unlinking.
	next atomic.Pointer[handoffQueue[T]]
}

// newHandoffQueue reserves one Link's worth of the home Stack's shared
// capacity and builds a queue around it. Returns nil if the budget is
// exhausted (CapacityDenied: not an error, just no queue this time).
func newHandoffQueue[T any](l *Local, home *stack[T]) *handoffQueue[T] {
	if !reserveCapacity(&home.sharedCap, home.opts.LinkCapacity) {
		home.pool.counters.capacityDenied.Add(1)
		return nil
	}
	first := newLink[T](home.opts.LinkCapacity)
	q := &handoffQueue[T]{
		id:           nextID(),
		producer:     weak.Make(l),
		sharedCap:    &home.sharedCap,
		linkCapacity: home.opts.LinkCapacity,
		admission:    newAdmission[T](home.opts.DelayedQueueInterval, &home.pool.counters),
		counters:     &home.pool.counters,
		head:         first,
		tail:         first,
	}
	return q
}

func reserveCapacity(budget *atomic.Int64, amount int) bool {
	need := int64(amount)
	for {
		cur := budget.Load()
		if cur < need {
			return false
		}
		if budget.CompareAndSwap(cur, cur-need) {
			return true
		}
	}
}

// enqueue claims h for this queue (CASing lastRecycledID from zero to
// this queue's id), applies admission sampling, and appends it to the
// tail Link, growing the chain if the tail is full. It never blocks:
// growth failure (shared capacity exhausted) silently drops h.
func (q *handoffQueue[T]) enqueue(h *Handle[T]) {
	if !h.lastRecycledID.CompareAndSwap(0, q.id) {
		return
	}
	if q.admission.dropHandle(h) {
		return
	}
	tail := q.tail
	wc := tail.writeCount.Load()
	if int(wc) == tail.capacity() {
		nl := q.reserveLink()
		if nl == nil {
			return
		}
		tail.next.Store(nl)
		q.tail = nl
		tail = nl
		wc = 0
	}
	tail.slots[wc] = h
	h.container.Store(nil)
	tail.writeCount.Store(wc + 1)
	q.counters.handoffDepth.Add(1)
}

func (q *handoffQueue[T]) reserveLink() *link[T] {
	if !reserveCapacity(q.sharedCap, q.linkCapacity) {
		q.counters.capacityDenied.Add(1)
		return nil
	}
	return newLink[T](q.linkCapacity)
}

// hasFinalData reports whether the current head Link still has
// untransferred entries. Used only on the drain-then-unlink path once a
// queue's producer has been observed dead.
func (q *handoffQueue[T]) hasFinalData() bool {
	h := q.head
	return h != nil && h.readIndex != h.writeCount.Load()
}

// transfer moves as many ready entries as fit into dst, canonicalizing
// each Handle's recycleID and re-applying admission sampling on the
// Stack side. Returns true iff dst grew.
func (q *handoffQueue[T]) transfer(dst *stack[T]) bool {
	head := q.head
	if head == nil {
		return false
	}
	if head.readIndex == uint32(head.capacity()) {
		next := head.next.Load()
		if next == nil {
			return false
		}
		q.sharedCap.Add(int64(q.linkCapacity))
		head = next
		q.head = head
	}

	start := int(head.readIndex)
	end := int(head.writeCount.Load())
	if start == end {
		return false
	}

	if dst.size+(end-start) > len(dst.elements) {
		dst.grow(dst.size + (end - start))
	}
	room := len(dst.elements) - dst.size
	if room < end-start {
		end = start + room
	}
	if start == end {
		return false
	}

	newSize := dst.size
	for i := start; i < end; i++ {
		h := head.slots[i]
		head.slots[i] = nil

		rid := h.recycleID.Load()
		lrid := h.lastRecycledID.Load()
		switch {
		case rid == 0:
			h.recycleID.Store(lrid)
		case rid != lrid:
			reportStateInvariant(h)
			continue
		}
		if dst.admission.dropHandle(h) {
			continue
		}
		h.container.Store(dst)
		dst.elements[newSize] = h
		newSize++
	}
	q.counters.handoffDepth.Add(-int64(end - start))
	head.readIndex = uint32(end)

	if head.readIndex == uint32(head.capacity()) {
		if nxt := head.next.Load(); nxt != nil {
			q.sharedCap.Add(int64(q.linkCapacity))
			q.head = nxt
		}
	}

	if newSize == dst.size {
		return false
	}
	dst.size = newSize
	return true
}

// reclaimAndUnlink refunds every Link still owned by this queue back to
// the home Stack's shared-capacity budget. Called once a dead producer's
// queue has been fully drained and is about to be unlinked from the
// Stack's chain.
func (q *handoffQueue[T]) reclaimAndUnlink() {
	l := q.head
	q.head = nil
	var reclaimed int64
	var abandoned int64
	for l != nil {
		reclaimed += int64(q.linkCapacity)
		abandoned += int64(l.writeCount.Load()) - int64(l.readIndex)
		next := l.next.Load()
		l.next.Store(nil)
		l = next
	}
	if abandoned > 0 {
		q.counters.handoffDepth.Add(-abandoned)
	}
	if reclaimed > 0 {
		q.sharedCap.Add(reclaimed)
	}
}
