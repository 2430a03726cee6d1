package pool

import (
	"sync"
	"sync/atomic"
	"weak"
)

const initialStackCapacity = 256

// stack is one owner's free list for one Pool: the home Stack for every
// Handle it ever mints. Its element array, size and scavenge cursor are
// touched only by the owning Local's goroutine; headQueue and sharedCap
// are the fields foreign producers reach across into, so they are the
// ones that need atomic access.
type stack[T any] struct {
	owner *Local
	pool  *Pool[T]
	opts  Options

	elements []*Handle[T]
	size     int

	admission admission[T]

	headQueue atomic.Pointer[handoffQueue[T]]
	mu        sync.Mutex

	sharedCap atomic.Int64

	// cursor/prev carry scavengeSome's position across calls so a Pop
	// that finds nothing doesn't always restart the queue chain from the
	// head; both belong to the owner goroutine only.
	cursor *handoffQueue[T]
	prev   *handoffQueue[T]
}

func newStack[T any](owner *Local, p *Pool[T]) *stack[T] {
	o := p.opts.Load()
	cap := min(o.MaxCapacityPerThread, initialStackCapacity)
	s := &stack[T]{
		owner:     owner,
		pool:      p,
		opts:      *o,
		elements:  make([]*Handle[T], cap),
		admission: newAdmission[T](o.Interval, &p.counters),
	}
	s.sharedCap.Store(int64(o.sharedCapacityBudget()))
	return s
}

// pop removes and returns the top Handle, scavenging inbound
// HandoffQueues first if the local free list is empty. Returns nil if
// nothing is available anywhere.
func (s *stack[T]) pop() *Handle[T] {
	if s.size == 0 {
		if !s.scavenge() || s.size == 0 {
			return nil
		}
	}
	s.size--
	h := s.elements[s.size]
	s.elements[s.size] = nil
	if h.lastRecycledID.Load() != h.recycleID.Load() {
		reportStateInvariant(h)
		return s.pop()
	}
	h.recycleID.Store(0)
	h.lastRecycledID.Store(0)
	return h
}

// push routes a returning Handle: directly onto this Stack's own free
// list if l is the owning Local, or through a HandoffQueue otherwise.
func (s *stack[T]) push(l *Local, h *Handle[T]) {
	if l == s.owner {
		s.pushNow(h)
		return
	}
	s.pushLater(l, h)
}

func (s *stack[T]) pushNow(h *Handle[T]) {
	if h.recycleID.Load() != 0 || !h.lastRecycledID.CompareAndSwap(0, ownThreadID) {
		reportDoubleRecycle(h)
		return
	}
	h.recycleID.Store(ownThreadID)

	if s.opts.MaxCapacityPerThread == 0 || s.size == s.opts.MaxCapacityPerThread {
		return
	}
	if s.admission.dropHandle(h) {
		return
	}
	if s.size == len(s.elements) {
		s.grow(s.size + 1)
	}
	s.elements[s.size] = h
	s.size++
}

func (s *stack[T]) pushLater(l *Local, h *Handle[T]) {
	if s.opts.MaxDelayedQueuesPerThread == 0 {
		return
	}
	ps := localState(l, s.pool)
	wp := weak.Make(s)

	ps.mu.Lock()
	defer ps.mu.Unlock()

	if q, ok := ps.delayed[wp]; ok {
		if q == nil {
			return
		}
		q.enqueue(h)
		return
	}
	if len(ps.delayed) >= s.opts.MaxDelayedQueuesPerThread {
		ps.delayed[wp] = nil
		return
	}
	nq := newHandoffQueue(l, s)
	if nq == nil {
		return
	}
	s.linkQueue(nq)
	ps.delayed[wp] = nq
	nq.enqueue(h)
}

// linkQueue installs nq at the head of the Stack's inbound queue chain.
// The only mutation guarded by mu; scavenge reads the chain lock-free.
func (s *stack[T]) linkQueue(nq *handoffQueue[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	nq.next.Store(s.headQueue.Load())
	s.headQueue.Store(nq)
}

// grow doubles the element array under the configured cap until it can
// hold at least expected entries.
func (s *stack[T]) grow(expected int) {
	newCap := len(s.elements)
	if newCap == 0 {
		newCap = 1
	}
	for newCap < expected && newCap < s.opts.MaxCapacityPerThread {
		newCap <<= 1
	}
	if newCap > s.opts.MaxCapacityPerThread {
		newCap = s.opts.MaxCapacityPerThread
	}
	if newCap == len(s.elements) {
		return
	}
	grown := make([]*Handle[T], newCap)
	copy(grown, s.elements[:s.size])
	s.elements = grown
}

// scavenge tries every inbound queue once via scavengeSome, then, if
// nothing landed, resets the cursor to the chain head for next time.
func (s *stack[T]) scavenge() bool {
	if s.scavengeSome() {
		return true
	}
	s.prev = nil
	s.cursor = s.headQueue.Load()
	return false
}

// scavengeSome walks the inbound queue chain starting from the saved
// cursor, transferring from the first queue that has anything. A queue
// whose producer has died is drained and then unlinked only when prev
// is set, i.e. when a queue with a live producer precedes it on this
// walk. The first queue in the chain is therefore never unlinked, and
// neither is a dead queue reached with no live predecessor (one behind
// only dead queues, or one resumed from a cursor whose saved prev is
// nil), mirroring Recycler.java's scavengeSome.
func (s *stack[T]) scavengeSome() bool {
	cursor := s.cursor
	prev := s.prev
	if cursor == nil {
		cursor = s.headQueue.Load()
		if cursor == nil {
			return false
		}
		prev = nil
	}

	success := false
	for cursor != nil {
		if cursor.transfer(s) {
			success = true
			break
		}

		next := cursor.next.Load()
		if cursor.producer.Value() == nil {
			for cursor.hasFinalData() {
				if cursor.transfer(s) {
					success = true
				} else {
					break
				}
			}
			if prev != nil {
				cursor.reclaimAndUnlink()
				prev.next.Store(next)
				cursor = next
				continue
			}
		} else {
			prev = cursor
		}
		cursor = next
	}

	s.prev = prev
	s.cursor = cursor
	return success
}
