package pool

import (
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/kestrel-hpc/turnstile/internal/concurrency"
)

// logger receives diagnostics for the two misuse conditions the package
// detects at runtime (DoubleRecycle, StateInvariant). Both are
// programming errors in the caller; there is no return path for them
// since they surface from deep inside push/transfer, so they are logged
// with a stack capture instead.
var logger = log.Default()

// SetLogger overrides the package-level diagnostic logger. Not safe to
// call concurrently with Get/Recycle.
func SetLogger(l *log.Logger) {
	if l != nil {
		logger = l
	}
}

const diagnosticRingSize = 64

// DiagnosticEvent is one recorded DoubleRecycle or StateInvariant
// occurrence, kept for later inspection via Pool.RecentDiagnostics — the
// source a control.DebugProbes hook is expected to read from.
type DiagnosticEvent struct {
	Kind  string
	Stack []byte
	At    time.Time
}

// diagnosticLog wraps a concurrency.RingBuffer with a mutex.
// RingBuffer's own Enqueue/Dequeue are only safe for one producer and
// one consumer (see internal/concurrency/ring.go), but DoubleRecycle and
// StateInvariant can each be reported concurrently by any number of
// misbehaving callers at once, so this low-frequency diagnostic sink
// trades the ring's lock-free design for a mutex rather than reach for
// a different structure.
type diagnosticLog struct {
	mu   sync.Mutex
	ring *concurrency.RingBuffer[DiagnosticEvent]
}

func newDiagnosticLog() *diagnosticLog {
	return &diagnosticLog{ring: concurrency.NewRingBuffer[DiagnosticEvent](diagnosticRingSize)}
}

// record appends ev, evicting the oldest entry first if the ring is
// already at capacity.
func (d *diagnosticLog) record(kind string, stack []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ev := DiagnosticEvent{Kind: kind, Stack: stack, At: time.Now()}
	if !d.ring.Enqueue(ev) {
		d.ring.Dequeue()
		d.ring.Enqueue(ev)
	}
}

// recent returns every event currently retained, oldest first, leaving
// the ring's contents unchanged.
func (d *diagnosticLog) recent() []DiagnosticEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]DiagnosticEvent, 0, d.ring.Len())
	for {
		ev, ok := d.ring.Dequeue()
		if !ok {
			break
		}
		out = append(out, ev)
	}
	for _, ev := range out {
		d.ring.Enqueue(ev)
	}
	return out
}

func reportDoubleRecycle[T any](h *Handle[T]) {
	stack := captureStack()
	logger.Printf("pool: %v\n%s", ErrDoubleRecycle, stack)
	if h.home != nil {
		h.home.pool.diagnostics.record("double_recycle", stack)
	}
}

func reportStateInvariant[T any](h *Handle[T]) {
	stack := captureStack()
	if h.home != nil {
		h.home.pool.counters.stateInvariants.Add(1)
		h.home.pool.diagnostics.record("state_invariant", stack)
	}
	logger.Printf("pool: %v\n%s", errStateInvariant, stack)
}

func captureStack() []byte {
	buf := make([]byte, 4096)
	for {
		n := runtime.Stack(buf, false)
		if n < len(buf) {
			return buf[:n]
		}
		buf = make([]byte, len(buf)*2)
	}
}
