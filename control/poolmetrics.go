// control/poolmetrics.go
// Author: momentics <momentics@gmail.com>
//
// Bridges pool.Pool snapshots into MetricsRegistry and keeps a bounded
// history of recent snapshots for inspection via History.

package control

import (
	"sync"

	"github.com/eapache/queue"
	"github.com/kestrel-hpc/turnstile/pool"
)

// PoolSample is one recorded PoolStats snapshot.
type PoolSample struct {
	Name  string
	Stats pool.PoolStats
}

// PoolRecorder takes the pool.PoolStats snapshots its caller passes to
// Record and feeds both a MetricsRegistry (latest value per key) and a
// bounded ring of recent samples (for DumpState-style history
// inspection), backed by an eapache/queue FIFO. It does not sample a
// Pool on its own.
type PoolRecorder struct {
	mu       sync.Mutex
	name     string
	registry *MetricsRegistry
	history  *queue.Queue
	capacity int
}

// NewPoolRecorder builds a recorder that keeps at most capacity recent
// samples under name.
func NewPoolRecorder(registry *MetricsRegistry, name string, capacity int) *PoolRecorder {
	if capacity <= 0 {
		capacity = 32
	}
	return &PoolRecorder{
		name:     name,
		registry: registry,
		history:  queue.New(),
		capacity: capacity,
	}
}

// Record snapshots stats into the registry and appends it to the bounded
// history ring, evicting the oldest sample once capacity is exceeded.
func (r *PoolRecorder) Record(stats pool.PoolStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.registry.Set(r.name+".allocated", stats.Allocated)
	r.registry.Set(r.name+".reused", stats.Reused)
	r.registry.Set(r.name+".recycled", stats.Recycled)

	r.history.Add(PoolSample{Name: r.name, Stats: stats})
	for r.history.Length() > r.capacity {
		r.history.Remove()
	}
}

// History returns the currently retained samples, oldest first.
func (r *PoolRecorder) History() []PoolSample {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]PoolSample, r.history.Length())
	for i := range out {
		out[i] = r.history.Get(i).(PoolSample)
	}
	return out
}
