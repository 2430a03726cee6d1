// control/poolconfig.go
// Author: momentics <momentics@gmail.com>
//
// Bridges ConfigStore into pool.Options, making ConfigStore the dynamic
// override store for a running Pool's tunables.

package control

import "github.com/kestrel-hpc/turnstile/pool"

// Config keys ApplyPoolOptions understands, named after the tunables in
// pool.Options / spec.md section 6's table.
const (
	KeyMaxCapacityPerThread      = "max_capacity_per_thread"
	KeyMaxSharedCapacityFactor   = "max_shared_capacity_factor"
	KeyInterval                  = "interval"
	KeyMaxDelayedQueuesPerThread = "max_delayed_queues_per_thread"
	KeyDelayedQueueInterval      = "delayed_queue_interval"
	KeyLinkCapacity              = "link_capacity"
)

// ApplyPoolOptions overlays whichever pool option keys are present in
// cs's snapshot onto base and pushes the result into p via
// Pool.SetOptions. A key absent from the snapshot keeps base's value,
// so a partial SetConfig call only overrides what it names. Returns the
// Options actually applied.
func ApplyPoolOptions[T any](p *pool.Pool[T], cs *ConfigStore, base pool.Options) pool.Options {
	snap := cs.GetSnapshot()
	o := base
	if v, ok := snap[KeyMaxCapacityPerThread].(int); ok {
		o.MaxCapacityPerThread = v
	}
	if v, ok := snap[KeyMaxSharedCapacityFactor].(int); ok {
		o.MaxSharedCapacityFactor = v
	}
	if v, ok := snap[KeyInterval].(int); ok {
		o.Interval = v
	}
	if v, ok := snap[KeyMaxDelayedQueuesPerThread].(int); ok {
		o.MaxDelayedQueuesPerThread = v
	}
	if v, ok := snap[KeyDelayedQueueInterval].(int); ok {
		o.DelayedQueueInterval = v
	}
	if v, ok := snap[KeyLinkCapacity].(int); ok {
		o.LinkCapacity = v
	}
	p.SetOptions(o)
	return o
}

// WatchPoolOptions applies cs's current snapshot to p immediately, then
// re-applies it on every subsequent cs.SetConfig-triggered reload. base
// supplies values for any key the store never sets.
func WatchPoolOptions[T any](p *pool.Pool[T], cs *ConfigStore, base pool.Options) {
	ApplyPoolOptions(p, cs, base)
	cs.OnReload(func() {
		ApplyPoolOptions(p, cs, base)
	})
}
