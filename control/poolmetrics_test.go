package control

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kestrel-hpc/turnstile/pool"
)

// TestPoolRecorderRecordsIntoRegistryAndHistory checks that Record both
// updates the latest-value registry and appends a bounded history entry.
func TestPoolRecorderRecordsIntoRegistryAndHistory(t *testing.T) {
	registry := NewMetricsRegistry()
	rec := NewPoolRecorder(registry, "widgets", 2)

	rec.Record(pool.PoolStats{Allocated: 1, Reused: 0, Recycled: 0})
	rec.Record(pool.PoolStats{Allocated: 2, Reused: 1, Recycled: 1})
	rec.Record(pool.PoolStats{Allocated: 3, Reused: 2, Recycled: 2})

	snap := registry.GetSnapshot()
	require.Equal(t, uint64(3), snap["widgets.allocated"])

	history := rec.History()
	require.Len(t, history, 2)
	require.Equal(t, uint64(2), history[0].Stats.Allocated)
	require.Equal(t, uint64(3), history[1].Stats.Allocated)
}

// TestDebugProbesDumpState checks that RegisterProbe's functions are
// invoked fresh on every DumpState call.
func TestDebugProbesDumpState(t *testing.T) {
	dp := NewDebugProbes()
	calls := 0
	dp.RegisterProbe("counter", func() any {
		calls++
		return calls
	})

	first := dp.DumpState()
	second := dp.DumpState()
	require.Equal(t, 1, first["counter"])
	require.Equal(t, 2, second["counter"])
}

// TestRegisterPlatformProbesAddsCPUProbe checks the platform-specific
// probe registers under the same key on every build.
func TestRegisterPlatformProbesAddsCPUProbe(t *testing.T) {
	dp := NewDebugProbes()
	RegisterPlatformProbes(dp)
	state := dp.DumpState()
	_, ok := state["platform.cpus"]
	require.True(t, ok)
}
