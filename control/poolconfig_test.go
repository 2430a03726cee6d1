package control

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kestrel-hpc/turnstile/pool"
)

type widget struct {
	h *pool.Handle[*widget]
}

// TestApplyPoolOptionsOverlaysSnapshot checks that only the keys present
// in the ConfigStore's snapshot override base, and that the result is
// actually pushed into the Pool via SetOptions.
func TestApplyPoolOptionsOverlaysSnapshot(t *testing.T) {
	p := pool.New(func(h *pool.Handle[*widget]) *widget { return &widget{h: h} })
	base := pool.DefaultOptions()

	cs := NewConfigStore()
	cs.SetConfig(map[string]any{
		KeyMaxCapacityPerThread: 128,
		KeyInterval:             0,
	})

	applied := ApplyPoolOptions(p, cs, base)
	require.Equal(t, 128, applied.MaxCapacityPerThread)
	require.Equal(t, 0, applied.Interval)
	require.Equal(t, base.LinkCapacity, applied.LinkCapacity)
	require.Equal(t, 128, p.Options().MaxCapacityPerThread)
}

// TestWatchPoolOptionsReappliesOnReload checks that a later SetConfig
// call re-overlays onto the Pool through the registered OnReload hook.
func TestWatchPoolOptionsReappliesOnReload(t *testing.T) {
	p := pool.New(func(h *pool.Handle[*widget]) *widget { return &widget{h: h} })
	cs := NewConfigStore()

	WatchPoolOptions(p, cs, pool.DefaultOptions())
	require.Equal(t, pool.DefaultOptions().MaxCapacityPerThread, p.Options().MaxCapacityPerThread)

	cs.SetConfig(map[string]any{KeyMaxCapacityPerThread: 64})

	// dispatchReload fires listeners on their own goroutines (see
	// ConfigStore.dispatchReload), so poll rather than assume ordering
	// against the reload this SetConfig call triggers.
	require.Eventually(t, func() bool {
		return p.Options().MaxCapacityPerThread == 64
	}, time.Second, time.Millisecond)
}
