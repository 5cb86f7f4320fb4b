package x11vnc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// statsEngine serves scripted statistics; everything else is the idle
// stand-in.
type statsEngine struct {
	*idleEngine
	stats AdvancedStats
	err   error
	calls int
}

func (e *statsEngine) Stats() (AdvancedStats, error) {
	e.calls++
	return e.stats, e.err
}

func TestAdvancedStats_CacheWindow(t *testing.T) {
	resetGlobals()

	eng := &statsEngine{
		idleEngine: newIdleEngine(),
		stats:      AdvancedStats{FPSCurrent: 30, TotalFramesSent: 100},
	}
	srv := New(WithEngine(eng))
	defer srv.Close()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	srv.now = func() time.Time { return clock }

	require.NoError(t, srv.Start(nil))

	got, err := srv.AdvancedStats()
	require.NoError(t, err)
	assert.Equal(t, float64(30), got.FPSCurrent)
	assert.Equal(t, 1, eng.calls)

	// Within the refresh interval the cached value is served even though
	// the engine's numbers moved on.
	eng.stats.FPSCurrent = 60
	clock = base.Add(500 * time.Millisecond)
	got, err = srv.AdvancedStats()
	require.NoError(t, err)
	assert.Equal(t, float64(30), got.FPSCurrent)
	assert.Equal(t, 1, eng.calls)

	// Past the interval the cache is recomputed.
	clock = base.Add(1500 * time.Millisecond)
	got, err = srv.AdvancedStats()
	require.NoError(t, err)
	assert.Equal(t, float64(60), got.FPSCurrent)
	assert.Equal(t, 2, eng.calls)

	srv.Stop()
}

func TestAdvancedStats_FacadeDerivedFields(t *testing.T) {
	resetGlobals()

	eng := &statsEngine{idleEngine: newIdleEngine()}
	srv := New(WithEngine(eng))
	defer srv.Close()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	srv.now = func() time.Time { return clock }

	require.NoError(t, srv.Start(nil))
	SetGlobalClientCount(3)

	clock = base.Add(42 * time.Second)
	got, err := srv.AdvancedStats()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), got.UptimeSeconds)
	assert.Equal(t, 3, got.CurrentClients)

	srv.Stop()
}

func TestAdvancedStats_UnsupportedEngineFallsBack(t *testing.T) {
	resetGlobals()

	// The idle stand-in reports unsupported statistics; the query still
	// succeeds with facade-derived values.
	srv := New()
	defer srv.Close()

	require.NoError(t, srv.Start(nil))
	SetGlobalClientCount(2)

	got, err := srv.AdvancedStats()
	require.NoError(t, err)
	assert.Equal(t, 2, got.CurrentClients)
	assert.Zero(t, got.FPSCurrent)
	assert.Zero(t, got.TotalFramesSent)

	srv.Stop()
}

func TestAdvancedStats_CacheResetOnRestart(t *testing.T) {
	resetGlobals()

	eng := &statsEngine{
		idleEngine: newIdleEngine(),
		stats:      AdvancedStats{TotalFramesSent: 10},
	}
	srv := New(WithEngine(eng))
	defer srv.Close()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	srv.now = func() time.Time { return clock }

	require.NoError(t, srv.Start(nil))
	_, err := srv.AdvancedStats()
	require.NoError(t, err)
	srv.Stop()

	// A new running cycle must not serve the previous cycle's cache, even
	// within the refresh interval.
	eng.stats.TotalFramesSent = 20
	clock = base.Add(100 * time.Millisecond)
	require.NoError(t, srv.Start(nil))

	got, err := srv.AdvancedStats()
	require.NoError(t, err)
	assert.Equal(t, uint64(20), got.TotalFramesSent)

	srv.Stop()
}

func TestClientCount_ReadsProcessState(t *testing.T) {
	resetGlobals()

	srv := New()
	defer srv.Close()

	require.NoError(t, srv.Start(nil))

	SetGlobalClientCount(5)
	n, err := srv.ClientCount()
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	srv.Stop()
}
