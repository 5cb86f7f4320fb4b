package x11vnc

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/vncserve/internal/errors"
)

// resetGlobals clears the process-wide engine state between tests. The
// shadow mechanism makes handles restore it, but failed expectations in one
// test must not leak into the next.
func resetGlobals() {
	ApplyGlobalState(GlobalState{})
}

func TestLifecycle_ConfiguredScenario(t *testing.T) {
	resetGlobals()

	srv := New()
	assert.Equal(t, StateCreated, srv.LifecycleState())

	cfg := DefaultConfig()
	cfg.Port = 5901
	cfg.ViewOnly = true
	cfg.Shared = true
	cfg.Once = true
	require.NoError(t, srv.Configure(&cfg))
	assert.Equal(t, StateConfigured, srv.LifecycleState())

	require.NoError(t, srv.StartConfigured())
	assert.True(t, srv.IsRunning())

	port, err := srv.Port()
	require.NoError(t, err)
	assert.Equal(t, 5901, port)

	srv.Stop()
	assert.False(t, srv.IsRunning())

	srv.Close()
}

func TestStartConfigured_WithoutConfigure(t *testing.T) {
	resetGlobals()

	srv := New()
	defer srv.Close()

	err := srv.StartConfigured()
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestStart_EmptyArgsSynthesizesDefaultVector(t *testing.T) {
	resetGlobals()

	fake := newRecordingEngine()
	srv := New(WithEngine(fake))
	defer srv.Close()

	require.NoError(t, srv.Start(nil))

	done := make(chan struct{})
	go func() {
		_, _ = srv.Run()
		close(done)
	}()

	require.Eventually(t, fake.started, time.Second, 5*time.Millisecond)
	srv.Stop()
	<-done

	require.Len(t, fake.mainArgs, 1)
	assert.Equal(t, []string{ProgramName}, fake.mainArgs[0])
}

func TestStart_CopiesCallerArgs(t *testing.T) {
	resetGlobals()

	fake := newRecordingEngine()
	srv := New(WithEngine(fake))
	defer srv.Close()

	args := []string{"x11vnc", "-display", ":0"}
	require.NoError(t, srv.Start(args))
	args[2] = ":9" // mutating caller memory must not reach the handle

	done := make(chan struct{})
	go func() {
		_, _ = srv.Run()
		close(done)
	}()
	require.Eventually(t, fake.started, time.Second, 5*time.Millisecond)
	srv.Stop()
	<-done

	require.Len(t, fake.mainArgs, 1)
	assert.Equal(t, []string{"x11vnc", "-display", ":0"}, fake.mainArgs[0])
}

func TestStart_WhileRunning(t *testing.T) {
	resetGlobals()

	srv := New()
	defer srv.Close()

	require.NoError(t, srv.Start(nil))

	err := srv.Start(nil)
	require.Error(t, err)
	assert.True(t, errors.IsAlreadyRunning(err))

	cfg := DefaultConfig()
	err = srv.Configure(&cfg)
	require.Error(t, err)
	assert.True(t, errors.IsAlreadyRunning(err))

	err = srv.StartConfigured()
	require.Error(t, err)
	// Not configured wins only when no configuration is stored; here the
	// handle was started raw, so the running check applies.
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestRestart_AfterStop(t *testing.T) {
	resetGlobals()

	srv := New()
	defer srv.Close()

	require.NoError(t, srv.Start(nil))
	srv.Stop()
	assert.False(t, srv.IsRunning())

	require.NoError(t, srv.Start(nil))
	assert.True(t, srv.IsRunning())
	srv.Stop()
}

// A stop issued while no run loop is in flight must not leak into a later
// start/run cycle: after the restart, Run has to block until its own stop.
func TestRun_BlocksAfterStopWithoutRun(t *testing.T) {
	resetGlobals()

	fake := newRecordingEngine()
	srv := New(WithEngine(fake))
	defer srv.Close()

	require.NoError(t, srv.Start(nil))
	srv.Stop()
	require.NoError(t, srv.Start(nil))

	codeCh := make(chan int, 1)
	go func() {
		code, err := srv.Run()
		require.NoError(t, err)
		codeCh <- code
	}()

	require.Eventually(t, fake.started, time.Second, 5*time.Millisecond)

	select {
	case <-codeCh:
		t.Fatal("run returned without a stop")
	case <-time.After(50 * time.Millisecond):
	}
	assert.True(t, srv.IsRunning())

	srv.Stop()

	select {
	case code := <-codeCh:
		assert.Equal(t, 0, code)
	case <-time.After(time.Second):
		t.Fatal("run did not return after stop")
	}
	assert.Equal(t, StateStopped, srv.LifecycleState())
}

func TestStop_Idempotent(t *testing.T) {
	resetGlobals()

	srv := New()
	defer srv.Close()

	// Never started: both calls are no-ops.
	srv.Stop()
	srv.Stop()
	assert.Equal(t, StateCreated, srv.LifecycleState())

	require.NoError(t, srv.Start(nil))
	srv.Stop()
	srv.Stop()
	assert.Equal(t, StateStopped, srv.LifecycleState())
}

func TestQueries_NotRunning(t *testing.T) {
	resetGlobals()

	srv := New()
	defer srv.Close()

	_, err := srv.Port()
	assert.True(t, errors.IsNotRunning(err))

	_, err = srv.ClientCount()
	assert.True(t, errors.IsNotRunning(err))

	_, err = srv.AdvancedStats()
	assert.True(t, errors.IsNotRunning(err))

	_, err = srv.Clients()
	assert.True(t, errors.IsNotRunning(err))

	assert.False(t, srv.IsRunning())
}

func TestPort_FallsBackToProtocolDefault(t *testing.T) {
	resetGlobals()

	srv := New()
	defer srv.Close()

	require.NoError(t, srv.Start(nil)) // raw start publishes no port

	port, err := srv.Port()
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, port)
	srv.Stop()
}

func TestConfigRoundTrip(t *testing.T) {
	resetGlobals()

	srv := New()
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.Display = ":0"
	cfg.Password = "secret"
	require.NoError(t, srv.Configure(&cfg))

	got, err := srv.Config()
	require.NoError(t, err)
	assert.Equal(t, cfg, got)

	// The retrieved copy is distinct storage.
	got.Display = ":9"
	again, err := srv.Config()
	require.NoError(t, err)
	assert.Equal(t, ":0", again.Display)

	// Mutating the caller's struct after Configure must not reach the handle.
	cfg.Password = "changed"
	again, err = srv.Config()
	require.NoError(t, err)
	assert.Equal(t, "secret", again.Password)
}

func TestConfig_NotConfigured(t *testing.T) {
	resetGlobals()

	srv := New()
	defer srv.Close()

	_, err := srv.Config()
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestUpdateConfig_RestartNeeded(t *testing.T) {
	resetGlobals()

	srv := New()
	defer srv.Close()

	cfg := DefaultConfig()
	require.NoError(t, srv.Configure(&cfg))

	hot := cfg
	hot.ViewOnly = true
	restart, err := srv.UpdateConfig(&hot)
	require.NoError(t, err)
	assert.False(t, restart)

	cold := hot
	cold.Port = 5999
	restart, err = srv.UpdateConfig(&cold)
	require.NoError(t, err)
	assert.True(t, restart)

	// The store is overwritten regardless of restart-need.
	got, err := srv.Config()
	require.NoError(t, err)
	assert.Equal(t, cold, got)
}

func TestUpdateConfig_HotPushWhileRunning(t *testing.T) {
	resetGlobals()

	srv := New()
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.AllowHosts = "10.0.0.1"
	require.NoError(t, srv.Configure(&cfg))
	require.NoError(t, srv.StartConfigured())

	updated := cfg
	updated.ViewOnly = true
	updated.Shared = true
	updated.AllowHosts = "10.0.0.2"
	restart, err := srv.UpdateConfig(&updated)
	require.NoError(t, err)
	assert.False(t, restart)

	g := GlobalSnapshot()
	assert.True(t, g.ViewOnly)
	assert.True(t, g.Shared)
	assert.Equal(t, "10.0.0.2", g.AllowHosts)

	srv.Stop()
}

func TestUpdateConfig_BeforeConfigure(t *testing.T) {
	resetGlobals()

	srv := New()
	defer srv.Close()

	cfg := DefaultConfig()
	_, err := srv.UpdateConfig(&cfg)
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestRun_RequiresRunning(t *testing.T) {
	resetGlobals()

	srv := New()
	defer srv.Close()

	_, err := srv.Run()
	require.Error(t, err)
	assert.True(t, errors.IsNotRunning(err))
}

func TestRun_ReturnsEngineResult(t *testing.T) {
	resetGlobals()

	fake := newRecordingEngine()
	fake.exitCode = 3
	srv := New(WithEngine(fake))
	defer srv.Close()

	require.NoError(t, srv.Start(nil))

	codeCh := make(chan int, 1)
	go func() {
		code, err := srv.Run()
		require.NoError(t, err)
		codeCh <- code
	}()

	require.Eventually(t, fake.started, time.Second, 5*time.Millisecond)
	assert.True(t, srv.IsRunning())

	srv.Stop()

	select {
	case code := <-codeCh:
		assert.Equal(t, 3, code)
	case <-time.After(time.Second):
		t.Fatal("run did not return after stop")
	}
	assert.Equal(t, StateStopped, srv.LifecycleState())
}

func TestShadow_RestoredOnClose(t *testing.T) {
	pre := GlobalState{
		ClientCount:  2,
		ResolvedPort: 5800,
		Display:      ":7",
		AuthFile:     "/pre/.Xauthority",
	}
	ApplyGlobalState(pre)

	srv := New()

	cfg := DefaultConfig()
	cfg.Port = 5901
	cfg.Display = ":0"
	cfg.AuthFile = "/new/.Xauthority"
	require.NoError(t, srv.Configure(&cfg))
	require.NoError(t, srv.StartConfigured())

	// The configured start overwrote the globals.
	g := GlobalSnapshot()
	require.Equal(t, 5901, g.ResolvedPort)
	require.Equal(t, ":0", g.Display)

	srv.Stop()
	srv.Close()

	g = GlobalSnapshot()
	assert.Equal(t, pre.ClientCount, g.ClientCount)
	assert.Equal(t, pre.ResolvedPort, g.ResolvedPort)
	assert.Equal(t, pre.Display, g.Display)
	assert.Equal(t, pre.AuthFile, g.AuthFile)

	resetGlobals()
}

func TestShadow_CapturedOnceAcrossCycles(t *testing.T) {
	pre := GlobalState{ResolvedPort: 5800, Display: ":7"}
	ApplyGlobalState(pre)

	srv := New()

	for i := 0; i < 3; i++ {
		cfg := DefaultConfig()
		cfg.Port = 5900 + i
		cfg.Display = ":0"
		require.NoError(t, srv.Configure(&cfg))
		require.NoError(t, srv.StartConfigured())
		srv.Stop()
	}

	srv.Close()

	g := GlobalSnapshot()
	assert.Equal(t, 5800, g.ResolvedPort)
	assert.Equal(t, ":7", g.Display)

	resetGlobals()
}

func TestSetPerformanceMonitoring(t *testing.T) {
	resetGlobals()

	srv := New()
	defer srv.Close()

	require.NoError(t, srv.SetPerformanceMonitoring(true, 0.8))
	enabled, threshold := srv.PerformanceMonitoring()
	assert.True(t, enabled)
	assert.Equal(t, 0.8, threshold)

	err := srv.SetPerformanceMonitoring(true, 1.5)
	assert.True(t, errors.IsInvalidArgument(err))

	err = srv.SetPerformanceMonitoring(true, -0.1)
	assert.True(t, errors.IsInvalidArgument(err))
}

// recordingEngine is a minimal local engine double; the full-featured fake
// lives in the enginetest package, which cannot be imported here without a
// cycle.
type recordingEngine struct {
	*idleEngine

	recMu    sync.Mutex
	mainArgs [][]string
	exitCode int
	active   bool
}

func newRecordingEngine() *recordingEngine {
	return &recordingEngine{idleEngine: newIdleEngine()}
}

func (e *recordingEngine) Main(args []string) int {
	e.recMu.Lock()
	e.mainArgs = append(e.mainArgs, args)
	e.active = true
	e.recMu.Unlock()

	e.idleEngine.Main(args)

	e.recMu.Lock()
	e.active = false
	e.recMu.Unlock()
	return e.exitCode
}

func (e *recordingEngine) started() bool {
	e.recMu.Lock()
	defer e.recMu.Unlock()
	return e.active
}
