package x11vnc

import (
	"sync"
	"time"

	"git.home.luguber.info/inful/vncserve/internal/errors"
)

// State is the lifecycle state of a Server handle.
type State string

const (
	StateCreated    State = "created"
	StateConfigured State = "configured"
	StateRunning    State = "running"
	StateStopped    State = "stopped"
)

// Server is a handle to one logical instance of the wrapped engine. A single
// mutex serializes every operation; only Run releases it while the engine's
// blocking entry point executes.
//
// The wrapped engine keeps process-wide state, so only one handle per
// process should be Running at a time. The facade does not enforce that
// across handles; see the package documentation.
type Server struct {
	mu     sync.Mutex
	state  State
	closed bool

	engine Engine
	shadow globalShadow

	// Owned storage. args is set iff the handle has passed through a start;
	// config is set iff Configure has been called.
	args   []string
	config *Config

	sinks eventSinks

	shutdownRequested bool
	runDone           chan struct{} // non-nil while a Run is in flight
	startTime         time.Time

	// Advisory tuning, handed to the engine but not enforced here.
	perfMonitoring bool
	perfThreshold  float64
	bandwidthKbps  int

	// Time-boxed statistics cache (see stats.go).
	statsCache      AdvancedStats
	statsFresh      bool
	lastStatsUpdate time.Time
	now             func() time.Time
}

// Option configures a Server at creation time.
type Option func(*Server)

// WithEngine binds an engine implementation to the handle. Without it an
// idle stand-in is used: Run blocks until Stop and advanced operations
// report unsupported.
func WithEngine(e Engine) Option {
	return func(s *Server) {
		if e != nil {
			s.engine = e
		}
	}
}

// New creates a server handle in the created state and captures the shadow
// of the process-wide engine state, to be restored at Close.
func New(opts ...Option) *Server {
	s := &Server{
		state:  StateCreated,
		engine: newIdleEngine(),
		shadow: captureGlobalShadow(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start transitions the handle to running with a copy of the given argument
// vector. An empty or nil vector is replaced by the single-element default
// naming the program. The stored configuration, if any, is not consulted.
func (s *Server) Start(args []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRunning {
		return errors.AlreadyRunning("start")
	}

	if len(args) == 0 {
		s.args = []string{ProgramName}
	} else {
		s.args = cloneStrings(args)
	}

	s.startRunningLocked()
	return nil
}

// Configure stores an independent copy of the configuration. The handle must
// not be running. Following the original library, the emitted informational
// event reuses the started kind with a fixed message.
func (s *Server) Configure(cfg *Config) error {
	if cfg == nil {
		return errors.NilArgument("config")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRunning {
		return errors.AlreadyRunning("configure")
	}

	s.config = cfg.Clone()
	s.state = StateConfigured

	s.emitLocked(EventStarted, "Server configured")
	return nil
}

// StartConfigured starts the server from the stored configuration: the
// configuration is translated to an argument vector, configuration-derived
// values are applied to the engine's process-wide state, and the handle
// transitions to running.
func (s *Server) StartConfigured() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config == nil {
		return errors.InvalidArgument("server not configured")
	}
	if s.state == StateRunning {
		return errors.AlreadyRunning("start_configured")
	}

	s.args = s.config.Args()
	applyConfigGlobals(s.config)

	s.startRunningLocked()
	s.emitLocked(EventStarted, "Server started")
	return nil
}

// startRunningLocked performs the shared start transition. Callers must hold
// s.mu and have args in place.
func (s *Server) startRunningLocked() {
	s.shutdownRequested = false
	s.state = StateRunning
	s.startTime = s.now()
	s.statsFresh = false
}

// Config returns a copy of the stored configuration.
func (s *Server) Config() (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config == nil {
		return Config{}, errors.InvalidArgument("server not configured")
	}
	return *s.config, nil
}

// UpdateConfig replaces the stored configuration and reports whether the
// change requires a restart (display, port, localhost-only or IPv6
// changed). The configuration is always overwritten. If the server is
// running, the hot-reloadable subset (view-only, shared, allow-list,
// display, auth file) is pushed to the engine's mutable state immediately.
func (s *Server) UpdateConfig(cfg *Config) (restartNeeded bool, err error) {
	if cfg == nil {
		return false, errors.NilArgument("config")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config == nil {
		return false, errors.InvalidArgument("server not configured")
	}

	restartNeeded = RestartRequired(s.config, cfg)
	s.config = cfg.Clone()

	if s.state == StateRunning {
		applyHotConfigGlobals(s.config)
	}
	return restartNeeded, nil
}

// Run hands control to the engine's blocking entry point with the current
// argument vector and does not return until that entry point does. The
// handle's lock is released for the duration. On return the handle is
// stopped and the engine's result code is returned.
func (s *Server) Run() (int, error) {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return 0, errors.NotRunning("run")
	}
	if s.runDone != nil {
		s.mu.Unlock()
		return 0, errors.AlreadyRunning("run")
	}

	done := make(chan struct{})
	s.runDone = done
	args := cloneStrings(s.args)
	eng := s.engine
	s.mu.Unlock()

	code := eng.Main(args)

	s.mu.Lock()
	s.state = StateStopped
	s.runDone = nil
	s.emitLocked(EventStopped, "Server stopped")
	s.mu.Unlock()
	close(done)

	return code, nil
}

// Stop requests shutdown. It is idempotent: stopping a handle that is not
// running is a no-op. The shutdown itself is cooperative; when a Run is in
// flight, Stop signals the engine and waits, outside the lock, for the entry
// point to return. There is no timeout; callers needing a bounded wait must
// layer their own.
func (s *Server) Stop() {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return
	}

	s.shutdownRequested = true
	eng := s.engine
	done := s.runDone
	if done == nil {
		// No run loop to join: the engine's entry point was never handed
		// control, so there is nothing to signal. Signalling anyway would
		// leave a pending shutdown that a later start/run cycle consumes as
		// if it were its own.
		s.state = StateStopped
		s.emitLocked(EventStopped, "Server stopped")
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	eng.RequestShutdown()
	<-done
}

// Close stops the server if needed, restores the process-wide state captured
// at New and releases the handle's owned storage. It cannot fail. The handle
// must not be used afterwards and Close must not be called twice.
func (s *Server) Close() {
	s.Stop()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	shadow := s.shadow
	s.args = nil
	s.config = nil
	s.sinks = eventSinks{}
	s.mu.Unlock()

	shadow.restore()
}

// IsRunning reports whether the handle is in the running state. It is the
// only query that never fails.
func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateRunning
}

// LifecycleState returns the handle's current lifecycle state.
func (s *Server) LifecycleState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Port returns the resolved listening port, falling back to the protocol
// default when the engine has not published one.
func (s *Server) Port() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return 0, errors.NotRunning("get_port")
	}
	if port := globalResolvedPort(); port > 0 {
		return port, nil
	}
	return DefaultPort, nil
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return 0, errors.NotRunning("get_client_count")
	}
	return globalClientCount(), nil
}

// AdvancedStats returns runtime statistics. Results are cached and
// recomputed at most once per second, so values may be up to one second
// stale.
func (s *Server) AdvancedStats() (AdvancedStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return AdvancedStats{}, errors.NotRunning("get_advanced_stats")
	}
	if err := s.refreshStatsLocked(); err != nil {
		return AdvancedStats{}, err
	}
	return s.statsCache, nil
}

// Clients returns information about the connected clients, as reported by
// the engine.
func (s *Server) Clients() ([]ClientInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return nil, errors.NotRunning("get_clients")
	}
	return s.engine.Clients()
}

// SetPerformanceMonitoring stores the advisory monitoring switch and warning
// threshold (0.0-1.0). The facade does not act on them itself; supervising
// code reads them back via PerformanceMonitoring.
func (s *Server) SetPerformanceMonitoring(enable bool, warningThreshold float64) error {
	if warningThreshold < 0 || warningThreshold > 1 {
		return errors.InvalidArgument("warning threshold must be within 0.0-1.0")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.perfMonitoring = enable
	s.perfThreshold = warningThreshold
	return nil
}

// PerformanceMonitoring returns the advisory monitoring switch and threshold.
func (s *Server) PerformanceMonitoring() (enabled bool, warningThreshold float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.perfMonitoring, s.perfThreshold
}

// BandwidthLimit returns the advisory per-client bandwidth limit in KB/s,
// zero meaning unlimited.
func (s *Server) BandwidthLimit() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bandwidthKbps
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func isUnsupported(err error) bool {
	return errors.IsUnsupported(err)
}
