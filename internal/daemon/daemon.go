// Package daemon supervises a long-running screen-sharing server: it owns the
// server handle, persists and forwards its events, samples statistics,
// serves the admin HTTP endpoint and reloads configuration on file changes.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/vncserve/internal/config"
	"git.home.luguber.info/inful/vncserve/internal/eventlog"
	"git.home.luguber.info/inful/vncserve/internal/logfields"
	"git.home.luguber.info/inful/vncserve/internal/metrics"
	"git.home.luguber.info/inful/vncserve/internal/natspub"
	"git.home.luguber.info/inful/vncserve/pkg/x11vnc"
)

// Status represents the current state of the daemon.
type Status string

const (
	StatusStopped  Status = "stopped"
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusStopping Status = "stopping"
	StatusError    Status = "error"
)

// Daemon supervises one server instance.
type Daemon struct {
	mu         sync.RWMutex
	cfg        *config.Config
	configPath string

	status    atomic.Value // Status
	startTime time.Time
	sessionID string

	server    *x11vnc.Server
	events    eventlog.Log
	publisher *natspub.Publisher
	recorder  metrics.Recorder
	registry  *prom.Registry

	httpServer    *HTTPServer
	monitor       *Monitor
	configWatcher *ConfigWatcher
	workers       WorkerGroup
	runExited     chan struct{} // closed when the current run worker returns
}

// Option configures a Daemon at construction time.
type Option func(*Daemon)

// WithServerOptions passes options through to the underlying server handle,
// mainly to bind an engine.
func WithServerOptions(opts ...x11vnc.Option) Option {
	return func(d *Daemon) {
		d.server = x11vnc.New(opts...)
	}
}

// WithEventLog overrides the event log, mainly for tests.
func WithEventLog(log eventlog.Log) Option {
	return func(d *Daemon) {
		d.events = log
	}
}

// New creates a daemon from a validated configuration. configPath may be
// empty; file watching is then disabled.
func New(cfg *config.Config, configPath string, opts ...Option) (*Daemon, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	d := &Daemon{
		cfg:        cfg,
		configPath: configPath,
		sessionID:  uuid.NewString(),
		recorder:   metrics.NoopRecorder{},
		// Set once here so the admin handlers can read it without locking.
		startTime: time.Now(),
	}
	d.status.Store(StatusStopped)

	for _, opt := range opts {
		opt(d)
	}
	if d.server == nil {
		d.server = x11vnc.New()
	}

	if cfg.Admin.Enabled {
		d.registry = prom.NewRegistry()
		d.recorder = metrics.NewPrometheusRecorder(d.registry)
	}

	return d, nil
}

// SessionID returns the identifier stamped on this daemon run's events.
func (d *Daemon) SessionID() string { return d.sessionID }

// Status returns the daemon's current status.
func (d *Daemon) Status() Status {
	return d.status.Load().(Status)
}

// Config returns the current configuration.
func (d *Daemon) Config() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// Run starts every component and blocks until ctx is cancelled, then shuts
// down in reverse order.
func (d *Daemon) Run(ctx context.Context) error {
	d.status.Store(StatusStarting)

	if err := d.openSinks(); err != nil {
		d.status.Store(StatusError)
		return err
	}
	d.wireEvents()

	d.mu.RLock()
	serverCfg := d.cfg.Server
	adminCfg := d.cfg.Admin
	monCfg := d.cfg.Monitoring
	d.mu.RUnlock()

	if err := d.server.Configure(&serverCfg); err != nil {
		d.status.Store(StatusError)
		return fmt.Errorf("configure server: %w", err)
	}
	if err := d.startServer(); err != nil {
		d.status.Store(StatusError)
		return err
	}

	if adminCfg.Enabled {
		d.httpServer = NewHTTPServer(adminCfg.Listen, d)
		if err := d.httpServer.Start(); err != nil {
			d.status.Store(StatusError)
			return fmt.Errorf("start admin endpoint: %w", err)
		}
	}

	if monCfg.Enabled {
		if err := d.server.SetPerformanceMonitoring(true, monCfg.CPUWarnThreshold); err != nil {
			slog.Warn("Invalid performance threshold", logfields.Error(err))
		}
		monitor, err := NewMonitor(d, monCfg)
		if err != nil {
			d.status.Store(StatusError)
			return fmt.Errorf("start monitor: %w", err)
		}
		d.monitor = monitor
		d.monitor.Start()
	}

	if d.configPath != "" {
		watcher, err := NewConfigWatcher(d.configPath, d)
		if err != nil {
			slog.Warn("Config watching disabled", logfields.Error(err))
		} else {
			d.configWatcher = watcher
			if err := watcher.Start(ctx); err != nil {
				slog.Warn("Config watching disabled", logfields.Error(err))
				d.configWatcher = nil
			}
		}
	}

	d.status.Store(StatusRunning)
	slog.Info("Daemon running",
		"session_id", d.sessionID,
		logfields.Display(serverCfg.Display),
		logfields.Port(serverCfg.Port))

	<-ctx.Done()
	return d.shutdown()
}

// startServer starts the configured server and spawns the run worker.
func (d *Daemon) startServer() error {
	if err := d.server.StartConfigured(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	d.recorder.SetRunning(true)

	exited := make(chan struct{})
	d.mu.Lock()
	d.runExited = exited
	d.mu.Unlock()

	ok := d.workers.Go(func() {
		defer close(exited)
		code, err := d.server.Run()
		d.recorder.SetRunning(false)
		if err != nil {
			slog.Error("Server run loop failed", logfields.Error(err))
			return
		}
		slog.Info("Server run loop exited", "exit_code", code)
	})
	if !ok {
		return fmt.Errorf("daemon is stopping")
	}
	return nil
}

// restartServer performs a stop/start cycle after a cold configuration change.
func (d *Daemon) restartServer() error {
	d.mu.RLock()
	exited := d.runExited
	d.mu.RUnlock()

	d.server.Stop()
	if exited != nil {
		<-exited
	}
	return d.startServer()
}

// ReloadConfig applies a new configuration. Hot-reloadable changes reach the
// running server directly; changes to the listening surface trigger a
// server restart.
func (d *Daemon) ReloadConfig(ctx context.Context, newCfg *config.Config) error {
	if newCfg == nil {
		return fmt.Errorf("configuration is required")
	}

	restartNeeded, err := d.server.UpdateConfig(&newCfg.Server)
	if err != nil {
		d.recorder.IncConfigReload(false)
		return fmt.Errorf("update server config: %w", err)
	}

	d.mu.Lock()
	d.cfg = newCfg
	d.mu.Unlock()

	if restartNeeded {
		slog.Info("Configuration change requires server restart",
			logfields.Display(newCfg.Server.Display),
			logfields.Port(newCfg.Server.Port))
		if err := d.restartServer(); err != nil {
			d.recorder.IncConfigReload(false)
			return fmt.Errorf("restart server: %w", err)
		}
	}

	d.recorder.IncConfigReload(true)
	slog.Info("Configuration reloaded", "restart_performed", restartNeeded)
	return nil
}

func (d *Daemon) shutdown() error {
	d.status.Store(StatusStopping)
	slog.Info("Daemon stopping")

	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if d.configWatcher != nil {
		d.configWatcher.Stop()
	}
	if d.monitor != nil {
		if err := d.monitor.Stop(); err != nil {
			slog.Error("Error stopping monitor", logfields.Error(err))
		}
	}
	if d.httpServer != nil {
		if err := d.httpServer.Stop(stopCtx); err != nil {
			slog.Error("Error stopping admin endpoint", logfields.Error(err))
		}
	}

	d.server.Stop()
	if err := d.workers.StopAndWait(stopCtx); err != nil {
		slog.Error("Workers did not stop in time", logfields.Error(err))
	}

	d.closeSinks()
	d.server.Close()

	d.status.Store(StatusStopped)
	slog.Info("Daemon stopped")
	return nil
}

// openSinks prepares the event log and the NATS publisher according to the
// configuration. A missing NATS broker is not fatal; event forwarding is
// simply disabled.
func (d *Daemon) openSinks() error {
	d.mu.RLock()
	eventsCfg := d.cfg.Events
	d.mu.RUnlock()

	if d.events == nil && eventsCfg.LogPath != "" {
		log, err := eventlog.NewSQLiteLog(eventsCfg.LogPath)
		if err != nil {
			return fmt.Errorf("open event log: %w", err)
		}
		d.events = log
	}

	if eventsCfg.NATSURL != "" {
		pub, err := natspub.NewPublisher(eventsCfg.NATSURL, eventsCfg.NATSSubject)
		if err != nil {
			slog.Warn("Event forwarding disabled", logfields.Error(err))
		} else {
			d.publisher = pub
		}
	}
	return nil
}

func (d *Daemon) closeSinks() {
	if d.publisher != nil {
		if err := d.publisher.Close(); err != nil {
			slog.Error("Error closing NATS publisher", logfields.Error(err))
		}
		d.publisher = nil
	}
	if d.events != nil {
		if err := d.events.Close(); err != nil {
			slog.Error("Error closing event log", logfields.Error(err))
		}
		d.events = nil
	}
}
