package daemon

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/vncserve/internal/config"
	"git.home.luguber.info/inful/vncserve/internal/logfields"
	"git.home.luguber.info/inful/vncserve/pkg/x11vnc"
)

// Monitor samples server statistics on a fixed schedule, publishes them as
// metrics and raises performance warnings when the CPU threshold is crossed.
type Monitor struct {
	daemon    *Daemon
	cfg       config.MonitoringConfig
	scheduler gocron.Scheduler
}

// NewMonitor creates the statistics sampler.
func NewMonitor(d *Daemon, cfg config.MonitoringConfig) (*Monitor, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	m := &Monitor{daemon: d, cfg: cfg, scheduler: s}

	interval := time.Duration(cfg.IntervalSeconds) * time.Second
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(m.sample),
		gocron.WithName("stats-sample"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sampling job: %w", err)
	}

	return m, nil
}

// Start begins the sampling schedule.
func (m *Monitor) Start() {
	slog.Info("Starting statistics monitor",
		"interval_seconds", m.cfg.IntervalSeconds,
		"cpu_warn_threshold", m.cfg.CPUWarnThreshold)
	m.scheduler.Start()
}

// Stop shuts the sampling schedule down.
func (m *Monitor) Stop() error {
	slog.Info("Stopping statistics monitor")
	return m.scheduler.Shutdown()
}

// sample is called by gocron on every tick.
func (m *Monitor) sample() {
	srv := m.daemon.server
	if !srv.IsRunning() {
		return
	}

	stats, err := srv.AdvancedStats()
	if err != nil {
		slog.Debug("Statistics sample failed", logfields.Error(err))
		return
	}

	rec := m.daemon.recorder
	rec.SetUptimeSeconds(stats.UptimeSeconds)
	rec.SetClientCount(stats.CurrentClients)
	rec.SetFPS(stats.FPSCurrent)
	rec.SetBandwidthOutKbps(stats.BandwidthOutKbps)

	threshold := m.cfg.CPUWarnThreshold * 100
	if stats.CPUUsagePercent > threshold {
		slog.Warn("CPU usage above threshold",
			"cpu_percent", stats.CPUUsagePercent,
			"threshold_percent", threshold)
		srv.NotifyTyped(x11vnc.EventPerformanceWarning, &x11vnc.PerformanceEvent{
			WarningType: "cpu",
			Description: "CPU usage above configured threshold",
			Severity:    stats.CPUUsagePercent / 100,
			Value:       stats.CPUUsagePercent,
			Threshold:   threshold,
		})
	}
}
