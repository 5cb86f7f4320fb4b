package metrics

import (
	"sync"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once          sync.Once
	events        *prom.CounterVec
	clientCount   prom.Gauge
	running       prom.Gauge
	uptime        prom.Gauge
	fps           prom.Gauge
	bandwidthOut  prom.Gauge
	configReloads *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.events = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "vncserve",
			Name:      "events_total",
			Help:      "Server events by type",
		}, []string{"type"})
		pr.clientCount = prom.NewGauge(prom.GaugeOpts{
			Namespace: "vncserve",
			Name:      "clients_connected",
			Help:      "Currently connected clients",
		})
		pr.running = prom.NewGauge(prom.GaugeOpts{
			Namespace: "vncserve",
			Name:      "server_running",
			Help:      "Whether the server is running (1) or not (0)",
		})
		pr.uptime = prom.NewGauge(prom.GaugeOpts{
			Namespace: "vncserve",
			Name:      "uptime_seconds",
			Help:      "Server uptime in seconds",
		})
		pr.fps = prom.NewGauge(prom.GaugeOpts{
			Namespace: "vncserve",
			Name:      "fps_current",
			Help:      "Current frame rate as reported by the engine",
		})
		pr.bandwidthOut = prom.NewGauge(prom.GaugeOpts{
			Namespace: "vncserve",
			Name:      "bandwidth_out_kbps",
			Help:      "Outbound bandwidth in KB/s",
		})
		pr.configReloads = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "vncserve",
			Name:      "config_reloads_total",
			Help:      "Configuration reloads by result",
		}, []string{"result"})
		reg.MustRegister(pr.events, pr.clientCount, pr.running, pr.uptime, pr.fps, pr.bandwidthOut, pr.configReloads)
	})
	return pr
}

func (p *PrometheusRecorder) IncEvent(eventType string) {
	if p == nil || p.events == nil {
		return
	}
	p.events.WithLabelValues(eventType).Inc()
}

func (p *PrometheusRecorder) SetClientCount(n int) {
	if p == nil || p.clientCount == nil {
		return
	}
	p.clientCount.Set(float64(n))
}

func (p *PrometheusRecorder) SetRunning(running bool) {
	if p == nil || p.running == nil {
		return
	}
	v := 0.0
	if running {
		v = 1.0
	}
	p.running.Set(v)
}

func (p *PrometheusRecorder) SetUptimeSeconds(v uint64) {
	if p == nil || p.uptime == nil {
		return
	}
	p.uptime.Set(float64(v))
}

func (p *PrometheusRecorder) SetFPS(v float64) {
	if p == nil || p.fps == nil {
		return
	}
	p.fps.Set(v)
}

func (p *PrometheusRecorder) SetBandwidthOutKbps(v float64) {
	if p == nil || p.bandwidthOut == nil {
		return
	}
	p.bandwidthOut.Set(v)
}

func (p *PrometheusRecorder) IncConfigReload(success bool) {
	if p == nil || p.configReloads == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.configReloads.WithLabelValues(res).Inc()
}
