// Package metrics defines observability hooks for server and session
// activity. The Prometheus recorder is the production implementation; the
// noop recorder keeps metrics optional.
package metrics

// Recorder defines observability hooks for server activity. All methods must
// be safe on the NoopRecorder (allowing optional injection).
type Recorder interface {
	IncEvent(eventType string)
	SetClientCount(n int)
	SetRunning(running bool)
	SetUptimeSeconds(v uint64)
	SetFPS(v float64)
	SetBandwidthOutKbps(v float64)
	IncConfigReload(success bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncEvent(string)            {}
func (NoopRecorder) SetClientCount(int)         {}
func (NoopRecorder) SetRunning(bool)            {}
func (NoopRecorder) SetUptimeSeconds(uint64)    {}
func (NoopRecorder) SetFPS(float64)             {}
func (NoopRecorder) SetBandwidthOutKbps(float64) {}
func (NoopRecorder) IncConfigReload(bool)       {}
