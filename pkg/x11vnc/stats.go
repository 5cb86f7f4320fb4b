package x11vnc

import "time"

// statsRefreshInterval bounds the cost of frequent statistics polling.
// Within the interval queries return the cached value; callers must not
// assume real-time accuracy.
const statsRefreshInterval = time.Second

// AdvancedStats aggregates server runtime metrics. The engine produces most
// of them; uptime and current client count come from the facade itself.
type AdvancedStats struct {
	// Server uptime and state
	UptimeSeconds     uint64 `json:"uptime_seconds"`
	TotalConnections  uint64 `json:"total_connections"`
	CurrentClients    int    `json:"current_clients"`
	MaxClientsReached int    `json:"max_clients_reached"`

	// Performance metrics
	FPSCurrent         float64 `json:"fps_current"`
	FPSAverage         float64 `json:"fps_average"`
	TotalFramesSent    uint64  `json:"total_frames_sent"`
	TotalBytesSent     uint64  `json:"total_bytes_sent"`
	TotalBytesReceived uint64  `json:"total_bytes_received"`

	// Screen information
	ScreenWidth      int     `json:"screen_width"`
	ScreenHeight     int     `json:"screen_height"`
	BitsPerPixel     int     `json:"bits_per_pixel"`
	ScreenUpdateRate float64 `json:"screen_update_rate"`

	// Input statistics
	PointerEvents   uint64 `json:"pointer_events"`
	KeyEvents       uint64 `json:"key_events"`
	ClipboardEvents uint64 `json:"clipboard_events"`

	// Performance indicators
	CPUUsagePercent float64 `json:"cpu_usage_percent"`
	MemoryUsageMB   float64 `json:"memory_usage_mb"`
	DroppedFrames   int     `json:"dropped_frames"`

	// Network statistics
	BandwidthInKbps  float64 `json:"bandwidth_in_kbps"`
	BandwidthOutKbps float64 `json:"bandwidth_out_kbps"`
	CompressionRatio int     `json:"compression_ratio"`
}

// ClientInfo describes one connected client.
type ClientInfo struct {
	ClientID      string    `json:"client_id"`
	Hostname      string    `json:"hostname"`
	Port          int       `json:"port"`
	Username      string    `json:"username,omitempty"`
	Authenticated bool      `json:"authenticated"`
	ViewOnly      bool      `json:"view_only"`
	ConnectedAt   time.Time `json:"connected_at"`
	BytesSent     uint64    `json:"bytes_sent"`
	BytesReceived uint64    `json:"bytes_received"`
	FramesSent    uint32    `json:"frames_sent"`
	LastActivity  time.Time `json:"last_activity"`
	Encoding      string    `json:"encoding,omitempty"` // Tight, Raw, ...
}

// refreshStatsLocked recomputes the cached statistics if they are stale.
// Callers must hold s.mu.
func (s *Server) refreshStatsLocked() error {
	now := s.now()
	if s.statsFresh && now.Sub(s.lastStatsUpdate) <= statsRefreshInterval {
		return nil
	}

	stats, err := s.engine.Stats()
	if err != nil {
		if !isUnsupported(err) {
			return err
		}
		// Engine has no statistics of its own; keep the facade-derived
		// fields below and zero for the rest.
		stats = AdvancedStats{}
	}

	stats.UptimeSeconds = uint64(now.Sub(s.startTime) / time.Second)
	stats.CurrentClients = globalClientCount()

	s.statsCache = stats
	s.statsFresh = true
	s.lastStatsUpdate = now
	return nil
}
