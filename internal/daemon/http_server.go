package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"git.home.luguber.info/inful/vncserve/internal/logfields"
	"git.home.luguber.info/inful/vncserve/internal/metrics"
	"git.home.luguber.info/inful/vncserve/internal/version"
)

// HTTPServer serves the admin endpoint: health, status, recent events and
// Prometheus metrics.
type HTTPServer struct {
	daemon *Daemon
	srv    *http.Server
}

// HealthResponse is the /healthz payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime"`
	Version   string    `json:"version"`
}

// StatusResponse is the /status payload.
type StatusResponse struct {
	DaemonStatus  Status    `json:"daemon_status"`
	SessionID     string    `json:"session_id"`
	Uptime        string    `json:"uptime"`
	ServerRunning bool      `json:"server_running"`
	ServerState   string    `json:"server_state"`
	Port          int       `json:"port,omitempty"`
	ClientCount   int       `json:"client_count"`
	Display       string    `json:"display,omitempty"`
	LastUpdated   time.Time `json:"last_updated"`
}

// NewHTTPServer creates the admin endpoint on the given listen address.
func NewHTTPServer(listen string, d *Daemon) *HTTPServer {
	mux := http.NewServeMux()
	h := &HTTPServer{
		daemon: d,
		srv: &http.Server{
			Addr:              listen,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}

	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/status", h.handleStatus)
	mux.HandleFunc("/events/recent", h.handleRecentEvents)
	mux.HandleFunc("/events/summary", h.handleEventSummary)
	if d.registry != nil {
		mux.Handle("/metrics", metrics.HTTPHandler(d.registry))
	}

	return h
}

// Start begins serving in a background goroutine.
func (h *HTTPServer) Start() error {
	slog.Info("Starting admin endpoint", "listen", h.srv.Addr)
	go func() {
		if err := h.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Admin endpoint failed", logfields.Error(err))
		}
	}()
	return nil
}

// Stop shuts the endpoint down gracefully, bounded by ctx.
func (h *HTTPServer) Stop(ctx context.Context) error {
	slog.Info("Stopping admin endpoint")
	return h.srv.Shutdown(ctx)
}

func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if h.daemon.Status() != StatusRunning {
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Uptime:    time.Since(h.daemon.startTime).Round(time.Second).String(),
		Version:   version.Version,
	})
}

func (h *HTTPServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	d := h.daemon
	srv := d.server

	resp := StatusResponse{
		DaemonStatus:  d.Status(),
		SessionID:     d.sessionID,
		Uptime:        time.Since(d.startTime).Round(time.Second).String(),
		ServerRunning: srv.IsRunning(),
		ServerState:   string(srv.LifecycleState()),
		LastUpdated:   time.Now(),
	}
	if cfg := d.Config(); cfg != nil {
		resp.Display = cfg.Server.Display
	}
	if resp.ServerRunning {
		if port, err := srv.Port(); err == nil {
			resp.Port = port
		}
		if n, err := srv.ClientCount(); err == nil {
			resp.ClientCount = n
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPServer) handleRecentEvents(w http.ResponseWriter, r *http.Request) {
	if h.daemon.events == nil {
		http.Error(w, "event log not configured", http.StatusNotFound)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 1000 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	records, err := h.daemon.events.Recent(r.Context(), limit)
	if err != nil {
		slog.Error("Failed to query event log", logfields.Error(err))
		http.Error(w, "event log query failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, records)
}

func (h *HTTPServer) handleEventSummary(w http.ResponseWriter, r *http.Request) {
	if h.daemon.events == nil {
		http.Error(w, "event log not configured", http.StatusNotFound)
		return
	}

	counts, err := h.daemon.events.CountByType(r.Context())
	if err != nil {
		slog.Error("Failed to query event log", logfields.Error(err))
		http.Error(w, "event log query failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, counts)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", logfields.Error(err))
	}
}
