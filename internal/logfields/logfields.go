package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyDisplay    = "display"
	KeyPort       = "port"
	KeyClientID   = "client_id"
	KeyEvent      = "event"
	KeyState      = "state"
	KeyPath       = "path"
	KeySubject    = "subject"
	KeyDurationMS = "duration_ms"
	KeyArgs       = "args"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Display(d string) slog.Attr      { return slog.String(KeyDisplay, d) }
func Port(p int) slog.Attr            { return slog.Int(KeyPort, p) }
func ClientID(id string) slog.Attr    { return slog.String(KeyClientID, id) }
func Event(e string) slog.Attr        { return slog.String(KeyEvent, e) }
func State(s string) slog.Attr        { return slog.String(KeyState, s) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Subject(s string) slog.Attr      { return slog.String(KeySubject, s) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Args(n int) slog.Attr            { return slog.Int(KeyArgs, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
