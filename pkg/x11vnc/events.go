package x11vnc

import "time"

// EventType identifies a server notification.
type EventType string

const (
	EventStarted            EventType = "started"
	EventStopped            EventType = "stopped"
	EventClientConnected    EventType = "client_connected"
	EventClientDisconnected EventType = "client_disconnected"
	EventError              EventType = "error"
	EventFrameSent          EventType = "frame_sent"
	EventInputReceived      EventType = "input_received"
	EventClipboardChanged   EventType = "clipboard_changed"
	EventScreenChanged      EventType = "screen_changed"
	EventClientAuth         EventType = "client_auth"
	EventPerformanceWarning EventType = "performance_warning"
)

// EventFunc receives simple message events. userData is the opaque value
// supplied at registration time.
//
// Callbacks are invoked synchronously, possibly while the server's internal
// lock is held. A callback must not call back into the same Server; doing so
// deadlocks.
type EventFunc func(s *Server, event EventType, message string, userData any)

// TypedEventFunc receives events carrying a kind-specific payload: a
// *ClipboardEvent, *ScreenChangeEvent, *PerformanceEvent or *ClientInfo
// depending on the event type. The same re-entrancy contract as EventFunc
// applies.
type TypedEventFunc func(s *Server, event EventType, data any, userData any)

// ClipboardEvent describes a clipboard content change.
type ClipboardEvent struct {
	Text       string    `json:"text"`
	Length     int       `json:"length"`
	Format     string    `json:"format"`
	ClientID   string    `json:"client_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ScreenChangeEvent describes a screen resolution or depth change.
type ScreenChangeEvent struct {
	OldWidth   int       `json:"old_width"`
	OldHeight  int       `json:"old_height"`
	NewWidth   int       `json:"new_width"`
	NewHeight  int       `json:"new_height"`
	OldDepth   int       `json:"old_depth"`
	NewDepth   int       `json:"new_depth"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PerformanceEvent describes a performance warning: the measured value that
// crossed the configured threshold.
type PerformanceEvent struct {
	WarningType string  `json:"warning_type"`
	Description string  `json:"description"`
	Severity    float64 `json:"severity"` // 0.0-1.0
	Value       float64 `json:"value"`
	Threshold   float64 `json:"threshold"`
}

// eventSinks holds the two independent callback slots. Registering a sink
// overwrites the previous one for that slot; a nil function clears it.
type eventSinks struct {
	simpleFn       EventFunc
	simpleUserData any
	typedFn        TypedEventFunc
	typedUserData  any
}

// SetEventCallback registers the simple-message sink. Passing nil clears it.
func (s *Server) SetEventCallback(fn EventFunc, userData any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks.simpleFn = fn
	s.sinks.simpleUserData = userData
	if fn == nil {
		s.sinks.simpleUserData = nil
	}
}

// SetTypedEventCallback registers the typed-payload sink. Passing nil clears it.
func (s *Server) SetTypedEventCallback(fn TypedEventFunc, userData any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks.typedFn = fn
	s.sinks.typedUserData = userData
	if fn == nil {
		s.sinks.typedUserData = nil
	}
}

// emitLocked dispatches a simple event. Callers must hold s.mu; the callback
// runs with the lock held (see EventFunc contract).
func (s *Server) emitLocked(event EventType, message string) {
	if s.sinks.simpleFn != nil {
		s.sinks.simpleFn(s, event, message, s.sinks.simpleUserData)
	}
}

// emitTypedLocked dispatches a typed event. Callers must hold s.mu.
func (s *Server) emitTypedLocked(event EventType, data any) {
	if s.sinks.typedFn != nil {
		s.sinks.typedFn(s, event, data, s.sinks.typedUserData)
	}
}

// Notify dispatches a simple event to the registered sink. It is the entry
// point for engine implementations and supervising code that surface server
// activity (client connects, errors) through the handle's broker.
func (s *Server) Notify(event EventType, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emitLocked(event, message)
}

// NotifyTyped dispatches a typed event to the registered sink.
func (s *Server) NotifyTyped(event EventType, data any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emitTypedLocked(event, data)
}
