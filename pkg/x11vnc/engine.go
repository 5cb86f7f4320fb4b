package x11vnc

import (
	"sync"
	"time"

	"git.home.luguber.info/inful/vncserve/internal/errors"
)

// Engine is the boundary to the wrapped screen/protocol engine. The facade
// never looks inside it: Main is the legacy blocking entry point,
// RequestShutdown the fire-and-forget signal its loop consumes, and the
// remaining methods are the advanced operations whose results the engine
// produces. Implementations that do not support an operation should return
// an unsupported-category error rather than fabricate data.
type Engine interface {
	// Main runs the engine's blocking entry point with the given argument
	// vector and returns its result code.
	Main(args []string) int
	// RequestShutdown signals the entry point's loop to exit. It must be
	// safe to call at any time, including before Main and more than once.
	RequestShutdown()

	Stats() (AdvancedStats, error)
	Clients() ([]ClientInfo, error)
	DisconnectClient(clientID, reason string) error
	SetClientPermissions(clientID string, viewOnly bool) error
	InjectPointer(x, y, buttonMask int) error
	InjectKey(keysym uint32, down bool) error
	InjectText(text string) error
	Clipboard() (string, error)
	SetClipboard(text string) error
	RemoteControl(command string) (string, error)
	ProcessEvents(timeout time.Duration) (int, error)
	UpdateScreen(x, y, width, height int) error
	SetBandwidthLimit(maxKbpsPerClient int) error
}

// idleEngine is the engine bound when the caller supplies none. Main parks
// until shutdown is requested, so lifecycle semantics (blocking Run,
// cooperative Stop) hold without a real engine; every advanced operation
// reports unsupported.
type idleEngine struct {
	mu       sync.Mutex
	shutdown chan struct{}
}

func newIdleEngine() *idleEngine {
	return &idleEngine{shutdown: make(chan struct{})}
}

func (e *idleEngine) Main(args []string) int {
	e.mu.Lock()
	ch := e.shutdown
	e.mu.Unlock()
	<-ch

	// Re-arm so a later start/run cycle blocks again.
	e.mu.Lock()
	e.shutdown = make(chan struct{})
	e.mu.Unlock()
	return 0
}

func (e *idleEngine) RequestShutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	select {
	case <-e.shutdown:
	default:
		close(e.shutdown)
	}
}

func (e *idleEngine) Stats() (AdvancedStats, error) {
	return AdvancedStats{}, errors.Unsupported("get_advanced_stats")
}

func (e *idleEngine) Clients() ([]ClientInfo, error) {
	return nil, errors.Unsupported("get_clients")
}

func (e *idleEngine) DisconnectClient(clientID, reason string) error {
	return errors.Unsupported("disconnect_client")
}

func (e *idleEngine) SetClientPermissions(clientID string, viewOnly bool) error {
	return errors.Unsupported("set_client_permissions")
}

func (e *idleEngine) InjectPointer(x, y, buttonMask int) error {
	return errors.Unsupported("inject_pointer")
}

func (e *idleEngine) InjectKey(keysym uint32, down bool) error {
	return errors.Unsupported("inject_key")
}

func (e *idleEngine) InjectText(text string) error {
	return errors.Unsupported("inject_text")
}

func (e *idleEngine) Clipboard() (string, error) {
	return "", errors.Unsupported("get_clipboard")
}

func (e *idleEngine) SetClipboard(text string) error {
	return errors.Unsupported("set_clipboard")
}

func (e *idleEngine) RemoteControl(command string) (string, error) {
	return "", errors.Unsupported("remote_control")
}

func (e *idleEngine) ProcessEvents(timeout time.Duration) (int, error) {
	return 0, errors.Unsupported("process_events")
}

func (e *idleEngine) UpdateScreen(x, y, width, height int) error {
	return errors.Unsupported("update_screen")
}

func (e *idleEngine) SetBandwidthLimit(maxKbpsPerClient int) error {
	return errors.Unsupported("set_bandwidth_limit")
}
