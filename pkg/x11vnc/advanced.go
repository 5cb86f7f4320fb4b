package x11vnc

import (
	"time"

	"git.home.luguber.info/inful/vncserve/internal/errors"
)

// Advanced operations. The facade validates arguments and enforces the
// running precondition; the engine produces the results.

// DisconnectClient disconnects the identified client with a reason message.
func (s *Server) DisconnectClient(clientID, reason string) error {
	if clientID == "" {
		return errors.InvalidArgument("client id must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return errors.NotRunning("disconnect_client")
	}
	return s.engine.DisconnectClient(clientID, reason)
}

// SetClientPermissions switches the identified client between interactive
// and view-only mode.
func (s *Server) SetClientPermissions(clientID string, viewOnly bool) error {
	if clientID == "" {
		return errors.InvalidArgument("client id must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return errors.NotRunning("set_client_permissions")
	}
	return s.engine.SetClientPermissions(clientID, viewOnly)
}

// InjectPointer injects a pointer event at the given coordinates with the
// given button state bitmask.
func (s *Server) InjectPointer(x, y, buttonMask int) error {
	if x < 0 || y < 0 {
		return errors.InvalidArgument("pointer coordinates must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return errors.NotRunning("inject_pointer")
	}
	return s.engine.InjectPointer(x, y, buttonMask)
}

// InjectKey injects a key press or release for the given X11 keysym.
func (s *Server) InjectKey(keysym uint32, down bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return errors.NotRunning("inject_key")
	}
	return s.engine.InjectKey(keysym, down)
}

// InjectText sends text as a sequence of keyboard events.
func (s *Server) InjectText(text string) error {
	if text == "" {
		return errors.InvalidArgument("text must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return errors.NotRunning("inject_text")
	}
	return s.engine.InjectText(text)
}

// Clipboard returns the current clipboard content.
func (s *Server) Clipboard() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return "", errors.NotRunning("get_clipboard")
	}
	return s.engine.Clipboard()
}

// SetClipboard replaces the clipboard content.
func (s *Server) SetClipboard(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return errors.NotRunning("set_clipboard")
	}
	return s.engine.SetClipboard(text)
}

// RemoteControl executes a remote control command and returns the engine's
// response.
func (s *Server) RemoteControl(command string) (string, error) {
	if command == "" {
		return "", errors.InvalidArgument("command must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return "", errors.NotRunning("remote_control")
	}
	return s.engine.RemoteControl(command)
}

// ProcessEvents pumps pending engine events without blocking longer than
// timeout; zero returns immediately. It reports the number of events
// processed.
func (s *Server) ProcessEvents(timeout time.Duration) (int, error) {
	if timeout < 0 {
		return 0, errors.InvalidArgument("timeout must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return 0, errors.NotRunning("process_events")
	}
	return s.engine.ProcessEvents(timeout)
}

// UpdateScreen forces a screen update for the given region; zero width and
// height request a full-screen update.
func (s *Server) UpdateScreen(x, y, width, height int) error {
	if x < 0 || y < 0 || width < 0 || height < 0 {
		return errors.InvalidArgument("region must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return errors.NotRunning("update_screen")
	}
	return s.engine.UpdateScreen(x, y, width, height)
}

// SetBandwidthLimit applies a per-client bandwidth limit in KB/s, zero
// meaning unlimited. The stored advisory value is kept either way.
func (s *Server) SetBandwidthLimit(maxKbpsPerClient int) error {
	if maxKbpsPerClient < 0 {
		return errors.InvalidArgument("bandwidth limit must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return errors.NotRunning("set_bandwidth_limit")
	}
	s.bandwidthKbps = maxKbpsPerClient
	return s.engine.SetBandwidthLimit(maxKbpsPerClient)
}
