// Package enginetest provides a scripted in-memory engine for tests and for
// the daemon's dry-run mode. It never touches a display or the network.
package enginetest

import (
	"sync"
	"time"

	"git.home.luguber.info/inful/vncserve/pkg/x11vnc"
)

// FakeEngine implements x11vnc.Engine with synthetic, caller-controlled
// data. Main blocks until RequestShutdown, mirroring the real engine's
// loop-until-signaled behavior.
type FakeEngine struct {
	mu sync.Mutex

	// Scripted results
	ExitCode  int
	StatsData x11vnc.AdvancedStats
	ClientSet []x11vnc.ClientInfo
	clipboard string

	// Recorded calls
	MainArgs        [][]string
	Disconnected    []string
	PointerEvents   int
	KeyEvents       int
	TypedText       []string
	RemoteCommands  []string
	ScreenUpdates   int
	BandwidthLimits []int

	shutdown chan struct{}
	running  bool
}

// New creates a fake engine with empty scripted data.
func New() *FakeEngine {
	return &FakeEngine{shutdown: make(chan struct{})}
}

// Main records the argument vector, publishes the scripted client count to
// the process-wide state and parks until shutdown is requested.
func (f *FakeEngine) Main(args []string) int {
	f.mu.Lock()
	f.MainArgs = append(f.MainArgs, args)
	f.running = true
	ch := f.shutdown
	code := f.ExitCode
	x11vnc.SetGlobalClientCount(len(f.ClientSet))
	f.mu.Unlock()

	<-ch

	f.mu.Lock()
	f.running = false
	f.shutdown = make(chan struct{})
	f.mu.Unlock()
	return code
}

// RequestShutdown signals Main to return. Safe to call repeatedly and
// without a Main in flight.
func (f *FakeEngine) RequestShutdown() {
	f.mu.Lock()
	defer f.mu.Unlock()
	select {
	case <-f.shutdown:
	default:
		close(f.shutdown)
	}
}

// Running reports whether Main is currently blocked in its loop.
func (f *FakeEngine) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

func (f *FakeEngine) Stats() (x11vnc.AdvancedStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.StatsData, nil
}

func (f *FakeEngine) Clients() ([]x11vnc.ClientInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]x11vnc.ClientInfo, len(f.ClientSet))
	copy(out, f.ClientSet)
	return out, nil
}

func (f *FakeEngine) DisconnectClient(clientID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Disconnected = append(f.Disconnected, clientID)
	kept := f.ClientSet[:0]
	for _, c := range f.ClientSet {
		if c.ClientID != clientID {
			kept = append(kept, c)
		}
	}
	f.ClientSet = kept
	return nil
}

func (f *FakeEngine) SetClientPermissions(clientID string, viewOnly bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.ClientSet {
		if f.ClientSet[i].ClientID == clientID {
			f.ClientSet[i].ViewOnly = viewOnly
		}
	}
	return nil
}

func (f *FakeEngine) InjectPointer(x, y, buttonMask int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PointerEvents++
	return nil
}

func (f *FakeEngine) InjectKey(keysym uint32, down bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.KeyEvents++
	return nil
}

func (f *FakeEngine) InjectText(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.TypedText = append(f.TypedText, text)
	return nil
}

func (f *FakeEngine) Clipboard() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clipboard, nil
}

func (f *FakeEngine) SetClipboard(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clipboard = text
	return nil
}

func (f *FakeEngine) RemoteControl(command string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RemoteCommands = append(f.RemoteCommands, command)
	return "ok", nil
}

func (f *FakeEngine) ProcessEvents(timeout time.Duration) (int, error) {
	return 0, nil
}

func (f *FakeEngine) UpdateScreen(x, y, width, height int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ScreenUpdates++
	return nil
}

func (f *FakeEngine) SetBandwidthLimit(maxKbpsPerClient int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.BandwidthLimits = append(f.BandwidthLimits, maxKbpsPerClient)
	return nil
}
