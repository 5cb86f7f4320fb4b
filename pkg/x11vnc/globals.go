package x11vnc

import "sync"

// The wrapped engine predates this facade and keeps its state in
// process-wide variables. processState mirrors those variables: one set per
// process, shared by every Server handle. Handles virtualize it via the
// shadow mechanism (see shadow.go) but cannot isolate concurrent handles
// from each other.
type processState struct {
	mu           sync.Mutex
	clientCount  int
	resolvedPort int
	display      string
	authFile     string
	viewOnly     bool
	shared       bool
	allowHosts   string
}

var liveState processState

// GlobalState is a snapshot of the process-wide engine variables.
type GlobalState struct {
	ClientCount  int    `json:"client_count"`
	ResolvedPort int    `json:"resolved_port"`
	Display      string `json:"display"`
	AuthFile     string `json:"auth_file"`
	ViewOnly     bool   `json:"view_only"`
	Shared       bool   `json:"shared"`
	AllowHosts   string `json:"allow_hosts"`
}

// GlobalSnapshot returns the current process-wide engine state.
func GlobalSnapshot() GlobalState {
	liveState.mu.Lock()
	defer liveState.mu.Unlock()
	return GlobalState{
		ClientCount:  liveState.clientCount,
		ResolvedPort: liveState.resolvedPort,
		Display:      liveState.display,
		AuthFile:     liveState.authFile,
		ViewOnly:     liveState.viewOnly,
		Shared:       liveState.shared,
		AllowHosts:   liveState.allowHosts,
	}
}

// ApplyGlobalState overwrites the process-wide engine state. Engine
// implementations use it to publish runtime values (resolved port, client
// count); tests use it to reset between cases.
func ApplyGlobalState(g GlobalState) {
	liveState.mu.Lock()
	defer liveState.mu.Unlock()
	liveState.clientCount = g.ClientCount
	liveState.resolvedPort = g.ResolvedPort
	liveState.display = g.Display
	liveState.authFile = g.AuthFile
	liveState.viewOnly = g.ViewOnly
	liveState.shared = g.Shared
	liveState.allowHosts = g.AllowHosts
}

// SetGlobalClientCount publishes the engine's current client count.
func SetGlobalClientCount(n int) {
	liveState.mu.Lock()
	defer liveState.mu.Unlock()
	liveState.clientCount = n
}

// SetGlobalResolvedPort publishes the engine's resolved listening port.
func SetGlobalResolvedPort(port int) {
	liveState.mu.Lock()
	defer liveState.mu.Unlock()
	liveState.resolvedPort = port
}

// applyConfigGlobals writes the configuration-derived values into the
// process-wide state, as a configured start does.
func applyConfigGlobals(c *Config) {
	liveState.mu.Lock()
	defer liveState.mu.Unlock()
	if c.Port > 0 {
		liveState.resolvedPort = c.Port
	}
	liveState.display = c.Display
	liveState.authFile = c.AuthFile
	liveState.viewOnly = c.ViewOnly
	liveState.shared = c.Shared
	liveState.allowHosts = c.AllowHosts
}

// applyHotConfigGlobals pushes the hot-reloadable subset of an updated
// configuration to the running engine's state.
func applyHotConfigGlobals(c *Config) {
	liveState.mu.Lock()
	defer liveState.mu.Unlock()
	liveState.viewOnly = c.ViewOnly
	liveState.shared = c.Shared
	liveState.allowHosts = c.AllowHosts
	liveState.display = c.Display
	liveState.authFile = c.AuthFile
}

func globalClientCount() int {
	liveState.mu.Lock()
	defer liveState.mu.Unlock()
	return liveState.clientCount
}

func globalResolvedPort() int {
	liveState.mu.Lock()
	defer liveState.mu.Unlock()
	return liveState.resolvedPort
}
