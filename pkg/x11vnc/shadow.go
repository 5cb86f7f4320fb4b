package x11vnc

// globalShadow is a snapshot of the process-wide variables a handle is
// responsible for virtualizing. It is captured exactly once (at New) and
// restored exactly once (at Close), no matter how many start/stop cycles
// happen in between. This keeps handle creation and destruction
// non-destructive to whatever global state existed before the handle.
type globalShadow struct {
	clientCount  int
	resolvedPort int
	display      string
	authFile     string
}

func captureGlobalShadow() globalShadow {
	liveState.mu.Lock()
	defer liveState.mu.Unlock()
	return globalShadow{
		clientCount:  liveState.clientCount,
		resolvedPort: liveState.resolvedPort,
		display:      liveState.display,
		authFile:     liveState.authFile,
	}
}

// restore writes the captured values back, discarding whatever the handle's
// own operations wrote in the meantime.
func (g globalShadow) restore() {
	liveState.mu.Lock()
	defer liveState.mu.Unlock()
	liveState.clientCount = g.clientCount
	liveState.resolvedPort = g.resolvedPort
	liveState.display = g.display
	liveState.authFile = g.authFile
}
