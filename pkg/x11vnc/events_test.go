package x11vnc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type simpleRecord struct {
	event    EventType
	message  string
	userData any
}

func TestEvents_LifecycleEmission(t *testing.T) {
	resetGlobals()

	srv := New()
	defer srv.Close()

	var got []simpleRecord
	srv.SetEventCallback(func(s *Server, event EventType, message string, userData any) {
		got = append(got, simpleRecord{event, message, userData})
	}, "token")

	cfg := DefaultConfig()
	require.NoError(t, srv.Configure(&cfg))
	require.NoError(t, srv.StartConfigured())
	srv.Stop()

	require.Len(t, got, 3)
	assert.Equal(t, simpleRecord{EventStarted, "Server configured", "token"}, got[0])
	assert.Equal(t, simpleRecord{EventStarted, "Server started", "token"}, got[1])
	assert.Equal(t, simpleRecord{EventStopped, "Server stopped", "token"}, got[2])
}

func TestEvents_SlotOverwriteAndClear(t *testing.T) {
	resetGlobals()

	srv := New()
	defer srv.Close()

	var first, second int
	srv.SetEventCallback(func(*Server, EventType, string, any) { first++ }, nil)
	srv.Notify(EventError, "one")

	// Registering again replaces the previous sink; there is one slot.
	srv.SetEventCallback(func(*Server, EventType, string, any) { second++ }, nil)
	srv.Notify(EventError, "two")

	srv.SetEventCallback(nil, nil)
	srv.Notify(EventError, "three")

	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
}

func TestEvents_TypedDispatch(t *testing.T) {
	resetGlobals()

	srv := New()
	defer srv.Close()

	var gotEvent EventType
	var gotData any
	var gotUser any
	srv.SetTypedEventCallback(func(s *Server, event EventType, data any, userData any) {
		gotEvent = event
		gotData = data
		gotUser = userData
	}, 42)

	payload := &ClipboardEvent{Text: "hello", Length: 5, Format: "text/plain"}
	srv.NotifyTyped(EventClipboardChanged, payload)

	assert.Equal(t, EventClipboardChanged, gotEvent)
	assert.Same(t, payload, gotData.(*ClipboardEvent))
	assert.Equal(t, 42, gotUser)
}

func TestEvents_SlotsAreIndependent(t *testing.T) {
	resetGlobals()

	srv := New()
	defer srv.Close()

	var simple, typed int
	srv.SetEventCallback(func(*Server, EventType, string, any) { simple++ }, nil)
	srv.SetTypedEventCallback(func(*Server, EventType, any, any) { typed++ }, nil)

	srv.Notify(EventClientConnected, "client")
	srv.NotifyTyped(EventPerformanceWarning, &PerformanceEvent{WarningType: "cpu"})

	assert.Equal(t, 1, simple)
	assert.Equal(t, 1, typed)

	// Clearing one slot leaves the other untouched.
	srv.SetEventCallback(nil, nil)
	srv.Notify(EventClientConnected, "client")
	srv.NotifyTyped(EventPerformanceWarning, &PerformanceEvent{WarningType: "cpu"})

	assert.Equal(t, 1, simple)
	assert.Equal(t, 2, typed)
}

func TestEvents_ClearReleasesUserData(t *testing.T) {
	resetGlobals()

	srv := New()
	defer srv.Close()

	srv.SetEventCallback(func(*Server, EventType, string, any) {}, "data")
	srv.SetEventCallback(nil, nil)

	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.Nil(t, srv.sinks.simpleFn)
	assert.Nil(t, srv.sinks.simpleUserData)
}
