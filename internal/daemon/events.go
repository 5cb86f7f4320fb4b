package daemon

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/vncserve/internal/eventlog"
	"git.home.luguber.info/inful/vncserve/internal/logfields"
	"git.home.luguber.info/inful/vncserve/internal/natspub"
	"git.home.luguber.info/inful/vncserve/pkg/x11vnc"
)

const sinkTimeout = 3 * time.Second

// wireEvents registers the daemon's callbacks on the server handle. The
// callbacks run while the handle's lock is held, so they only log, persist
// and forward; they never call back into the server.
func (d *Daemon) wireEvents() {
	d.server.SetEventCallback(func(_ *x11vnc.Server, event x11vnc.EventType, message string, _ any) {
		d.handleEvent(string(event), message, nil)
	}, nil)

	d.server.SetTypedEventCallback(func(_ *x11vnc.Server, event x11vnc.EventType, data any, _ any) {
		payload, err := json.Marshal(data)
		if err != nil {
			slog.Error("Failed to encode event payload",
				logfields.Event(string(event)),
				logfields.Error(err))
			payload = nil
		}
		d.handleEvent(string(event), "", payload)
	}, nil)
}

// handleEvent fans one notification out to the log sinks.
func (d *Daemon) handleEvent(eventType, message string, payload []byte) {
	slog.Info("Server event",
		logfields.Event(eventType),
		"session_id", d.sessionID,
		"message", message)

	d.recorder.IncEvent(eventType)

	if d.events != nil {
		ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
		rec := eventlog.NewRecord(d.sessionID, eventType, message, payload)
		if err := d.events.Append(ctx, rec); err != nil {
			slog.Error("Failed to persist event",
				logfields.Event(eventType),
				logfields.Error(err))
		}
		cancel()
	}

	if d.publisher != nil {
		evt := &natspub.ServerEvent{
			EventID:   uuid.NewString(),
			SessionID: d.sessionID,
			Type:      eventType,
			Message:   message,
			Data:      payload,
		}
		if err := d.publisher.Publish(evt); err != nil {
			slog.Error("Failed to forward event",
				logfields.Event(eventType),
				logfields.Error(err))
		}
	}
}
