// Package eventlog persists server notifications so operators can inspect
// session history after the fact.
package eventlog

import (
	"time"

	"github.com/google/uuid"
)

// Record is one persisted server notification.
type Record struct {
	ID         int64     `json:"id"`
	EventID    string    `json:"event_id"`
	SessionID  string    `json:"session_id"`
	Type       string    `json:"type"`
	Message    string    `json:"message,omitempty"`
	Payload    []byte    `json:"payload,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewRecord builds a record with a fresh event ID and the current time.
func NewRecord(sessionID, eventType, message string, payload []byte) Record {
	return Record{
		EventID:    uuid.NewString(),
		SessionID:  sessionID,
		Type:       eventType,
		Message:    message,
		Payload:    payload,
		OccurredAt: time.Now(),
	}
}
