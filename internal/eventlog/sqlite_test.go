package eventlog

import (
	"bytes"
	"fmt"
	"testing"
	"time"
)

func TestEventLogAppendAndRetrieve(t *testing.T) {
	log, err := NewSQLiteLog(":memory:")
	if err != nil {
		t.Fatalf("failed to create log: %v", err)
	}
	defer func() { _ = log.Close() }()

	ctx := t.Context()
	rec := NewRecord("session-1", "client_connected", "client from 10.0.0.5", []byte(`{"client_id":"c1"}`))

	if err := log.Append(ctx, rec); err != nil {
		t.Fatalf("failed to append record: %v", err)
	}

	records, err := log.BySession(ctx, "session-1")
	if err != nil {
		t.Fatalf("failed to get records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	got := records[0]
	if got.EventID != rec.EventID {
		t.Errorf("expected event_id %s, got %s", rec.EventID, got.EventID)
	}
	if got.Type != "client_connected" {
		t.Errorf("expected event_type client_connected, got %s", got.Type)
	}
	if got.Message != rec.Message {
		t.Errorf("expected message %q, got %q", rec.Message, got.Message)
	}
	if !bytes.Equal(got.Payload, rec.Payload) {
		t.Errorf("expected payload %s, got %s", rec.Payload, got.Payload)
	}
}

func TestEventLogRecent(t *testing.T) {
	log, err := NewSQLiteLog(":memory:")
	if err != nil {
		t.Fatalf("failed to create log: %v", err)
	}
	defer func() { _ = log.Close() }()

	ctx := t.Context()
	for i := 0; i < 5; i++ {
		rec := NewRecord("session-1", "frame_sent", fmt.Sprintf("frame %d", i), nil)
		if err := log.Append(ctx, rec); err != nil {
			t.Fatalf("failed to append record %d: %v", i, err)
		}
	}

	records, err := log.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("failed to get recent records: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	// Newest first.
	if records[0].Message != "frame 4" {
		t.Errorf("expected newest record first, got %q", records[0].Message)
	}
	if records[2].Message != "frame 2" {
		t.Errorf("expected frame 2 last, got %q", records[2].Message)
	}
}

func TestEventLogCountByType(t *testing.T) {
	log, err := NewSQLiteLog(":memory:")
	if err != nil {
		t.Fatalf("failed to create log: %v", err)
	}
	defer func() { _ = log.Close() }()

	ctx := t.Context()
	types := []string{"started", "client_connected", "client_connected", "stopped"}
	for _, eventType := range types {
		if err := log.Append(ctx, NewRecord("session-1", eventType, "", nil)); err != nil {
			t.Fatalf("failed to append: %v", err)
		}
	}

	counts, err := log.CountByType(ctx)
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}

	if counts["client_connected"] != 2 {
		t.Errorf("expected 2 client_connected records, got %d", counts["client_connected"])
	}
	if counts["started"] != 1 || counts["stopped"] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
}

func TestEventLogZeroTimestampDefaulted(t *testing.T) {
	log, err := NewSQLiteLog(":memory:")
	if err != nil {
		t.Fatalf("failed to create log: %v", err)
	}
	defer func() { _ = log.Close() }()

	ctx := t.Context()
	rec := Record{EventID: "fixed-id", SessionID: "session-1", Type: "started"}
	if err := log.Append(ctx, rec); err != nil {
		t.Fatalf("failed to append: %v", err)
	}

	records, err := log.BySession(ctx, "session-1")
	if err != nil {
		t.Fatalf("failed to get records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].OccurredAt.IsZero() || time.Since(records[0].OccurredAt) > time.Minute {
		t.Errorf("expected a recent default timestamp, got %v", records[0].OccurredAt)
	}
}
