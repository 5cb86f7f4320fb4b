package eventlog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Log defines the interface for persisting and querying server notifications.
type Log interface {
	// Append stores one record.
	Append(ctx context.Context, rec Record) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]Record, error)

	// BySession returns all records for one session, oldest first.
	BySession(ctx context.Context, sessionID string) ([]Record, error)

	// CountByType returns how many records exist per event type.
	CountByType(ctx context.Context) (map[string]int, error)

	// Close closes the log and releases resources.
	Close() error
}

// SQLiteLog implements Log using SQLite.
type SQLiteLog struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteLog opens an event log at dbPath. Use ":memory:" for an in-memory
// log, or a file path for persistent storage.
func NewSQLiteLog(dbPath string) (*SQLiteLog, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	log := &SQLiteLog{db: db}
	if err := log.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return log, nil
}

func (l *SQLiteLog) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS server_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_id TEXT NOT NULL UNIQUE,
		session_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		message TEXT,
		payload BLOB,
		occurred_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_session_id ON server_events(session_id);
	CREATE INDEX IF NOT EXISTS idx_occurred_at ON server_events(occurred_at);
	CREATE INDEX IF NOT EXISTS idx_event_type ON server_events(event_type);
	`
	_, err := l.db.Exec(schema)
	return err
}

// Append stores one record.
func (l *SQLiteLog) Append(ctx context.Context, rec Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = time.Now()
	}

	_, err := l.db.ExecContext(ctx,
		"INSERT INTO server_events (event_id, session_id, event_type, message, payload, occurred_at) VALUES (?, ?, ?, ?, ?, ?)",
		rec.EventID, rec.SessionID, rec.Type, rec.Message, rec.Payload, rec.OccurredAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	return nil
}

// Recent returns up to limit records, newest first.
func (l *SQLiteLog) Recent(ctx context.Context, limit int) ([]Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rows, err := l.db.QueryContext(ctx,
		"SELECT id, event_id, session_id, event_type, message, payload, occurred_at FROM server_events ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	return l.scanRecords(rows)
}

// BySession returns all records for one session, oldest first.
func (l *SQLiteLog) BySession(ctx context.Context, sessionID string) ([]Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rows, err := l.db.QueryContext(ctx,
		"SELECT id, event_id, session_id, event_type, message, payload, occurred_at FROM server_events WHERE session_id = ? ORDER BY id",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	return l.scanRecords(rows)
}

// CountByType returns how many records exist per event type.
func (l *SQLiteLog) CountByType(ctx context.Context) (map[string]int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rows, err := l.db.QueryContext(ctx,
		"SELECT event_type, COUNT(*) FROM server_events GROUP BY event_type",
	)
	if err != nil {
		return nil, fmt.Errorf("query counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var eventType string
		var n int
		if err := rows.Scan(&eventType, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[eventType] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return counts, nil
}

func (l *SQLiteLog) scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var rec Record
		var occurredUnix int64
		var message sql.NullString

		err := rows.Scan(&rec.ID, &rec.EventID, &rec.SessionID, &rec.Type, &message, &rec.Payload, &occurredUnix)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}

		rec.Message = message.String
		rec.OccurredAt = time.Unix(occurredUnix, 0)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return records, nil
}

// Close closes the database connection.
func (l *SQLiteLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.db.Close()
}
