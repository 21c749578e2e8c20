// Package archive keeps a durable SQLite record of every event delivered
// during a meeting.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/lexiqai/meeting-assistant/internal/suggestions"
)

// Entry is one archived event
type Entry struct {
	ID         string
	MeetingID  string
	Seq        int64
	Kind       string
	Event      suggestions.Event
	ReceivedAt time.Time
}

// Store is the SQLite event archive
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New opens (or creates) the archive at dbPath
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db, now: time.Now}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			meeting_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			payload TEXT NOT NULL,
			received_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_meeting ON events(meeting_id, seq)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

// Record appends an event for meetingID
func (s *Store) Record(ctx context.Context, meetingID string, event suggestions.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	query := `INSERT INTO events (id, meeting_id, kind, payload, received_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, uuid.NewString(), meetingID, event.EventType(), string(payload), s.now().UTC()); err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// List returns the events archived for meetingID in arrival order
func (s *Store) List(ctx context.Context, meetingID string) ([]Entry, error) {
	query := `SELECT seq, id, meeting_id, kind, payload, received_at FROM events WHERE meeting_id = ? ORDER BY seq ASC`
	rows, err := s.db.QueryContext(ctx, query, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var payload string
		if err := rows.Scan(&e.Seq, &e.ID, &e.MeetingID, &e.Kind, &payload, &e.ReceivedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		event, err := decodePayload(e.Kind, []byte(payload))
		if err != nil {
			return nil, err
		}
		e.Event = event
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

func decodePayload(kind string, payload []byte) (suggestions.Event, error) {
	switch kind {
	case suggestions.TypeSuggestion:
		var sg suggestions.Suggestion
		if err := json.Unmarshal(payload, &sg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal suggestion: %w", err)
		}
		return sg, nil
	case suggestions.TypeTranscript:
		var tr suggestions.Transcript
		if err := json.Unmarshal(payload, &tr); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transcript: %w", err)
		}
		return tr, nil
	}
	return nil, fmt.Errorf("unknown event kind %q", kind)
}
