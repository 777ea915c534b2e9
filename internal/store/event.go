package store

import (
	"database/sql"
	"log"
	"time"

	"github.com/google/uuid"
)

// Event kinds recorded in the log.
const (
	KindCaptureState       = "capture_state"
	KindViewerConnected    = "viewer_connected"
	KindViewerDisconnected = "viewer_disconnected"
)

// Event represents one operational event.
type Event struct {
	ID        string
	Kind      string
	Detail    string
	CreatedAt time.Time
}

// EventRepository provides access to the event log.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Record appends an event to the log. Logging must never disturb the frame
// pipeline, so failures are logged and swallowed.
func (r *EventRepository) Record(kind, detail string) {
	event := &Event{
		ID:        uuid.NewString(),
		Kind:      kind,
		Detail:    detail,
		CreatedAt: time.Now(),
	}

	if err := r.Create(event); err != nil {
		log.Printf("failed to record event %s: %v", kind, err)
	}
}

// Create inserts a new event into the database.
func (r *EventRepository) Create(e *Event) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO events (id, kind, detail, created_at) VALUES (?, ?, ?, ?)`,
		e.ID, e.Kind, e.Detail, e.CreatedAt,
	)
	return err
}

// ListRecent returns up to limit events, newest first.
func (r *EventRepository) ListRecent(limit int) ([]Event, error) {
	rows, err := r.db.Query(
		`SELECT id, kind, detail, created_at FROM events ORDER BY created_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Kind, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	return events, rows.Err()
}
