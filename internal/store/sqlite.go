// Package store keeps a journal of one run's events and notification
// deliveries. The database lives in memory and disappears with the process.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Fullex26/procnotify/pkg/models"
	_ "modernc.org/sqlite"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// Store persists events and deliveries in SQLite
type Store struct {
	db *sql.DB
}

// Open creates the journal database. Pass MemoryDSN for the usual
// non-persistent journal; a file path is accepted for debugging.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Every connection to :memory: is its own database.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return s, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			type TEXT NOT NULL,
			severity INTEGER NOT NULL,
			hostname TEXT NOT NULL,
			timestamp DATETIME NOT NULL,
			message TEXT NOT NULL,
			details TEXT,
			source TEXT,
			payload TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_events_type ON events(type);

		CREATE TABLE IF NOT EXISTS deliveries (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id TEXT NOT NULL,
			notifier TEXT NOT NULL,
			ok BOOLEAN NOT NULL,
			error TEXT,
			duration_ms INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_deliveries_event ON deliveries(event_id);
	`)
	return err
}

// SaveEvent records an event. Saving the same ID twice keeps the first.
func (s *Store) SaveEvent(event models.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT OR IGNORE INTO events (id, type, severity, hostname, timestamp, message, details, source, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, string(event.Type), int(event.Severity), event.Hostname, event.Timestamp.UTC(),
		event.Message, event.Details, event.Source, string(payload),
	)
	return err
}

// RecordDelivery records the outcome of sending one event to one notifier.
func (s *Store) RecordDelivery(eventID, notifier string, sendErr error, d time.Duration) error {
	var errText sql.NullString
	if sendErr != nil {
		errText = sql.NullString{String: sendErr.Error(), Valid: true}
	}
	_, err := s.db.Exec(`
		INSERT INTO deliveries (event_id, notifier, ok, error, duration_ms)
		VALUES (?, ?, ?, ?, ?)`,
		eventID, notifier, sendErr == nil, errText, d.Milliseconds(),
	)
	return err
}

// Events returns every recorded event in the order it was saved.
func (s *Store) Events() ([]models.Event, error) {
	rows, err := s.db.Query(`SELECT payload FROM events ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var event models.Event
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			continue
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// EventCount returns the number of events of the given type, or of all
// types when evType is empty.
func (s *Store) EventCount(evType models.EventType) (int, error) {
	var count int
	var err error
	if evType == "" {
		err = s.db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&count)
	} else {
		err = s.db.QueryRow(`SELECT COUNT(*) FROM events WHERE type = ?`, string(evType)).Scan(&count)
	}
	return count, err
}

// SummaryRow is one line of the end-of-run report.
type SummaryRow struct {
	Timestamp time.Time
	Type      models.EventType
	Message   string
	Delivered int
	Failed    int
}

// Summary lists events in order with their delivery counts.
func (s *Store) Summary() ([]SummaryRow, error) {
	rows, err := s.db.Query(`
		SELECT e.payload,
			COALESCE(SUM(CASE WHEN d.ok = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN d.ok = 0 THEN 1 ELSE 0 END), 0)
		FROM events e
		LEFT JOIN deliveries d ON d.event_id = e.id
		GROUP BY e.seq
		ORDER BY e.seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SummaryRow
	for rows.Next() {
		var payload string
		var r SummaryRow
		if err := rows.Scan(&payload, &r.Delivered, &r.Failed); err != nil {
			return nil, err
		}
		var event models.Event
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			continue
		}
		r.Timestamp = event.Timestamp
		r.Type = event.Type
		r.Message = event.Message
		out = append(out, r)
	}
	return out, rows.Err()
}
