package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/shibing624/file-server/pkg/logging"
)

// Actions recorded in the event log.
const (
	ActionUpload = "upload"
	ActionDelete = "delete"
)

// Event is one recorded upload or delete.
type Event struct {
	ID       int64
	At       time.Time
	Action   string
	Filename string
	Size     int64
	RemoteIP string
}

// Log is an append-only record of uploads and deletes kept in SQLite. It is
// pure observability: the filesystem stays the source of truth and recording
// failures never fail the calling request. A nil *Log no-ops everywhere, so
// callers do not need to branch on whether history is enabled.
type Log struct {
	db     *sql.DB
	logger *logging.Logger
}

// Open initializes the event log at the given path, creating the parent
// directory and schema as needed. The path must be on the OS filesystem
// because the SQLite driver opens it directly.
func Open(dbPath string, logger *logging.Logger) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			at TIMESTAMP NOT NULL,
			action TEXT NOT NULL,
			filename TEXT NOT NULL,
			size INTEGER NOT NULL DEFAULT 0,
			remote_ip TEXT NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create events table: %w", err)
	}

	return &Log{db: db, logger: logger}, nil
}

// Record appends an event. Failures are logged and swallowed.
func (l *Log) Record(action, filename string, size int64, remoteIP string) {
	if l == nil || l.db == nil {
		return
	}
	_, err := l.db.Exec(
		"INSERT INTO events (at, action, filename, size, remote_ip) VALUES (?, ?, ?, ?, ?)",
		time.Now().UTC(), action, filename, size, remoteIP,
	)
	if err != nil {
		l.logger.Warn("failed to record history event", "action", action, "filename", filename, "error", err)
	}
}

// Recent returns the latest events, newest first.
func (l *Log) Recent(limit int) ([]Event, error) {
	if l == nil || l.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := l.db.Query(
		"SELECT id, at, action, filename, size, remote_ip FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.At, &e.Action, &e.Filename, &e.Size, &e.RemoteIP); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Count returns the total number of recorded events.
func (l *Log) Count() (int64, error) {
	if l == nil || l.db == nil {
		return 0, nil
	}
	var n int64
	if err := l.db.QueryRow("SELECT COUNT(*) FROM events").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return n, nil
}

// Close releases the underlying database.
func (l *Log) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}
