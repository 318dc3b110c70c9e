package record

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const librarySchema = `
CREATE TABLE IF NOT EXISTS parameter_records (
	id TEXT PRIMARY KEY,
	tool TEXT NOT NULL,
	saved_at TEXT NOT NULL,
	payload BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_parameter_records_tool
	ON parameter_records (tool, saved_at DESC);`

// Library persists exported parameter records in SQLite so saved
// parameter sets survive across sessions. Only records are stored,
// never run outcomes.
type Library struct {
	db *sql.DB
}

// Entry is one stored record with its library identity.
type Entry struct {
	ID      string
	Tool    string
	SavedAt time.Time
	Record  Record
}

// OpenLibrary opens (or creates) a record library at path.
func OpenLibrary(path string) (*Library, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("record: library path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("record: open library: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("record: set WAL mode: %w", err)
	}
	if _, err := db.Exec(librarySchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("record: create schema: %w", err)
	}
	return &Library{db: db}, nil
}

// Close releases the underlying database handle.
func (l *Library) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Save stores a record and returns its library id.
func (l *Library) Save(ctx context.Context, rec Record) (string, error) {
	if l == nil || l.db == nil {
		return "", errors.New("record: library is closed")
	}
	if strings.TrimSpace(rec.Meta.Tool) == "" {
		return "", errors.New("record: record has no tool name")
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("record: encode payload: %w", err)
	}

	id := uuid.NewString()
	_, err = l.db.ExecContext(ctx,
		"INSERT INTO parameter_records (id, tool, saved_at, payload) VALUES (?, ?, ?, ?)",
		id, rec.Meta.Tool, time.Now().UTC().Format(time.RFC3339), payload)
	if err != nil {
		return "", fmt.Errorf("record: save: %w", err)
	}
	return id, nil
}

// List returns stored records for a tool, newest first.
func (l *Library) List(ctx context.Context, toolName string) ([]Entry, error) {
	if l == nil || l.db == nil {
		return nil, errors.New("record: library is closed")
	}

	rows, err := l.db.QueryContext(ctx,
		"SELECT id, tool, saved_at, payload FROM parameter_records WHERE tool = ? ORDER BY saved_at DESC",
		toolName)
	if err != nil {
		return nil, fmt.Errorf("record: list: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("record: list: %w", err)
	}
	return entries, nil
}

// Get returns one stored record by id.
func (l *Library) Get(ctx context.Context, id string) (Entry, bool, error) {
	if l == nil || l.db == nil {
		return Entry{}, false, errors.New("record: library is closed")
	}

	row := l.db.QueryRowContext(ctx,
		"SELECT id, tool, saved_at, payload FROM parameter_records WHERE id = ?", id)
	entry, err := scanEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return entry, true, nil
}

// Delete removes a stored record. Deleting a missing id is a no-op.
func (l *Library) Delete(ctx context.Context, id string) error {
	if l == nil || l.db == nil {
		return errors.New("record: library is closed")
	}
	if _, err := l.db.ExecContext(ctx,
		"DELETE FROM parameter_records WHERE id = ?", id); err != nil {
		return fmt.Errorf("record: delete: %w", err)
	}
	return nil
}

func scanEntry(scan func(dest ...any) error) (Entry, error) {
	var (
		entry   Entry
		savedAt string
		payload []byte
	)
	if err := scan(&entry.ID, &entry.Tool, &savedAt, &payload); err != nil {
		return Entry{}, err
	}
	ts, err := time.Parse(time.RFC3339, savedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("record: parse saved_at: %w", err)
	}
	entry.SavedAt = ts
	if err := json.Unmarshal(payload, &entry.Record); err != nil {
		return Entry{}, fmt.Errorf("record: decode payload: %w", err)
	}
	return entry, nil
}
