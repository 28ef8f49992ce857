package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const eventColumns = `id, title, start_time, end_time, notes, source, created_at`

// CreateEvent inserts e, assigning a new ID when e.ID is empty.
func (s *Store) CreateEvent(e Event) (*Event, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Source == "" {
		e.Source = SourceLocal
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO events (id, title, start_time, end_time, notes, source, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, formatTime(e.StartTime), formatTime(e.EndTime), e.Notes, e.Source, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return s.GetEvent(e.ID)
}

// UpsertEvents writes imported events in one transaction, replacing rows
// that share an ID.
func (s *Store) UpsertEvents(events []Event) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	if err := upsertEvents(tx, events); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceSource swaps every event of one source for the given set.
func (s *Store) ReplaceSource(source string, events []Event) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM events WHERE source = ?`, source); err != nil {
		return fmt.Errorf("clear source %q: %w", source, err)
	}
	tagged := make([]Event, len(events))
	for i, e := range events {
		e.Source = source
		tagged[i] = e
	}
	if err := upsertEvents(tx, tagged); err != nil {
		return err
	}
	return tx.Commit()
}

func upsertEvents(tx *sql.Tx, events []Event) error {
	stmt, err := tx.Prepare(`
		INSERT INTO events (id, title, start_time, end_time, notes, source)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			notes = excluded.notes,
			source = excluded.source`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.Source == "" {
			e.Source = SourceLocal
		}
		if _, err := stmt.Exec(e.ID, e.Title, formatTime(e.StartTime), formatTime(e.EndTime), e.Notes, e.Source); err != nil {
			return fmt.Errorf("upsert event %s: %w", e.ID, err)
		}
	}
	return nil
}

func (s *Store) GetEvent(id string) (*Event, error) {
	row := s.db.QueryRow(`SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get event %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get event %s: %w", id, err)
	}
	return e, nil
}

// ListEvents returns matching events ordered by start time.
func (s *Store) ListEvents(f EventFilter) ([]Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE 1=1`
	var args []any

	if f.From != nil {
		query += ` AND start_time >= ?`
		args = append(args, formatTime(*f.From))
	}
	if f.To != nil {
		query += ` AND start_time < ?`
		args = append(args, formatTime(*f.To))
	}
	if f.Source != "" {
		query += ` AND source = ?`
		args = append(args, f.Source)
	}
	// Title matching runs in Go for Unicode case folding; LIMIT follows it.
	q := strings.TrimSpace(f.Query)
	query += ` ORDER BY start_time, id`
	if f.Limit > 0 && q == "" {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		if q != "" && !TitleMatches(e.Title, q) {
			continue
		}
		events = append(events, *e)
		if f.Limit > 0 && len(events) == f.Limit {
			break
		}
	}
	return events, rows.Err()
}

// TitleMatches reports whether query occurs in title, ignoring case.
// The query is taken literally.
func TitleMatches(title, query string) bool {
	return strings.Contains(strings.ToLower(title), strings.ToLower(strings.TrimSpace(query)))
}

func (s *Store) CountEvents() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(r rowScanner) (*Event, error) {
	e := &Event{}
	var start, end, createdAt string
	if err := r.Scan(&e.ID, &e.Title, &start, &end, &e.Notes, &e.Source, &createdAt); err != nil {
		return nil, err
	}
	e.StartTime, _ = time.Parse(time.RFC3339, start)
	e.EndTime, _ = time.Parse(time.RFC3339, end)
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return e, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
