package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder stores trace events of many runs in one SQLite database.
type SQLiteRecorder struct {
	db    *sql.DB
	runID string
}

// openSQLite opens a database with WAL journaling and a busy timeout.
func openSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s on %s: %w", pragma, path, err)
		}
	}
	return db, nil
}

// NewSQLiteRecorder opens (or creates) the database at path.
func NewSQLiteRecorder(path, runID string) (*SQLiteRecorder, error) {
	db, err := openSQLite(path)
	if err != nil {
		return nil, err
	}
	r := &SQLiteRecorder{db: db, runID: runID}
	if err := r.init(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// init creates the schema.
func (r *SQLiteRecorder) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS trace_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		step_id TEXT NOT NULL,
		event TEXT NOT NULL,
		agent TEXT,
		depth INTEGER NOT NULL DEFAULT 0,
		ts DATETIME NOT NULL,
		data TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_trace_run ON trace_events(run_id, step_id);
	`
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Record inserts one event.
func (r *SQLiteRecorder) Record(ev Event) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	data, err := json.Marshal(ev.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal trace payload: %w", err)
	}
	_, err = r.db.Exec(
		`INSERT INTO trace_events (run_id, step_id, event, agent, depth, ts, data) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.runID, ev.StepID, ev.Kind, ev.Agent, ev.Depth, ev.Timestamp.UTC().Format(time.RFC3339Nano), string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to insert trace event: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}

// LoadSQLite reads the events of one run in insertion order.
func LoadSQLite(path, runID string) ([]Event, error) {
	db, err := openSQLite(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(
		`SELECT step_id, event, agent, depth, ts, data FROM trace_events WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query trace events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			ev    Event
			agent sql.NullString
			ts    string
			data  sql.NullString
		)
		if err := rows.Scan(&ev.StepID, &ev.Kind, &agent, &ev.Depth, &ts, &data); err != nil {
			return nil, fmt.Errorf("failed to scan trace event: %w", err)
		}
		ev.Agent = agent.String
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			ev.Timestamp = t
		}
		if data.Valid && data.String != "" {
			var payload interface{}
			if err := json.Unmarshal([]byte(data.String), &payload); err == nil {
				ev.Payload = payload
			}
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// ListSQLiteRuns returns run ids stored in the database, oldest first.
func ListSQLiteRuns(path string) ([]string, error) {
	db, err := openSQLite(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(`SELECT run_id FROM trace_events GROUP BY run_id ORDER BY MIN(id)`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		runs = append(runs, id)
	}
	return runs, rows.Err()
}
