package calllog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on a local sqlite database.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if needed) the record database at the
// given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS call_records (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		number TEXT NOT NULL,
		direction TEXT NOT NULL,
		duration INTEGER NOT NULL,
		timestamp DATETIME NOT NULL,
		sim_slot TEXT NOT NULL,
		work INTEGER NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		synced INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_call_records_synced ON call_records(synced);
	CREATE INDEX IF NOT EXISTS idx_call_records_timestamp ON call_records(timestamp DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Insert implements Store.
func (s *SQLiteStore) Insert(ctx context.Context, rec *Record) error {
	if rec == nil || rec.ID == "" {
		return fmt.Errorf("record must have an ID")
	}

	query := `
	INSERT INTO call_records (id, name, number, direction, duration, timestamp, sim_slot, work, note, synced)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.ID,
		rec.Name,
		rec.Number,
		rec.Direction,
		rec.Duration,
		rec.Timestamp.UTC().Format(time.RFC3339Nano),
		rec.SimSlot,
		boolInt(rec.Work),
		rec.Note,
		boolInt(rec.Synced),
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// Unsynced implements Store.
func (s *SQLiteStore) Unsynced(ctx context.Context) ([]*Record, error) {
	query := `
	SELECT id, name, number, direction, duration, timestamp, sim_slot, work, note, synced
	FROM call_records
	WHERE synced = 0
	ORDER BY timestamp ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query unsynced records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// MarkSynced implements Store.
func (s *SQLiteStore) MarkSynced(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE call_records SET synced = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark record synced: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanRecord(rows *sql.Rows) (*Record, error) {
	var (
		rec       Record
		timestamp string
		work      int
		synced    int
	)
	if err := rows.Scan(
		&rec.ID,
		&rec.Name,
		&rec.Number,
		&rec.Direction,
		&rec.Duration,
		&timestamp,
		&rec.SimSlot,
		&work,
		&rec.Note,
		&synced,
	); err != nil {
		return nil, fmt.Errorf("scan record: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		return nil, fmt.Errorf("parse record timestamp: %w", err)
	}
	rec.Timestamp = ts
	rec.Work = work != 0
	rec.Synced = synced != 0
	return &rec, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
