// Package journal persists a history of committed transitions to
// SQLite. The inactive registry itself is never persisted; the journal
// is an append-only record for the replay and trace commands.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pathhold/pathhold/router"
)

//go:embed schema.sql
var schemaSQL string

// Store is a SQLite-backed transition journal.
// Implements router.Journal.
type Store struct {
	db *sql.DB
}

// Open creates or opens a journal database at the given path.
// Use ":memory:" for an ephemeral journal.
//
// The database is configured with WAL mode, NORMAL synchronous mode, a
// 5-second busy timeout, and a single connection (SQLite allows one
// writer at a time).
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect journal: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append inserts one committed transition.
// Uses ON CONFLICT(token) DO NOTHING for idempotency: re-recording the
// same transition is silently ignored.
func (s *Store) Append(ctx context.Context, rec router.Record) error {
	cols, err := marshalClassifications(rec)
	if err != nil {
		return fmt.Errorf("append transition %s: %w", rec.Token, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO transitions
		(token, seq, from_path, to_path, retained, entering, exiting, inactivating, reactivating)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(token) DO NOTHING
	`,
		rec.Token,
		rec.Seq,
		rec.From,
		rec.To,
		cols[0], cols[1], cols[2], cols[3], cols[4],
	)
	if err != nil {
		return fmt.Errorf("append transition %s: %w", rec.Token, err)
	}
	return nil
}

// ReadAll returns every recorded transition in sequence order.
func (s *Store) ReadAll(ctx context.Context) ([]router.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, seq, from_path, to_path, retained, entering, exiting, inactivating, reactivating
		FROM transitions
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	defer rows.Close()

	var out []router.Record
	for rows.Next() {
		var rec router.Record
		var cols [5]string
		if err := rows.Scan(&rec.Token, &rec.Seq, &rec.From, &rec.To,
			&cols[0], &cols[1], &cols[2], &cols[3], &cols[4]); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		if err := unmarshalClassifications(cols, &rec); err != nil {
			return nil, fmt.Errorf("decode journal row %s: %w", rec.Token, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return out, nil
}

// Len returns the number of recorded transitions.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transitions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count journal: %w", err)
	}
	return n, nil
}

func marshalClassifications(rec router.Record) ([5]string, error) {
	var cols [5]string
	for i, list := range [][]string{rec.Retained, rec.Entering, rec.Exiting, rec.Inactivating, rec.Reactivating} {
		if list == nil {
			list = []string{}
		}
		b, err := json.Marshal(list)
		if err != nil {
			return cols, err
		}
		cols[i] = string(b)
	}
	return cols, nil
}

func unmarshalClassifications(cols [5]string, rec *router.Record) error {
	targets := []*[]string{&rec.Retained, &rec.Entering, &rec.Exiting, &rec.Inactivating, &rec.Reactivating}
	for i, t := range targets {
		if err := json.Unmarshal([]byte(cols[i]), t); err != nil {
			return err
		}
	}
	return nil
}
