package highscore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// migrations are applied in order and recorded in _migrations.
var migrations = []struct {
	name string
	sql  string
}{
	{"001_high_scores", `
CREATE TABLE IF NOT EXISTS high_scores (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	date    TEXT    NOT NULL,
	time    TEXT    NOT NULL,
	moves   INTEGER NOT NULL,
	runtime REAL    NOT NULL,
	seed    INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_high_scores_rank ON high_scores (moves, date, time);`},
}

// SQLiteStore implements Store on a SQLite database.
type SQLiteStore struct {
	db         *sql.DB
	maxEntries int
}

// OpenSQLiteStore opens (and creates if missing) the database at path and
// applies pending migrations.
func OpenSQLiteStore(path string, maxEntries int) (*SQLiteStore, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, maxEntries: maxEntries}, nil
}

func openDB(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return db, nil
}

func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	for _, m := range migrations {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, m.name).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", m.name).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply %s: %w", m.name, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations (name) VALUES (?)`, m.name); err != nil {
			tx.Rollback()
			return fmt.Errorf("record %s: %w", m.name, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		log.Info().Str("migration", m.name).Msg("applied")
	}
	return nil
}

// Add inserts the entry and prunes everything past the maximum length.
func (s *SQLiteStore) Add(ctx context.Context, entry Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.wrap(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO high_scores (date, time, moves, runtime, seed) VALUES (?, ?, ?, ?, ?)`,
		entry.Date, entry.Time, entry.Moves, entry.Runtime, entry.Seed,
	); err != nil {
		return fmt.Errorf("insert high score: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
DELETE FROM high_scores WHERE id NOT IN (
	SELECT id FROM high_scores ORDER BY moves ASC, date ASC, time ASC, id ASC LIMIT ?
)`, s.maxEntries); err != nil {
		return fmt.Errorf("prune high scores: %w", err)
	}
	return tx.Commit()
}

// List returns the ranked entries, best first.
func (s *SQLiteStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT date, time, moves, runtime, seed
FROM high_scores
ORDER BY moves ASC, date ASC, time ASC, id ASC
LIMIT ?`, s.maxEntries)
	if err != nil {
		return nil, s.wrap(err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Date, &e.Time, &e.Moves, &e.Runtime, &e.Seed); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear deletes every entry.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM high_scores`); err != nil {
		return s.wrap(err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) wrap(err error) error {
	if err != nil && err.Error() == "sql: database is closed" {
		return ErrStoreClosed
	}
	return err
}
