// Package actionlog keeps a SQLite history of released and evolved creatures.
package actionlog

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/napolitain/bag-optimizer/internal/models"
)

// Entry is one recorded action
type Entry struct {
	ID        int64   `json:"id" db:"id"`
	Pokemon   string  `json:"pokemon" db:"pokemon"`
	IV        float64 `json:"iv" db:"iv"`
	CP        int     `json:"cp" db:"cp"`
	CreatedAt int64   `json:"created_at" db:"created_at"`
}

// Store wraps a SQLite connection
type Store struct {
	conn *sqlx.DB
	now  func() time.Time
}

// Open opens or creates the database at path
func Open(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{conn: conn, now: time.Now}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS transfer_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		pokemon TEXT NOT NULL,
		iv REAL NOT NULL,
		cp INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS evolve_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		pokemon TEXT NOT NULL,
		iv REAL NOT NULL,
		cp INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// RecordTransfer stores a released creature
func (s *Store) RecordTransfer(ctx context.Context, c models.Creature) error {
	return s.insert(ctx, "transfer_log", c)
}

// RecordEvolve stores an evolved creature as it was before evolving
func (s *Store) RecordEvolve(ctx context.Context, c models.Creature) error {
	return s.insert(ctx, "evolve_log", c)
}

func (s *Store) insert(ctx context.Context, table string, c models.Creature) error {
	_, err := s.conn.ExecContext(ctx,
		"INSERT INTO "+table+" (pokemon, iv, cp, created_at) VALUES (?, ?, ?, ?)",
		c.Name, c.IV, c.CP, s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

// Transfers returns the most recent releases, newest first
func (s *Store) Transfers(ctx context.Context, limit int) ([]Entry, error) {
	return s.recent(ctx, "transfer_log", limit)
}

// Evolutions returns the most recent evolutions, newest first
func (s *Store) Evolutions(ctx context.Context, limit int) ([]Entry, error) {
	return s.recent(ctx, "evolve_log", limit)
}

func (s *Store) recent(ctx context.Context, table string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []Entry
	err := s.conn.SelectContext(ctx, &rows,
		"SELECT id, pokemon, iv, cp, created_at FROM "+table+" ORDER BY id DESC LIMIT ?",
		limit,
	)
	return rows, err
}

// CountSince counts evolutions recorded at or after since
func (s *Store) CountSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := s.conn.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM evolve_log WHERE created_at >= ?", since.Unix())
	return n, err
}
