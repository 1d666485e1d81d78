//go:build sqlite

package history

import (
	"context"
	"database/sql"
	"sync"

	"github.com/jsphweid/evomelody/evolution"
	"github.com/pkg/errors"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func newSQLiteStore(path string) (Store, error) {
	return NewSQLiteStore(path), nil
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return errors.Wrapf(err, "could not open %s", s.path)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return errors.Wrapf(err, "could not open %s", s.path)
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return errors.Wrapf(err, "could not set up %s", s.path)
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) RecordGeneration(ctx context.Context, generation int, ranked []evolution.Scored) error {
	db, err := s.getDB()
	if err != nil {
		return errors.Wrapf(err, "could not record generation %d", generation)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrapf(err, "could not record generation %d", generation)
	}
	for _, e := range toEntries(generation, ranked) {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO ratings (generation, rank, id, genome, score)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(generation, rank) DO UPDATE SET
				id = excluded.id,
				genome = excluded.genome,
				score = excluded.score
		`, e.Generation, e.Rank, e.ID, e.Genome, e.Score)
		if err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "could not record generation %d rank %d", generation, e.Rank)
		}
	}
	return errors.Wrapf(tx.Commit(), "could not record generation %d", generation)
}

func (s *SQLiteStore) Entries(ctx context.Context) ([]Entry, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, errors.Wrap(err, "could not list ratings")
	}

	rows, err := db.QueryContext(ctx, `
		SELECT generation, rank, id, genome, score
		FROM ratings
		ORDER BY generation, rank
	`)
	if err != nil {
		return nil, errors.Wrap(err, "could not list ratings")
	}
	defer rows.Close()

	var res []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Generation, &e.Rank, &e.ID, &e.Genome, &e.Score); err != nil {
			return nil, errors.Wrap(err, "could not read rating")
		}
		res = append(res, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "could not list ratings")
	}
	return res, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return errors.Wrapf(err, "could not close %s", s.path)
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS ratings (
			generation INTEGER NOT NULL,
			rank INTEGER NOT NULL,
			id TEXT NOT NULL,
			genome TEXT NOT NULL,
			score INTEGER NOT NULL,
			PRIMARY KEY (generation, rank)
		);
	`)
	return errors.Wrap(err, "could not create ratings table")
}
