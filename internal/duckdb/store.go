// Package duckdb records split runs and the single-base sites each split
// produced, so a run can be audited and summarised after the fact.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for the split audit tables.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database path, empty for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS split_runs (
		run_id BIGINT PRIMARY KEY,
		input_path VARCHAR,
		input_size BIGINT,
		input_modtime TIMESTAMP,
		started TIMESTAMP,
		finished TIMESTAMP,
		headers BIGINT,
		records BIGINT,
		pass_through BIGINT,
		single BIGINT,
		multi BIGINT,
		emitted BIGINT
	)`); err != nil {
		return err
	}

	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS split_sites (
		run_id BIGINT,
		src_chrom VARCHAR,
		src_pos BIGINT,
		src_ref VARCHAR,
		src_alt VARCHAR,
		pos BIGINT,
		ref VARCHAR,
		alt VARCHAR,
		genotypes_rewritten BOOLEAN
	)`)
	return err
}
