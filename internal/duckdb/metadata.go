package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"time"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
// Standard input ("-") yields a fingerprint with only the path set.
func StatFile(path string) (FileFingerprint, error) {
	if path == "-" {
		return FileFingerprint{Path: path}, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// RunCounts are the per-disposition totals of a finished run.
type RunCounts struct {
	Headers     int
	Records     int
	PassThrough int
	Single      int
	Multi       int
	Emitted     int
}

// Run is one row of the split_runs table.
type Run struct {
	ID       int64
	Input    FileFingerprint
	Started  time.Time
	Finished time.Time // zero while the run is in progress
	Counts   RunCounts
}

// BeginRun registers a new run for the given input and returns its ID.
func (s *Store) BeginRun(input FileFingerprint) (int64, error) {
	var id int64
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(run_id), 0) + 1 FROM split_runs`).Scan(&id); err != nil {
		return 0, fmt.Errorf("next run id: %w", err)
	}

	var modTime any
	if !input.ModTime.IsZero() {
		modTime = input.ModTime.UTC()
	}

	if _, err := s.db.Exec(`INSERT INTO split_runs
		(run_id, input_path, input_size, input_modtime, started)
		VALUES (?, ?, ?, ?, ?)`,
		id, input.Path, input.Size, modTime, time.Now().UTC()); err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// FinishRun stores the final counts of a run.
func (s *Store) FinishRun(id int64, c RunCounts) error {
	res, err := s.db.Exec(`UPDATE split_runs SET
		finished = ?, headers = ?, records = ?, pass_through = ?,
		single = ?, multi = ?, emitted = ?
		WHERE run_id = ?`,
		time.Now().UTC(), c.Headers, c.Records, c.PassThrough,
		c.Single, c.Multi, c.Emitted, id)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %d not found", id)
	}
	return nil
}

// Runs returns all recorded runs ordered by ID.
func (s *Store) Runs() ([]Run, error) {
	rows, err := s.db.Query(`SELECT
		run_id, input_path, input_size, input_modtime, started, finished,
		headers, records, pass_through, single, multi, emitted
		FROM split_runs ORDER BY run_id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                 Run
			modTime, finished sql.NullTime
			counts            [6]sql.NullInt64
		)
		if err := rows.Scan(
			&r.ID, &r.Input.Path, &r.Input.Size, &modTime, &r.Started, &finished,
			&counts[0], &counts[1], &counts[2], &counts[3], &counts[4], &counts[5],
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Input.ModTime = modTime.Time
		r.Finished = finished.Time
		r.Counts = RunCounts{
			Headers:     int(counts[0].Int64),
			Records:     int(counts[1].Int64),
			PassThrough: int(counts[2].Int64),
			Single:      int(counts[3].Int64),
			Multi:       int(counts[4].Int64),
			Emitted:     int(counts[5].Int64),
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
