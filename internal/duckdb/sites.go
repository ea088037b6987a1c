package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/splitmnp/internal/vcf"
)

// SiteResult links one emitted single-base site to the block it came from.
type SiteResult struct {
	RunID              int64
	SrcChrom           string
	SrcPos             int64
	SrcRef             string
	SrcAlt             string
	Pos                int64
	Ref                string
	Alt                string
	GenotypesRewritten bool
}

// ChromCount summarises split activity on one chromosome.
type ChromCount struct {
	Chrom  string
	Blocks int64 // distinct source records that were split
	Sites  int64 // single-base records emitted
}

// WriteSiteResults batch-inserts site results into DuckDB using the Appender API.
func (s *Store) WriteSiteResults(results []SiteResult) error {
	if len(results) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "split_sites")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range results {
		if err := appender.AppendRow(
			r.RunID, r.SrcChrom, r.SrcPos, r.SrcRef, r.SrcAlt,
			r.Pos, r.Ref, r.Alt, r.GenotypesRewritten,
		); err != nil {
			return fmt.Errorf("append site result: %w", err)
		}
	}

	return appender.Flush()
}

// LookupSource returns the sites emitted for source records at chrom:pos,
// ordered by run and output position.
func (s *Store) LookupSource(chrom string, pos int64) ([]SiteResult, error) {
	rows, err := s.db.Query(`SELECT
		run_id, src_chrom, src_pos, src_ref, src_alt, pos, ref, alt, genotypes_rewritten
		FROM split_sites
		WHERE src_chrom=? AND src_pos=?
		ORDER BY run_id, pos`,
		chrom, pos)
	if err != nil {
		return nil, fmt.Errorf("query sites: %w", err)
	}
	defer rows.Close()

	var results []SiteResult
	for rows.Next() {
		var r SiteResult
		if err := rows.Scan(
			&r.RunID, &r.SrcChrom, &r.SrcPos, &r.SrcRef, &r.SrcAlt,
			&r.Pos, &r.Ref, &r.Alt, &r.GenotypesRewritten,
		); err != nil {
			return nil, fmt.Errorf("scan site: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sites: %w", err)
	}
	return results, nil
}

// CountByChrom returns per-chromosome block and site counts.
// A runID of 0 covers every run.
func (s *Store) CountByChrom(runID int64) ([]ChromCount, error) {
	rows, err := s.db.Query(`SELECT
		src_chrom,
		COUNT(DISTINCT CAST(run_id AS VARCHAR) || ':' || CAST(src_pos AS VARCHAR) || ':' || src_ref || ':' || src_alt),
		COUNT(*)
		FROM split_sites
		WHERE CAST(? AS BIGINT) = 0 OR run_id = ?
		GROUP BY src_chrom
		ORDER BY src_chrom`,
		runID, runID)
	if err != nil {
		return nil, fmt.Errorf("query counts: %w", err)
	}
	defer rows.Close()

	var counts []ChromCount
	for rows.Next() {
		var c ChromCount
		if err := rows.Scan(&c.Chrom, &c.Blocks, &c.Sites); err != nil {
			return nil, fmt.Errorf("scan counts: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}
	return counts, nil
}

// defaultBatchSize is the number of sites buffered before an append.
const defaultBatchSize = 10000

// Recorder buffers the sites of one run and appends them in batches.
// It satisfies split.SiteRecorder.
type Recorder struct {
	store     *Store
	runID     int64
	batchSize int
	pending   []SiteResult
}

// NewRecorder creates a recorder that attributes sites to runID.
func (s *Store) NewRecorder(runID int64) *Recorder {
	return &Recorder{
		store:     s,
		runID:     runID,
		batchSize: defaultBatchSize,
	}
}

// SetBatchSize sets how many sites are buffered before they are written.
func (r *Recorder) SetBatchSize(n int) {
	if n > 0 {
		r.batchSize = n
	}
}

// RecordSites buffers the sites produced from src.
func (r *Recorder) RecordSites(src *vcf.Record, sites []*vcf.Record) error {
	gtKey, _, _ := strings.Cut(src.Format, ":")
	rewritten := len(src.Alts) > 1 && gtKey == "GT" && len(src.Samples) > 0
	srcAlt := src.Alt()
	for _, site := range sites {
		r.pending = append(r.pending, SiteResult{
			RunID:              r.runID,
			SrcChrom:           src.Chrom,
			SrcPos:             src.Pos,
			SrcRef:             src.Ref,
			SrcAlt:             srcAlt,
			Pos:                site.Pos,
			Ref:                site.Ref,
			Alt:                site.Alt(),
			GenotypesRewritten: rewritten,
		})
	}
	if len(r.pending) >= r.batchSize {
		return r.Flush()
	}
	return nil
}

// Flush writes any buffered sites.
func (r *Recorder) Flush() error {
	if err := r.store.WriteSiteResults(r.pending); err != nil {
		return err
	}
	r.pending = r.pending[:0]
	return nil
}
