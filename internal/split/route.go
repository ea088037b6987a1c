// Package split decomposes multi-nucleotide substitutions into single-base
// VCF records.
package split

import (
	"strings"

	"github.com/inodb/splitmnp/internal/vcf"
)

// DefaultInfoTag is the INFO flag added to every record produced by a split.
const DefaultInfoTag = "FromComplex"

// Options controls which records are split and how they are tagged.
type Options struct {
	MinLength int    // shortest REF length that is split
	MaxAlts   int    // most ALT alleles a splittable record may carry
	InfoTag   string // INFO flag appended to emitted records
}

// DefaultOptions returns the standard MNP splitting options.
func DefaultOptions() Options {
	return Options{
		MinLength: 2,
		MaxAlts:   3,
		InfoTag:   DefaultInfoTag,
	}
}

// Disposition is the routing decision for a single input line.
type Disposition int

const (
	// PassThrough lines are echoed unchanged.
	PassThrough Disposition = iota
	// Header lines are echoed unchanged without parsing.
	Header
	// Single records have one ALT allele and are split base by base.
	Single
	// Multi records have several ALT alleles and need genotype re-encoding.
	Multi
)

func (d Disposition) String() string {
	switch d {
	case PassThrough:
		return "pass_through"
	case Header:
		return "header"
	case Single:
		return "single"
	case Multi:
		return "multi"
	}
	return "unknown"
}

// Classify decides whether a record is split and by which decomposer.
// A record qualifies when every ALT has the REF length, the REF is at least
// MinLength bases, there are between 1 and MaxAlts ALT alleles, and no ALT
// is a symbolic or breakend allele.
func Classify(rec *vcf.Record, opts Options) Disposition {
	if len(rec.Alts) == 0 || len(rec.Alts) > opts.MaxAlts {
		return PassThrough
	}
	if len(rec.Ref) < opts.MinLength || !rec.IsBlockSubstitution() {
		return PassThrough
	}
	for _, alt := range rec.Alts {
		// Symbolic, breakend and missing alleles have no per-base meaning.
		if strings.ContainsAny(alt, "<>[]*.") {
			return PassThrough
		}
	}
	if len(rec.Alts) == 1 {
		return Single
	}
	return Multi
}
