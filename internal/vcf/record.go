// Package vcf provides VCF file parsing functionality.
package vcf

import "strings"

// Record is a single VCF data line split into its columns.
// QUAL, FILTER and INFO are kept as the raw column text.
type Record struct {
	Chrom   string   // Chromosome name (e.g., "12", "chr12")
	Pos     int64    // 1-based genomic position
	ID      string   // Variant identifier (e.g., rs ID)
	Ref     string   // Reference allele
	Alts    []string // Alternate alleles in ALT column order
	Qual    string   // QUAL column, unparsed
	Filter  string   // FILTER column
	Info    string   // INFO column, unparsed
	Format  string   // FORMAT column, empty for sites-only lines
	Samples []string // Per-sample columns following FORMAT
}

// Alt returns the ALT column as written in the file.
func (r *Record) Alt() string {
	return strings.Join(r.Alts, ",")
}

// IsBlockSubstitution reports whether every alternate allele has the same
// length as the reference, i.e. the record describes no insertion or deletion.
func (r *Record) IsBlockSubstitution() bool {
	if len(r.Alts) == 0 {
		return false
	}
	for _, alt := range r.Alts {
		if len(alt) != len(r.Ref) {
			return false
		}
	}
	return true
}

// HasSamples returns true if the record carries FORMAT and sample columns.
func (r *Record) HasSamples() bool {
	return r.Format != "" || len(r.Samples) > 0
}

// AppendInfoFlag returns the INFO string with a flag key appended.
// A missing INFO value (".") is replaced by the flag.
func AppendInfoFlag(info, flag string) string {
	if info == "" || info == "." {
		return flag
	}
	return info + ";" + flag
}
