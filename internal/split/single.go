package split

import (
	"iter"

	"github.com/inodb/splitmnp/internal/vcf"
)

// SplitSingle yields one single-base record per position where the ALT
// differs from the REF, in ascending position order. FORMAT and sample
// columns are copied unchanged: with one ALT, allele 1 keeps its meaning.
func SplitSingle(rec *vcf.Record, tag string) iter.Seq[*vcf.Record] {
	return func(yield func(*vcf.Record) bool) {
		alt := rec.Alts[0]
		info := vcf.AppendInfoFlag(rec.Info, tag)

		for i := 0; i < len(rec.Ref); i++ {
			if rec.Ref[i] == alt[i] {
				continue
			}
			out := &vcf.Record{
				Chrom:   rec.Chrom,
				Pos:     rec.Pos + int64(i),
				ID:      rec.ID,
				Ref:     rec.Ref[i : i+1],
				Alts:    []string{alt[i : i+1]},
				Qual:    rec.Qual,
				Filter:  rec.Filter,
				Info:    info,
				Format:  rec.Format,
				Samples: rec.Samples,
			}
			if !yield(out) {
				return
			}
		}
	}
}
