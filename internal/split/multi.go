package split

import (
	"bytes"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/inodb/splitmnp/internal/vcf"
)

// GenotypeError reports a sample genotype that cannot be re-encoded.
type GenotypeError struct {
	Sample   int    // 0-based sample column index
	Name     string // sample name from the #CHROM line, if known
	Genotype string // the offending GT token
	Message  string
}

func (e *GenotypeError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("sample %s genotype %q: %s", e.Name, e.Genotype, e.Message)
	}
	return fmt.Sprintf("sample %d genotype %q: %s", e.Sample+1, e.Genotype, e.Message)
}

// slot is one variable column of a substitution block.
type slot struct {
	offset   int    // column index within the block
	ref      byte   // reference base
	altBases []byte // base of each original ALT, in ALT order
	alleles  []byte // ref followed by sorted distinct alt bases
}

// localIndex returns the per-slot allele index for a base.
func (s *slot) localIndex(base byte) int {
	return bytes.IndexByte(s.alleles, base)
}

// activeSlots returns the columns where at least one ALT differs from the
// REF, ordered by column.
func activeSlots(rec *vcf.Record) []slot {
	var slots []slot
	for i := 0; i < len(rec.Ref); i++ {
		ref := rec.Ref[i]
		altBases := make([]byte, len(rec.Alts))
		variable := false
		for j, alt := range rec.Alts {
			altBases[j] = alt[i]
			if alt[i] != ref {
				variable = true
			}
		}
		if !variable {
			continue
		}

		distinct := make([]byte, 0, len(altBases))
		for _, b := range altBases {
			if b != ref && bytes.IndexByte(distinct, b) < 0 {
				distinct = append(distinct, b)
			}
		}
		slices.Sort(distinct)

		slots = append(slots, slot{
			offset:   i,
			ref:      ref,
			altBases: altBases,
			alleles:  append([]byte{ref}, distinct...),
		})
	}
	return slots
}

// sampleGenotype is a sample column split into its GT and remaining subfields.
type sampleGenotype struct {
	gt   vcf.Genotype
	rest string
}

// parseSampleGenotypes parses the GT subfield of every sample column and
// checks each allele index against the number of ALT alleles. It returns
// nil when the FORMAT column does not lead with GT.
func parseSampleGenotypes(rec *vcf.Record) ([]sampleGenotype, error) {
	if !leadsWithGT(rec.Format) {
		return nil, nil
	}

	samples := make([]sampleGenotype, len(rec.Samples))
	for i, col := range rec.Samples {
		token, rest := vcf.SplitSampleGenotype(col)
		gt, err := vcf.ParseGenotype(token)
		if err != nil {
			return nil, &GenotypeError{Sample: i, Genotype: token, Message: err.Error()}
		}
		for _, a := range gt.Alleles {
			if a > len(rec.Alts) {
				return nil, &GenotypeError{
					Sample:   i,
					Genotype: token,
					Message:  fmt.Sprintf("allele index %d exceeds %d ALT alleles", a, len(rec.Alts)),
				}
			}
		}
		samples[i] = sampleGenotype{gt: gt, rest: rest}
	}
	return samples, nil
}

func leadsWithGT(format string) bool {
	key, _, _ := strings.Cut(format, ":")
	return key == "GT"
}

// encode rewrites each sample's genotype against the slot's allele list.
// Missing alleles stay missing and the separator is always "/".
func (s *slot) encode(samples []sampleGenotype) []string {
	out := make([]string, len(samples))
	for i, sg := range samples {
		local := vcf.Genotype{Alleles: make([]int, len(sg.gt.Alleles))}
		for j, a := range sg.gt.Alleles {
			switch a {
			case vcf.MissingAllele:
				local.Alleles[j] = vcf.MissingAllele
			case 0:
				local.Alleles[j] = 0
			default:
				local.Alleles[j] = s.localIndex(s.altBases[a-1])
			}
		}
		out[i] = local.String() + sg.rest
	}
	return out
}

// SplitMulti yields one single-base record per variable column of a
// multi-allelic substitution block. Each column gets its own allele list:
// the REF base at index 0 followed by the distinct ALT bases in ascending
// order, and sample genotypes are re-encoded against that list.
// An invalid genotype yields a single *GenotypeError and ends the sequence,
// whether or not any column varies.
func SplitMulti(rec *vcf.Record, tag string) iter.Seq2[*vcf.Record, error] {
	return func(yield func(*vcf.Record, error) bool) {
		// Genotypes are checked even when no column varies.
		samples, err := parseSampleGenotypes(rec)
		if err != nil {
			yield(nil, err)
			return
		}

		slots := activeSlots(rec)

		info := vcf.AppendInfoFlag(rec.Info, tag)
		for i := range slots {
			s := &slots[i]

			alts := make([]string, len(s.alleles)-1)
			for j, b := range s.alleles[1:] {
				alts[j] = string(b)
			}

			out := &vcf.Record{
				Chrom:   rec.Chrom,
				Pos:     rec.Pos + int64(s.offset),
				ID:      rec.ID,
				Ref:     string(s.ref),
				Alts:    alts,
				Qual:    rec.Qual,
				Filter:  rec.Filter,
				Info:    info,
				Format:  rec.Format,
				Samples: rec.Samples,
			}
			if samples != nil {
				out.Samples = s.encode(samples)
			}
			if !yield(out, nil) {
				return
			}
		}
	}
}
