package split

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/splitmnp/internal/vcf"
)

func collectMulti(t *testing.T, rec *vcf.Record) []*vcf.Record {
	t.Helper()
	var out []*vcf.Record
	for r, err := range SplitMulti(rec, DefaultInfoTag) {
		require.NoError(t, err)
		out = append(out, r)
	}
	return out
}

func TestSplitMulti_AltMatchingReference(t *testing.T) {
	// Second ALT carries the reference base at the first column.
	rec := &vcf.Record{
		Chrom: "2", Pos: 500, ID: ".", Ref: "AC", Alts: []string{"GT", "AT"},
		Qual: "300", Filter: "PASS", Info: "TC=40",
		Format: "GT:GQ", Samples: []string{"1/2:70", "0/1:50"},
	}

	out := collectMulti(t, rec)
	require.Len(t, out, 2)

	assert.Equal(t, int64(500), out[0].Pos)
	assert.Equal(t, "A", out[0].Ref)
	assert.Equal(t, "G", out[0].Alt())
	assert.Equal(t, []string{"1/0:70", "0/1:50"}, out[0].Samples)

	assert.Equal(t, int64(501), out[1].Pos)
	assert.Equal(t, "C", out[1].Ref)
	assert.Equal(t, "T", out[1].Alt())
	assert.Equal(t, []string{"1/1:70", "0/1:50"}, out[1].Samples)

	for _, r := range out {
		assert.Equal(t, "TC=40;FromComplex", r.Info)
		assert.Equal(t, "GT:GQ", r.Format)
		assert.Equal(t, "300", r.Qual)
		assert.Equal(t, "PASS", r.Filter)
	}
}

func TestSplitMulti_InvariantColumnSkipped(t *testing.T) {
	rec := &vcf.Record{
		Chrom: "2", Pos: 900, Ref: "ATG", Alts: []string{"CTA", "CTC"},
		Info: "TC=12", Format: "GT:GQ", Samples: []string{"1/2:20", "./1:10"},
	}

	out := collectMulti(t, rec)
	require.Len(t, out, 2)

	assert.Equal(t, int64(900), out[0].Pos)
	assert.Equal(t, "C", out[0].Alt())
	assert.Equal(t, []string{"1/1:20", "./1:10"}, out[0].Samples)

	assert.Equal(t, int64(902), out[1].Pos)
	assert.Equal(t, "G", out[1].Ref)
	assert.Equal(t, "A,C", out[1].Alt())
	assert.Equal(t, []string{"1/2:20", "./1:10"}, out[1].Samples)
}

func TestSplitMulti_SortedAlleles(t *testing.T) {
	// ALT order T, C, G must not change the per-column allele order.
	rec := &vcf.Record{
		Chrom: "1", Pos: 1, Ref: "AA", Alts: []string{"TA", "CA", "GA"},
		Format: "GT", Samples: []string{"1/2", "3/3", "0/1"},
	}

	out := collectMulti(t, rec)
	require.Len(t, out, 1)
	assert.Equal(t, "C,G,T", out[0].Alt())
	assert.Equal(t, []string{"3/1", "2/2", "0/3"}, out[0].Samples)
}

func TestSplitMulti_DuplicateBases(t *testing.T) {
	rec := &vcf.Record{
		Chrom: "1", Pos: 1, Ref: "AC", Alts: []string{"GC", "GT"},
		Format: "GT", Samples: []string{"1/2"},
	}

	out := collectMulti(t, rec)
	require.Len(t, out, 2)
	assert.Equal(t, "G", out[0].Alt())
	assert.Equal(t, []string{"1/1"}, out[0].Samples)
	assert.Equal(t, "T", out[1].Alt())
	assert.Equal(t, []string{"0/1"}, out[1].Samples)
}

func TestSplitMulti_PhasedBecomesUnphased(t *testing.T) {
	rec := &vcf.Record{
		Chrom: "1", Pos: 1, Ref: "AC", Alts: []string{"GT", "CT"},
		Format: "GT:DP", Samples: []string{"2|1:12", ".|.:0"},
	}

	out := collectMulti(t, rec)
	require.Len(t, out, 2)
	assert.Equal(t, "C,G", out[0].Alt())
	assert.Equal(t, []string{"1/2:12", "./.:0"}, out[0].Samples)
	assert.Equal(t, []string{"1/1:12", "./.:0"}, out[1].Samples)
}

func TestSplitMulti_SitesOnly(t *testing.T) {
	rec := &vcf.Record{Chrom: "1", Pos: 1, Ref: "AC", Alts: []string{"GT", "AT"}, Info: "."}

	out := collectMulti(t, rec)
	require.Len(t, out, 2)
	assert.Empty(t, out[0].Samples)
	assert.False(t, out[0].HasSamples())
	assert.Equal(t, "FromComplex", out[0].Info)
}

func TestSplitMulti_FormatWithoutGT(t *testing.T) {
	rec := &vcf.Record{
		Chrom: "1", Pos: 1, Ref: "AC", Alts: []string{"GT", "AT"},
		Format: "DP", Samples: []string{"12"},
	}

	out := collectMulti(t, rec)
	require.Len(t, out, 2)
	assert.Equal(t, []string{"12"}, out[0].Samples)
}

func TestSplitMulti_GenotypeErrors(t *testing.T) {
	tests := []struct {
		name   string
		sample string
		msg    string
	}{
		{"index past ALT count", "1/3:5", "allele index 3 exceeds 2 ALT alleles"},
		{"non-numeric allele", "x/1:5", "invalid allele"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &vcf.Record{
				Chrom: "1", Pos: 1, Ref: "AC", Alts: []string{"GT", "AT"},
				Format: "GT:GQ", Samples: []string{"0/1:9", tt.sample},
			}

			var errs []error
			var records int
			for r, err := range SplitMulti(rec, DefaultInfoTag) {
				if err != nil {
					errs = append(errs, err)
					continue
				}
				if r != nil {
					records++
				}
			}

			require.Len(t, errs, 1)
			assert.Zero(t, records)

			var ge *GenotypeError
			require.ErrorAs(t, errs[0], &ge)
			assert.Equal(t, 1, ge.Sample)
			assert.Contains(t, ge.Message, tt.msg)
			assert.Contains(t, ge.Error(), "sample 2 genotype")
		})
	}
}

func TestSplitMulti_InvariantBlockValidatesGenotypes(t *testing.T) {
	rec := &vcf.Record{
		Chrom: "1", Pos: 200, Ref: "AC", Alts: []string{"AC", "AC"},
		Format: "GT", Samples: []string{"1/9"},
	}

	var errs []error
	for r, err := range SplitMulti(rec, DefaultInfoTag) {
		require.Nil(t, r)
		errs = append(errs, err)
	}

	require.Len(t, errs, 1)
	var ge *GenotypeError
	require.ErrorAs(t, errs[0], &ge)
	assert.Contains(t, ge.Message, "allele index 9 exceeds 2 ALT alleles")
}

func TestSplitMulti_InvariantBlockEmitsNothing(t *testing.T) {
	rec := &vcf.Record{
		Chrom: "1", Pos: 200, Ref: "AC", Alts: []string{"AC", "AC"},
		Format: "GT", Samples: []string{"1/2"},
	}
	assert.Empty(t, collectMulti(t, rec))
}

func TestGenotypeError_Name(t *testing.T) {
	err := &GenotypeError{Sample: 1, Name: "NA12891", Genotype: "1/4", Message: "bad"}
	assert.Equal(t, `sample NA12891 genotype "1/4": bad`, err.Error())

	err.Name = ""
	assert.Equal(t, `sample 2 genotype "1/4": bad`, err.Error())
}

func TestSplitMulti_Deterministic(t *testing.T) {
	rec := &vcf.Record{
		Chrom: "1", Pos: 1, Ref: "ACGT", Alts: []string{"TGCA", "GGCT", "CCGA"},
		Format: "GT", Samples: []string{"1/2", "2/3", "3/1", "./0"},
	}

	first := collectMulti(t, rec)
	second := collectMulti(t, rec)
	assert.Equal(t, first, second)
}
