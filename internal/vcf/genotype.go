package vcf

import (
	"fmt"
	"strconv"
	"strings"
)

// MissingAllele marks a "." allele in a genotype.
const MissingAllele = -1

// Genotype is a parsed GT token such as "0/1", "1|2" or "./.".
// Alleles hold VCF allele indices: 0 is the reference, i is the i-th ALT.
type Genotype struct {
	Alleles []int
	Phased  bool
}

// ParseGenotype parses a GT token.
func ParseGenotype(token string) (Genotype, error) {
	if token == "" {
		return Genotype{}, fmt.Errorf("empty genotype")
	}

	var g Genotype
	g.Phased = strings.IndexByte(token, '|') >= 0

	for rest := token; ; {
		sep := strings.IndexAny(rest, "/|")
		var allele string
		if sep >= 0 {
			allele = rest[:sep]
		} else {
			allele = rest
		}

		if allele == "." {
			g.Alleles = append(g.Alleles, MissingAllele)
		} else {
			idx, err := strconv.Atoi(allele)
			if err != nil || idx < 0 {
				return Genotype{}, fmt.Errorf("invalid allele %q in genotype %q", allele, token)
			}
			g.Alleles = append(g.Alleles, idx)
		}

		if sep < 0 {
			break
		}
		rest = rest[sep+1:]
	}

	return g, nil
}

// String formats the genotype back into a GT token.
func (g Genotype) String() string {
	sep := byte('/')
	if g.Phased {
		sep = '|'
	}

	var b strings.Builder
	for i, a := range g.Alleles {
		if i > 0 {
			b.WriteByte(sep)
		}
		if a == MissingAllele {
			b.WriteByte('.')
		} else {
			b.WriteString(strconv.Itoa(a))
		}
	}
	return b.String()
}

// SplitSampleGenotype separates the leading GT subfield of a sample column
// from the remaining colon-delimited subfields (returned with their colon).
func SplitSampleGenotype(sample string) (gt, rest string) {
	if i := strings.IndexByte(sample, ':'); i >= 0 {
		return sample[:i], sample[i:]
	}
	return sample, ""
}
