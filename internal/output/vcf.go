// Package output provides VCF output formatting.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/splitmnp/internal/vcf"
)

// VCFWriter writes header lines verbatim and split records as VCF lines.
type VCFWriter struct {
	w       *bufio.Writer
	infoTag string // INFO flag declared before #CHROM, empty to leave headers untouched
}

// NewVCFWriter creates a new VCF output writer.
func NewVCFWriter(w io.Writer) *VCFWriter {
	return &VCFWriter{
		w: bufio.NewWriter(w),
	}
}

// DeclareInfoTag makes the writer insert an ##INFO line for the given flag
// right before the #CHROM header line.
func (vw *VCFWriter) DeclareInfoTag(tag string) {
	vw.infoTag = tag
}

// WriteLine writes a header or pass-through line unchanged.
func (vw *VCFWriter) WriteLine(text string) error {
	if vw.infoTag != "" && strings.HasPrefix(text, "#CHROM") {
		if _, err := vw.w.WriteString(InfoHeaderLine(vw.infoTag) + "\n"); err != nil {
			return err
		}
	}
	if _, err := vw.w.WriteString(text); err != nil {
		return err
	}
	return vw.w.WriteByte('\n')
}

// Write writes a single record as a VCF line.
func (vw *VCFWriter) Write(rec *vcf.Record) error {
	_, err := vw.w.WriteString(FormatRecord(rec) + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (vw *VCFWriter) Flush() error {
	return vw.w.Flush()
}

// InfoHeaderLine returns the ##INFO meta line declaring a split flag.
func InfoHeaderLine(tag string) string {
	return fmt.Sprintf(
		"##INFO=<ID=%s,Number=0,Type=Flag,Description=\"Single-base substitution split from a multi-nucleotide or complex record\">",
		tag,
	)
}

// FormatRecord renders a record as a tab-delimited VCF line without newline.
func FormatRecord(rec *vcf.Record) string {
	var lb strings.Builder
	lb.Grow(128)

	lb.WriteString(rec.Chrom)
	lb.WriteByte('\t')
	lb.WriteString(strconv.FormatInt(rec.Pos, 10))
	lb.WriteByte('\t')
	lb.WriteString(rec.ID)
	lb.WriteByte('\t')
	lb.WriteString(rec.Ref)
	lb.WriteByte('\t')
	lb.WriteString(rec.Alt())
	lb.WriteByte('\t')
	lb.WriteString(rec.Qual)
	lb.WriteByte('\t')
	lb.WriteString(rec.Filter)
	lb.WriteByte('\t')
	lb.WriteString(rec.Info)

	// Append FORMAT + sample columns if present
	if rec.HasSamples() {
		lb.WriteByte('\t')
		lb.WriteString(rec.Format)
		for _, s := range rec.Samples {
			lb.WriteByte('\t')
			lb.WriteString(s)
		}
	}

	return lb.String()
}
