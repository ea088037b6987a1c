// Package vcf provides VCF file parsing functionality.
package vcf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Line is one raw line of a VCF stream with its 1-based line number.
type Line struct {
	Number int
	Text   string
}

// IsHeader reports whether the line is a meta or column header line.
func (l *Line) IsHeader() bool {
	return strings.HasPrefix(l.Text, "#")
}

// SampleNames returns the sample columns of a #CHROM line, those after
// FORMAT. It returns nil for any other line or a sites-only header.
func (l *Line) SampleNames() []string {
	if !strings.HasPrefix(l.Text, "#CHROM") {
		return nil
	}
	fields := strings.Split(l.Text, "\t")
	if len(fields) <= 9 {
		return nil
	}
	return fields[9:]
}

// Parser reads lines from a VCF file.
type Parser struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
}

// NewParser creates a new VCF line reader for the given file.
// Supports both plain VCF and gzipped VCF (.vcf.gz) files.
func NewParser(path string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}

	p := &Parser{file: file}

	// Check for gzip magic bytes
	buf := make([]byte, 2)
	n, err := io.ReadFull(file, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		file.Close()
		return nil, fmt.Errorf("read vcf header: %w", err)
	}

	// Seek back to beginning
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek vcf file: %w", err)
	}

	if n == 2 && buf[0] == 0x1f && buf[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(p.gzipReader)
	} else {
		p.reader = bufio.NewReader(file)
	}

	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader (e.g., stdin).
// Gzip streams are detected by peeking at the first two bytes.
func NewParserFromReader(r io.Reader) (*Parser, error) {
	br := bufio.NewReader(r)
	p := &Parser{reader: br}

	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(p.gzipReader)
	}

	return p, nil
}

// Next reads the next non-empty line.
// Returns nil, nil when there are no more lines.
func (p *Parser) Next() (*Line, error) {
	for {
		text, err := p.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read line %d: %w", p.lineNumber+1, err)
		}
		if err == io.EOF && text == "" {
			return nil, nil
		}
		p.lineNumber++

		text = strings.TrimRight(text, "\r\n")
		if text == "" {
			if err == io.EOF {
				return nil, nil
			}
			continue // Skip empty lines
		}

		return &Line{Number: p.lineNumber, Text: text}, nil
	}
}

// ParseRecord parses a single VCF data line into a Record.
// lineNumber is used for error context only.
func ParseRecord(text string, lineNumber int) (*Record, error) {
	fields := strings.Split(text, "\t")
	if len(fields) < 8 {
		return nil, &ParseError{
			Line:    lineNumber,
			Message: fmt.Sprintf("expected at least 8 columns, found %d", len(fields)),
		}
	}

	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, &ParseError{
			Line:    lineNumber,
			Message: fmt.Sprintf("invalid position: %s", fields[1]),
		}
	}

	rec := &Record{
		Chrom:  fields[0],
		Pos:    pos,
		ID:     fields[2],
		Ref:    fields[3],
		Alts:   strings.Split(fields[4], ","),
		Qual:   fields[5],
		Filter: fields[6],
		Info:   fields[7],
	}

	// Capture FORMAT + sample columns if present
	if len(fields) > 8 {
		rec.Format = fields[8]
		rec.Samples = fields[9:]
	}

	return rec, nil
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// ParseError represents an error during VCF parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vcf parse error at line %d: %s", e.Line, e.Message)
}
