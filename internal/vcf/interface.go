// Package vcf provides VCF file parsing functionality.
package vcf

// LineSource is the interface for readers that yield raw VCF lines.
type LineSource interface {
	// Next reads the next non-empty line.
	// Returns nil, nil when there are no more lines.
	Next() (*Line, error)

	// Close closes the reader and releases resources.
	Close() error
}
