package vcf

// RecordReader is the interface for sources of decoded records.
type RecordReader interface {
	// Header returns the header of the source.
	Header() *Header

	// Next reads the next record.
	// Returns nil, nil when there are no more records.
	Next() (*Record, error)

	// Close closes the reader and releases resources.
	Close() error

	// LineNumber returns the current line number being processed.
	LineNumber() int
}
