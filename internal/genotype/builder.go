package genotype

import (
	"fmt"

	"github.com/inodb/vibe-filter/internal/vcf"
)

// Builder accumulates genotype rows one record at a time.
type Builder struct {
	samples []string
	width   int
	words   []uint64
	rows    int
}

// NewBuilder creates a builder for the given sample columns.
func NewBuilder(samples []string) *Builder {
	return &Builder{
		samples: samples,
		width:   Words(vcf.NumCanonicalTypes * len(samples)),
	}
}

// Add appends the row of a record. Unavailable and mixed calls are
// stored as no-calls.
func (b *Builder) Add(r *vcf.Record) error {
	if n := r.NumSamples(); n != len(b.samples) {
		return fmt.Errorf("record at line %d has %d samples, header declares %d", r.LineNumber, n, len(b.samples))
	}
	b.AddTypes(r.GenotypeTypes())
	return nil
}

// AddTypes appends a row from per-sample genotype types.
func (b *Builder) AddTypes(types []vcf.GenotypeType) {
	offset := len(b.words)
	b.words = append(b.words, make([]uint64, b.width)...)
	for s := range b.samples {
		t := vcf.NoCall
		if s < len(types) {
			t = types[s].Canonical()
		}
		Set(b.words, vcf.NumCanonicalTypes*s+int(t), offset)
	}
	b.rows++
}

// Rows returns the number of rows added so far.
func (b *Builder) Rows() int { return b.rows }

// Build returns the search engine over the accumulated rows. The builder
// must not be used afterwards.
func (b *Builder) Build() *SearchEngine {
	e := newSearchEngine(b.words, b.samples, b.width, b.rows)
	b.words = nil
	return e
}
