// Package index builds and persists the per-file query index: field
// statistics, contig and filter enumerations, and the genotype matrix.
package index

import (
	"github.com/inodb/vibe-filter/internal/field"
	"github.com/inodb/vibe-filter/internal/filter"
	"github.com/inodb/vibe-filter/internal/genotype"
	"github.com/inodb/vibe-filter/internal/vcf"
)

// VcfIndex is the immutable result of indexing one file.
type VcfIndex struct {
	lines   int64
	fields  []*field.Field
	contigs []vcf.ContigLine
	filters []string
	samples []string
	engine  *genotype.SearchEngine
}

// Lines returns the number of records indexed.
func (x *VcfIndex) Lines() int64 { return x.lines }

// Fields returns the standard fields followed by one field per INFO
// declaration, in header order.
func (x *VcfIndex) Fields() []*field.Field { return x.fields }

// Contigs returns the contigs seen in records, in first-seen order. Lengths
// come from the header and are 0 when undeclared.
func (x *VcfIndex) Contigs() []vcf.ContigLine { return x.contigs }

// Filters returns the FILTER tags seen in records, in first-seen order.
func (x *VcfIndex) Filters() []string { return x.filters }

// Samples returns the sample names.
func (x *VcfIndex) Samples() []string { return x.samples }

// Engine returns the genotype search engine.
func (x *VcfIndex) Engine() *genotype.SearchEngine { return x.engine }

// Field returns the field with the given name.
func (x *VcfIndex) Field(name string) (*field.Field, bool) {
	for _, f := range x.fields {
		if f.Name() == name {
			return f, true
		}
	}
	return nil, false
}

// ContigNames returns the contig names in index order.
func (x *VcfIndex) ContigNames() []string {
	names := make([]string, len(x.contigs))
	for i, c := range x.contigs {
		names[i] = c.ID
	}
	return names
}

// FilterParser returns a text filter parser bound to this index.
func (x *VcfIndex) FilterParser() *filter.Parser {
	return filter.NewParser(x.fields, x.samples, x.contigs)
}
