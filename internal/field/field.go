// Package field models the queryable attributes of VCF records.
package field

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/inodb/vibe-filter/internal/vcf"
)

// Standard field names.
const (
	Chrom  = "CHROM"
	Pos    = "POS"
	ID     = "ID"
	Qual   = "QUAL"
	Filter = "FILTER"
)

// StandardNames lists the standard fields in column order.
var StandardNames = []string{Chrom, Pos, ID, Qual, Filter}

// extractor pulls a value out of a record. It returns nil, a scalar
// (string, int64, float64, bool) or a []any of scalars.
type extractor func(*vcf.Record) any

// Field is an immutable, typed descriptor of one queryable attribute.
type Field struct {
	name        string
	category    Category
	typ         Type
	list        bool
	options     []string
	description string
	extract     extractor
}

// NewStandard creates one of the standard column fields. Options are the
// known values for CHROM and FILTER.
func NewStandard(name string, options []string) (*Field, error) {
	f := &Field{name: name, category: Standard, options: options}
	switch name {
	case Chrom:
		f.typ = Text
		f.description = "Chromosome"
		f.extract = func(r *vcf.Record) any { return r.Chrom }
	case Pos:
		f.typ = Integer
		f.description = "Position"
		f.extract = func(r *vcf.Record) any { return r.Pos }
	case ID:
		f.typ = Text
		f.description = "Variant identifier"
		f.extract = func(r *vcf.Record) any {
			if r.ID == "" || r.ID == vcf.Missing {
				return nil
			}
			return r.ID
		}
	case Qual:
		f.typ = Float
		f.description = "Quality"
		f.extract = func(r *vcf.Record) any {
			if !r.HasQual {
				return nil
			}
			return r.Qual
		}
	case Filter:
		f.typ = Text
		f.list = true
		f.description = "Filter tags"
		f.extract = func(r *vcf.Record) any {
			if len(r.Filters) == 0 {
				return nil
			}
			tags := make([]any, len(r.Filters))
			for i, t := range r.Filters {
				tags[i] = t
			}
			return tags
		}
	default:
		return nil, fmt.Errorf("unknown standard field %q", name)
	}
	return f, nil
}

// FromInfo creates a field for an ##INFO declaration. Number=0 and
// Number=1 are scalar; every other count is a list. Flags are always
// scalar.
func FromInfo(info vcf.InfoLine, options []string) *Field {
	typ := TypeFromHeader(info.Type)
	list := typ != Flag && info.Number != "0" && info.Number != "1"
	return &Field{
		name:        info.ID,
		category:    Info,
		typ:         typ,
		list:        list,
		options:     options,
		description: info.Description,
		extract:     infoExtractor(info.ID, typ, list),
	}
}

func infoExtractor(key string, typ Type, list bool) extractor {
	if typ == Flag {
		return func(r *vcf.Record) any {
			_, ok := r.Info[key]
			return ok
		}
	}

	parse := valueParser(typ)
	if !list {
		return func(r *vcf.Record) any {
			raw, ok := r.Info[key]
			if !ok || raw == vcf.Missing {
				return nil
			}
			return parse(raw)
		}
	}

	return func(r *vcf.Record) any {
		raw, ok := r.Info[key]
		if !ok || raw == vcf.Missing {
			return nil
		}
		parts := strings.Split(raw, ",")
		values := make([]any, 0, len(parts))
		for _, p := range parts {
			if p == vcf.Missing {
				continue
			}
			if v := parse(p); v != nil {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			return nil
		}
		return values
	}
}

// valueParser returns a parser from raw text to a typed scalar. Values that
// do not parse are nil.
func valueParser(typ Type) func(string) any {
	switch typ {
	case Integer:
		return func(s string) any {
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil
			}
			return n
		}
	case Float:
		return func(s string) any {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil
			}
			return f
		}
	default:
		return func(s string) any { return s }
	}
}

func (f *Field) Name() string { return f.name }
func (f *Field) Category() Category { return f.category }
func (f *Field) Type() Type { return f.typ }
func (f *Field) IsList() bool { return f.list }
func (f *Field) Description() string { return f.description }
func (f *Field) Operators() []Operator { return f.typ.Operators() }

// Options returns the known text values of the field, or nil when the
// field is not tracked.
func (f *Field) Options() []string {
	return f.options
}

// Extract returns the field value of r: nil, a scalar or a []any.
func (f *Field) Extract(r *vcf.Record) any {
	return f.extract(r)
}

// ParseValue converts user text into a comparison value for this field.
func (f *Field) ParseValue(s string) (any, error) {
	s = strings.TrimSpace(s)
	switch f.typ {
	case Integer:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s expects an integer, got %q", f.name, s)
		}
		return n, nil
	case Float:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%s expects a number, got %q", f.name, s)
		}
		return v, nil
	case Flag:
		return nil, nil
	default:
		if s == "" {
			return nil, fmt.Errorf("%s expects a non-empty value", f.name)
		}
		return s, nil
	}
}

// Display returns a human readable description of the field.
func (f *Field) Display() string {
	var b strings.Builder
	b.WriteString(f.name)
	b.WriteString(" (")
	b.WriteString(f.typ.String())
	if f.list {
		b.WriteString(" list")
	}
	b.WriteByte(')')
	if n := len(f.options); n > 0 {
		fmt.Fprintf(&b, " %d options", n)
	}
	if f.description != "" {
		b.WriteString(": ")
		b.WriteString(f.description)
	}
	return b.String()
}

func (f *Field) String() string {
	return f.name
}

// Descriptor is the serialisable form of a Field.
type Descriptor struct {
	Name        string
	Category    Category
	Type        Type
	List        bool
	Options     []string
	Description string
}

// Descriptor returns the serialisable form of f.
func (f *Field) Descriptor() Descriptor {
	return Descriptor{
		Name:        f.name,
		Category:    f.category,
		Type:        f.typ,
		List:        f.list,
		Options:     f.options,
		Description: f.description,
	}
}

// Restore rebuilds a Field from its descriptor, binding a fresh extractor.
func Restore(d Descriptor) (*Field, error) {
	switch d.Category {
	case Standard:
		return NewStandard(d.Name, d.Options)
	case Info:
		return &Field{
			name:        d.Name,
			category:    Info,
			typ:         d.Type,
			list:        d.List,
			options:     d.Options,
			description: d.Description,
			extract:     infoExtractor(d.Name, d.Type, d.List),
		}, nil
	default:
		return nil, fmt.Errorf("unknown field category %d", d.Category)
	}
}
