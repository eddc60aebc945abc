package filter

import (
	"fmt"
	"strings"

	"github.com/inodb/vibe-filter/internal/field"
	"github.com/inodb/vibe-filter/internal/vcf"
)

// AttributeFilter compares a field value against a scalar or a []any
// comparison value.
type AttributeFilter struct {
	field    *field.Field
	accessor Accessor
	operator field.Operator
	value    any
	strict   bool
	regions  []Region
}

// NewAttributeFilter creates a filter on f. The operator must be valid for
// the field type, and value must be present unless the operator takes none.
func NewAttributeFilter(f *field.Field, accessor Accessor, op field.Operator, value any, strict bool) (*AttributeFilter, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: no field", ErrInvalidFilter)
	}
	if !f.Type().Supports(op) {
		return nil, fmt.Errorf("%w: operator %s is not valid for %s field %s", ErrInvalidFilter, op, f.Type(), f.Name())
	}
	if op.NeedsValue() {
		if value == nil {
			return nil, fmt.Errorf("%w: %s %s needs a value", ErrInvalidFilter, f.Name(), op)
		}
		if list, ok := value.([]any); ok && len(list) == 0 {
			return nil, fmt.Errorf("%w: %s %s needs a value", ErrInvalidFilter, f.Name(), op)
		}
	}
	return &AttributeFilter{
		field:    f,
		accessor: accessor,
		operator: op,
		value:    value,
		strict:   strict,
	}, nil
}

// WithRegions returns a copy of the filter restricted to regions.
func (a *AttributeFilter) WithRegions(regions []Region) *AttributeFilter {
	c := *a
	c.regions = regions
	return &c
}

func (a *AttributeFilter) Field() *field.Field { return a.field }
func (a *AttributeFilter) Accessor() Accessor { return a.accessor }
func (a *AttributeFilter) Operator() field.Operator { return a.operator }
func (a *AttributeFilter) Value() any { return a.value }
func (a *AttributeFilter) Strict() bool { return a.strict }
func (a *AttributeFilter) Regions() []Region { return a.regions }

// Filter evaluates the filter on r. A missing value passes unless the
// filter is strict. When the extracted value is a list the accessor
// quantifies over its elements; otherwise, when the comparison value is a
// list, it quantifies over the comparison values. With lists on both sides
// an element matches when it matches any comparison value.
func (a *AttributeFilter) Filter(r *vcf.Record) bool {
	extracted := a.field.Extract(r)
	if extracted == nil {
		return !a.strict
	}

	values, extractedList := extracted.([]any)
	comparisons, comparisonList := a.value.([]any)

	switch {
	case extractedList && comparisonList:
		return a.accessor.quantify(values, func(v any) bool {
			return Any.quantify(comparisons, func(c any) bool {
				return a.operator.Query(v, c)
			})
		})
	case extractedList:
		return a.accessor.quantify(values, func(v any) bool {
			return a.operator.Query(v, a.value)
		})
	case comparisonList:
		return a.accessor.quantify(comparisons, func(c any) bool {
			return a.operator.Query(extracted, c)
		})
	default:
		return a.operator.Query(extracted, a.value)
	}
}

// Display returns text such as "ANY FILTER equals [LowQual PASS] (strict)".
func (a *AttributeFilter) Display() string {
	var b strings.Builder
	_, valueList := a.value.([]any)
	if a.field.IsList() || valueList {
		b.WriteString(a.accessor.String())
		b.WriteByte(' ')
	}
	b.WriteString(a.field.Name())
	b.WriteByte(' ')
	b.WriteString(a.operator.String())
	if a.value != nil {
		fmt.Fprintf(&b, " %v", a.value)
	}
	if a.strict {
		b.WriteString(" (strict)")
	}
	return b.String()
}

// ContigRegions returns one whole-contig region per name. Lengths come from
// the header declarations; undeclared lengths leave the region unbounded.
func ContigRegions(names []string, contigs []vcf.ContigLine) []Region {
	lengths := make(map[string]int64, len(contigs))
	for _, c := range contigs {
		lengths[c.ID] = c.Length
	}
	regions := make([]Region, 0, len(names))
	for _, name := range names {
		regions = append(regions, Region{Chrom: name, Start: 1, End: lengths[name]})
	}
	return regions
}
