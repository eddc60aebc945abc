package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/inodb/vibe-filter/internal/field"
	"github.com/inodb/vibe-filter/internal/vcf"
)

// Parser builds filters from text against the fields, samples and contigs
// of one indexed file.
//
// Attribute filters read "[ALL|ANY|NONE] FIELD OP [VALUE[,VALUE...]]",
// sample filters read "ALL|ANY[:N]|NONE SAMPLE[,SAMPLE...]|* TYPE[,TYPE...]"
// and regions read "CHROM[:START[-END]]".
type Parser struct {
	fields  map[string]*field.Field
	samples []string
	contigs []vcf.ContigLine
}

// NewParser creates a parser.
func NewParser(fields []*field.Field, samples []string, contigs []vcf.ContigLine) *Parser {
	p := &Parser{
		fields:  make(map[string]*field.Field, len(fields)),
		samples: samples,
		contigs: contigs,
	}
	for _, f := range fields {
		p.fields[f.Name()] = f
	}
	return p
}

func (p *Parser) lookup(name string) (*field.Field, bool) {
	if f, ok := p.fields[name]; ok {
		return f, true
	}
	for n, f := range p.fields {
		if strings.EqualFold(n, name) {
			return f, true
		}
	}
	return nil, false
}

// ParseAttribute parses an attribute filter. The accessor defaults to ANY.
// An ANY CHROM equality filter is restricted to the selected contigs.
func (p *Parser) ParseAttribute(expr string, strict bool) (*AttributeFilter, error) {
	tokens := strings.Fields(expr)
	accessor := Any
	if len(tokens) > 2 {
		if a, err := ParseAccessor(tokens[0]); err == nil {
			accessor = a
			tokens = tokens[1:]
		}
	}
	if len(tokens) < 2 {
		return nil, fmt.Errorf("%w: expected FIELD OP [VALUE], got %q", ErrInvalidFilter, expr)
	}

	f, ok := p.lookup(tokens[0])
	if !ok {
		return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidFilter, tokens[0])
	}
	op, err := field.ParseOperator(tokens[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}

	raw := strings.Join(tokens[2:], " ")
	if !op.NeedsValue() {
		if raw != "" {
			return nil, fmt.Errorf("%w: %s takes no value", ErrInvalidFilter, op)
		}
		return NewAttributeFilter(f, accessor, op, nil, strict)
	}

	value, err := parseValue(f, raw)
	if err != nil {
		return nil, err
	}

	if f.Category() == field.Standard && f.Name() == field.Chrom && op == field.TextEqual && accessor == Any {
		names, list := value.([]any)
		if !list {
			names = []any{value}
			value = names
		}
		contigs := make([]string, len(names))
		for i, n := range names {
			contigs[i] = n.(string)
		}
		af, err := NewAttributeFilter(f, accessor, op, value, strict)
		if err != nil {
			return nil, err
		}
		return af.WithRegions(ContigRegions(contigs, p.contigs)), nil
	}
	return NewAttributeFilter(f, accessor, op, value, strict)
}

// parseValue parses a scalar, or a list when the text is bracketed or
// holds commas.
func parseValue(f *field.Field, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	bracketed := strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]")
	if bracketed {
		raw = raw[1 : len(raw)-1]
	}
	if !bracketed && !strings.Contains(raw, ",") {
		v, err := f.ParseValue(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
		return v, nil
	}

	var values []any
	for _, part := range strings.Split(raw, ",") {
		v, err := f.ParseValue(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
		values = append(values, v)
	}
	return values, nil
}

// ParseSample parses a sample filter. "*" selects every sample.
func (p *Parser) ParseSample(expr string) (*SampleFilter, error) {
	tokens := strings.Fields(expr)
	if len(tokens) != 3 {
		return nil, fmt.Errorf("%w: expected ACCESSOR SAMPLES TYPES, got %q", ErrInvalidFilter, expr)
	}

	name, count, hasCount := strings.Cut(tokens[0], ":")
	accessor, err := ParseAccessor(name)
	if err != nil {
		return nil, err
	}
	threshold := 1
	if hasCount {
		if accessor != Any {
			return nil, fmt.Errorf("%w: only ANY takes a count", ErrInvalidFilter)
		}
		if threshold, err = strconv.Atoi(count); err != nil || threshold < 1 {
			return nil, fmt.Errorf("%w: invalid count %q", ErrInvalidFilter, count)
		}
	}

	var samples []string
	if tokens[1] == "*" {
		samples = append(samples, p.samples...)
	} else {
		for _, s := range strings.Split(tokens[1], ",") {
			if s = strings.TrimSpace(s); s != "" {
				samples = append(samples, s)
			}
		}
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no samples selected", ErrInvalidFilter)
	}

	var types []vcf.GenotypeType
	for _, s := range strings.Split(tokens[2], ",") {
		t, err := vcf.ParseGenotypeType(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
		types = append(types, t)
	}

	return NewSampleFilter(samples, p.samples, types, accessor, threshold)
}

// ParseRegions parses one or more regions into a region filter.
func (p *Parser) ParseRegions(exprs ...string) (*RegionFilter, error) {
	regions := make([]Region, 0, len(exprs))
	for _, e := range exprs {
		r, err := ParseRegion(e)
		if err != nil {
			return nil, err
		}
		regions = append(regions, r)
	}
	return NewRegionFilter(regions...)
}
