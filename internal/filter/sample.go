package filter

import (
	"fmt"
	"strings"

	"github.com/inodb/vibe-filter/internal/genotype"
	"github.com/inodb/vibe-filter/internal/vcf"
)

// SampleFilter constrains the genotype types of a subset of samples.
type SampleFilter struct {
	samples   []string
	indices   []int
	types     []vcf.GenotypeType
	accept    [vcf.NumCanonicalTypes]bool
	accessor  Accessor
	threshold int
}

// NewSampleFilter creates a sample filter. Sample names are resolved
// against the header sample list; unknown names are an error. Types must
// be canonical. A threshold below 1 means 1 and only applies to ANY.
func NewSampleFilter(samples []string, header []string, types []vcf.GenotypeType, accessor Accessor, threshold int) (*SampleFilter, error) {
	if len(types) == 0 {
		return nil, fmt.Errorf("%w: no genotype types", ErrInvalidFilter)
	}

	pos := make(map[string]int, len(header))
	for i, name := range header {
		pos[name] = i
	}
	sf := &SampleFilter{
		types:     types,
		accessor:  accessor,
		threshold: threshold,
	}
	// A repeated sample counts once.
	seen := make(map[string]bool, len(samples))
	for _, name := range samples {
		idx, ok := pos[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown sample %q", ErrInvalidFilter, name)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		sf.samples = append(sf.samples, name)
		sf.indices = append(sf.indices, idx)
	}
	for _, t := range types {
		if t != t.Canonical() {
			return nil, fmt.Errorf("%w: %s is not a canonical genotype type", ErrInvalidFilter, t)
		}
		sf.accept[t] = true
	}
	if sf.threshold < 1 {
		sf.threshold = 1
	}
	return sf, nil
}

func (s *SampleFilter) Samples() []string { return s.samples }
func (s *SampleFilter) Types() []vcf.GenotypeType { return s.types }
func (s *SampleFilter) Accessor() Accessor { return s.accessor }
func (s *SampleFilter) Threshold() int { return s.threshold }
func (s *SampleFilter) Regions() []Region { return nil }

// Filter counts the requested samples whose canonical genotype type is
// accepted. ALL needs every sample to match, NONE needs no match and ANY
// needs at least the threshold.
func (s *SampleFilter) Filter(r *vcf.Record) bool {
	count := 0
	for _, idx := range s.indices {
		if s.accept[r.GenotypeType(idx).Canonical()] {
			count++
		}
	}
	switch s.accessor {
	case All:
		return count == len(s.indices)
	case None:
		return count == 0
	default:
		return count >= s.threshold
	}
}

// Clause converts the filter into a genotype matrix clause. NONE becomes
// ALL over the complement of the types, since every sample carries exactly
// one type bit.
func (s *SampleFilter) Clause() genotype.Clause {
	switch s.accessor {
	case All:
		return genotype.Clause{Samples: s.samples, Types: s.types, MinMatch: len(s.samples)}
	case None:
		var complement []vcf.GenotypeType
		for _, t := range vcf.CanonicalTypes() {
			if !s.accept[t] {
				complement = append(complement, t)
			}
		}
		return genotype.Clause{Samples: s.samples, Types: complement, MinMatch: len(s.samples)}
	default:
		return genotype.Clause{Samples: s.samples, Types: s.types, MinMatch: s.threshold}
	}
}

// Display returns text such as "ANY 2 of [s1 s2] are [HET HOM_VAR]".
func (s *SampleFilter) Display() string {
	var b strings.Builder
	b.WriteString(s.accessor.String())
	if s.accessor == Any {
		fmt.Fprintf(&b, " %d", s.threshold)
	}
	fmt.Fprintf(&b, " of %v are %v", s.samples, s.types)
	return b.String()
}
