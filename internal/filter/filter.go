// Package filter provides record predicates over fields and genotypes.
package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/inodb/vibe-filter/internal/vcf"
)

// ErrInvalidFilter is returned when a filter cannot be built from its input.
var ErrInvalidFilter = errors.New("invalid filter")

// Filter is a predicate over records.
type Filter interface {
	// Filter reports whether the record passes.
	Filter(r *vcf.Record) bool

	// Display returns a human readable description.
	Display() string

	// Regions returns the coordinate ranges the filter is restricted to,
	// or nil when it applies everywhere.
	Regions() []Region
}

// Accessor quantifies a predicate over multiple values.
type Accessor uint8

const (
	All Accessor = iota
	Any
	None
)

func (a Accessor) String() string {
	switch a {
	case All:
		return "ALL"
	case Any:
		return "ANY"
	case None:
		return "NONE"
	default:
		return fmt.Sprintf("Accessor(%d)", a)
	}
}

// ParseAccessor parses ALL, ANY or NONE, ignoring case.
func ParseAccessor(s string) (Accessor, error) {
	switch strings.ToUpper(s) {
	case "ALL":
		return All, nil
	case "ANY":
		return Any, nil
	case "NONE":
		return None, nil
	}
	return 0, fmt.Errorf("%w: unknown accessor %q", ErrInvalidFilter, s)
}

// quantify applies the accessor to match over values. Over an empty
// list ALL and NONE hold and ANY does not.
func (a Accessor) quantify(values []any, match func(any) bool) bool {
	switch a {
	case All:
		for _, v := range values {
			if !match(v) {
				return false
			}
		}
		return true
	case None:
		for _, v := range values {
			if match(v) {
				return false
			}
		}
		return true
	default:
		for _, v := range values {
			if match(v) {
				return true
			}
		}
		return false
	}
}

// Set is a conjunction of filters.
type Set []Filter

// Filter reports whether r passes every filter in the set. Evaluation
// stops at the first failure.
func (s Set) Filter(r *vcf.Record) bool {
	for _, f := range s {
		if !f.Filter(r) {
			return false
		}
	}
	return true
}

// Display joins the member descriptions with AND.
func (s Set) Display() string {
	parts := make([]string, len(s))
	for i, f := range s {
		parts[i] = f.Display()
	}
	return strings.Join(parts, " AND ")
}

// Regions returns the union of the member regions.
func (s Set) Regions() []Region {
	var regions []Region
	for _, f := range s {
		regions = append(regions, f.Regions()...)
	}
	return regions
}

// Samples returns the sample filters of the set.
func (s Set) Samples() []*SampleFilter {
	var out []*SampleFilter
	for _, f := range s {
		if sf, ok := f.(*SampleFilter); ok {
			out = append(out, sf)
		}
	}
	return out
}

// WithoutSamples returns the set minus its sample filters.
func (s Set) WithoutSamples() Set {
	out := make(Set, 0, len(s))
	for _, f := range s {
		if _, ok := f.(*SampleFilter); !ok {
			out = append(out, f)
		}
	}
	return out
}
