package filter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/inodb/vibe-filter/internal/vcf"
)

// Region is a 1-based, inclusive coordinate range on one contig. An End
// of 0 means the region runs to the end of the contig.
type Region struct {
	Chrom string
	Start int64
	End   int64
}

// ParseRegion parses "chr", "chr:pos", "chr:start-" or "chr:start-end".
// Thousands separators are allowed in coordinates.
func ParseRegion(s string) (Region, error) {
	s = strings.TrimSpace(s)
	chrom, span, hasSpan := strings.Cut(s, ":")
	if chrom == "" {
		return Region{}, fmt.Errorf("%w: empty region", ErrInvalidFilter)
	}
	r := Region{Chrom: chrom, Start: 1}
	if !hasSpan {
		return r, nil
	}

	startText, endText, hasEnd := strings.Cut(span, "-")
	start, err := parseCoordinate(startText)
	if err != nil {
		return Region{}, fmt.Errorf("%w: region %q: %v", ErrInvalidFilter, s, err)
	}
	r.Start, r.End = start, start
	switch {
	case hasEnd && strings.TrimSpace(endText) == "":
		r.End = 0
		return r, nil
	case hasEnd:
		if r.End, err = parseCoordinate(endText); err != nil {
			return Region{}, fmt.Errorf("%w: region %q: %v", ErrInvalidFilter, s, err)
		}
	}
	if r.End < r.Start {
		return Region{}, fmt.Errorf("%w: region %q ends before it starts", ErrInvalidFilter, s)
	}
	return r, nil
}

func parseCoordinate(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid coordinate %q", s)
	}
	if n < 1 {
		return 0, fmt.Errorf("coordinate %d is not positive", n)
	}
	return n, nil
}

// Contains reports whether pos on chrom falls inside the region.
func (r Region) Contains(chrom string, pos int64) bool {
	return chrom == r.Chrom && pos >= r.Start && (r.End == 0 || pos <= r.End)
}

func (r Region) String() string {
	if r.Start <= 1 && r.End == 0 {
		return r.Chrom
	}
	if r.End == 0 {
		return fmt.Sprintf("%s:%d-", r.Chrom, r.Start)
	}
	return fmt.Sprintf("%s:%d-%d", r.Chrom, r.Start, r.End)
}

// end returns the region end with "unbounded" mapped to the maximum.
func (r Region) end() int64 {
	if r.End == 0 {
		return 1<<63 - 1
	}
	return r.End
}

// MergeRegions sorts regions by contig order and position and merges the
// ones that overlap or touch. Contigs missing from order sort after the
// known ones, by name.
func MergeRegions(regions []Region, order []string) []Region {
	if len(regions) == 0 {
		return nil
	}
	rank := make(map[string]int, len(order))
	for i, c := range order {
		rank[c] = i
	}
	contigRank := func(c string) int {
		if i, ok := rank[c]; ok {
			return i
		}
		return len(order)
	}

	sorted := append([]Region(nil), regions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if ra, rb := contigRank(a.Chrom), contigRank(b.Chrom); ra != rb {
			return ra < rb
		}
		if a.Chrom != b.Chrom {
			return a.Chrom < b.Chrom
		}
		return a.Start < b.Start
	})

	merged := []Region{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if r.Chrom == last.Chrom && (last.End == 0 || r.Start <= last.End+1) {
			if last.End != 0 && (r.End == 0 || r.End > last.End) {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// RegionSet answers containment queries over a fixed set of regions.
// It is built once and never modified.
type RegionSet struct {
	byChrom map[string]*regionIndex
}

type regionIndex struct {
	regions []Region
	maxEnd  []int64 // maxEnd[i] = max(end) for regions[:i+1]
}

// NewRegionSet indexes regions for containment queries.
func NewRegionSet(regions []Region) *RegionSet {
	grouped := make(map[string][]Region)
	for _, r := range regions {
		grouped[r.Chrom] = append(grouped[r.Chrom], r)
	}

	s := &RegionSet{byChrom: make(map[string]*regionIndex, len(grouped))}
	for chrom, rs := range grouped {
		sort.Slice(rs, func(i, j int) bool { return rs[i].Start < rs[j].Start })

		// Prefix-max array so a scan from the right can stop early.
		maxEnd := make([]int64, len(rs))
		for i, r := range rs {
			maxEnd[i] = r.end()
			if i > 0 && maxEnd[i-1] > maxEnd[i] {
				maxEnd[i] = maxEnd[i-1]
			}
		}
		s.byChrom[chrom] = &regionIndex{regions: rs, maxEnd: maxEnd}
	}
	return s
}

// Contains reports whether any region covers pos on chrom.
func (s *RegionSet) Contains(chrom string, pos int64) bool {
	idx, ok := s.byChrom[chrom]
	if !ok {
		return false
	}

	// hi is the first region with start > pos; candidates are [0, hi).
	hi := sort.Search(len(idx.regions), func(i int) bool {
		return idx.regions[i].Start > pos
	})
	if hi == 0 {
		return false
	}
	return idx.maxEnd[hi-1] >= pos
}

// RegionFilter passes records inside any of its regions.
type RegionFilter struct {
	regions []Region
	set     *RegionSet
}

// NewRegionFilter creates a region filter.
func NewRegionFilter(regions ...Region) (*RegionFilter, error) {
	if len(regions) == 0 {
		return nil, fmt.Errorf("%w: no regions", ErrInvalidFilter)
	}
	return &RegionFilter{regions: regions, set: NewRegionSet(regions)}, nil
}

func (f *RegionFilter) Filter(r *vcf.Record) bool {
	return f.set.Contains(r.Chrom, r.Pos)
}

func (f *RegionFilter) Regions() []Region {
	return f.regions
}

func (f *RegionFilter) Display() string {
	parts := make([]string, len(f.regions))
	for i, r := range f.regions {
		parts[i] = r.String()
	}
	return "in " + strings.Join(parts, ", ")
}
