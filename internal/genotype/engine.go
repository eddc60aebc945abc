// Package genotype stores per-record sample genotypes as a bit matrix and
// answers genotype constraints with word-parallel intersections.
package genotype

import (
	"context"
	"fmt"
	"runtime"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/inodb/vibe-filter/internal/vcf"
)

// Clause requires at least MinMatch of Samples to have one of Types.
type Clause struct {
	Samples  []string
	Types    []vcf.GenotypeType
	MinMatch int
}

func (c Clause) String() string {
	return fmt.Sprintf("Clause{%v %d %v}", c.Samples, c.MinMatch, c.Types)
}

// SearchEngine is an N x W matrix of genotype bits. Row r holds, for every
// sample s, the bit 4*s+type of its canonical genotype type. The matrix is
// read-only and safe for concurrent queries.
type SearchEngine struct {
	samples []string
	pos     map[string]int
	words   []uint64
	width   int
	rows    int
}

// NewSearchEngine wraps a flat matrix of rows*width words.
func NewSearchEngine(words []uint64, samples []string, rows int) (*SearchEngine, error) {
	width := Words(vcf.NumCanonicalTypes * len(samples))
	if len(words) != rows*width {
		return nil, fmt.Errorf("genotype matrix has %d words, want %d rows of %d", len(words), rows, width)
	}
	return newSearchEngine(words, samples, width, rows), nil
}

func newSearchEngine(words []uint64, samples []string, width, rows int) *SearchEngine {
	pos := make(map[string]int, len(samples))
	for i, s := range samples {
		pos[s] = i
	}
	return &SearchEngine{samples: samples, pos: pos, words: words, width: width, rows: rows}
}

// Samples returns the sample names in column order.
func (e *SearchEngine) Samples() []string { return e.samples }

// Rows returns the number of rows.
func (e *SearchEngine) Rows() int { return e.rows }

// Width returns the number of words per row.
func (e *SearchEngine) Width() int { return e.width }

// Words returns the flat matrix. Callers must not modify it.
func (e *SearchEngine) Words() []uint64 { return e.words }

// Row returns the words of row r.
func (e *SearchEngine) Row(r int) []uint64 {
	return e.words[r*e.width : (r+1)*e.width]
}

// Type returns the canonical genotype type of sample s in row r.
func (e *SearchEngine) Type(r, s int) vcf.GenotypeType {
	for _, t := range vcf.CanonicalTypes() {
		if Get(e.words, vcf.NumCanonicalTypes*s+int(t), r*e.width) {
			return t
		}
	}
	return vcf.NoCall
}

// Mask builds the row mask of a clause. Unknown sample names are ignored.
func (e *SearchEngine) Mask(c Clause) []uint64 {
	mask := make([]uint64, e.width)
	for _, name := range c.Samples {
		s, ok := e.pos[name]
		if !ok {
			continue
		}
		for _, t := range c.Types {
			Set(mask, vcf.NumCanonicalTypes*s+int(t.Canonical()), 0)
		}
	}
	return mask
}

type compiled struct {
	mask     []uint64
	minMatch int
}

func (e *SearchEngine) compile(clauses []Clause) []compiled {
	out := make([]compiled, len(clauses))
	for i, c := range clauses {
		out[i] = compiled{mask: e.Mask(c), minMatch: c.MinMatch}
	}
	return out
}

func (e *SearchEngine) match(r int, clauses []compiled) bool {
	offset := r * e.width
	for _, c := range clauses {
		if IntersectionAt(e.words, c.mask, offset, 0, e.width) < c.minMatch {
			return false
		}
	}
	return true
}

// Query reports whether row r satisfies every clause.
func (e *SearchEngine) Query(r int, clauses []Clause) bool {
	return e.match(r, e.compile(clauses))
}

// QueryAll returns the rows satisfying every clause, in ascending order.
func (e *SearchEngine) QueryAll(clauses []Clause) []int {
	cs := e.compile(clauses)
	var rows []int
	for r := 0; r < e.rows; r++ {
		if e.match(r, cs) {
			rows = append(rows, r)
		}
	}
	return rows
}

// Matches returns the rows satisfying every clause as a bitmap.
func (e *SearchEngine) Matches(clauses []Clause) *roaring.Bitmap {
	cs := e.compile(clauses)
	bm := roaring.New()
	for r := 0; r < e.rows; r++ {
		if e.match(r, cs) {
			bm.Add(uint32(r))
		}
	}
	return bm
}

// QueryAllParallel is QueryAll split across workers. Workers < 1 uses
// GOMAXPROCS.
func (e *SearchEngine) QueryAllParallel(ctx context.Context, clauses []Clause, workers int) (*roaring.Bitmap, error) {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	cs := e.compile(clauses)
	chunk := (e.rows + workers - 1) / workers
	if chunk == 0 {
		return roaring.New(), nil
	}

	parts := make([]*roaring.Bitmap, workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := min(start+chunk, e.rows)
		parts[w] = roaring.New()
		if start >= end {
			continue
		}
		bm := parts[w]
		g.Go(func() error {
			for r := start; r < end; r++ {
				if r&0xfff == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				if e.match(r, cs) {
					bm.Add(uint32(r))
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return roaring.FastOr(parts...), nil
}
