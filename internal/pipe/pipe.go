// Package pipe streams a VCF through a filter set, keeping the first
// matches in memory and optionally writing every match to a file.
package pipe

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/inodb/vibe-filter/internal/filter"
	"github.com/inodb/vibe-filter/internal/genotype"
	"github.com/inodb/vibe-filter/internal/index"
	"github.com/inodb/vibe-filter/internal/tabix"
	"github.com/inodb/vibe-filter/internal/vcf"
)

const (
	// DefaultMaxResults is the number of passing records kept in memory.
	DefaultMaxResults = 50
	// DefaultProgressEvery is the number of records between progress reports.
	DefaultProgressEvery = 1000
)

// ProgressFunc receives the number of records examined, the expected total
// (0 when unknown) and the position being processed.
type ProgressFunc func(lines, total int64, message string)

// Pipe filters one source file.
type Pipe struct {
	source        string
	dest          string
	filters       filter.Set
	maxResults    int
	total         int64
	index         *index.VcfIndex
	progressEvery int
	progress      ProgressFunc
	logger        *zap.Logger
	results       *Results
}

// New creates a pipe over source applying filters. A pipe runs once.
func New(source string, filters filter.Set) *Pipe {
	return &Pipe{
		source:        source,
		filters:       filters,
		maxResults:    DefaultMaxResults,
		progressEvery: DefaultProgressEvery,
		logger:        zap.NewNop(),
		results:       &Results{},
	}
}

// SetDestination sets a file that receives every passing record.
func (p *Pipe) SetDestination(path string) { p.dest = path }

// SetMaxResults sets the number of passing records kept in memory.
func (p *Pipe) SetMaxResults(n int) { p.maxResults = n }

// SetTotal sets the expected record count used in progress reports.
func (p *Pipe) SetTotal(n int64) { p.total = n }

// SetIndex supplies the index of the source. Sample filters are then
// answered from its genotype matrix during linear scans.
func (p *Pipe) SetIndex(x *index.VcfIndex) { p.index = x }

// SetProgress sets the progress callback.
func (p *Pipe) SetProgress(fn ProgressFunc) { p.progress = fn }

// SetProgressEvery sets the number of records between progress reports.
func (p *Pipe) SetProgressEvery(n int) {
	if n > 0 {
		p.progressEvery = n
	}
}

// SetLogger sets the logger.
func (p *Pipe) SetLogger(l *zap.Logger) { p.logger = l }

// Results returns the live results of the run.
func (p *Pipe) Results() *Results { return p.results }

// run holds the state of one Run call.
type run struct {
	*Pipe
	writer *vcf.FileWriter
	set    filter.Set
	// matches holds the row ordinals passing the sample filters when they
	// are answered from the index.
	matches *roaring.Bitmap
	rows    int
}

// Run executes the pipe. Cancelling ctx stops the run early; the partial
// results are returned with Cancelled set and a nil error.
func (p *Pipe) Run(ctx context.Context) (*Results, error) {
	start := time.Now()

	parser, err := vcf.NewParser(p.source)
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	r := &run{Pipe: p, set: p.filters}
	if p.dest != "" {
		if r.writer, err = vcf.Create(p.dest, parser.Header()); err != nil {
			return nil, err
		}
	}

	if regions := p.filters.Regions(); len(regions) > 0 {
		err = r.scanRegions(ctx, parser, filter.MergeRegions(regions, parser.Header().ContigNames()))
	} else {
		r.useIndex()
		err = r.scanLinear(ctx, parser, nil)
	}

	if r.writer != nil {
		if cerr := r.writer.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		p.results.cancel()
		p.logger.Info("filter cancelled", zap.Int64("lines", p.results.Lines()))
		return p.results, nil
	}
	if err != nil {
		return nil, err
	}

	p.logger.Info("filter finished",
		zap.String("path", p.source),
		zap.Int64("lines", p.results.Lines()),
		zap.Int64("filtered", p.results.Filtered()),
		zap.Duration("elapsed", time.Since(start)))
	return p.results, nil
}

// useIndex answers the sample filters from the genotype matrix when the
// index covers the source row for row.
func (r *run) useIndex() {
	samples := r.filters.Samples()
	if r.index == nil || len(samples) == 0 {
		return
	}
	engine := r.index.Engine()
	if int64(engine.Rows()) != r.index.Lines() {
		r.logger.Warn("index does not match source, evaluating genotypes per record",
			zap.Int("rows", engine.Rows()), zap.Int64("lines", r.index.Lines()))
		return
	}
	clauses := make([]genotype.Clause, len(samples))
	for i, s := range samples {
		clauses[i] = s.Clause()
	}
	r.matches = engine.Matches(clauses)
	r.rows = engine.Rows()
	r.set = r.filters.WithoutSamples()
	r.logger.Debug("sample filters answered from index",
		zap.Uint64("matches", r.matches.GetCardinality()))
}

// scanLinear reads every record of parser. A non-nil within restricts
// evaluation to records inside it.
func (r *run) scanLinear(ctx context.Context, parser *vcf.Parser, within *filter.RegionSet) error {
	for ordinal := 0; ; ordinal++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := parser.Next()
		if err != nil {
			return fmt.Errorf("read record: %w", err)
		}
		if rec == nil {
			return nil
		}
		if within != nil && !within.Contains(rec.Chrom, rec.Pos) {
			continue
		}

		pass := r.set.Filter(rec)
		if pass && r.matches != nil {
			if ordinal < r.rows {
				pass = r.matches.Contains(uint32(ordinal))
			} else {
				pass = r.filters.Filter(rec)
			}
		}
		if err := r.consider(rec, pass); err != nil {
			return err
		}
	}
}

// scanRegions reads the merged regions through the positional index, or
// scans the whole file when the source has none.
func (r *run) scanRegions(ctx context.Context, parser *vcf.Parser, regions []filter.Region) error {
	if !tabix.Exists(r.source) {
		r.logger.Info("no positional index, scanning the whole file for regions",
			zap.String("path", r.source))
		r.useIndex()
		return r.scanLinear(ctx, parser, filter.NewRegionSet(regions))
	}

	reader, err := tabix.Open(r.source)
	if err != nil {
		return fmt.Errorf("open positional index: %w", err)
	}
	defer reader.Close()

	for _, region := range regions {
		if err := r.scanRegion(ctx, reader, region); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) scanRegion(ctx context.Context, reader *tabix.Reader, region filter.Region) error {
	it, err := reader.Query(region.Chrom, region.Start, region.End)
	if err != nil {
		return err
	}
	defer it.Close()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := it.Next()
		if err != nil {
			return fmt.Errorf("read region %s: %w", region, err)
		}
		if rec == nil {
			return nil
		}
		if err := r.consider(rec, r.set.Filter(rec)); err != nil {
			return err
		}
	}
}

func (r *run) consider(rec *vcf.Record, pass bool) error {
	lines := r.results.examine()
	if pass {
		r.results.pass(rec, r.maxResults)
		if r.writer != nil {
			if err := r.writer.Write(rec); err != nil {
				return fmt.Errorf("write record: %w", err)
			}
		}
	}
	if r.progress != nil && lines%int64(r.progressEvery) == 0 {
		r.progress(lines, r.total, r.message(rec))
	}
	return nil
}

func (r *run) message(rec *vcf.Record) string {
	pos := fmt.Sprintf("%s:%s", rec.Chrom, humanize.Comma(rec.Pos))
	if r.dest != "" {
		return fmt.Sprintf("Saving to %s (%s)", filepath.Base(r.dest), pos)
	}
	return pos
}
