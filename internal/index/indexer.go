package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/inodb/vibe-filter/internal/field"
	"github.com/inodb/vibe-filter/internal/genome"
	"github.com/inodb/vibe-filter/internal/genotype"
	"github.com/inodb/vibe-filter/internal/tabix"
	"github.com/inodb/vibe-filter/internal/vcf"
)

// DefaultProgressEvery is the number of records between progress reports.
const DefaultProgressEvery = 1000

// ProgressFunc receives an approximate completion fraction and a status
// message. It is advisory and never affects indexing.
type ProgressFunc func(fraction float64, message string)

// Indexer builds a VcfIndex in one forward pass over a record stream.
type Indexer struct {
	reference     *genome.Reference
	optionCap     int
	progressEvery int
	snapshot      bool
	progress      ProgressFunc
	logger        *zap.Logger
}

// NewIndexer creates an indexer. The reference converts positions into
// progress fractions; with a nil reference every fraction is
// genome.UnknownProgress.
func NewIndexer(ref *genome.Reference) *Indexer {
	return &Indexer{
		reference:     ref,
		optionCap:     DefaultOptionCap,
		progressEvery: DefaultProgressEvery,
		snapshot:      true,
		logger:        zap.NewNop(),
	}
}

// SetLogger sets the logger for warning and info messages.
func (ix *Indexer) SetLogger(l *zap.Logger) {
	ix.logger = l
}

// SetOptionCap sets the number of distinct values tracked per text field.
func (ix *Indexer) SetOptionCap(n int) {
	ix.optionCap = n
}

// SetProgressEvery sets the number of records between progress reports.
func (ix *Indexer) SetProgressEvery(n int) {
	if n > 0 {
		ix.progressEvery = n
	}
}

// SetSnapshot configures whether Open reads and writes snapshot files.
func (ix *Indexer) SetSnapshot(enabled bool) {
	ix.snapshot = enabled
}

// SetProgress sets the progress callback.
func (ix *Indexer) SetProgress(fn ProgressFunc) {
	ix.progress = fn
}

func (ix *Indexer) report(r *vcf.Record) {
	if ix.progress == nil {
		return
	}
	fraction := genome.UnknownProgress
	if ix.reference != nil {
		fraction = ix.reference.Progress(r.Chrom, r.Pos)
	}
	ix.progress(fraction, fmt.Sprintf("Indexing %s:%s", r.Chrom, humanize.Comma(r.Pos)))
}

// Open returns the index of the file at path. BGZF sources get a positional
// index first. A current snapshot is loaded when present; otherwise the file
// is scanned and a snapshot written next to it.
func (ix *Indexer) Open(ctx context.Context, path string) (*VcfIndex, error) {
	created, err := tabix.Ensure(ctx, path, ix.logger)
	switch {
	case errors.Is(err, tabix.ErrNotBGZF):
		ix.logger.Info("source is not BGZF-compressed, region filters will scan the whole file",
			zap.String("path", path))
	case err != nil:
		return nil, fmt.Errorf("create positional index: %w", err)
	case created:
		ix.logger.Info("positional index created", zap.String("path", tabix.IndexPath(path)))
	}

	fp, err := StatFile(path)
	if err != nil {
		return nil, fmt.Errorf("stat source: %w", err)
	}

	if ix.snapshot {
		x, err := ReadSnapshot(SnapshotPath(path), fp)
		if err == nil {
			ix.logger.Info("loaded index snapshot",
				zap.String("path", SnapshotPath(path)),
				zap.Int64("lines", x.Lines()))
			return x, nil
		}
		ix.logger.Debug("rebuilding index", zap.String("path", path), zap.Error(err))
	}

	parser, err := vcf.NewParser(path)
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	x, err := ix.Build(ctx, parser)
	if err != nil {
		return nil, err
	}

	if ix.snapshot {
		if err := WriteSnapshot(SnapshotPath(path), x, fp); err != nil {
			ix.logger.Warn("could not write index snapshot",
				zap.String("path", SnapshotPath(path)), zap.Error(err))
		}
	}
	return x, nil
}

// Build scans every record of r. Any read error or cancellation aborts
// the pass without a partial index.
func (ix *Indexer) Build(ctx context.Context, r vcf.RecordReader) (*VcfIndex, error) {
	h := r.Header()

	type tracked struct {
		field   *field.Field
		options *optionSet
	}
	var trackers []tracked
	options := make(map[string]*optionSet)
	for _, info := range h.Infos {
		f := field.FromInfo(info, nil)
		if f.Type() != field.Text {
			continue
		}
		if _, dup := options[info.ID]; dup {
			continue
		}
		o := newOptionSet(ix.optionCap)
		options[info.ID] = o
		trackers = append(trackers, tracked{field: f, options: o})
	}

	contigs := newOrderedSet()
	filters := newOrderedSet()
	matrix := genotype.NewBuilder(h.SampleNames)
	var lines int64

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := r.Next()
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		if rec == nil {
			break
		}

		contigs.add(rec.Chrom)
		for _, tag := range rec.Filters {
			filters.add(tag)
		}
		for _, t := range trackers {
			t.options.addValue(t.field.Extract(rec))
		}
		if err := matrix.Add(rec); err != nil {
			return nil, err
		}

		lines++
		if lines%int64(ix.progressEvery) == 0 {
			ix.report(rec)
		}
	}

	contigLines := make([]vcf.ContigLine, len(contigs.items))
	for i, name := range contigs.items {
		c, _ := h.Contig(name)
		contigLines[i] = vcf.ContigLine{ID: name, Length: c.Length}
	}

	fields, err := ix.materialize(h, contigs.items, filters.items, options)
	if err != nil {
		return nil, err
	}

	ix.logger.Info("indexed records",
		zap.Int64("lines", lines),
		zap.Int("fields", len(fields)),
		zap.Int("samples", len(h.SampleNames)))

	return &VcfIndex{
		lines:   lines,
		fields:  fields,
		contigs: contigLines,
		filters: filters.items,
		samples: h.SampleNames,
		engine:  matrix.Build(),
	}, nil
}

// materialize creates the 5 standard fields and one field per INFO
// declaration. Later declarations reusing a name are dropped.
func (ix *Indexer) materialize(h *vcf.Header, contigs, filters []string, options map[string]*optionSet) ([]*field.Field, error) {
	fields := make([]*field.Field, 0, len(field.StandardNames)+len(h.Infos))
	seen := make(map[string]bool)
	for _, name := range field.StandardNames {
		var opts []string
		switch name {
		case field.Chrom:
			opts = contigs
		case field.Filter:
			opts = filters
		}
		f, err := field.NewStandard(name, opts)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
		seen[name] = true
	}

	for _, info := range h.Infos {
		if seen[info.ID] {
			ix.logger.Warn("skipping duplicate field declaration", zap.String("field", info.ID))
			continue
		}
		seen[info.ID] = true
		var opts []string
		if o, ok := options[info.ID]; ok {
			opts = o.values()
		}
		fields = append(fields, field.FromInfo(info, opts))
	}
	return fields, nil
}
