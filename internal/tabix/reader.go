package tabix

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biogo/hts/bgzf"
	"github.com/biogo/hts/bgzf/index"
	htstabix "github.com/biogo/hts/tabix"

	"github.com/inodb/vibe-filter/internal/vcf"
)

// maxCoordinate is the largest position addressable by a .tbi index.
const maxCoordinate = 1 << 29

// Reader streams the records of a BGZF VCF that overlap a region.
type Reader struct {
	file *os.File
	bgzf *bgzf.Reader
	idx  *htstabix.Index
}

// Open opens src together with its positional index.
func Open(src string) (*Reader, error) {
	idx, err := readIndex(IndexPath(src))
	if err != nil {
		return nil, err
	}
	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	br, err := bgzf.NewReader(f, 1)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open bgzf reader: %w", err)
	}
	return &Reader{file: f, bgzf: br, idx: idx}, nil
}

// Query returns the records on chrom with start <= POS <= end. Positions
// are 1-based; an end of 0 reads to the end of the contig. Only one
// iterator may be open at a time.
func (r *Reader) Query(chrom string, start, end int64) (*Iterator, error) {
	if start < 1 {
		start = 1
	}
	it := &Iterator{chrom: chrom, start: start, end: end}
	if end == 0 || end > maxCoordinate {
		it.end = maxCoordinate
	}

	chunks, err := r.idx.Chunks(chrom, int(start-1), int(it.end))
	if err != nil || len(chunks) == 0 {
		// The contig is absent from the index or has no records in range.
		it.done = true
		return it, nil
	}
	cr, err := index.NewChunkReader(r.bgzf, chunks)
	if err != nil {
		return nil, fmt.Errorf("seek %s:%d-%d: %w", chrom, start, end, err)
	}
	it.chunks = cr
	it.reader = bufio.NewReader(cr)
	return it, nil
}

// Close closes the source file.
func (r *Reader) Close() error {
	err := r.bgzf.Close()
	if cerr := r.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// Iterator yields the records of one region query.
type Iterator struct {
	chrom  string
	start  int64
	end    int64
	chunks *index.ChunkReader
	reader *bufio.Reader
	done   bool
}

// Next returns the next record in the region, or nil, nil when the region
// is exhausted.
func (it *Iterator) Next() (*vcf.Record, error) {
	for !it.done {
		line, err := it.reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			it.done = true
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("read region: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" || line[0] == '#' {
			continue
		}

		rec, err := vcf.ParseRecord(line, 0)
		if err != nil {
			it.done = true
			return nil, err
		}
		if rec.Chrom != it.chrom || rec.Pos < it.start {
			continue
		}
		if rec.Pos > it.end {
			it.done = true
			return nil, nil
		}
		return rec, nil
	}
	return nil, nil
}

// Close releases the chunk reader.
func (it *Iterator) Close() error {
	it.done = true
	if it.chunks != nil {
		return it.chunks.Close()
	}
	return nil
}
