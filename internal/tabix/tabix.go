// Package tabix creates and queries .tbi positional indexes of
// BGZF-compressed VCF files.
package tabix

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/biogo/hts/bgzf"
	htstabix "github.com/biogo/hts/tabix"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
)

// ErrNotBGZF is returned when a source is not BGZF-compressed and so
// cannot be indexed.
var ErrNotBGZF = errors.New("source is not BGZF-compressed")

// IndexPath returns the .tbi path of a source.
func IndexPath(src string) string {
	return src + ".tbi"
}

// Exists reports whether a positional index is present and not older than
// its source.
func Exists(src string) bool {
	idx, err := os.Stat(IndexPath(src))
	if err != nil {
		return false
	}
	st, err := os.Stat(src)
	if err != nil {
		return false
	}
	return !idx.ModTime().Before(st.ModTime())
}

// IsBGZF reports whether path starts with a BGZF block header: a gzip
// member whose extra field carries the "BC" subfield.
func IsBGZF(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	var h [16]byte
	if _, err := io.ReadFull(f, h[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return false, nil
		}
		return false, err
	}
	return h[0] == 0x1f && h[1] == 0x8b && h[2] == 8 && h[3]&4 != 0 &&
		h[12] == 'B' && h[13] == 'C', nil
}

// Ensure creates the positional index of src unless a current one exists.
// It reports whether an index was written.
func Ensure(ctx context.Context, src string, logger *zap.Logger) (bool, error) {
	if Exists(src) {
		return false, nil
	}
	ok, err := IsBGZF(src)
	if err != nil {
		return false, fmt.Errorf("inspect %s: %w", src, err)
	}
	if !ok {
		return false, ErrNotBGZF
	}
	if logger != nil {
		logger.Info("creating positional index", zap.String("path", IndexPath(src)))
	}
	if err := Create(ctx, src); err != nil {
		return false, err
	}
	return true, nil
}

// locus is the indexed extent of one record in 0-based half-open
// coordinates.
type locus struct {
	chrom string
	beg   int
	end   int
}

func (l locus) RefName() string { return l.chrom }
func (l locus) Start() int { return l.beg }
func (l locus) End() int { return l.end }

// Create builds the positional index of a BGZF VCF and writes it next to
// the source. Records must be sorted by position within each contig.
func Create(ctx context.Context, src string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	br, err := bgzf.NewReader(f, 1)
	if err != nil {
		return fmt.Errorf("open bgzf reader: %w", err)
	}
	defer br.Close()

	idx := htstabix.New()
	idx.Format = 2 // VCF
	idx.NameColumn = 1
	idx.BeginColumn = 2
	idx.EndColumn = 0
	idx.MetaChar = '#'
	idx.Skip = 0

	var line []byte
	for n := 0; ; n++ {
		if n&0xfff == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		tx := br.Begin()
		line, err = readLine(br, line[:0])
		if len(line) == 0 && err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("read source: %w", err)
		}
		chunk := tx.End()

		if len(line) == 0 || line[0] == '#' {
			continue
		}
		loc, perr := parseLocus(line)
		if perr != nil {
			return fmt.Errorf("index line %d: %w", n+1, perr)
		}
		if err := idx.Add(loc, chunk, true, true); err != nil {
			return fmt.Errorf("index record at %s:%d: %w", loc.chrom, loc.beg+1, err)
		}
		if err == io.EOF {
			break
		}
	}

	return writeIndex(IndexPath(src), idx)
}

// readLine appends one line from r to buf, without the trailing newline.
// Byte-wise reads keep the bgzf transaction aligned with line ends.
func readLine(r io.ByteReader, buf []byte) ([]byte, error) {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return bytes.TrimRight(buf, "\r"), err
		}
		if b == '\n' {
			return bytes.TrimRight(buf, "\r"), nil
		}
		buf = append(buf, b)
	}
}

// parseLocus reads CHROM, POS and REF of a VCF line.
func parseLocus(line []byte) (locus, error) {
	cols := bytes.SplitN(line, []byte{'\t'}, 5)
	if len(cols) < 4 {
		return locus{}, fmt.Errorf("expected at least 4 columns, found %d", len(cols))
	}
	pos, err := strconv.Atoi(string(cols[1]))
	if err != nil || pos < 1 {
		return locus{}, fmt.Errorf("invalid position %q", cols[1])
	}
	refLen := len(cols[3])
	if refLen == 0 {
		refLen = 1
	}
	return locus{chrom: string(cols[0]), beg: pos - 1, end: pos - 1 + refLen}, nil
}

// writeIndex writes idx BGZF-compressed to path through a temporary file.
func writeIndex(path string, idx *htstabix.Index) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer os.Remove(tmp.Name())

	bw := bgzf.NewWriter(tmp, 1)
	if err := htstabix.WriteTo(bw, idx); err != nil {
		bw.Close()
		tmp.Close()
		return fmt.Errorf("write index: %w", err)
	}
	if err := bw.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("write index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close index file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("install index file: %w", err)
	}
	return nil
}

// readIndex loads a .tbi file.
func readIndex(path string) (*htstabix.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decompress index: %w", err)
	}
	defer gz.Close()

	idx, err := htstabix.ReadFrom(gz)
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	return idx, nil
}
