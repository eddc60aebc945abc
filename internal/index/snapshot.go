package index

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/inodb/vibe-filter/internal/field"
	"github.com/inodb/vibe-filter/internal/genotype"
	"github.com/inodb/vibe-filter/internal/vcf"
)

// SnapshotSuffix is appended to a source path to name its snapshot file.
const SnapshotSuffix = ".vcf-index"

const snapshotVersion uint32 = 1

var snapshotMagic = [8]byte{'V', 'F', 'I', 'D', 'X', 0, 0, 0}

var (
	// ErrStaleSnapshot reports a snapshot written for a different version
	// of the source file.
	ErrStaleSnapshot = errors.New("index snapshot is stale")
	// ErrBadSnapshot reports an unreadable snapshot or one written by an
	// incompatible version.
	ErrBadSnapshot = errors.New("invalid index snapshot")
)

// SnapshotPath returns the snapshot path for a source file.
func SnapshotPath(src string) string {
	return src + SnapshotSuffix
}

// snapshotHeader is decoded first so staleness is known before the
// matrix is read.
type snapshotHeader struct {
	Source FileFingerprint
}

type snapshotBody struct {
	Lines   int64
	Fields  []field.Descriptor
	Contigs []vcf.ContigLine
	Filters []string
	Samples []string
	Rows    int
	Words   []uint64
}

// WriteSnapshot persists x for the source described by fp. The file is
// written to a temporary name and renamed into place.
func WriteSnapshot(path string, x *VcfIndex, fp FileFingerprint) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := writeSnapshot(tmp, x, fp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

func writeSnapshot(w io.Writer, x *VcfIndex, fp FileFingerprint) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(snapshotMagic[:]); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, snapshotVersion); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	zw, err := zstd.NewWriter(bw)
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}
	body := snapshotBody{
		Lines:   x.lines,
		Fields:  make([]field.Descriptor, len(x.fields)),
		Contigs: x.contigs,
		Filters: x.filters,
		Samples: x.samples,
		Rows:    x.engine.Rows(),
		Words:   x.engine.Words(),
	}
	for i, f := range x.fields {
		body.Fields[i] = f.Descriptor()
	}

	enc := gob.NewEncoder(zw)
	if err := enc.Encode(snapshotHeader{Source: fp}); err != nil {
		zw.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := enc.Encode(body); err != nil {
		zw.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compress snapshot: %w", err)
	}
	return bw.Flush()
}

// ReadSnapshot loads the snapshot at path. It returns ErrStaleSnapshot when
// the snapshot was written for a source other than fp and ErrBadSnapshot
// when it cannot be decoded.
func ReadSnapshot(path string, fp FileFingerprint) (*VcfIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readSnapshot(bufio.NewReader(f), fp)
}

func readSnapshot(r io.Reader, fp FileFingerprint) (*VcfIndex, error) {
	var magic [8]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil || !bytes.Equal(magic[:], snapshotMagic[:]) {
		return nil, fmt.Errorf("%w: bad magic", ErrBadSnapshot)
	}
	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	if version != snapshotVersion {
		return nil, fmt.Errorf("%w: version %d, want %d", ErrBadSnapshot, version, snapshotVersion)
	}

	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	defer zr.Close()

	dec := gob.NewDecoder(zr)
	var hdr snapshotHeader
	if err := dec.Decode(&hdr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	if !hdr.Source.Equal(fp) {
		return nil, ErrStaleSnapshot
	}

	var body snapshotBody
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}

	fields := make([]*field.Field, len(body.Fields))
	for i, d := range body.Fields {
		f, err := field.Restore(d)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
		}
		fields[i] = f
	}
	engine, err := genotype.NewSearchEngine(body.Words, body.Samples, body.Rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}

	return &VcfIndex{
		lines:   body.Lines,
		fields:  fields,
		contigs: body.Contigs,
		filters: body.Filters,
		samples: body.Samples,
		engine:  engine,
	}, nil
}
