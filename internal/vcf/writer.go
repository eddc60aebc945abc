package vcf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/biogo/hts/bgzf"
)

// Writer writes records in VCF format, re-emitting the original header.
type Writer struct {
	w      *bufio.Writer
	header *Header
}

// NewWriter creates a new VCF writer.
func NewWriter(w io.Writer, header *Header) *Writer {
	return &Writer{
		w:      bufio.NewWriter(w),
		header: header,
	}
}

// WriteHeader writes the header lines verbatim.
func (vw *Writer) WriteHeader() error {
	for _, line := range vw.header.Lines {
		if _, err := vw.w.WriteString(line); err != nil {
			return err
		}
		if err := vw.w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return nil
}

// Write writes a single record line.
func (vw *Writer) Write(r *Record) error {
	if _, err := vw.w.WriteString(r.String()); err != nil {
		return err
	}
	return vw.w.WriteByte('\n')
}

// Flush flushes buffered output to the underlying writer.
func (vw *Writer) Flush() error {
	return vw.w.Flush()
}

// FileWriter is a Writer bound to a file it owns.
type FileWriter struct {
	*Writer
	file *os.File
	bgzf *bgzf.Writer
}

// Create creates path and writes the header to it. Paths ending in ".gz"
// are BGZF-compressed so the output can be indexed.
func Create(path string, header *Header) (*FileWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}

	fw := &FileWriter{file: f}
	var dst io.Writer = f
	if strings.HasSuffix(path, ".gz") {
		fw.bgzf = bgzf.NewWriter(f, runtime.GOMAXPROCS(0))
		dst = fw.bgzf
	}
	fw.Writer = NewWriter(dst, header)

	if err := fw.WriteHeader(); err != nil {
		fw.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	return fw, nil
}

// Close flushes pending output and closes the file.
func (fw *FileWriter) Close() error {
	err := fw.Flush()
	if fw.bgzf != nil {
		if cerr := fw.bgzf.Close(); err == nil {
			err = cerr
		}
	}
	if cerr := fw.file.Close(); err == nil {
		err = cerr
	}
	return err
}
