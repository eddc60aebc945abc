// Package vcf provides VCF file parsing and writing.
package vcf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/brentp/xopen"
)

// Parser reads records from a VCF file.
type Parser struct {
	reader     *bufio.Reader
	closer     io.Closer
	lineNumber int
	header     *Header
}

// NewParser creates a new VCF parser for the given file.
// Plain, gzipped and BGZF-compressed files are supported; "-" reads stdin.
func NewParser(path string) (*Parser, error) {
	xr, err := xopen.Ropen(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}

	p := &Parser{reader: xr.Reader, closer: xr}
	if err := p.parseHeader(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// NewParserFromReader creates a parser from an uncompressed io.Reader.
func NewParserFromReader(r io.Reader) (*Parser, error) {
	p := &Parser{
		reader: bufio.NewReader(r),
	}

	if err := p.parseHeader(); err != nil {
		return nil, err
	}

	return p, nil
}

// parseHeader reads the ## meta lines and the #CHROM line.
func (p *Parser) parseHeader() error {
	p.header = &Header{}
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("read header: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")

		if strings.HasPrefix(line, "##") {
			p.header.addLine(line)
			continue
		}

		if strings.HasPrefix(line, "#CHROM") {
			p.header.Lines = append(p.header.Lines, line)
			// Sample names follow FORMAT (index 9+)
			fields := strings.Split(line, "\t")
			if len(fields) > 9 {
				p.header.SampleNames = fields[9:]
			}
			return nil
		}

		return &ParseError{
			Line:    p.lineNumber,
			Message: "expected #CHROM header line",
		}
	}

	return &ParseError{
		Line:    p.lineNumber,
		Message: "no #CHROM header line found",
	}
}

// Next reads the next record from the VCF file.
// Returns nil, nil when there are no more records.
func (p *Parser) Next() (*Record, error) {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("read variant line: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}

		return ParseRecord(line, p.lineNumber)
	}
}

// ParseRecord parses a single VCF data line.
func ParseRecord(line string, lineNumber int) (*Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 8 {
		return nil, &ParseError{
			Line:    lineNumber,
			Message: fmt.Sprintf("expected at least 8 columns, found %d", len(fields)),
		}
	}

	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, &ParseError{
			Line:    lineNumber,
			Message: fmt.Sprintf("invalid position: %s", fields[1]),
		}
	}

	r := &Record{
		Chrom:      fields[0],
		Pos:        pos,
		ID:         fields[2],
		Ref:        fields[3],
		Info:       parseInfo(fields[7]),
		Line:       line,
		LineNumber: lineNumber,
	}

	if fields[4] != Missing {
		r.Alt = strings.Split(fields[4], ",")
	}

	if fields[5] != Missing {
		qual, err := strconv.ParseFloat(fields[5], 64)
		if err != nil {
			return nil, &ParseError{
				Line:    lineNumber,
				Message: fmt.Sprintf("invalid quality: %s", fields[5]),
			}
		}
		r.Qual = qual
		r.HasQual = true
	}

	if fields[6] != Missing && fields[6] != "" {
		r.Filters = strings.Split(fields[6], ";")
	}

	// FORMAT + sample columns if present
	if len(fields) > 8 {
		r.Format = strings.Split(fields[8], ":")
		r.Samples = fields[9:]
	}

	return r, nil
}

// parseInfo parses the INFO field into a map.
func parseInfo(info string) map[string]string {
	result := make(map[string]string)
	if info == Missing {
		return result
	}

	for _, kv := range strings.Split(info, ";") {
		if kv == "" {
			continue
		}
		key, value, ok := strings.Cut(kv, "=")
		if ok {
			result[key] = value
		} else {
			// Flag-type INFO field
			result[key] = ""
		}
	}

	return result
}

// Header returns the parsed VCF header.
func (p *Parser) Header() *Header {
	return p.header
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.closer != nil {
		return p.closer.Close()
	}
	return nil
}

// ParseError represents an error during VCF parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vcf parse error at line %d: %s", e.Line, e.Message)
}
