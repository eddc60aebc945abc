package vcf

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleVCF = `##fileformat=VCFv4.2
##FILTER=<ID=PASS,Description="All filters passed">
##FILTER=<ID=LowQual,Description="Low quality, see QD">
##INFO=<ID=DP,Number=1,Type=Integer,Description="Total depth">
##INFO=<ID=AF,Number=A,Type=Float,Description="Allele frequency">
##INFO=<ID=DB,Number=0,Type=Flag,Description="dbSNP membership">
##INFO=<ID=GENE,Number=.,Type=String,Description="Gene, symbol">
##contig=<ID=1,length=248956422>
##contig=<ID=2,length=242193529>
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	S1	S2	S3
1	100	rs1	A	G	50	PASS	DP=10;AF=0.5;DB;GENE=BRCA2	GT:DP	0/1:10	0/0:12	./.:0
1	200	.	C	T,G	.	LowQual;q10	DP=3	GT	1/1	0|2	0/.
2	300	rs3	T	A	99.5	.	.	GT	1	0	.
`

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write test file: %v", err)
	}
	return path
}

func readAll(t *testing.T, p *Parser) []*Record {
	t.Helper()
	var records []*Record
	for {
		r, err := p.Next()
		if err != nil {
			t.Fatalf("Error reading record: %v", err)
		}
		if r == nil {
			return records
		}
		records = append(records, r)
	}
}

func TestParser_Records(t *testing.T) {
	parser, err := NewParser(writeTestFile(t, "sample.vcf", sampleVCF))
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	defer parser.Close()

	records := readAll(t, parser)
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}

	r := records[0]
	if r.Chrom != "1" || r.Pos != 100 || r.ID != "rs1" {
		t.Errorf("Unexpected locus %s:%d %s", r.Chrom, r.Pos, r.ID)
	}
	if !r.HasQual || r.Qual != 50 {
		t.Errorf("Expected qual 50, got %v (%v)", r.Qual, r.HasQual)
	}
	if len(r.Filters) != 1 || r.Filters[0] != "PASS" {
		t.Errorf("Expected PASS filter, got %v", r.Filters)
	}
	if v, ok := r.InfoValue("DB"); !ok || v != "" {
		t.Errorf("Expected DB flag, got %q %v", v, ok)
	}
	if v, _ := r.InfoValue("GENE"); v != "BRCA2" {
		t.Errorf("Expected GENE=BRCA2, got %q", v)
	}

	r = records[1]
	if r.HasQual {
		t.Error("Missing quality should not be set")
	}
	if len(r.Alt) != 2 {
		t.Errorf("Expected 2 alt alleles, got %v", r.Alt)
	}
	if len(r.Filters) != 2 || r.Filters[1] != "q10" {
		t.Errorf("Expected 2 filters, got %v", r.Filters)
	}

	if records[2].Filters != nil {
		t.Errorf("Expected nil filters for '.', got %v", records[2].Filters)
	}
	if records[2].LineNumber != 13 {
		t.Errorf("Expected line 13, got %d", records[2].LineNumber)
	}
}

func TestParser_Header(t *testing.T) {
	parser, err := NewParser(writeTestFile(t, "sample.vcf", sampleVCF))
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	defer parser.Close()

	h := parser.Header()
	if len(h.Lines) != 10 {
		t.Errorf("Expected 10 header lines, got %d", len(h.Lines))
	}
	if got := strings.Join(h.SampleNames, ","); got != "S1,S2,S3" {
		t.Errorf("Unexpected samples %s", got)
	}
	if len(h.Infos) != 4 || h.Infos[0].ID != "DP" || h.Infos[3].ID != "GENE" {
		t.Fatalf("Unexpected INFO declarations %+v", h.Infos)
	}
	if h.Infos[3].Description != "Gene, symbol" {
		t.Errorf("Quoted comma not preserved: %q", h.Infos[3].Description)
	}
	if info, ok := h.Info("AF"); !ok || info.Number != "A" || info.Type != "Float" {
		t.Errorf("Unexpected AF declaration %+v", info)
	}
	if c, ok := h.Contig("2"); !ok || c.Length != 242193529 {
		t.Errorf("Unexpected contig %+v", c)
	}
	if got := strings.Join(h.Filters, ","); got != "PASS,LowQual" {
		t.Errorf("Unexpected filters %s", got)
	}
	if h.SampleIndex("S3") != 2 || h.SampleIndex("nope") != -1 {
		t.Error("SampleIndex mismatch")
	}
}

func TestParser_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.vcf.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	gz := gzip.NewWriter(f)
	gz.Write([]byte(sampleVCF))
	gz.Close()
	f.Close()

	parser, err := NewParser(path)
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	defer parser.Close()

	if n := len(readAll(t, parser)); n != 3 {
		t.Errorf("Expected 3 records, got %d", n)
	}
}

func TestParser_MissingHeader(t *testing.T) {
	_, err := NewParserFromReader(strings.NewReader("1\t100\t.\tA\tG\t.\t.\t.\n"))
	if err == nil {
		t.Fatal("Expected error for missing #CHROM line")
	}
	if _, ok := err.(*ParseError); !ok {
		t.Errorf("Expected *ParseError, got %T", err)
	}
}

func TestParseRecord_Errors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"too few columns", "1\t100\t.\tA"},
		{"bad position", "1\tabc\t.\tA\tG\t.\t.\t."},
		{"bad quality", "1\t100\t.\tA\tG\thigh\t.\t."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseRecord(tt.line, 7); err == nil {
				t.Error("Expected parse error")
			}
		})
	}
}

func TestParseError(t *testing.T) {
	err := &ParseError{
		Line:    42,
		Message: "expected 8 columns, found 7",
	}

	expected := "vcf parse error at line 42: expected 8 columns, found 7"
	if err.Error() != expected {
		t.Errorf("Error message mismatch: got %q, want %q", err.Error(), expected)
	}
}
