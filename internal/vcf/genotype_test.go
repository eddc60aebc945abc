package vcf

import (
	"os"
	"strings"
	"testing"
)

func TestClassifyGT(t *testing.T) {
	tests := []struct {
		gt   string
		want GenotypeType
	}{
		{"0/0", HomRef},
		{"0|0", HomRef},
		{"0/1", Het},
		{"1|0", Het},
		{"1/2", Het},
		{"1/1", HomVar},
		{"2|2", HomVar},
		{"1", HomVar},
		{"0", HomRef},
		{"./.", NoCall},
		{".", NoCall},
		{"0/.", Mixed},
		{"", Unavailable},
	}

	for _, tt := range tests {
		t.Run(tt.gt, func(t *testing.T) {
			if got := ClassifyGT(tt.gt); got != tt.want {
				t.Errorf("ClassifyGT(%q) = %v, want %v", tt.gt, got, tt.want)
			}
		})
	}
}

func TestGenotypeType_Canonical(t *testing.T) {
	if Mixed.Canonical() != NoCall || Unavailable.Canonical() != NoCall {
		t.Error("Mixed and Unavailable should fold into NoCall")
	}
	for _, gt := range CanonicalTypes() {
		if gt.Canonical() != gt {
			t.Errorf("%v should be canonical", gt)
		}
	}
}

func TestParseGenotypeType(t *testing.T) {
	for _, in := range []string{"het", "HET", " Het "} {
		if gt, err := ParseGenotypeType(in); err != nil || gt != Het {
			t.Errorf("ParseGenotypeType(%q) = %v, %v", in, gt, err)
		}
	}
	if gt, err := ParseGenotypeType("hom-var"); err != nil || gt != HomVar {
		t.Errorf("ParseGenotypeType(hom-var) = %v, %v", gt, err)
	}
	if _, err := ParseGenotypeType("MIXED"); err == nil {
		t.Error("MIXED is not a canonical type")
	}
}

func TestRecord_GenotypeTypes(t *testing.T) {
	r, err := ParseRecord("1\t100\t.\tA\tG\t.\t.\t.\tDP:GT\t3:0/1\t5:1/1\t7\t4:./.", 1)
	if err != nil {
		t.Fatal(err)
	}

	want := []GenotypeType{Het, HomVar, Unavailable, NoCall}
	got := r.GenotypeTypes()
	if len(got) != len(want) {
		t.Fatalf("Expected %d genotypes, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: got %v, want %v", i, got[i], want[i])
		}
	}
	if r.GenotypeType(10) != Unavailable {
		t.Error("Out-of-range sample should be Unavailable")
	}
}

func TestRecord_NoGTKey(t *testing.T) {
	r, err := ParseRecord("1\t100\t.\tA\tG\t.\t.\t.\tDP\t3\t5", 1)
	if err != nil {
		t.Fatal(err)
	}
	for i, gt := range r.GenotypeTypes() {
		if gt != Unavailable {
			t.Errorf("sample %d: got %v, want Unavailable", i, gt)
		}
	}
}

func TestRecord_StringWithoutLine(t *testing.T) {
	r := &Record{
		Chrom:   "2",
		Pos:     300,
		Ref:     "T",
		Alt:     []string{"A", "C"},
		Qual:    12.5,
		HasQual: true,
		Filters: []string{"PASS"},
		Info:    map[string]string{"DP": "4", "DB": ""},
		Format:  []string{"GT"},
		Samples: []string{"0/1"},
	}

	want := "2\t300\t.\tT\tA,C\t12.5\tPASS\tDB;DP=4\tGT\t0/1"
	if got := r.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if r.End() != 300 {
		t.Errorf("End() = %d", r.End())
	}
}

func TestWriter_RoundTrip(t *testing.T) {
	parser, err := NewParser(writeTestFile(t, "sample.vcf", sampleVCF))
	if err != nil {
		t.Fatal(err)
	}
	defer parser.Close()

	var b strings.Builder
	w := NewWriter(&b, parser.Header())
	if err := w.WriteHeader(); err != nil {
		t.Fatal(err)
	}
	for _, r := range readAll(t, parser) {
		if err := w.Write(r); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	if b.String() != sampleVCF {
		t.Errorf("Round trip mismatch:\n%s", b.String())
	}
}

func TestCreate_BGZF(t *testing.T) {
	parser, err := NewParser(writeTestFile(t, "sample.vcf", sampleVCF))
	if err != nil {
		t.Fatal(err)
	}
	defer parser.Close()

	out := t.TempDir() + "/out.vcf.gz"
	fw, err := Create(out, parser.Header())
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range readAll(t, parser) {
		if err := fw.Write(r); err != nil {
			t.Fatal(err)
		}
	}
	if err := fw.Close(); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) < 2 || raw[0] != 0x1f || raw[1] != 0x8b {
		t.Fatal("Output is not gzip-compressed")
	}

	reread, err := NewParser(out)
	if err != nil {
		t.Fatal(err)
	}
	defer reread.Close()
	if n := len(readAll(t, reread)); n != 3 {
		t.Errorf("Expected 3 records after round trip, got %d", n)
	}
}
