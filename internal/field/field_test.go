package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-filter/internal/vcf"
)

func mustRecord(t *testing.T, line string) *vcf.Record {
	t.Helper()
	r, err := vcf.ParseRecord(line, 1)
	require.NoError(t, err)
	return r
}

func TestStandardFields(t *testing.T) {
	r := mustRecord(t, "chr2\t1500\trs9\tA\tC\t33.5\tLowQual;q10\tDP=4")
	missing := mustRecord(t, "chr2\t1500\t.\tA\tC\t.\t.\t.")

	tests := []struct {
		name    string
		want    any
		missing any
		typ     Type
		list    bool
	}{
		{Chrom, "chr2", "chr2", Text, false},
		{Pos, int64(1500), int64(1500), Integer, false},
		{ID, "rs9", nil, Text, false},
		{Qual, 33.5, nil, Float, false},
		{Filter, []any{"LowQual", "q10"}, nil, Text, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewStandard(tt.name, nil)
			require.NoError(t, err)
			assert.Equal(t, Standard, f.Category())
			assert.Equal(t, tt.typ, f.Type())
			assert.Equal(t, tt.list, f.IsList())
			assert.Equal(t, tt.want, f.Extract(r))
			assert.Equal(t, tt.missing, f.Extract(missing))
		})
	}

	_, err := NewStandard("ALT", nil)
	assert.Error(t, err)
}

func TestInfoFields(t *testing.T) {
	r := mustRecord(t, "1\t100\t.\tA\tG,T\t.\t.\tDP=10;AF=0.25,.;AC=1,x;DB;GENE=BRCA2;BAD=abc;EMPTY=.")

	tests := []struct {
		info vcf.InfoLine
		want any
		list bool
	}{
		{vcf.InfoLine{ID: "DP", Number: "1", Type: "Integer"}, int64(10), false},
		{vcf.InfoLine{ID: "AF", Number: "A", Type: "Float"}, []any{0.25}, true},
		{vcf.InfoLine{ID: "AC", Number: "A", Type: "Integer"}, []any{int64(1)}, true},
		{vcf.InfoLine{ID: "DB", Number: "0", Type: "Flag"}, true, false},
		{vcf.InfoLine{ID: "H2", Number: "0", Type: "Flag"}, false, false},
		{vcf.InfoLine{ID: "GENE", Number: ".", Type: "String"}, []any{"BRCA2"}, true},
		{vcf.InfoLine{ID: "BAD", Number: "1", Type: "Integer"}, nil, false},
		{vcf.InfoLine{ID: "EMPTY", Number: "2", Type: "Float"}, nil, true},
		{vcf.InfoLine{ID: "ABSENT", Number: "1", Type: "Character"}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.info.ID, func(t *testing.T) {
			f := FromInfo(tt.info, nil)
			assert.Equal(t, Info, f.Category())
			assert.Equal(t, tt.list, f.IsList())
			assert.Equal(t, tt.want, f.Extract(r))
		})
	}
}

func TestField_ParseValue(t *testing.T) {
	dp := FromInfo(vcf.InfoLine{ID: "DP", Number: "1", Type: "Integer"}, nil)
	v, err := dp.ParseValue(" 12 ")
	require.NoError(t, err)
	assert.Equal(t, int64(12), v)
	_, err = dp.ParseValue("twelve")
	assert.Error(t, err)

	af := FromInfo(vcf.InfoLine{ID: "AF", Number: "A", Type: "Float"}, nil)
	v, err = af.ParseValue("1e-3")
	require.NoError(t, err)
	assert.Equal(t, 0.001, v)

	gene := FromInfo(vcf.InfoLine{ID: "GENE", Number: "1", Type: "String"}, nil)
	_, err = gene.ParseValue("   ")
	assert.Error(t, err)
}

func TestField_DescriptorRoundTrip(t *testing.T) {
	r := mustRecord(t, "1\t100\t.\tA\tG\t.\tPASS\tCSQ=missense,synonymous")

	orig := FromInfo(vcf.InfoLine{ID: "CSQ", Number: ".", Type: "String", Description: "Consequence"}, []string{"missense", "synonymous"})
	restored, err := Restore(orig.Descriptor())
	require.NoError(t, err)
	assert.Equal(t, orig.Descriptor(), restored.Descriptor())
	assert.Equal(t, orig.Extract(r), restored.Extract(r))

	filter, err := NewStandard(Filter, []string{"PASS"})
	require.NoError(t, err)
	restored, err = Restore(filter.Descriptor())
	require.NoError(t, err)
	assert.Equal(t, []any{"PASS"}, restored.Extract(r))
	assert.Equal(t, []string{"PASS"}, restored.Options())
}

func TestField_Display(t *testing.T) {
	f := FromInfo(vcf.InfoLine{ID: "AF", Number: "A", Type: "Float", Description: "Allele frequency"}, nil)
	assert.Equal(t, "AF (Float list): Allele frequency", f.Display())

	c, err := NewStandard(Chrom, []string{"1", "2"})
	require.NoError(t, err)
	assert.Equal(t, "CHROM (Text) 2 options: Chromosome", c.Display())
}
