package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-filter/internal/field"
	"github.com/inodb/vibe-filter/internal/vcf"
)

func testParser(t *testing.T) *Parser {
	t.Helper()
	fields := []*field.Field{
		mustStandard(t, field.Chrom),
		mustStandard(t, field.Pos),
		mustStandard(t, field.ID),
		mustStandard(t, field.Qual),
		mustStandard(t, field.Filter),
		field.FromInfo(dpInfo, nil),
		field.FromInfo(afInfo, nil),
		field.FromInfo(geneInfo, nil),
		field.FromInfo(dbInfo, nil),
	}
	contigs := []vcf.ContigLine{{ID: "1", Length: 1000}, {ID: "2"}}
	return NewParser(fields, sampleNames, contigs)
}

func TestParser_ParseAttribute(t *testing.T) {
	p := testParser(t)

	tests := []struct {
		expr    string
		display string
	}{
		{"DP > 10", "DP > 10"},
		{"dp >= 3", "DP >= 3"},
		{"QUAL == 30", "QUAL = 30"},
		{"ALL AF < 0.01", "ALL AF < 0.01"},
		{"AF < 0.01", "ANY AF < 0.01"},
		{"NONE FILTER equals LowQual,q10", "NONE FILTER equals [LowQual q10]"},
		{"FILTER equals [PASS]", "ANY FILTER equals [PASS]"},
		{"GENE contains brca", "ANY GENE contains brca"},
		{"GENE equals BRCA2, TP53", "ANY GENE equals [BRCA2 TP53]"},
		{"DB present", "DB present"},
		{"DB not-present", "DB not-present"},
		{"ID != rs1", "ID not-equals rs1"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			f, err := p.ParseAttribute(tt.expr, false)
			require.NoError(t, err)
			assert.Equal(t, tt.display, f.Display())
			assert.Nil(t, f.Regions())
		})
	}
}

func TestParser_ParseAttributeInvalid(t *testing.T) {
	p := testParser(t)

	for _, expr := range []string{
		"",
		"DP",
		"DP > ten",
		"AF < 0.1,abc",
		"GENE equals",
		"NOPE > 1",
		"DP ~ 1",
		"DP contains 1",
		"DB present yes",
		"GENE equals [ ]",
	} {
		t.Run(expr, func(t *testing.T) {
			_, err := p.ParseAttribute(expr, false)
			assert.ErrorIs(t, err, ErrInvalidFilter)
		})
	}
}

func TestParser_ChromRegions(t *testing.T) {
	p := testParser(t)

	f, err := p.ParseAttribute("CHROM equals 1,2,3", true)
	require.NoError(t, err)
	assert.Equal(t, []Region{
		{Chrom: "1", Start: 1, End: 1000},
		{Chrom: "2", Start: 1},
		{Chrom: "3", Start: 1},
	}, f.Regions())

	f, err = p.ParseAttribute("CHROM equals 2", false)
	require.NoError(t, err)
	assert.Equal(t, []Region{{Chrom: "2", Start: 1}}, f.Regions())
	assert.True(t, f.Filter(record(t, "2\t5\t.\tA\tG\t.\t.\t.")))
	assert.False(t, f.Filter(record(t, "1\t5\t.\tA\tG\t.\t.\t.")))

	f, err = p.ParseAttribute("CHROM contains chr", false)
	require.NoError(t, err)
	assert.Nil(t, f.Regions())

	for _, expr := range []string{"NONE CHROM equals 1", "ALL CHROM equals 1,2"} {
		f, err = p.ParseAttribute(expr, false)
		require.NoError(t, err)
		assert.Nil(t, f.Regions(), expr)
	}
	f, err = p.ParseAttribute("NONE CHROM equals 1", false)
	require.NoError(t, err)
	assert.True(t, f.Filter(record(t, "2\t5\t.\tA\tG\t.\t.\t.")))
	assert.False(t, f.Filter(record(t, "1\t5\t.\tA\tG\t.\t.\t.")))
}

func TestParser_ParseSample(t *testing.T) {
	p := testParser(t)

	tests := []struct {
		expr    string
		display string
	}{
		{"ALL s1,s3 HET", "ALL of [s1 s3] are [HET]"},
		{"ANY * HET,HOM_VAR", "ANY 1 of [s1 s2 s3 s4] are [HET HOM_VAR]"},
		{"any:2 s1,s2,s3 het,hom-var", "ANY 2 of [s1 s2 s3] are [HET HOM_VAR]"},
		{"NONE s4 NO_CALL", "NONE of [s4] are [NO_CALL]"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			f, err := p.ParseSample(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.display, f.Display())
		})
	}

	for _, expr := range []string{
		"ALL s1",
		"SOME s1 HET",
		"ALL:2 s1 HET",
		"ANY:x s1 HET",
		"ANY:0 s1 HET",
		"ANY s9 HET",
		"ANY s1 MIXED",
		"ANY , HET",
	} {
		t.Run(expr, func(t *testing.T) {
			_, err := p.ParseSample(expr)
			assert.ErrorIs(t, err, ErrInvalidFilter)
		})
	}
}

func TestParser_ParseRegions(t *testing.T) {
	p := testParser(t)

	f, err := p.ParseRegions("1:100-200", "2")
	require.NoError(t, err)
	assert.Equal(t, "in 1:100-200, 2", f.Display())
	assert.True(t, f.Filter(record(t, "1\t150\t.\tA\tG\t.\t.\t.")))
	assert.False(t, f.Filter(record(t, "1\t250\t.\tA\tG\t.\t.\t.")))
	assert.True(t, f.Filter(record(t, "2\t9999999\t.\tA\tG\t.\t.\t.")))

	_, err = p.ParseRegions()
	assert.ErrorIs(t, err, ErrInvalidFilter)
	_, err = p.ParseRegions("1:200-100")
	assert.ErrorIs(t, err, ErrInvalidFilter)
}
