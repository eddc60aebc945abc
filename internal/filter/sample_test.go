package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-filter/internal/genotype"
	"github.com/inodb/vibe-filter/internal/vcf"
)

var sampleNames = []string{"s1", "s2", "s3", "s4"}

// Genotypes per row: s1..s4.
var sampleRows = []string{
	"1\t100\t.\tA\tG\t.\t.\t.\tGT\t0/1\t0/0\t0/1\t./.",
	"1\t200\t.\tA\tG\t.\t.\t.\tGT\t1/1\t0/1\t0/0\t0/0",
	"1\t300\t.\tA\tG\t.\t.\t.\tGT\t0/0\t0/0\t0/0\t0/.",
	"1\t400\t.\tA\tG\t.\t.\t.\tGT\t0/1\t1/1\t1|1\t0/1",
	"1\t500\t.\tA\tG\t.\t.\t.\tDP\t3\t4\t5\t6",
}

func sampleFilter(t *testing.T, samples []string, types []vcf.GenotypeType, acc Accessor, threshold int) *SampleFilter {
	t.Helper()
	sf, err := NewSampleFilter(samples, sampleNames, types, acc, threshold)
	require.NoError(t, err)
	return sf
}

func TestSampleFilter_Filter(t *testing.T) {
	rows := make([]*vcf.Record, len(sampleRows))
	for i, line := range sampleRows {
		rows[i] = record(t, line)
	}
	variant := []vcf.GenotypeType{vcf.Het, vcf.HomVar}

	tests := []struct {
		name string
		sf   *SampleFilter
		want []bool
	}{
		{"ALL s1,s3 variant", sampleFilter(t, []string{"s1", "s3"}, variant, All, 0), []bool{true, false, false, true, false}},
		{"ANY s1..s4 variant", sampleFilter(t, sampleNames, variant, Any, 0), []bool{true, true, false, true, false}},
		{"ANY 2 variant", sampleFilter(t, sampleNames, variant, Any, 2), []bool{true, true, false, true, false}},
		{"ANY 3 variant", sampleFilter(t, sampleNames, variant, Any, 3), []bool{false, false, false, true, false}},
		{"NONE variant", sampleFilter(t, sampleNames, variant, None, 0), []bool{false, false, true, false, true}},
		{"ALL no-call", sampleFilter(t, []string{"s4"}, []vcf.GenotypeType{vcf.NoCall}, All, 0), []bool{true, false, true, false, true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i, r := range rows {
				assert.Equal(t, tt.want[i], tt.sf.Filter(r), "row %d", i)
			}
		})
	}
}

// A sample filter and its clause agree on every row.
func TestSampleFilter_Clause(t *testing.T) {
	b := genotype.NewBuilder(sampleNames)
	rows := make([]*vcf.Record, len(sampleRows))
	for i, line := range sampleRows {
		rows[i] = record(t, line)
		require.NoError(t, b.Add(rows[i]))
	}
	engine := b.Build()

	typeSets := [][]vcf.GenotypeType{
		{vcf.Het},
		{vcf.Het, vcf.HomVar},
		{vcf.NoCall},
		{vcf.HomRef, vcf.NoCall},
	}
	subsets := [][]string{{"s1"}, {"s1", "s3"}, sampleNames}

	for _, types := range typeSets {
		for _, samples := range subsets {
			for _, acc := range []Accessor{All, Any, None} {
				for _, threshold := range []int{0, 2} {
					sf := sampleFilter(t, samples, types, acc, threshold)
					clause := []genotype.Clause{sf.Clause()}
					for i, r := range rows {
						assert.Equal(t, sf.Filter(r), engine.Query(i, clause), "%s row %d", sf.Display(), i)
					}
				}
			}
		}
	}
}

func TestSampleFilter_ClauseShape(t *testing.T) {
	sf := sampleFilter(t, []string{"s1", "s2"}, []vcf.GenotypeType{vcf.Het}, None, 0)
	c := sf.Clause()
	assert.Equal(t, 2, c.MinMatch)
	assert.ElementsMatch(t, []vcf.GenotypeType{vcf.NoCall, vcf.HomRef, vcf.HomVar}, c.Types)

	sf = sampleFilter(t, []string{"s1", "s2"}, []vcf.GenotypeType{vcf.Het}, Any, 0)
	assert.Equal(t, 1, sf.Clause().MinMatch)
}

func TestSampleFilter_RepeatedSample(t *testing.T) {
	b := genotype.NewBuilder(sampleNames)
	rows := make([]*vcf.Record, len(sampleRows))
	for i, line := range sampleRows {
		rows[i] = record(t, line)
		require.NoError(t, b.Add(rows[i]))
	}
	engine := b.Build()

	sf := sampleFilter(t, []string{"s1", "s1"}, []vcf.GenotypeType{vcf.Het}, All, 0)
	assert.Equal(t, []string{"s1"}, sf.Samples())
	assert.Equal(t, 1, sf.Clause().MinMatch)

	for _, acc := range []Accessor{All, Any, None} {
		for _, threshold := range []int{1, 2} {
			sf := sampleFilter(t, []string{"s1", "s3", "s1"}, []vcf.GenotypeType{vcf.Het}, acc, threshold)
			clause := []genotype.Clause{sf.Clause()}
			for i, r := range rows {
				assert.Equal(t, sf.Filter(r), engine.Query(i, clause), "%s row %d", sf.Display(), i)
			}
		}
	}
}

func TestNewSampleFilter_Invalid(t *testing.T) {
	_, err := NewSampleFilter([]string{"missing"}, sampleNames, []vcf.GenotypeType{vcf.Het}, Any, 1)
	assert.ErrorIs(t, err, ErrInvalidFilter)

	_, err = NewSampleFilter([]string{"s1"}, sampleNames, nil, Any, 1)
	assert.ErrorIs(t, err, ErrInvalidFilter)

	_, err = NewSampleFilter([]string{"s1"}, sampleNames, []vcf.GenotypeType{vcf.Mixed}, Any, 1)
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestSampleFilter_Display(t *testing.T) {
	sf := sampleFilter(t, []string{"s1", "s2"}, []vcf.GenotypeType{vcf.Het, vcf.HomVar}, Any, 2)
	assert.Equal(t, "ANY 2 of [s1 s2] are [HET HOM_VAR]", sf.Display())

	sf = sampleFilter(t, []string{"s1"}, []vcf.GenotypeType{vcf.HomRef}, None, 0)
	assert.Equal(t, "NONE of [s1] are [HOM_REF]", sf.Display())
}

func TestAccessor_EmptyList(t *testing.T) {
	match := func(any) bool { return true }
	assert.True(t, All.quantify(nil, match))
	assert.False(t, Any.quantify(nil, match))
	assert.True(t, None.quantify(nil, match))
}
