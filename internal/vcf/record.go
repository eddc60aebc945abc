package vcf

import (
	"sort"
	"strconv"
	"strings"
)

// Missing is the VCF placeholder for an absent value.
const Missing = "."

// Record is a single decoded VCF data line.
type Record struct {
	Chrom   string   // Chromosome name (e.g., "12", "chr12")
	Pos     int64    // 1-based genomic position
	ID      string   // Variant identifier, "." when absent
	Ref     string   // Reference allele
	Alt     []string // Alternate alleles
	Qual    float64  // Quality score, valid when HasQual
	HasQual bool
	Filters []string          // FILTER tags, nil when "."
	Info    map[string]string // INFO values; flags map to ""
	Format  []string          // FORMAT keys
	Samples []string          // raw per-sample columns

	// Line is the raw text of the record, used for pass-through writing.
	Line string
	// LineNumber is the 1-based line in the source file.
	LineNumber int

	gts []GenotypeType
}

// InfoValue returns the raw INFO value for key and whether the key exists.
func (r *Record) InfoValue(key string) (string, bool) {
	v, ok := r.Info[key]
	return v, ok
}

// End returns the last reference base covered by the record.
func (r *Record) End() int64 {
	if n := len(r.Ref); n > 1 {
		return r.Pos + int64(n) - 1
	}
	return r.Pos
}

// NumSamples returns the number of sample columns.
func (r *Record) NumSamples() int {
	return len(r.Samples)
}

// GenotypeType returns the classification of sample i. Samples beyond the
// decoded columns are Unavailable.
func (r *Record) GenotypeType(i int) GenotypeType {
	if r.gts == nil {
		r.gts = r.classify()
	}
	if i < 0 || i >= len(r.gts) {
		return Unavailable
	}
	return r.gts[i]
}

// GenotypeTypes returns the classification of every sample column.
func (r *Record) GenotypeTypes() []GenotypeType {
	if r.gts == nil {
		r.gts = r.classify()
	}
	return r.gts
}

func (r *Record) classify() []GenotypeType {
	gts := make([]GenotypeType, len(r.Samples))
	gtIndex := -1
	for i, key := range r.Format {
		if key == "GT" {
			gtIndex = i
			break
		}
	}
	for i, sample := range r.Samples {
		if gtIndex < 0 {
			gts[i] = Unavailable
			continue
		}
		gts[i] = ClassifyGT(sampleValue(sample, gtIndex))
	}
	return gts
}

// sampleValue returns the idx-th colon-separated value of a sample column.
func sampleValue(sample string, idx int) string {
	for i := 0; ; i++ {
		j := strings.IndexByte(sample, ':')
		if i == idx {
			if j < 0 {
				return sample
			}
			return sample[:j]
		}
		if j < 0 {
			return ""
		}
		sample = sample[j+1:]
	}
}

// String formats the record as a tab-separated VCF line. The raw line is
// returned when the record was decoded from text.
func (r *Record) String() string {
	if r.Line != "" {
		return r.Line
	}

	var b strings.Builder
	b.Grow(128)
	b.WriteString(r.Chrom)
	b.WriteByte('\t')
	b.WriteString(strconv.FormatInt(r.Pos, 10))
	b.WriteByte('\t')
	b.WriteString(orMissing(r.ID))
	b.WriteByte('\t')
	b.WriteString(r.Ref)
	b.WriteByte('\t')
	if len(r.Alt) == 0 {
		b.WriteString(Missing)
	} else {
		b.WriteString(strings.Join(r.Alt, ","))
	}
	b.WriteByte('\t')
	if r.HasQual {
		b.WriteString(strconv.FormatFloat(r.Qual, 'g', -1, 64))
	} else {
		b.WriteString(Missing)
	}
	b.WriteByte('\t')
	if len(r.Filters) == 0 {
		b.WriteString(Missing)
	} else {
		b.WriteString(strings.Join(r.Filters, ";"))
	}
	b.WriteByte('\t')
	b.WriteString(r.formatInfo())
	if len(r.Format) > 0 {
		b.WriteByte('\t')
		b.WriteString(strings.Join(r.Format, ":"))
		for _, s := range r.Samples {
			b.WriteByte('\t')
			b.WriteString(s)
		}
	}
	return b.String()
}

func (r *Record) formatInfo() string {
	if len(r.Info) == 0 {
		return Missing
	}
	keys := make([]string, 0, len(r.Info))
	for k := range r.Info {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(k)
		if v := r.Info[k]; v != "" {
			b.WriteByte('=')
			b.WriteString(v)
		}
	}
	return b.String()
}

func orMissing(s string) string {
	if s == "" {
		return Missing
	}
	return s
}
