package vcf

import (
	"strconv"
	"strings"
)

// InfoLine is one ##INFO declaration.
type InfoLine struct {
	ID          string
	Number      string
	Type        string
	Description string
}

// ContigLine is one ##contig declaration. Length is 0 when not declared.
type ContigLine struct {
	ID     string
	Length int64
}

// Header holds the VCF meta lines and the declarations derived from them.
// Lines keeps every header line verbatim, including #CHROM, so the header
// can be written back unchanged.
type Header struct {
	Lines       []string
	Infos       []InfoLine // in declaration order
	Contigs     []ContigLine
	Filters     []string
	SampleNames []string
}

// Info returns the INFO declaration with the given ID.
func (h *Header) Info(id string) (InfoLine, bool) {
	for _, info := range h.Infos {
		if info.ID == id {
			return info, true
		}
	}
	return InfoLine{}, false
}

// Contig returns the contig declaration with the given ID.
func (h *Header) Contig(id string) (ContigLine, bool) {
	for _, c := range h.Contigs {
		if c.ID == id {
			return c, true
		}
	}
	return ContigLine{}, false
}

// ContigNames returns declared contig IDs in header order.
func (h *Header) ContigNames() []string {
	names := make([]string, len(h.Contigs))
	for i, c := range h.Contigs {
		names[i] = c.ID
	}
	return names
}

// SampleIndex returns the column index of a sample, or -1.
func (h *Header) SampleIndex(name string) int {
	for i, s := range h.SampleNames {
		if s == name {
			return i
		}
	}
	return -1
}

// addLine records a ## meta line, picking up INFO, FILTER and contig
// declarations. Malformed structured lines are kept verbatim but ignored.
func (h *Header) addLine(line string) {
	h.Lines = append(h.Lines, line)

	key, value, ok := strings.Cut(strings.TrimPrefix(line, "##"), "=")
	if !ok || !strings.HasPrefix(value, "<") || !strings.HasSuffix(value, ">") {
		return
	}
	attrs := parseStructured(value[1 : len(value)-1])

	switch key {
	case "INFO":
		if attrs["ID"] == "" {
			return
		}
		h.Infos = append(h.Infos, InfoLine{
			ID:          attrs["ID"],
			Number:      attrs["Number"],
			Type:        attrs["Type"],
			Description: attrs["Description"],
		})
	case "FILTER":
		if attrs["ID"] != "" {
			h.Filters = append(h.Filters, attrs["ID"])
		}
	case "contig":
		if attrs["ID"] == "" {
			return
		}
		length, _ := strconv.ParseInt(attrs["length"], 10, 64)
		h.Contigs = append(h.Contigs, ContigLine{ID: attrs["ID"], Length: length})
	}
}

// parseStructured splits the body of a <...> meta value into key/value
// pairs. Commas inside double quotes do not separate pairs.
func parseStructured(body string) map[string]string {
	attrs := make(map[string]string)
	var (
		key     strings.Builder
		val     strings.Builder
		inValue bool
		quoted  bool
	)
	flush := func() {
		if key.Len() > 0 {
			attrs[strings.TrimSpace(key.String())] = val.String()
		}
		key.Reset()
		val.Reset()
		inValue = false
	}

	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case quoted:
			if c == '\\' && i+1 < len(body) {
				i++
				val.WriteByte(body[i])
			} else if c == '"' {
				quoted = false
			} else {
				val.WriteByte(c)
			}
		case c == '"' && inValue:
			quoted = true
		case c == '=' && !inValue:
			inValue = true
		case c == ',':
			flush()
		case inValue:
			val.WriteByte(c)
		default:
			key.WriteByte(c)
		}
	}
	flush()
	return attrs
}
