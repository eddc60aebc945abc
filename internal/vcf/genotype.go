package vcf

import (
	"fmt"
	"strings"
)

// GenotypeType classifies a sample call.
//
// The first four values are the canonical types and their order is the bit
// order used by the genotype matrix. Unavailable and Mixed only appear on
// decoded records and fold into NoCall through Canonical.
type GenotypeType uint8

const (
	NoCall GenotypeType = iota
	HomRef
	Het
	HomVar
	Unavailable
	Mixed
)

// NumCanonicalTypes is the number of canonical genotype types.
const NumCanonicalTypes = 4

var genotypeNames = [...]string{"NO_CALL", "HOM_REF", "HET", "HOM_VAR", "UNAVAILABLE", "MIXED"}

func (t GenotypeType) String() string {
	if int(t) < len(genotypeNames) {
		return genotypeNames[t]
	}
	return fmt.Sprintf("GenotypeType(%d)", t)
}

// Canonical folds Unavailable and Mixed into NoCall.
func (t GenotypeType) Canonical() GenotypeType {
	if t > HomVar {
		return NoCall
	}
	return t
}

// CanonicalTypes returns the four canonical types in bit order.
func CanonicalTypes() []GenotypeType {
	return []GenotypeType{NoCall, HomRef, Het, HomVar}
}

// ParseGenotypeType parses a canonical type name such as "HET" or "hom_var".
func ParseGenotypeType(s string) (GenotypeType, error) {
	name := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for i, n := range genotypeNames[:NumCanonicalTypes] {
		if n == name {
			return GenotypeType(i), nil
		}
	}
	return NoCall, fmt.Errorf("unknown genotype type %q", s)
}

// ClassifyGT classifies a GT value such as "0/1", "1|1", "./." or "0/.".
// An empty value (no GT key) is Unavailable.
func ClassifyGT(gt string) GenotypeType {
	if gt == "" {
		return Unavailable
	}

	var (
		first   string
		called  int
		missing int
		allRef  = true
		allSame = true
	)
	for rest := gt; ; {
		i := strings.IndexAny(rest, "/|")
		allele := rest
		if i >= 0 {
			allele = rest[:i]
		}

		if allele == "." || allele == "" {
			missing++
		} else {
			called++
			if allele != "0" {
				allRef = false
			}
			if first == "" {
				first = allele
			} else if allele != first {
				allSame = false
			}
		}

		if i < 0 {
			break
		}
		rest = rest[i+1:]
	}

	switch {
	case called == 0:
		return NoCall
	case missing > 0:
		return Mixed
	case allRef:
		return HomRef
	case allSame:
		return HomVar
	default:
		return Het
	}
}
