// Package genome provides a reference chromosome table for naming and
// approximate genomic progress.
package genome

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"strconv"
	"strings"
)

//go:embed grch38.tsv
var grch38 string

// UnknownProgress is reported for contigs missing from the reference.
const UnknownProgress = 0.99

// Namespace is a chromosome naming convention.
type Namespace uint8

const (
	GRCh    Namespace = iota // 1, 2, X, MT
	UCSC                     // chr1, chr2, chrX, chrM
	RefSeq                   // NC_000001.11
	GenBank                  // CM000663.2
	numNamespaces
)

func (n Namespace) String() string {
	switch n {
	case GRCh:
		return "GRCh"
	case UCSC:
		return "UCSC"
	case RefSeq:
		return "RefSeq"
	case GenBank:
		return "GenBank"
	default:
		return fmt.Sprintf("Namespace(%d)", n)
	}
}

// Chromosome is one reference sequence.
type Chromosome struct {
	Name    string
	UCSC    string
	RefSeq  string
	GenBank string
	Length  int64
}

// NameIn returns the chromosome name under a namespace.
func (c Chromosome) NameIn(ns Namespace) string {
	switch ns {
	case UCSC:
		return c.UCSC
	case RefSeq:
		return c.RefSeq
	case GenBank:
		return c.GenBank
	default:
		return c.Name
	}
}

// Reference is an ordered chromosome table with cumulative offsets.
type Reference struct {
	chromosomes []Chromosome
	offsets     []int64
	total       int64
	index       [numNamespaces]map[string]int
}

// GRCh38 returns the primary GRCh38 assembly.
func GRCh38() *Reference {
	ref, err := Load(strings.NewReader(grch38))
	if err != nil {
		panic(fmt.Sprintf("genome: embedded GRCh38 table: %v", err))
	}
	return ref
}

// Load reads a reference table. Each line holds the tab-separated name,
// UCSC name, RefSeq accession, GenBank accession and length. Lines
// starting with '#' are ignored, and "na" marks a missing name.
func Load(r io.Reader) (*Reference, error) {
	ref := &Reference{}
	for i := range ref.index {
		ref.index[i] = make(map[string]int)
	}

	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 5 {
			return nil, fmt.Errorf("line %d: expected 5 columns, found %d", lineNumber, len(fields))
		}
		length, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil || length < 0 {
			return nil, fmt.Errorf("line %d: invalid length %q", lineNumber, fields[4])
		}
		ref.add(Chromosome{
			Name:    fields[0],
			UCSC:    fields[1],
			RefSeq:  fields[2],
			GenBank: fields[3],
			Length:  length,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read reference: %w", err)
	}
	return ref, nil
}

func (ref *Reference) add(c Chromosome) {
	i := len(ref.chromosomes)
	ref.chromosomes = append(ref.chromosomes, c)
	ref.offsets = append(ref.offsets, ref.total)
	ref.total += c.Length
	for ns := GRCh; ns < numNamespaces; ns++ {
		if name := c.NameIn(ns); name != "" && name != "na" {
			ref.index[ns][name] = i
		}
	}
}

// Chromosomes returns the table in reference order.
func (ref *Reference) Chromosomes() []Chromosome {
	return ref.chromosomes
}

// Length returns the total reference length.
func (ref *Reference) Length() int64 {
	return ref.total
}

func (ref *Reference) find(name string) (int, bool) {
	for ns := GRCh; ns < numNamespaces; ns++ {
		if i, ok := ref.index[ns][name]; ok {
			return i, true
		}
	}
	return 0, false
}

// Lookup finds a chromosome by its name under any namespace.
func (ref *Reference) Lookup(name string) (Chromosome, bool) {
	i, ok := ref.find(name)
	if !ok {
		return Chromosome{}, false
	}
	return ref.chromosomes[i], true
}

// Rename converts a chromosome name into another namespace. Unknown names
// are returned unchanged.
func (ref *Reference) Rename(name string, ns Namespace) string {
	c, ok := ref.Lookup(name)
	if !ok {
		return name
	}
	if n := c.NameIn(ns); n != "" && n != "na" {
		return n
	}
	return name
}

// Progress returns the approximate fraction of the genome before pos on
// chrom. Unknown contigs report UnknownProgress.
func (ref *Reference) Progress(chrom string, pos int64) float64 {
	i, ok := ref.find(chrom)
	if !ok || ref.total == 0 {
		return UnknownProgress
	}
	p := float64(ref.offsets[i]+pos) / float64(ref.total)
	return min(p, 1)
}

// GuessNamespace returns the namespace that names the most contigs,
// preferring GRCh on ties.
func (ref *Reference) GuessNamespace(contigs []string) Namespace {
	var counts [numNamespaces]int
	for _, c := range contigs {
		for ns := GRCh; ns < numNamespaces; ns++ {
			if _, ok := ref.index[ns][c]; ok {
				counts[ns]++
			}
		}
	}
	best := GRCh
	for ns := GRCh + 1; ns < numNamespaces; ns++ {
		if counts[ns] > counts[best] {
			best = ns
		}
	}
	return best
}
