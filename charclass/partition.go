package charclass

import (
	"slices"
	"sort"
)

// Map run and page parameters.
const (
	// CutOff is the length from which a run of equal classes is kept as a
	// run of its own rather than merged into a mixed run.
	CutOff = 128

	// PageSize is the page length of a two-level character map.
	PageSize = 256

	// MaxBMP is the last code point of the Basic Multilingual Plane.
	MaxBMP rune = 0xFFFF
)

// Partition divides the host alphabet [0, card) into disjoint equivalence
// classes such that every refined literal is a union of classes.
//
// A Partition is built in two phases: Refine is called once per literal,
// then FixMap freezes the classes and builds the lookup structures.
type Partition struct {
	card  rune
	elems []*element
	seen  map[*Literal]struct{}
	fixed bool

	segs     []segment
	inverse  []rune
	runs     []MapRun
	runsBMP  []MapRun
	runsHigh []MapRun
}

type element struct {
	list     *RangeList
	size     int
	literals []*Literal
}

// segment is a maximal range of code points that share a class.
type segment struct {
	CharRange
	class int
}

// NewPartition returns a partition of [0, card) holding a single class.
func NewPartition(card rune) *Partition {
	all := NewRangeList(false, CharRange{Min: 0, Max: card - 1})
	all.Canonicalize(card)
	return &Partition{
		card:  card,
		elems: []*element{{list: all, size: int(card)}},
		seen:  make(map[*Literal]struct{}),
	}
}

// Cardinality returns the host alphabet size.
func (p *Partition) Cardinality() rune {
	return p.card
}

// Len returns the number of equivalence classes.
func (p *Partition) Len() int {
	return len(p.elems)
}

// Members returns the canonical list of code points in class.
func (p *Partition) Members(class int) *RangeList {
	return p.elems[class].list
}

// Refine splits classes so that lit becomes a union of classes, and records
// those classes in lit.Classes. Refining the same literal twice is a no-op.
func (p *Partition) Refine(lit *Literal) {
	if p.fixed {
		panic("charclass: Refine after FixMap")
	}
	if _, ok := p.seen[lit]; ok {
		return
	}
	p.seen[lit] = struct{}{}
	lit.List.Canonicalize(p.card)
	lit.Classes = lit.Classes[:0]

	remaining := lit.List.Size()
	n := len(p.elems)
	for i := 0; i < n && remaining > 0; i++ {
		e := p.elems[i]
		inter := e.list.And(lit.List)
		if inter.IsEmpty() {
			continue
		}
		size := inter.Size()
		remaining -= size
		if size == e.size {
			e.literals = append(e.literals, lit)
			lit.Classes = append(lit.Classes, i)
			continue
		}

		ord := len(p.elems)
		split := &element{list: inter, size: size, literals: slices.Clone(e.literals)}
		for _, other := range e.literals {
			other.Classes = append(other.Classes, ord)
		}
		split.literals = append(split.literals, lit)
		lit.Classes = append(lit.Classes, ord)
		p.elems = append(p.elems, split)

		e.list = e.list.Sub(inter)
		e.size -= size
	}
}

// FixMap freezes the partition and builds the character map, its inverse
// and the map runs. It must be called once, after the last Refine.
func (p *Partition) FixMap() {
	if p.fixed {
		return
	}
	p.fixed = true
	p.inverse = make([]rune, len(p.elems))
	for ord, e := range p.elems {
		p.inverse[ord] = e.list.First()
		for _, r := range e.list.Ranges() {
			p.segs = append(p.segs, segment{CharRange: r, class: ord})
		}
	}
	slices.SortFunc(p.segs, func(a, b segment) int { return int(a.Min - b.Min) })
	p.findMapRuns()
}

func (p *Partition) mustBeFixed() {
	if !p.fixed {
		panic("charclass: partition used before FixMap")
	}
}

// Class returns the equivalence class of r, or -1 when r is outside the
// alphabet.
func (p *Partition) Class(r rune) int {
	p.mustBeFixed()
	if r < 0 || r >= p.card {
		return -1
	}
	return p.segs[p.segmentIndex(r)].class
}

// EnclosingRange returns the maximal range around r whose code points share
// r's class. It returns an empty range (lo > hi) for r outside the alphabet.
func (p *Partition) EnclosingRange(r rune) (lo, hi rune) {
	p.mustBeFixed()
	if r < 0 || r >= p.card {
		return 1, 0
	}
	s := p.segs[p.segmentIndex(r)]
	return s.Min, s.Max
}

func (p *Partition) segmentIndex(r rune) int {
	// first segment whose Max is >= r; segments tile the alphabet
	return sort.Search(len(p.segs), func(i int) bool { return p.segs[i].Max >= r })
}

// InvMap returns a sample code point of class, its smallest member.
func (p *Partition) InvMap(class int) rune {
	p.mustBeFixed()
	return p.inverse[class]
}

// MapRuns returns the runs of the character map over the whole alphabet.
func (p *Partition) MapRuns() []MapRun {
	p.mustBeFixed()
	return p.runs
}

// RunsInBMP returns the map runs split at the end of the BMP, lower part.
func (p *Partition) RunsInBMP() []MapRun {
	p.mustBeFixed()
	return p.runsBMP
}

// RunsAboveBMP returns the map runs split at the end of the BMP, upper part.
// It is empty for an alphabet that ends inside the BMP.
func (p *Partition) RunsAboveBMP() []MapRun {
	p.mustBeFixed()
	return p.runsHigh
}

func (p *Partition) findMapRuns() {
	for _, s := range p.segs {
		if n := len(p.runs); n > 0 && s.Len() < CutOff && p.runs[n-1].Tag != RunLong {
			p.runs[n-1].merge(s.CharRange)
			continue
		}
		p.runs = append(p.runs, newMapRun(s.CharRange, s.class))
	}

	for _, run := range p.runs {
		switch {
		case run.Range.Max <= MaxBMP:
			p.runsBMP = append(p.runsBMP, run)
		case run.Range.Min > MaxBMP:
			p.runsHigh = append(p.runsHigh, run)
		default:
			p.runsBMP = append(p.runsBMP, p.splitRun(run, CharRange{Min: run.Range.Min, Max: MaxBMP}))
			p.runsHigh = append(p.runsHigh, p.splitRun(run, CharRange{Min: MaxBMP + 1, Max: run.Range.Max}))
		}
	}
}

func (p *Partition) splitRun(run MapRun, part CharRange) MapRun {
	if run.Tag != RunMixed {
		return newMapRun(part, run.Class)
	}
	lo, hi := p.EnclosingRange(part.Min)
	if lo <= part.Min && part.Max <= hi {
		return newMapRun(part, p.Class(part.Min))
	}
	return MapRun{Tag: RunMixed, Range: part, Class: -1, TableOrd: -1}
}

// Pages returns one run per PageSize page of the BMP. A page holding a
// single class gets that class; any other page is a mixed run.
func (p *Partition) Pages() []MapRun {
	p.mustBeFixed()
	limit := min(p.card, MaxBMP+1)
	var pages []MapRun
	for start := rune(0); start < limit; start += PageSize {
		end := min(start+PageSize-1, limit-1)
		if _, hi := p.EnclosingRange(start); hi >= end {
			pages = append(pages, newMapRun(CharRange{Min: start, Max: end}, p.Class(start)))
		} else {
			pages = append(pages, MapRun{Tag: RunMixed, Range: CharRange{Min: start, Max: end}, Class: -1, TableOrd: -1})
		}
	}
	return pages
}

// EqualRuns reports whether two runs of the same length map every offset to
// the same class.
func (p *Partition) EqualRuns(a, b MapRun) bool {
	if a.Range.Len() != b.Range.Len() {
		return false
	}
	if a.Tag != RunMixed && b.Tag != RunMixed {
		return a.Class == b.Class
	}
	if a.Tag != b.Tag {
		return false
	}
	for off := rune(0); off < rune(a.Range.Len()); off++ {
		if p.Class(a.Range.Min+off) != p.Class(b.Range.Min+off) {
			return false
		}
	}
	return true
}
