package tables

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/coregx/lexgen/charclass"
	"github.com/coregx/lexgen/internal/conv"
	"github.com/coregx/lexgen/nfa"
)

// MapKind selects how code points are mapped to equivalence classes.
type MapKind uint8

const (
	// MapNone means no equivalence classes: the symbol is the code point.
	MapNone MapKind = iota

	// MapFlat is one table entry per code point.
	MapFlat

	// MapCompressed is a decision tree over map runs with dense tables at
	// the mixed leaves.
	MapCompressed

	// MapTwoLevel is a table of shared 256-entry pages for the BMP, with a
	// decision tree or a constant above it.
	MapTwoLevel
)

// String returns the strategy name.
func (k MapKind) String() string {
	switch k {
	case MapNone:
		return "none"
	case MapFlat:
		return "flat"
	case MapCompressed:
		return "compressed"
	case MapTwoLevel:
		return "two-level"
	default:
		return fmt.Sprintf("MapKind(%d)", k)
	}
}

// Run is one leaf of the map decision tree. Table is set for a run whose
// code points belong to several classes; otherwise every code point in
// [Min, Max] maps to Class.
type Run struct {
	Min, Max rune
	Class    int
	Table    []int32
}

// CharMap maps code points to equivalence classes.
type CharMap struct {
	Kind    MapKind
	Card    rune
	Classes int

	// Flat holds one class per code point (MapFlat).
	Flat []int32

	// Runs are the decision tree leaves in code point order (MapCompressed,
	// and MapTwoLevel above the BMP when HighRuns is set).
	Runs []Run

	// Pages maps each BMP page to its table in PageTables (MapTwoLevel).
	Pages      []int
	PageTables [][]int32

	// HighRuns tells whether code points above the BMP go through Runs;
	// otherwise they all map to HighClass.
	HighRuns  bool
	HighClass int

	// Depth is the depth of the decision tree.
	Depth int
}

// Class returns the equivalence class of r, or -1 when r is outside the
// alphabet.
func (m *CharMap) Class(r rune) int {
	if r < 0 || r >= m.Card {
		return -1
	}
	switch m.Kind {
	case MapFlat:
		return int(m.Flat[r])
	case MapCompressed:
		return decide(m.Runs, r)
	case MapTwoLevel:
		if r <= charclass.MaxBMP {
			return int(m.PageTables[m.Pages[r/charclass.PageSize]][r%charclass.PageSize])
		}
		if m.HighRuns {
			return decide(m.Runs, r)
		}
		return m.HighClass
	default:
		return int(r)
	}
}

// decide walks the decision tree over runs: each node splits the runs
// [first, last] at the start of run (first+last+1)/2.
func decide(runs []Run, r rune) int {
	first, last := 0, len(runs)-1
	for first < last {
		mid := (first + last + 1) / 2
		if r < runs[mid].Min {
			last = mid - 1
		} else {
			first = mid
		}
	}
	run := &runs[first]
	if run.Table != nil {
		return int(run.Table[r-run.Min])
	}
	return run.Class
}

// ElementBits returns the width of a map table element.
func (m *CharMap) ElementBits() int {
	return conv.ElementBits(m.Classes)
}

// Entries returns the number of table entries the map needs.
func (m *CharMap) Entries() int {
	n := len(m.Flat)
	for _, run := range m.Runs {
		n += len(run.Table)
	}
	for _, page := range m.PageTables {
		n += len(page)
	}
	return n
}

// Tables returns the number of distinct dense tables of the map.
func (m *CharMap) Tables() int {
	n := len(m.PageTables)
	if m.Flat != nil {
		n++
	}
	for _, run := range m.Runs {
		if run.Table != nil {
			n++
		}
	}
	return n
}

func newCharMap(alpha *nfa.Alphabet, opts Options) *CharMap {
	m := &CharMap{Kind: MapNone, Card: alpha.Cardinality(), Classes: alpha.Len()}
	if !alpha.Packed() {
		return m
	}
	p := alpha.Partition()
	switch {
	case !opts.CompressMap:
		m.Kind = MapFlat
		m.Flat = flatMap(p)
	case useTwoLevelMap(p, opts):
		m.Kind = MapTwoLevel
		m.buildPages(p)
		high := p.RunsAboveBMP()
		if len(high) > 1 || high[0].Tag == charclass.RunMixed {
			m.HighRuns = true
			m.Runs = runsOf(p, high)
			m.Depth = treeDepth(len(m.Runs))
		} else {
			m.HighClass = p.Class(charclass.MaxBMP + 1)
		}
	default:
		m.Kind = MapCompressed
		m.Runs = runsOf(p, p.MapRuns())
		m.Depth = treeDepth(len(m.Runs))
	}
	return m
}

// useTwoLevelMap reports whether the decision tree over the whole alphabet
// would be deeper than 3 and the alphabet reaches above the BMP.
func useTwoLevelMap(p *charclass.Partition, opts Options) bool {
	if opts.Squeeze || p.Cardinality() <= charclass.MaxBMP+1 {
		return false
	}
	return treeDepth(len(p.MapRuns())) > 3
}

// treeDepth returns ceil(log2(n)).
func treeDepth(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

func flatMap(p *charclass.Partition) []int32 {
	flat := make([]int32, p.Cardinality())
	for class := range p.Len() {
		c := conv.IntToInt32(class)
		for _, r := range p.Members(class).Ranges() {
			for ch := r.Min; ch <= r.Max; ch++ {
				flat[ch] = c
			}
		}
	}
	return flat
}

func runsOf(p *charclass.Partition, mapRuns []charclass.MapRun) []Run {
	runs := make([]Run, len(mapRuns))
	for i, mr := range mapRuns {
		runs[i] = Run{Min: mr.Range.Min, Max: mr.Range.Max, Class: mr.Class}
		if mr.Tag == charclass.RunMixed {
			runs[i].Class = -1
			runs[i].Table = denseTable(p, mr.Range)
		}
	}
	return runs
}

func denseTable(p *charclass.Partition, r charclass.CharRange) []int32 {
	table := make([]int32, 0, r.Len())
	for ch := r.Min; ch <= r.Max; {
		_, hi := p.EnclosingRange(ch)
		c := conv.IntToInt32(p.Class(ch))
		for ; ch <= min(hi, r.Max); ch++ {
			table = append(table, c)
		}
	}
	return table
}

// buildPages fills the BMP pages. A page equal to an earlier page shares the
// earlier page's table.
func (m *CharMap) buildPages(p *charclass.Partition) {
	pages := p.Pages()
	seen := make(map[string]int, len(pages))
	m.Pages = make([]int, len(pages))
	for i, page := range pages {
		table := denseTable(p, page.Range)
		key := pageKey(table)
		ord, ok := seen[key]
		if !ok {
			ord = len(m.PageTables)
			seen[key] = ord
			m.PageTables = append(m.PageTables, table)
		}
		m.Pages[i] = ord
	}
}

func pageKey(table []int32) string {
	buf := make([]byte, 0, 4*len(table))
	for _, c := range table {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(c)) //nolint:gosec // class ordinals are non-negative
	}
	return string(buf)
}
