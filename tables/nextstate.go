package tables

import (
	"github.com/coregx/lexgen/dfa"
)

// Row is the sliced next-state table of one state. The entries for the
// symbols Min, Min+1, ... (wrapping past the last symbol to 0) are stored in
// Next; every other symbol goes to Default.
type Row struct {
	Min     int
	Rng     int
	Default int
	Next    []int
}

// lookup returns the next state on sym for an alphabet of maxSym symbols.
func (r *Row) lookup(sym, maxSym int) int {
	idx := sym - r.Min
	if idx < 0 {
		idx += maxSym
	}
	if uint(idx) >= uint(r.Rng) {
		return r.Default
	}
	return r.Next[idx]
}

func slicedRows(d *dfa.DFA, states []*dfa.State) ([]Row, int) {
	maxSym := d.MaxSym()
	rows := make([]Row, len(states))
	entries := 0
	for i, s := range states {
		if len(s.Transitions()) == 0 {
			rows[i] = Row{Default: d.DefaultNext(s)}
			continue
		}
		lo, rng, dflt := d.ExcludeLongestRun(s)
		row := Row{Min: lo, Rng: rng, Default: dflt, Next: make([]int, rng)}
		for j := range rng {
			row.Next[j] = d.NextOn(s, (j+lo)%maxSym)
		}
		rows[i] = row
		entries += rng
	}
	return rows, entries
}

// rawRows returns full next-state rows. A row equal to an earlier row
// shares it; alias[i] is the index of the shared row, or -1.
func rawRows(d *dfa.DFA, states []*dfa.State) (rows [][]int, alias []int, copies int) {
	maxSym := d.MaxSym()
	rows = make([][]int, len(states))
	alias = make([]int, len(states))
	for i, s := range states {
		alias[i] = -1
		for j := range i {
			if d.EquivalentNextStates(s, states[j]) {
				alias[i] = j
				rows[i] = rows[j]
				copies++
				break
			}
		}
		if alias[i] >= 0 {
			continue
		}
		row := make([]int, maxSym)
		for sym := range row {
			row[sym] = d.NextOn(s, sym)
		}
		rows[i] = row
	}
	return rows, alias, copies
}
