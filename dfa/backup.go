package dfa

import "strconv"

// BackupTransition returns a quoted example character on which the accept
// state s moves to a non-accept state, or "EOF" when there is none.
func (d *DFA) BackupTransition(s *State) string {
	for _, t := range s.trans {
		if d.states[t.Next].accept == nil {
			return strconv.QuoteRune(d.alpha.Sample(t.Sym))
		}
	}
	return "EOF"
}

// FindShortestStrings records, for every reachable state, a shortest input
// leading to it from a start state. Strings from an anchor state begin
// with '^'.
func (d *DFA) FindShortestStrings() {
	d.walkReaching(false)
}

// FindReachingStrings records some input reaching each state, stopping as
// soon as every backup state has been reached. It is cheaper than
// FindShortestStrings when only the backup report is wanted.
func (d *DFA) FindReachingStrings() {
	d.walkReaching(true)
}

// walkReaching is a breadth-first search from all start and anchor states.
// The first visit of a state is along a shortest path.
func (d *DFA) walkReaching(untilBackups bool) {
	for _, s := range d.states {
		s.shortest, s.reached = "", false
	}
	pending := d.backupCount
	var queue []*State
	visit := func(s *State, str string) {
		s.shortest, s.reached = str, true
		queue = append(queue, s)
		if s.needsBackup {
			pending--
		}
	}
	for _, inst := range d.insts {
		if s := d.states[inst.start]; !s.reached {
			visit(s, "")
		}
		if inst.anchor != NoState {
			if s := d.states[inst.anchor]; !s.reached {
				visit(s, "^")
			}
		}
	}
	for len(queue) > 0 {
		if untilBackups && d.finished && pending <= 0 {
			return
		}
		elem := queue[0]
		queue = queue[1:]
		for _, t := range elem.trans {
			next := d.states[t.Next]
			if next.reached {
				continue
			}
			visit(next, elem.shortest+string(d.alpha.Sample(t.Sym)))
		}
	}
}

// ExcludeLongestRun finds the longest run of equal next states in the row
// of s, treating the row as circular, and returns the residual table
// parameters: the residual starts at symbol lo, holds rng entries (wrapping
// past the last symbol to symbol 0) and every other symbol maps to dflt.
// A row with a single value has rng 0. Valid after Finish.
func (d *DFA) ExcludeLongestRun(s *State) (lo, rng, dflt int) {
	n := d.maxSym
	current := d.NextOn(s, 0)
	runLen, bestRun, bestIdx, bestNxt := 0, 0, 0, current
	for i := 0; i < 2*n; i++ {
		nxt := d.NextOn(s, i%n)
		if nxt == current {
			runLen++
			continue
		}
		if runLen > bestRun {
			bestRun, bestIdx, bestNxt = runLen, i, current
		}
		current, runLen = nxt, 1
	}
	if bestRun == 0 {
		// no value change in two sweeps
		return 0, 0, current
	}
	return bestIdx % n, n - bestRun, bestNxt
}
