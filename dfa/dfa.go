// Package dfa converts the NFA instances of a scanner into one
// deterministic automaton by subset construction, optionally minimizes it,
// and answers the next-state queries that table emission needs.
//
// All instances share one state arena. State 0 is the distinguished EOF
// state. Accept states are numbered first, from 1, so that the emitted
// action switch is dense; the remaining states are numbered by Finish.
package dfa

import (
	"cmp"
	"slices"

	"github.com/bits-and-blooms/bitset"

	"github.com/coregx/lexgen/nfa"
	"github.com/coregx/lexgen/rules"
)

// Special state ordinals.
const (
	// Unset is the ordinal of a state that has not been numbered yet.
	Unset = -1

	// GotoStart is the next-state value of a missing transition. The scanner
	// stops, reports the last accept and restarts from the start state.
	GotoStart = -1

	// EOFNum is the ordinal of the EOF state.
	EOFNum = 0
)

// StateID indexes the state arena of a DFA.
type StateID uint32

const (
	// NoState is the StateID of a state that does not exist.
	NoState StateID = 0xFFFFFFFF

	// EOFState is the arena index of the EOF state.
	EOFState StateID = 0
)

// Transition is a move on symbol Sym to state Next.
type Transition struct {
	Sym  int
	Next StateID
}

// State is one DFA state.
type State struct {
	id     StateID
	num    int
	inst   *Instance
	nfaSet *bitset.BitSet
	trans  []Transition // sorted by Sym

	accept *rules.Rule
	rhCntx int
	lhCntx int

	needsBackup bool
	shortest    string
	reached     bool
}

// ID returns the arena index of the state.
func (s *State) ID() StateID { return s.id }

// Num returns the global ordinal, or Unset before numbering.
func (s *State) Num() int { return s.num }

// Instance returns the owning instance, or nil for the EOF state.
func (s *State) Instance() *Instance { return s.inst }

// Accept returns the rule recognized in this state, or nil.
func (s *State) Accept() *rules.Rule { return s.accept }

// IsAccept reports whether the state recognizes a rule.
func (s *State) IsAccept() bool { return s.accept != nil }

// RightContext returns the number of trailing characters to give back on
// accept, or 0.
func (s *State) RightContext() int { return s.rhCntx }

// LeftContext returns the token length to keep on accept, or 0.
func (s *State) LeftContext() int { return s.lhCntx }

// HasRightContext reports whether accepting here adjusts the token length.
func (s *State) HasRightContext() bool { return s.rhCntx > 0 || s.lhCntx > 0 }

// Transitions returns the explicit transitions sorted by symbol.
func (s *State) Transitions() []Transition { return s.trans }

// NeedsBackup reports whether the state is an accept state with a move to a
// non-accept state. It is valid after Finish.
func (s *State) NeedsBackup() bool { return s.needsBackup }

// ShortestString returns the shortest input found to reach the state, once
// FindShortestStrings or FindReachingStrings has run.
func (s *State) ShortestString() (string, bool) { return s.shortest, s.reached }

// NFAStates returns the NFA states the state was built from.
func (s *State) NFAStates() []nfa.StateID {
	if s.nfaSet == nil {
		return nil
	}
	out := make([]nfa.StateID, 0, s.nfaSet.Count())
	for i, ok := s.nfaSet.NextSet(0); ok; i, ok = s.nfaSet.NextSet(i + 1) {
		out = append(out, nfa.StateID(i)) //nolint:gosec // bounded by the NFA size
	}
	return out
}

// IsStart reports whether the state is the start or anchor state of its
// instance.
func (s *State) IsStart() bool {
	return s.inst != nil && (s.inst.start == s.id || s.inst.anchor == s.id)
}

func (s *State) next(sym int) (StateID, bool) {
	i, ok := slices.BinarySearchFunc(s.trans, sym, func(t Transition, sym int) int { return t.Sym - sym })
	if !ok {
		return NoState, false
	}
	return s.trans[i].Next, true
}

// Instance is the part of the automaton belonging to one start state.
type Instance struct {
	nfa     *nfa.Instance
	start   StateID
	anchor  StateID
	eofRule *rules.Rule
	states  int
	accepts int
	table   map[string]StateID
}

// NFA returns the instance the states were built from.
func (inst *Instance) NFA() *nfa.Instance { return inst.nfa }

// StartState returns the start condition of the instance.
func (inst *Instance) StartState() *rules.StartState { return inst.nfa.StartState() }

// Name returns the start condition name.
func (inst *Instance) Name() string { return inst.nfa.Name() }

// Ord returns the start condition ordinal.
func (inst *Instance) Ord() int { return inst.nfa.StartState().Ord }

// Start returns the start state.
func (inst *Instance) Start() StateID { return inst.start }

// Anchor returns the start state for scanning at the beginning of a line.
// It exists only when some rule of the start condition is left-anchored.
func (inst *Instance) Anchor() (StateID, bool) { return inst.anchor, inst.anchor != NoState }

// EOFRule returns the <<EOF>> rule of the start condition, or nil.
func (inst *Instance) EOFRule() *rules.Rule { return inst.eofRule }

// StateCount returns the number of states created for the instance by
// subset construction.
func (inst *Instance) StateCount() int { return inst.states }

// AcceptCount returns the number of accept states created for the instance.
func (inst *Instance) AcceptCount() int { return inst.accepts }

// DFA is the deterministic automaton for all start conditions.
type DFA struct {
	alpha  *nfa.Alphabet
	maxSym int
	config Config

	states []*State  // arena, indexed by StateID
	list   []StateID // live states; sorted by ordinal after Finish
	insts  []*Instance

	nextNum        int
	hasLeftAnchors bool
	origLength     int
	minimized      bool
	finished       bool
	maxAccept      int
	backupCount    int
}

// Alphabet returns the symbol alphabet of the automaton.
func (d *DFA) Alphabet() *nfa.Alphabet { return d.alpha }

// MaxSym returns the number of symbols in a next-state row.
func (d *DFA) MaxSym() int { return d.maxSym }

// Instances returns the instances in start condition order.
func (d *DFA) Instances() []*Instance { return d.insts }

// State returns the state with the given arena index.
func (d *DFA) State(id StateID) *State { return d.states[id] }

// States returns the live states. After Finish, States()[i].Num() == i.
func (d *DFA) States() []*State {
	out := make([]*State, len(d.list))
	for i, id := range d.list {
		out[i] = d.states[id]
	}
	return out
}

// Len returns the number of live states, including the EOF state.
func (d *DFA) Len() int { return len(d.list) }

// OriginalLength returns the number of states before minimization.
func (d *DFA) OriginalLength() int {
	if d.minimized {
		return d.origLength
	}
	return len(d.list)
}

// Minimized reports whether Minimize has run.
func (d *DFA) Minimized() bool { return d.minimized }

// Finished reports whether Finish has run.
func (d *DFA) Finished() bool { return d.finished }

// HasLeftAnchors reports whether some instance has an anchor state, which
// requires the line-start aware scanning loop.
func (d *DFA) HasLeftAnchors() bool { return d.hasLeftAnchors }

// MaxAccept returns the largest accept state ordinal. Valid after Finish.
func (d *DFA) MaxAccept() int { return d.maxAccept }

// BackupCount returns the number of accept states that need backup. Valid
// after Finish.
func (d *DFA) BackupCount() int { return d.backupCount }

// DefaultNext returns the next state of s on symbols without an explicit
// transition.
func (d *DFA) DefaultNext(s *State) int {
	if s.inst == nil {
		return EOFNum
	}
	return GotoStart
}

// Next returns the target of s on sym.
func (d *DFA) Next(s *State, sym int) (*State, bool) {
	id, ok := s.next(sym)
	if !ok {
		return nil, false
	}
	return d.states[id], true
}

// NextOn returns the ordinal of the next state of s on sym, emulating a
// full row from the sparse transitions.
func (d *DFA) NextOn(s *State, sym int) int {
	if id, ok := s.next(sym); ok {
		return d.states[id].num
	}
	return d.DefaultNext(s)
}

// EquivalentNextStates reports whether a and b have identical next-state
// rows, default included.
func (d *DFA) EquivalentNextStates(a, b *State) bool {
	if d.DefaultNext(a) != d.DefaultNext(b) || len(a.trans) != len(b.trans) {
		return false
	}
	for i, t := range a.trans {
		if t != b.trans[i] {
			return false
		}
	}
	return true
}

// Finish numbers the non-accept states after the accept states, sorts the
// state list by ordinal and marks the accept states that need backup.
// Calling it again has no effect.
func (d *DFA) Finish() {
	if d.finished {
		return
	}
	d.maxAccept = d.nextNum - 1
	for _, id := range d.list {
		if s := d.states[id]; s.num == Unset {
			s.num = d.nextNum
			d.nextNum++
		}
	}
	slices.SortFunc(d.list, func(a, b StateID) int {
		return cmp.Compare(d.states[a].num, d.states[b].num)
	})
	for _, id := range d.list[:d.maxAccept+1] {
		s := d.states[id]
		if s.accept != nil && d.hasBackupMove(s) {
			s.needsBackup = true
			d.backupCount++
		}
	}
	d.finished = true
}

func (d *DFA) hasBackupMove(s *State) bool {
	for _, t := range s.trans {
		if d.states[t.Next].accept == nil {
			return true
		}
	}
	return false
}
