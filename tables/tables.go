// Package tables turns a finished DFA into the tables a table-driven
// scanner runs on: the character map, the next-state tables, the start
// state maps and the accept actions.
//
// The character map is emitted in one of four equivalent forms (see
// MapKind). Next-state rows are either sliced, with the longest run of equal
// entries replaced by a default, or full rows with duplicate rows shared.
package tables

import (
	"github.com/coregx/lexgen/dfa"
	"github.com/coregx/lexgen/internal/conv"
	"github.com/coregx/lexgen/rules"
)

// Options selects the table encodings.
type Options struct {
	// CompressMap selects a decision tree or a two-level map over a flat
	// character map.
	CompressMap bool

	// CompressNext selects sliced next-state rows over full rows.
	CompressNext bool

	// Squeeze rules out the two-level map.
	Squeeze bool
}

// Start describes one start condition.
type Start struct {
	Name string
	Ord  int

	// State and Anchor are the ordinals of the start state and of the state
	// used at the beginning of a line. Anchor equals State when no rule of
	// the condition is left-anchored.
	State  int
	Anchor int

	// EOF is the <<EOF>> rule of the condition, or nil.
	EOF *rules.Rule

	// Dummy marks the hidden start condition of a predicate.
	Dummy bool
}

// Predicate is a character-class predicate. A code point belongs to the
// class when its next state from State is State itself.
type Predicate struct {
	Name  string
	State int
}

// Stats summarizes the size of the tables.
type Stats struct {
	States       int
	AcceptStates int
	BackupStates int
	Classes      int

	// Transitions is the number of next-state entries emitted; AliasedRows
	// is the number of full rows shared with an earlier row.
	Transitions int
	AliasedRows int

	MapKind       MapKind
	MapEntries    int
	MapTables     int
	DecisionDepth int
}

// Tables are the scanner tables built from a DFA.
type Tables struct {
	// MaxSym is the number of symbols of a next-state row.
	MaxSym int

	// States is the number of states, the EOF state included.
	States int

	// MaxAccept is the largest accept state ordinal. States 1..MaxAccept
	// are the accept states.
	MaxAccept int

	// LeftAnchored tells whether the scanner must track line starts.
	LeftAnchored bool

	Starts     []Start
	Predicates []Predicate
	Map        *CharMap

	// Sliced is set when next-state rows are compressed; otherwise Raw
	// holds full rows and Alias[i] names the row Raw[i] shares, or -1.
	Sliced []Row
	Raw    [][]int
	Alias  []int

	// Accepts is indexed by state ordinal; entry 0 is unused.
	Accepts    []Accept
	Groups     []ActionGroup
	EOFGroups  []EOFGroup
	Backup     []bool
	Stats      Stats
	startIndex map[string]int
}

// Build returns the tables of d. The DFA must be finished.
func Build(d *dfa.DFA, opts Options) (*Tables, error) {
	if !d.Finished() {
		return nil, dfa.ErrNotFinished
	}
	states := d.States()
	t := &Tables{
		MaxSym:       d.MaxSym(),
		States:       len(states),
		MaxAccept:    d.MaxAccept(),
		LeftAnchored: d.HasLeftAnchors(),
		Map:          newCharMap(d.Alphabet(), opts),
		startIndex:   make(map[string]int),
	}
	t.buildStarts(d)

	if opts.CompressNext {
		t.Sliced, t.Stats.Transitions = slicedRows(d, states)
	} else {
		t.Raw, t.Alias, t.Stats.AliasedRows = rawRows(d, states)
		t.Stats.Transitions = (len(states) - t.Stats.AliasedRows) * t.MaxSym
	}

	t.Accepts = acceptsOf(states, t.MaxAccept)
	t.Groups = actionGroups(t.Accepts)
	t.EOFGroups = eofGroups(t.Starts)
	t.Backup = make([]bool, len(states))
	for i, s := range states {
		t.Backup[i] = s.NeedsBackup()
	}

	t.Stats.States = len(states)
	t.Stats.AcceptStates = t.MaxAccept
	t.Stats.BackupStates = d.BackupCount()
	t.Stats.MapKind = t.Map.Kind
	if t.Map.Kind != MapNone {
		t.Stats.Classes = t.Map.Classes
	}
	t.Stats.MapEntries = t.Map.Entries()
	t.Stats.MapTables = t.Map.Tables()
	t.Stats.DecisionDepth = t.Map.Depth
	return t, nil
}

func (t *Tables) buildStarts(d *dfa.DFA) {
	for _, inst := range d.Instances() {
		ss := inst.StartState()
		s := Start{
			Name:  ss.Name,
			Ord:   ss.Ord,
			State: d.State(inst.Start()).Num(),
			EOF:   inst.EOFRule(),
			Dummy: ss.Dummy,
		}
		s.Anchor = s.State
		if id, ok := inst.Anchor(); ok {
			s.Anchor = d.State(id).Num()
		}
		t.startIndex[s.Name] = len(t.Starts)
		t.Starts = append(t.Starts, s)
		if name, ok := rules.PredicateName(ss.Name); ok && ss.Dummy {
			t.Predicates = append(t.Predicates, Predicate{Name: name, State: s.State})
		}
	}
}

// Start returns the start condition with the given name.
func (t *Tables) Start(name string) (Start, bool) {
	i, ok := t.startIndex[name]
	if !ok {
		return Start{}, false
	}
	return t.Starts[i], true
}

// Predicate returns the predicate with the given category name.
func (t *Tables) Predicate(name string) (Predicate, bool) {
	for _, p := range t.Predicates {
		if p.Name == name {
			return p, true
		}
	}
	return Predicate{}, false
}

// NextState returns the next state ordinal of state on sym: a state
// ordinal, dfa.GotoStart when the automaton dies, or dfa.EOFNum.
func (t *Tables) NextState(state, sym int) int {
	if t.Sliced != nil {
		return t.Sliced[state].lookup(sym, t.MaxSym)
	}
	return t.Raw[state][sym]
}

// Symbol returns the symbol of r, or -1 for a code point outside the
// alphabet.
func (t *Tables) Symbol(r rune) int {
	return t.Map.Class(r)
}

// ElementBits returns the width of a next-state table element.
func (t *Tables) ElementBits() int {
	return conv.ElementBits(t.States)
}
