// Package nfa builds the non-deterministic automata of a scanner: one
// instance per start state, recognizing the union of the rules active in
// that state.
//
// States live in a per-instance arena and refer to each other by StateID.
// A state has at most one target per symbol; a second transition on the same
// symbol is routed through a fresh state reached by an epsilon edge, so the
// subset construction can read targets without merging lists.
package nfa

import (
	"fmt"
	"slices"

	"github.com/bits-and-blooms/bitset"

	"github.com/coregx/lexgen/rules"
)

// StateID identifies a state within one Instance.
type StateID uint32

// InvalidState is the StateID of a state that does not exist.
const InvalidState StateID = 0xFFFFFFFF

// Transition is a move on symbol Sym to state Next.
type Transition struct {
	Sym  int
	Next StateID
}

// State is one NFA state.
type State struct {
	id     StateID
	trans  []Transition // sorted by Sym, one entry per symbol
	eps    []StateID
	epsSet bitset.BitSet
	accept *rules.Rule

	// rhCntx and lhCntx are the fixed right and left context lengths of a
	// trailing-context rule accepted here.
	rhCntx int
	lhCntx int
}

// ID returns the state's identifier.
func (s *State) ID() StateID { return s.id }

// Transitions returns the symbol transitions sorted by symbol.
func (s *State) Transitions() []Transition { return s.trans }

// Epsilons returns the epsilon targets in insertion order.
func (s *State) Epsilons() []StateID { return s.eps }

// Accept returns the rule accepted in this state, or nil.
func (s *State) Accept() *rules.Rule { return s.accept }

// RightContext returns the fixed length of trailing context, or 0.
func (s *State) RightContext() int { return s.rhCntx }

// LeftContext returns the fixed length of the consumed part of a
// trailing-context match, or 0.
func (s *State) LeftContext() int { return s.lhCntx }

// Next returns the target on sym.
func (s *State) Next(sym int) (StateID, bool) {
	i, ok := slices.BinarySearchFunc(s.trans, sym, func(t Transition, sym int) int { return t.Sym - sym })
	if !ok {
		return InvalidState, false
	}
	return s.trans[i].Next, true
}

func (s *State) setNext(sym int, next StateID) bool {
	i, found := slices.BinarySearchFunc(s.trans, sym, func(t Transition, sym int) int { return t.Sym - sym })
	if found {
		return false
	}
	s.trans = slices.Insert(s.trans, i, Transition{Sym: sym, Next: next})
	return true
}

// Instance is the automaton of one start state.
type Instance struct {
	startState *rules.StartState
	states     []State
	entry      StateID
	anchor     StateID
	accepts    []StateID
	eofRule    *rules.Rule
}

func newInstance(ss *rules.StartState) *Instance {
	inst := &Instance{startState: ss, anchor: InvalidState}
	inst.entry = inst.newState()
	return inst
}

// StartState returns the start state the instance was built for.
func (inst *Instance) StartState() *rules.StartState { return inst.startState }

// Name returns the start state name.
func (inst *Instance) Name() string { return inst.startState.Name }

// Len returns the number of states.
func (inst *Instance) Len() int { return len(inst.states) }

// State returns the state with the given id.
func (inst *Instance) State(id StateID) *State { return &inst.states[id] }

// Entry returns the state every unanchored pattern starts from.
func (inst *Instance) Entry() StateID { return inst.entry }

// Anchor returns the start state for scanning at the beginning of a line.
// It exists only when some rule of the instance is left-anchored.
func (inst *Instance) Anchor() (StateID, bool) {
	return inst.anchor, inst.anchor != InvalidState
}

// LeftAnchored reports whether any rule of the instance starts with '^'.
func (inst *Instance) LeftAnchored() bool { return inst.anchor != InvalidState }

// AcceptStates returns the accepting states in creation order.
func (inst *Instance) AcceptStates() []StateID { return inst.accepts }

// EOFRule returns the <<EOF>> rule of the instance, or nil.
func (inst *Instance) EOFRule() *rules.Rule { return inst.eofRule }

func (inst *Instance) newState() StateID {
	id := StateID(len(inst.states)) //nolint:gosec // arena length
	inst.states = append(inst.states, State{id: id})
	return id
}

// anchorState returns the anchor start state, creating it on first use with
// an epsilon edge to the entry state.
func (inst *Instance) anchorState() StateID {
	if inst.anchor == InvalidState {
		inst.anchor = inst.newState()
		inst.addEpsilon(inst.anchor, inst.entry)
	}
	return inst.anchor
}

func (inst *Instance) addEpsilon(from, to StateID) {
	s := &inst.states[from]
	if s.epsSet.Test(uint(to)) {
		return
	}
	s.epsSet.Set(uint(to))
	s.eps = append(s.eps, to)
}

// addTransition adds from --sym--> to. An occupied symbol is routed through
// a new state reached by an epsilon edge. Symbols outside the alphabet are
// dropped.
func (inst *Instance) addTransition(from StateID, sym int, to StateID) {
	if sym < 0 {
		return
	}
	if inst.states[from].setNext(sym, to) {
		return
	}
	if cur, _ := inst.states[from].Next(sym); cur == to {
		return
	}
	tmp := inst.newState()
	inst.addEpsilon(from, tmp)
	inst.states[tmp].setNext(sym, to)
}

func (inst *Instance) markAccept(id StateID, r *rules.Rule) {
	inst.states[id].accept = r
	inst.accepts = append(inst.accepts, id)
}

// Closure returns the epsilon closure of the given states as a bit set
// over state ids.
func (inst *Instance) Closure(ids ...StateID) *bitset.BitSet {
	set := bitset.New(uint(len(inst.states)))
	stack := make([]StateID, 0, len(ids))
	for _, id := range ids {
		if !set.Test(uint(id)) {
			set.Set(uint(id))
			stack = append(stack, id)
		}
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range inst.states[id].eps {
			if !set.Test(uint(e)) {
				set.Set(uint(e))
				stack = append(stack, e)
			}
		}
	}
	return set
}

// CloseOver extends set in place with the epsilon closure of its members.
func (inst *Instance) CloseOver(set *bitset.BitSet) {
	var stack []StateID
	for i, ok := set.NextSet(0); ok; i, ok = set.NextSet(i + 1) {
		stack = append(stack, StateID(i)) //nolint:gosec // bounded by Len()
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range inst.states[id].eps {
			if !set.Test(uint(e)) {
				set.Set(uint(e))
				stack = append(stack, e)
			}
		}
	}
}

// String summarizes the instance for verbose output.
func (inst *Instance) String() string {
	return fmt.Sprintf("start condition %s: %d patterns, %d nfsa states, %d accept states",
		inst.Name(), len(inst.startState.Rules), len(inst.states), len(inst.accepts))
}

// NFA is the set of instances built for a rule table.
type NFA struct {
	Alphabet  *Alphabet
	Instances []*Instance
}

// States returns the total number of states over all instances.
func (n *NFA) States() int {
	total := 0
	for _, inst := range n.Instances {
		total += inst.Len()
	}
	return total
}
