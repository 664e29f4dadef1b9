package tables

import (
	"github.com/coregx/lexgen/dfa"
	"github.com/coregx/lexgen/rules"
)

// Accept is the action taken when the scanner stops in an accept state.
type Accept struct {
	Rule *rules.Rule

	// RightContext is the number of characters given back; LeftContext,
	// when set, is the token length kept instead.
	RightContext int
	LeftContext  int
}

// Length returns the token length for a match that consumed n characters.
func (a Accept) Length(n int) int {
	switch {
	case a.LeftContext > 0:
		return a.LeftContext
	case a.RightContext > 0:
		return n - a.RightContext
	default:
		return n
	}
}

// ActionGroup is a set of accept states that run the same action with the
// same context adjustment, i.e. one case of the emitted action switch.
type ActionGroup struct {
	States []int
	Accept Accept
}

// EOFGroup is a set of start states sharing an <<EOF>> action.
type EOFGroup struct {
	Starts []int
	Rule   *rules.Rule
}

func acceptsOf(states []*dfa.State, maxAccept int) []Accept {
	accepts := make([]Accept, maxAccept+1)
	for _, s := range states[1 : maxAccept+1] {
		accepts[s.Num()] = Accept{Rule: s.Accept(), RightContext: s.RightContext(), LeftContext: s.LeftContext()}
	}
	return accepts
}

func actionGroups(accepts []Accept) []ActionGroup {
	var groups []ActionGroup
	done := make([]bool, len(accepts))
	for i := dfa.EOFNum + 1; i < len(accepts); i++ {
		if done[i] {
			continue
		}
		a := accepts[i]
		g := ActionGroup{States: []int{i}, Accept: a}
		done[i] = true
		for j := i + 1; j < len(accepts); j++ {
			b := accepts[j]
			if !done[j] && a.LeftContext == b.LeftContext && a.RightContext == b.RightContext &&
				a.Rule.Action == b.Rule.Action {
				g.States = append(g.States, j)
				done[j] = true
			}
		}
		groups = append(groups, g)
	}
	return groups
}

// eofGroups groups the start states with an <<EOF>> rule by action. A
// state shared by start conditions merged in minimization appears once, in
// the group of the first such condition.
func eofGroups(starts []Start) []EOFGroup {
	var groups []EOFGroup
	done := make([]bool, len(starts))
	listed := make(map[int]bool)
	for i, s := range starts {
		if s.EOF == nil || done[i] {
			continue
		}
		done[i] = true
		if listed[s.State] {
			continue
		}
		listed[s.State] = true
		g := EOFGroup{Starts: []int{s.State}, Rule: s.EOF}
		for j := i + 1; j < len(starts); j++ {
			o := starts[j]
			if o.EOF == nil || done[j] || o.EOF.Action != s.EOF.Action {
				continue
			}
			done[j] = true
			if !listed[o.State] {
				listed[o.State] = true
				g.Starts = append(g.Starts, o.State)
			}
		}
		groups = append(groups, g)
	}
	return groups
}
