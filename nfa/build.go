package nfa

import (
	"errors"
	"fmt"

	"github.com/coregx/lexgen/rules"
	"github.com/coregx/lexgen/syntax"
)

// Build errors.
var (
	// ErrVariableContext indicates a trailing-context rule where neither
	// side of the '/' has a fixed length.
	ErrVariableContext = errors.New("variable right context '/' not implemented")

	// ErrInvalidPattern indicates a tree node the builder cannot encode.
	ErrInvalidPattern = errors.New("invalid pattern tree")
)

// BuildError reports a rule that could not be turned into an automaton.
type BuildError struct {
	Rule    *rules.Rule
	StateID StateID
	Err     error
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	if e.Rule != nil {
		return fmt.Sprintf("NFA build error for pattern %q: %v", e.Rule.Pattern, e.Err)
	}
	return fmt.Sprintf("NFA build error at state %d: %v", e.StateID, e.Err)
}

// Unwrap returns the underlying error.
func (e *BuildError) Unwrap() error {
	return e.Err
}

// Build constructs one instance per start state of set other than All, in
// start state order. The rule table must be finished and free of errors.
func Build(set *rules.Set, alpha *Alphabet) (*NFA, error) {
	n := &NFA{Alphabet: alpha}
	for _, ss := range set.StartStates() {
		if ss.IsAll() {
			continue
		}
		inst := newInstance(ss)
		for _, r := range ss.Rules {
			if err := inst.addRule(r, alpha); err != nil {
				return nil, err
			}
		}
		n.Instances = append(n.Instances, inst)
	}
	return n, nil
}

func (inst *Instance) addRule(r *rules.Rule, alpha *Alphabet) error {
	b := &pathBuilder{inst: inst, alpha: alpha}
	tree := r.Tree

	if r.PredDummy {
		// predicate rules only record which symbols leave the entry state
		return b.makePath(tree, inst.entry, inst.entry)
	}
	if tree.Op == syntax.OpEOF {
		r.UseCount = 1
		inst.eofRule = r
		return nil
	}

	start := inst.newState()
	end := inst.newState()
	if tree.Op == syntax.OpLeftAnchor {
		inst.addEpsilon(inst.anchorState(), start)
		tree = tree.Sub
	} else {
		inst.addEpsilon(inst.entry, start)
	}

	if tree.Op == syntax.OpRightAnchor {
		if err := b.makePath(tree.Sub, start, end); err != nil {
			return &BuildError{Rule: r, StateID: start, Err: err}
		}
		accept := inst.newState()
		for _, sym := range alpha.symbols(alpha.anchors) {
			inst.addTransition(end, sym, accept)
		}
		inst.markAccept(accept, r)
		inst.states[accept].rhCntx = 1
		return nil
	}

	if err := b.makePath(tree, start, end); err != nil {
		return &BuildError{Rule: r, StateID: start, Err: err}
	}
	inst.markAccept(end, r)
	return nil
}

type pathBuilder struct {
	inst  *Instance
	alpha *Alphabet
}

// makePath adds states and edges so that every string matched by tree
// leads from start to end.
func (b *pathBuilder) makePath(tree *syntax.Node, start, end StateID) error {
	inst := b.inst
	switch tree.Op {
	case syntax.OpContext:
		rLen, lLen := tree.Right.ContextLen(), tree.Left.ContextLen()
		if rLen <= 0 && lLen <= 0 {
			return ErrVariableContext
		}
		inst.states[end].rhCntx = rLen
		inst.states[end].lhCntx = lLen
		mid := inst.newState()
		if err := b.makePath(tree.Left, start, mid); err != nil {
			return err
		}
		return b.makePath(tree.Right, mid, end)

	case syntax.OpConcat:
		mid := inst.newState()
		if err := b.makePath(tree.Left, start, mid); err != nil {
			return err
		}
		return b.makePath(tree.Right, mid, end)

	case syntax.OpAlt:
		for _, kid := range []*syntax.Node{tree.Left, tree.Right} {
			tmp := inst.newState()
			if err := b.makePath(kid, start, tmp); err != nil {
				return err
			}
			inst.addEpsilon(tmp, end)
		}
		return nil

	case syntax.OpClosure:
		loopEnd := inst.newState()
		var loopStart StateID
		if tree.Min == 0 {
			loopStart = inst.newState()
			inst.addEpsilon(start, loopStart)
		} else {
			cur := start
			for i := 0; i < tree.Min; i++ {
				loopStart = inst.newState()
				if err := b.makePath(tree.Sub, cur, loopStart); err != nil {
					return err
				}
				cur = loopStart
			}
		}
		if err := b.makePath(tree.Sub, loopStart, loopEnd); err != nil {
			return err
		}
		inst.addEpsilon(loopEnd, loopStart)
		inst.addEpsilon(loopStart, end)
		return nil

	case syntax.OpFiniteRep:
		cur := start
		for i := 0; i < tree.Min; i++ {
			next := inst.newState()
			if err := b.makePath(tree.Sub, cur, next); err != nil {
				return err
			}
			cur = next
		}
		inst.addEpsilon(cur, end)
		for i := tree.Min; i < tree.Max; i++ {
			next := inst.newState()
			if err := b.makePath(tree.Sub, cur, next); err != nil {
				return err
			}
			cur = next
			inst.addEpsilon(cur, end)
		}
		return nil

	case syntax.OpString:
		if len(tree.Str) == 0 {
			inst.addEpsilon(start, end)
			return nil
		}
		cur := start
		for _, r := range tree.Str[:len(tree.Str)-1] {
			next := inst.newState()
			inst.addTransition(cur, b.alpha.Symbol(r), next)
			cur = next
		}
		inst.addTransition(cur, b.alpha.Symbol(tree.Str[len(tree.Str)-1]), end)
		return nil

	case syntax.OpChar:
		inst.addTransition(start, b.alpha.Symbol(tree.Rune), end)
		return nil

	case syntax.OpClass:
		for _, sym := range b.alpha.symbols(tree.Class) {
			inst.addTransition(start, sym, end)
		}
		return nil
	}
	return fmt.Errorf("%w: %v", ErrInvalidPattern, tree.Op)
}
