package dfa

import (
	"cmp"
	"encoding/binary"
	"slices"

	"github.com/bits-and-blooms/bitset"

	"github.com/coregx/lexgen/diag"
	"github.com/coregx/lexgen/internal/conv"
	"github.com/coregx/lexgen/internal/sparse"
	"github.com/coregx/lexgen/nfa"
	"github.com/coregx/lexgen/rules"
)

// Build runs subset construction on every instance of n, in order, and then
// reports the rules no accept state recognizes. h may be nil, in which case
// the report is skipped.
//
// Build consumes the NFA's rules: their UseCount and ReplacedBy fields are
// updated as accept states are created.
func Build(n *nfa.NFA, h *diag.Handler, cfg Config) (*DFA, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d := &DFA{
		alpha:   n.Alphabet,
		maxSym:  n.Alphabet.Len(),
		config:  cfg,
		nextNum: EOFNum + 1,
	}
	d.states = append(d.states, &State{id: EOFState, num: EOFNum})
	d.list = append(d.list, EOFState)

	c := newConverter(d.maxSym)
	for _, ni := range n.Instances {
		inst, err := c.convert(d, ni)
		if err != nil {
			return nil, err
		}
		d.insts = append(d.insts, inst)
	}

	if h != nil {
		if err := reportUnreachable(collectRules(n), h); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// converter holds the scratch space reused across instances.
type converter struct {
	touched *sparse.Set
	moves   [][]nfa.StateID
}

func newConverter(maxSym int) *converter {
	return &converter{
		touched: sparse.New(conv.IntToUint32(maxSym)),
		moves:   make([][]nfa.StateID, maxSym),
	}
}

// convert is the classical worklist algorithm. New states are pushed on a
// stack; when one is popped its moves on every symbol are grouped, closed
// over epsilon edges and looked up by membership.
func (c *converter) convert(d *DFA, ni *nfa.Instance) (*Instance, error) {
	inst := &Instance{
		nfa:     ni,
		anchor:  NoState,
		eofRule: ni.EOFRule(),
		table:   make(map[string]StateID),
	}

	var stack []StateID
	start, err := d.newState(inst, ni.Closure(ni.Entry()))
	if err != nil {
		return nil, err
	}
	inst.start = start
	stack = append(stack, start)
	if a, ok := ni.Anchor(); ok {
		d.hasLeftAnchors = true
		anchor, err := d.newState(inst, ni.Closure(a))
		if err != nil {
			return nil, err
		}
		inst.anchor = anchor
		stack = append(stack, anchor)
	}

	for len(stack) > 0 {
		last := d.states[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]

		c.touched.Clear()
		set := last.nfaSet
		for i, ok := set.NextSet(0); ok; i, ok = set.NextSet(i + 1) {
			for _, t := range ni.State(nfa.StateID(i)).Transitions() { //nolint:gosec // bounded by the NFA size
				sym := uint32(t.Sym) //nolint:gosec // symbols are non-negative
				if c.touched.Insert(sym) {
					c.moves[sym] = c.moves[sym][:0]
				}
				c.moves[sym] = append(c.moves[sym], t.Next)
			}
		}
		syms := slices.Clone(c.touched.Values())
		slices.Sort(syms)

		for _, sym := range syms {
			next := bitset.New(uint(ni.Len()))
			for _, id := range c.moves[sym] {
				next.Set(uint(id))
			}
			ni.CloseOver(next)
			to, ok := inst.table[setKey(next)]
			if !ok {
				if to, err = d.newState(inst, next); err != nil {
					return nil, err
				}
				stack = append(stack, to)
			}
			last.trans = append(last.trans, Transition{Sym: int(sym), Next: to})
		}
	}
	return inst, nil
}

// setKey encodes the members of set. Trailing zero words are dropped so the
// key depends on membership only.
func setKey(set *bitset.BitSet) string {
	words := set.Bytes()
	n := len(words)
	for n > 0 && words[n-1] == 0 {
		n--
	}
	buf := make([]byte, 0, n*8)
	for _, w := range words[:n] {
		buf = binary.LittleEndian.AppendUint64(buf, w)
	}
	return string(buf)
}

// newState creates the state for an epsilon-closed NFA state set and
// chooses its accept rule: the lowest rule ordinal among the accepting NFA
// states wins.
func (d *DFA) newState(inst *Instance, set *bitset.BitSet) (StateID, error) {
	if len(d.states) >= d.config.MaxStates {
		return NoState, ErrStateLimitExceeded
	}
	if int(set.Count()) > d.config.DeterminizationLimit { //nolint:gosec // bounded by the NFA size
		return NoState, ErrSetTooLarge
	}
	id := StateID(len(d.states)) //nolint:gosec // bounded by MaxStates
	s := &State{id: id, num: Unset, inst: inst, nfaSet: set}
	d.states = append(d.states, s)
	d.list = append(d.list, id)
	inst.table[setKey(set)] = id
	inst.states++

	ni := inst.nfa
	for _, a := range ni.AcceptStates() {
		if !set.Test(uint(a)) {
			continue
		}
		ns := ni.State(a)
		rule := ns.Accept()
		if s.num == Unset {
			// accept states are compact in the numbering
			s.num = d.nextNum
			d.nextNum++
			inst.accepts++
		}
		switch {
		case s.accept == nil || rule.Ord < s.accept.Ord:
			if s.accept != nil {
				s.accept.UseCount--
				s.accept.ReplacedBy = rule
			}
			rule.UseCount++
			s.accept = rule
			s.rhCntx = max(ns.RightContext(), 0)
			s.lhCntx = max(ns.LeftContext(), 0)
		case rule != s.accept:
			rule.ReplacedBy = s.accept
		}
	}
	return id, nil
}

// collectRules returns the distinct rules of all instances in rule order.
func collectRules(n *nfa.NFA) []*rules.Rule {
	seen := make(map[*rules.Rule]bool)
	var out []*rules.Rule
	for _, ni := range n.Instances {
		for _, r := range ni.StartState().Rules {
			if !seen[r] {
				seen[r] = true
				out = append(out, r)
			}
		}
	}
	slices.SortStableFunc(out, func(a, b *rules.Rule) int { return cmp.Compare(a.Ord, b.Ord) })
	return out
}

// reportUnreachable warns about every rule no accept state recognizes,
// naming the overriding rule when one is known.
func reportUnreachable(rs []*rules.Rule, h *diag.Handler) error {
	for _, r := range rs {
		if r.UseCount > 0 || r.PredDummy {
			continue
		}
		if r.ReplacedBy == nil {
			if err := h.Report(diag.CodeNeverMatched, r.Span, ""); err != nil {
				return err
			}
			continue
		}
		if err := h.Report(diag.CodeAlwaysOverrides, r.ReplacedBy.Span, r.Pattern); err != nil {
			return err
		}
		if err := h.Report(diag.CodeNeverMatched, r.Span, r.ReplacedBy.Pattern); err != nil {
			return err
		}
	}
	return nil
}
