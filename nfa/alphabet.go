package nfa

import (
	"github.com/coregx/lexgen/charclass"
	"github.com/coregx/lexgen/rules"
	"github.com/coregx/lexgen/syntax"
)

// Alphabet maps code points to automaton symbols. With packing enabled the
// symbols are the equivalence classes of a partition refined by every
// character set the rules use; otherwise each code point is its own symbol.
type Alphabet struct {
	card      rune
	caseless  bool
	partition *charclass.Partition
	anchors   *charclass.Literal
}

// NewAlphabet builds the alphabet for the given rules. Caseless matching
// implies packing; it is applied to the class literals of the rule trees.
func NewAlphabet(rs []*rules.Rule, card rune, pack, caseless bool) *Alphabet {
	pack = pack || caseless
	a := &Alphabet{
		card:     card,
		caseless: caseless,
		anchors:  charclass.NewLiteral(charclass.RightAnchors(card)),
	}
	if !pack {
		return a
	}
	a.partition = charclass.NewPartition(card)
	seen := make(map[*charclass.Literal]bool)
	for _, r := range rs {
		if r.Tree != nil {
			a.accumulate(r.Tree, seen)
		}
	}
	a.partition.FixMap()
	return a
}

// accumulate refines the partition by every character set in tree. A
// shared class literal is only prepared once.
func (a *Alphabet) accumulate(tree *syntax.Node, seen map[*charclass.Literal]bool) {
	syntax.Walk(tree, func(n *syntax.Node) {
		switch n.Op {
		case syntax.OpChar:
			a.refineRune(n.Rune)
		case syntax.OpString:
			for _, r := range n.Str {
				a.refineRune(r)
			}
		case syntax.OpClass:
			if seen[n.Class] {
				return
			}
			seen[n.Class] = true
			if a.caseless {
				n.Class.List = n.Class.List.Canonical(a.card).CaseAgnostic(a.card)
			}
			a.partition.Refine(n.Class)
		case syntax.OpRightAnchor:
			a.partition.Refine(a.anchors)
		}
	})
}

func (a *Alphabet) refineRune(r rune) {
	if a.caseless {
		a.partition.Refine(charclass.CaseAgnosticPair(r))
		return
	}
	a.partition.Refine(charclass.SingletonLiteral(r))
}

// Cardinality returns the host alphabet size.
func (a *Alphabet) Cardinality() rune { return a.card }

// Packed reports whether symbols are equivalence classes.
func (a *Alphabet) Packed() bool { return a.partition != nil }

// Caseless reports whether class literals were made case agnostic.
func (a *Alphabet) Caseless() bool { return a.caseless }

// Partition returns the class partition, or nil without packing.
func (a *Alphabet) Partition() *charclass.Partition { return a.partition }

// Len returns the number of symbols.
func (a *Alphabet) Len() int {
	if a.partition != nil {
		return a.partition.Len()
	}
	return int(a.card)
}

// Symbol returns the symbol of code point r, or -1 outside the alphabet.
func (a *Alphabet) Symbol(r rune) int {
	if a.partition != nil {
		return a.partition.Class(r)
	}
	if r < 0 || r >= a.card {
		return -1
	}
	return int(r)
}

// Sample returns a code point carrying symbol sym.
func (a *Alphabet) Sample(sym int) rune {
	if a.partition != nil {
		return a.partition.InvMap(sym)
	}
	return rune(sym)
}

// symbols returns the symbols covering lit.
func (a *Alphabet) symbols(lit *charclass.Literal) []int {
	if a.partition != nil {
		return lit.Classes
	}
	var out []int
	for _, r := range lit.List.Canonical(a.card).Ranges() {
		for c := r.Min; c <= r.Max; c++ {
			out = append(out, int(c))
		}
	}
	return out
}
