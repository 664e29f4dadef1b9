// Package syntax parses lex-style patterns into a tagged-union tree.
//
// A pattern tree is built bottom-up through the constructor functions, which
// compute each node's minimum match length and its fixed context length once.
// Trees are immutable after construction and may be shared: a lexical category
// is parsed once and grafted into every pattern that names it.
package syntax

import (
	"fmt"
	"strings"

	"github.com/coregx/lexgen/charclass"
)

// Op is the kind of a pattern node.
type Op uint8

const (
	// OpChar matches the single code point Rune.
	OpChar Op = iota + 1

	// OpString matches the code points of Str in sequence.
	OpString

	// OpClass matches any code point of Class.
	OpClass

	// OpEOF is the end-of-file pseudo pattern <<EOF>>.
	OpEOF

	// OpLeftAnchor matches Sub at the start of a line.
	OpLeftAnchor

	// OpRightAnchor matches Sub followed by a line terminator.
	OpRightAnchor

	// OpClosure matches Min or more repetitions of Sub.
	OpClosure

	// OpFiniteRep matches Min to Max repetitions of Sub.
	OpFiniteRep

	// OpConcat matches Left followed by Right.
	OpConcat

	// OpAlt matches Left or Right.
	OpAlt

	// OpContext matches Left only when followed by Right.
	OpContext
)

var opNames = [...]string{
	OpChar:        "Char",
	OpString:      "String",
	OpClass:       "Class",
	OpEOF:         "EOF",
	OpLeftAnchor:  "LeftAnchor",
	OpRightAnchor: "RightAnchor",
	OpClosure:     "Closure",
	OpFiniteRep:   "FiniteRep",
	OpConcat:      "Concat",
	OpAlt:         "Alt",
	OpContext:     "Context",
}

// String returns the name of the op.
func (op Op) String() string {
	if int(op) < len(opNames) && opNames[op] != "" {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", op)
}

// Node is one pattern tree node. Which fields are meaningful depends on Op.
type Node struct {
	Op Op

	Rune  rune               // OpChar
	Str   []rune             // OpString
	Class *charclass.Literal // OpClass

	Sub         *Node // OpLeftAnchor, OpRightAnchor, OpClosure, OpFiniteRep
	Left, Right *Node // OpConcat, OpAlt, OpContext

	Min, Max int // OpClosure (Min), OpFiniteRep (Min, Max)

	minLen int
	ctxLen int
}

// Char returns a node matching r.
func Char(r rune) *Node {
	return &Node{Op: OpChar, Rune: r, minLen: 1, ctxLen: 1}
}

// String returns a node matching the code points of s in order.
func String(s []rune) *Node {
	return &Node{Op: OpString, Str: s, minLen: len(s), ctxLen: len(s)}
}

// Class returns a node matching any code point of lit.
func Class(lit *charclass.Literal) *Node {
	return &Node{Op: OpClass, Class: lit, minLen: 1, ctxLen: 1}
}

// EOF returns the end-of-file pseudo pattern.
func EOF() *Node {
	return &Node{Op: OpEOF}
}

// LeftAnchor returns sub anchored at the start of a line.
func LeftAnchor(sub *Node) *Node {
	return &Node{Op: OpLeftAnchor, Sub: sub, minLen: sub.minLen, ctxLen: sub.ctxLen}
}

// RightAnchor returns sub anchored at the end of a line.
func RightAnchor(sub *Node) *Node {
	return &Node{Op: OpRightAnchor, Sub: sub, minLen: sub.minLen, ctxLen: sub.ctxLen}
}

// Closure returns atLeast or more repetitions of sub.
func Closure(sub *Node, atLeast int) *Node {
	return &Node{Op: OpClosure, Sub: sub, Min: atLeast, minLen: sub.minLen * atLeast}
}

// Repeat returns lo to hi repetitions of sub. A hi below lo is raised to lo.
func Repeat(sub *Node, lo, hi int) *Node {
	hi = max(lo, hi)
	n := &Node{Op: OpFiniteRep, Sub: sub, Min: lo, Max: hi, minLen: sub.minLen * lo}
	if lo == hi {
		n.ctxLen = sub.ctxLen * lo
	}
	return n
}

// Concat returns left followed by right.
func Concat(left, right *Node) *Node {
	n := &Node{Op: OpConcat, Left: left, Right: right, minLen: left.minLen + right.minLen}
	if left.ctxLen > 0 && right.ctxLen > 0 {
		n.ctxLen = left.ctxLen + right.ctxLen
	}
	return n
}

// Alt returns left or right.
func Alt(left, right *Node) *Node {
	n := &Node{Op: OpAlt, Left: left, Right: right, minLen: min(left.minLen, right.minLen)}
	if left.ctxLen == right.ctxLen {
		n.ctxLen = left.ctxLen
	}
	return n
}

// Context returns left when followed by right. The match consumes left
// only.
func Context(left, right *Node) *Node {
	return &Node{Op: OpContext, Left: left, Right: right, minLen: left.minLen}
}

// MinLen returns the length of the shortest string the node matches. For a
// context node that is the shortest consumed prefix.
func (n *Node) MinLen() int {
	return n.minLen
}

// ContextLen returns the fixed length of every string the node matches, or
// 0 when the length varies.
func (n *Node) ContextLen() int {
	return n.ctxLen
}

// HasRightContext reports whether the pattern carries trailing context.
func (n *Node) HasRightContext() bool {
	switch n.Op {
	case OpContext:
		return true
	case OpLeftAnchor:
		return n.Sub.HasRightContext()
	}
	return false
}

// Walk calls fn for n and every node below it, parents first. Shared
// subtrees are visited once per reference.
func Walk(n *Node, fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	switch n.Op {
	case OpLeftAnchor, OpRightAnchor, OpClosure, OpFiniteRep:
		Walk(n.Sub, fn)
	case OpConcat, OpAlt, OpContext:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	}
}

// String renders the tree in pattern syntax. It is intended for
// diagnostics, not for round-tripping.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	switch n.Op {
	case OpChar:
		b.WriteString(charclass.Single(n.Rune).String())
	case OpString:
		b.WriteByte('"')
		b.WriteString(string(n.Str))
		b.WriteByte('"')
	case OpClass:
		b.WriteString(n.Class.String())
	case OpEOF:
		b.WriteString("<<EOF>>")
	case OpLeftAnchor:
		b.WriteByte('^')
		n.Sub.write(b)
	case OpRightAnchor:
		n.Sub.write(b)
		b.WriteByte('$')
	case OpClosure:
		n.Sub.writeOperand(b)
		switch n.Min {
		case 0:
			b.WriteByte('*')
		case 1:
			b.WriteByte('+')
		default:
			fmt.Fprintf(b, "{%d,}", n.Min)
		}
	case OpFiniteRep:
		n.Sub.writeOperand(b)
		switch {
		case n.Min == 0 && n.Max == 1:
			b.WriteByte('?')
		case n.Min == n.Max:
			fmt.Fprintf(b, "{%d}", n.Min)
		default:
			fmt.Fprintf(b, "{%d,%d}", n.Min, n.Max)
		}
	case OpConcat:
		n.Left.writeOperand(b)
		n.Right.writeOperand(b)
	case OpAlt:
		n.Left.write(b)
		b.WriteByte('|')
		n.Right.write(b)
	case OpContext:
		n.Left.write(b)
		b.WriteByte('/')
		n.Right.write(b)
	}
}

func (n *Node) writeOperand(b *strings.Builder) {
	if n.Op == OpAlt || n.Op == OpContext {
		b.WriteByte('(')
		n.write(b)
		b.WriteByte(')')
		return
	}
	n.write(b)
}
