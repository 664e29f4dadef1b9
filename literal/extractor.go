package literal

import (
	"unicode"
	"unicode/utf8"

	"github.com/coregx/lexgen/charclass"
	"github.com/coregx/lexgen/syntax"
)

// Config configures literal extraction limits.
//
// The limits keep the prefilter small: a rule that can start with too many
// strings is better served by running the automaton directly.
type Config struct {
	// MaxLiterals is the maximum number of literals in a sequence.
	// Default: 64
	MaxLiterals int

	// MaxLiteralLen is the maximum length of a literal in bytes. Longer
	// literals are cut and lose their completeness.
	// Default: 64
	MaxLiteralLen int

	// MaxClassSize is the largest character class expanded into one
	// literal per member.
	// Default: 10
	MaxClassSize int

	// Cardinality is the alphabet the patterns were parsed for.
	// Default: charclass.UnicodeCardinality
	Cardinality rune

	// CaseInsensitive expands every code point to its case forms.
	CaseInsensitive bool
}

// DefaultConfig returns the default extraction configuration.
func DefaultConfig() Config {
	return Config{
		MaxLiterals:   64,
		MaxLiteralLen: 64,
		MaxClassSize:  10,
		Cardinality:   charclass.UnicodeCardinality,
	}
}

// Extractor extracts prefix literals from pattern trees.
//
// Example:
//
//	tree, _, _ := syntax.Parse(`"if"|"else"`, syntax.Config{})
//	prefixes := literal.New(literal.DefaultConfig()).ExtractPrefixes(tree)
//	// prefixes: seq{if, else}
type Extractor struct {
	config Config
}

// New creates an extractor. Zero or negative limits take their default
// values.
func New(config Config) *Extractor {
	def := DefaultConfig()
	if config.MaxLiterals <= 0 {
		config.MaxLiterals = def.MaxLiterals
	}
	if config.MaxLiteralLen <= 0 {
		config.MaxLiteralLen = def.MaxLiteralLen
	}
	if config.MaxClassSize <= 0 {
		config.MaxClassSize = def.MaxClassSize
	}
	if config.Cardinality <= 0 {
		config.Cardinality = def.Cardinality
	}
	return &Extractor{config: config}
}

// ExtractPrefixes returns the literals every match of n starts with. The
// result is infinite when n can match the empty string, and empty when n
// never consumes input (an <<EOF>> pattern).
//
// Examples:
//
//	"if"        → seq{if}            (exact)
//	[a-c]x      → seq{ax, bx, cx}    (exact)
//	"ab"+       → seq{ab*}           (prefix only)
//	[a-z]+      → inf                (class too large)
//	a*b         → inf                (can start with b or a)
func (e *Extractor) ExtractPrefixes(n *syntax.Node) *Seq {
	if n == nil {
		return Infinite()
	}
	if n.Op == syntax.OpEOF {
		return NewSeq()
	}
	if n.MinLen() == 0 {
		return Infinite()
	}
	seq := e.prefixes(n)
	seq.Minimize()
	return seq
}

func (e *Extractor) prefixes(n *syntax.Node) *Seq {
	switch n.Op {
	case syntax.OpChar:
		return e.runeSeq(n.Rune)

	case syntax.OpString:
		if len(n.Str) == 0 {
			return Infinite()
		}
		seq := e.runeSeq(n.Str[0])
		for _, r := range n.Str[1:] {
			seq = e.cross(seq, e.runeSeq(r))
		}
		return seq

	case syntax.OpClass:
		return e.classSeq(n.Class)

	case syntax.OpEOF:
		return NewSeq()

	case syntax.OpLeftAnchor:
		return e.prefixes(n.Sub)

	case syntax.OpRightAnchor:
		seq := e.prefixes(n.Sub)
		seq.MakeInexact()
		return seq

	case syntax.OpClosure:
		if n.Min == 0 || n.Sub.MinLen() == 0 {
			return Infinite()
		}
		seq := e.prefixes(n.Sub)
		seq.MakeInexact()
		return seq

	case syntax.OpFiniteRep:
		if n.Min == 0 || n.Sub.MinLen() == 0 {
			return Infinite()
		}
		seq := e.prefixes(n.Sub)
		for i := 1; i < n.Min && seq.IsFinite(); i++ {
			seq = e.cross(seq, e.prefixes(n.Sub))
		}
		if n.Max > n.Min {
			seq.MakeInexact()
		}
		return seq

	case syntax.OpConcat:
		if n.Left.MinLen() == 0 {
			return Infinite()
		}
		left := e.prefixes(n.Left)
		if !left.IsFinite() || !hasComplete(left) {
			return left
		}
		return e.cross(left, e.prefixes(n.Right))

	case syntax.OpAlt:
		if n.Left.MinLen() == 0 || n.Right.MinLen() == 0 {
			return Infinite()
		}
		seq := e.prefixes(n.Left)
		seq.Union(e.prefixes(n.Right), e.config.MaxLiterals)
		return seq

	case syntax.OpContext:
		seq := e.prefixes(n.Left)
		seq.MakeInexact()
		return seq
	}
	return Infinite()
}

// runeSeq returns the complete literals of r and, when case is ignored, of
// its other case forms.
func (e *Extractor) runeSeq(r rune) *Seq {
	seq := NewSeq(e.clip(NewLiteral(utf8.AppendRune(nil, r), true)))
	if !e.config.CaseInsensitive {
		return seq
	}
	for _, c := range []rune{unicode.ToLower(r), unicode.ToUpper(r)} {
		if c != r && c < e.config.Cardinality && !hasRune(seq, c) {
			seq.literals = append(seq.literals, e.clip(NewLiteral(utf8.AppendRune(nil, c), true)))
		}
	}
	return seq
}

func (e *Extractor) classSeq(lit *charclass.Literal) *Seq {
	card := e.config.Cardinality
	list := lit.List.Canonical(card)
	if e.config.CaseInsensitive {
		list = list.CaseAgnostic(card)
	}
	if list.Size() > e.config.MaxClassSize || list.Size() > e.config.MaxLiterals {
		return Infinite()
	}
	seq := NewSeq()
	for _, r := range list.Ranges() {
		for c := r.Min; c <= r.Max; c++ {
			seq.literals = append(seq.literals, e.clip(NewLiteral(utf8.AppendRune(nil, c), true)))
		}
	}
	return seq
}

// cross appends the literals of right to every complete literal of left.
// Incomplete literals of left are kept as they are. When right is infinite,
// or the product would exceed MaxLiterals, the complete literals of left are
// kept as prefixes instead.
func (e *Extractor) cross(left, right *Seq) *Seq {
	if !left.IsFinite() {
		return left
	}
	complete := 0
	for _, lit := range left.literals {
		if lit.Complete {
			complete++
		}
	}
	product := len(left.literals) - complete + complete*right.Len()
	if !right.IsFinite() || product > e.config.MaxLiterals {
		left.MakeInexact()
		return left
	}

	out := NewSeq()
	for _, l := range left.literals {
		if !l.Complete {
			out.literals = append(out.literals, l)
			continue
		}
		for _, r := range right.literals {
			b := make([]byte, 0, len(l.Bytes)+len(r.Bytes))
			b = append(append(b, l.Bytes...), r.Bytes...)
			out.literals = append(out.literals, e.clip(NewLiteral(b, r.Complete)))
		}
	}
	return out
}

// clip cuts a literal to MaxLiteralLen bytes.
func (e *Extractor) clip(l Literal) Literal {
	if len(l.Bytes) > e.config.MaxLiteralLen {
		l.Bytes = l.Bytes[:e.config.MaxLiteralLen]
		l.Complete = false
	}
	return l
}

func hasComplete(s *Seq) bool {
	for _, lit := range s.literals {
		if lit.Complete {
			return true
		}
	}
	return false
}

func hasRune(s *Seq, r rune) bool {
	enc := utf8.AppendRune(nil, r)
	for _, lit := range s.literals {
		if string(lit.Bytes) == string(enc) {
			return true
		}
	}
	return false
}
