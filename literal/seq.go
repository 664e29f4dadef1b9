// Package literal extracts the literal prefixes a rule's matches must start
// with, for use as a search prefilter.
//
// Key concepts:
//   - A Literal is a UTF-8 byte sequence that every match in its branch
//     starts with. It is Complete when it is the whole match.
//   - A Seq is a set of alternative literals. An infinite Seq stands for
//     "any prefix": the pattern can start with too many strings, or with
//     the empty string, to be worth a prefilter.
package literal

import (
	"bytes"
	"sort"
)

// Literal is a byte sequence extracted from a pattern.
//
// Example:
//   - Pattern "if" → Literal{[]byte("if"), true}
//   - Pattern "if"[a-z]+ → Literal{[]byte("if"), false} (prefix only)
type Literal struct {
	// Bytes holds the UTF-8 encoded literal.
	Bytes []byte

	// Complete reports whether the literal is the entire match. If false,
	// the literal is only a necessary prefix.
	Complete bool
}

// NewLiteral creates a Literal from the given bytes and completeness flag.
func NewLiteral(b []byte, complete bool) Literal {
	return Literal{
		Bytes:    b,
		Complete: complete,
	}
}

// Len returns the length of the literal in bytes.
func (l Literal) Len() int {
	return len(l.Bytes)
}

// String returns a representation of the literal for debugging.
// Format: "literal{bytes, complete=true/false}"
func (l Literal) String() string {
	complete := "false"
	if l.Complete {
		complete = "true"
	}
	return "literal{" + string(l.Bytes) + ", complete=" + complete + "}"
}

// Seq is a set of alternative literals. A finite Seq with no literals
// matches nothing; an infinite Seq matches anything.
//
// Operations:
//   - Minimize: remove literals made redundant by a shorter prefix
//   - LongestCommonPrefix: the prefix shared by every literal
//
// Example:
//
//	seq := literal.NewSeq(
//	    literal.NewLiteral([]byte("foo"), true),
//	    literal.NewLiteral([]byte("bar"), true),
//	)
//	fmt.Printf("Sequence has %d literals\n", seq.Len()) // Output: Sequence has 2 literals
type Seq struct {
	literals []Literal
	infinite bool
}

// NewSeq creates a finite sequence from the given literals.
func NewSeq(lits ...Literal) *Seq {
	return &Seq{
		literals: lits,
	}
}

// Infinite returns the sequence standing for every possible prefix.
func Infinite() *Seq {
	return &Seq{infinite: true}
}

// Len returns the number of literals in the sequence. An infinite sequence
// has none.
func (s *Seq) Len() int {
	if s == nil {
		return 0
	}
	return len(s.literals)
}

// Get returns the literal at the specified index.
// Panics if index is out of bounds.
func (s *Seq) Get(i int) Literal {
	return s.literals[i]
}

// Literals returns the literals of the sequence.
func (s *Seq) Literals() []Literal {
	if s == nil {
		return nil
	}
	return s.literals
}

// IsEmpty reports whether the sequence is finite and holds no literal,
// i.e. matches nothing.
func (s *Seq) IsEmpty() bool {
	return s == nil || (!s.infinite && len(s.literals) == 0)
}

// IsFinite reports whether the sequence is a known finite set of prefixes.
//
// Example:
//
//	seq := literal.NewSeq(literal.NewLiteral([]byte("hello"), true))
//	fmt.Println(seq.IsFinite()) // Output: true
//
//	fmt.Println(literal.Infinite().IsFinite()) // Output: false
func (s *Seq) IsFinite() bool {
	return s != nil && !s.infinite
}

// IsExact reports whether the sequence is finite and every literal is a
// complete match.
func (s *Seq) IsExact() bool {
	if !s.IsFinite() {
		return false
	}
	for _, lit := range s.literals {
		if !lit.Complete {
			return false
		}
	}
	return true
}

// MakeInexact marks every literal as a prefix only.
func (s *Seq) MakeInexact() {
	for i := range s.Literals() {
		s.literals[i].Complete = false
	}
}

// Union adds the literals of other. The result becomes infinite when either
// side is infinite or when it would hold more than limit literals.
func (s *Seq) Union(other *Seq, limit int) {
	if s.infinite {
		return
	}
	if !other.IsFinite() || len(s.literals)+other.Len() > limit {
		s.literals, s.infinite = nil, true
		return
	}
	s.literals = append(s.literals, other.literals...)
}

// Minimize removes redundant literals from the sequence.
//
// For prefix matching, a literal L is redundant if a shorter kept literal S
// is a prefix of L. In ["foo", "foobar"], "foo" makes "foobar" redundant
// because any text starting with "foobar" starts with "foo". The kept
// literal loses its completeness when it covered a longer one.
//
// Algorithm:
//  1. Sort literals by length (shortest first)
//  2. For each literal L:
//     - Check if any shorter literal S is a prefix of L
//     - If yes, L is redundant (skip it)
//     - If no, keep L
//
// Time complexity: O(n² * m) where n = number of literals, m = average literal length
//
// Example:
//
//	seq := literal.NewSeq(
//	    literal.NewLiteral([]byte("foo"), true),
//	    literal.NewLiteral([]byte("foobar"), true),
//	)
//	seq.Minimize()
//	fmt.Println(seq.Len()) // Output: 1 (only "foo" remains)
func (s *Seq) Minimize() {
	if !s.IsFinite() || len(s.literals) == 0 {
		return
	}

	sort.SliceStable(s.literals, func(i, j int) bool {
		return len(s.literals[i].Bytes) < len(s.literals[j].Bytes)
	})

	kept := make([]Literal, 0, len(s.literals))
	for _, current := range s.literals {
		redundant := false
		for j := range kept {
			if isPrefix(kept[j].Bytes, current.Bytes) {
				if !bytes.Equal(kept[j].Bytes, current.Bytes) || !current.Complete {
					kept[j].Complete = false
				}
				redundant = true
				break
			}
		}
		if !redundant {
			kept = append(kept, current)
		}
	}

	s.literals = kept
}

// LongestCommonPrefix returns the longest common prefix of all literals in
// the sequence. It is empty for an infinite or empty sequence.
//
// Example:
//
//	seq := literal.NewSeq(
//	    literal.NewLiteral([]byte("hello"), true),
//	    literal.NewLiteral([]byte("help"), true),
//	    literal.NewLiteral([]byte("hero"), true),
//	)
//	prefix := seq.LongestCommonPrefix()
//	fmt.Println(string(prefix)) // Output: he
func (s *Seq) LongestCommonPrefix() []byte {
	if !s.IsFinite() || len(s.literals) == 0 {
		return []byte{}
	}

	prefix := s.literals[0].Bytes
	for i := 1; i < len(s.literals); i++ {
		prefix = commonPrefix(prefix, s.literals[i].Bytes)
		if len(prefix) == 0 {
			return []byte{}
		}
	}

	// copy to avoid aliasing the literal
	result := make([]byte, len(prefix))
	copy(result, prefix)
	return result
}

// String formats the sequence for debugging.
func (s *Seq) String() string {
	if !s.IsFinite() {
		return "seq{inf}"
	}
	var b bytes.Buffer
	b.WriteString("seq{")
	for i, lit := range s.literals {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Write(lit.Bytes)
		if !lit.Complete {
			b.WriteByte('*')
		}
	}
	b.WriteByte('}')
	return b.String()
}

// isPrefix returns true if prefix is a prefix of s.
func isPrefix(prefix, s []byte) bool {
	if len(prefix) > len(s) {
		return false
	}
	return bytes.Equal(prefix, s[:len(prefix)])
}

// commonPrefix returns the longest common prefix of a and b.
func commonPrefix(a, b []byte) []byte {
	minLen := min(len(a), len(b))
	for i := 0; i < minLen; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:minLen]
}
