package charclass

import "unicode"

// Literal is a character set used by a pattern, together with the
// equivalence classes that cover it once the alphabet is partitioned.
//
// The same *Literal may be shared by several pattern trees (a lexical
// category used in many rules). Partition.Refine processes each pointer at
// most once.
type Literal struct {
	// Name is the lexical category the literal was defined as, if any.
	Name string

	// List holds the code points. Refine canonicalizes it in place.
	List *RangeList

	// Classes holds the ordinals of the partition elements whose union is
	// List. It is filled by Partition.Refine.
	Classes []int
}

// NewLiteral returns a literal over list.
func NewLiteral(list *RangeList) *Literal {
	return &Literal{List: list}
}

// SingletonLiteral returns a literal holding only r.
func SingletonLiteral(r rune) *Literal {
	l := NewRangeList(false, Single(r))
	l.canonical = true
	return &Literal{List: l}
}

// CaseAgnosticPair returns a literal holding r with its upper and lower
// case forms.
func CaseAgnosticPair(r rune) *Literal {
	l := NewRangeList(false, Single(r), Single(unicode.ToLower(r)), Single(unicode.ToUpper(r)))
	return &Literal{List: l}
}

// RightAnchors returns the line-terminator set that a trailing '$' must be
// followed by: CR and LF, plus NEL, LS and PS for a Unicode alphabet.
func RightAnchors(card rune) *RangeList {
	l := NewRangeList(false, Single('\n'), Single('\r'))
	if card > 0xFFFF {
		l.Add(Single(0x85))
		l.Add(NewCharRange(0x2028, 0x2029))
	}
	l.Canonicalize(card)
	return l
}

// String returns the category name, or the class syntax of an unnamed
// literal.
func (l *Literal) String() string {
	if l.Name != "" {
		return "{" + l.Name + "}"
	}
	return l.List.String()
}
