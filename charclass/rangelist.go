// Package charclass implements character ranges, range lists and the
// partition of the host alphabet into equivalence classes.
//
// A RangeList is a set of code points described by ranges. Lists are built
// unordered and possibly inverted, then canonicalized against a host alphabet
// cardinality: sorted, merged, and with any inversion applied. Set algebra
// (And, Sub, Inverse, Equal) is only defined on canonical lists.
package charclass

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
)

// Host alphabet cardinalities.
const (
	// ASCIICardinality is the alphabet size of a byte-mode scanner.
	ASCIICardinality rune = 256

	// UnicodeCardinality is the alphabet size of a Unicode scanner.
	UnicodeCardinality rune = unicode.MaxRune + 1
)

// CharRange is the closed interval [Min, Max] of code points.
type CharRange struct {
	Min rune
	Max rune
}

// NewCharRange returns the range [lo, hi]. The bounds are swapped if
// hi < lo.
func NewCharRange(lo, hi rune) CharRange {
	if hi < lo {
		lo, hi = hi, lo
	}
	return CharRange{Min: lo, Max: hi}
}

// Single returns the range holding only r.
func Single(r rune) CharRange {
	return CharRange{Min: r, Max: r}
}

// Len returns the number of code points in the range.
func (c CharRange) Len() int {
	return int(c.Max-c.Min) + 1
}

// Contains reports whether r lies in the range.
func (c CharRange) Contains(r rune) bool {
	return c.Min <= r && r <= c.Max
}

// String formats the range in class syntax, e.g. "a-z".
func (c CharRange) String() string {
	if c.Min == c.Max {
		return displayRune(c.Min)
	}
	return displayRune(c.Min) + "-" + displayRune(c.Max)
}

// compareRanges orders by ascending Min, then by descending Max so that a
// wider range precedes the ranges it covers.
func compareRanges(a, b CharRange) int {
	if a.Min != b.Min {
		if a.Min < b.Min {
			return -1
		}
		return 1
	}
	switch {
	case a.Max > b.Max:
		return -1
	case a.Max < b.Max:
		return 1
	}
	return 0
}

// RangeList is a set of code points held as a list of ranges.
//
// A list is canonical when its ranges are sorted, pairwise disjoint, not
// adjacent and it is not inverted.
type RangeList struct {
	ranges    []CharRange
	invert    bool
	canonical bool
}

// NewRangeList returns a list holding ranges. When invert is set the list
// denotes the complement of the ranges, resolved by Canonicalize.
func NewRangeList(invert bool, ranges ...CharRange) *RangeList {
	l := &RangeList{invert: invert}
	l.ranges = append(l.ranges, ranges...)
	l.canonical = !invert && len(ranges) == 0
	return l
}

// Add appends r. The list is no longer canonical afterwards.
func (l *RangeList) Add(r CharRange) {
	l.ranges = append(l.ranges, r)
	l.canonical = false
}

// AddRune appends the single code point r.
func (l *RangeList) AddRune(r rune) {
	l.Add(Single(r))
}

// AddList appends the ranges of o, which must not be inverted.
func (l *RangeList) AddList(o *RangeList) {
	if o.invert {
		panic("charclass: AddList of an inverted list")
	}
	l.ranges = append(l.ranges, o.ranges...)
	l.canonical = false
}

// Ranges returns the ranges of the list. For a canonical list they are
// sorted and disjoint. The slice must not be modified.
func (l *RangeList) Ranges() []CharRange {
	return l.ranges
}

// Inverted reports whether the list still denotes the complement of its
// ranges.
func (l *RangeList) Inverted() bool {
	return l.invert
}

// IsCanonical reports whether the list is in canonical form.
func (l *RangeList) IsCanonical() bool {
	return l.canonical
}

// Clone returns an independent copy of the list.
func (l *RangeList) Clone() *RangeList {
	return &RangeList{
		ranges:    slices.Clone(l.ranges),
		invert:    l.invert,
		canonical: l.canonical,
	}
}

// Canonicalize puts the list into canonical form in place, clipping it to
// [0, card) and applying a pending inversion.
func (l *RangeList) Canonicalize(card rune) {
	if l.canonical {
		return
	}
	rs := slices.Clone(l.ranges)
	slices.SortFunc(rs, compareRanges)

	merged := rs[:0]
	for _, r := range rs {
		if r.Min >= card || r.Max < 0 {
			continue
		}
		r.Min = max(r.Min, 0)
		r.Max = min(r.Max, card-1)
		if n := len(merged); n > 0 && r.Min <= merged[n-1].Max+1 {
			merged[n-1].Max = max(merged[n-1].Max, r.Max)
			continue
		}
		merged = append(merged, r)
	}
	l.ranges = merged
	if l.invert {
		l.ranges = complement(merged, card)
		l.invert = false
	}
	l.canonical = true
}

// Canonical returns a canonical copy of the list, or l itself when it is
// already canonical.
func (l *RangeList) Canonical(card rune) *RangeList {
	if l.canonical {
		return l
	}
	c := l.Clone()
	c.Canonicalize(card)
	return c
}

func complement(rs []CharRange, card rune) []CharRange {
	var out []CharRange
	next := rune(0)
	for _, r := range rs {
		if r.Min > next {
			out = append(out, CharRange{Min: next, Max: r.Min - 1})
		}
		next = r.Max + 1
	}
	if next < card {
		out = append(out, CharRange{Min: next, Max: card - 1})
	}
	return out
}

func (l *RangeList) mustBeCanonical(op string) {
	if !l.canonical {
		panic("charclass: " + op + " of a non-canonical list")
	}
}

// IsEmpty reports whether a canonical list holds no code points.
func (l *RangeList) IsEmpty() bool {
	l.mustBeCanonical("IsEmpty")
	return len(l.ranges) == 0
}

// Size returns the number of code points in a canonical list.
func (l *RangeList) Size() int {
	l.mustBeCanonical("Size")
	n := 0
	for _, r := range l.ranges {
		n += r.Len()
	}
	return n
}

// Contains reports whether the canonical list holds r.
func (l *RangeList) Contains(r rune) bool {
	l.mustBeCanonical("Contains")
	_, found := slices.BinarySearchFunc(l.ranges, r, func(c CharRange, r rune) int {
		switch {
		case c.Max < r:
			return -1
		case c.Min > r:
			return 1
		}
		return 0
	})
	return found
}

// First returns the smallest code point of a non-empty canonical list.
func (l *RangeList) First() rune {
	l.mustBeCanonical("First")
	return l.ranges[0].Min
}

// Equal reports whether two canonical lists hold the same code points.
func (l *RangeList) Equal(o *RangeList) bool {
	l.mustBeCanonical("Equal")
	o.mustBeCanonical("Equal")
	return slices.Equal(l.ranges, o.ranges)
}

// And returns the intersection of two canonical lists.
func (l *RangeList) And(o *RangeList) *RangeList {
	l.mustBeCanonical("And")
	o.mustBeCanonical("And")
	out := &RangeList{canonical: true}
	i, j := 0, 0
	for i < len(l.ranges) && j < len(o.ranges) {
		a, b := l.ranges[i], o.ranges[j]
		lo, hi := max(a.Min, b.Min), min(a.Max, b.Max)
		if lo <= hi {
			out.ranges = append(out.ranges, CharRange{Min: lo, Max: hi})
		}
		if a.Max < b.Max {
			i++
		} else {
			j++
		}
	}
	return out
}

// Sub returns the code points of l that are not in o. Both lists must be
// canonical.
func (l *RangeList) Sub(o *RangeList) *RangeList {
	l.mustBeCanonical("Sub")
	o.mustBeCanonical("Sub")
	out := &RangeList{canonical: true}
	j := 0
	for _, a := range l.ranges {
		lo := a.Min
		for j < len(o.ranges) && o.ranges[j].Max < lo {
			j++
		}
		k := j
		for k < len(o.ranges) && o.ranges[k].Min <= a.Max {
			b := o.ranges[k]
			if b.Min > lo {
				out.ranges = append(out.ranges, CharRange{Min: lo, Max: b.Min - 1})
			}
			lo = b.Max + 1
			if lo > a.Max {
				break
			}
			k++
		}
		if lo <= a.Max {
			out.ranges = append(out.ranges, CharRange{Min: lo, Max: a.Max})
		}
	}
	return out
}

// Inverse returns the complement of a canonical list in [0, card).
func (l *RangeList) Inverse(card rune) *RangeList {
	l.mustBeCanonical("Inverse")
	return &RangeList{ranges: complement(l.ranges, card), canonical: true}
}

// CaseAgnostic returns a canonical list holding every code point of the
// canonical list l together with its upper and lower case forms that fall
// inside [0, card).
func (l *RangeList) CaseAgnostic(card rune) *RangeList {
	l.mustBeCanonical("CaseAgnostic")
	out := &RangeList{ranges: slices.Clone(l.ranges)}
	for _, r := range l.ranges {
		for c := r.Min; c <= r.Max; c++ {
			if lc := unicode.ToLower(c); lc != c {
				out.ranges = append(out.ranges, Single(lc))
			}
			if uc := unicode.ToUpper(c); uc != c {
				out.ranges = append(out.ranges, Single(uc))
			}
		}
	}
	out.Canonicalize(card)
	return out
}

// String formats the list in class syntax, e.g. "[^a-z0-9]".
func (l *RangeList) String() string {
	var b strings.Builder
	b.WriteByte('[')
	if l.invert {
		b.WriteByte('^')
	}
	for _, r := range l.ranges {
		b.WriteString(r.String())
	}
	b.WriteByte(']')
	return b.String()
}

// displayRune renders r the way it would be written in a pattern.
func displayRune(r rune) string {
	switch r {
	case '\\', '-', '[', ']', '^':
		return `\` + string(r)
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	case 0:
		return `\0`
	}
	switch {
	case r < 0x20 || r == 0x7f:
		return fmt.Sprintf(`\x%02X`, r)
	case r > 0xFFFF:
		return fmt.Sprintf(`\U%08X`, r)
	case r > 0x7e && !unicode.IsPrint(r):
		return fmt.Sprintf(`\u%04X`, r)
	}
	return string(r)
}
