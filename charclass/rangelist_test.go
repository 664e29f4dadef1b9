package charclass

import (
	"slices"
	"testing"
)

func canon(invert bool, card rune, rs ...CharRange) *RangeList {
	l := NewRangeList(invert, rs...)
	l.Canonicalize(card)
	return l
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name   string
		invert bool
		in     []CharRange
		want   []CharRange
	}{
		{
			name: "sort and merge overlapping",
			in:   []CharRange{{'m', 'p'}, {'a', 'c'}, {'b', 'f'}},
			want: []CharRange{{'a', 'f'}, {'m', 'p'}},
		},
		{
			name: "merge adjacent",
			in:   []CharRange{{'a', 'c'}, {'d', 'e'}},
			want: []CharRange{{'a', 'e'}},
		},
		{
			name: "covered ranges vanish",
			in:   []CharRange{{'a', 'z'}, {'c', 'd'}, {'a', 'b'}},
			want: []CharRange{{'a', 'z'}},
		},
		{
			name: "clip to alphabet",
			in:   []CharRange{{250, 300}, {400, 500}},
			want: []CharRange{{250, 255}},
		},
		{
			name:   "invert",
			invert: true,
			in:     []CharRange{{'\n', '\n'}},
			want:   []CharRange{{0, '\n' - 1}, {'\n' + 1, 255}},
		},
		{
			name:   "invert empty is everything",
			invert: true,
			want:   []CharRange{{0, 255}},
		},
		{
			name:   "invert everything is empty",
			invert: true,
			in:     []CharRange{{0, 255}},
			want:   nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := canon(tt.invert, ASCIICardinality, tt.in...)
			if !l.IsCanonical() || l.Inverted() {
				t.Fatal("list not canonical after Canonicalize")
			}
			if got := l.Ranges(); !slices.Equal(got, tt.want) {
				t.Errorf("Ranges() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetAlgebra(t *testing.T) {
	const card = ASCIICardinality
	az := canon(false, card, CharRange{'a', 'z'})
	vowels := canon(false, card, Single('a'), Single('e'), Single('i'), Single('o'), Single('u'))
	mz := canon(false, card, CharRange{'m', 'z'}, CharRange{'0', '9'})

	and := az.And(mz)
	if want := []CharRange{{'m', 'z'}}; !slices.Equal(and.Ranges(), want) {
		t.Errorf("And = %v, want %v", and.Ranges(), want)
	}

	sub := az.Sub(vowels)
	if sub.Size() != 21 {
		t.Errorf("consonants: Size() = %d, want 21", sub.Size())
	}
	for _, r := range "aeiou" {
		if sub.Contains(r) {
			t.Errorf("Sub kept %q", r)
		}
	}
	for _, r := range "bzmy" {
		if !sub.Contains(r) {
			t.Errorf("Sub dropped %q", r)
		}
	}

	inv := az.Inverse(card)
	if inv.Contains('q') || !inv.Contains('A') || !inv.Contains(255) {
		t.Error("Inverse membership wrong")
	}
	if !inv.Inverse(card).Equal(az) {
		t.Error("double inverse differs from original")
	}
	if !az.And(inv).IsEmpty() {
		t.Error("a set and its inverse must be disjoint")
	}
	if az.Sub(az).Size() != 0 {
		t.Error("X - X must be empty")
	}
}

func TestSubSpanningSeveralRanges(t *testing.T) {
	const card = ASCIICardinality
	l := canon(false, card, CharRange{0, 100})
	o := canon(false, card, CharRange{10, 20}, CharRange{30, 40}, CharRange{90, 120})
	want := []CharRange{{0, 9}, {21, 29}, {41, 89}}
	if got := l.Sub(o).Ranges(); !slices.Equal(got, want) {
		t.Errorf("Sub = %v, want %v", got, want)
	}
}

func TestCaseAgnostic(t *testing.T) {
	l := canon(false, ASCIICardinality, CharRange{'a', 'c'}, Single('Z'), Single('1'))
	got := l.CaseAgnostic(ASCIICardinality)
	for _, r := range "abcABCzZ1" {
		if !got.Contains(r) {
			t.Errorf("case agnostic list lacks %q", r)
		}
	}
	if got.Size() != 9 {
		t.Errorf("Size() = %d, want 9", got.Size())
	}
}

func TestNonCanonicalPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("And on a non-canonical list should panic")
		}
	}()
	a := NewRangeList(false, CharRange{'a', 'b'})
	b := canon(false, ASCIICardinality, CharRange{'a', 'b'})
	a.And(b)
}

func TestRangeListString(t *testing.T) {
	tests := []struct {
		list *RangeList
		want string
	}{
		{canon(false, ASCIICardinality, CharRange{'a', 'z'}, Single('-')), `[\-a-z]`},
		{NewRangeList(true, Single('\n')), `[^\n]`},
		{canon(false, UnicodeCardinality, Single(0x10400)), `[\U00010400]`},
	}
	for _, tt := range tests {
		if got := tt.list.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestRightAnchors(t *testing.T) {
	if got := RightAnchors(ASCIICardinality).Size(); got != 2 {
		t.Errorf("byte-mode anchors: %d code points, want 2", got)
	}
	u := RightAnchors(UnicodeCardinality)
	for _, r := range []rune{'\n', '\r', 0x85, 0x2028, 0x2029} {
		if !u.Contains(r) {
			t.Errorf("unicode anchors lack %U", r)
		}
	}
}
