package charclass

import (
	"slices"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/text/unicode/rangetable"
)

// predicateCacheSize bounds the number of materialized predicate lists.
// Each entry is keyed by predicate name and alphabet size.
const predicateCacheSize = 64

var predicateTables = map[string]func() *unicode.RangeTable{
	"IsControl":         func() *unicode.RangeTable { return unicode.Cc },
	"IsDigit":           func() *unicode.RangeTable { return unicode.Nd },
	"IsLetter":          func() *unicode.RangeTable { return unicode.L },
	"IsLetterOrDigit":   func() *unicode.RangeTable { return rangetable.Merge(unicode.L, unicode.Nd) },
	"IsLower":           func() *unicode.RangeTable { return unicode.Ll },
	"IsNumber":          func() *unicode.RangeTable { return unicode.N },
	"IsPunctuation":     func() *unicode.RangeTable { return unicode.P },
	"IsSeparator":       func() *unicode.RangeTable { return unicode.Z },
	"IsSymbol":          func() *unicode.RangeTable { return unicode.S },
	"IsUpper":           func() *unicode.RangeTable { return unicode.Lu },
	"IsWhiteSpace":      func() *unicode.RangeTable { return unicode.White_Space },
	"IsFormatCharacter": func() *unicode.RangeTable { return unicode.Cf },
	"IdentifierStartCharacter": func() *unicode.RangeTable {
		return rangetable.Merge(unicode.Lu, unicode.Ll, unicode.Lt, unicode.Lm, unicode.Lo, unicode.Nl,
			rangetable.New('_'))
	},
	"IdentifierPartCharacter": func() *unicode.RangeTable {
		return rangetable.Merge(unicode.Lu, unicode.Ll, unicode.Lt, unicode.Lm, unicode.Lo, unicode.Nl,
			unicode.Nd, unicode.Pc, unicode.Mn, unicode.Mc, unicode.Cf)
	},
}

// PredicateNames returns the names accepted by Predicates.Lookup, sorted.
func PredicateNames() []string {
	names := make([]string, 0, len(predicateTables))
	for name := range predicateTables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

type predicateKey struct {
	name string
	card rune
}

// Predicates materializes the built-in character predicates as range lists
// clipped to an alphabet. Results are cached; a Predicates is safe for
// concurrent use.
type Predicates struct {
	cache *lru.Cache[predicateKey, *RangeList]
}

// NewPredicates returns a predicate source with an empty cache.
func NewPredicates() *Predicates {
	cache, err := lru.New[predicateKey, *RangeList](predicateCacheSize)
	// New only fails for a non-positive size
	if err != nil {
		panic(err)
	}
	return &Predicates{cache: cache}
}

// Lookup returns the canonical set of code points below card satisfying
// the predicate name. The caller owns the returned list.
func (p *Predicates) Lookup(name string, card rune) (*RangeList, bool) {
	key := predicateKey{name: name, card: card}
	if l, ok := p.cache.Get(key); ok {
		return l.Clone(), true
	}
	table, ok := predicateTables[name]
	if !ok {
		return nil, false
	}
	l := fromRangeTable(table(), card)
	p.cache.Add(key, l)
	return l.Clone(), true
}

func fromRangeTable(t *unicode.RangeTable, card rune) *RangeList {
	l := NewRangeList(false)
	for _, r := range t.R16 {
		addStrided(l, rune(r.Lo), rune(r.Hi), rune(r.Stride), card)
	}
	for _, r := range t.R32 {
		addStrided(l, rune(r.Lo), rune(r.Hi), rune(r.Stride), card)
	}
	l.Canonicalize(card)
	return l
}

func addStrided(l *RangeList, lo, hi, stride, card rune) {
	if lo >= card {
		return
	}
	hi = min(hi, card-1)
	if stride == 1 {
		l.Add(CharRange{Min: lo, Max: hi})
		return
	}
	for c := lo; c <= hi; c += stride {
		l.AddRune(c)
	}
}
