package scan

import (
	"fmt"

	"github.com/coregx/ahocorasick"

	"github.com/coregx/lexgen"
	"github.com/coregx/lexgen/literal"
	"github.com/coregx/lexgen/rules"
)

// Match is one token found by a Searcher.
type Match struct {
	Start, End int
	Rule       *rules.Rule
}

// Searcher finds the tokens of one start condition in free text. Text no
// rule matches is skipped rather than echoed.
//
// When every rule of the start condition must begin with one of a finite
// set of literals, the searcher jumps between occurrences of those literals
// with an Aho-Corasick automaton instead of trying every position.
type Searcher struct {
	scanner *Scanner
	prefix  *ahocorasick.Automaton
}

// NewSearcher returns a searcher over the rules of res active in the start
// condition startState.
func NewSearcher(res *lexgen.Result, startState string) (*Searcher, error) {
	sc := New(res.Tables, "")
	if err := sc.Begin(startState); err != nil {
		return nil, err
	}
	st, ok := res.Rules.StartState(startState)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStartState, startState)
	}

	ex := literal.New(literal.Config{
		Cardinality:     res.Options.Cardinality(),
		CaseInsensitive: res.Options.CaseInsensitive,
	})
	all := literal.NewSeq()
	for _, r := range st.Rules {
		if r.IsEOF() || r.PredDummy {
			continue
		}
		seq := ex.ExtractPrefixes(r.Tree)
		if !seq.IsFinite() || seq.Len() == 0 {
			return &Searcher{scanner: sc}, nil
		}
		all.Union(seq, literal.DefaultConfig().MaxLiterals)
		if !all.IsFinite() {
			return &Searcher{scanner: sc}, nil
		}
	}
	all.Minimize()
	if all.IsEmpty() || (sc.bytes && !byteSafe(all)) {
		return &Searcher{scanner: sc}, nil
	}

	b := ahocorasick.NewBuilder()
	for _, lit := range all.Literals() {
		b.AddPattern(lit.Bytes)
	}
	auto, err := b.Build()
	if err != nil {
		// scan every position instead
		return &Searcher{scanner: sc}, nil
	}
	return &Searcher{scanner: sc, prefix: auto}, nil
}

// Prefiltered tells whether the searcher uses a literal prefilter.
func (s *Searcher) Prefiltered() bool {
	return s.prefix != nil
}

// FindAll returns the leftmost-longest tokens of text, in order and without
// overlap.
func (s *Searcher) FindAll(text string) []Match {
	sc := s.scanner
	sc.Reset(text)
	haystack := []byte(text)

	var out []Match
	for at := 0; at < len(text); {
		if s.prefix != nil {
			m := s.prefix.FindAt(haystack, at)
			if m == nil {
				break
			}
			at = m.Start
		}
		rule, end := sc.longest(at)
		if rule == nil {
			_, size := sc.decode(at)
			at += size
			continue
		}
		out = append(out, Match{Start: at, End: end, Rule: rule})
		at = end
	}
	return out
}

// byteSafe reports whether every literal is ASCII, so that its UTF-8 form
// is also its form in byte-oriented input.
func byteSafe(seq *literal.Seq) bool {
	for _, lit := range seq.Literals() {
		for _, b := range lit.Bytes {
			if b >= 0x80 {
				return false
			}
		}
	}
	return true
}
