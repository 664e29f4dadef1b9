// Package scan runs the tables built by lexgen the way a generated scanner
// would: longest match with backup to the last accept state, trailing and
// leading context, left anchors, start conditions and <<EOF>> actions.
//
// Tables over an 8-bit alphabet read the input byte by byte; Unicode
// tables decode UTF-8.
package scan

import (
	"fmt"
	"unicode/utf8"

	"github.com/coregx/lexgen/dfa"
	"github.com/coregx/lexgen/rules"
	"github.com/coregx/lexgen/tables"
)

// Token is one scanned token.
type Token struct {
	// Rule is the rule that matched. It is nil for the default echo of a
	// character no rule matches, and for end of input without an <<EOF>>
	// rule.
	Rule *rules.Rule

	Text string
	Pos  int
	EOF  bool
}

// Ord returns the ordinal of the matching rule, or 0.
func (t Token) Ord() int {
	if t.Rule == nil {
		return 0
	}
	return t.Rule.Ord
}

// Action returns the action text of the matching rule.
func (t Token) Action() string {
	if t.Rule == nil {
		return ""
	}
	return t.Rule.ActionText
}

func (t Token) String() string {
	switch {
	case t.EOF:
		return fmt.Sprintf("EOF@%d", t.Pos)
	case t.Rule == nil:
		return fmt.Sprintf("echo(%q)@%d", t.Text, t.Pos)
	default:
		return fmt.Sprintf("%d(%q)@%d", t.Rule.Ord, t.Text, t.Pos)
	}
}

// Scanner tokenizes a string. It is not safe for concurrent use; Tables
// may be shared by any number of scanners.
type Scanner struct {
	t     *tables.Tables
	src   string
	pos   int
	start tables.Start
	bytes bool

	// ends[i] is the input offset after the (i+1)th character of the
	// current match attempt.
	ends []int
}

// New returns a scanner over src in the INITIAL start condition.
func New(t *tables.Tables, src string) *Scanner {
	s := &Scanner{t: t, src: src, bytes: t.Map.Card <= 256}
	s.start, _ = t.Start(rules.Initial)
	return s
}

// Reset restarts the scanner on src. The start condition is kept.
func (s *Scanner) Reset(src string) {
	s.src = src
	s.pos = 0
}

// Pos returns the input offset of the next token.
func (s *Scanner) Pos() int {
	return s.pos
}

// StartState returns the name of the current start condition.
func (s *Scanner) StartState() string {
	return s.start.Name
}

// Begin switches to the start condition called name.
func (s *Scanner) Begin(name string) error {
	st, ok := s.t.Start(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStartState, name)
	}
	s.start = st
	return nil
}

// Next returns the next token. At end of input it returns a token with EOF
// set, carrying the <<EOF>> rule of the current start condition if it has
// one; every later call returns the same.
func (s *Scanner) Next() Token {
	if s.pos >= len(s.src) {
		return Token{Rule: s.start.EOF, Pos: len(s.src), EOF: true}
	}
	begin := s.pos
	rule, end := s.longest(begin)
	if rule == nil {
		_, size := s.decode(begin)
		end = begin + size
	}
	s.pos = end
	return Token{Rule: rule, Text: s.src[begin:end], Pos: begin}
}

// All scans the rest of the input and returns its tokens, the final EOF
// token included. Start condition changes must be made by the caller, so
// All suits rule sets that use INITIAL only.
func (s *Scanner) All() []Token {
	var out []Token
	for {
		tok := s.Next()
		out = append(out, tok)
		if tok.EOF {
			return out
		}
	}
}

// Predicate reports whether r belongs to the character-class predicate
// called name.
func (s *Scanner) Predicate(name string, r rune) (bool, error) {
	p, ok := s.t.Predicate(name)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownPredicate, name)
	}
	sym := s.t.Symbol(r)
	if sym < 0 {
		return false, nil
	}
	return s.t.NextState(p.State, sym) == p.State, nil
}

// longest runs the automaton from pos and returns the rule of the longest
// match and the offset just past the token. The rule is nil when nothing
// matches or when the match is empty.
func (s *Scanner) longest(pos int) (*rules.Rule, int) {
	state := s.start.State
	if s.t.LeftAnchored && s.atLineStart(pos) {
		state = s.start.Anchor
	}

	s.ends = s.ends[:0]
	accept, chars := 0, 0
	for i := pos; i < len(s.src); {
		r, size := s.decode(i)
		sym := s.t.Symbol(r)
		if sym < 0 {
			break
		}
		next := s.t.NextState(state, sym)
		if next == dfa.GotoStart || next == dfa.EOFNum {
			break
		}
		i += size
		s.ends = append(s.ends, i)
		state = next
		if state <= s.t.MaxAccept {
			accept, chars = state, len(s.ends)
		}
	}
	if accept == 0 {
		return nil, pos
	}

	a := s.t.Accepts[accept]
	n := min(a.Length(chars), chars)
	if n <= 0 {
		return nil, pos
	}
	return a.Rule, s.ends[n-1]
}

func (s *Scanner) atLineStart(pos int) bool {
	return pos == 0 || s.src[pos-1] == '\n'
}

func (s *Scanner) decode(i int) (rune, int) {
	if s.bytes {
		return rune(s.src[i]), 1
	}
	return utf8.DecodeRuneInString(s.src[i:])
}
