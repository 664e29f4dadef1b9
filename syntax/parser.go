package syntax

import (
	"fmt"
	"unicode"

	"github.com/coregx/lexgen/charclass"
	"github.com/coregx/lexgen/diag"
)

// EOFPattern is the pseudo pattern matching end of input. It is recognized
// only as a whole pattern.
const EOFPattern = "<<EOF>>"

// MaxRepeat bounds the counts of a {m,n} repetition.
const MaxRepeat = 1000

// Config supplies the context a pattern is parsed in.
type Config struct {
	// Cardinality is the host alphabet size. Zero selects
	// charclass.ASCIICardinality.
	Cardinality rune

	// Category resolves a {name} reference to a previously parsed
	// lexical category. Nil means no categories are defined.
	Category func(name string) (*Node, bool)

	// Predicate resolves a [:Name:] class item. Nil means no predicates
	// are available.
	Predicate func(name string) (*charclass.RangeList, bool)
}

const nul rune = 0

type parser struct {
	cfg Config
	pat []rune

	index int  // index of the next rune to read
	chr   rune // the last rune read
	esc   bool // chr was preceded by a backslash

	warnings []*Error
}

// Parse parses one pattern. It stops at the first error and returns it as
// an *Error; warnings found before that point are returned either way.
//
// Grammar, with juxtaposition as concatenation:
//
//	regex   = "<<EOF>>" | expr
//	expr    = ["^"] simple ["$"]
//	simple  = term ["/" term]
//	term    = factor {"|" factor}
//	factor  = primary {primary}
//	primary = ('"' chars '"' | "(" term ")" | primitive) [postfix]
//	postfix = "*" | "+" | "?" | "{" m ["," [n]] "}"
func Parse(pattern string, cfg Config) (*Node, []*Error, error) {
	if cfg.Cardinality == 0 {
		cfg.Cardinality = charclass.ASCIICardinality
	}
	if pattern == EOFPattern {
		return EOF(), nil, nil
	}
	p := &parser{cfg: cfg, pat: []rune(pattern)}
	p.scan()
	n, err := p.regex()
	if err != nil {
		return nil, p.warnings, err
	}
	return n, p.warnings, nil
}

func (p *parser) scan() {
	if p.index >= len(p.pat) {
		p.chr, p.esc = nul, false
		return
	}
	p.chr = p.pat[p.index]
	p.index++
	p.esc = p.chr == '\\'
	if !p.esc {
		return
	}
	if p.index >= len(p.pat) {
		// dangling backslash: step past the end so the escape decoder
		// sees nothing to decode
		p.chr = nul
		p.index++
		return
	}
	p.chr = p.pat[p.index]
	p.index++
}

func (p *parser) peek() rune {
	if p.index < len(p.pat) {
		return p.pat[p.index]
	}
	return nul
}

// atEnd reports whether the whole pattern has been consumed.
func (p *parser) atEnd() bool {
	return p.chr == nul && !p.esc && p.index >= len(p.pat)
}

// is reports whether the current rune is the unescaped c.
func (p *parser) is(c rune) bool {
	return !p.esc && p.chr == c
}

func (p *parser) syntaxError(code, offset, length int, arg string) *Error {
	return newError(KindSyntax, code, offset, length, arg)
}

func (p *parser) warn(code, offset, length int, arg string) {
	p.warnings = append(p.warnings, newError(KindWarning, code, offset, length, arg))
}

func (p *parser) regex() (*Node, error) {
	n, err := p.expr()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		at := p.index - 1
		if p.esc {
			at--
		}
		return nil, p.syntaxError(diag.CodeExtraCharacters, at, len(p.pat)-at, "")
	}
	return n, nil
}

// expr builds LeftAnchor(RightAnchor(simple)) when both anchors are present,
// so the left anchor is always outermost.
func (p *parser) expr() (*Node, error) {
	left := p.is('^')
	if left {
		p.scan()
	}
	n, err := p.simple()
	if err != nil {
		return nil, err
	}
	if p.is('$') {
		p.scan()
		n = RightAnchor(n)
	}
	if left {
		n = LeftAnchor(n)
	}
	return n, nil
}

func (p *parser) simple() (*Node, error) {
	n, err := p.term()
	if err != nil {
		return nil, err
	}
	if p.is('/') {
		p.scan()
		ctx, err := p.term()
		if err != nil {
			return nil, err
		}
		n = Context(n, ctx)
	}
	return n, nil
}

func (p *parser) term() (*Node, error) {
	n, err := p.factor()
	if err != nil {
		return nil, err
	}
	for p.is('|') {
		p.scan()
		rhs, err := p.factor()
		if err != nil {
			return nil, err
		}
		n = Alt(n, rhs)
	}
	return n, nil
}

// startsPrimary reports whether the current rune may begin a primary.
func (p *parser) startsPrimary() bool {
	if p.esc {
		return true
	}
	switch p.chr {
	case nul, ')', '|', '*', '+', '?', '}', '/', '$':
		return false
	}
	return true
}

func (p *parser) factor() (*Node, error) {
	n, err := p.primary()
	if err != nil {
		return nil, err
	}
	for p.startsPrimary() {
		rhs, err := p.primary()
		if err != nil {
			return nil, err
		}
		n = Concat(n, rhs)
	}
	return n, nil
}

func (p *parser) primary() (*Node, error) {
	var n *Node
	var err error
	switch {
	case p.is('"'):
		n, err = p.literalString()
	case p.is('('):
		p.scan()
		if n, err = p.term(); err == nil {
			err = p.expect(')')
		}
	default:
		n, err = p.primitive()
	}
	if err != nil {
		return nil, err
	}

	switch {
	case p.is('*'):
		p.scan()
		n = Closure(n, 0)
	case p.is('+'):
		p.scan()
		n = Closure(n, 1)
	case p.is('?'):
		p.scan()
		n = Repeat(n, 0, 1)
	case p.is('{') && isDigit(p.peek()):
		n, err = p.repetitions(n)
	}
	return n, err
}

func (p *parser) expect(c rune) error {
	if p.chr != c {
		return p.syntaxError(diag.CodeExpectedChar, max(p.index-1, 0), 1, string(c))
	}
	p.scan()
	return nil
}

func (p *parser) repetitions(sub *Node) (*Node, error) {
	p.scan() // '{'
	lo, err := p.integer()
	if err != nil {
		return nil, err
	}
	hi := lo
	if p.is(',') {
		p.scan()
		if !isDigit(p.chr) || p.esc {
			if err := p.expect('}'); err != nil {
				return nil, err
			}
			return Closure(sub, lo), nil
		}
		if hi, err = p.integer(); err != nil {
			return nil, err
		}
	}
	if err := p.expect('}'); err != nil {
		return nil, err
	}
	return Repeat(sub, lo, hi), nil
}

func (p *parser) integer() (int, error) {
	start := p.index - 1
	v := 0
	for !p.esc && isDigit(p.chr) {
		v = v*10 + int(p.chr-'0')
		if v > MaxRepeat {
			return 0, p.syntaxError(diag.CodeRepeatTooLarge, start, p.index-start, "")
		}
		p.scan()
	}
	return v, nil
}

func (p *parser) literalString() (*Node, error) {
	start := p.index // first rune after the opening quote
	p.scan()
	for p.esc || (p.chr != '"' && p.chr != nul) {
		p.scan()
	}
	end := min(p.index-1, len(p.pat))
	if err := p.expect('"'); err != nil {
		return nil, err
	}
	body := p.pat[start:end]
	str, badAt, badLen, ok := interpretString(body)
	if !ok {
		return nil, newError(KindEscape, diag.CodeIllegalEscape, start+badAt, badLen, string(body[badAt:badAt+badLen]))
	}
	for i, r := range str {
		if r >= p.cfg.Cardinality {
			return nil, p.syntaxError(diag.CodeLiteralTooLarge, start+i, 1, fmt.Sprintf("%U", r))
		}
	}
	return String(str), nil
}

func (p *parser) primitive() (*Node, error) {
	switch {
	case p.is('['):
		return p.charClass()
	case p.is('{') && !isDigit(p.peek()):
		return p.category()
	case p.is('.'):
		p.scan()
		return Class(charclass.NewLiteral(charclass.NewRangeList(true, charclass.Single('\n')))), nil
	case p.esc:
		at := p.index - 2
		r, err := p.escapedChar()
		if err != nil {
			return nil, err
		}
		p.scan()
		return p.char(r, at)
	case p.atEnd():
		return nil, p.syntaxError(diag.CodeExpectedChar, len(p.pat), 0, "")
	default:
		r := p.chr
		at := p.index - 1
		p.scan()
		return p.char(r, at)
	}
}

func (p *parser) char(r rune, at int) (*Node, error) {
	if r >= p.cfg.Cardinality {
		return nil, p.syntaxError(diag.CodeLiteralTooLarge, at, 1, fmt.Sprintf("%U", r))
	}
	return Char(r), nil
}

// escapedChar decodes the escape whose first rune after the backslash is
// the current rune, leaving index just past the sequence.
func (p *parser) escapedChar() (rune, error) {
	at := p.index - 1
	r, next, ok := decodeEscape(p.pat, at)
	if !ok {
		from := at - 1
		to := min(next, len(p.pat))
		return 0, newError(KindEscape, diag.CodeIllegalEscape, from, to-from, string(p.pat[from:to]))
	}
	p.index = next
	return r, nil
}

func (p *parser) category() (*Node, error) {
	p.scan() // '{'
	start := p.index - 1
	for p.chr != '}' && p.chr != nul {
		p.scan()
	}
	end := min(p.index-1, len(p.pat))
	name := string(p.pat[start:end])
	if err := p.expect('}'); err != nil {
		return nil, err
	}
	if p.cfg.Category != nil {
		if n, ok := p.cfg.Category(name); ok {
			return n, nil
		}
	}
	return nil, p.syntaxError(diag.CodeUnknownCategory, start, end-start, name)
}

func (p *parser) charClass() (*Node, error) {
	p.scan() // '['
	invert := false
	if p.is('^') {
		invert = true
		p.scan()
	}
	list := charclass.NewRangeList(invert)
	if p.is('-') {
		p.warn(diag.CodeLeadingMinus, p.index-1, 1, "-")
		list.AddRune('-')
		p.scan()
	}

	for p.chr != nul && !p.is(']') {
		start := p.index - 1
		if p.esc {
			start--
		}
		if p.is('[') && p.peek() == ':' {
			pred, err := p.predicate()
			if err != nil {
				return nil, err
			}
			list.AddList(pred)
			continue
		}
		if p.is('-') {
			return nil, p.syntaxError(diag.CodeMinusNotEscaped, start, 1, "")
		}
		lo, err := p.classChar()
		if err != nil {
			return nil, err
		}
		p.scan()

		if !p.is('-') {
			list.AddRune(lo)
			continue
		}
		p.scan()
		if p.is(']') {
			list.AddRune(lo)
			list.AddRune('-')
			p.warn(diag.CodeOpenRange, start, p.index-1-start, fmt.Sprintf("%s,-", charclass.Single(lo)))
			continue
		}
		hi, err := p.classChar()
		if err != nil {
			return nil, err
		}
		if hi < lo {
			return nil, p.syntaxError(diag.CodeInvalidRange, start, p.index-start, "")
		}
		p.scan()
		list.Add(charclass.CharRange{Min: lo, Max: hi})
	}
	if err := p.expect(']'); err != nil {
		return nil, err
	}
	return Class(charclass.NewLiteral(list)), nil
}

// classChar returns the code point of the current class member, decoding
// an escape if needed.
func (p *parser) classChar() (rune, error) {
	at := p.index - 1
	r := p.chr
	if p.esc {
		var err error
		if r, err = p.escapedChar(); err != nil {
			return 0, err
		}
		at--
	}
	if r >= p.cfg.Cardinality {
		return 0, p.syntaxError(diag.CodeLiteralTooLarge, at, 1, fmt.Sprintf("%U", r))
	}
	return r, nil
}

func (p *parser) predicate() (*charclass.RangeList, error) {
	p.scan() // '['
	p.scan() // ':'
	start := p.index - 1
	for !p.esc && unicode.IsLetter(p.chr) {
		p.scan()
	}
	end := min(p.index-1, len(p.pat))
	name := string(p.pat[start:end])

	var list *charclass.RangeList
	ok := false
	if p.cfg.Predicate != nil {
		list, ok = p.cfg.Predicate(name)
	}
	if !ok {
		return nil, p.syntaxError(diag.CodeUnknownPredicate, start, end-start, name)
	}
	if err := p.expect(':'); err != nil {
		return nil, err
	}
	if err := p.expect(']'); err != nil {
		return nil, err
	}
	return list, nil
}
