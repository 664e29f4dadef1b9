// Package lexfile reads a LEX-style rules file into a lexgen.Spec.
//
// A rules file has a definitions section, a rules section and an optional
// user code section separated by %% lines:
//
//	%option unicode, nominimize
//	%x COMMENT
//	DIGIT   [0-9]
//	%charClassPredicate DIGIT
//	%%
//	{DIGIT}+          NUMBER
//	"/*"              BEGIN(COMMENT)
//	<COMMENT>"*/"     BEGIN(INITIAL)
//	<COMMENT>.|\n     |
//	<COMMENT><<EOF>>  UNTERMINATED
//	%%
//
// Actions are kept as opaque text. A brace-delimited action may span lines.
// Indented lines, %{ %} blocks and the user code section are host code and
// are skipped.
package lexfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/coregx/lexgen"
	"github.com/coregx/lexgen/diag"
)

// ErrSyntax is wrapped by every error Parse returns.
var ErrSyntax = errors.New("lexfile: syntax error")

// Error is a rules file error with its position.
type Error struct {
	File string
	Span diag.Span
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Span.Line, e.Span.Column, e.Msg)
}

func (e *Error) Unwrap() error {
	return ErrSyntax
}

// Directives that configure the host code rather than the automaton.
var hostDirectives = map[string]bool{
	"namespace":         true,
	"using":             true,
	"visibility":        true,
	"scannertype":       true,
	"scanbasetype":      true,
	"tokentype":         true,
	"usercharpredicate": true,
}

// Parse reads the rules file src. name is used in errors and becomes the
// Spec name.
func Parse(name, src string) (*lexgen.Spec, error) {
	f, err := fileParser.ParseString(name, src)
	if err != nil {
		var perr participle.Error
		if errors.As(err, &perr) {
			return nil, &Error{File: name, Span: spanOf(perr.Position(), 0), Msg: perr.Message()}
		}
		return nil, &Error{File: name, Msg: err.Error()}
	}
	b := &builder{name: name, spec: &lexgen.Spec{Name: name}}
	if err := b.definitions(f.Defs); err != nil {
		return nil, err
	}
	if !f.Sep {
		return nil, &Error{File: name, Msg: "missing %% before the rules section"}
	}
	if f.Rules != nil {
		b.rules(f.Rules.Entries)
	}
	return b.spec, nil
}

// ReadFile parses the rules file at path.
func ReadFile(path string) (*lexgen.Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(filepath.Base(path), string(data))
}

type builder struct {
	name string
	spec *lexgen.Spec
}

func (b *builder) errorf(pos lexer.Position, format string, args ...any) error {
	return &Error{File: b.name, Span: spanOf(pos, 0), Msg: fmt.Sprintf(format, args...)}
}

func (b *builder) definitions(defs []*defEntry) error {
	for _, d := range defs {
		switch {
		case d.Directive != nil:
			if err := b.directive(d.Directive); err != nil {
				return err
			}
		case d.Definition != nil:
			def := d.Definition
			if def.Pattern == nil {
				return b.errorf(def.Pos, "%s has no pattern", def.Name)
			}
			b.spec.Categories = append(b.spec.Categories, lexgen.Category{
				Name:    def.Name,
				Pattern: def.Pattern.Text,
				Span:    spanOf(def.Pattern.Pos, len(def.Pattern.Text)),
			})
		}
	}
	return nil
}

func (b *builder) directive(d *directive) error {
	name := strings.TrimPrefix(d.Name, "%")
	switch strings.ToLower(name) {
	case "option":
		for _, w := range d.Args {
			b.spec.Options = append(b.spec.Options, lexgen.Option{Word: w.Text, Span: spanOf(w.Pos, len(w.Text))})
		}
	case "x", "s":
		if len(d.Args) == 0 {
			return b.errorf(d.Pos, "%s names no start state", d.Name)
		}
		for _, w := range d.Args {
			b.spec.StartStates = append(b.spec.StartStates, lexgen.StartState{
				Name:      w.Text,
				Exclusive: name == "x" || name == "X",
				Span:      spanOf(w.Pos, len(w.Text)),
			})
		}
	case "charclasspredicate", "charsetpredicate":
		for _, w := range d.Args {
			b.spec.Predicates = append(b.spec.Predicates, lexgen.Predicate{Name: w.Text, Span: spanOf(w.Pos, len(w.Text))})
		}
	default:
		if !hostDirectives[strings.ToLower(name)] {
			return b.errorf(d.Pos, "unknown directive %s", d.Name)
		}
	}
	return nil
}

func (b *builder) rules(entries []*ruleEntry) {
	for _, e := range entries {
		r := e.Rule
		if r == nil {
			continue
		}
		rule := lexgen.Rule{
			Pattern: r.Pattern.Text,
			Span:    spanOf(r.Pattern.Pos, len(r.Pattern.Text)),
		}
		if r.States != nil {
			rule.States = stateNames(*r.States)
		}
		if r.Action != nil {
			rule.Action = r.Action.String()
			rule.ActionSpan = spanOf(r.Action.Pos, len(rule.Action))
		}
		b.spec.Rules = append(b.spec.Rules, rule)
	}
}

// stateNames splits "<A, B>" into its names.
func stateNames(list string) []string {
	list = strings.TrimSuffix(strings.TrimPrefix(list, "<"), ">")
	var out []string
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func spanOf(pos lexer.Position, length int) diag.Span {
	return diag.Span{Line: pos.Line, Column: pos.Column, Offset: pos.Offset, Length: length}
}
