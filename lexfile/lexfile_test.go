package lexfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/d4l3k/messagediff"

	"github.com/coregx/lexgen"
	"github.com/coregx/lexgen/diag"
)

const commentLex = `%option unicode, nominimize
%x COMMENT
DIGIT   [0-9]
%charClassPredicate DIGIT
%%
{DIGIT}+        NUMBER
"/*"            BEGIN(COMMENT)
<COMMENT>"*/"   BEGIN(INITIAL)
<COMMENT>.|\n   |
<COMMENT><<EOF>> UNTERMINATED
%%
`

// withoutSpans clears every span so that specs compare on content.
func withoutSpans(s *lexgen.Spec) *lexgen.Spec {
	out := *s
	out.Options = append([]lexgen.Option(nil), s.Options...)
	for i := range out.Options {
		out.Options[i].Span = diag.Span{}
	}
	out.StartStates = append([]lexgen.StartState(nil), s.StartStates...)
	for i := range out.StartStates {
		out.StartStates[i].Span = diag.Span{}
	}
	out.Categories = append([]lexgen.Category(nil), s.Categories...)
	for i := range out.Categories {
		out.Categories[i].Span = diag.Span{}
	}
	out.Predicates = append([]lexgen.Predicate(nil), s.Predicates...)
	for i := range out.Predicates {
		out.Predicates[i].Span = diag.Span{}
	}
	out.Rules = append([]lexgen.Rule(nil), s.Rules...)
	for i := range out.Rules {
		out.Rules[i].Span = diag.Span{}
		out.Rules[i].ActionSpan = diag.Span{}
	}
	return &out
}

func TestParse(t *testing.T) {
	spec, err := Parse("comment.lex", commentLex)
	if err != nil {
		t.Fatalf("Parse() = %v", err)
	}
	want := &lexgen.Spec{
		Name:        "comment.lex",
		Options:     []lexgen.Option{{Word: "unicode"}, {Word: "nominimize"}},
		StartStates: []lexgen.StartState{{Name: "COMMENT", Exclusive: true}},
		Categories:  []lexgen.Category{{Name: "DIGIT", Pattern: "[0-9]"}},
		Predicates:  []lexgen.Predicate{{Name: "DIGIT"}},
		Rules: []lexgen.Rule{
			{Pattern: "{DIGIT}+", Action: "NUMBER"},
			{Pattern: `"/*"`, Action: "BEGIN(COMMENT)"},
			{Pattern: `"*/"`, States: []string{"COMMENT"}, Action: "BEGIN(INITIAL)"},
			{Pattern: `.|\n`, States: []string{"COMMENT"}, Action: "|"},
			{Pattern: "<<EOF>>", States: []string{"COMMENT"}, Action: "UNTERMINATED"},
		},
	}
	if diff, equal := messagediff.PrettyDiff(want, withoutSpans(spec)); !equal {
		t.Errorf("Parse() differs:\n%s", diff)
	}
}

func TestParseSpans(t *testing.T) {
	spec, err := Parse("comment.lex", commentLex)
	if err != nil {
		t.Fatalf("Parse() = %v", err)
	}
	tests := []struct {
		name string
		got  diag.Span
		line int
		col  int
		len  int
	}{
		{"option", spec.Options[1].Span, 1, 18, 10},
		{"start state", spec.StartStates[0].Span, 2, 4, 7},
		{"category", spec.Categories[0].Span, 3, 9, 5},
		{"predicate", spec.Predicates[0].Span, 4, 21, 5},
		{"pattern", spec.Rules[2].Span, 8, 10, 4},
		{"action", spec.Rules[2].ActionSpan, 8, 17, 14},
		{"eof pattern", spec.Rules[4].Span, 10, 10, 7},
	}
	for _, tt := range tests {
		if tt.got.Line != tt.line || tt.got.Column != tt.col || tt.got.Length != tt.len {
			t.Errorf("%s span = %+v, want %d:%d length %d", tt.name, tt.got, tt.line, tt.col, tt.len)
		}
	}
}

func TestParseHostCode(t *testing.T) {
	src := `// scanner for a toy language
%{
  using System;
%}
%namespace Demo
  int depth;
%%
  // indented code in the rules section
[a-z]+   { return Ident(yytext); }
[0-9]+   {
             if (x) { y(); }
             return Number;
         }
"}"      { s = "}"; }
<A, B>x  X   // trailing text
<*>y     return '}';
%%
public int Extra() { return 0; }
`
	spec, err := Parse("host.lex", src)
	if err != nil {
		t.Fatalf("Parse() = %v", err)
	}
	want := []lexgen.Rule{
		{Pattern: "[a-z]+", Action: "{ return Ident(yytext); }"},
		{Pattern: "[0-9]+", Action: "{\n             if (x) { y(); }\n             return Number;\n         }"},
		{Pattern: `"}"`, Action: `{ s = "}"; }`},
		{Pattern: "x", States: []string{"A", "B"}, Action: "X   // trailing text"},
		{Pattern: "y", States: []string{"*"}, Action: "return '}';"},
	}
	if diff, equal := messagediff.PrettyDiff(want, withoutSpans(spec).Rules); !equal {
		t.Errorf("rules differ:\n%s", diff)
	}
	if len(spec.Options)+len(spec.StartStates)+len(spec.Categories) != 0 {
		t.Errorf("host code leaked into the parsed Spec: %+v", spec)
	}
	if got := spec.Rules[1].ActionSpan; got.Line != 10 || got.Column != 10 {
		t.Errorf("multi-line action span = %+v, want 10:10", got)
	}
}

func TestParseCRLF(t *testing.T) {
	spec, err := Parse("crlf.lex", "D [0-9]\r\n%%\r\n{D}+  NUM\r\nx\r\n")
	if err != nil {
		t.Fatalf("Parse() = %v", err)
	}
	want := []lexgen.Rule{{Pattern: "{D}+", Action: "NUM"}, {Pattern: "x"}}
	if diff, equal := messagediff.PrettyDiff(want, withoutSpans(spec).Rules); !equal {
		t.Errorf("rules differ:\n%s", diff)
	}
	if spec.Categories[0].Pattern != "[0-9]" {
		t.Errorf("category pattern = %q", spec.Categories[0].Pattern)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		msg  string
	}{
		{"unknown directive", "%frob x\n%%\n", 1, "unknown directive %frob"},
		{"missing separator", "DIGIT [0-9]\n", 0, "missing %%"},
		{"definition without pattern", "DIGIT\n%%\n", 1, "DIGIT has no pattern"},
		{"start state without name", "%x\n%%\n", 1, "names no start state"},
		{"bad definitions line", "%x A\n#bad\n%%\n", 2, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.lex", tt.src)
			if !errors.Is(err, ErrSyntax) {
				t.Fatalf("Parse() = %v, want ErrSyntax", err)
			}
			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("Parse() error %T is not an *Error", err)
			}
			if e.Span.Line != tt.line {
				t.Errorf("error line = %d, want %d (%v)", e.Span.Line, tt.line, err)
			}
			if !strings.Contains(err.Error(), tt.msg) || !strings.HasPrefix(err.Error(), "bad.lex:") {
				t.Errorf("Error() = %q, want it to mention %q", err.Error(), tt.msg)
			}
		})
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comment.lex")
	if err := os.WriteFile(path, []byte(commentLex), 0o600); err != nil {
		t.Fatal(err)
	}
	spec, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() = %v", err)
	}
	if spec.Name != "comment.lex" || len(spec.Rules) != 5 {
		t.Errorf("ReadFile() = %+v", spec)
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.lex")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadFile(missing) = %v, want os.ErrNotExist", err)
	}
}

func TestParsedSpecCompiles(t *testing.T) {
	spec, err := Parse("comment.lex", commentLex)
	if err != nil {
		t.Fatalf("Parse() = %v", err)
	}
	res, err := lexgen.Compile(spec, lexgen.DefaultOptions())
	if err != nil {
		t.Fatalf("Compile() = %v", err)
	}
	if !res.Options.Unicode || res.Options.Minimize {
		t.Errorf("%%option words not applied: %+v", res.Options)
	}
	if _, ok := res.Tables.Predicate("DIGIT"); !ok {
		t.Error("DIGIT predicate missing")
	}
}
