package scan

import (
	"errors"
	"testing"

	"github.com/d4l3k/messagediff"

	"github.com/coregx/lexgen"
)

type span struct {
	Start, End, Ord int
}

func spans(ms []Match) []span {
	out := []span{}
	for _, m := range ms {
		out = append(out, span{m.Start, m.End, m.Rule.Ord})
	}
	return out
}

func TestSearcherFindAll(t *testing.T) {
	res := compile(t, lexgen.DefaultOptions(), "if", "else", "[0-9]+", "0x[0-9a-f]+")
	s, err := NewSearcher(res, "INITIAL")
	if err != nil {
		t.Fatalf("NewSearcher() = %v", err)
	}
	if !s.Prefiltered() {
		t.Fatal("Prefiltered() = false, want a literal prefilter")
	}

	tests := []struct {
		text string
		want []span
	}{
		{"x if y else 42 z", []span{{2, 4, 1}, {7, 11, 2}, {12, 14, 3}}},
		{"ifelse", []span{{0, 2, 1}, {2, 6, 2}}},
		{"nothing here", []span{}},
		{"0x1f 0xg", []span{{0, 4, 4}, {5, 6, 3}}},
		{"", []span{}},
	}
	for _, tt := range tests {
		got := spans(s.FindAll(tt.text))
		if diff, equal := messagediff.PrettyDiff(tt.want, got); !equal {
			t.Errorf("FindAll(%q) differs:\n%s", tt.text, diff)
		}
	}
}

func TestSearcherPrefilterAgreesWithFullScan(t *testing.T) {
	cases := []struct {
		name     string
		opts     lexgen.Options
		patterns []string
	}{
		{"keywords", lexgen.DefaultOptions(), []string{"if", "else", "while", "whilst"}},
		{"context", lexgen.DefaultOptions(), []string{"ab/cd", "abc", "cd"}},
		{"anchored", lexgen.DefaultOptions(), []string{"^#", "#!"}},
		{"caseless", lexgen.DefaultOptions().WithCaseInsensitive(true), []string{"sel", "from"}},
		{"unicode", lexgen.DefaultOptions().WithUnicode(true), []string{"λx", "μ+"}},
	}
	texts := []string{
		"if while else whilst ifelse",
		"abcd abc abcabcd cd",
		"#!#\n#! #",
		"SELECT x FROM y; Select From",
		"λx λμμ μλx",
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := compile(t, tc.opts, tc.patterns...)
			s, err := NewSearcher(res, "INITIAL")
			if err != nil {
				t.Fatalf("NewSearcher() = %v", err)
			}
			if !s.Prefiltered() {
				t.Fatalf("Prefiltered() = false for %q", tc.patterns)
			}
			full := &Searcher{scanner: New(res.Tables, "")}
			for _, text := range texts {
				want := spans(full.FindAll(text))
				got := spans(s.FindAll(text))
				if diff, equal := messagediff.PrettyDiff(want, got); !equal {
					t.Errorf("FindAll(%q) differs from a full scan:\n%s", text, diff)
				}
			}
		})
	}
}

func TestSearcherWithoutPrefilter(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
	}{
		{"wide class", []string{"if", "[a-z]+"}},
		{"optional prefix", []string{"if", "x*y"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := compile(t, lexgen.DefaultOptions(), tt.patterns...)
			s, err := NewSearcher(res, "INITIAL")
			if err != nil {
				t.Fatalf("NewSearcher() = %v", err)
			}
			if s.Prefiltered() {
				t.Errorf("Prefiltered() = true for %q", tt.patterns)
			}
		})
	}

	res := compile(t, lexgen.DefaultOptions(), "if", "[a-z]+")
	s, _ := NewSearcher(res, "INITIAL")
	want := []span{{0, 2, 1}, {3, 7, 2}}
	if diff, equal := messagediff.PrettyDiff(want, spans(s.FindAll("if then 42"))); !equal {
		t.Errorf("FindAll() differs:\n%s", diff)
	}
}

func TestSearcherNonASCIILiteralInByteTables(t *testing.T) {
	res := compile(t, lexgen.DefaultOptions(), `\xe9`)
	s, err := NewSearcher(res, "INITIAL")
	if err != nil {
		t.Fatalf("NewSearcher() = %v", err)
	}
	if s.Prefiltered() {
		t.Error("Prefiltered() = true for a byte above 0x7f")
	}
	if got := spans(s.FindAll("a\xe9b")); len(got) != 1 || got[0] != (span{1, 2, 1}) {
		t.Errorf("FindAll() = %v, want one match at 1", got)
	}
}

func TestNewSearcherUnknownStartState(t *testing.T) {
	res := compile(t, lexgen.DefaultOptions(), "a")
	if _, err := NewSearcher(res, "NOPE"); !errors.Is(err, ErrUnknownStartState) {
		t.Errorf("NewSearcher() = %v, want ErrUnknownStartState", err)
	}
}
