package literal

import (
	"bytes"
	"testing"
)

// TestLiteralBasic tests basic Literal type functionality
func TestLiteralBasic(t *testing.T) {
	tests := []struct {
		name     string
		bytes    []byte
		complete bool
		wantLen  int
		wantStr  string
	}{
		{
			name:     "simple complete literal",
			bytes:    []byte("hello"),
			complete: true,
			wantLen:  5,
			wantStr:  "literal{hello, complete=true}",
		},
		{
			name:     "incomplete literal",
			bytes:    []byte("test"),
			complete: false,
			wantLen:  4,
			wantStr:  "literal{test, complete=false}",
		},
		{
			name:     "multi-byte rune",
			bytes:    []byte("λ"),
			complete: true,
			wantLen:  2,
			wantStr:  "literal{λ, complete=true}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lit := NewLiteral(tt.bytes, tt.complete)

			if got := lit.Len(); got != tt.wantLen {
				t.Errorf("Len() = %d, want %d", got, tt.wantLen)
			}
			if got := lit.String(); got != tt.wantStr {
				t.Errorf("String() = %q, want %q", got, tt.wantStr)
			}
		})
	}
}

// TestSeqStates covers the finite, empty and infinite sequence states.
func TestSeqStates(t *testing.T) {
	tests := []struct {
		name       string
		seq        *Seq
		wantLen    int
		wantEmpty  bool
		wantFinite bool
		wantExact  bool
		wantStr    string
	}{
		{"empty", NewSeq(), 0, true, true, true, "seq{}"},
		{"nil", nil, 0, true, false, false, "seq{inf}"},
		{"infinite", Infinite(), 0, false, false, false, "seq{inf}"},
		{
			"exact",
			NewSeq(NewLiteral([]byte("foo"), true), NewLiteral([]byte("bar"), true)),
			2, false, true, true, "seq{foo, bar}",
		},
		{
			"inexact",
			NewSeq(NewLiteral([]byte("foo"), true), NewLiteral([]byte("ba"), false)),
			2, false, true, false, "seq{foo, ba*}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.seq.Len(); got != tt.wantLen {
				t.Errorf("Len() = %d, want %d", got, tt.wantLen)
			}
			if got := tt.seq.IsEmpty(); got != tt.wantEmpty {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.wantEmpty)
			}
			if got := tt.seq.IsFinite(); got != tt.wantFinite {
				t.Errorf("IsFinite() = %v, want %v", got, tt.wantFinite)
			}
			if got := tt.seq.IsExact(); got != tt.wantExact {
				t.Errorf("IsExact() = %v, want %v", got, tt.wantExact)
			}
			if got := tt.seq.String(); got != tt.wantStr {
				t.Errorf("String() = %q, want %q", got, tt.wantStr)
			}
		})
	}
}

func TestSeqUnion(t *testing.T) {
	lit := func(s string) Literal { return NewLiteral([]byte(s), true) }

	tests := []struct {
		name  string
		a, b  *Seq
		limit int
		want  string
	}{
		{"finite", NewSeq(lit("a")), NewSeq(lit("b")), 4, "seq{a, b}"},
		{"with empty", NewSeq(lit("a")), NewSeq(), 4, "seq{a}"},
		{"over limit", NewSeq(lit("a"), lit("b")), NewSeq(lit("c")), 2, "seq{inf}"},
		{"right infinite", NewSeq(lit("a")), Infinite(), 4, "seq{inf}"},
		{"left infinite", Infinite(), NewSeq(lit("a")), 4, "seq{inf}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.a.Union(tt.b, tt.limit)
			if got := tt.a.String(); got != tt.want {
				t.Errorf("Union() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestSeqMinimize tests removal of literals covered by a shorter prefix.
func TestSeqMinimize(t *testing.T) {
	tests := []struct {
		name  string
		input []Literal
		want  string
	}{
		{
			name: "no redundancy",
			input: []Literal{
				NewLiteral([]byte("foo"), true),
				NewLiteral([]byte("bar"), true),
			},
			want: "seq{foo, bar}",
		},
		{
			name: "prefix covers longer literal",
			input: []Literal{
				NewLiteral([]byte("foobar"), true),
				NewLiteral([]byte("foo"), true),
			},
			want: "seq{foo*}",
		},
		{
			name: "duplicates keep completeness",
			input: []Literal{
				NewLiteral([]byte("if"), true),
				NewLiteral([]byte("if"), true),
			},
			want: "seq{if}",
		},
		{
			name: "duplicate prefix only",
			input: []Literal{
				NewLiteral([]byte("if"), true),
				NewLiteral([]byte("if"), false),
			},
			want: "seq{if*}",
		},
		{
			name: "chain",
			input: []Literal{
				NewLiteral([]byte("abc"), true),
				NewLiteral([]byte("ab"), true),
				NewLiteral([]byte("a"), true),
				NewLiteral([]byte("b"), true),
			},
			want: "seq{a*, b}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := NewSeq(tt.input...)
			seq.Minimize()
			if got := seq.String(); got != tt.want {
				t.Errorf("Minimize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMinimizeInfinite(t *testing.T) {
	seq := Infinite()
	seq.Minimize()
	if seq.IsFinite() {
		t.Error("Minimize() made an infinite sequence finite")
	}
}

// TestLongestCommonPrefix tests finding the common prefix of all literals.
func TestLongestCommonPrefix(t *testing.T) {
	tests := []struct {
		name string
		seq  *Seq
		want []byte
	}{
		{"infinite", Infinite(), []byte{}},
		{"empty", NewSeq(), []byte{}},
		{
			name: "single literal",
			seq:  NewSeq(NewLiteral([]byte("hello"), true)),
			want: []byte("hello"),
		},
		{
			name: "shared prefix",
			seq: NewSeq(
				NewLiteral([]byte("hello"), true),
				NewLiteral([]byte("help"), true),
				NewLiteral([]byte("hero"), true),
			),
			want: []byte("he"),
		},
		{
			name: "no shared prefix",
			seq: NewSeq(
				NewLiteral([]byte("abc"), true),
				NewLiteral([]byte("xyz"), true),
			),
			want: []byte{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.seq.LongestCommonPrefix()
			if !bytes.Equal(got, tt.want) {
				t.Errorf("LongestCommonPrefix() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLongestCommonPrefixDoesNotAlias(t *testing.T) {
	seq := NewSeq(NewLiteral([]byte("abc"), true))
	prefix := seq.LongestCommonPrefix()
	prefix[0] = 'x'
	if got := string(seq.Get(0).Bytes); got != "abc" {
		t.Errorf("literal changed to %q through the returned prefix", got)
	}
}
