package rules

import (
	"testing"

	"github.com/coregx/lexgen/charclass"
	"github.com/coregx/lexgen/diag"
)

func line(n int) diag.Span {
	return diag.Span{Line: n, Column: 1}
}

func newSet() (*Set, *diag.Handler) {
	h := diag.NewHandler(0)
	return NewSet(h, charclass.ASCIICardinality, nil), h
}

func names(states []*StartState) []string {
	var out []string
	for _, s := range states {
		out = append(out, s.Name)
	}
	return out
}

func ruleOrds(rs []*Rule) []int {
	var out []int
	for _, r := range rs {
		out = append(out, r.Ord)
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBuiltinStartStates(t *testing.T) {
	s, _ := newSet()
	all, ok := s.StartState(All)
	if !ok || !all.IsAll() || all.Ord != -1 {
		t.Fatalf("All = %+v", all)
	}
	star, _ := s.StartState(AllShort)
	if star != all {
		t.Error(`"*" must name the All state`)
	}
	initial, ok := s.StartState(Initial)
	if !ok || initial.Ord != 0 || initial.Exclusive {
		t.Errorf("INITIAL = %+v", initial)
	}
}

func TestStartStateOrdinalsArePerSet(t *testing.T) {
	for i := 0; i < 2; i++ {
		s, _ := newSet()
		if err := s.AddStartState("COMMENT", true, line(1)); err != nil {
			t.Fatal(err)
		}
		st, _ := s.StartState("COMMENT")
		if st.Ord != 1 {
			t.Errorf("set %d: COMMENT ord = %d, want 1", i, st.Ord)
		}
	}
}

func TestDuplicateDeclarations(t *testing.T) {
	s, h := newSet()
	_ = s.AddStartState("STR", false, line(1))
	_ = s.AddStartState("STR", true, line(2))
	_ = s.AddCategory("digit", "[0-9]", line(3))
	_ = s.AddCategory("digit", "[0-7]", line(4))

	if !h.Has(diag.CodeStartStateDefined) {
		t.Error("duplicate start state not reported")
	}
	if !h.Has(diag.CodeCategoryDefined) {
		t.Error("duplicate category not reported")
	}
	cat, _ := s.Category("digit")
	if cat.Pattern != "[0-9]" {
		t.Error("redefinition replaced the category")
	}
}

func TestRuleAttachment(t *testing.T) {
	s, h := newSet()
	_ = s.AddStartState("INCL", false, line(1))
	_ = s.AddStartState("EXCL", true, line(2))

	_ = s.AddRule("a", line(3), nil, "A", line(3))
	_ = s.AddRule("b", line(4), []string{"EXCL"}, "B", line(4))
	_ = s.AddRule("c", line(5), []string{"*"}, "C", line(5))
	_ = s.AddRule("d", line(6), []string{"INITIAL"}, "D", line(6))
	if err := s.Finish(); err != nil {
		t.Fatal(err)
	}
	if h.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", h.Diagnostics())
	}

	tests := []struct {
		state string
		want  []int
	}{
		{Initial, []int{1, 3, 4}},
		{"INCL", []int{1, 3}},
		{"EXCL", []int{2, 3}},
		{All, nil},
	}
	for _, tt := range tests {
		st, _ := s.StartState(tt.state)
		if got := ruleOrds(st.Rules); !equalInts(got, tt.want) {
			t.Errorf("%s rules = %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestUndefinedStartState(t *testing.T) {
	s, h := newSet()
	_ = s.AddRule("a", line(1), []string{"NOPE"}, "A", line(1))
	if !h.Has(diag.CodeStartStateUndefined) {
		t.Error("undefined start state not reported")
	}
	if len(s.Rules()) != 0 {
		t.Error("a rule with no valid start state was kept")
	}
}

func TestBarActions(t *testing.T) {
	s, h := newSet()
	_ = s.AddRule("a", line(1), nil, "|", line(1))
	_ = s.AddRule("b", line(2), nil, "|", line(2))
	_ = s.AddRule("c", line(3), nil, "return C;", line(3))
	_ = s.AddRule("d", line(4), nil, "return D;", line(4))
	if err := s.Finish(); err != nil {
		t.Fatal(err)
	}
	if h.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", h.Diagnostics())
	}
	rs := s.Rules()
	if rs[0].Action != rs[2].Action || rs[1].Action != rs[2].Action {
		t.Errorf("bar rules did not inherit: %d %d %d", rs[0].Action, rs[1].Action, rs[2].Action)
	}
	if rs[3].Action == rs[2].Action {
		t.Error("distinct actions share an id")
	}
}

func TestBarOnLastRule(t *testing.T) {
	s, h := newSet()
	_ = s.AddRule("a", line(1), nil, "A", line(1))
	_ = s.AddRule("b", line(2), nil, "|", line(2))
	_ = s.Finish()
	if !h.Has(diag.CodeBarOnLastRule) {
		t.Error("trailing | not reported")
	}
}

func TestParseProblemsReported(t *testing.T) {
	tests := []struct {
		pattern string
		code    int
		column  int
	}{
		{"[z-a]", diag.CodeInvalidRange, 12},
		{"ab)", diag.CodeExtraCharacters, 13},
		{"a+/b*", diag.CodeVariableContext, 11},
		{"{none}", diag.CodeUnknownCategory, 12},
		{"[^\\x00-\\xff]", diag.CodeEmptyClass, 11},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			s, h := newSet()
			_ = s.AddRule(tt.pattern, diag.Span{Line: 7, Column: 11}, nil, "x", line(7))
			ds := h.Diagnostics()
			if len(ds) != 1 || ds[0].Code != tt.code {
				t.Fatalf("diagnostics = %v, want code %d", ds, tt.code)
			}
			if ds[0].Span.Column != tt.column {
				t.Errorf("column = %d, want %d", ds[0].Span.Column, tt.column)
			}
		})
	}
}

func TestLoopRiskWarning(t *testing.T) {
	s, h := newSet()
	_ = s.AddRule("a*", line(1), nil, "x", line(1))
	_ = s.AddRule("b+", line(2), nil, "y", line(2))
	_ = s.Finish()
	ds := h.Diagnostics()
	if len(ds) != 1 || ds[0].Code != diag.CodeMightLoop || ds[0].Span.Line != 1 {
		t.Errorf("diagnostics = %v", ds)
	}
	if h.HasErrors() {
		t.Error("loop risk must only warn")
	}
}

func TestCategoryReference(t *testing.T) {
	s, h := newSet()
	_ = s.AddCategory("digit", "[0-9]", line(1))
	_ = s.AddCategory("num", "{digit}+", line(2))
	_ = s.AddRule("{num}", line(3), nil, "N", line(3))
	_ = s.Finish()
	if h.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", h.Diagnostics())
	}
	digit, _ := s.Category("digit")
	if digit.Tree.Class.Name != "digit" {
		t.Error("class category not named")
	}
	if s.Rules()[0].Tree.MinLen() != 1 {
		t.Error("category graft lost its shape")
	}
}

func TestPredicates(t *testing.T) {
	s, h := newSet()
	_ = s.AddCategory("ident", "[[:IdentifierStartCharacter:]]", line(1))
	_ = s.AddCategory("kw", "if|else", line(2))
	_ = s.DeclarePredicate("ident", line(3))
	_ = s.DeclarePredicate("kw", line(3))
	_ = s.DeclarePredicate("missing", line(3))
	_ = s.AddRule("x", line(4), []string{"*"}, "X", line(4))
	_ = s.Finish()

	if !h.Has(diag.CodeCategoryNotClass) || !h.Has(diag.CodeUnknownCategory) {
		t.Errorf("diagnostics = %v", h.Diagnostics())
	}
	if len(s.Predicates()) != 1 {
		t.Fatalf("Predicates() = %d", len(s.Predicates()))
	}

	dummy, ok := s.StartState("PRED_ident_DUMMY")
	if !ok || !dummy.Dummy || !dummy.Exclusive {
		t.Fatalf("dummy state = %+v", dummy)
	}
	if len(dummy.Rules) != 1 || !dummy.Rules[0].PredDummy || dummy.Rules[0].Action != PredicateAction {
		t.Errorf("dummy rules = %v", dummy.Rules)
	}
	if got := names(s.StartStates()); len(got) != 3 || got[2] != "PRED_ident_DUMMY" {
		t.Errorf("StartStates() = %v", got)
	}
	// <*> rules skip the dummy state
	initial, _ := s.StartState(Initial)
	if len(initial.Rules) != 1 {
		t.Errorf("INITIAL rules = %v", initial.Rules)
	}
}
