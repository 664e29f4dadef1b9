package tables

import (
	"errors"
	"fmt"
	"testing"

	"github.com/coregx/lexgen/charclass"
	"github.com/coregx/lexgen/diag"
	"github.com/coregx/lexgen/dfa"
	"github.com/coregx/lexgen/nfa"
	"github.com/coregx/lexgen/rules"
)

type rule struct {
	pattern string
	states  []string
	action  string
}

type fixture struct {
	card      rune
	pack      bool
	minimize  bool
	exclusive []string
	preds     map[string]string
	rules     []rule
}

func (f fixture) build(t *testing.T) *dfa.DFA {
	t.Helper()
	h := diag.NewHandler(0)
	set := rules.NewSet(h, f.card, nil)
	for _, name := range f.exclusive {
		if err := set.AddStartState(name, true, diag.Span{Line: 1}); err != nil {
			t.Fatal(err)
		}
	}
	for name, pattern := range f.preds {
		_ = set.AddCategory(name, pattern, diag.Span{Line: 1})
		_ = set.DeclarePredicate(name, diag.Span{Line: 1})
	}
	for i, r := range f.rules {
		action := r.action
		if action == "" {
			action = fmt.Sprintf("act%d", i)
		}
		if err := set.AddRule(r.pattern, diag.Span{Line: i + 2}, r.states, action, diag.Span{Line: i + 2}); err != nil {
			t.Fatal(err)
		}
	}
	if err := set.Finish(); err != nil {
		t.Fatal(err)
	}
	if h.HasErrors() {
		t.Fatalf("diagnostics: %v", h.Diagnostics())
	}
	alpha := nfa.NewAlphabet(set.Rules(), f.card, f.pack, false)
	n, err := nfa.Build(set, alpha)
	if err != nil {
		t.Fatal(err)
	}
	d, err := dfa.Build(n, h, dfa.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if f.minimize {
		d.Minimize()
	}
	d.Finish()
	return d
}

func patterns(ps ...string) []rule {
	out := make([]rule, len(ps))
	for i, p := range ps {
		out[i] = rule{pattern: p}
	}
	return out
}

func TestBuildRequiresFinish(t *testing.T) {
	h := diag.NewHandler(0)
	set := rules.NewSet(h, charclass.ASCIICardinality, nil)
	_ = set.AddRule("a", diag.Span{Line: 1}, nil, "x", diag.Span{})
	_ = set.Finish()
	alpha := nfa.NewAlphabet(set.Rules(), charclass.ASCIICardinality, true, false)
	n, err := nfa.Build(set, alpha)
	if err != nil {
		t.Fatal(err)
	}
	d, err := dfa.Build(n, h, dfa.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Build(d, Options{}); !errors.Is(err, dfa.ErrNotFinished) {
		t.Errorf("Build before Finish: err = %v, want ErrNotFinished", err)
	}
}

func TestNextStateAgreesWithAutomaton(t *testing.T) {
	fixtures := map[string]fixture{
		"ascii packed": {
			card: charclass.ASCIICardinality, pack: true,
			rules: patterns("[a-z_][a-z0-9_]*", "[0-9]+", "if", "'[^'\\n]*'", "[ \\t\\n]+", "a/b", "^#.*"),
		},
		"ascii unpacked": {
			card: charclass.ASCIICardinality, pack: false, minimize: true,
			rules: patterns("[a-c]+", "ab|cb", "x*y$"),
		},
		"unicode": {
			card: charclass.UnicodeCardinality, pack: true, minimize: true,
			rules: patterns("[\\u0400-\\u04FF]+", "[a-z]+", "\\U0001F600"),
		},
	}

	for name, f := range fixtures {
		d := f.build(t)
		states := d.States()
		for _, compress := range []bool{false, true} {
			t.Run(fmt.Sprintf("%s/compressNext=%v", name, compress), func(t *testing.T) {
				tbl, err := Build(d, Options{CompressNext: compress, CompressMap: true})
				if err != nil {
					t.Fatal(err)
				}
				if compress != (tbl.Sliced != nil) {
					t.Fatalf("sliced rows = %v, want %v", tbl.Sliced != nil, compress)
				}
				for i, s := range states {
					for sym := range d.MaxSym() {
						if got, want := tbl.NextState(i, sym), d.NextOn(s, sym); got != want {
							t.Fatalf("NextState(%d, %d) = %d, want %d", i, sym, got, want)
						}
					}
				}
			})
		}
	}
}

func TestSlicedRows(t *testing.T) {
	f := fixture{card: charclass.ASCIICardinality, rules: patterns("[a-c]")}
	d := f.build(t)
	tbl, err := Build(d, Options{CompressNext: true})
	if err != nil {
		t.Fatal(err)
	}
	eof := tbl.Sliced[dfa.EOFNum]
	if eof.Rng != 0 || eof.Default != dfa.EOFNum {
		t.Errorf("EOF row = %+v", eof)
	}
	start := tbl.Sliced[tbl.Starts[0].State]
	if start.Min != 'a' || start.Rng != 3 || start.Default != dfa.GotoStart {
		t.Errorf("start row = (%d, %d, %d)", start.Min, start.Rng, start.Default)
	}
	accept := tbl.Sliced[1]
	if accept.Rng != 0 || accept.Next != nil || accept.Default != dfa.GotoStart {
		t.Errorf("accept row = %+v", accept)
	}
	if tbl.Stats.Transitions != 3 {
		t.Errorf("Transitions = %d, want 3", tbl.Stats.Transitions)
	}
}

func TestRawRowAliasing(t *testing.T) {
	f := fixture{card: charclass.ASCIICardinality, pack: true, rules: patterns("ab|cb")}
	d := f.build(t)
	tbl, err := Build(d, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Alias[1] != -1 || tbl.Alias[2] != 1 {
		t.Errorf("Alias = %v, want the second accept row to share the first", tbl.Alias)
	}
	if &tbl.Raw[1][0] != &tbl.Raw[2][0] {
		t.Error("aliased rows do not share storage")
	}
	for i, j := range tbl.Alias {
		if j >= 0 && !d.EquivalentNextStates(d.States()[i], d.States()[j]) {
			t.Errorf("row %d aliases non-equivalent row %d", i, j)
		}
	}
	if want := (tbl.States - tbl.Stats.AliasedRows) * tbl.MaxSym; tbl.Stats.Transitions != want {
		t.Errorf("Transitions = %d, want %d", tbl.Stats.Transitions, want)
	}
}

func TestActionGroups(t *testing.T) {
	f := fixture{
		card: charclass.ASCIICardinality, pack: true,
		rules: []rule{
			{pattern: "ab|cb"},
			{pattern: "x", action: "|"},
			{pattern: "y"},
			{pattern: "z/z"},
		},
	}
	d := f.build(t)
	tbl, err := Build(d, Options{CompressNext: true})
	if err != nil {
		t.Fatal(err)
	}
	// "ab" and "cb" end in different states sharing one rule; "x" shares
	// the action of "y"
	sizes := make(map[string]int)
	for _, g := range tbl.Groups {
		sizes[g.Accept.Rule.Pattern] += len(g.States)
		for _, s := range g.States {
			a := tbl.Accepts[s]
			if a.Rule.Action != g.Accept.Rule.Action || a.RightContext != g.Accept.RightContext {
				t.Errorf("state %d does not match its group", s)
			}
		}
		if g.Accept.Rule.Pattern == "z/z" && (g.Accept.RightContext != 1 || g.Accept.Length(2) != 1) {
			t.Errorf("context accept = %+v", g.Accept)
		}
	}
	if len(tbl.Groups) != 3 {
		t.Errorf("%d groups, want 3", len(tbl.Groups))
	}
	if sizes["ab|cb"] != 2 || sizes["z/z"] != 1 || sizes["x"]+sizes["y"] != 2 {
		t.Errorf("group sizes = %v", sizes)
	}
}

func TestStartsEOFAndPredicates(t *testing.T) {
	f := fixture{
		card: charclass.ASCIICardinality, pack: true,
		exclusive: []string{"COMMENT"},
		preds:     map[string]string{"DIGIT": "[0-9]"},
		rules: []rule{
			{pattern: "{DIGIT}+"},
			{pattern: "^#"},
			{pattern: "\"*/\"", states: []string{"COMMENT"}},
			{pattern: "<<EOF>>", states: []string{"COMMENT"}, action: "unterminated"},
		},
	}
	d := f.build(t)
	tbl, err := Build(d, Options{CompressMap: true, CompressNext: true})
	if err != nil {
		t.Fatal(err)
	}
	initial, ok := tbl.Start(rules.Initial)
	if !ok || initial.EOF != nil || initial.Anchor == initial.State {
		t.Errorf("INITIAL = %+v", initial)
	}
	comment, ok := tbl.Start("COMMENT")
	if !ok || comment.EOF == nil || comment.Anchor != comment.State {
		t.Errorf("COMMENT = %+v", comment)
	}
	if len(tbl.EOFGroups) != 1 || tbl.EOFGroups[0].Starts[0] != comment.State {
		t.Errorf("EOFGroups = %+v", tbl.EOFGroups)
	}
	if !tbl.LeftAnchored {
		t.Error("LeftAnchored = false")
	}
	if _, ok := tbl.Start("PRED_DIGIT_DUMMY"); !ok {
		t.Error("dummy start condition missing")
	}

	p, ok := tbl.Predicate("DIGIT")
	if !ok {
		t.Fatal("predicate DIGIT missing")
	}
	for r := rune(0); r < 128; r++ {
		got := tbl.NextState(p.State, tbl.Symbol(r)) == p.State
		if want := r >= '0' && r <= '9'; got != want {
			t.Errorf("DIGIT(%q) = %v, want %v", r, got, want)
		}
	}
}

func TestMapStrategies(t *testing.T) {
	f := fixture{
		card: charclass.UnicodeCardinality, pack: true,
		rules: patterns("[a-z]+", "[0-9]+", "[\\u0400-\\u04FF]", "[\\u0600-\\u06FF]", "[\\u4E00-\\u9FFF]", "\\U0001F600"),
	}
	d := f.build(t)
	p := d.Alphabet().Partition()

	tests := []struct {
		opts Options
		want MapKind
	}{
		{Options{}, MapFlat},
		{Options{CompressMap: true, Squeeze: true}, MapCompressed},
		{Options{CompressMap: true}, MapTwoLevel},
	}
	samples := []rune{0x10000, 0x1F5FF, 0x1F600, 0x1F601, 0x10FFFF}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			m := newCharMap(d.Alphabet(), tt.opts)
			if m.Kind != tt.want {
				t.Fatalf("Kind = %v, want %v", m.Kind, tt.want)
			}
			for r := rune(0); r <= charclass.MaxBMP; r++ {
				if got, want := m.Class(r), p.Class(r); got != want {
					t.Fatalf("Class(%U) = %d, want %d", r, got, want)
				}
			}
			for _, r := range samples {
				if got, want := m.Class(r), p.Class(r); got != want {
					t.Errorf("Class(%U) = %d, want %d", r, got, want)
				}
			}
			if m.Class(-1) != -1 || m.Class(charclass.UnicodeCardinality) != -1 {
				t.Error("out of range code points must map to -1")
			}
		})
	}
}

func TestTwoLevelPagesAreShared(t *testing.T) {
	f := fixture{
		card: charclass.UnicodeCardinality, pack: true,
		rules: patterns("[a-z]+", "[0-9]+", "[\\u0400-\\u04FF]", "[\\u0600-\\u06FF]", "[\\u4E00-\\u9FFF]", "\\U0001F600"),
	}
	d := f.build(t)
	m := newCharMap(d.Alphabet(), Options{CompressMap: true})
	if len(m.Pages) != 256 {
		t.Fatalf("pages = %d, want 256", len(m.Pages))
	}
	if m.Pages[0x50] != m.Pages[0x90] {
		t.Error("pages inside one class are not shared")
	}
	if m.Pages[0x04] == m.Pages[0x06] {
		t.Error("pages of different classes are shared")
	}
	if len(m.PageTables) >= len(m.Pages) {
		t.Errorf("%d page tables for %d pages", len(m.PageTables), len(m.Pages))
	}
	if !m.HighRuns {
		t.Error("the singleton above the BMP needs the decision tree")
	}
	if m.Entries() != len(m.PageTables)*charclass.PageSize {
		t.Errorf("Entries() = %d", m.Entries())
	}
}

func TestMapNoneWithoutClasses(t *testing.T) {
	f := fixture{card: charclass.ASCIICardinality, rules: patterns("abc")}
	d := f.build(t)
	tbl, err := Build(d, Options{CompressMap: true})
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Map.Kind != MapNone || tbl.Symbol('q') != 'q' || tbl.Symbol(300) != -1 {
		t.Errorf("map = %v, Symbol('q') = %d", tbl.Map.Kind, tbl.Symbol('q'))
	}
	if tbl.Stats.Classes != 0 || tbl.MaxSym != 256 {
		t.Errorf("Classes = %d, MaxSym = %d", tbl.Stats.Classes, tbl.MaxSym)
	}
}

func TestDecide(t *testing.T) {
	runs := []Run{
		{Min: 0, Max: 9, Class: 0},
		{Min: 10, Max: 12, Class: -1, Table: []int32{1, 2, 1}},
		{Min: 13, Max: 13, Class: 3},
		{Min: 14, Max: 99, Class: 0},
	}
	want := map[rune]int{0: 0, 9: 0, 10: 1, 11: 2, 12: 1, 13: 3, 14: 0, 99: 0}
	for r, w := range want {
		if got := decide(runs, r); got != w {
			t.Errorf("decide(%d) = %d, want %d", r, got, w)
		}
	}
}

func TestTreeDepth(t *testing.T) {
	for n, want := range map[int]int{0: 0, 1: 0, 2: 1, 3: 2, 8: 3, 9: 4, 10: 4, 16: 4, 17: 5} {
		if got := treeDepth(n); got != want {
			t.Errorf("treeDepth(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestAcceptLength(t *testing.T) {
	tests := []struct {
		a    Accept
		n    int
		want int
	}{
		{Accept{}, 5, 5},
		{Accept{RightContext: 2}, 5, 3},
		{Accept{LeftContext: 1}, 5, 1},
		{Accept{LeftContext: 2, RightContext: 3}, 5, 2},
	}
	for _, tt := range tests {
		if got := tt.a.Length(tt.n); got != tt.want {
			t.Errorf("%+v.Length(%d) = %d, want %d", tt.a, tt.n, got, tt.want)
		}
	}
}

func TestEOFGroupsListEachStateOnce(t *testing.T) {
	quit := &rules.Rule{Action: 1, ActionText: "quit"}
	fail := &rules.Rule{Action: 2, ActionText: "fail"}
	starts := []Start{
		{Name: rules.Initial, State: 1},
		{Name: "A", State: 2, EOF: quit},
		{Name: "B", State: 2, EOF: fail},
		{Name: "C", State: 3, EOF: quit},
		{Name: "D", State: 4, EOF: fail},
	}
	groups := eofGroups(starts)
	seen := map[int]int{}
	for _, g := range groups {
		for _, s := range g.Starts {
			seen[s]++
		}
	}
	for s, n := range seen {
		if n != 1 {
			t.Errorf("state %d listed %d times in %+v", s, n, groups)
		}
	}
	if len(groups) != 2 {
		t.Fatalf("eofGroups() = %+v, want 2 groups", groups)
	}
	if g := groups[0]; g.Rule != quit || len(g.Starts) != 2 || g.Starts[0] != 2 || g.Starts[1] != 3 {
		t.Errorf("quit group = %+v, want states [2 3]", g)
	}
	if g := groups[1]; g.Rule != fail || len(g.Starts) != 1 || g.Starts[0] != 4 {
		t.Errorf("fail group = %+v, want states [4]", g)
	}
}
