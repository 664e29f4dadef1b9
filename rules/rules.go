// Package rules holds the rule table of a scanner specification: its start
// states, lexical categories and pattern rules.
//
// A Set is filled in declaration order and then closed with Finish, which
// resolves "|" actions, attaches every rule to the start states it is active
// in and adds the hidden rules backing character-class predicates. Problems
// are reported to a diag.Handler; the methods only return an error when the
// handler gives up.
package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/coregx/lexgen/charclass"
	"github.com/coregx/lexgen/diag"
	"github.com/coregx/lexgen/syntax"
)

// Built-in start state names.
const (
	// Initial is the start state a scanner begins in.
	Initial = "INITIAL"

	// All is the pseudo start state naming every real start state.
	All = "$ALL$"

	// AllShort is the "<*>" spelling of All.
	AllShort = "*"
)

// PredicateAction is the action id shared by the hidden predicate rules.
const PredicateAction = -1

// BarAction is the action text meaning "same action as the next rule".
const BarAction = "|"

// StartState is a named scanner mode. Every StartState other than All
// becomes one automaton instance.
type StartState struct {
	Name      string
	Ord       int
	Exclusive bool

	// Dummy marks the hidden exclusive state backing a predicate.
	Dummy bool

	// Rules lists the rules active in the state, in rule order.
	Rules []*Rule
}

// IsAll reports whether s is the All pseudo state.
func (s *StartState) IsAll() bool {
	return s.Ord == -1
}

// Category is a named pattern fragment, referenced as {name}.
type Category struct {
	Name    string
	Pattern string
	Tree    *syntax.Node
	Span    diag.Span

	// Predicate is set when the category was declared a character-class
	// predicate.
	Predicate bool
}

// DummyStateName returns the name of the hidden start state backing a
// predicate category.
func (c *Category) DummyStateName() string {
	return predPrefix + c.Name + predSuffix
}

const (
	predPrefix = "PRED_"
	predSuffix = "_DUMMY"
)

// PredicateName returns the category behind a predicate dummy start state
// name.
func PredicateName(state string) (string, bool) {
	name, ok := strings.CutPrefix(state, predPrefix)
	if !ok {
		return "", false
	}
	return strings.CutSuffix(name, predSuffix)
}

// Rule is one pattern with its action.
type Rule struct {
	// Ord is the declaration order, from 1. Lower ordinals win ties.
	Ord     int
	Pattern string
	Tree    *syntax.Node
	Span    diag.Span

	// Action identifies the action code. Rules sharing an action through
	// "|" share the id.
	Action     int
	ActionText string
	ActionSpan diag.Span
	Bar        bool

	// PredDummy marks the hidden rule of a predicate category.
	PredDummy bool

	// States is the explicit start state list; nil for a rule that applies
	// to INITIAL and every inclusive state.
	States []*StartState

	// UseCount and ReplacedBy are maintained by subset construction.
	UseCount   int
	ReplacedBy *Rule
}

// IsEOF reports whether the rule is an <<EOF>> rule.
func (r *Rule) IsEOF() bool {
	return r.Tree != nil && r.Tree.Op == syntax.OpEOF
}

// IsLoopRisk reports whether the rule may match the empty string.
func (r *Rule) IsLoopRisk() bool {
	return !r.PredDummy && r.Tree != nil && syntax.IsLoopRisk(r.Tree)
}

// String returns the pattern.
func (r *Rule) String() string {
	return r.Pattern
}

// Set is the rule table of one specification. It is not safe for
// concurrent use.
type Set struct {
	diag  *diag.Handler
	card  rune
	preds *charclass.Predicates

	states    map[string]*StartState
	ordered   []*StartState
	inclusive []*StartState
	nextState int

	categories map[string]*Category
	predCats   []*Category

	rules      []*Rule
	nextRule   int
	nextAction int
	finished   bool
}

// NewSet returns an empty table for an alphabet of size card holding the
// All and INITIAL start states. preds may be nil when predicates are not
// needed.
func NewSet(h *diag.Handler, card rune, preds *charclass.Predicates) *Set {
	if preds == nil {
		preds = charclass.NewPredicates()
	}
	s := &Set{
		diag:       h,
		card:       card,
		preds:      preds,
		states:     make(map[string]*StartState),
		categories: make(map[string]*Category),
		nextState:  -1,
		nextRule:   1,
	}
	s.newState(All, true, false)
	s.newState(Initial, false, false)
	return s
}

// Cardinality returns the alphabet size the table was built for.
func (s *Set) Cardinality() rune {
	return s.card
}

func (s *Set) newState(name string, exclusive, dummy bool) *StartState {
	st := &StartState{Name: name, Ord: s.nextState, Exclusive: exclusive, Dummy: dummy}
	s.nextState++
	s.states[name] = st
	s.ordered = append(s.ordered, st)
	if !exclusive {
		s.inclusive = append(s.inclusive, st)
	}
	return st
}

// AddStartState declares a start state. Redeclaring a name is reported.
func (s *Set) AddStartState(name string, exclusive bool, span diag.Span) error {
	if _, ok := s.states[name]; ok || name == AllShort {
		return s.diag.Report(diag.CodeStartStateDefined, span, name)
	}
	s.newState(name, exclusive, false)
	return nil
}

// StartState returns the start state called name.
func (s *Set) StartState(name string) (*StartState, bool) {
	if name == AllShort {
		name = All
	}
	st, ok := s.states[name]
	return st, ok
}

// StartStates returns every start state in ordinal order, All first.
func (s *Set) StartStates() []*StartState {
	return s.ordered
}

// AddCategory defines the lexical category name. The pattern is parsed at
// once, so it may only reference categories defined earlier.
func (s *Set) AddCategory(name, pattern string, span diag.Span) error {
	if _, ok := s.categories[name]; ok {
		return s.diag.Report(diag.CodeCategoryDefined, span, name)
	}
	cat := &Category{Name: name, Pattern: pattern, Span: span}
	s.categories[name] = cat
	tree, err := s.parse(pattern, span)
	if err != nil || tree == nil {
		return err
	}
	if tree.Op == syntax.OpClass {
		tree.Class.Name = name
	}
	cat.Tree = tree
	return nil
}

// Category returns the category called name.
func (s *Set) Category(name string) (*Category, bool) {
	c, ok := s.categories[name]
	return c, ok
}

// DeclarePredicate marks the category name as a character-class predicate.
// The category must exist and be a single class.
func (s *Set) DeclarePredicate(name string, span diag.Span) error {
	cat, ok := s.categories[name]
	switch {
	case !ok:
		return s.diag.Report(diag.CodeUnknownCategory, span, name)
	case cat.Tree == nil:
		return nil // already reported
	case cat.Tree.Op != syntax.OpClass:
		return s.diag.Report(diag.CodeCategoryNotClass, span, name)
	case cat.Predicate:
		return nil
	}
	cat.Predicate = true
	s.predCats = append(s.predCats, cat)
	s.newState(cat.DummyStateName(), true, true)
	return nil
}

// Predicates returns the categories declared as predicates, in declaration
// order.
func (s *Set) Predicates() []*Category {
	return s.predCats
}

// AddRule appends a rule. states is the explicit start state list, empty
// for the default; a "|" action shares the action of the next rule.
func (s *Set) AddRule(pattern string, span diag.Span, states []string, action string, actionSpan diag.Span) error {
	if s.finished {
		panic("rules: AddRule after Finish")
	}
	rule := &Rule{
		Ord:        s.nextRule,
		Pattern:    pattern,
		Span:       span,
		ActionText: action,
		ActionSpan: actionSpan,
		Bar:        strings.TrimSpace(action) == BarAction,
	}
	s.nextRule++
	if !rule.Bar {
		rule.Action = s.nextAction
		s.nextAction++
	}

	for _, name := range states {
		st, ok := s.StartState(name)
		if !ok {
			if err := s.diag.Report(diag.CodeStartStateUndefined, span, name); err != nil {
				return err
			}
			continue
		}
		rule.States = append(rule.States, st)
	}
	if len(states) > 0 && len(rule.States) == 0 {
		// every listed state was undefined
		return nil
	}

	tree, err := s.parse(pattern, span)
	if err != nil {
		return err
	}
	if tree == nil {
		return nil
	}
	rule.Tree = tree
	s.rules = append(s.rules, rule)
	return s.checkEmptyClasses(tree, span)
}

// Rules returns the rules in order, including predicate rules once Finish
// has run.
func (s *Set) Rules() []*Rule {
	return s.rules
}

// Finish closes the table. It adds one hidden rule per predicate, gives
// each "|" rule the action of the next rule with an action, attaches rules
// to start states and warns about rules that can match the empty string.
func (s *Set) Finish() error {
	if s.finished {
		return nil
	}
	s.finished = true

	for _, cat := range s.predCats {
		dummy, _ := s.StartState(cat.DummyStateName())
		s.rules = append(s.rules, &Rule{
			Pattern:   "{" + cat.Name + "}",
			Tree:      cat.Tree,
			Action:    PredicateAction,
			PredDummy: true,
			States:    []*StartState{dummy},
		})
	}

	next := -1
	for i := len(s.rules) - 1; i >= 0; i-- {
		r := s.rules[i]
		if !r.Bar {
			next = r.Action
			continue
		}
		if next < 0 {
			if err := s.diag.Report(diag.CodeBarOnLastRule, r.Span, ""); err != nil {
				return err
			}
			continue
		}
		r.Action = next
	}

	for _, r := range s.rules {
		s.attach(r)
		if r.IsLoopRisk() {
			if err := s.diag.Report(diag.CodeMightLoop, r.Span, ""); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Set) attach(r *Rule) {
	switch {
	case len(r.States) == 0:
		initial := s.states[Initial]
		initial.Rules = append(initial.Rules, r)
		for _, st := range s.inclusive {
			if st != initial {
				st.Rules = append(st.Rules, r)
			}
		}
	case containsAll(r.States):
		for _, st := range s.ordered {
			if !st.IsAll() && !st.Dummy {
				st.Rules = append(st.Rules, r)
			}
		}
	default:
		for _, st := range r.States {
			st.Rules = append(st.Rules, r)
		}
	}
}

func containsAll(states []*StartState) bool {
	for _, st := range states {
		if st.IsAll() {
			return true
		}
	}
	return false
}

// parse parses pattern and reports every problem against span. A nil tree
// with a nil error means the pattern was rejected and reported.
func (s *Set) parse(pattern string, span diag.Span) (*syntax.Node, error) {
	tree, warns, perr := syntax.Parse(pattern, syntax.Config{
		Cardinality: s.card,
		Category: func(name string) (*syntax.Node, bool) {
			if c, ok := s.categories[name]; ok && c.Tree != nil {
				return c.Tree, true
			}
			return nil, false
		},
		Predicate: func(name string) (*charclass.RangeList, bool) {
			return s.preds.Lookup(name, s.card)
		},
	})
	for _, w := range warns {
		if err := s.reportAt(w, span); err != nil {
			return nil, err
		}
	}
	if perr != nil {
		var e *syntax.Error
		if !errors.As(perr, &e) {
			return nil, fmt.Errorf("parse %q: %w", pattern, perr)
		}
		return nil, s.reportAt(e, span)
	}

	bad := false
	for _, e := range syntax.Check(tree) {
		bad = true
		if err := s.reportAt(e, span); err != nil {
			return nil, err
		}
	}
	if bad {
		return nil, nil
	}
	return tree, nil
}

func (s *Set) reportAt(e *syntax.Error, span diag.Span) error {
	at := span
	if e.Length > 0 || e.Offset > 0 {
		at = span.Sub(e.Offset, e.Length)
	}
	return s.diag.Report(e.Code, at, e.Arg)
}

func (s *Set) checkEmptyClasses(tree *syntax.Node, span diag.Span) error {
	var err error
	syntax.Walk(tree, func(n *syntax.Node) {
		if err != nil || n.Op != syntax.OpClass {
			return
		}
		if n.Class.List.Canonical(s.card).IsEmpty() {
			err = s.diag.Report(diag.CodeEmptyClass, span, n.Class.String())
		}
	})
	return err
}
