// Package lexgen compiles lex-style scanner specifications into the tables
// of a table-driven scanner.
//
// A specification is a list of rules, each a pattern with an action, plus
// start-state declarations, lexical categories and character predicates.
// Compile runs the whole pipeline:
//   - rules: parse every pattern and check the rule table
//   - nfa: partition the alphabet and build one NFA per start state
//   - dfa: subset construction and, optionally, minimization
//   - tables: character map and next-state table encodings
//
// Basic usage:
//
//	spec := &lexgen.Spec{Rules: []lexgen.Rule{
//	    {Pattern: `[0-9]+`, Action: "NUMBER"},
//	    {Pattern: `[a-z]+`, Action: "IDENT"},
//	}}
//	res, err := lexgen.Compile(spec, lexgen.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Summary.DFAStates)
//
// The tables are run by package scan, and package lexfile reads a rules
// file into a Spec.
package lexgen

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/coregx/lexgen/charclass"
	"github.com/coregx/lexgen/dfa"
	"github.com/coregx/lexgen/diag"
	"github.com/coregx/lexgen/nfa"
	"github.com/coregx/lexgen/rules"
	"github.com/coregx/lexgen/tables"
)

// Spec is a scanner specification.
type Spec struct {
	// Name identifies the specification in log records, usually the file
	// name.
	Name string

	// Options are %option words, applied in order on top of the options
	// passed to Compile.
	Options     []Option
	StartStates []StartState
	Categories  []Category
	Predicates  []Predicate
	Rules       []Rule
}

// Option is one %option word.
type Option struct {
	Word string
	Span diag.Span
}

// StartState declares a start state: %x for an exclusive one, %s for an
// inclusive one.
type StartState struct {
	Name      string
	Exclusive bool
	Span      diag.Span
}

// Category defines a lexical category NAME, referenced as {NAME}.
type Category struct {
	Name    string
	Pattern string
	Span    diag.Span
}

// Predicate declares the category Name a character predicate.
type Predicate struct {
	Name string
	Span diag.Span
}

// Rule is a pattern with its action. States lists the start states the rule
// applies to; empty means INITIAL and every inclusive state, "*" or "$ALL$"
// means every state. An action of "|" shares the action of the next rule.
type Rule struct {
	Pattern    string
	Span       diag.Span
	States     []string
	Action     string
	ActionSpan diag.Span
}

// Result is a compiled specification.
type Result struct {
	// Options are the effective options, with implications resolved.
	Options Options

	Rules  *rules.Set
	NFA    *nfa.NFA
	DFA    *dfa.DFA
	Tables *tables.Tables

	// Diagnostics holds the warnings reported during compilation.
	Diagnostics []diag.Diagnostic
	Summary     Summary
}

// Warnings returns the number of warnings reported.
func (r *Result) Warnings() int {
	return len(r.Diagnostics)
}

// predicates is shared by all compilations; it caches populated predicate
// range lists.
var predicates = charclass.NewPredicates()

// Compile compiles spec with opts.
//
// Errors in the specification are collected rather than returned one at a
// time: the returned error is then a *CompileError wrapping ErrHasErrors,
// or diag.ErrTooManyErrors when the error ceiling was passed. Invalid
// options give an *OptionsError.
func Compile(spec *Spec, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	c := &compiler{
		spec: spec,
		opts: opts.normalized(),
		res:  &Result{},
	}
	c.h = diag.NewHandler(c.opts.MaxErrors)
	c.log = c.opts.Logger.With("spec", spec.Name)
	for _, o := range spec.Options {
		if err := opts.Apply(o.Word); err != nil {
			var oe *OptionsError
			if !errors.As(err, &oe) {
				return nil, err
			}
			if err := c.h.Report(oe.Code, o.Span, o.Word); err != nil {
				return c.fail(err)
			}
		}
	}
	c.opts = opts.normalized()
	c.log = c.opts.Logger.With("spec", spec.Name)
	c.res.Options = c.opts
	return c.run()
}

// MustCompile is like Compile but panics on error.
func MustCompile(spec *Spec, opts Options) *Result {
	res, err := Compile(spec, opts)
	if err != nil {
		panic("lexgen: Compile(" + spec.Name + "): " + err.Error())
	}
	return res
}

type compiler struct {
	spec *Spec
	opts Options
	h    *diag.Handler
	log  *slog.Logger
	res  *Result
}

func (c *compiler) run() (*Result, error) {
	start := time.Now()
	steps := []struct {
		name string
		fn   func() (int, error)
	}{
		{StageRules, c.buildRules},
		{StageNFA, c.buildNFA},
		{StageDFA, c.buildDFA},
		{StageMinimize, c.minimize},
		{StageTables, c.buildTables},
	}
	for _, step := range steps {
		if step.name == StageMinimize && !c.opts.Minimize {
			continue
		}
		if err := c.stage(step.name, step.fn); err != nil {
			return c.fail(err)
		}
	}

	c.res.Diagnostics = c.h.Diagnostics()
	c.res.Summary = newSummary(c.spec.Name, c.res, c.h)
	c.opts.Metrics.record(&c.res.Summary)
	c.opts.Metrics.compiled("ok")
	c.log.Info("compiled",
		"states", c.res.Summary.MinimizedStates,
		"warnings", c.h.WarningCount(),
		"elapsed", time.Since(start))
	if c.opts.Summary {
		c.log.Info("summary", "text", c.res.Summary.String())
	}
	return c.res, nil
}

// stage runs fn, timing it and logging the number of states it produced.
func (c *compiler) stage(name string, fn func() (int, error)) error {
	start := time.Now()
	states, err := fn()
	elapsed := time.Since(start)
	c.opts.Metrics.observeStage(name, elapsed)
	if err != nil {
		return err
	}
	level := slog.LevelDebug
	if c.opts.Verbose {
		level = slog.LevelInfo
	}
	c.log.Log(context.Background(), level, "stage done", "stage", name, "states", states, "elapsed", elapsed)
	return nil
}

func (c *compiler) fail(err error) (*Result, error) {
	c.opts.Metrics.compiled("error")
	c.log.Warn("compilation failed", "errors", c.h.ErrorCount(), "err", err)
	return nil, &CompileError{Diagnostics: c.h.Diagnostics(), Err: err}
}

// buildRules fills the rule table. Problems are reported to the handler;
// only the error ceiling stops the walk.
func (c *compiler) buildRules() (int, error) {
	set := rules.NewSet(c.h, c.opts.Cardinality(), predicates)
	c.res.Rules = set
	for _, ss := range c.spec.StartStates {
		if err := set.AddStartState(ss.Name, ss.Exclusive, ss.Span); err != nil {
			return 0, err
		}
	}
	for _, cat := range c.spec.Categories {
		if err := set.AddCategory(cat.Name, cat.Pattern, cat.Span); err != nil {
			return 0, err
		}
	}
	for _, p := range c.spec.Predicates {
		if err := set.DeclarePredicate(p.Name, p.Span); err != nil {
			return 0, err
		}
	}
	for _, r := range c.spec.Rules {
		if err := set.AddRule(r.Pattern, r.Span, r.States, r.Action, r.ActionSpan); err != nil {
			return 0, err
		}
	}
	if err := set.Finish(); err != nil {
		return 0, err
	}
	if c.h.HasErrors() {
		return 0, ErrHasErrors
	}
	return len(set.Rules()), nil
}

func (c *compiler) buildNFA() (int, error) {
	set := c.res.Rules
	alpha := nfa.NewAlphabet(set.Rules(), set.Cardinality(), c.opts.CharClasses, c.opts.CaseInsensitive)
	n, err := nfa.Build(set, alpha)
	if err != nil {
		return 0, err
	}
	c.res.NFA = n
	return n.States(), nil
}

func (c *compiler) buildDFA() (int, error) {
	d, err := dfa.Build(c.res.NFA, c.h, dfa.DefaultConfig().WithMaxStates(c.opts.MaxStates))
	if err != nil {
		return 0, err
	}
	c.res.DFA = d
	return d.Len(), nil
}

func (c *compiler) minimize() (int, error) {
	c.res.DFA.Minimize()
	return c.res.DFA.Len(), nil
}

func (c *compiler) buildTables() (int, error) {
	d := c.res.DFA
	d.Finish()
	d.FindShortestStrings()
	t, err := tables.Build(d, tables.Options{
		CompressMap:  c.opts.CompressMap,
		CompressNext: c.opts.CompressNext,
		Squeeze:      c.opts.Squeeze,
	})
	if err != nil {
		return 0, err
	}
	c.res.Tables = t
	return t.States, nil
}
