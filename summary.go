package lexgen

import (
	"fmt"
	"io"
	"strings"

	"github.com/coregx/lexgen/diag"
	"github.com/coregx/lexgen/tables"
)

// InstanceSummary describes the automata of one start state.
type InstanceSummary struct {
	Name         string
	Rules        int
	NFAStates    int
	NFAAccepts   int
	DFAStates    int
	DFAAccepts   int
	LeftAnchored bool
}

// Backup describes an accept state the scanner may have to back up from.
type Backup struct {
	State int
	Rule  string

	// Reaching is an input reaching the state and Transition a character
	// leaving it for a non-accept state.
	Reaching   string
	Transition string
}

// Summary is the statistics listing of a compilation.
type Summary struct {
	Name        string
	Cardinality rune
	Symbols     int
	CharClasses bool
	Minimized   bool

	Rules     int
	Instances []InstanceSummary

	NFAStates       int
	DFAStates       int
	MinimizedStates int
	AcceptStates    int
	BackupStates    int
	Backups         []Backup
	LeftAnchored    bool

	Tables tables.Stats

	Errors   int
	Warnings int
}

func newSummary(name string, res *Result, h *diag.Handler) Summary {
	d, t := res.DFA, res.Tables
	s := Summary{
		Name:            name,
		Cardinality:     res.NFA.Alphabet.Cardinality(),
		Symbols:         d.MaxSym(),
		CharClasses:     res.NFA.Alphabet.Packed(),
		Minimized:       d.Minimized(),
		Rules:           len(res.Rules.Rules()),
		NFAStates:       res.NFA.States(),
		DFAStates:       d.OriginalLength(),
		MinimizedStates: d.Len(),
		AcceptStates:    d.MaxAccept(),
		BackupStates:    d.BackupCount(),
		LeftAnchored:    d.HasLeftAnchors(),
		Tables:          t.Stats,
		Errors:          h.ErrorCount(),
		Warnings:        h.WarningCount(),
	}
	for i, inst := range d.Instances() {
		ni := res.NFA.Instances[i]
		s.Instances = append(s.Instances, InstanceSummary{
			Name:         inst.Name(),
			Rules:        len(inst.StartState().Rules),
			NFAStates:    ni.Len(),
			NFAAccepts:   len(ni.AcceptStates()),
			DFAStates:    inst.StateCount(),
			DFAAccepts:   inst.AcceptCount(),
			LeftAnchored: ni.LeftAnchored(),
		})
	}
	for _, st := range d.States() {
		if !st.NeedsBackup() {
			continue
		}
		b := Backup{State: st.Num(), Transition: d.BackupTransition(st)}
		if r := st.Accept(); r != nil {
			b.Rule = r.Pattern
		}
		b.Reaching, _ = st.ShortestString()
		s.Backups = append(s.Backups, b)
	}
	return s
}

// WriteTo writes the summary in the listing format.
func (s *Summary) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	divider := strings.Repeat("-", 40) + "\n"

	b.WriteString(divider)
	fmt.Fprintf(&b, "NFA summary for %s\n", s.displayName())
	b.WriteString(divider)
	fmt.Fprintf(&b, "Number of start conditions = %d\n", len(s.Instances))
	for _, inst := range s.Instances {
		fmt.Fprintf(&b, "Start condition %s:\n", inst.Name)
		fmt.Fprintf(&b, "  number of patterns = %d, number of nfa states = %d, accept states = %d\n",
			inst.Rules, inst.NFAStates, inst.NFAAccepts)
	}

	b.WriteString(divider)
	b.WriteString("DFA summary\n")
	b.WriteString(divider)
	for _, inst := range s.Instances {
		fmt.Fprintf(&b, "Start condition %s:\n", inst.Name)
		fmt.Fprintf(&b, "  number of dfa states = %d, number of accept states = %d\n",
			inst.DFAStates, inst.DFAAccepts)
	}

	b.WriteString(divider)
	fmt.Fprintf(&b, "Total number of states = %d, total accept states = %d, backup states = %d\n",
		s.MinimizedStates, s.AcceptStates, s.BackupStates)
	if s.LeftAnchored {
		b.WriteString("Automaton will cater for left-anchored patterns\n")
	}
	if s.Minimized {
		fmt.Fprintf(&b, "Original state number was %d, minimized machine has %d states\n",
			s.DFAStates, s.MinimizedStates)
	} else {
		b.WriteString("No state minimization.\n")
	}
	full := s.MinimizedStates * s.Symbols
	fmt.Fprintf(&b, "Compression summary: used %d nextstate entries, plus %d map entries\n",
		s.Tables.Transitions, s.Tables.MapEntries)
	if s.CharClasses {
		fmt.Fprintf(&b, "- Input characters are packed into %d equivalence classes\n", s.Symbols)
		fmt.Fprintf(&b, "- CharClass compression %.2f%%, %d entries vs %d\n",
			percentSaved(s.Symbols, int(s.Cardinality)), s.Symbols, s.Cardinality)
	}
	fmt.Fprintf(&b, "- Nextstate table compression %.2f%%, %d entries vs %d\n",
		percentSaved(s.Tables.Transitions, full), s.Tables.Transitions, full)
	if s.Tables.MapKind != tables.MapNone {
		fmt.Fprintf(&b, "- Map is %s with %d entries in %d tables", s.Tables.MapKind, s.Tables.MapEntries, s.Tables.MapTables)
		if s.Tables.DecisionDepth > 0 {
			fmt.Fprintf(&b, ", decision tree depth %d", s.Tables.DecisionDepth)
		}
		b.WriteByte('\n')
	}
	for _, bk := range s.Backups {
		fmt.Fprintf(&b, "Backup state %d for %q after %q on %s\n", bk.State, bk.Rule, bk.Reaching, bk.Transition)
	}

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// String returns the listing as a string.
func (s *Summary) String() string {
	var b strings.Builder
	_, _ = s.WriteTo(&b)
	return b.String()
}

func (s *Summary) displayName() string {
	if s.Name == "" {
		return "<input>"
	}
	return "<" + s.Name + ">"
}

func percentSaved(used, full int) float64 {
	if full == 0 {
		return 0
	}
	return 100 - float64(used)*100/float64(full)
}
