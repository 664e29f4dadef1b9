package charclass

import "fmt"

// RunTag classifies a MapRun.
type RunTag uint8

const (
	// RunEmpty is the zero tag.
	RunEmpty RunTag = iota

	// RunSingleton is a run of one code point.
	RunSingleton

	// RunShort is a single-class run shorter than CutOff.
	RunShort

	// RunLong is a single-class run of at least CutOff code points.
	RunLong

	// RunMixed is a run whose code points belong to several classes.
	RunMixed
)

// String returns the tag name.
func (t RunTag) String() string {
	switch t {
	case RunEmpty:
		return "empty"
	case RunSingleton:
		return "singleton"
	case RunShort:
		return "short"
	case RunLong:
		return "long"
	case RunMixed:
		return "mixed"
	default:
		return fmt.Sprintf("RunTag(%d)", t)
	}
}

// MapRun is a contiguous range of the character map. Class is meaningful
// only for runs that are not RunMixed.
type MapRun struct {
	Tag   RunTag
	Range CharRange
	Class int

	// TableOrd is assigned by table emission to share identical runs;
	// -1 until then.
	TableOrd int
}

func newMapRun(r CharRange, class int) MapRun {
	run := MapRun{Range: r, Class: class, TableOrd: -1}
	switch n := r.Len(); {
	case n == 1:
		run.Tag = RunSingleton
	case n >= CutOff:
		run.Tag = RunLong
	default:
		run.Tag = RunShort
	}
	return run
}

// merge extends the run by the adjacent range r, making it mixed.
func (m *MapRun) merge(r CharRange) {
	if m.Range.Max+1 != r.Min {
		panic("charclass: merge of non-adjacent map run")
	}
	m.Range.Max = r.Max
	m.Tag = RunMixed
	m.Class = -1
}

// String formats the run for summaries.
func (m MapRun) String() string {
	if m.Tag == RunMixed {
		return fmt.Sprintf("%s %U..%U", m.Tag, m.Range.Min, m.Range.Max)
	}
	return fmt.Sprintf("%s %U..%U -> %d", m.Tag, m.Range.Min, m.Range.Max, m.Class)
}
