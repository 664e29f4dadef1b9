package dfa

import (
	"slices"

	"github.com/coregx/lexgen/internal/conv"
	"github.com/coregx/lexgen/internal/sparse"
)

// block is one class of the minimizer's partition. Blocks and states refer
// to each other by index only.
type block struct {
	members []StateID

	// sym counts the symbols still pending for this block as a splitter.
	// A block with sym > 0 is on the worklist.
	sym int

	// gen and predCount count the members reached in the current round;
	// gen avoids resetting predCount between rounds.
	gen       int
	predCount int

	twin int
}

type minimizer struct {
	d       *DFA
	maxSym  int
	blocks  []*block
	blockOf []int // by StateID
	pos     []int // index of the state in its block's members
	preds   []map[int][]StateID

	other    int
	starts   int
	accepts  []int
	worklist []int
	predSet  *sparse.Set
}

// Minimize merges equivalent states by partition refinement (Hopcroft's
// algorithm with a (block, symbol) worklist). It must run before Finish.
//
// The initial partition keeps start states apart from all other non-accept
// states, so that a merged state cannot cut a prefix off a token, and puts
// accept states together only when they run the same action with
// compatible context adjustments. The EOF state gets a block of its own.
func (d *DFA) Minimize() {
	if d.finished {
		panic("dfa: Minimize called after Finish")
	}
	m := &minimizer{
		d:       d,
		maxSym:  d.maxSym,
		blockOf: make([]int, len(d.states)),
		pos:     make([]int, len(d.states)),
		preds:   make([]map[int][]StateID, len(d.states)),
		predSet: sparse.New(conv.IntToUint32(len(d.states))),
	}
	m.populate()
	m.refine()
	m.rewrite()
}

func (m *minimizer) newBlock() int {
	m.blocks = append(m.blocks, &block{sym: m.maxSym, twin: -1})
	return len(m.blocks) - 1
}

func (m *minimizer) add(b int, id StateID) {
	blk := m.blocks[b]
	m.blockOf[id] = b
	m.pos[id] = len(blk.members)
	blk.members = append(blk.members, id)
}

// move transfers id from block from to block to.
func (m *minimizer) move(id StateID, from, to int) {
	blk := m.blocks[from]
	i := m.pos[id]
	last := blk.members[len(blk.members)-1]
	blk.members[i] = last
	m.pos[last] = i
	blk.members = blk.members[:len(blk.members)-1]
	blk.predCount--
	m.add(to, id)
}

// populate builds the initial partition and the inverse transition table.
func (m *minimizer) populate() {
	d := m.d
	m.other = m.newBlock()
	m.starts = m.newBlock()
	for _, id := range d.list {
		if id == EOFState {
			continue
		}
		s := d.states[id]
		var b int
		switch {
		case s.accept != nil:
			b = m.acceptBlock(s)
		case s.IsStart():
			b = m.starts
		default:
			b = m.other
		}
		m.add(b, id)
		for _, t := range s.trans {
			if m.preds[t.Next] == nil {
				m.preds[t.Next] = make(map[int][]StateID)
			}
			m.preds[t.Next][t.Sym] = append(m.preds[t.Next][t.Sym], id)
		}
	}
	eof := m.newBlock()
	m.accepts = append(m.accepts, eof)
	m.add(eof, EOFState)

	m.worklist = append(m.worklist, m.starts, m.other)
	m.worklist = append(m.worklist, m.accepts...)
}

// acceptBlock finds the accept block s is compatible with, or makes one.
//
// A state with both context lengths fixed can give back characters either
// way. The first compatible pairing decides which length the block uses,
// and the other length is cleared on both states.
func (m *minimizer) acceptBlock(s *State) int {
	for _, b := range m.accepts {
		first := m.d.states[m.blocks[b].members[0]]
		if first.accept.Action != s.accept.Action {
			continue
		}
		switch {
		case !first.HasRightContext() && !s.HasRightContext():
			return b
		case first.lhCntx > 0 && first.lhCntx == s.lhCntx:
			first.rhCntx, s.rhCntx = 0, 0
			return b
		case first.rhCntx > 0 && first.rhCntx == s.rhCntx:
			first.lhCntx, s.lhCntx = 0, 0
			return b
		}
	}
	b := m.newBlock()
	m.accepts = append(m.accepts, b)
	return b
}

func (m *minimizer) refine() {
	generation := 0
	for len(m.worklist) > 0 {
		blk := m.blocks[m.worklist[len(m.worklist)-1]]
		sym := blk.sym - 1
		if sym < 0 {
			m.worklist = m.worklist[:len(m.worklist)-1]
			continue
		}
		generation++

		// collect the states with a next state in blk on sym
		m.predSet.Clear()
		for _, id := range blk.members {
			for _, p := range m.preds[id][sym] {
				if !m.predSet.Insert(conv.IntToUint32(int(p))) {
					continue
				}
				pb := m.blocks[m.blockOf[p]]
				if pb.gen != generation {
					pb.gen = generation
					pb.predCount = 0
				}
				pb.predCount++
			}
		}
		blk.sym--
		if m.predSet.IsEmpty() {
			continue
		}

		var splits []int
		for _, v := range m.predSet.Values() {
			p := StateID(v)
			l := m.blockOf[p]
			lb := m.blocks[l]
			if lb.predCount == len(lb.members) {
				continue
			}
			t := lb.twin
			if t < 0 {
				t = m.newBlock()
				splits = append(splits, t)
				lb.twin = t
				m.blocks[t].twin = l
			}
			m.move(p, l, t)
		}

		for _, t := range splits {
			tb := m.blocks[t]
			l := tb.twin
			lb := m.blocks[l]
			push := t
			if lb.sym == 0 {
				// lb is not pending: only the smaller half needs all symbols
				if len(lb.members) < len(tb.members) {
					push = l
					lb.sym = m.maxSym
					tb.sym = 0
				}
			} else if len(lb.members) < len(tb.members) {
				// lb keeps pending: the larger half inherits its remaining
				// symbols and the smaller one takes all of them
				tb.sym = lb.sym
				lb.sym = m.maxSym
			}
			m.worklist = append(m.worklist, push)
			lb.twin = -1
			tb.twin = -1
		}
	}
}

// rewrite replaces every state by the lowest-indexed member of its block
// and renumbers the accept states.
func (m *minimizer) rewrite() {
	d := m.d
	reps := make([]StateID, len(m.blocks))
	for b, blk := range m.blocks {
		if len(blk.members) > 0 {
			reps[b] = slices.Min(blk.members)
		}
	}
	rep := func(id StateID) StateID { return reps[m.blockOf[id]] }

	for _, inst := range d.insts {
		inst.start = rep(inst.start)
		if inst.anchor != NoState {
			inst.anchor = rep(inst.anchor)
		}
	}

	orig := len(d.list)
	list := []StateID{EOFState}
	d.nextNum = EOFNum + 1
	for _, id := range d.list {
		if id == EOFState || rep(id) != id {
			continue
		}
		s := d.states[id]
		list = append(list, id)
		if s.accept != nil {
			s.num = d.nextNum
			d.nextNum++
		}
		for i := range s.trans {
			s.trans[i].Next = rep(s.trans[i].Next)
		}
	}
	if !d.minimized {
		d.origLength = orig
	}
	d.list = list
	d.minimized = true
}
