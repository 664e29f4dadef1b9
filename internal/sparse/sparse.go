// Package sparse provides a sparse set of small unsigned integers.
//
// The automaton builders use it wherever a set of state indices is filled,
// walked in insertion order and then discarded: the per-symbol move sets of
// subset construction and the predecessor sets gathered while refining a
// partition. Clearing is O(1), so one set can be reused for every symbol.
package sparse

// Set is a set of uint32 values drawn from [0, capacity).
//
// The sparse array maps a value to its slot in the dense array; a value is a
// member only when that slot points back at it, so stale sparse entries left
// by Clear are harmless.
type Set struct {
	sparse []uint32
	dense  []uint32
}

// New creates an empty set able to hold values below capacity.
func New(capacity uint32) *Set {
	return &Set{
		sparse: make([]uint32, capacity),
		dense:  make([]uint32, 0, capacity),
	}
}

// Insert adds value and reports whether it was newly added.
// Panics if value is not below the capacity given to New.
func (s *Set) Insert(value uint32) bool {
	if s.Contains(value) {
		return false
	}
	s.sparse[value] = uint32(len(s.dense)) //nolint:gosec // len(dense) <= capacity
	s.dense = append(s.dense, value)
	return true
}

// Contains reports whether value is a member.
func (s *Set) Contains(value uint32) bool {
	if int(value) >= len(s.sparse) {
		return false
	}
	idx := s.sparse[value]
	return int(idx) < len(s.dense) && s.dense[idx] == value
}

// Clear removes all members in O(1).
func (s *Set) Clear() {
	s.dense = s.dense[:0]
}

// Len returns the number of members.
func (s *Set) Len() int {
	return len(s.dense)
}

// IsEmpty reports whether the set has no members.
func (s *Set) IsEmpty() bool {
	return len(s.dense) == 0
}

// Values returns the members in insertion order.
// The slice is only valid until the next mutation.
func (s *Set) Values() []uint32 {
	return s.dense
}
