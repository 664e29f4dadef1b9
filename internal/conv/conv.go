// Package conv provides checked integer conversions for the automaton and
// table builders.
//
// Narrowing conversions panic on overflow. An overflow means an automaton
// outgrew the encoding chosen for it, which is a bug in the caller.
package conv

import "math"

// IntToUint32 converts a state or symbol index to uint32.
// Panics if n < 0 or n > math.MaxUint32.
//
//go:inline
func IntToUint32(n int) uint32 {
	// uint comparison keeps this correct on 32-bit platforms
	if n < 0 || uint(n) > math.MaxUint32 {
		panic("integer overflow: int value out of uint32 range")
	}
	return uint32(n)
}

// IntToInt32 converts a table entry to int32.
// Panics if n does not fit.
//
//go:inline
func IntToInt32(n int) int32 {
	if n < math.MinInt32 || n > math.MaxInt32 {
		panic("integer overflow: int value out of int32 range")
	}
	return int32(n)
}

// ElementBits reports the narrowest signed element width (8, 16 or 32
// bits) able to hold every value in [-1, maxValue].
func ElementBits(maxValue int) int {
	switch {
	case maxValue <= math.MaxInt8:
		return 8
	case maxValue <= math.MaxInt16:
		return 16
	default:
		return 32
	}
}
