package conv

import (
	"math"
	"testing"
)

func TestIntToUint32(t *testing.T) {
	for _, n := range []int{0, 1, 255, math.MaxInt32} {
		if got := IntToUint32(n); int(got) != n {
			t.Errorf("IntToUint32(%d) = %d", n, got)
		}
	}
	defer func() {
		if recover() == nil {
			t.Error("IntToUint32(-1) did not panic")
		}
	}()
	IntToUint32(-1)
}

func TestIntToInt32(t *testing.T) {
	for _, n := range []int{-1, 0, math.MaxInt32, math.MinInt32} {
		if got := IntToInt32(n); int(got) != n {
			t.Errorf("IntToInt32(%d) = %d", n, got)
		}
	}
	defer func() {
		if recover() == nil {
			t.Error("IntToInt32 out of range did not panic")
		}
	}()
	IntToInt32(math.MaxInt32 + 1)
}

func TestElementBits(t *testing.T) {
	tests := []struct {
		max  int
		want int
	}{
		{0, 8},
		{math.MaxInt8, 8},
		{math.MaxInt8 + 1, 16},
		{math.MaxInt16, 16},
		{math.MaxInt16 + 1, 32},
	}
	for _, tt := range tests {
		if got := ElementBits(tt.max); got != tt.want {
			t.Errorf("ElementBits(%d) = %d, want %d", tt.max, got, tt.want)
		}
	}
}
