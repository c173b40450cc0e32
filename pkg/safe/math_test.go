package safe

import (
	"math"
	"testing"
)

func TestSafeAdd(t *testing.T) {
	if got := SafeAdd(2, 3); got != 5 {
		t.Errorf("SafeAdd(2,3) = %d, want 5", got)
	}
	if got := SafeAdd(-2, -3); got != -5 {
		t.Errorf("SafeAdd(-2,-3) = %d, want -5", got)
	}
}

func TestSafeAddOverflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on overflow")
		}
	}()
	SafeAdd(math.MaxInt64, 1)
}

func TestSafeSubUnderflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on underflow")
		}
	}()
	SafeSub(math.MinInt64, 1)
}

func TestClamp(t *testing.T) {
	cases := []struct {
		v, lo, hi, want int64
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
		{7, 7, 7, 7},
	}
	for _, c := range cases {
		if got := Clamp(c.v, c.lo, c.hi); got != c.want {
			t.Errorf("Clamp(%d,%d,%d) = %d, want %d", c.v, c.lo, c.hi, got, c.want)
		}
	}
}

func TestClampInvertedBoundsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on inverted bounds")
		}
	}()
	Clamp(1, 10, 0)
}

func TestMinMax(t *testing.T) {
	if Min(3, 4) != 3 || Min(4, 3) != 3 {
		t.Error("Min broken")
	}
	if Max(3, 4) != 4 || Max(4, 3) != 4 {
		t.Error("Max broken")
	}
}
