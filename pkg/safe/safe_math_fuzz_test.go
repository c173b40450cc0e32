package safe

import (
	"testing"
)

// FuzzClamp checks the clamp postcondition over arbitrary inputs.
func FuzzClamp(f *testing.F) {
	f.Add(int64(5), int64(0), int64(10))
	f.Add(int64(-5), int64(-10), int64(-1))
	f.Add(int64(0), int64(0), int64(0))

	f.Fuzz(func(t *testing.T, v, lo, hi int64) {
		if lo > hi {
			t.Skip()
		}
		got := Clamp(v, lo, hi)
		if got < lo || got > hi {
			t.Errorf("Clamp(%d,%d,%d) = %d escaped bounds", v, lo, hi, got)
		}
		if v >= lo && v <= hi && got != v {
			t.Errorf("Clamp(%d,%d,%d) = %d altered in-range value", v, lo, hi, got)
		}
	})
}
