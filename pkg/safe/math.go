package safe

import (
	"math"
)

// SafeAdd performs int64 addition and panics on overflow/underflow.
// Quantity accounting must never wrap silently.
func SafeAdd(a, b int64) int64 {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		panic("CORE_SAFE_ADD_OVERFLOW")
	}
	return a + b
}

// SafeSub performs int64 subtraction and panics on overflow/underflow.
func SafeSub(a, b int64) int64 {
	if (b > 0 && a < math.MinInt64+b) || (b < 0 && a > math.MaxInt64+b) {
		panic("CORE_SAFE_SUB_OVERFLOW")
	}
	return a - b
}

// Clamp bounds v to [lo, hi]. Panics if lo > hi.
func Clamp(v, lo, hi int64) int64 {
	if lo > hi {
		panic("CORE_CLAMP_INVERTED_BOUNDS")
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Min returns the smaller of two int64 values.
func Min(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of two int64 values.
func Max(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
