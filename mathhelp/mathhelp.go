package mathhelp

import (
	"math"

	"golang.org/x/exp/constraints"
)

func BetweenInc[T constraints.Ordered](f, p, q T) bool {
	if p <= q {
		return p <= f && f <= q
	}
	return q <= f && f <= p
}

// AlmostInt reports whether f is within tolerance of a whole number.
func AlmostInt(f, tolerance float64) bool {
	return math.Abs(f-math.Round(f)) <= tolerance
}

func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
