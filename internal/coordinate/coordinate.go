// Package coordinate maps physical coordinate values to integer and
// fractional grid indices on a sorted coordinate axis (spec.md §4.B).
package coordinate

import (
	"math"
	"sort"
	"strconv"

	"github.com/rossby-project/rossby/internal/rerror"
)

// epsilonF64 is the machine epsilon for float64, per spec.md §4.B.
const epsilonF64 = 2.220446049250313e-16

// NearestIndex returns the index of the coordinate in c closest to v,
// with ties broken toward the lower index. v must lie within [c[0],
// c[len(c)-1]]; out-of-range values fail with InvalidCoordinates.
func NearestIndex(c []float64, v float64) (int, error) {
	if len(c) == 0 {
		return 0, &rerror.InvalidCoordinates{Message: "coordinate array is empty"}
	}
	if v < c[0] || v > c[len(c)-1] {
		return 0, &rerror.InvalidCoordinates{Message: outOfRangeMessage(c, v)}
	}

	best := 0
	bestDiff := math.Abs(c[0] - v)
	for i := 1; i < len(c); i++ {
		diff := math.Abs(c[i] - v)
		if diff < bestDiff {
			bestDiff = diff
			best = i
		}
	}
	return best, nil
}

// ExactIndex returns the index i such that |c[i]-v| is within machine
// epsilon, or PhysicalValueNotFound if no such index exists.
func ExactIndex(c []float64, v float64, dimension string) (int, error) {
	for i, cv := range c {
		if math.Abs(cv-v) < epsilonF64 {
			return i, nil
		}
	}
	return 0, &rerror.PhysicalValueNotFound{Dimension: dimension, Value: v, Available: c}
}

// ToFractional maps v to a fractional index in [0, len(c)-1], clamping
// at the endpoints and linearly interpolating between the bracketing
// pair otherwise. Used exclusively for physical-coordinate interpolation
// (spec.md §4.C callers), not for index selector parsing.
func ToFractional(c []float64, v float64) float64 {
	n := len(c)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return 0
	}
	if v <= c[0] {
		return 0
	}
	if v >= c[n-1] {
		return float64(n - 1)
	}

	lo := sort.Search(n, func(i int) bool { return c[i] >= v })
	if lo == 0 {
		return 0
	}
	hi := lo
	lo = lo - 1
	if c[hi] == c[lo] {
		return float64(lo)
	}
	frac := (v - c[lo]) / (c[hi] - c[lo])
	return float64(lo) + frac
}

func outOfRangeMessage(c []float64, v float64) string {
	return "value " + formatFloat(v) + " outside coordinate range [" +
		formatFloat(c[0]) + ", " + formatFloat(c[len(c)-1]) + "]"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
