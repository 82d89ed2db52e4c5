// Package interp implements the nearest, bilinear and bicubic
// interpolation kernels of spec.md §4.C. All three share one recursive,
// per-axis-weight-function traversal over a row-major N-D array, per the
// design note in spec.md §9.
package interp

import (
	"fmt"
	"math"

	"github.com/rossby-project/rossby/internal/rerror"
)

// Kernel is the shared signature every interpolation method implements.
type Kernel func(data []float32, shape []int, indices []float64) (float32, error)

// Get returns the named kernel, matching original_source's
// get_interpolator registry but expressed with first-class functions
// instead of a one-method interface.
func Get(name string) (Kernel, error) {
	switch name {
	case "nearest":
		return Nearest, nil
	case "bilinear":
		return Bilinear, nil
	case "bicubic":
		return Bicubic, nil
	default:
		return nil, &rerror.InvalidParameter{
			Param:   "interpolation",
			Message: fmt.Sprintf("unknown interpolation method: %s", name),
		}
	}
}

// axisWeights is a control-point/weight pair list for one axis.
type axisWeights struct {
	idx    []int
	weight []float64
}

func validateShapes(data []float32, shape []int, indices []float64) error {
	if len(indices) != len(shape) {
		return &rerror.Interpolation{Message: fmt.Sprintf(
			"dimension mismatch: indices has %d dimensions but shape has %d dimensions",
			len(indices), len(shape),
		)}
	}
	total := 1
	for _, s := range shape {
		total *= s
	}
	if len(data) != total {
		return &rerror.Interpolation{Message: fmt.Sprintf(
			"out of bounds: data has %d elements but shape implies %d",
			len(data), total,
		)}
	}
	return nil
}

func flatIndex(idx []int, shape []int) int {
	offset := 0
	stride := 1
	for k := len(shape) - 1; k >= 0; k-- {
		offset += idx[k] * stride
		stride *= shape[k]
	}
	return offset
}

func clampIndex(x float64, n int) float64 {
	if x < 0 {
		return 0
	}
	if x > float64(n-1) {
		return float64(n - 1)
	}
	return x
}

// combine recursively sums weighted contributions across axes, sampling
// data only once all axes have been resolved to a concrete integer
// index. Shared by every kernel in this package.
func combine(data []float32, shape []int, weights []axisWeights, axis int, idxSoFar []int) float64 {
	if axis == len(shape) {
		return float64(data[flatIndex(idxSoFar, shape)])
	}
	aw := weights[axis]
	sum := 0.0
	for k, idx := range aw.idx {
		idxSoFar[axis] = idx
		sum += aw.weight[k] * combine(data, shape, weights, axis+1, idxSoFar)
	}
	return sum
}

func run(data []float32, shape []int, indices []float64, perAxis func(x float64, n int) axisWeights) float32 {
	weights := make([]axisWeights, len(shape))
	for i, n := range shape {
		weights[i] = perAxis(indices[i], n)
	}
	idxSoFar := make([]int, len(shape))
	return float32(combine(data, shape, weights, 0, idxSoFar))
}

func nearestWeights(x float64, n int) axisWeights {
	clamped := clampIndex(x, n)
	idx := int(math.Round(clamped))
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return axisWeights{idx: []int{idx}, weight: []float64{1}}
}

func linearWeights(x float64, n int) axisWeights {
	clamped := clampIndex(x, n)
	i0 := int(math.Floor(clamped))
	if i0 > n-1 {
		i0 = n - 1
	}
	if i0 < 0 {
		i0 = 0
	}
	i1 := i0 + 1
	if i1 > n-1 {
		i1 = n - 1
	}
	f := clamped - float64(i0)
	if i0 == i1 {
		return axisWeights{idx: []int{i0}, weight: []float64{1}}
	}
	return axisWeights{idx: []int{i0, i1}, weight: []float64{1 - f, f}}
}

func cubicWeights(x float64, n int) axisWeights {
	clamped := clampIndex(x, n)
	i := int(math.Floor(clamped))
	if i > n-1 {
		i = n - 1
	}
	t := clamped - float64(i)

	p0 := maxInt(i-1, 0)
	p1 := i
	p2 := minInt(i+1, n-1)
	p3 := minInt(i+2, n-1)

	t2 := t * t
	t3 := t2 * t
	w0 := -0.5*t + t2 - 0.5*t3
	w1 := 1 - 2.5*t2 + 1.5*t3
	w2 := 0.5*t + 2*t2 - 1.5*t3
	w3 := -0.5*t2 + 0.5*t3

	return axisWeights{idx: []int{p0, p1, p2, p3}, weight: []float64{w0, w1, w2, w3}}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
