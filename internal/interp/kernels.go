package interp

import "github.com/rossby-project/rossby/internal/rerror"

// Nearest rounds each per-axis fractional index to the nearest integer
// (half-away-from-zero) and returns the stored value there. Out-of-bounds
// indices saturate at the edge rather than failing.
func Nearest(data []float32, shape []int, indices []float64) (float32, error) {
	if err := validateShapes(data, shape, indices); err != nil {
		return 0, err
	}
	return run(data, shape, indices, nearestWeights), nil
}

// Bilinear performs linear interpolation in every axis, recursing from
// the first axis to the last.
func Bilinear(data []float32, shape []int, indices []float64) (float32, error) {
	if err := validateShapes(data, shape, indices); err != nil {
		return 0, err
	}
	return run(data, shape, indices, linearWeights), nil
}

// Bicubic performs Catmull-Rom interpolation in every axis. Every axis
// must have at least 4 samples; callers may route to Bilinear when this
// fails.
func Bicubic(data []float32, shape []int, indices []float64) (float32, error) {
	if err := validateShapes(data, shape, indices); err != nil {
		return 0, err
	}
	for _, n := range shape {
		if n < 4 {
			return 0, &rerror.Interpolation{Message: "bicubic interpolation requires at least 4 samples on every axis"}
		}
	}
	return run(data, shape, indices, cubicWeights), nil
}
