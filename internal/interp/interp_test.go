package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearest1D(t *testing.T) {
	data := []float32{1, 2, 3, 4, 5}
	shape := []int{5}

	v, err := Nearest(data, shape, []float64{0})
	require.NoError(t, err)
	assert.Equal(t, float32(1), v)

	v, _ = Nearest(data, shape, []float64{2})
	assert.Equal(t, float32(3), v)

	v, _ = Nearest(data, shape, []float64{0.2})
	assert.Equal(t, float32(1), v)

	v, _ = Nearest(data, shape, []float64{0.7})
	assert.Equal(t, float32(2), v)

	// out of bounds clamps
	v, _ = Nearest(data, shape, []float64{-1})
	assert.Equal(t, float32(1), v)

	v, _ = Nearest(data, shape, []float64{5.5})
	assert.Equal(t, float32(5), v)
}

func TestNearest2D(t *testing.T) {
	data := []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}
	shape := []int{3, 3}

	v, _ := Nearest(data, shape, []float64{0, 0})
	assert.Equal(t, float32(1), v)
	v, _ = Nearest(data, shape, []float64{2, 2})
	assert.Equal(t, float32(9), v)
	v, _ = Nearest(data, shape, []float64{1, 1})
	assert.Equal(t, float32(5), v)
}

func TestNearestDimensionMismatch(t *testing.T) {
	data := []float32{1, 2, 3, 4}
	shape := []int{2, 2}
	_, err := Nearest(data, shape, []float64{1})
	assert.Error(t, err)
}

func TestBilinearReproducesStoredValuesAtIntegerIndices(t *testing.T) {
	// 3x3 grid: value = 10*row + col
	shape := []int{3, 3}
	data := make([]float32, 9)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			data[r*3+c] = float32(10*r + c)
		}
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			v, err := Bilinear(data, shape, []float64{float64(r), float64(c)})
			require.NoError(t, err)
			assert.InDelta(t, float64(10*r+c), float64(v), 1e-5)
		}
	}
}

func TestBilinearAveragesFourCorners(t *testing.T) {
	// t2m[t,la,lo] = 100*t + 10*la + lo, from spec.md worked example
	shape := []int{3, 4} // lat, lon at a fixed time
	data := []float32{0, 1, 2, 3, 10, 11, 12, 13, 20, 21, 22, 23}
	v, err := Bilinear(data, shape, []float64{0.5, 0.5})
	require.NoError(t, err)
	// average of {0,1,10,11} == 5.5
	assert.InDelta(t, 5.5, float64(v), 1e-9)
}

func TestBilinearEdgeClamping(t *testing.T) {
	shape := []int{2}
	data := []float32{1, 2}
	v, err := Bilinear(data, shape, []float64{5})
	require.NoError(t, err)
	assert.Equal(t, float32(2), v)
}

func TestBicubicReproducesStoredValuesAtIntegerIndices(t *testing.T) {
	shape := []int{5}
	data := []float32{1, 2, 3, 4, 5}
	for i := 0; i < 5; i++ {
		v, err := Bicubic(data, shape, []float64{float64(i)})
		require.NoError(t, err)
		assert.InDelta(t, float64(data[i]), float64(v), 1e-5)
	}
}

func TestBicubicRequiresFourSamplesPerAxis(t *testing.T) {
	shape := []int{3}
	data := []float32{1, 2, 3}
	_, err := Bicubic(data, shape, []float64{1})
	assert.Error(t, err)
}

func TestBicubic2D(t *testing.T) {
	shape := []int{4, 4}
	data := make([]float32, 16)
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			data[r*4+c] = float32(r*4 + c)
		}
	}
	v, err := Bicubic(data, shape, []float64{1, 1})
	require.NoError(t, err)
	assert.InDelta(t, float64(data[1*4+1]), float64(v), 1e-5)
}

func TestGetUnknownKernel(t *testing.T) {
	_, err := Get("lanczos")
	assert.Error(t, err)
}

func TestGetKnownKernels(t *testing.T) {
	for _, name := range []string{"nearest", "bilinear", "bicubic"} {
		k, err := Get(name)
		require.NoError(t, err)
		require.NotNil(t, k)
	}
}
