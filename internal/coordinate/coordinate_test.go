package coordinate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearestIndex(t *testing.T) {
	c := []float64{139, 140, 141, 142}

	idx, err := NearestIndex(c, 139)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	idx, err = NearestIndex(c, 139.4)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	// exact tie goes to the lower index
	idx, err = NearestIndex(c, 139.5)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	idx, err = NearestIndex(c, 141.6)
	require.NoError(t, err)
	assert.Equal(t, 3, idx)

	_, err = NearestIndex(c, 138.9)
	assert.Error(t, err)

	_, err = NearestIndex(c, 142.1)
	assert.Error(t, err)
}

func TestExactIndex(t *testing.T) {
	c := []float64{35, 36, 37}

	idx, err := ExactIndex(c, 36, "lat")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	_, err = ExactIndex(c, 36.5, "lat")
	assert.Error(t, err)
}

func TestToFractional(t *testing.T) {
	c := []float64{139, 140, 141, 142}

	assert.Equal(t, 0.0, ToFractional(c, 139))
	assert.Equal(t, 0.5, ToFractional(c, 139.5))
	assert.Equal(t, 3.0, ToFractional(c, 142))

	// clamp outside range
	assert.Equal(t, 0.0, ToFractional(c, 100))
	assert.Equal(t, 3.0, ToFractional(c, 200))
}
