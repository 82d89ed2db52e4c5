package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLoaderResult() LoaderResult {
	// t2m[time=5, lat=3, lon=4], t2m[t,la,lo] = 100*t + 10*la + lo
	time := []float64{1672531200, 1672534800, 1672538400, 1672542000, 1672545600}
	lat := []float64{35, 36, 37}
	lon := []float64{139, 140, 141, 142}

	data := make([]float32, 5*3*4)
	for t := 0; t < 5; t++ {
		for la := 0; la < 3; la++ {
			for lo := 0; lo < 4; lo++ {
				idx := t*3*4 + la*4 + lo
				data[idx] = float32(100*t + 10*la + lo)
			}
		}
	}

	return LoaderResult{
		GlobalAttributes: map[string]AttrValue{},
		Dimensions: map[string]Dimension{
			"time": {Name: "time", Size: 5},
			"lat":  {Name: "lat", Size: 3},
			"lon":  {Name: "lon", Size: 4},
		},
		Variables: map[string]Variable{
			"t2m": {
				Name:       "t2m",
				Dims:       []string{"time", "lat", "lon"},
				Shape:      []int{5, 3, 4},
				Attributes: map[string]AttrValue{},
				DTypeTag:   "f32",
			},
		},
		VariableOrder: []string{"t2m"},
		Data:          map[string][]float32{"t2m": data},
		Coordinates: map[string][]float64{
			"time": time,
			"lat":  lat,
			"lon":  lon,
		},
		DimensionAliases: map[string]string{
			"latitude":  "lat",
			"longitude": "lon",
		},
	}
}

func TestNewValidatesInvariants(t *testing.T) {
	ds, err := New(sampleLoaderResult())
	require.NoError(t, err)
	require.True(t, ds.HasVariable("t2m"))
}

func TestNewRejectsShapeMismatch(t *testing.T) {
	r := sampleLoaderResult()
	r.Variables["t2m"] = Variable{
		Name:  "t2m",
		Dims:  []string{"time", "lat", "lon"},
		Shape: []int{5, 3, 99}, // doesn't match dimension table
	}
	_, err := New(r)
	assert.Error(t, err)
}

func TestNewRejectsDataLengthMismatch(t *testing.T) {
	r := sampleLoaderResult()
	r.Data["t2m"] = r.Data["t2m"][:10]
	_, err := New(r)
	assert.Error(t, err)
}

func TestNewRejectsMissingCoordinate(t *testing.T) {
	r := sampleLoaderResult()
	delete(r.Coordinates, "lat")
	_, err := New(r)
	assert.Error(t, err)
}

func TestNewRejectsDanglingAlias(t *testing.T) {
	r := sampleLoaderResult()
	r.DimensionAliases["level"] = "does-not-exist"
	_, err := New(r)
	assert.Error(t, err)
}

func TestResolveDimensionLiteral(t *testing.T) {
	ds, _ := New(sampleLoaderResult())
	got, err := ds.ResolveDimension("lat")
	require.NoError(t, err)
	assert.Equal(t, "lat", got)
}

func TestResolveDimensionUnderscoreCanonical(t *testing.T) {
	ds, _ := New(sampleLoaderResult())
	got, err := ds.ResolveDimension("_latitude")
	require.NoError(t, err)
	assert.Equal(t, "lat", got)
}

func TestResolveDimensionUnprefixedCanonical(t *testing.T) {
	ds, _ := New(sampleLoaderResult())
	got, err := ds.ResolveDimension("longitude")
	require.NoError(t, err)
	assert.Equal(t, "lon", got)
}

func TestResolveDimensionNotFound(t *testing.T) {
	ds, _ := New(sampleLoaderResult())
	_, err := ds.ResolveDimension("depth")
	require.Error(t, err)
	name, available, aliases, ok := AsDimensionNotFound(err)
	require.True(t, ok)
	assert.Equal(t, "depth", name)
	assert.Contains(t, available, "lat")
	assert.Equal(t, "lat", aliases["latitude"])
}

func TestLatLonBounds(t *testing.T) {
	ds, _ := New(sampleLoaderResult())
	minLon, minLat, maxLon, maxLat, err := ds.LatLonBounds()
	require.NoError(t, err)
	assert.Equal(t, 139.0, minLon)
	assert.Equal(t, 142.0, maxLon)
	assert.Equal(t, 35.0, minLat)
	assert.Equal(t, 37.0, maxLat)
}

func TestTimeDimSize(t *testing.T) {
	ds, _ := New(sampleLoaderResult())
	assert.Equal(t, 5, ds.TimeDimSize())
}
