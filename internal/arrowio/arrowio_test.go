package arrowio

import (
	"bytes"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rossby-project/rossby/internal/hyperslab"
)

func sampleExtracted() *hyperslab.Extracted {
	return &hyperslab.Extracted{
		Layout: []string{"lat", "lon"},
		Coordinates: map[string][]float64{
			"lat": {35, 36, 37},
			"lon": {139, 140},
		},
		Variables: map[string]hyperslab.VariableSlab{
			"t2m": {
				Dims:  []string{"lat", "lon"},
				Shape: []int{3, 2},
				Data:  []float32{0, 1, 10, 11, 20, 21},
			},
		},
	}
}

func TestEncodeRoundTrips(t *testing.T) {
	extracted := sampleExtracted()
	bs, err := Encode(extracted, []string{"t2m"})
	require.NoError(t, err)
	require.NotEmpty(t, bs)

	reader, err := ipc.NewReader(bytes.NewReader(bs))
	require.NoError(t, err)
	defer reader.Release()

	require.True(t, reader.Next())
	record := reader.Record()
	assert.EqualValues(t, 6, record.NumRows())
	assert.EqualValues(t, 3, record.NumCols()) // lat, lon, t2m

	schema := reader.Schema()
	assert.Equal(t, "lat", schema.Field(0).Name)
	assert.Equal(t, "lon", schema.Field(1).Name)
	assert.Equal(t, "t2m", schema.Field(2).Name)

	shapeMeta, ok := schema.Field(2).Metadata.GetValue("shape")
	require.True(t, ok)
	assert.Equal(t, "[3,2]", shapeMeta)
}

func TestEncodeBroadcastsSingletonDimension(t *testing.T) {
	extracted := &hyperslab.Extracted{
		Layout: []string{"time", "lat"},
		Coordinates: map[string][]float64{
			"time": {1672531200},
			"lat":  {35, 36, 37},
		},
		Variables: map[string]hyperslab.VariableSlab{
			"t2m": {
				Dims:  []string{"time", "lat"},
				Shape: []int{1, 3},
				Data:  []float32{0, 1, 2},
			},
		},
	}
	bs, err := Encode(extracted, []string{"t2m"})
	require.NoError(t, err)

	reader, err := ipc.NewReader(bytes.NewReader(bs))
	require.NoError(t, err)
	defer reader.Release()
	require.True(t, reader.Next())
	assert.EqualValues(t, 3, reader.Record().NumRows())
}
