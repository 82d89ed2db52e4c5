package jsonstream

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rossby-project/rossby/internal/dataset"
	"github.com/rossby-project/rossby/internal/hyperslab"
)

func sampleDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(dataset.LoaderResult{
		GlobalAttributes: map[string]dataset.AttrValue{},
		Dimensions: map[string]dataset.Dimension{
			"lat": {Name: "lat", Size: 2},
			"lon": {Name: "lon", Size: 2},
		},
		Variables: map[string]dataset.Variable{
			"t2m": {
				Name:  "t2m",
				Dims:  []string{"lat", "lon"},
				Shape: []int{2, 2},
				Attributes: map[string]dataset.AttrValue{
					"_FillValue":   {Kind: dataset.AttrNumber, Number: -9999},
					"scale_factor": {Kind: dataset.AttrNumber, Number: 2.0},
					"add_offset":   {Kind: dataset.AttrNumber, Number: 1.0},
					"units":        {Kind: dataset.AttrText, Text: "K"},
				},
			},
		},
		VariableOrder: []string{"t2m"},
		Data:          map[string][]float32{"t2m": {0, 1, -9999, 3}},
		Coordinates:   map[string][]float64{"lat": {35, 36}, "lon": {139, 140}},
	})
	require.NoError(t, err)
	return ds
}

func sampleExtracted() *hyperslab.Extracted {
	return &hyperslab.Extracted{
		Layout:      []string{"lat", "lon"},
		Coordinates: map[string][]float64{"lat": {35, 36}, "lon": {139, 140}},
		Variables: map[string]hyperslab.VariableSlab{
			"t2m": {Dims: []string{"lat", "lon"}, Shape: []int{2, 2}, Data: []float32{0, 1, -9999, 3}},
		},
	}
}

func TestWriteProducesValidJSON(t *testing.T) {
	ds := sampleDataset(t)
	extracted := sampleExtracted()
	var buf bytes.Buffer

	err := Write(&buf, extracted, []string{"t2m"}, ds, QueryMeta{Vars: []string{"t2m"}, Format: "json"})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	meta := decoded["metadata"].(map[string]interface{})
	assert.Equal(t, []interface{}{"lat", "lon"}, meta["dimensions"])

	data := decoded["data"].(map[string]interface{})
	values := data["t2m"].([]interface{})
	require.Len(t, values, 4)
	assert.Equal(t, float64(1), values[0])  // (0*2)+1
	assert.Equal(t, float64(3), values[1])  // (1*2)+1
	assert.Nil(t, values[2])                // fill value -> null
	assert.Equal(t, float64(7), values[3])  // (3*2)+1
}

func TestWriteEmitsNullForNonFinite(t *testing.T) {
	ds := sampleDataset(t)
	extracted := &hyperslab.Extracted{
		Layout:      []string{"lat", "lon"},
		Coordinates: map[string][]float64{"lat": {35, 36}, "lon": {139, 140}},
		Variables: map[string]hyperslab.VariableSlab{
			"t2m": {Dims: []string{"lat", "lon"}, Shape: []int{2, 2}, Data: []float32{0, float32(math.NaN()), 0, 0}},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, extracted, []string{"t2m"}, ds, QueryMeta{Vars: []string{"t2m"}, Format: "json"}))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	values := decoded["data"].(map[string]interface{})["t2m"].([]interface{})
	assert.Nil(t, values[1])
}

func TestWriteOmitsScaleOffsetDefaults(t *testing.T) {
	ds, err := dataset.New(dataset.LoaderResult{
		GlobalAttributes: map[string]dataset.AttrValue{},
		Dimensions:       map[string]dataset.Dimension{"lat": {Name: "lat", Size: 2}},
		Variables: map[string]dataset.Variable{
			"plain": {Name: "plain", Dims: []string{"lat"}, Shape: []int{2}, Attributes: map[string]dataset.AttrValue{}},
		},
		VariableOrder: []string{"plain"},
		Data:          map[string][]float32{"plain": {5, 10}},
		Coordinates:   map[string][]float64{"lat": {35, 36}},
	})
	require.NoError(t, err)

	extracted := &hyperslab.Extracted{
		Layout:      []string{"lat"},
		Coordinates: map[string][]float64{"lat": {35, 36}},
		Variables: map[string]hyperslab.VariableSlab{
			"plain": {Dims: []string{"lat"}, Shape: []int{2}, Data: []float32{5, 10}},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, extracted, []string{"plain"}, ds, QueryMeta{Vars: []string{"plain"}, Format: "json"}))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	values := decoded["data"].(map[string]interface{})["plain"].([]interface{})
	assert.Equal(t, []interface{}{float64(5), float64(10)}, values)
}
