// Package jsonstream implements rossby's chunked JSON response envelope
// for hyperslab data (spec.md §4.F). No example repo in the pack pulls
// in a streaming-JSON third-party library and the envelope shape is
// spec-mandated, so this is a documented standard-library exception:
// only io/encoding-json primitives are used.
package jsonstream

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/rossby-project/rossby/internal/dataset"
	"github.com/rossby-project/rossby/internal/hyperslab"
)

// ContentType is the media type rossby reports for chunked JSON
// responses.
const ContentType = "application/json"

// chunkSize bounds memory per request; flushed every chunkSize elements
// when the underlying writer supports it.
const chunkSize = 1000

// QueryMeta echoes the request parameters that shaped the response, for
// the metadata.query envelope field.
type QueryMeta struct {
	Vars   []string `json:"vars"`
	Layout []string `json:"layout,omitempty"`
	Format string   `json:"format"`
}

type envelopeMetadata struct {
	Query      QueryMeta                                `json:"query"`
	Shapes     [][]int                                   `json:"shapes"`
	Dimensions []string                                  `json:"dimensions"`
	Variables  map[string]map[string]dataset.AttrValue   `json:"variables"`
}

type flusher interface {
	Flush()
}

// Write streams extracted's metadata+data envelope to w, honoring
// per-variable _FillValue/scale_factor/add_offset and emitting null for
// fill values and non-finite results.
func Write(w io.Writer, extracted *hyperslab.Extracted, variableOrder []string, ds *dataset.Dataset, q QueryMeta) error {
	meta := envelopeMetadata{
		Query:      q,
		Shapes:     make([][]int, 0, len(variableOrder)),
		Dimensions: extracted.Layout,
		Variables:  map[string]map[string]dataset.AttrValue{},
	}
	for _, name := range variableOrder {
		slab := extracted.Variables[name]
		meta.Shapes = append(meta.Shapes, slab.Shape)
		if v, ok := ds.Variable(name); ok {
			meta.Variables[name] = v.Attributes
		}
	}

	if _, err := io.WriteString(w, `{"metadata":`); err != nil {
		return err
	}
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	if _, err := w.Write(metaBytes); err != nil {
		return err
	}
	if _, err := io.WriteString(w, `,"data":{`); err != nil {
		return err
	}

	for i, name := range variableOrder {
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%q:", name); err != nil {
			return err
		}
		variable, _ := ds.Variable(name)
		if err := writeVariableArray(w, extracted.Variables[name].Data, variable); err != nil {
			return err
		}
	}

	_, err = io.WriteString(w, "}}")
	return err
}

func writeVariableArray(w io.Writer, data []float32, variable dataset.Variable) error {
	fillValue, hasFill := numericAttr(variable, "_FillValue")
	scale, hasScale := numericAttr(variable, "scale_factor")
	if !hasScale {
		scale = 1.0
	}
	offset, hasOffset := numericAttr(variable, "add_offset")
	if !hasOffset {
		offset = 0.0
	}

	if _, err := io.WriteString(w, "["); err != nil {
		return err
	}

	f, canFlush := w.(flusher)
	buf := make([]byte, 0, 32)
	for i, raw := range data {
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		buf = buf[:0]
		if hasFill && float64(raw) == fillValue {
			buf = append(buf, "null"...)
		} else {
			v := float64(raw)*scale + offset
			if math.IsNaN(v) || math.IsInf(v, 0) {
				buf = append(buf, "null"...)
			} else {
				buf = strconv.AppendFloat(buf, v, 'g', -1, 64)
			}
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
		if canFlush && (i+1)%chunkSize == 0 {
			f.Flush()
		}
	}

	_, err := io.WriteString(w, "]")
	return err
}

func numericAttr(v dataset.Variable, key string) (float64, bool) {
	attr, ok := v.Attributes[key]
	if !ok || attr.Kind != dataset.AttrNumber {
		return 0, false
	}
	return attr.Number, true
}
