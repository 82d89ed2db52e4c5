// Package hyperslab implements rossby's dimension-selector parsing and
// hyperslab extraction (spec.md §4.D), grounded on original_source's
// handlers/data.rs process_dimension_constraints/process_data_query.
package hyperslab

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rossby-project/rossby/internal/coordinate"
	"github.com/rossby-project/rossby/internal/dataset"
	"github.com/rossby-project/rossby/internal/rerror"
)

// Range is an inclusive index range along one dimension.
type Range struct {
	Start, End int
}

// Contracted reports whether this range selects a single index, which
// removes the axis from the emitted result.
func (r Range) Contracted() bool { return r.Start == r.End }

// Len returns the number of indices covered by the range.
func (r Range) Len() int { return r.End - r.Start + 1 }

var reservedParams = map[string]bool{
	"variables": true, "vars": true, "layout": true, "format": true,
}

// ParseSelectors extracts the per-dimension inclusive index range from a
// free-form query parameter map. Keys are matched against the forms in
// spec.md §4.D; unrecognized parameters are ignored. When a dimension is
// targeted by more than one form, raw index wins over physical value,
// which wins over the legacy time_index form.
func ParseSelectors(query map[string][]string, ds *dataset.Dataset) (map[string]Range, error) {
	ranges := map[string]Range{}

	if vals, ok := query["time_index"]; ok && len(vals) > 0 {
		if err := applyIndexSelector(ranges, ds, "time", vals[0], false); err != nil {
			return nil, err
		}
	}

	for key, vals := range query {
		if len(vals) == 0 || reservedParams[key] || strings.HasPrefix(key, "__") || key == "time_index" {
			continue
		}
		if strings.HasSuffix(key, "_range") {
			dimParam := strings.TrimSuffix(key, "_range")
			if err := applyPhysicalRangeSelector(ranges, ds, dimParam, vals[0]); err != nil {
				return nil, err
			}
			continue
		}
		if err := applyPhysicalSelector(ranges, ds, key, vals[0]); err != nil {
			return nil, err
		}
	}

	for key, vals := range query {
		if len(vals) == 0 || !strings.HasPrefix(key, "__") {
			continue
		}
		switch {
		case strings.HasSuffix(key, "_index_range"):
			canonical := strings.TrimSuffix(strings.TrimPrefix(key, "__"), "_index_range")
			if err := applyIndexRangeSelector(ranges, ds, canonical, vals[0]); err != nil {
				return nil, err
			}
		case strings.HasSuffix(key, "_index"):
			canonical := strings.TrimSuffix(strings.TrimPrefix(key, "__"), "_index")
			if err := applyIndexSelector(ranges, ds, canonical, vals[0], true); err != nil {
				return nil, err
			}
		}
	}

	return ranges, nil
}

func applyPhysicalSelector(ranges map[string]Range, ds *dataset.Dataset, dimParam, rawValue string) error {
	fileSpecific, err := ds.ResolveDimension(dimParam)
	if err != nil {
		return nil
	}
	coords, ok := ds.Coordinate(fileSpecific)
	if !ok {
		return nil
	}
	v, perr := strconv.ParseFloat(rawValue, 64)
	if perr != nil {
		return &rerror.InvalidParameter{Param: dimParam, Message: fmt.Sprintf("invalid value %q", rawValue)}
	}
	idx, ierr := coordinate.NearestIndex(coords, v)
	if ierr != nil {
		return ierr
	}
	ranges[fileSpecific] = Range{idx, idx}
	return nil
}

func applyPhysicalRangeSelector(ranges map[string]Range, ds *dataset.Dataset, dimParam, rawValue string) error {
	fileSpecific, err := ds.ResolveDimension(dimParam)
	if err != nil {
		return nil
	}
	coords, ok := ds.Coordinate(fileSpecific)
	if !ok {
		return nil
	}
	a, b, perr := parseFloatPair(rawValue)
	if perr != nil {
		return &rerror.InvalidParameter{Param: dimParam + "_range", Message: perr.Error()}
	}
	startIdx, err := coordinate.NearestIndex(coords, a)
	if err != nil {
		return err
	}
	endIdx, err := coordinate.NearestIndex(coords, b)
	if err != nil {
		return err
	}
	if startIdx > endIdx {
		startIdx, endIdx = endIdx, startIdx
	}
	ranges[fileSpecific] = Range{startIdx, endIdx}
	return nil
}

func applyIndexSelector(ranges map[string]Range, ds *dataset.Dataset, canonicalOrLiteral, rawValue string, mustResolve bool) error {
	fileSpecific, err := ds.ResolveDimension(canonicalOrLiteral)
	if err != nil {
		if mustResolve {
			return dimensionNotFound(err)
		}
		return nil
	}
	dim, _ := ds.Dimension(fileSpecific)
	i, perr := strconv.Atoi(strings.TrimSpace(rawValue))
	if perr != nil {
		return &rerror.InvalidParameter{Param: canonicalOrLiteral, Message: fmt.Sprintf("invalid index %q", rawValue)}
	}
	if i < 0 || i >= dim.Size {
		return &rerror.IndexOutOfBounds{Param: canonicalOrLiteral, Value: rawValue, Max: dim.Size - 1}
	}
	ranges[fileSpecific] = Range{i, i}
	return nil
}

func applyIndexRangeSelector(ranges map[string]Range, ds *dataset.Dataset, canonical, rawValue string) error {
	fileSpecific, err := ds.ResolveDimension(canonical)
	if err != nil {
		return dimensionNotFound(err)
	}
	dim, _ := ds.Dimension(fileSpecific)
	a, b, perr := parseIntPair(rawValue)
	if perr != nil {
		return &rerror.InvalidParameter{Param: canonical + "_index_range", Message: perr.Error()}
	}
	if a > b {
		a, b = b, a
	}
	if a < 0 || b >= dim.Size {
		return &rerror.IndexOutOfBounds{Param: canonical, Value: rawValue, Max: dim.Size - 1}
	}
	ranges[fileSpecific] = Range{a, b}
	return nil
}

// dimensionNotFound converts ds.ResolveDimension's failure into a
// structured rerror.DimensionNotFound for the HTTP layer.
func dimensionNotFound(err error) error {
	if n, available, aliases, ok := dataset.AsDimensionNotFound(err); ok {
		return &rerror.DimensionNotFound{Name: n, Available: available, Aliases: aliases}
	}
	return err
}

func parseFloatPair(s string) (float64, float64, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected 'a,b', got %q", s)
	}
	a, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, err
	}
	b, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func parseIntPair(s string) (int, int, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected 'a,b', got %q", s)
	}
	a, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	b, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
