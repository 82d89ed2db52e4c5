package hyperslab

import (
	"strings"

	"github.com/rossby-project/rossby/internal/dataset"
	"github.com/rossby-project/rossby/internal/rerror"
)

// VariableSlab is one requested variable's sliced data, with its
// remaining (non-contracted) dimensions reordered to match the
// extraction's Layout as far as that variable's own axes allow.
type VariableSlab struct {
	Dims  []string
	Shape []int
	Data  []float32
}

// Extracted is the result of a hyperslab extraction across one or more
// variables that share the same dataset.
type Extracted struct {
	Layout      []string
	Coordinates map[string][]float64
	Variables   map[string]VariableSlab
}

// Extract slices variables out of ds according to ranges (as produced by
// ParseSelectors), reorders axes per layoutParam (or the first variable's
// native dimension order when layoutParam is empty), and enforces the
// maxDataPoints budget against the first variable's selection before
// doing any slicing work.
func Extract(ds *dataset.Dataset, variables []string, layoutParam []string, ranges map[string]Range, maxDataPoints int) (*Extracted, error) {
	if len(variables) == 0 {
		return nil, &rerror.InvalidVariables{Names: variables}
	}
	var missing []string
	for _, v := range variables {
		if !ds.HasVariable(v) {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		return nil, &rerror.InvalidVariables{Names: missing}
	}

	first, _ := ds.Variable(variables[0])
	totalPoints := 1
	for _, d := range first.Dims {
		totalPoints *= effectiveRange(ranges, ds, d).Len()
	}
	if totalPoints > maxDataPoints {
		return nil, &rerror.PayloadTooLarge{
			Message:    "requested hyperslab exceeds the configured point budget",
			Requested:  totalPoints,
			MaxAllowed: maxDataPoints,
		}
	}

	touchedDims := map[string]bool{}
	slabs := map[string]VariableSlab{}
	for _, name := range variables {
		v, _ := ds.Variable(name)
		data, _ := ds.VariableData(name)
		shape := append([]int(nil), v.Shape...)
		dims := append([]string(nil), v.Dims...)
		for _, d := range dims {
			touchedDims[d] = true
		}

		for axis := len(shape) - 1; axis >= 0; axis-- {
			r := effectiveRange(ranges, ds, dims[axis])
			data, shape = sliceAxis(data, shape, axis, r.Start, r.End)
			if r.Contracted() {
				shape = append(shape[:axis], shape[axis+1:]...)
				dims = append(dims[:axis], dims[axis+1:]...)
			}
		}
		slabs[name] = VariableSlab{Dims: dims, Shape: shape, Data: data}
	}

	layoutOrder := resolveLayout(ds, layoutParam, first.Dims)
	for name, slab := range slabs {
		slabs[name] = reorderToLayout(slab, layoutOrder)
	}

	emittedLayout := make([]string, 0, len(layoutOrder))
	for _, d := range layoutOrder {
		if touchedDims[d] && !effectiveRange(ranges, ds, d).Contracted() {
			emittedLayout = append(emittedLayout, d)
		}
	}

	coordinates := map[string][]float64{}
	for d := range touchedDims {
		coords, _ := ds.Coordinate(d)
		r := effectiveRange(ranges, ds, d)
		coordinates[d] = coords[r.Start : r.End+1]
	}

	return &Extracted{
		Layout:      emittedLayout,
		Coordinates: coordinates,
		Variables:   slabs,
	}, nil
}

func effectiveRange(ranges map[string]Range, ds *dataset.Dataset, dimName string) Range {
	if r, ok := ranges[dimName]; ok {
		return r
	}
	dim, _ := ds.Dimension(dimName)
	return Range{0, dim.Size - 1}
}

// resolveLayout turns the client-supplied layout parameter into
// file-specific dimension names, falling back to defaultDims when no
// layout was requested. Canonical dimension names that don't resolve to
// any actual dimension are accepted but contribute no axis, per
// spec.md §4.D.
func resolveLayout(ds *dataset.Dataset, layoutParam []string, defaultDims []string) []string {
	if len(layoutParam) == 0 {
		return append([]string(nil), defaultDims...)
	}
	order := make([]string, 0, len(layoutParam))
	for _, name := range layoutParam {
		if fileSpecific, err := ds.ResolveDimension(name); err == nil {
			order = append(order, fileSpecific)
			continue
		}
		if dataset.CanonicalDimensionNames[strings.ToLower(name)] {
			continue
		}
	}
	return order
}

// sliceAxis extracts the inclusive [start, end] range of one axis from a
// row-major N-D array, leaving every other axis untouched.
func sliceAxis(data []float32, shape []int, axis, start, end int) ([]float32, []int) {
	outer := 1
	for i := 0; i < axis; i++ {
		outer *= shape[i]
	}
	inner := 1
	for i := axis + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	axisSize := shape[axis]
	selLen := end - start + 1

	out := make([]float32, outer*selLen*inner)
	oi := 0
	for o := 0; o < outer; o++ {
		base := o * axisSize * inner
		for s := start; s <= end; s++ {
			srcStart := base + s*inner
			copy(out[oi:oi+inner], data[srcStart:srcStart+inner])
			oi += inner
		}
	}
	newShape := append([]int(nil), shape...)
	newShape[axis] = selLen
	return out, newShape
}

// reorderToLayout transposes slab's axes so that dimensions present in
// layoutOrder appear in that order, with any remaining dimensions
// (not named in layoutOrder) kept afterward in their original order.
func reorderToLayout(slab VariableSlab, layoutOrder []string) VariableSlab {
	pos := map[string]int{}
	for i, d := range slab.Dims {
		pos[d] = i
	}

	perm := make([]int, 0, len(slab.Dims))
	used := map[string]bool{}
	for _, d := range layoutOrder {
		if i, ok := pos[d]; ok {
			perm = append(perm, i)
			used[d] = true
		}
	}
	for _, d := range slab.Dims {
		if !used[d] {
			perm = append(perm, pos[d])
		}
	}

	newDims := make([]string, len(perm))
	for i, p := range perm {
		newDims[i] = slab.Dims[p]
	}
	data, shape := transpose(slab.Data, slab.Shape, perm)
	return VariableSlab{Dims: newDims, Shape: shape, Data: data}
}

func transpose(data []float32, shape []int, perm []int) ([]float32, []int) {
	n := len(shape)
	if n == 0 || isIdentityPerm(perm) {
		return data, shape
	}
	newShape := make([]int, n)
	for i, p := range perm {
		newShape[i] = shape[p]
	}
	oldStrides := stridesOf(shape)

	total := 1
	for _, s := range shape {
		total *= s
	}
	out := make([]float32, total)
	newIdx := make([]int, n)
	for flat := 0; flat < total; flat++ {
		rem := flat
		for i := n - 1; i >= 0; i-- {
			newIdx[i] = rem % newShape[i]
			rem /= newShape[i]
		}
		oldFlat := 0
		for i := 0; i < n; i++ {
			oldFlat += newIdx[i] * oldStrides[perm[i]]
		}
		out[flat] = data[oldFlat]
	}
	return out, newShape
}

func stridesOf(shape []int) []int {
	n := len(shape)
	strides := make([]int, n)
	stride := 1
	for i := n - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= shape[i]
	}
	return strides
}

func isIdentityPerm(perm []int) bool {
	for i, p := range perm {
		if i != p {
			return false
		}
	}
	return true
}
