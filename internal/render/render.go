// Package render implements rossby's map image pipeline (spec.md §4.I):
// slice the non-spatial axes of a variable down to a (lat,lon) slab,
// apply dateline handling and optional resampling, then sample and
// colormap every output pixel. PNG/JPEG encoding uses the standard
// library, per spec.md §1's framing of byte encoding as an external
// collaborator outside this system's scope.
package render

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"strconv"

	"github.com/rossby-project/rossby/internal/colormap"
	"github.com/rossby-project/rossby/internal/coordinate"
	"github.com/rossby-project/rossby/internal/dataset"
	"github.com/rossby-project/rossby/internal/geo"
	"github.com/rossby-project/rossby/internal/interp"
	"github.com/rossby-project/rossby/internal/rerror"
)

// Request carries every parameter the image renderer needs, already
// parsed out of the HTTP layer's query parameters.
type Request struct {
	Variable         string
	AncillaryIndices map[string]int
	MinLon, MinLat   float64
	MaxLon, MaxLat   float64
	Width, Height    int
	Colormap         string
	ResamplingMode   string
	Projection       geo.MapProjection
	WrapLongitude    bool
	Format           string
}

// Render runs the full image pipeline and returns the encoded bytes
// along with the response Content-Type.
func Render(ds *dataset.Dataset, req Request) ([]byte, string, error) {
	if !ds.HasVariable(req.Variable) {
		return nil, "", &rerror.InvalidVariables{Names: []string{req.Variable}}
	}
	variable, _ := ds.Variable(req.Variable)

	latDim, latErr := ds.ResolveDimension("latitude")
	lonDim, lonErr := ds.ResolveDimension("longitude")
	if latErr != nil || lonErr != nil || !containsDim(variable.Dims, latDim) || !containsDim(variable.Dims, lonDim) {
		return nil, "", &rerror.VariableNotSuitableForImage{Name: req.Variable}
	}

	if req.Format != "png" && req.Format != "jpeg" {
		return nil, "", &rerror.InvalidParameter{Param: "format", Message: "must be png or jpeg"}
	}

	minLon, maxLon := req.MinLon, req.MaxLon
	if minLon > maxLon && !req.WrapLongitude {
		return nil, "", &rerror.InvalidParameter{
			Param:   "bbox",
			Message: "min_lon > max_lon; pass wrap_longitude=true to request a dateline-crossing image",
		}
	}

	data, ok := ds.VariableData(req.Variable)
	if !ok {
		return nil, "", &rerror.ServerError{Message: "variable data missing after existence check"}
	}
	grid, err := sliceToLatLonGrid(variable, data, latDim, lonDim, req.AncillaryIndices)
	if err != nil {
		return nil, "", err
	}

	latCoords, _ := ds.Coordinate(latDim)
	lonCoords, _ := ds.Coordinate(lonDim)

	adjMinLon, adjMinLat, adjMaxLon, adjMaxLat, crosses := geo.HandleDatelineCrossing(minLon, req.MinLat, maxLon, req.MaxLat, req.Projection)
	if crosses {
		grid, lonCoords = geo.AdjustForDateline(grid, lonCoords)
		adjMaxLon += 360
	}

	latStart, latEnd, err := indexRange(latCoords, adjMinLat, adjMaxLat)
	if err != nil {
		return nil, "", err
	}
	lonStart, lonEnd, err := indexRange(lonCoords, adjMinLon, adjMaxLon)
	if err != nil {
		return nil, "", err
	}

	sub := cropGrid(grid, latStart, latEnd, lonStart, lonEnd)

	scale := scaleFactor(sub.Width, sub.Height, req.Width, req.Height)
	kernelName := pickKernelName(req.ResamplingMode, scale)
	kernel, err := interp.Get(kernelName)
	if err != nil {
		return nil, "", err
	}

	if req.ResamplingMode != "none" && scale > 2 {
		targetW := clampInt(int(0.8*float64(req.Width)), 1, sub.Width)
		targetH := clampInt(int(0.8*float64(req.Height)), 1, sub.Height)
		sub = geo.Resample(sub, targetW, targetH)
	}

	minVal, maxVal := finiteExtent(sub.Data)
	cmap, err := colormap.Get(req.Colormap)
	if err != nil {
		return nil, "", err
	}

	img := image.NewRGBA(image.Rect(0, 0, req.Width, req.Height))
	shape := []int{sub.Height, sub.Width}
	for y := 0; y < req.Height; y++ {
		dataY := scaledIndex(y, req.Height, sub.Height)
		for x := 0; x < req.Width; x++ {
			dataX := scaledIndex(x, req.Width, sub.Width)
			v, kerr := kernel(sub.Data, shape, []float64{dataY, dataX})
			var r, g, b, a uint8
			if kerr != nil || math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				r, g, b, a = 0, 0, 0, 0
			} else {
				r, g, b, a = cmap.Apply(float64(v), minVal, maxVal)
			}
			img.Set(x, y, color.RGBA{R: r, G: g, B: b, A: a})
		}
	}

	var buf bytes.Buffer
	var contentType string
	switch req.Format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", &rerror.ImageGeneration{Message: err.Error()}
		}
		contentType = "image/png"
	case "jpeg":
		if err := jpeg.Encode(&buf, img, nil); err != nil {
			return nil, "", &rerror.ImageGeneration{Message: err.Error()}
		}
		contentType = "image/jpeg"
	}
	return buf.Bytes(), contentType, nil
}

func containsDim(dims []string, name string) bool {
	for _, d := range dims {
		if d == name {
			return true
		}
	}
	return false
}

// sliceToLatLonGrid contracts every non-lat/lon axis of variable to the
// requested ancillary index (defaulting to 0), leaving a 2-D slab
// normalized to (lat rows, lon cols) regardless of the variable's
// native dimension order.
func sliceToLatLonGrid(variable dataset.Variable, data []float32, latDim, lonDim string, ancillary map[string]int) (geo.Grid2D, error) {
	shape := append([]int(nil), variable.Shape...)
	dims := append([]string(nil), variable.Dims...)

	for axis := len(shape) - 1; axis >= 0; axis-- {
		d := dims[axis]
		if d == latDim || d == lonDim {
			continue
		}
		idx := 0
		if v, ok := ancillary[d]; ok {
			idx = v
		}
		if idx < 0 || idx >= shape[axis] {
			return geo.Grid2D{}, &rerror.IndexOutOfBounds{Param: d, Value: strconv.Itoa(idx), Max: shape[axis] - 1}
		}
		data, shape = sliceAxisContract(data, shape, axis, idx)
		shape = append(shape[:axis], shape[axis+1:]...)
		dims = append(dims[:axis], dims[axis+1:]...)
	}

	if len(dims) != 2 {
		return geo.Grid2D{}, &rerror.ImageGeneration{Message: "variable does not reduce to a 2-D lat/lon slab for the given indices"}
	}

	h := shapeOf(dims, shape, latDim)
	w := shapeOf(dims, shape, lonDim)
	grid := geo.NewGrid2D(h, w)
	if dims[0] == latDim {
		copy(grid.Data, data)
	} else {
		for lo := 0; lo < w; lo++ {
			for la := 0; la < h; la++ {
				grid.Set(la, lo, data[lo*h+la])
			}
		}
	}
	return grid, nil
}

func shapeOf(dims []string, shape []int, name string) int {
	for i, d := range dims {
		if d == name {
			return shape[i]
		}
	}
	return 0
}

func sliceAxisContract(data []float32, shape []int, axis, idx int) ([]float32, []int) {
	outer := 1
	for i := 0; i < axis; i++ {
		outer *= shape[i]
	}
	inner := 1
	for i := axis + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	axisSize := shape[axis]
	out := make([]float32, outer*inner)
	oi := 0
	for o := 0; o < outer; o++ {
		base := o*axisSize*inner + idx*inner
		copy(out[oi:oi+inner], data[base:base+inner])
		oi += inner
	}
	newShape := append([]int(nil), shape...)
	newShape[axis] = 1
	return out, newShape
}

func indexRange(coords []float64, a, b float64) (int, int, error) {
	i0, err := coordinate.NearestIndex(coords, a)
	if err != nil {
		return 0, 0, err
	}
	i1, err := coordinate.NearestIndex(coords, b)
	if err != nil {
		return 0, 0, err
	}
	if i0 > i1 {
		i0, i1 = i1, i0
	}
	return i0, i1, nil
}

func cropGrid(grid geo.Grid2D, latStart, latEnd, lonStart, lonEnd int) geo.Grid2D {
	h := latEnd - latStart + 1
	w := lonEnd - lonStart + 1
	out := geo.NewGrid2D(h, w)
	for la := 0; la < h; la++ {
		for lo := 0; lo < w; lo++ {
			out.Set(la, lo, grid.At(latStart+la, lonStart+lo))
		}
	}
	return out
}

// scaleFactor is the worse-case ratio between source and destination
// resolution across both axes, used to pick a resampling kernel and to
// decide whether the resample pre-step fires.
func scaleFactor(srcW, srcH, dstW, dstH int) float64 {
	sx := ratio(srcW, dstW)
	sy := ratio(srcH, dstH)
	if sx > sy {
		return sx
	}
	return sy
}

func ratio(a, b int) float64 {
	if a == 0 || b == 0 {
		return 1
	}
	if a > b {
		return float64(a) / float64(b)
	}
	return float64(b) / float64(a)
}

func pickKernelName(mode string, scale float64) string {
	switch mode {
	case "nearest", "bilinear", "bicubic":
		return mode
	default:
		if scale <= 2 {
			return "bilinear"
		}
		return "bicubic"
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func scaledIndex(i, targetN, srcN int) float64 {
	if targetN <= 1 {
		return 0
	}
	return float64(i) * float64(srcN-1) / float64(targetN-1)
}

func finiteExtent(data []float32) (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	found := false
	for _, v := range data {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		found = true
		if f < min {
			min = f
		}
		if f > max {
			max = f
		}
	}
	if !found {
		return 0, 0
	}
	return min, max
}
