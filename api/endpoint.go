package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rossby-project/rossby/internal/arrowio"
	"github.com/rossby-project/rossby/internal/coordinate"
	"github.com/rossby-project/rossby/internal/dataset"
	"github.com/rossby-project/rossby/internal/geo"
	"github.com/rossby-project/rossby/internal/hyperslab"
	"github.com/rossby-project/rossby/internal/interp"
	"github.com/rossby-project/rossby/internal/jsonstream"
	"github.com/rossby-project/rossby/internal/metrics"
	"github.com/rossby-project/rossby/internal/render"
	"github.com/rossby-project/rossby/internal/rerror"
)

/* Call abortOnError on the context in case of an error
 *
 * This function is designed specifically for our endpoint handler functions
 * and aims at making the errorhandling as short and concise as possible.
 *
 * If err != nil the error will be mapped to an appropriate http status code
 * through rerror.HTTPStatus, and ctx.AbortWithError will be called with
 * this status and the error itself. It then returns true to indicate that
 * the context have been aborted.
 *
 * If err == nil the ctx is left untouched and this function returns false,
 * indicating that the context was not aborted.
 *
 * The result is a oneline error handling:
 *
 *     v, err := func()
 *     if abortOnError(ctx, err) { return }
 */
func abortOnError(ctx *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	ctx.AbortWithError(rerror.HTTPStatus(err), err)

	return true
}

// bindQuery binds the fixed query parameters into req, wrapping gin's
// binding error as a rerror.InvalidParameter so it maps to 400 the same
// way every other parameter-validation failure does.
func bindQuery(ctx *gin.Context, req interface{}) error {
	if err := ctx.ShouldBindQuery(req); err != nil {
		return &rerror.InvalidParameter{Param: "query", Message: err.Error()}
	}
	return nil
}

// resolveDimensionOrError wraps ds.ResolveDimension's opaque error into a
// structured rerror.DimensionNotFound, the way hyperslab's selector
// parsing surfaces resolution failures to the HTTP layer.
func resolveDimensionOrError(ds *dataset.Dataset, name string) (string, error) {
	fileSpecific, err := ds.ResolveDimension(name)
	if err == nil {
		return fileSpecific, nil
	}
	if n, available, aliases, ok := dataset.AsDimensionNotFound(err); ok {
		return "", &rerror.DimensionNotFound{Name: n, Available: available, Aliases: aliases}
	}
	return "", err
}

// Endpoint holds the collaborators every handler needs: the loaded
// dataset and the server's identity, used to answer /heartbeat.
type Endpoint struct {
	Dataset              *dataset.Dataset
	Metrics              *metrics.Metrics
	DefaultInterpolation string
	MaxDataPoints        int
	ServerID             string
	StartedAt            time.Time
}

func (e *Endpoint) Health(ctx *gin.Context) {
	ctx.String(http.StatusOK, "rossby is up and running")
}

// Heartbeat godoc
// @Summary  Report server identity, uptime and the loaded dataset
// @Tags     heartbeat
// @Produce  json
// @Success  200 {object} map[string]interface{}
// @Router   /heartbeat  [get]
func (e *Endpoint) Heartbeat(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"server_id":      e.ServerID,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"uptime_seconds": time.Since(e.StartedAt).Seconds(),
		"status":         "healthy",
		"dataset": gin.H{
			"variables":  e.Dataset.VariableNames(),
			"dimensions": e.Dataset.DimensionNames(),
			"file_path":  e.Dataset.FilePath(),
		},
	})
}

type dimensionMeta struct {
	Size        int  `json:"size"`
	IsUnlimited bool `json:"is_unlimited"`
}

type variableMeta struct {
	Dimensions []string                     `json:"dimensions"`
	Shape      []int                        `json:"shape"`
	Attributes map[string]dataset.AttrValue `json:"attributes"`
}

// MetadataGet godoc
// @Summary  Return the dataset's global attributes, dimensions, variables and coordinates
// @Tags     metadata
// @Produce  json
// @Success  200 {object} map[string]interface{}
// @Router   /metadata  [get]
func (e *Endpoint) MetadataGet(ctx *gin.Context) {
	globalAttrs, order := e.Dataset.GlobalAttributes()

	dims := map[string]dimensionMeta{}
	for _, name := range e.Dataset.DimensionNames() {
		d, _ := e.Dataset.Dimension(name)
		dims[name] = dimensionMeta{Size: d.Size, IsUnlimited: d.IsUnlimited}
	}

	variables := map[string]variableMeta{}
	for _, name := range e.Dataset.VariableNames() {
		v, _ := e.Dataset.Variable(name)
		variables[name] = variableMeta{Dimensions: v.Dims, Shape: v.Shape, Attributes: v.Attributes}
	}

	coordinates := map[string][]float64{}
	for _, name := range e.Dataset.DimensionNames() {
		if c, ok := e.Dataset.Coordinate(name); ok {
			coordinates[name] = c
		}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"global_attributes":      globalAttrs,
		"global_attribute_order": order,
		"dimensions":             dims,
		"variables":              variables,
		"coordinates":            coordinates,
	})
}

// PointGet godoc
// @Summary  Interpolate one or more variables at a physical lon/lat
// @Tags     point
// @Param    lon            query  number  true   "Longitude"
// @Param    lat            query  number  true   "Latitude"
// @Param    vars           query  string  true   "Comma-separated variable names"
// @Param    interpolation  query  string  false  "nearest, bilinear or bicubic"
// @Produce  json
// @Success  200 {object} map[string]float64
// @Failure  400 {object} ErrorResponse
// @Router   /point  [get]
func (e *Endpoint) PointGet(ctx *gin.Context) {
	var req PointRequest
	if err := bindQuery(ctx, &req); err != nil {
		abortOnError(ctx, err)
		return
	}

	vars := strings.Split(req.Vars, ",")

	interpolationName := req.Interpolation
	if interpolationName == "" {
		interpolationName = e.DefaultInterpolation
	}
	kernel, err := interp.Get(interpolationName)
	if abortOnError(ctx, err) {
		return
	}

	latDim, err := resolveDimensionOrError(e.Dataset, "latitude")
	if abortOnError(ctx, err) {
		return
	}
	lonDim, err := resolveDimensionOrError(e.Dataset, "longitude")
	if abortOnError(ctx, err) {
		return
	}
	latCoords, _ := e.Dataset.Coordinate(latDim)
	lonCoords, _ := e.Dataset.Coordinate(lonDim)
	latFrac := coordinate.ToFractional(latCoords, *req.Lat)
	lonFrac := coordinate.ToFractional(lonCoords, *req.Lon)

	ranges, err := hyperslab.ParseSelectors(ctx.Request.URL.Query(), e.Dataset)
	if abortOnError(ctx, err) {
		return
	}

	result := map[string]float64{}
	for _, name := range vars {
		name = strings.TrimSpace(name)
		if !e.Dataset.HasVariable(name) {
			abortOnError(ctx, &rerror.VariableNotFound{Name: name})
			return
		}
		variable, _ := e.Dataset.Variable(name)
		data, _ := e.Dataset.VariableData(name)

		indices := make([]float64, len(variable.Dims))
		for i, d := range variable.Dims {
			switch d {
			case latDim:
				indices[i] = latFrac
			case lonDim:
				indices[i] = lonFrac
			default:
				if r, ok := ranges[d]; ok {
					indices[i] = float64(r.Start)
				}
			}
		}

		v, err := kernel(data, variable.Shape, indices)
		if abortOnError(ctx, err) {
			return
		}
		result[name] = float64(v)
	}

	ctx.JSON(http.StatusOK, result)
}

// DataGet godoc
// @Summary  Extract a hyperslab of one or more variables, as Arrow IPC or chunked JSON
// @Tags     data
// @Param    vars    query  string  true   "Comma-separated variable names"
// @Param    layout  query  string  false  "Comma-separated dimension order for the response"
// @Param    format  query  string  false  "arrow or json, default json"
// @Produce  application/vnd.apache.arrow.stream
// @Produce  json
// @Success  200
// @Failure  413 {object} ErrorResponse "requested hyperslab exceeds max_data_points"
// @Router   /data  [get]
func (e *Endpoint) DataGet(ctx *gin.Context) {
	var req DataRequest
	if err := bindQuery(ctx, &req); err != nil {
		abortOnError(ctx, err)
		return
	}

	vars := strings.Split(req.Vars, ",")
	for i := range vars {
		vars[i] = strings.TrimSpace(vars[i])
	}

	var layout []string
	if req.Layout != "" {
		layout = strings.Split(req.Layout, ",")
		for i := range layout {
			layout[i] = strings.TrimSpace(layout[i])
		}
	}

	if req.Format != "arrow" && req.Format != "json" {
		abortOnError(ctx, &rerror.InvalidParameter{Param: "format", Message: "must be arrow or json"})
		return
	}

	ranges, err := hyperslab.ParseSelectors(ctx.Request.URL.Query(), e.Dataset)
	if abortOnError(ctx, err) {
		return
	}

	extracted, err := hyperslab.Extract(e.Dataset, vars, layout, ranges, e.MaxDataPoints)
	if abortOnError(ctx, err) {
		return
	}

	if e.Metrics != nil {
		e.Metrics.ObserveDataPoints(pointCount(extracted, vars))
	}

	switch req.Format {
	case "arrow":
		bs, err := arrowio.Encode(extracted, vars)
		if abortOnError(ctx, err) {
			return
		}
		ctx.Data(http.StatusOK, arrowio.ContentType, bs)
	case "json":
		ctx.Writer.Header().Set("Content-Type", jsonstream.ContentType)
		ctx.Writer.WriteHeader(http.StatusOK)
		meta := jsonstream.QueryMeta{Vars: vars, Layout: layout, Format: req.Format}
		if err := jsonstream.Write(ctx.Writer, extracted, vars, e.Dataset, meta); err != nil {
			ctx.Error(err)
		}
	}
}

func pointCount(extracted *hyperslab.Extracted, vars []string) int {
	if len(vars) == 0 {
		return 0
	}
	slab, ok := extracted.Variables[vars[0]]
	if !ok {
		return 0
	}
	n := 1
	for _, s := range slab.Shape {
		n *= s
	}
	return n
}

// ImageGet godoc
// @Summary  Render a variable's lat/lon slab as a colormapped PNG or JPEG
// @Tags     image
// @Param    var             query  string  true   "Variable name"
// @Param    bbox            query  string  true   "min_lon,min_lat,max_lon,max_lat"
// @Param    width           query  int     false  "Output width in pixels, default 256"
// @Param    height          query  int     false  "Output height in pixels, default 256"
// @Param    colormap        query  string  false  "Named colormap, default viridis"
// @Param    resampling      query  string  false  "auto, nearest, bilinear, bicubic or none"
// @Param    format          query  string  false  "png or jpeg, default png"
// @Param    center          query  string  false  "eurocentric, americas, pacific or custom:<longitude>"
// @Param    wrap_longitude  query  bool    false  "allow a bbox that crosses the antimeridian"
// @Produce  image/png
// @Produce  image/jpeg
// @Success  200
// @Failure  400 {object} ErrorResponse
// @Router   /image  [get]
func (e *Endpoint) ImageGet(ctx *gin.Context) {
	var req ImageRequest
	if err := bindQuery(ctx, &req); err != nil {
		abortOnError(ctx, err)
		return
	}

	minLon, minLat, maxLon, maxLat, err := geo.ParseBBox(req.BBox)
	if abortOnError(ctx, err) {
		return
	}

	resamplingMode := req.Resampling
	if resamplingMode == "" {
		resamplingMode = req.Interpolation
	}
	if resamplingMode == "" {
		resamplingMode = "auto"
	}

	var projection geo.MapProjection
	if req.Center != "" {
		projection, err = geo.ParseProjection(req.Center)
		if abortOnError(ctx, err) {
			return
		}
	}

	ranges, err := hyperslab.ParseSelectors(ctx.Request.URL.Query(), e.Dataset)
	if abortOnError(ctx, err) {
		return
	}
	ancillary := map[string]int{}
	for dim, r := range ranges {
		ancillary[dim] = r.Start
	}

	bs, contentType, err := render.Render(e.Dataset, render.Request{
		Variable:         req.Variable,
		AncillaryIndices: ancillary,
		MinLon:           minLon,
		MinLat:           minLat,
		MaxLon:           maxLon,
		MaxLat:           maxLat,
		Width:            req.Width,
		Height:           req.Height,
		Colormap:         req.Colormap,
		ResamplingMode:   resamplingMode,
		Projection:       projection,
		WrapLongitude:    req.WrapLongitude,
		Format:           req.Format,
	})
	if abortOnError(ctx, err) {
		return
	}

	ctx.Data(http.StatusOK, contentType, bs)
}
