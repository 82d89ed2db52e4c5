package api

// PointRequest binds GET /point's fixed query parameters. Lon and Lat
// are pointers rather than plain float64 because 0 is a legitimate
// longitude or latitude; binding:"required" on a numeric value rejects
// the zero value, so presence has to be checked on the pointer instead,
// the same reason the teacher's own attribute request uses *float32 for
// Xori/Yori/Rotation. The dimension-selector map (e.g. time_index) is
// parsed separately by hyperslab.ParseSelectors since its keys are
// dynamic.
type PointRequest struct {
	Lon           *float64 `form:"lon" binding:"required"`
	Lat           *float64 `form:"lat" binding:"required"`
	Vars          string   `form:"vars" binding:"required"`
	Interpolation string   `form:"interpolation"`
}

// DataRequest binds GET /data's fixed query parameters.
type DataRequest struct {
	Vars   string `form:"vars" binding:"required"`
	Layout string `form:"layout"`
	Format string `form:"format,default=json"`
}

// ImageRequest binds GET /image's fixed query parameters.
type ImageRequest struct {
	Variable      string `form:"var" binding:"required"`
	BBox          string `form:"bbox" binding:"required"`
	Width         int    `form:"width,default=256"`
	Height        int    `form:"height,default=256"`
	Colormap      string `form:"colormap,default=viridis"`
	Resampling    string `form:"resampling"`
	Interpolation string `form:"interpolation"`
	Format        string `form:"format,default=png"`
	Center        string `form:"center"`
	WrapLongitude bool   `form:"wrap_longitude"`
}
