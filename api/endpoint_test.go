package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rossby-project/rossby/internal/dataset"
)

func sampleDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	timeCoord := []float64{0, 1, 2, 3, 4}
	lat := []float64{-10, 0, 10}
	lon := []float64{100, 110, 120, 130}

	data := make([]float32, 5*3*4)
	for ti := 0; ti < 5; ti++ {
		for la := 0; la < 3; la++ {
			for lo := 0; lo < 4; lo++ {
				data[ti*3*4+la*4+lo] = float32(ti*100 + la*10 + lo)
			}
		}
	}

	ds, err := dataset.New(dataset.LoaderResult{
		GlobalAttributes: map[string]dataset.AttrValue{"title": {Kind: dataset.AttrText, Text: "test"}},
		GlobalAttrOrder:  []string{"title"},
		Dimensions: map[string]dataset.Dimension{
			"time": {Name: "time", Size: 5},
			"lat":  {Name: "lat", Size: 3},
			"lon":  {Name: "lon", Size: 4},
		},
		Variables: map[string]dataset.Variable{
			"t2m": {Name: "t2m", Dims: []string{"time", "lat", "lon"}, Shape: []int{5, 3, 4}, Attributes: map[string]dataset.AttrValue{}},
		},
		VariableOrder: []string{"t2m"},
		Data:          map[string][]float32{"t2m": data},
		Coordinates: map[string][]float64{
			"time": timeCoord, "lat": lat, "lon": lon,
		},
		DimensionAliases: map[string]string{"latitude": "lat", "longitude": "lon", "time": "time"},
	})
	require.NoError(t, err)
	return ds
}

func newTestEndpoint(t *testing.T) *Endpoint {
	return &Endpoint{
		Dataset:              sampleDataset(t),
		DefaultInterpolation: "nearest",
		MaxDataPoints:        10000,
		ServerID:             "test-server",
		StartedAt:            time.Now(),
	}
}

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(handler gin.HandlerFunc, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodGet, target, nil)
	handler(ctx)
	return w
}

func TestHeartbeatReportsDatasetAndStatus(t *testing.T) {
	e := newTestEndpoint(t)
	w := performRequest(e.Heartbeat, "/heartbeat")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "test-server", body["server_id"])
}

func TestMetadataGetReturnsDimensionsAndVariables(t *testing.T) {
	e := newTestEndpoint(t)
	w := performRequest(e.MetadataGet, "/metadata")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	dims := body["dimensions"].(map[string]interface{})
	assert.Contains(t, dims, "lat")
	variables := body["variables"].(map[string]interface{})
	assert.Contains(t, variables, "t2m")
}

func TestPointGetNearestInterpolation(t *testing.T) {
	e := newTestEndpoint(t)
	w := performRequest(e.PointGet, "/point?lon=100&lat=-10&vars=t2m&interpolation=nearest&time_index=0")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body map[string]float64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 0.0, body["t2m"])
}

func TestPointGetMissingLonIsBadRequest(t *testing.T) {
	e := newTestEndpoint(t)
	w := performRequest(e.PointGet, "/point?lat=-10&vars=t2m")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPointGetUnknownVariableIsBadRequest(t *testing.T) {
	e := newTestEndpoint(t)
	w := performRequest(e.PointGet, "/point?lon=100&lat=-10&vars=bogus")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDataGetJSONDefaultFormat(t *testing.T) {
	e := newTestEndpoint(t)
	w := performRequest(e.DataGet, "/data?vars=t2m&time_index=0")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestDataGetArrowFormat(t *testing.T) {
	e := newTestEndpoint(t)
	w := performRequest(e.DataGet, "/data?vars=t2m&time_index=0&format=arrow")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/vnd.apache.arrow.stream", w.Header().Get("Content-Type"))
}

func TestDataGetPayloadTooLarge(t *testing.T) {
	e := newTestEndpoint(t)
	e.MaxDataPoints = 2
	w := performRequest(e.DataGet, "/data?vars=t2m")
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestDataGetMissingVarsIsBadRequest(t *testing.T) {
	e := newTestEndpoint(t)
	w := performRequest(e.DataGet, "/data")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImageGetProducesPNG(t *testing.T) {
	e := newTestEndpoint(t)
	w := performRequest(e.ImageGet, "/image?var=t2m&bbox=100,-10,130,10&width=8&height=6&time_index=0")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
}

func TestImageGetRejectsUnsuitableVariable(t *testing.T) {
	e := newTestEndpoint(t)
	w := performRequest(e.ImageGet, "/image?var=bogus&bbox=100,-10,130,10")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImageGetMissingVarIsBadRequest(t *testing.T) {
	e := newTestEndpoint(t)
	w := performRequest(e.ImageGet, "/image?bbox=100,-10,130,10")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
