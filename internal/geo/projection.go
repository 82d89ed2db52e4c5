// Package geo implements the longitude normalization, bounding-box
// parsing, map-projection handling and dateline-crossing/resampling
// utilities rossby's image renderer needs (spec.md §4.H). Grounded on
// original_source's colormaps/geoutil.rs.
package geo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rossby-project/rossby/internal/rerror"
)

// MapProjection selects the center longitude used to re-center a
// longitude range before dateline-crossing classification.
type MapProjection struct {
	kind   projectionKind
	custom float64
}

type projectionKind int

const (
	Eurocentric projectionKind = iota
	Americas
	Pacific
	Custom
)

// CenterLongitude returns the center longitude for this projection.
func (p MapProjection) CenterLongitude() float64 {
	switch p.kind {
	case Eurocentric:
		return 0
	case Americas:
		return -90
	case Pacific:
		return 180
	case Custom:
		return p.custom
	default:
		return 0
	}
}

// ParseProjection parses "eurocentric", "americas", "pacific" or
// "custom:<f>" into a MapProjection.
func ParseProjection(s string) (MapProjection, error) {
	switch strings.ToLower(s) {
	case "", "eurocentric":
		return MapProjection{kind: Eurocentric}, nil
	case "americas":
		return MapProjection{kind: Americas}, nil
	case "pacific":
		return MapProjection{kind: Pacific}, nil
	}
	if strings.HasPrefix(strings.ToLower(s), "custom:") {
		parts := strings.SplitN(s, ":", 2)
		if len(parts) == 2 {
			if v, err := strconv.ParseFloat(parts[1], 64); err == nil {
				return MapProjection{kind: Custom, custom: v}, nil
			}
		}
		return MapProjection{}, &rerror.InvalidParameter{
			Param:   "center",
			Message: fmt.Sprintf("invalid custom projection format: %s", s),
		}
	}
	return MapProjection{}, &rerror.InvalidParameter{
		Param:   "center",
		Message: fmt.Sprintf("unknown map projection: %s", s),
	}
}

// NormalizeLongitude maps λ into [-180, 180), with the special case
// that exact 180 maps to -180.
func NormalizeLongitude(lon float64) float64 {
	normalized := fmod(lon+180, 360)
	if normalized < 0 {
		normalized += 360
	}
	normalized -= 180
	if normalized == 180 {
		normalized = -180
	}
	return normalized
}

func fmod(a, b float64) float64 {
	r := a - b*float64(int(a/b))
	return r
}

// ParseBBox parses "min_lon,min_lat,max_lon,max_lat".
func ParseBBox(s string) (minLon, minLat, maxLon, maxLat float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return 0, 0, 0, 0, &rerror.InvalidParameter{
			Param:   "bbox",
			Message: "bounding box must be in format 'min_lon,min_lat,max_lon,max_lat'",
		}
	}

	values := make([]float64, 4)
	names := []string{"min_lon", "min_lat", "max_lon", "max_lat"}
	for i, part := range parts {
		v, perr := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if perr != nil {
			return 0, 0, 0, 0, &rerror.InvalidParameter{
				Param:   "bbox",
				Message: fmt.Sprintf("invalid %s: %s", names[i], part),
			}
		}
		values[i] = v
	}
	minLon, minLat, maxLon, maxLat = values[0], values[1], values[2], values[3]

	if minLat > maxLat {
		return 0, 0, 0, 0, &rerror.InvalidParameter{
			Param:   "bbox",
			Message: fmt.Sprintf("min_lat (%v) must be <= max_lat (%v)", minLat, maxLat),
		}
	}
	if minLat < -90 || minLat > 90 || maxLat < -90 || maxLat > 90 {
		return 0, 0, 0, 0, &rerror.InvalidParameter{
			Param:   "bbox",
			Message: "latitude must be in the range -90 to 90",
		}
	}

	return minLon, minLat, maxLon, maxLat, nil
}

// HandleDatelineCrossing classifies whether the requested bbox crosses
// the dateline under the given projection, returning the (possibly
// re-centered) bbox and the crossing flag.
func HandleDatelineCrossing(
	minLon, minLat, maxLon, maxLat float64,
	proj MapProjection,
) (outMinLon, outMinLat, outMaxLon, outMaxLat float64, crosses bool) {
	if minLon <= maxLon {
		return minLon, minLat, maxLon, maxLat, false
	}

	if proj.kind == Pacific {
		return minLon, minLat, maxLon, maxLat, true
	}

	center := proj.CenterLongitude()
	normalizedMin := NormalizeLongitude(minLon-center) + center
	normalizedMax := NormalizeLongitude(maxLon-center) + center

	if normalizedMin <= normalizedMax {
		return normalizedMin, minLat, normalizedMax, maxLat, false
	}
	return minLon, minLat, maxLon, maxLat, true
}
