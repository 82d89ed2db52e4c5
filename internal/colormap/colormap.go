// Package colormap implements rossby's named RGB ramps (spec.md §4.G).
// original_source's colormaps/{sequential,diverging}.rs only stub these
// out (grayscale placeholders marked TODO); the palette stops here are
// the real eight named maps the registry promises.
package colormap

import (
	"fmt"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/rossby-project/rossby/internal/rerror"
)

// Map is a named palette that converts a normalized value in [0,1] to
// RGBA8, via piecewise-linear interpolation between a fixed set of
// stops.
type Map struct {
	name  string
	stops []colorful.Color
}

// Name returns the registry name this map was looked up under.
func (m Map) Name() string { return m.name }

// At returns the RGBA8 color for t, clamped to [0,1].
func (m Map) At(t float64) (r, g, b, a uint8) {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	n := len(m.stops)
	if n == 1 {
		return toRGBA(m.stops[0])
	}
	scaled := t * float64(n-1)
	i0 := int(math.Floor(scaled))
	if i0 >= n-1 {
		i0 = n - 2
	}
	i1 := i0 + 1
	frac := scaled - float64(i0)
	blended := m.stops[i0].BlendRgb(m.stops[i1], frac)
	return toRGBA(blended)
}

func toRGBA(c colorful.Color) (r, g, b, a uint8) {
	cr, cg, cb := c.Clamped().RGB255()
	return cr, cg, cb, 255
}

// Apply maps value into [0,1] against (min,max) and returns the palette
// color. Degenerate min==max maps to t=0.5. Non-finite values return
// transparent black, per spec.md §4.G/§4.I.
func (m Map) Apply(value, min, max float64) (r, g, b, a uint8) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, 0, 0, 0
	}
	var t float64
	if min == max {
		t = 0.5
	} else {
		t = (value - min) / (max - min)
		if t < 0 {
			t = 0
		}
		if t > 1 {
			t = 1
		}
	}
	return m.At(t)
}

var registry = buildRegistry()

// Get returns the named colormap (case-insensitive). Unknown names
// produce an InvalidParameter error naming the "colormap" parameter.
func Get(name string) (Map, error) {
	m, ok := registry[strings.ToLower(name)]
	if !ok {
		return Map{}, &rerror.InvalidParameter{
			Param:   "colormap",
			Message: fmt.Sprintf("unknown colormap: %s", name),
		}
	}
	return m, nil
}

func buildRegistry() map[string]Map {
	reg := map[string]Map{}
	for name, hexStops := range palettes {
		stops := make([]colorful.Color, len(hexStops))
		for i, hex := range hexStops {
			c, err := colorful.Hex(hex)
			if err != nil {
				panic(fmt.Sprintf("colormap %s: invalid palette stop %s: %v", name, hex, err))
			}
			stops[i] = c
		}
		reg[name] = Map{name: name, stops: stops}
	}
	return reg
}

// palettes holds the fixed RGB stops for each named map. Sequential maps
// run low-to-high along their usual perceptual path; diverging maps are
// anchored on a white or near-neutral midpoint.
var palettes = map[string][]string{
	"viridis": {"#440154", "#482878", "#3e4a89", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"},
	"plasma":  {"#0d0887", "#47039f", "#7301a8", "#9c179e", "#bd3786", "#d8576b", "#ed7953", "#fa9e3b", "#fdc926", "#f0f921"},
	"inferno": {"#000004", "#1b0c41", "#4a0c6b", "#781c6d", "#a52c60", "#cf4446", "#ed6925", "#fb9a06", "#f7d03c", "#fcffa4"},
	"magma":   {"#000004", "#180f3e", "#451077", "#721f81", "#9f2f7f", "#cd4071", "#f1605d", "#fd9567", "#feca8d", "#fcfdbf"},
	"cividis": {"#00204d", "#00336f", "#39486b", "#575d6d", "#707173", "#8a8779", "#a69d75", "#c4b56c", "#e4cf5b", "#ffea46"},
	"coolwarm": {"#3b4cc0", "#6788ee", "#9abbff", "#c9d7f0", "#f7f7f7", "#f4c5ad", "#e7906c", "#cc5a45", "#b40426"},
	"rdbu":     {"#b2182b", "#ef8a62", "#fddbc7", "#f7f7f7", "#d1e5f0", "#67a9cf", "#2166ac"},
	"seismic":  {"#00004c", "#0000ff", "#ffffff", "#ff0000", "#4c0000"},
}
