// Package dataset holds the in-memory representation of the single
// gridded dataset rossby serves, and the dimension-name resolution that
// lets clients query it by file-specific names, canonical aliases, or
// raw indices.
//
// A Dataset is built once at startup by a loader (see internal/loader)
// and never mutated again; it is safe to share by pointer across
// concurrent request goroutines without locking.
package dataset

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Dimension describes one axis of the dataset.
type Dimension struct {
	Name        string
	Size        int
	IsUnlimited bool
}

// AttrKind tags which field of AttrValue is populated.
type AttrKind int

const (
	AttrText AttrKind = iota
	AttrNumber
	AttrNumberArray
)

// AttrValue is a tagged union over the three attribute shapes a dataset
// file can carry: free text, a single number, or an array of numbers.
type AttrValue struct {
	Kind        AttrKind
	Text        string
	Number      float64
	NumberArray []float64
}

// Variable describes one array stored in the dataset, independent of its
// data.
type Variable struct {
	Name       string
	Dims       []string
	Shape      []int
	Attributes map[string]AttrValue
	// AttrOrder preserves declaration order for deterministic metadata
	// responses; Attributes itself is keyed for O(1) lookup.
	AttrOrder []string
	DTypeTag  string
}

// LoaderResult is the inbound contract a loader must satisfy (spec.md
// §6.1): metadata plus the raw row-major float32 arrays and per-dimension
// coordinate arrays backing it.
type LoaderResult struct {
	GlobalAttributes map[string]AttrValue
	GlobalAttrOrder  []string
	Dimensions       map[string]Dimension
	Variables        map[string]Variable
	VariableOrder    []string
	Data             map[string][]float32
	Coordinates      map[string][]float64
	// DimensionAliases maps a canonical name (latitude, longitude, time,
	// level, or any operator-configured name) to a file-specific
	// dimension name.
	DimensionAliases map[string]string
	FilePath         string
}

// Dataset is the shared, read-only in-memory representation of the
// served file.
type Dataset struct {
	globalAttributes map[string]AttrValue
	globalAttrOrder  []string
	dimensions       map[string]Dimension
	variables        map[string]Variable
	variableOrder    []string
	data             map[string][]float32
	coordinates      map[string][]float64
	aliases          map[string]string
	filePath         string
}

// CanonicalDimensionNames are accepted verbatim as a layout dimension
// even when no alias maps to them (spec.md §4.D).
var CanonicalDimensionNames = map[string]bool{
	"latitude": true, "longitude": true, "time": true, "level": true,
}

// New validates a LoaderResult against the invariants of spec.md §3 and
// builds the immutable Dataset.
func New(r LoaderResult) (*Dataset, error) {
	d := &Dataset{
		globalAttributes: r.GlobalAttributes,
		globalAttrOrder:  r.GlobalAttrOrder,
		dimensions:       r.Dimensions,
		variables:        r.Variables,
		variableOrder:    r.VariableOrder,
		data:             r.Data,
		coordinates:      r.Coordinates,
		aliases:          r.DimensionAliases,
		filePath:         r.FilePath,
	}
	if d.aliases == nil {
		d.aliases = map[string]string{}
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dataset) validate() error {
	if len(d.variables) == 0 {
		return fmt.Errorf("dataset has no variables")
	}

	// Invariant 4: alias map never points to a nonexistent dimension.
	for canonical, fileSpecific := range d.aliases {
		if _, ok := d.dimensions[fileSpecific]; !ok {
			return fmt.Errorf(
				"dimension alias %q -> %q points to a nonexistent dimension",
				canonical, fileSpecific,
			)
		}
	}

	// Invariant 2 & 3: every dimension has a coordinate array of matching
	// length, and it is finite.
	for name, dim := range d.dimensions {
		coords, ok := d.coordinates[name]
		if !ok {
			return fmt.Errorf("dimension %q has no coordinate array", name)
		}
		if len(coords) != dim.Size {
			return fmt.Errorf(
				"dimension %q coordinate array has length %d, expected %d",
				name, len(coords), dim.Size,
			)
		}
		for _, v := range coords {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("dimension %q coordinate array contains non-finite value", name)
			}
		}
	}

	// Invariant 1: every variable's dims/shape/data are consistent.
	for name, v := range d.variables {
		if len(v.Dims) != len(v.Shape) {
			return fmt.Errorf("variable %q: dims length %d != shape length %d", name, len(v.Dims), len(v.Shape))
		}
		total := 1
		for i, dimName := range v.Dims {
			dim, ok := d.dimensions[dimName]
			if !ok {
				return fmt.Errorf("variable %q references nonexistent dimension %q", name, dimName)
			}
			if dim.Size != v.Shape[i] {
				return fmt.Errorf(
					"variable %q dimension %q size mismatch: dim table has %d, shape has %d",
					name, dimName, dim.Size, v.Shape[i],
				)
			}
			total *= v.Shape[i]
		}
		arr, ok := d.data[name]
		if !ok {
			return fmt.Errorf("variable %q has no backing data array", name)
		}
		if len(arr) != total {
			return fmt.Errorf("variable %q data array has %d elements, expected %d", name, len(arr), total)
		}
	}

	return nil
}

// HasVariable reports whether name is a known variable.
func (d *Dataset) HasVariable(name string) bool {
	_, ok := d.variables[name]
	return ok
}

// HasCoordinate reports whether name has a coordinate array, i.e. is a
// known dimension.
func (d *Dataset) HasCoordinate(name string) bool {
	_, ok := d.coordinates[name]
	return ok
}

// Variable returns the metadata for a variable.
func (d *Dataset) Variable(name string) (Variable, bool) {
	v, ok := d.variables[name]
	return v, ok
}

// VariableData returns the backing row-major float32 array for a
// variable. The returned slice must not be mutated by the caller.
func (d *Dataset) VariableData(name string) ([]float32, bool) {
	v, ok := d.data[name]
	return v, ok
}

// Coordinate returns the coordinate array for a dimension. The returned
// slice must not be mutated by the caller.
func (d *Dataset) Coordinate(name string) ([]float64, bool) {
	c, ok := d.coordinates[name]
	return c, ok
}

// Dimension returns dimension metadata by file-specific name.
func (d *Dataset) Dimension(name string) (Dimension, bool) {
	dim, ok := d.dimensions[name]
	return dim, ok
}

// DimensionNames returns all file-specific dimension names, sorted for
// deterministic output.
func (d *Dataset) DimensionNames() []string {
	names := make([]string, 0, len(d.dimensions))
	for n := range d.dimensions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// VariableNames returns declaration-ordered variable names.
func (d *Dataset) VariableNames() []string {
	return d.variableOrder
}

// GlobalAttributes returns the file-level attributes in declaration
// order.
func (d *Dataset) GlobalAttributes() (map[string]AttrValue, []string) {
	return d.globalAttributes, d.globalAttrOrder
}

// Aliases returns the canonical -> file-specific dimension alias map.
func (d *Dataset) Aliases() map[string]string {
	return d.aliases
}

// FilePath returns the path the dataset was loaded from, for diagnostics.
func (d *Dataset) FilePath() string {
	return d.filePath
}

// ResolveDimension implements spec.md §4.A's four-step resolution order
// for a client-supplied dimension name.
func (d *Dataset) ResolveDimension(name string) (string, error) {
	// 1. literal dimension name
	if _, ok := d.dimensions[name]; ok {
		return name, nil
	}

	// 2. underscore-prefixed canonical name
	if strings.HasPrefix(name, "_") {
		canonical := strings.TrimPrefix(name, "_")
		if fileSpecific, ok := d.aliases[canonical]; ok {
			if _, exists := d.dimensions[fileSpecific]; exists {
				return fileSpecific, nil
			}
		}
	}

	// 3. unprefixed canonical name
	if fileSpecific, ok := d.aliases[name]; ok {
		if _, exists := d.dimensions[fileSpecific]; exists {
			return fileSpecific, nil
		}
	}

	// 4. failure
	return "", &dimensionNotFoundError{name: name, available: d.DimensionNames(), aliases: d.aliases}
}

// dimensionNotFoundError is a small indirection so dataset doesn't need
// to import rerror directly for a single error kind; api and hyperslab
// translate it at their boundary. Kept unexported: callers should treat
// ResolveDimension's error as opaque and use AsDimensionNotFound to build
// a rerror.DimensionNotFound when they need structured access.
type dimensionNotFoundError struct {
	name      string
	available []string
	aliases   map[string]string
}

func (e *dimensionNotFoundError) Error() string {
	return fmt.Sprintf("dimension not found: %s", e.name)
}

// Name, Available and AliasMap expose the fields needed to build a
// rerror.DimensionNotFound at the call site.
func (e *dimensionNotFoundError) Name() string            { return e.name }
func (e *dimensionNotFoundError) Available() []string     { return e.available }
func (e *dimensionNotFoundError) AliasMap() map[string]string { return e.aliases }

// AsDimensionNotFound reports whether err originated from
// ResolveDimension's failure path, returning its detail fields.
func AsDimensionNotFound(err error) (name string, available []string, aliases map[string]string, ok bool) {
	e, ok := err.(*dimensionNotFoundError)
	if !ok {
		return "", nil, nil, false
	}
	return e.Name(), e.Available(), e.AliasMap(), true
}

// TimeDimSize returns the size of the dataset's time dimension, if one
// resolves via ResolveDimension("time"), and 0 otherwise.
func (d *Dataset) TimeDimSize() int {
	fileSpecific, err := d.ResolveDimension("time")
	if err != nil {
		return 0
	}
	dim, ok := d.dimensions[fileSpecific]
	if !ok {
		return 0
	}
	return dim.Size
}

// LatLonBounds searches for latitude/longitude dimensions under their
// canonical and common file-specific names and returns the bounding box
// of their coordinate arrays.
func (d *Dataset) LatLonBounds() (minLon, minLat, maxLon, maxLat float64, err error) {
	lonNames := []string{"lon", "_longitude", "longitude"}
	latNames := []string{"lat", "_latitude", "latitude"}

	lonCoords, lonErr := d.firstResolvableCoordinate(lonNames)
	if lonErr != nil {
		return 0, 0, 0, 0, lonErr
	}
	latCoords, latErr := d.firstResolvableCoordinate(latNames)
	if latErr != nil {
		return 0, 0, 0, 0, latErr
	}

	minLon, maxLon = extent(lonCoords)
	minLat, maxLat = extent(latCoords)
	return minLon, minLat, maxLon, maxLat, nil
}

func (d *Dataset) firstResolvableCoordinate(candidates []string) ([]float64, error) {
	for _, name := range candidates {
		if fileSpecific, err := d.ResolveDimension(name); err == nil {
			if coords, ok := d.coordinates[fileSpecific]; ok {
				return coords, nil
			}
		}
		// Also accept a direct coordinate/dimension match without going
		// through ResolveDimension, since "lon"/"lat" are themselves
		// common file-specific names already covered by step 1 above;
		// this branch exists for completeness when ResolveDimension
		// succeeds but the coordinate map lookup key differs (defensive,
		// should not occur given New's invariants).
		if coords, ok := d.coordinates[name]; ok {
			return coords, nil
		}
	}
	return nil, fmt.Errorf("no resolvable coordinate among %v", candidates)
}

func extent(values []float64) (min, max float64) {
	if len(values) == 0 {
		return 0, 0
	}
	min, max = values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
