// Package rerror defines the error taxonomy shared by every rossby
// component. Each kind is its own type so callers can recover structured
// detail with errors.As instead of parsing messages.
package rerror

import (
	"fmt"
	"net/http"
)

// InvalidParameter covers a malformed or unrecognized query parameter.
type InvalidParameter struct {
	Param   string
	Message string
}

func (e *InvalidParameter) Error() string {
	return fmt.Sprintf("invalid parameter: %s - %s", e.Param, e.Message)
}

// DimensionNotFound is returned by the dimension resolver when a client
// supplied name cannot be resolved directly or via the alias map. It
// carries enough context for an operator to fix the query or the config.
type DimensionNotFound struct {
	Name      string
	Available []string
	Aliases   map[string]string
}

func (e *DimensionNotFound) Error() string {
	return fmt.Sprintf(
		"dimension not found: %s. available dimensions: %v. "+
			"if using a canonical name, try it with an underscore prefix "+
			"(e.g. '_latitude') or configure data.dimension_aliases",
		e.Name, e.Available,
	)
}

// VariableNotFound covers a single missing variable.
type VariableNotFound struct {
	Name string
}

func (e *VariableNotFound) Error() string {
	return fmt.Sprintf("variable not found: %s", e.Name)
}

// InvalidVariables covers a batch of missing variables in one request.
type InvalidVariables struct {
	Names []string
}

func (e *InvalidVariables) Error() string {
	return fmt.Sprintf("invalid variable(s): %v", e.Names)
}

// InvalidCoordinates covers a physical coordinate outside an axis' range.
type InvalidCoordinates struct {
	Message string
}

func (e *InvalidCoordinates) Error() string {
	return fmt.Sprintf("invalid coordinates: %s", e.Message)
}

// PhysicalValueNotFound is returned by exact-index lookup when no
// coordinate matches within machine epsilon.
type PhysicalValueNotFound struct {
	Dimension string
	Value     float64
	Available []float64
}

func (e *PhysicalValueNotFound) Error() string {
	return fmt.Sprintf(
		"physical value not found: %s=%v. available values: %v",
		e.Dimension, e.Value, e.Available,
	)
}

// IndexOutOfBounds covers an integer index selector outside [0, Max];
// Max is the largest valid index.
type IndexOutOfBounds struct {
	Param string
	Value string
	Max   int
}

func (e *IndexOutOfBounds) Error() string {
	return fmt.Sprintf("index out of bounds: %s=%s, max allowed is %d", e.Param, e.Value, e.Max)
}

// Interpolation covers shape/dimension mismatches inside a kernel.
type Interpolation struct {
	Message string
}

func (e *Interpolation) Error() string {
	return fmt.Sprintf("interpolation error: %s", e.Message)
}

// ImageGeneration covers failures in the rendering pipeline that aren't
// better described by a more specific kind.
type ImageGeneration struct {
	Message string
}

func (e *ImageGeneration) Error() string {
	return fmt.Sprintf("image generation error: %s", e.Message)
}

// VariableNotSuitableForImage is returned when /image is asked to render
// a variable without resolvable latitude and longitude dimensions.
type VariableNotSuitableForImage struct {
	Name string
}

func (e *VariableNotSuitableForImage) Error() string {
	return fmt.Sprintf(
		"variable %s is not suitable for image rendering: it must have "+
			"resolvable latitude and longitude dimensions", e.Name,
	)
}

// PayloadTooLarge is returned by the hyperslab extractor's budget guard.
type PayloadTooLarge struct {
	Message   string
	Requested int
	MaxAllowed int
}

func (e *PayloadTooLarge) Error() string {
	return fmt.Sprintf(
		"payload too large: %s. requested points: %d, maximum allowed: %d",
		e.Message, e.Requested, e.MaxAllowed,
	)
}

// ConfigError covers invalid configuration and loader failures at startup.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// ServerError is the catch-all for conditions that indicate a bug rather
// than a bad request.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: %s", e.Message)
}

// HTTPStatus maps a rossby error to the status code it must be reported
// with over HTTP (spec.md §7). PayloadTooLarge maps to 413; ConfigError,
// ServerError and unrecognized error types map to 500; every other kind
// maps to 400.
func HTTPStatus(err error) int {
	switch err.(type) {
	case *PayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case *InvalidParameter,
		*DimensionNotFound,
		*VariableNotFound,
		*InvalidVariables,
		*InvalidCoordinates,
		*PhysicalValueNotFound,
		*IndexOutOfBounds,
		*Interpolation,
		*ImageGeneration,
		*VariableNotSuitableForImage:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
