// Package docs holds the generated swagger spec for rossby's HTTP
// surface, in the shape swag produces from the @-comments above each
// handler in api/endpoint.go. Hand-maintained here rather than
// regenerated, so keep it in sync when a route's parameters change.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/metadata": {
            "get": {
                "produces": ["application/json"],
                "tags": ["metadata"],
                "summary": "Return the dataset's global attributes, dimensions, variables and coordinates",
                "responses": {
                    "200": { "description": "OK" }
                }
            }
        },
        "/point": {
            "get": {
                "produces": ["application/json"],
                "tags": ["point"],
                "summary": "Interpolate one or more variables at a physical lon/lat",
                "parameters": [
                    { "type": "number", "name": "lon", "in": "query", "required": true },
                    { "type": "number", "name": "lat", "in": "query", "required": true },
                    { "type": "string", "name": "vars", "in": "query", "required": true },
                    { "type": "string", "name": "interpolation", "in": "query" }
                ],
                "responses": {
                    "200": { "description": "OK" },
                    "400": { "description": "invalid request" }
                }
            }
        },
        "/data": {
            "get": {
                "produces": ["application/vnd.apache.arrow.stream", "application/json"],
                "tags": ["data"],
                "summary": "Extract a hyperslab of one or more variables",
                "parameters": [
                    { "type": "string", "name": "vars", "in": "query", "required": true },
                    { "type": "string", "name": "layout", "in": "query" },
                    { "type": "string", "name": "format", "in": "query" }
                ],
                "responses": {
                    "200": { "description": "OK" },
                    "413": { "description": "requested hyperslab exceeds max_data_points" }
                }
            }
        },
        "/image": {
            "get": {
                "produces": ["image/png", "image/jpeg"],
                "tags": ["image"],
                "summary": "Render a variable's lat/lon slab as a colormapped image",
                "parameters": [
                    { "type": "string", "name": "var", "in": "query", "required": true },
                    { "type": "string", "name": "bbox", "in": "query", "required": true },
                    { "type": "integer", "name": "width", "in": "query" },
                    { "type": "integer", "name": "height", "in": "query" },
                    { "type": "string", "name": "colormap", "in": "query" },
                    { "type": "string", "name": "resampling", "in": "query" },
                    { "type": "string", "name": "format", "in": "query" },
                    { "type": "string", "name": "center", "in": "query" },
                    { "type": "boolean", "name": "wrap_longitude", "in": "query" }
                ],
                "responses": {
                    "200": { "description": "OK" },
                    "400": { "description": "invalid request" }
                }
            }
        },
        "/heartbeat": {
            "get": {
                "produces": ["application/json"],
                "tags": ["heartbeat"],
                "summary": "Report server identity, uptime and the loaded dataset",
                "responses": {
                    "200": { "description": "OK" }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported swagger spec metadata, registered with swag
// in init so the /swagger route can serve it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "rossby",
	Description:      "Serves gridded NetCDF data over HTTP: point interpolation, hyperslab extraction and map-image rendering.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
