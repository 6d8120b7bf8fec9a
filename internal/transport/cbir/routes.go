package cbir

import "net/http"

// Operation names an external call of the retrieval engine.
type Operation string

// Engine operations.
const (
	OpSearch       Operation = "search"
	OpLegacySearch Operation = "legacy_search"
	OpIndex        Operation = "index"
	OpRemove       Operation = "remove"
	OpHealth       Operation = "health"
)

// Route is the HTTP method and base-relative sub-path of an operation.
type Route struct {
	Method string
	Path   string
}

// routes maps every engine operation to its endpoint.
var routes = map[Operation]Route{
	OpSearch:       {Method: http.MethodGet, Path: "retrieval"},
	OpLegacySearch: {Method: http.MethodPost, Path: "retrieval"},
	OpIndex:        {Method: http.MethodPost, Path: "indexing"},
	OpRemove:       {Method: http.MethodPost, Path: "rm"},
	OpHealth:       {Method: http.MethodGet, Path: ""},
}

// RouteOf returns the route of op.
func RouteOf(op Operation) (Route, bool) {
	r, ok := routes[op]
	return r, ok
}

// Query parameter names of the engine contract.
const (
	ParamQuery    = "query"
	ParamK        = "k"
	ParamKBest    = "k_best"
	ParamImageID  = "image_id"
	ParamPath     = "path"
	ParamFilename = "filename"
)
