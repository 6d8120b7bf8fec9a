package cytomine

import "github.com/Bangulli/cytomine/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidArgument           = domain.ErrInvalidArgument
	ErrUpstreamUnavailable       = domain.ErrUpstreamUnavailable
	ErrUpstreamMalformedResponse = domain.ErrUpstreamMalformedResponse
	ErrNotImplemented            = domain.ErrNotImplemented
)

// UpstreamError carries the engine's status code and body. Use errors.As() to extract it.
type UpstreamError = domain.UpstreamError
