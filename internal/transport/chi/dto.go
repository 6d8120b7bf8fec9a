package chi

// ErrorCode is the machine-readable error code of an API error response.
type ErrorCode string

// API error codes.
const (
	ErrorCodeBadRequest          ErrorCode = "bad_request"
	ErrorCodeValidationFailed    ErrorCode = "validation_failed"
	ErrorCodeUpstreamUnavailable ErrorCode = "upstream_unavailable"
	ErrorCodeNotImplemented      ErrorCode = "not_implemented"
	ErrorCodeNotFound            ErrorCode = "not_found"
	ErrorCodeMethodNotAllowed    ErrorCode = "method_not_allowed"
	ErrorCodeInternalError       ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx API answer produced by the gateway itself.
type ErrorResponse struct {
	Code           ErrorCode `json:"code"`
	Message        string    `json:"message"`
	UpstreamStatus int       `json:"upstream_status,omitempty"`
	UpstreamBody   string    `json:"upstream_body,omitempty"`
}

// ImageRequest is the body of the index and remove endpoints.
type ImageRequest struct {
	ID       int64  `json:"id"`
	Path     string `json:"path"`
	Filename string `json:"filename"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
