package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument signals malformed or missing caller input.
	// Always returned before any network call is attempted.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUpstreamUnavailable signals a transport failure, a timeout or a non-2xx
	// answer from the retrieval engine.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrUpstreamMalformedResponse signals a 2xx answer whose body does not decode
	// into a search response. Recovered into an empty result by the client.
	ErrUpstreamMalformedResponse = errors.New("upstream malformed response")
	// ErrNotImplemented signals an unimplemented feature.
	ErrNotImplemented = errors.New("not implemented")
)

// maxBodyInError caps how much of the upstream body is rendered by Error().
const maxBodyInError = 512

// UpstreamError wraps ErrUpstreamUnavailable with the diagnostics of the failed call.
// StatusCode is 0 when no HTTP response was received (dial error, timeout).
type UpstreamError struct {
	Op         string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", ErrUpstreamUnavailable.Error(), e.Op, e.Err)
		}
		return fmt.Sprintf("%s: %s", ErrUpstreamUnavailable.Error(), e.Op)
	}
	body := e.Body
	if len(body) > maxBodyInError {
		body = body[:maxBodyInError]
	}
	return fmt.Sprintf("%s: %s: status %d: %s", ErrUpstreamUnavailable.Error(), e.Op, e.StatusCode, body)
}

// Unwrap exposes both the sentinel and the underlying cause to errors.Is / errors.As.
func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUpstreamUnavailable}
	}
	return []error{ErrUpstreamUnavailable, e.Err}
}

// NewUpstreamStatus creates an upstream error for a non-2xx answer.
func NewUpstreamStatus(op string, status int, body []byte) error {
	return &UpstreamError{Op: op, StatusCode: status, Body: body}
}

// NewUpstreamFailure creates an upstream error for a call that produced no response.
func NewUpstreamFailure(op string, cause error) error {
	return &UpstreamError{Op: op, Err: cause}
}

// InvalidArgument wraps ErrInvalidArgument with a formatted reason.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
