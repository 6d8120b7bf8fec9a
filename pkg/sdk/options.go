package cytomine

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	timeout     time.Duration
	httpClient  *http.Client
	legacyQuery string
	modes       []SearchMode

	rateLimit   float64
	burst       int
	maxInFlight int64

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithTimeout bounds every engine call. Default: 60s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithHTTPClient sets the HTTP client used for engine calls.
// It must be safe for concurrent use; http.Client always is.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithLegacyQuery sets the fixed query image path of LegacySearch.
// Default: "query.svs".
func WithLegacyQuery(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.legacyQuery = path
	})
}

// WithSearchModes restricts the search encodings the deployment accepts.
// Default: all modes. A disabled mode fails with ErrNotImplemented.
func WithSearchModes(modes ...SearchMode) Option {
	return optionFunc(func(c *clientConfig) {
		c.modes = modes
	})
}

// WithRateLimit throttles outbound engine calls to rps requests per second.
// Default: no throttling.
func WithRateLimit(rps float64, burst int) Option {
	return optionFunc(func(c *clientConfig) {
		c.rateLimit = rps
		c.burst = burst
	})
}

// WithMaxInFlight bounds concurrent engine calls made through this Client.
// Default: unbounded.
func WithMaxInFlight(n int64) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxInFlight = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
