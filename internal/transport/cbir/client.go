package cbir

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/Bangulli/cytomine/internal/domain"
	"github.com/Bangulli/cytomine/internal/domain/image"
	"github.com/Bangulli/cytomine/internal/domain/search/request"
	"github.com/Bangulli/cytomine/internal/domain/search/result"
	"github.com/Bangulli/cytomine/internal/logger"
	"github.com/Bangulli/cytomine/internal/metrics"
)

// HeaderRequestID carries the correlation id to the engine.
const HeaderRequestID = "X-Request-ID"

const (
	defaultTimeout = 60 * time.Second
	// maxResponseBytes caps how much of an engine body is read.
	maxResponseBytes = 32 << 20
	// maxLoggedBody caps raw bodies written to debug logs.
	maxLoggedBody = 1024
)

// Config holds the retrieval engine client settings.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	// RateLimit is the sustained outbound rate in requests per second. Zero disables throttling.
	RateLimit float64
	Burst     int
	// MaxInFlight bounds concurrent engine calls. Zero means unbounded.
	MaxInFlight int64
	Logger      *zap.Logger
}

// Client talks to the retrieval engine. Safe for concurrent use.
type Client struct {
	builder *Builder
	http    *http.Client
	timeout time.Duration
	limiter *rate.Limiter
	slots   *semaphore.Weighted
	logger  *zap.Logger
}

// NewClient creates a retrieval engine client.
func NewClient(cfg *Config) (*Client, error) {
	builder, err := NewBuilder(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	c := &Client{
		builder: builder,
		http:    httpClient,
		timeout: timeout,
		logger:  log,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	if cfg.MaxInFlight > 0 {
		c.slots = semaphore.NewWeighted(cfg.MaxInFlight)
	}
	return c, nil
}

// BaseURL returns the engine base URL.
func (c *Client) BaseURL() string { return c.builder.BaseURL() }

// Search runs the filtered similarity search. A 2xx body that cannot be decoded
// is logged and answered with an empty response.
func (c *Client) Search(ctx context.Context, req *request.Request) (result.Response, error) {
	target, err := c.builder.Search(req)
	if err != nil {
		return result.Response{}, err
	}
	return c.search(ctx, target, req.Query())
}

// LegacySearch runs the fixed-query search of the older engine generation.
func (c *Client) LegacySearch(ctx context.Context, req *request.Legacy) (result.Response, error) {
	target, err := c.builder.LegacySearch(req)
	if err != nil {
		return result.Response{}, err
	}
	return c.search(ctx, target, req.Query())
}

// Index adds an image to the engine's index.
func (c *Client) Index(ctx context.Context, img *image.Identity) (image.Reply, error) {
	target, err := c.builder.Index(img)
	if err != nil {
		return image.Reply{}, err
	}
	return c.relay(ctx, target)
}

// Remove removes an image from the engine's index.
func (c *Client) Remove(ctx context.Context, img *image.Identity) (image.Reply, error) {
	target, err := c.builder.Remove(img)
	if err != nil {
		return image.Reply{}, err
	}
	return c.relay(ctx, target)
}

// HealthCheck probes the engine base URL. Any answer below 500 counts as reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	target, err := c.builder.Health()
	if err != nil {
		return err
	}
	resp, err := c.roundTrip(ctx, target)
	if err != nil {
		return err
	}
	if resp.status >= http.StatusInternalServerError {
		return domain.NewUpstreamStatus(string(target.Operation), resp.status, resp.body)
	}
	return nil
}

func (c *Client) search(ctx context.Context, target Target, query string) (result.Response, error) {
	resp, err := c.do(ctx, target)
	if err != nil {
		return result.Response{}, err
	}

	op := string(target.Operation)
	decoded, err := decodeSearch(resp.body, query)
	if err != nil {
		metrics.UpstreamMalformedTotal.WithLabelValues(op).Inc()
		logger.FromContext(ctx, c.logger).Warn("malformed engine response, returning empty result",
			zap.String("operation", op),
			zap.String("target", target.String()),
			zap.Int("status", resp.status),
			zap.ByteString("body", truncate(resp.body, maxLoggedBody)),
			zap.Error(err),
		)
		return result.Empty(query), nil
	}

	metrics.UpstreamMatchesReturned.WithLabelValues(op).Observe(float64(decoded.Len()))
	return decoded, nil
}

func (c *Client) relay(ctx context.Context, target Target) (image.Reply, error) {
	resp, err := c.do(ctx, target)
	if err != nil {
		return image.Reply{}, err
	}
	return image.Reply{StatusCode: resp.status, ContentType: resp.contentType, Body: resp.body}, nil
}

type upstreamResponse struct {
	status      int
	contentType string
	body        []byte
}

// do performs the call and turns non-2xx answers into upstream errors.
func (c *Client) do(ctx context.Context, target Target) (upstreamResponse, error) {
	resp, err := c.roundTrip(ctx, target)
	if err != nil {
		return upstreamResponse{}, err
	}
	if resp.status < 200 || resp.status > 299 {
		return upstreamResponse{}, domain.NewUpstreamStatus(string(target.Operation), resp.status, resp.body)
	}
	return resp, nil
}

// roundTrip issues exactly one request and records the outcome.
func (c *Client) roundTrip(ctx context.Context, target Target) (upstreamResponse, error) {
	op := string(target.Operation)
	log := logger.FromContext(ctx, c.logger)

	// The timeout covers waiting for the limiter and a call slot.
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			metrics.UpstreamRequestsTotal.WithLabelValues(op, outcomeOf(err)).Inc()
			return upstreamResponse{}, domain.NewUpstreamFailure(op, fmt.Errorf("rate limit wait: %w", err))
		}
	}
	if c.slots != nil {
		if err := c.slots.Acquire(ctx, 1); err != nil {
			metrics.UpstreamRequestsTotal.WithLabelValues(op, outcomeOf(err)).Inc()
			return upstreamResponse{}, domain.NewUpstreamFailure(op, fmt.Errorf("wait for call slot: %w", err))
		}
		defer c.slots.Release(1)
	}

	req, err := http.NewRequestWithContext(ctx, target.Method, target.URL.String(), http.NoBody)
	if err != nil {
		return upstreamResponse{}, fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, requestID(ctx))

	log.Debug("calling retrieval engine", zap.String("operation", op), zap.String("target", target.String()))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(op, outcomeOf(err)).Inc()
		metrics.UpstreamRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		return upstreamResponse{}, domain.NewUpstreamFailure(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	metrics.UpstreamRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(op, outcomeOf(err)).Inc()
		return upstreamResponse{}, domain.NewUpstreamFailure(op, fmt.Errorf("read body: %w", err))
	}

	outcome := metrics.OutcomeSuccess
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = metrics.OutcomeStatus
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(op, outcome).Inc()

	log.Debug("retrieval engine answered",
		zap.String("operation", op),
		zap.Int("status", resp.StatusCode),
		zap.ByteString("body", truncate(body, maxLoggedBody)),
	)

	return upstreamResponse{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        body,
	}, nil
}

// outcomeOf classifies a failed call for the outcome metric label.
func outcomeOf(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return metrics.OutcomeTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return metrics.OutcomeTimeout
	}
	return metrics.OutcomeTransport
}

func requestID(ctx context.Context) string {
	if id := logger.RequestIDFromContext(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
