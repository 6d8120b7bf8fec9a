package cytomine

import (
	"context"
	"fmt"
	"time"

	"github.com/Bangulli/cytomine/internal/domain/image"
	"github.com/Bangulli/cytomine/internal/domain/search/mode"
	"github.com/Bangulli/cytomine/internal/domain/search/result"
	"github.com/Bangulli/cytomine/internal/transport/cbir"
	healthuc "github.com/Bangulli/cytomine/internal/usecase/health"
	retrievaluc "github.com/Bangulli/cytomine/internal/usecase/retrieval"
)

const (
	defaultTimeout     = 60 * time.Second
	defaultLegacyQuery = "query.svs"
)

// Internal interfaces for substitution in tests.
type retrievalUseCase interface {
	RetrieveSimilarImages(ctx context.Context, p retrievaluc.SearchParams) (result.Response, error)
	RetrieveSimilarImagesLegacy(ctx context.Context, kBest int) (result.Response, error)
	IndexImage(ctx context.Context, id int64, path, filename string) (image.Reply, error)
	RemoveImage(ctx context.Context, id int64, path, filename string) (image.Reply, error)
}

type pinger interface {
	HealthCheck(ctx context.Context) error
}

// Client is the SDK entry point. Safe for concurrent use.
type Client struct {
	baseURL      string
	retrievalSvc retrievalUseCase
	healthSvc    healthUseCase
	engine       pinger
	obs          *observer
}

// New creates a Client for the retrieval engine at baseURL (e.g. "http://wsi-cbir:6001/api").
// No network call is made.
func New(baseURL string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		timeout:     defaultTimeout,
		legacyQuery: defaultLegacyQuery,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	modes, err := parseModes(cfg.modes)
	if err != nil {
		return nil, fmt.Errorf("cytomine: %w", err)
	}

	engine, err := cbir.NewClient(&cbir.Config{
		BaseURL:     baseURL,
		Timeout:     cfg.timeout,
		HTTPClient:  cfg.httpClient,
		RateLimit:   cfg.rateLimit,
		Burst:       cfg.burst,
		MaxInFlight: cfg.maxInFlight,
	})
	if err != nil {
		return nil, fmt.Errorf("cytomine: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL:      engine.BaseURL(),
		retrievalSvc: retrievaluc.New(engine, modes, cfg.legacyQuery),
		healthSvc:    healthuc.New(engine),
		engine:       engine,
		obs:          obs,
	}, nil
}

func parseModes(raw []SearchMode) (mode.Set, error) {
	names := make([]string, len(raw))
	for i, m := range raw {
		names[i] = string(m)
	}
	set, err := mode.ParseSet(names)
	if err != nil {
		return nil, fmt.Errorf("search modes: %w", err)
	}
	return set, nil
}

// BaseURL returns the engine base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Ping checks that the engine answers below 500.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.engine.HealthCheck(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Search runs a filtered similarity search for p.K matches.
func (c *Client) Search(ctx context.Context, p SearchParams) (res SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	resp, err := c.retrievalSvc.RetrieveSimilarImages(ctx, retrievaluc.SearchParams{
		K:         p.K,
		Query:     p.Query,
		Datasets:  p.Datasets,
		Staining:  p.Staining,
		Organ:     p.Organ,
		Species:   p.Species,
		Diagnosis: p.Diagnosis,
	})
	if err != nil {
		return SearchResult{}, err
	}
	return fromResponse(&resp), nil
}

// LegacySearch runs the fixed-query search for kBest matches.
func (c *Client) LegacySearch(ctx context.Context, kBest int) (res SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("legacy_search", start, err) }()

	resp, err := c.retrievalSvc.RetrieveSimilarImagesLegacy(ctx, kBest)
	if err != nil {
		return SearchResult{}, err
	}
	return fromResponse(&resp), nil
}

// Index adds img to the engine's index.
func (c *Client) Index(ctx context.Context, img Image) (reply Reply, err error) {
	start := time.Now()
	defer func() { c.obs.observe("index", start, err) }()

	r, err := c.retrievalSvc.IndexImage(ctx, img.ID, img.Path, img.Filename)
	if err != nil {
		return Reply{}, err
	}
	return fromReply(r), nil
}

// Remove removes img from the engine's index.
func (c *Client) Remove(ctx context.Context, img Image) (reply Reply, err error) {
	start := time.Now()
	defer func() { c.obs.observe("remove", start, err) }()

	r, err := c.retrievalSvc.RemoveImage(ctx, img.ID, img.Path, img.Filename)
	if err != nil {
		return Reply{}, err
	}
	return fromReply(r), nil
}

func fromResponse(r *result.Response) SearchResult {
	sims := r.Similarities()
	out := SearchResult{
		Query:        r.Query(),
		Index:        r.Index(),
		Storage:      r.Storage(),
		Similarities: make([]Match, len(sims)),
	}
	for i := range sims {
		out.Similarities[i] = Match{ID: sims[i].ID(), Score: sims[i].Score()}
	}
	return out
}

func fromReply(r image.Reply) Reply {
	return Reply{StatusCode: r.StatusCode, ContentType: r.ContentType, Body: r.Body}
}
