package cbir

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/Bangulli/cytomine/internal/config"
	"github.com/Bangulli/cytomine/internal/domain"
	"github.com/Bangulli/cytomine/internal/domain/image"
	"github.com/Bangulli/cytomine/internal/domain/search/request"
)

// Target is a fully-qualified outbound request description.
type Target struct {
	Operation Operation
	Method    string
	URL       *url.URL
}

// String returns the method and URL, e.g. "GET http://cbir/api/retrieval?k=3".
func (t Target) String() string {
	return t.Method + " " + t.URL.String()
}

// Builder maps validated domain values to engine requests. It performs no I/O.
type Builder struct {
	base *url.URL
}

// NewBuilder validates the engine base URL.
func NewBuilder(baseURL string) (*Builder, error) {
	if err := config.ValidateBaseURL(baseURL); err != nil {
		return nil, fmt.Errorf("cbir base url: %w", err)
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("cbir base url: %w", err)
	}
	return &Builder{base: u}, nil
}

// BaseURL returns the configured base URL.
func (b *Builder) BaseURL() string { return b.base.String() }

// Search builds the filtered GET search. Only present filters are encoded.
func (b *Builder) Search(req *request.Request) (Target, error) {
	if req == nil || req.K() <= 0 {
		return Target{}, domain.InvalidArgument("k must be a positive integer")
	}

	params := url.Values{}
	if req.Query() != "" {
		params.Set(ParamQuery, req.Query())
	}
	for _, p := range req.Filters().Present() {
		params.Set(p.Key, p.Value)
	}
	params.Set(ParamK, strconv.Itoa(req.K()))

	return b.target(OpSearch, params)
}

// LegacySearch builds the fixed-query POST search with the k_best+1 bound.
func (b *Builder) LegacySearch(req *request.Legacy) (Target, error) {
	if req == nil || req.KBest() <= 0 {
		return Target{}, domain.InvalidArgument("k_best must be a positive integer")
	}
	if req.Query() == "" {
		return Target{}, domain.InvalidArgument("legacy query path is required")
	}

	params := url.Values{}
	params.Set(ParamQuery, req.Query())
	params.Set(ParamKBest, strconv.Itoa(req.UpstreamK()))

	return b.target(OpLegacySearch, params)
}

// Index builds the add-to-index call.
func (b *Builder) Index(img *image.Identity) (Target, error) {
	return b.imageTarget(OpIndex, img)
}

// Remove builds the remove-from-index call.
func (b *Builder) Remove(img *image.Identity) (Target, error) {
	return b.imageTarget(OpRemove, img)
}

// Health builds the reachability probe against the base URL.
func (b *Builder) Health() (Target, error) {
	return b.target(OpHealth, nil)
}

func (b *Builder) imageTarget(op Operation, img *image.Identity) (Target, error) {
	if img == nil || img.ID() == 0 || img.Path() == "" || img.Filename() == "" {
		return Target{}, domain.InvalidArgument("image_id, path and filename are required")
	}

	params := url.Values{}
	params.Set(ParamImageID, strconv.FormatInt(img.ID(), 10))
	params.Set(ParamPath, img.Path())
	params.Set(ParamFilename, img.Filename())

	return b.target(op, params)
}

func (b *Builder) target(op Operation, params url.Values) (Target, error) {
	route, ok := RouteOf(op)
	if !ok {
		return Target{}, fmt.Errorf("no route for operation %q: %w", op, domain.ErrNotImplemented)
	}

	var u *url.URL
	if route.Path != "" {
		u = b.base.JoinPath(route.Path)
	} else {
		copied := *b.base
		u = &copied
	}
	u.RawQuery = params.Encode()

	return Target{Operation: op, Method: route.Method, URL: u}, nil
}
