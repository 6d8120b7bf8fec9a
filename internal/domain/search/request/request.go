package request

import (
	"strings"

	"github.com/Bangulli/cytomine/internal/domain"
	"github.com/Bangulli/cytomine/internal/domain/search/filter"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed query image reference length.
	MaxQueryLength = 4096
	// MaxK bounds the number of requested matches.
	MaxK = 1000
)

// Request is a validated similarity search: a query image reference, the number of
// matches to return and the optional metadata filters.
type Request struct {
	query   string
	k       int
	filters filter.Metadata
}

// New validates search parameters. The query reference is optional: a search with
// filters only is forwarded and left to the engine to answer.
func New(query string, k int, filters filter.Metadata) (Request, error) {
	query = strings.TrimSpace(query)
	if len(query) > MaxQueryLength {
		return Request{}, domain.InvalidArgument("query too long (max %d chars)", MaxQueryLength)
	}
	if k <= 0 {
		return Request{}, domain.InvalidArgument("k must be a positive integer, got %d", k)
	}
	if k > MaxK {
		return Request{}, domain.InvalidArgument("k must not exceed %d, got %d", MaxK, k)
	}
	return Request{query: query, k: k, filters: filters}, nil
}

// Query returns the query image reference (path or opaque identifier), possibly empty.
func (r *Request) Query() string { return r.query }

// K returns the number of matches requested.
func (r *Request) K() int { return r.k }

// Filters returns the metadata filters.
func (r *Request) Filters() filter.Metadata { return r.filters }
