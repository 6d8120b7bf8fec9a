package request

import (
	"strings"

	"github.com/Bangulli/cytomine/internal/domain"
)

// Legacy is a validated fixed-query search of the older engine generation.
// The engine counts the query slide among its own matches, so one extra
// match is always requested.
type Legacy struct {
	query string
	kBest int
}

// NewLegacy validates legacy search parameters. query is the deployment's fixed
// query image path.
func NewLegacy(query string, kBest int) (Legacy, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Legacy{}, domain.InvalidArgument("legacy query path is required")
	}
	if kBest <= 0 {
		return Legacy{}, domain.InvalidArgument("k_best must be a positive integer, got %d", kBest)
	}
	if kBest >= MaxK {
		return Legacy{}, domain.InvalidArgument("k_best must be below %d, got %d", MaxK, kBest)
	}
	return Legacy{query: query, kBest: kBest}, nil
}

// Query returns the fixed query image path.
func (l *Legacy) Query() string { return l.query }

// KBest returns the number of matches asked for by the caller.
func (l *Legacy) KBest() int { return l.kBest }

// UpstreamK returns the bound sent to the engine (KBest + 1).
func (l *Legacy) UpstreamK() int { return l.kBest + 1 }
