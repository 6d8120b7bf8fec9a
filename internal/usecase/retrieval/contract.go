package retrieval

import (
	"context"

	"github.com/Bangulli/cytomine/internal/domain/image"
	"github.com/Bangulli/cytomine/internal/domain/search/request"
	"github.com/Bangulli/cytomine/internal/domain/search/result"
)

// Engine is the external retrieval engine.
type Engine interface {
	Search(ctx context.Context, req *request.Request) (result.Response, error)
	LegacySearch(ctx context.Context, req *request.Legacy) (result.Response, error)
	Index(ctx context.Context, img *image.Identity) (image.Reply, error)
	Remove(ctx context.Context, img *image.Identity) (image.Reply, error)
}
