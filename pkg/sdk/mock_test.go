package cytomine

import (
	"context"

	"github.com/Bangulli/cytomine/internal/domain/image"
	"github.com/Bangulli/cytomine/internal/domain/search/result"
	retrievaluc "github.com/Bangulli/cytomine/internal/usecase/retrieval"
)

// --- retrievalUseCase mock ---

type mockRetrievalUC struct {
	searchFn func(ctx context.Context, p retrievaluc.SearchParams) (result.Response, error)
	legacyFn func(ctx context.Context, kBest int) (result.Response, error)
	indexFn  func(ctx context.Context, id int64, path, filename string) (image.Reply, error)
	removeFn func(ctx context.Context, id int64, path, filename string) (image.Reply, error)
}

func (m *mockRetrievalUC) RetrieveSimilarImages(
	ctx context.Context, p retrievaluc.SearchParams,
) (result.Response, error) {
	return m.searchFn(ctx, p)
}

func (m *mockRetrievalUC) RetrieveSimilarImagesLegacy(ctx context.Context, kBest int) (result.Response, error) {
	return m.legacyFn(ctx, kBest)
}

func (m *mockRetrievalUC) IndexImage(ctx context.Context, id int64, path, filename string) (image.Reply, error) {
	return m.indexFn(ctx, id, path, filename)
}

func (m *mockRetrievalUC) RemoveImage(ctx context.Context, id int64, path, filename string) (image.Reply, error) {
	return m.removeFn(ctx, id, path, filename)
}

// --- pinger mock ---

type mockPinger struct {
	err error
}

func (m *mockPinger) HealthCheck(_ context.Context) error { return m.err }
