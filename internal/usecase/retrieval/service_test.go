package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/Bangulli/cytomine/internal/domain"
	"github.com/Bangulli/cytomine/internal/domain/image"
	"github.com/Bangulli/cytomine/internal/domain/search/mode"
	"github.com/Bangulli/cytomine/internal/domain/search/request"
	"github.com/Bangulli/cytomine/internal/domain/search/result"
)

// --- Mocks ---

type mockEngine struct {
	searchFn       func(ctx context.Context, req *request.Request) (result.Response, error)
	legacySearchFn func(ctx context.Context, req *request.Legacy) (result.Response, error)
	indexFn        func(ctx context.Context, img *image.Identity) (image.Reply, error)
	removeFn       func(ctx context.Context, img *image.Identity) (image.Reply, error)
	calls          int
}

func (m *mockEngine) Search(ctx context.Context, req *request.Request) (result.Response, error) {
	m.calls++
	if m.searchFn != nil {
		return m.searchFn(ctx, req)
	}
	return result.Empty(req.Query()), nil
}

func (m *mockEngine) LegacySearch(ctx context.Context, req *request.Legacy) (result.Response, error) {
	m.calls++
	if m.legacySearchFn != nil {
		return m.legacySearchFn(ctx, req)
	}
	return result.Empty(req.Query()), nil
}

func (m *mockEngine) Index(ctx context.Context, img *image.Identity) (image.Reply, error) {
	m.calls++
	if m.indexFn != nil {
		return m.indexFn(ctx, img)
	}
	return image.Reply{StatusCode: 200}, nil
}

func (m *mockEngine) Remove(ctx context.Context, img *image.Identity) (image.Reply, error) {
	m.calls++
	if m.removeFn != nil {
		return m.removeFn(ctx, img)
	}
	return image.Reply{StatusCode: 200}, nil
}

// --- Tests ---

func TestRetrieveSimilarImages_ForwardsNormalizedRequest(t *testing.T) {
	var got *request.Request
	engine := &mockEngine{
		searchFn: func(_ context.Context, req *request.Request) (result.Response, error) {
			got = req
			return result.New(req.Query(), "idx", "st", []result.Match{
				result.NewMatch("A", 0.9), result.NewMatch("B", 0.95),
			}), nil
		},
	}
	svc := New(engine, nil, "query.svs")

	resp, err := svc.RetrieveSimilarImages(context.Background(), SearchParams{
		K:        5,
		Query:    " /data/q.svs ",
		Datasets: []string{"a, b"},
		Organ:    "  ",
		Species:  "human",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Query() != "/data/q.svs" || got.K() != 5 {
		t.Errorf("request = %q/%d", got.Query(), got.K())
	}
	if ds := got.Filters().Datasets(); len(ds) != 2 || ds[0] != "a" || ds[1] != "b" {
		t.Errorf("datasets = %v", ds)
	}
	if got.Filters().Organ() != "" || got.Filters().Species() != "human" {
		t.Errorf("filters = organ %q species %q", got.Filters().Organ(), got.Filters().Species())
	}
	sims := resp.Similarities()
	if len(sims) != 2 || sims[0].ID() != "A" {
		t.Errorf("similarities = %+v", sims)
	}
}

func TestRetrieveSimilarImages_InvalidK(t *testing.T) {
	for _, k := range []int{0, -3, request.MaxK + 1} {
		engine := &mockEngine{}
		svc := New(engine, nil, "query.svs")

		_, err := svc.RetrieveSimilarImages(context.Background(), SearchParams{K: k, Query: "q"})
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("k=%d: expected ErrInvalidArgument, got %v", k, err)
		}
		if engine.calls != 0 {
			t.Errorf("k=%d: engine called %d times, want 0", k, engine.calls)
		}
	}
}

func TestRetrieveSimilarImages_EngineError(t *testing.T) {
	engine := &mockEngine{
		searchFn: func(context.Context, *request.Request) (result.Response, error) {
			return result.Response{}, domain.NewUpstreamStatus("search", 500, []byte("boom"))
		},
	}
	svc := New(engine, nil, "query.svs")

	_, err := svc.RetrieveSimilarImages(context.Background(), SearchParams{K: 1})
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	var upErr *domain.UpstreamError
	if !errors.As(err, &upErr) || upErr.StatusCode != 500 {
		t.Errorf("expected status 500 to survive wrapping, got %v", err)
	}
}

func TestRetrieveSimilarImages_ModeDisabled(t *testing.T) {
	modes, err := mode.ParseSet([]string{"legacy"})
	if err != nil {
		t.Fatalf("ParseSet: %v", err)
	}
	engine := &mockEngine{}
	svc := New(engine, modes, "query.svs")

	_, err = svc.RetrieveSimilarImages(context.Background(), SearchParams{K: 1})
	if !errors.Is(err, domain.ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}
	if engine.calls != 0 {
		t.Errorf("engine called %d times, want 0", engine.calls)
	}
}

func TestRetrieveSimilarImagesLegacy(t *testing.T) {
	var got *request.Legacy
	engine := &mockEngine{
		legacySearchFn: func(_ context.Context, req *request.Legacy) (result.Response, error) {
			got = req
			return result.Empty(req.Query()), nil
		},
	}
	svc := New(engine, nil, "/slides/query.svs")

	if _, err := svc.RetrieveSimilarImagesLegacy(context.Background(), 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Query() != "/slides/query.svs" {
		t.Errorf("query = %q", got.Query())
	}
	if got.KBest() != 3 || got.UpstreamK() != 4 {
		t.Errorf("kBest/upstream = %d/%d, want 3/4", got.KBest(), got.UpstreamK())
	}
}

func TestRetrieveSimilarImagesLegacy_InvalidKBest(t *testing.T) {
	engine := &mockEngine{}
	svc := New(engine, nil, "query.svs")

	_, err := svc.RetrieveSimilarImagesLegacy(context.Background(), 0)
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if engine.calls != 0 {
		t.Errorf("engine called %d times, want 0", engine.calls)
	}
}

func TestRetrieveSimilarImagesLegacy_ModeDisabled(t *testing.T) {
	modes, err := mode.ParseSet([]string{"filtered"})
	if err != nil {
		t.Fatalf("ParseSet: %v", err)
	}
	svc := New(&mockEngine{}, modes, "query.svs")

	_, err = svc.RetrieveSimilarImagesLegacy(context.Background(), 2)
	if !errors.Is(err, domain.ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}
}

func TestIndexImage(t *testing.T) {
	var got *image.Identity
	engine := &mockEngine{
		indexFn: func(_ context.Context, img *image.Identity) (image.Reply, error) {
			got = img
			return image.Reply{StatusCode: 201, Body: []byte("queued")}, nil
		},
	}
	svc := New(engine, nil, "query.svs")

	reply, err := svc.IndexImage(context.Background(), 12, "/data", "x.svs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID() != 12 || got.Path() != "/data" || got.Filename() != "x.svs" {
		t.Errorf("identity = %d %q %q", got.ID(), got.Path(), got.Filename())
	}
	if reply.StatusCode != 201 || string(reply.Body) != "queued" {
		t.Errorf("reply = %d %q, want engine answer relayed", reply.StatusCode, reply.Body)
	}
}

func TestIndexAndRemove_MissingField(t *testing.T) {
	tests := []struct {
		name     string
		id       int64
		path     string
		filename string
	}{
		{"missing id", 0, "/data", "x.svs"},
		{"missing path", 1, "", "x.svs"},
		{"missing filename", 1, "/data", " "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &mockEngine{}
			svc := New(engine, nil, "query.svs")

			if _, err := svc.IndexImage(context.Background(), tt.id, tt.path, tt.filename); !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("IndexImage: expected ErrInvalidArgument, got %v", err)
			}
			if _, err := svc.RemoveImage(context.Background(), tt.id, tt.path, tt.filename); !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("RemoveImage: expected ErrInvalidArgument, got %v", err)
			}
			if engine.calls != 0 {
				t.Errorf("engine called %d times, want 0", engine.calls)
			}
		})
	}
}

func TestRemoveImage_EngineError(t *testing.T) {
	engine := &mockEngine{
		removeFn: func(context.Context, *image.Identity) (image.Reply, error) {
			return image.Reply{}, domain.NewUpstreamStatus("remove", 404, []byte("unknown image"))
		},
	}
	svc := New(engine, nil, "query.svs")

	_, err := svc.RemoveImage(context.Background(), 3, "/data", "x.svs")
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if engine.calls != 1 {
		t.Errorf("engine called %d times, want 1", engine.calls)
	}
}
