package retrieval

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Bangulli/cytomine/internal/domain"
	"github.com/Bangulli/cytomine/internal/domain/image"
	"github.com/Bangulli/cytomine/internal/domain/search/filter"
	"github.com/Bangulli/cytomine/internal/domain/search/mode"
	"github.com/Bangulli/cytomine/internal/domain/search/request"
	"github.com/Bangulli/cytomine/internal/domain/search/result"
	"github.com/Bangulli/cytomine/internal/logger"
)

// SearchParams are the raw caller inputs of a filtered similarity search.
type SearchParams struct {
	K         int
	Query     string
	Datasets  []string
	Staining  string
	Organ     string
	Species   string
	Diagnosis string
}

// Service validates caller input and forwards it to the retrieval engine.
// It keeps no state between calls.
type Service struct {
	engine      Engine
	modes       mode.Set
	legacyQuery string
}

// New creates a retrieval service. A nil modes set enables every search mode.
func New(engine Engine, modes mode.Set, legacyQuery string) *Service {
	return &Service{engine: engine, modes: modes, legacyQuery: legacyQuery}
}

// RetrieveSimilarImages runs the filtered search.
func (s *Service) RetrieveSimilarImages(ctx context.Context, p SearchParams) (result.Response, error) {
	if !s.modes.Enabled(mode.Filtered) {
		return result.Response{}, fmt.Errorf("%s search: %w", mode.Filtered, domain.ErrNotImplemented)
	}

	filters := filter.NewMetadata(p.Datasets, p.Staining, p.Organ, p.Species, p.Diagnosis)
	req, err := request.New(p.Query, p.K, filters)
	if err != nil {
		return result.Response{}, err
	}

	resp, err := s.engine.Search(ctx, &req)
	if err != nil {
		return result.Response{}, fmt.Errorf("search: %w", err)
	}
	logSummary(ctx, mode.Filtered, &resp)
	return resp, nil
}

// RetrieveSimilarImagesLegacy runs the fixed-query search for kBest matches.
func (s *Service) RetrieveSimilarImagesLegacy(ctx context.Context, kBest int) (result.Response, error) {
	if !s.modes.Enabled(mode.Legacy) {
		return result.Response{}, fmt.Errorf("%s search: %w", mode.Legacy, domain.ErrNotImplemented)
	}

	req, err := request.NewLegacy(s.legacyQuery, kBest)
	if err != nil {
		return result.Response{}, err
	}

	resp, err := s.engine.LegacySearch(ctx, &req)
	if err != nil {
		return result.Response{}, fmt.Errorf("legacy search: %w", err)
	}
	logSummary(ctx, mode.Legacy, &resp)
	return resp, nil
}

// IndexImage adds an image to the engine's index and relays the engine's answer.
func (s *Service) IndexImage(ctx context.Context, id int64, path, filename string) (image.Reply, error) {
	img, err := image.New(id, path, filename)
	if err != nil {
		return image.Reply{}, err
	}
	reply, err := s.engine.Index(ctx, &img)
	if err != nil {
		return image.Reply{}, fmt.Errorf("index image %d: %w", id, err)
	}
	return reply, nil
}

// RemoveImage removes an image from the engine's index and relays the engine's answer.
func (s *Service) RemoveImage(ctx context.Context, id int64, path, filename string) (image.Reply, error) {
	img, err := image.New(id, path, filename)
	if err != nil {
		return image.Reply{}, err
	}
	reply, err := s.engine.Remove(ctx, &img)
	if err != nil {
		return image.Reply{}, fmt.Errorf("remove image %d: %w", id, err)
	}
	return reply, nil
}

func logSummary(ctx context.Context, m mode.Mode, resp *result.Response) {
	logger.FromContext(ctx).Info("retrieval finished",
		zap.String("mode", string(m)),
		zap.String("query", resp.Query()),
		zap.String("index", resp.Index()),
		zap.String("storage", resp.Storage()),
		zap.Int("matches", resp.Len()),
	)
}
