package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Bangulli/cytomine/internal/domain"
	"github.com/Bangulli/cytomine/internal/domain/image"
	"github.com/Bangulli/cytomine/internal/domain/search/filter"
	"github.com/Bangulli/cytomine/internal/logger"
	healthuc "github.com/Bangulli/cytomine/internal/usecase/health"
	retrievaluc "github.com/Bangulli/cytomine/internal/usecase/retrieval"
)

const (
	// maxImageBodyBytes bounds index/remove request bodies.
	maxImageBodyBytes = 1 << 20
	// maxUpstreamBodyInError caps the engine body echoed in a 502 answer.
	maxUpstreamBodyInError = 512
)

// Query parameter names of the inbound API.
const (
	paramK         = "k"
	paramKBest     = "k_best"
	paramQuery     = "query"
	paramDatasets  = filter.KeyDatasets
	paramStaining  = filter.KeyStaining
	paramOrgan     = filter.KeyOrgan
	paramSpecies   = filter.KeySpecies
	paramDiagnosis = filter.KeyDiagnosis
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the platform-facing HTTP API of the gateway.
type Server struct {
	retrieval     *retrievaluc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(retrieval *retrievaluc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		retrieval: retrieval,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, ErrorCodeValidationFailed),
		upstreamHandler,
		sentinelHandler(domain.ErrNotImplemented, http.StatusNotImplemented, ErrorCodeNotImplemented),
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Get("/api/retrieval", s.RetrieveSimilarImages)
	r.Get("/api/retrieval/retrieval", s.RetrieveSimilarImagesLegacy)
	r.Post("/api/retrieval/images/index", s.IndexImage)
	r.Post("/api/retrieval/images/remove", s.RemoveImage)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeMethodNotAllowed, "method not allowed")
	})
}

// RetrieveSimilarImages handles GET /api/retrieval.
func (s *Server) RetrieveSimilarImages(w http.ResponseWriter, r *http.Request) {
	params, err := bindSearchParams(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	resp, err := s.retrieval.RetrieveSimilarImages(r.Context(), params)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// RetrieveSimilarImagesLegacy handles GET /api/retrieval/retrieval.
func (s *Server) RetrieveSimilarImagesLegacy(w http.ResponseWriter, r *http.Request) {
	kBest, err := bindKBest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	resp, err := s.retrieval.RetrieveSimilarImagesLegacy(r.Context(), kBest)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// IndexImage handles POST /api/retrieval/images/index.
func (s *Server) IndexImage(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeImageRequest(w, r)
	if !ok {
		return
	}

	reply, err := s.retrieval.IndexImage(r.Context(), req.ID, req.Path, req.Filename)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeReply(w, reply)
}

// RemoveImage handles POST /api/retrieval/images/remove.
func (s *Server) RemoveImage(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeImageRequest(w, r)
	if !ok {
		return
	}

	reply, err := s.retrieval.RemoveImage(r.Context(), req.ID, req.Path, req.Filename)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeReply(w, reply)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func decodeImageRequest(w http.ResponseWriter, r *http.Request) (ImageRequest, bool) {
	var req ImageRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxImageBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return ImageRequest{}, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// writeReply relays the engine's index/remove answer unchanged.
func writeReply(w http.ResponseWriter, reply image.Reply) {
	if reply.ContentType != "" {
		w.Header().Set("Content-Type", reply.ContentType)
	}
	w.WriteHeader(reply.StatusCode)
	_, _ = w.Write(reply.Body)
}

// safeDomainMessage returns a client-facing message without exposing internals.
// Invalid-argument reasons are caller-facing by construction and kept.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidArgument) {
		return invalidArgumentReason(err)
	}
	sentinels := []error{
		domain.ErrUpstreamUnavailable,
		domain.ErrNotImplemented,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// invalidArgumentReason strips the wrapping context down to the validation message.
func invalidArgumentReason(err error) string {
	msg := err.Error()
	prefix := domain.ErrInvalidArgument.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return domain.ErrInvalidArgument.Error()
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// upstreamHandler maps engine failures to 502 with the engine's status and body.
func upstreamHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		return false
	}
	resp := ErrorResponse{Code: ErrorCodeUpstreamUnavailable, Message: msg}
	var upErr *domain.UpstreamError
	if errors.As(err, &upErr) {
		resp.UpstreamStatus = upErr.StatusCode
		body := upErr.Body
		if len(body) > maxUpstreamBodyInError {
			body = body[:maxUpstreamBodyInError]
		}
		resp.UpstreamBody = string(body)
	}
	writeJSON(w, http.StatusBadGateway, resp)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
