package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Bangulli/cytomine/internal/config"
	logpkg "github.com/Bangulli/cytomine/internal/logger"
	"github.com/Bangulli/cytomine/internal/metrics"
	"github.com/Bangulli/cytomine/internal/transport/cbir"
	chiTransport "github.com/Bangulli/cytomine/internal/transport/chi"
	healthuc "github.com/Bangulli/cytomine/internal/usecase/health"
	retrievaluc "github.com/Bangulli/cytomine/internal/usecase/retrieval"
	"github.com/Bangulli/cytomine/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting CBIR gateway",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("cbir_url", cfg.CBIR.BaseURL),
		zap.Duration("cbir_timeout", cfg.CBIR.Timeout()),
		zap.Strings("search_modes", cfg.CBIR.SearchModes),
		zap.Int64("cbir_max_in_flight", cfg.CBIR.MaxInFlight),
	)

	modes, err := cfg.CBIR.Modes()
	if err != nil {
		logger.Fatal("Invalid search modes", zap.Error(err))
	}

	// Register upstream metrics explicitly (no init())
	metrics.RegisterUpstreamMetrics()

	engine, err := cbir.NewClient(&cbir.Config{
		BaseURL:     cfg.CBIR.BaseURL,
		Timeout:     cfg.CBIR.Timeout(),
		HTTPClient:  newEngineHTTPClient(),
		RateLimit:   cfg.CBIR.RateLimit.RequestsPerSecond,
		Burst:       cfg.CBIR.RateLimit.Burst,
		MaxInFlight: cfg.CBIR.MaxInFlight,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal("Failed to create retrieval engine client", zap.Error(err))
	}

	retrievalSvc := retrievaluc.New(engine, modes, cfg.CBIR.LegacyQuery)
	healthSvc := healthuc.New(engine)

	server := chiTransport.NewServer(retrievalSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// newEngineHTTPClient returns the shared, pooled client for engine calls.
// Per-call deadlines come from the engine client's timeout.
func newEngineHTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 32
	transport.IdleConnTimeout = 90 * time.Second
	return &http.Client{Transport: transport}
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorCodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID
// both to the caller and to the retrieval engine.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set(cbir.HeaderRequestID, requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)
			ctx = logpkg.ContextWithRequestID(ctx, requestID)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
