package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// gatewayRouter mirrors the gateway's route table with canned statuses.
func gatewayRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/api/retrieval", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/api/retrieval/retrieval", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	r.Post("/api/retrieval/images/index", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	r.Post("/api/retrieval/images/remove", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "removed")
	})
	return r
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := gatewayRouter()

	cases := []struct {
		method string
		target string
		path   string
		status string
	}{
		{http.MethodGet, "/api/retrieval?k=3&organ=kidney", "/api/retrieval", "200"},
		{http.MethodGet, "/api/retrieval/retrieval?k_best=0", "/api/retrieval/retrieval", "400"},
		{http.MethodPost, "/api/retrieval/images/index", "/api/retrieval/images/index", "502"},
		{http.MethodPost, "/api/retrieval/images/remove", "/api/retrieval/images/remove", "200"},
		{http.MethodGet, "/api/retrieval/images/17", "unmatched", "404"},
	}

	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path+" "+tc.status, func(t *testing.T) {
			before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tc.method, tc.path, tc.status))

			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.target, http.NoBody))

			after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tc.method, tc.path, tc.status))
			if after-before != 1 {
				t.Errorf("requests_total{%s,%s,%s} grew by %v, want 1", tc.method, tc.path, tc.status, after-before)
			}
		})
	}

	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected http_request_duration_seconds observations")
	}
}

func TestNormalizePath(t *testing.T) {
	if got := normalizePath(""); got != "unmatched" {
		t.Errorf("normalizePath(\"\") = %q", got)
	}
	if got := normalizePath("/api/retrieval"); got != "/api/retrieval" {
		t.Errorf("normalizePath kept = %q", got)
	}
}

func TestRegisterUpstreamMetrics_Idempotent(t *testing.T) {
	RegisterUpstreamMetrics()
	RegisterUpstreamMetrics()

	before := testutil.ToFloat64(UpstreamRequestsTotal.WithLabelValues("index", OutcomeStatus))
	UpstreamRequestsTotal.WithLabelValues("index", OutcomeStatus).Inc()
	if got := testutil.ToFloat64(UpstreamRequestsTotal.WithLabelValues("index", OutcomeStatus)); got != before+1 {
		t.Errorf("upstream_requests_total = %v, want %v", got, before+1)
	}
}

func TestRegisterUpstreamMetrics_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			RegisterUpstreamMetrics()
		}()
	}
	wg.Wait()

	UpstreamRequestsTotal.WithLabelValues("health", OutcomeSuccess).Inc()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() == Namespace+"_upstream_requests_total" {
			return
		}
	}
	t.Error("upstream_requests_total not registered on the default registry")
}
