package cbir

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/Bangulli/cytomine/internal/domain"
	"github.com/Bangulli/cytomine/internal/domain/image"
	"github.com/Bangulli/cytomine/internal/domain/search/filter"
	"github.com/Bangulli/cytomine/internal/domain/search/request"
)

const testBase = "http://wsi-cbir:6001/api"

func mustBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := NewBuilder(testBase)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	return b
}

func mustRequest(t *testing.T, query string, k int, f filter.Metadata) *request.Request {
	t.Helper()
	req, err := request.New(query, k, f)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &req
}

func mustImage(t *testing.T, id int64, path, filename string) *image.Identity {
	t.Helper()
	img, err := image.New(id, path, filename)
	if err != nil {
		t.Fatalf("image.New: %v", err)
	}
	return &img
}

func TestNewBuilder_InvalidBase(t *testing.T) {
	for _, raw := range []string{"", "wsi-cbir:6001", "ftp://cbir/api", "http://cbir/api?x=1"} {
		if _, err := NewBuilder(raw); err == nil {
			t.Errorf("NewBuilder(%q): expected error", raw)
		}
	}
}

func TestBuilder_Search_AllFilters(t *testing.T) {
	f := filter.NewMetadata([]string{"tcga", "camelyon"}, "HE", "breast", "human", "carcinoma")
	target, err := mustBuilder(t).Search(mustRequest(t, "/data/q.svs", 5, f))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if target.Method != http.MethodGet {
		t.Errorf("Method = %s, want GET", target.Method)
	}
	if target.URL.Path != "/api/retrieval" {
		t.Errorf("Path = %s, want /api/retrieval", target.URL.Path)
	}
	q := target.URL.Query()
	want := map[string]string{
		"query":     "/data/q.svs",
		"datasets":  "tcga,camelyon",
		"staining":  "HE",
		"organ":     "breast",
		"species":   "human",
		"diagnosis": "carcinoma",
		"k":         "5",
	}
	if len(q) != len(want) {
		t.Errorf("got %d params, want %d: %v", len(q), len(want), q)
	}
	for k, v := range want {
		if got := q.Get(k); got != v {
			t.Errorf("param %s = %q, want %q", k, got, v)
		}
	}
}

func TestBuilder_Search_OmitsAbsentFilters(t *testing.T) {
	f := filter.NewMetadata(nil, "", "  ", "human", "")
	target, err := mustBuilder(t).Search(mustRequest(t, "q.svs", 3, f))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	q := target.URL.Query()
	for _, key := range []string{"datasets", "staining", "organ", "diagnosis"} {
		if _, ok := q[key]; ok {
			t.Errorf("param %s must be omitted, got %q", key, q.Get(key))
		}
	}
	if q.Get("species") != "human" {
		t.Errorf("species = %q, want human", q.Get("species"))
	}
	for key, values := range q {
		for _, v := range values {
			if v == "" {
				t.Errorf("param %s sent with empty value", key)
			}
		}
	}
}

func TestBuilder_Search_EmptyQueryOmitted(t *testing.T) {
	target, err := mustBuilder(t).Search(mustRequest(t, "", 2, filter.Metadata{}))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if target.URL.RawQuery != "k=2" {
		t.Errorf("RawQuery = %q, want k=2", target.URL.RawQuery)
	}
}

func TestBuilder_Search_Deterministic(t *testing.T) {
	b := mustBuilder(t)
	f := filter.NewMetadata([]string{"a"}, "HE", "lung", "", "")
	req := mustRequest(t, "q", 4, f)

	first, err := b.Search(req)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	second, err := b.Search(req)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if first.String() != second.String() {
		t.Errorf("non-deterministic target: %s vs %s", first, second)
	}
}

func TestBuilder_Search_EncodesSpecialCharacters(t *testing.T) {
	target, err := mustBuilder(t).Search(mustRequest(t, "/slides/a b&c.svs", 1, filter.Metadata{}))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if strings.Contains(target.URL.RawQuery, " ") || strings.Contains(target.URL.RawQuery, "&c") {
		t.Errorf("query not encoded: %s", target.URL.RawQuery)
	}
	if got := target.URL.Query().Get("query"); got != "/slides/a b&c.svs" {
		t.Errorf("query round trip = %q", got)
	}
}

func TestBuilder_Search_InvalidK(t *testing.T) {
	b := mustBuilder(t)

	if _, err := b.Search(nil); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("nil request: expected ErrInvalidArgument, got %v", err)
	}
	var zero request.Request
	if _, err := b.Search(&zero); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("zero request: expected ErrInvalidArgument, got %v", err)
	}
}

func TestBuilder_LegacySearch(t *testing.T) {
	legacy, err := request.NewLegacy("query.svs", 5)
	if err != nil {
		t.Fatalf("NewLegacy: %v", err)
	}
	target, err := mustBuilder(t).LegacySearch(&legacy)
	if err != nil {
		t.Fatalf("LegacySearch: %v", err)
	}

	if target.Method != http.MethodPost {
		t.Errorf("Method = %s, want POST", target.Method)
	}
	if target.URL.Path != "/api/retrieval" {
		t.Errorf("Path = %s", target.URL.Path)
	}
	if got := target.URL.Query().Get("k_best"); got != "6" {
		t.Errorf("k_best = %q, want 6", got)
	}
	if got := target.URL.Query().Get("query"); got != "query.svs" {
		t.Errorf("query = %q", got)
	}
}

func TestBuilder_ImageTargets(t *testing.T) {
	b := mustBuilder(t)
	img := mustImage(t, 42, "/data/slides", "a.svs")

	tests := []struct {
		name  string
		build func(*image.Identity) (Target, error)
		path  string
	}{
		{"index", b.Index, "/api/indexing"},
		{"remove", b.Remove, "/api/rm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := tt.build(img)
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			if target.Method != http.MethodPost {
				t.Errorf("Method = %s, want POST", target.Method)
			}
			if target.URL.Path != tt.path {
				t.Errorf("Path = %s, want %s", target.URL.Path, tt.path)
			}
			q := target.URL.Query()
			if q.Get("image_id") != "42" || q.Get("path") != "/data/slides" || q.Get("filename") != "a.svs" {
				t.Errorf("params = %v", q)
			}
		})
	}
}

func TestBuilder_ImageTargets_Missing(t *testing.T) {
	b := mustBuilder(t)
	var zero image.Identity

	if _, err := b.Index(&zero); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("Index: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := b.Remove(nil); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("Remove: expected ErrInvalidArgument, got %v", err)
	}
}

func TestBuilder_Health(t *testing.T) {
	target, err := mustBuilder(t).Health()
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if target.URL.String() != testBase {
		t.Errorf("URL = %s, want %s", target.URL, testBase)
	}
}

func TestBuilder_DoesNotMutateBase(t *testing.T) {
	b := mustBuilder(t)
	if _, err := b.Search(mustRequest(t, "q", 1, filter.Metadata{})); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if _, err := b.Health(); err != nil {
		t.Fatalf("Health: %v", err)
	}
	if b.BaseURL() != testBase {
		t.Errorf("BaseURL() = %s, want %s", b.BaseURL(), testBase)
	}
}
