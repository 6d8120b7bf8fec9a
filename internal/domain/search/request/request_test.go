package request

import (
	"errors"
	"strings"
	"testing"

	"github.com/Bangulli/cytomine/internal/domain"
	"github.com/Bangulli/cytomine/internal/domain/search/filter"
)

func noFilters() filter.Metadata {
	return filter.NewMetadata(nil, "", "", "", "")
}

func TestNew_Valid(t *testing.T) {
	f := filter.NewMetadata([]string{"tcga"}, "HE", "", "", "")
	r, err := New(" /images/q.svs ", 5, f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Query() != "/images/q.svs" {
		t.Errorf("Query() = %q", r.Query())
	}
	if r.K() != 5 {
		t.Errorf("K() = %d", r.K())
	}
	if r.Filters().Staining() != "HE" {
		t.Errorf("Filters().Staining() = %q", r.Filters().Staining())
	}
}

func TestNew_QueryOptional(t *testing.T) {
	r, err := New("", 3, filter.NewMetadata(nil, "", "lung", "", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Query() != "" {
		t.Errorf("Query() = %q, want empty", r.Query())
	}
}

func TestNew_NonPositiveK(t *testing.T) {
	for _, k := range []int{0, -1, -100} {
		_, err := New("q", k, noFilters())
		if err == nil {
			t.Fatalf("k=%d: expected error", k)
		}
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("k=%d: error = %v, want ErrInvalidArgument", k, err)
		}
	}
}

func TestNew_KTooLarge(t *testing.T) {
	_, err := New("q", MaxK+1, noFilters())
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("error = %v, want ErrInvalidArgument", err)
	}
}

func TestNew_QueryTooLong(t *testing.T) {
	_, err := New(strings.Repeat("x", MaxQueryLength+1), 3, noFilters())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "too long") {
		t.Errorf("error = %q", err)
	}
}

func TestNewLegacy(t *testing.T) {
	l, err := NewLegacy("/images/default.svs", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.KBest() != 4 {
		t.Errorf("KBest() = %d", l.KBest())
	}
	if l.UpstreamK() != 5 {
		t.Errorf("UpstreamK() = %d, want 5", l.UpstreamK())
	}
	if l.Query() != "/images/default.svs" {
		t.Errorf("Query() = %q", l.Query())
	}
}

func TestNewLegacy_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		query string
		kBest int
	}{
		{"zero k", "/q", 0},
		{"negative k", "/q", -3},
		{"k too large", "/q", MaxK},
		{"no query", " ", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLegacy(tt.query, tt.kBest)
			if !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}
