package chi

import (
	"fmt"
	"net/url"

	"github.com/oapi-codegen/runtime"

	retrievaluc "github.com/Bangulli/cytomine/internal/usecase/retrieval"
)

// bindSearchParams binds the query string of GET /api/retrieval.
// Repeated datasets params are kept; comma-separated values are split downstream.
func bindSearchParams(q url.Values) (retrievaluc.SearchParams, error) {
	var p retrievaluc.SearchParams
	if err := bindRequired(q, paramK, &p.K); err != nil {
		return retrievaluc.SearchParams{}, err
	}

	var datasets *[]string
	if err := runtime.BindQueryParameter("form", true, false, paramDatasets, q, &datasets); err != nil {
		return retrievaluc.SearchParams{}, fmt.Errorf("invalid %s: %w", paramDatasets, err)
	}
	if datasets != nil {
		p.Datasets = *datasets
	}

	optional := []struct {
		name string
		dest *string
	}{
		{paramQuery, &p.Query},
		{paramStaining, &p.Staining},
		{paramOrgan, &p.Organ},
		{paramSpecies, &p.Species},
		{paramDiagnosis, &p.Diagnosis},
	}
	for _, o := range optional {
		var v *string
		if err := runtime.BindQueryParameter("form", true, false, o.name, q, &v); err != nil {
			return retrievaluc.SearchParams{}, fmt.Errorf("invalid %s: %w", o.name, err)
		}
		if v != nil {
			*o.dest = *v
		}
	}
	return p, nil
}

// bindKBest binds the query string of GET /api/retrieval/retrieval.
func bindKBest(q url.Values) (int, error) {
	var kBest int
	if err := bindRequired(q, paramKBest, &kBest); err != nil {
		return 0, err
	}
	return kBest, nil
}

func bindRequired(q url.Values, name string, dest *int) error {
	if err := runtime.BindQueryParameter("form", true, true, name, q, dest); err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	return nil
}
