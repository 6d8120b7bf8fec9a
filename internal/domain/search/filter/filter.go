package filter

import "strings"

// Parameter names understood by the retrieval engine.
const (
	KeyDatasets  = "datasets"
	KeyStaining  = "staining"
	KeyOrgan     = "organ"
	KeySpecies   = "species"
	KeyDiagnosis = "diagnosis"
)

// DatasetSeparator joins multiple datasets into a single parameter value.
const DatasetSeparator = ","

// Metadata is the set of optional categorical filters of a similarity search.
// Blank values are absent: they never reach the engine, which would read an
// empty filter as "match nothing".
type Metadata struct {
	datasets  []string
	staining  string
	organ     string
	species   string
	diagnosis string
}

// Pair is a single present filter in encoding order.
type Pair struct {
	Key   string
	Value string
}

// NewMetadata normalizes raw filter values. Values are trimmed; blank ones are dropped.
// Dataset entries may themselves be comma-separated lists.
func NewMetadata(datasets []string, staining, organ, species, diagnosis string) Metadata {
	return Metadata{
		datasets:  normalizeDatasets(datasets),
		staining:  strings.TrimSpace(staining),
		organ:     strings.TrimSpace(organ),
		species:   strings.TrimSpace(species),
		diagnosis: strings.TrimSpace(diagnosis),
	}
}

// Datasets returns the normalized dataset names (nil when absent).
func (m Metadata) Datasets() []string { return m.datasets }

// Staining returns the staining filter.
func (m Metadata) Staining() string { return m.staining }

// Organ returns the organ filter.
func (m Metadata) Organ() string { return m.organ }

// Species returns the species filter.
func (m Metadata) Species() string { return m.species }

// Diagnosis returns the diagnosis filter.
func (m Metadata) Diagnosis() string { return m.diagnosis }

// IsEmpty reports whether no filter is present.
func (m Metadata) IsEmpty() bool {
	return len(m.datasets) == 0 && m.staining == "" && m.organ == "" &&
		m.species == "" && m.diagnosis == ""
}

// Present returns the present filters in a fixed order.
func (m Metadata) Present() []Pair {
	out := make([]Pair, 0, 5)
	if len(m.datasets) > 0 {
		out = append(out, Pair{Key: KeyDatasets, Value: strings.Join(m.datasets, DatasetSeparator)})
	}
	for _, p := range []Pair{
		{KeyStaining, m.staining},
		{KeyOrgan, m.organ},
		{KeySpecies, m.species},
		{KeyDiagnosis, m.diagnosis},
	} {
		if p.Value != "" {
			out = append(out, p)
		}
	}
	return out
}

func normalizeDatasets(raw []string) []string {
	var out []string
	for _, entry := range raw {
		for _, name := range strings.Split(entry, DatasetSeparator) {
			if name = strings.TrimSpace(name); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}
