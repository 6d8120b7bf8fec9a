package cytomine

// SearchMode names a request encoding of the retrieval engine.
type SearchMode string

// Search mode constants.
const (
	// ModeFiltered is the GET search with metadata filters.
	ModeFiltered SearchMode = "filtered"
	// ModeLegacy is the fixed-query POST search.
	ModeLegacy SearchMode = "legacy"
)

// SearchParams describes a filtered similarity search. Blank filters are not sent.
type SearchParams struct {
	K         int
	Query     string
	Datasets  []string
	Staining  string
	Organ     string
	Species   string
	Diagnosis string
}

// Match is a single similar image.
type Match struct {
	ID    string
	Score float64
}

// SearchResult is the normalized engine answer. Similarities keep the engine's
// rank order and are never nil.
type SearchResult struct {
	Query        string
	Index        string
	Storage      string
	Similarities []Match
}

// Image identifies a slide in the engine's index.
type Image struct {
	ID       int64
	Path     string
	Filename string
}

// Reply is the engine's answer to an index or remove call.
type Reply struct {
	StatusCode  int
	ContentType string
	Body        []byte
}
