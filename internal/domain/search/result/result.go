package result

import "encoding/json"

// Match is a single similar image. Score semantics belong to the engine.
type Match struct {
	id    string
	score float64
}

// NewMatch creates a match.
func NewMatch(id string, score float64) Match {
	return Match{id: id, score: score}
}

// ID returns the identifier of the matched image.
func (m *Match) ID() string { return m.id }

// Score returns the similarity score.
func (m *Match) Score() float64 { return m.score }

// Response is the normalized answer of a similarity search.
// Similarities keep the engine's rank order and are never nil.
type Response struct {
	query        string
	index        string
	storage      string
	similarities []Match
}

// New creates a response. A nil match list becomes an empty one.
func New(query, index, storage string, similarities []Match) Response {
	if similarities == nil {
		similarities = []Match{}
	}
	return Response{query: query, index: index, storage: storage, similarities: similarities}
}

// Empty returns a well-formed response without matches.
func Empty(query string) Response {
	return New(query, "", "", nil)
}

// Query returns the echoed query identifier.
func (r *Response) Query() string { return r.query }

// Index returns the index the engine searched.
func (r *Response) Index() string { return r.index }

// Storage returns the storage the engine searched.
func (r *Response) Storage() string { return r.storage }

// Similarities returns the matches, most similar first.
func (r *Response) Similarities() []Match {
	if r.similarities == nil {
		return []Match{}
	}
	return r.similarities
}

// Len returns the number of matches.
func (r *Response) Len() int { return len(r.similarities) }

type matchJSON struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

type responseJSON struct {
	Query        string      `json:"query"`
	Index        string      `json:"index"`
	Storage      string      `json:"storage"`
	Similarities []matchJSON `json:"similarities"`
}

// MarshalJSON renders the outward contract; similarities is always an array.
func (r Response) MarshalJSON() ([]byte, error) {
	out := responseJSON{
		Query:        r.query,
		Index:        r.index,
		Storage:      r.storage,
		Similarities: make([]matchJSON, len(r.similarities)),
	}
	for i, m := range r.similarities {
		out.Similarities[i] = matchJSON{ID: m.id, Score: m.score}
	}
	return json.Marshal(out) //nolint:wrapcheck // plain value encoding
}
