package cbir

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/Bangulli/cytomine/internal/domain"
	"github.com/Bangulli/cytomine/internal/domain/search/result"
)

// searchPayload is the engine's search answer. The engine reports the searched
// embedding database as embedding_database; older deployments call it index.
type searchPayload struct {
	Query             *string         `json:"query"`
	Index             *string         `json:"index"`
	EmbeddingDatabase *string         `json:"embedding_database"`
	Storage           *string         `json:"storage"`
	Similarities      *[]matchPayload `json:"similarities"`
}

// matchPayload accepts both [id, score] tuples and {"id": ..., "score": ...} objects.
type matchPayload struct {
	id    string
	score float64
}

func (m *matchPayload) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errors.New("empty match")
	}

	switch data[0] {
	case '[':
		var tuple []json.RawMessage
		if err := json.Unmarshal(data, &tuple); err != nil {
			return fmt.Errorf("match tuple: %w", err)
		}
		if len(tuple) < 2 {
			return fmt.Errorf("match tuple has %d elements, want 2", len(tuple))
		}
		return m.set(tuple[0], tuple[1])
	case '{':
		var obj struct {
			ID    json.RawMessage `json:"id"`
			Score json.RawMessage `json:"score"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("match object: %w", err)
		}
		return m.set(obj.ID, obj.Score)
	default:
		return fmt.Errorf("match must be an array or an object, got %q", truncate(data, 32))
	}
}

func (m *matchPayload) set(rawID, rawScore json.RawMessage) error {
	id, err := decodeID(rawID)
	if err != nil {
		return err
	}
	rawScore = bytes.TrimSpace(rawScore)
	if len(rawScore) == 0 || bytes.Equal(rawScore, []byte("null")) {
		return fmt.Errorf("match %q: score is missing", id)
	}
	var score float64
	if err := json.Unmarshal(rawScore, &score); err != nil {
		return fmt.Errorf("match %q: score must be a number", id)
	}
	m.id = id
	m.score = score
	return nil
}

// decodeID accepts a non-empty string or a JSON number.
func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", errors.New("match id is missing")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("match id: %w", err)
		}
		if s == "" {
			return "", errors.New("match id is empty")
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("match id must be a string or a number: %w", err)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return "", fmt.Errorf("match id: %w", err)
	}
	return n.String(), nil
}

// decodeSearch turns a 2xx body into a response. Any failure wraps
// domain.ErrUpstreamMalformedResponse. query is echoed when the engine omits it.
func decodeSearch(body []byte, query string) (result.Response, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return result.Response{}, fmt.Errorf("%w: empty body", domain.ErrUpstreamMalformedResponse)
	}
	if bytes.Equal(trimmed, []byte("null")) {
		return result.Response{}, fmt.Errorf("%w: null body", domain.ErrUpstreamMalformedResponse)
	}
	if trimmed[0] != '{' {
		return result.Response{}, fmt.Errorf("%w: body is not a JSON object: %q",
			domain.ErrUpstreamMalformedResponse, truncate(trimmed, 64))
	}

	var p searchPayload
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return result.Response{}, fmt.Errorf("%w: %w", domain.ErrUpstreamMalformedResponse, err)
	}

	// An answer without a match list is an engine-side failure report, not an empty result.
	if p.Similarities == nil {
		return result.Response{}, fmt.Errorf("%w: similarities missing", domain.ErrUpstreamMalformedResponse)
	}

	matches := make([]result.Match, len(*p.Similarities))
	for i, m := range *p.Similarities {
		matches[i] = result.NewMatch(m.id, m.score)
	}

	echo := deref(p.Query)
	if echo == "" {
		echo = query
	}
	index := deref(p.Index)
	if index == "" {
		index = deref(p.EmbeddingDatabase)
	}

	return result.New(echo, index, deref(p.Storage), matches), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
