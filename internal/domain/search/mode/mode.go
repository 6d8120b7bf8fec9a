package mode

import "fmt"

// Mode is the request encoding a deployment of the retrieval engine accepts.
type Mode string

// Search mode constants.
const (
	// Filtered is the GET encoding with the full metadata filter set and a k bound.
	Filtered Mode = "filtered"
	// Legacy is the POST encoding with a fixed query image and a k_best+1 bound.
	Legacy Mode = "legacy"
)

// All lists every supported mode.
var All = []Mode{Filtered, Legacy}

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Filtered || m == Legacy
}

// Set is the set of modes a deployment has enabled.
type Set map[Mode]struct{}

// ParseSet validates raw mode names. An empty input enables every mode.
func ParseSet(raw []string) (Set, error) {
	s := make(Set, len(All))
	if len(raw) == 0 {
		for _, m := range All {
			s[m] = struct{}{}
		}
		return s, nil
	}
	for _, name := range raw {
		m := Mode(name)
		if !m.IsValid() {
			return nil, fmt.Errorf("unknown search mode %q", name)
		}
		s[m] = struct{}{}
	}
	return s, nil
}

// Enabled reports whether m is in the set. A nil set enables everything.
func (s Set) Enabled(m Mode) bool {
	if s == nil {
		return true
	}
	_, ok := s[m]
	return ok
}
