package explore

import (
	"encoding/json"
	"fmt"

	"github.com/KaramelBytes/cohortlens/internal/dataset"
)

// Session holds the current parameter state over one dataset and memoizes
// reports by the exact parameter tuple that produced them. It is not safe for
// concurrent use.
type Session struct {
	ds     *dataset.Dataset
	params Params
	cache  map[string]*Report
	hits   int
}

// NewSession validates p and starts a session over ds.
func NewSession(ds *dataset.Dataset, p Params) (*Session, error) {
	if ds == nil {
		return nil, fmt.Errorf("session: nil dataset")
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	return &Session{ds: ds, params: p, cache: make(map[string]*Report)}, nil
}

// Params returns the current parameter state.
func (s *Session) Params() Params {
	return s.params
}

// Update applies fn to a copy of the current parameters. The change is kept
// only if the result validates.
func (s *Session) Update(fn func(*Params)) error {
	next := s.params
	fn(&next)
	if err := next.Validate(); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	s.params = next
	return nil
}

// Run computes parts for the current parameters, reusing an earlier report
// for an identical tuple.
func (s *Session) Run(parts Parts) (*Report, error) {
	key, err := cacheKey(s.params, parts)
	if err != nil {
		return nil, err
	}
	if rep, ok := s.cache[key]; ok {
		s.hits++
		return rep, nil
	}
	rep, err := Run(s.ds, s.params, parts)
	if err != nil {
		return nil, err
	}
	s.cache[key] = rep
	return rep, nil
}

// Hits reports how many runs were served from the cache.
func (s *Session) Hits() int {
	return s.hits
}

func cacheKey(p Params, parts Parts) (string, error) {
	b, err := json.Marshal(struct {
		Params Params `json:"params"`
		Parts  Parts  `json:"parts"`
	}{p, parts})
	if err != nil {
		return "", fmt.Errorf("cache key: %w", err)
	}
	return string(b), nil
}
