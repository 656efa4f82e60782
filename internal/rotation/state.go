package rotation

import (
	"encoding/json"
	"slices"
)

// Record is what was shown on a given day.
type Record struct {
	ID    string `json:"id"`
	Image string `json:"image"`
}

// State is the persisted pool for one category. AvailableIDs and ShownIDs
// are disjoint; together they hold every id admitted when the pool was
// first initialised, minus ids evicted for being undisplayable.
type State struct {
	History      map[string]Record `json:"history"`
	AvailableIDs []string          `json:"availableIds"`
	ShownIDs     []string          `json:"shownIds"`
}

func newState() *State {
	return &State{
		History:      map[string]Record{},
		AvailableIDs: []string{},
		ShownIDs:     []string{},
	}
}

func decodeState(doc []byte) (*State, error) {
	s := newState()
	if err := json.Unmarshal(doc, s); err != nil {
		return nil, err
	}
	if s.History == nil {
		s.History = map[string]Record{}
	}
	if s.AvailableIDs == nil {
		s.AvailableIDs = []string{}
	}
	if s.ShownIDs == nil {
		s.ShownIDs = []string{}
	}
	return s, nil
}

func (s *State) encode() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

func (s *State) clone() *State {
	c := &State{
		History:      make(map[string]Record, len(s.History)+1),
		AvailableIDs: slices.Clone(s.AvailableIDs),
		ShownIDs:     slices.Clone(s.ShownIDs),
	}
	for k, v := range s.History {
		c.History[k] = v
	}
	if c.AvailableIDs == nil {
		c.AvailableIDs = []string{}
	}
	if c.ShownIDs == nil {
		c.ShownIDs = []string{}
	}
	return c
}
