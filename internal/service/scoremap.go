package service

import (
	"sort"

	"github.com/timmy/vidfeed/internal/domain"
)

// ScoreMap accumulates VideoScores across ranking passes and remembers
// insertion order so ties rank deterministically.
type ScoreMap struct {
	scores map[string]*domain.VideoScore
	order  []string
}

// NewScoreMap returns an empty ScoreMap.
func NewScoreMap() *ScoreMap {
	return &ScoreMap{scores: make(map[string]*domain.VideoScore)}
}

// Add adds delta to id's score, creating the entry at delta if absent.
func (m *ScoreMap) Add(id string, delta float64, tag string) {
	s, ok := m.scores[id]
	if !ok {
		s = &domain.VideoScore{VideoID: id}
		m.scores[id] = s
		m.order = append(m.order, id)
	}
	s.Add(delta, tag)
}

// Has reports whether id is scored.
func (m *ScoreMap) Has(id string) bool {
	_, ok := m.scores[id]
	return ok
}

// Get returns a copy of id's score.
func (m *ScoreMap) Get(id string) (domain.VideoScore, bool) {
	s, ok := m.scores[id]
	if !ok {
		return domain.VideoScore{}, false
	}
	return *s, true
}

// Delete removes id entirely.
func (m *ScoreMap) Delete(id string) {
	if _, ok := m.scores[id]; !ok {
		return
	}
	delete(m.scores, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of scored ids.
func (m *ScoreMap) Len() int {
	return len(m.scores)
}

// IDs returns the scored ids in insertion order.
func (m *ScoreMap) IDs() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Ranked returns all scores sorted by descending score; equal scores keep
// insertion order.
func (m *ScoreMap) Ranked() []domain.VideoScore {
	out := make([]domain.VideoScore, len(m.order))
	for i, id := range m.order {
		out[i] = *m.scores[id]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}
