package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bondhedge/hedge-engine/internal/model"
)

// MemoryStore implements Store with in-memory maps. Used for testing
// and development. Not suitable for production (no persistence).
type MemoryStore struct {
	mu           sync.RWMutex
	calculations map[string]*model.Calculation
	order        []string // insertion order
	sweeps       []model.Sweep
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		calculations: make(map[string]*model.Calculation),
	}
}

func (s *MemoryStore) CreateCalculation(_ context.Context, c *model.Calculation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.calculations[c.ID]; exists {
		return fmt.Errorf("calculation %s already exists", c.ID)
	}

	// Store a copy to avoid external mutation.
	copy := *c
	s.calculations[c.ID] = &copy
	s.order = append(s.order, c.ID)
	return nil
}

func (s *MemoryStore) GetCalculation(_ context.Context, id string) (*model.Calculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.calculations[id]
	if !ok {
		return nil, fmt.Errorf("%w: calculation %s", ErrNotFound, id)
	}
	copy := *c
	return &copy, nil
}

func (s *MemoryStore) ListCalculations(_ context.Context, limit int) ([]model.Calculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Calculation, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, *s.calculations[s.order[i]])
	}
	// Newest first; insertion order breaks ties.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) InsertSweep(_ context.Context, sw *model.Sweep) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.calculations[sw.CalculationID]; !ok {
		return fmt.Errorf("%w: calculation %s", ErrNotFound, sw.CalculationID)
	}

	copy := *sw
	copy.Rows = append([]model.ScenarioRow(nil), sw.Rows...)
	s.sweeps = append(s.sweeps, copy)
	return nil
}

func (s *MemoryStore) GetSweepsByCalculation(_ context.Context, calculationID string) ([]model.Sweep, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.Sweep
	for _, sw := range s.sweeps {
		if sw.CalculationID == calculationID {
			sw.Rows = append([]model.ScenarioRow(nil), sw.Rows...)
			result = append(result, sw)
		}
	}
	return result, nil
}
