package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/i474232898/trackside-weather/internal/weather"
)

// MemoryRepository is an in-process event lookup, used with the memory store
// driver and in tests.
type MemoryRepository struct {
	mu     sync.RWMutex
	events map[string]weather.Event
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{events: make(map[string]weather.Event)}
}

// Add stores or replaces ev.
func (r *MemoryRepository) Add(ev weather.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[ev.ID] = ev
}

// GetEventWithTrack returns the stored event.
func (r *MemoryRepository) GetEventWithTrack(_ context.Context, eventID string) (weather.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ev, ok := r.events[eventID]
	if !ok {
		return weather.Event{}, fmt.Errorf("%w: %s", weather.ErrEventNotFound, eventID)
	}
	return ev, nil
}

// Seed adds every event in s, resolving track references.
func (r *MemoryRepository) Seed(_ context.Context, s *SeedFile) error {
	evs, err := s.Resolve()
	if err != nil {
		return err
	}
	for _, ev := range evs {
		r.Add(ev)
	}
	return nil
}
