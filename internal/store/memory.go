package store

import (
	"context"
	"sync"
	"time"

	"github.com/i474232898/trackside-weather/internal/weather"
)

// MemoryStore is a concurrency-safe in-memory implementation of weather.Store.
// Records live in an append-only arena; index keeps each event's arena
// positions in insertion order so lookups walk from the newest.
type MemoryStore struct {
	mu sync.RWMutex

	arena []weather.CacheRecord
	index map[string][]int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		index: make(map[string][]int),
	}
}

// Put appends rec. Existing records are never touched.
func (s *MemoryStore) Put(_ context.Context, rec weather.CacheRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.arena = append(s.arena, rec)
	s.index[rec.EventID] = append(s.index[rec.EventID], len(s.arena)-1)
	return nil
}

// GetFresh returns the newest record for eventID that has not expired at now.
func (s *MemoryStore) GetFresh(_ context.Context, eventID string, now time.Time) (weather.CacheRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	positions := s.index[eventID]
	for i := len(positions) - 1; i >= 0; i-- {
		rec := s.arena[positions[i]]
		if !rec.Expired(now) {
			return rec, nil
		}
	}
	return weather.CacheRecord{}, weather.ErrCacheMiss
}

// GetLast returns the newest record for eventID regardless of expiry.
func (s *MemoryStore) GetLast(_ context.Context, eventID string) (weather.CacheRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	positions := s.index[eventID]
	if len(positions) == 0 {
		return weather.CacheRecord{}, weather.ErrCacheMiss
	}
	return s.arena[positions[len(positions)-1]], nil
}

// SweepExpired drops every record expired at cutoff and compacts the arena.
func (s *MemoryStore) SweepExpired(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]weather.CacheRecord, 0, len(s.arena))
	index := make(map[string][]int, len(s.index))
	for _, rec := range s.arena {
		if rec.Expired(cutoff) {
			continue
		}
		kept = append(kept, rec)
		index[rec.EventID] = append(index[rec.EventID], len(kept)-1)
	}

	removed := len(s.arena) - len(kept)
	s.arena = kept
	s.index = index
	return removed, nil
}

// Len reports how many records are held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.arena)
}
