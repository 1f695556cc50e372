package draft

import (
	"context"
	"sync"
	"time"

	"mykharche/internal/core"
)

type memoryValue struct {
	value     string
	updatedAt time.Time
}

// MemoryStore keeps drafts in process memory.
type MemoryStore struct {
	mu     sync.Mutex
	drafts map[string]map[string]memoryValue
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		drafts: make(map[string]map[string]memoryValue),
		now:    time.Now,
	}
}

// WithClock replaces the time source, used by tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Save(_ context.Context, drawerID string, entry core.DraftEntry) error {
	if drawerID == "" {
		return ErrEmptyDrawerID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	values := make(map[string]memoryValue, len(Keys))
	for k, v := range Encode(entry) {
		values[k] = memoryValue{value: v, updatedAt: now}
	}
	s.drafts[drawerID] = values
	return nil
}

func (s *MemoryStore) Restore(_ context.Context, drawerID string) (core.DraftEntry, bool, error) {
	if drawerID == "" {
		return core.DraftEntry{}, false, ErrEmptyDrawerID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.drafts[drawerID]
	if !ok {
		return core.DraftEntry{}, false, nil
	}
	values := make(map[string]string, len(stored))
	for k, v := range stored {
		values[k] = v.value
	}
	entry, found := Decode(values)
	return entry, found, nil
}

func (s *MemoryStore) Clear(_ context.Context, drawerID string) error {
	if drawerID == "" {
		return ErrEmptyDrawerID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, drawerID)
	return nil
}

func (s *MemoryStore) PurgeOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for id, values := range s.drafts {
		newest := time.Time{}
		for _, v := range values {
			if v.updatedAt.After(newest) {
				newest = v.updatedAt
			}
		}
		if newest.Before(cutoff) {
			delete(s.drafts, id)
			purged++
		}
	}
	return purged, nil
}

// Len returns the number of drawers holding a draft.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}
