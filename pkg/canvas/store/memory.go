package store

import (
	"context"
	"sync"

	"ai-canvas-be/pkg/canvas/catalog"
)

// InMemoryStore is a map-backed SectionStore and DeliverableStore.
// Used by the simulator and as scratch storage when no database is
// configured.
type InMemoryStore struct {
	mu           sync.RWMutex
	sections     map[string]SectionRecord
	deliverables map[string]string

	// FailSaves makes every write fail. Test hook for outage behavior.
	FailSaves bool
	SaveErr   error
	Saves     int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sections:     make(map[string]SectionRecord),
		deliverables: make(map[string]string),
	}
}

func (s *InMemoryStore) sectionKey(userID, threadID string, sectionID catalog.SectionID) string {
	return userID + "/" + threadID + "/" + string(sectionID)
}

func (s *InMemoryStore) SaveSection(ctx context.Context, rec SectionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Saves++
	if s.FailSaves {
		return s.SaveErr
	}
	s.sections[s.sectionKey(rec.UserID, rec.ThreadID, rec.SectionID)] = rec
	return nil
}

func (s *InMemoryStore) GetSection(ctx context.Context, userID, threadID string, sectionID catalog.SectionID) (*SectionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.sections[s.sectionKey(userID, threadID, sectionID)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *InMemoryStore) SaveDeliverable(ctx context.Context, userID, threadID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSaves {
		return s.SaveErr
	}
	s.deliverables[userID+"/"+threadID] = content
	return nil
}

func (s *InMemoryStore) GetDeliverable(ctx context.Context, userID, threadID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deliverables[userID+"/"+threadID], nil
}
