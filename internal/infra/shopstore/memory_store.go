package shopstore

import (
	"context"
	"sync"
	"time"

	"github.com/waterbar/waterbar/internal/domain/shop"
)

type memoryEntry struct {
	recs      shop.Recommendations
	expiresAt time.Time
}

// MemoryStore keeps recommendation snapshots in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Save(ctx context.Context, userID string, recs shop.Recommendations, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := memoryEntry{recs: recs}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	s.entries[userID] = entry
	return nil
}

func (s *MemoryStore) Latest(ctx context.Context, userID string) (shop.Recommendations, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[userID]
	if !ok {
		return shop.Recommendations{}, false, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		return shop.Recommendations{}, false, nil
	}
	return entry.recs, true, nil
}
