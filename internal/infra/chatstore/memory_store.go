package chatstore

import (
	"context"
	"sync"

	"github.com/waterbar/waterbar/internal/domain/chat"
)

// MemoryStore keeps transcripts in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	transcripts map[string]chat.Transcript
}

// NewMemoryStore constructs an empty transcript store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{transcripts: make(map[string]chat.Transcript)}
}

func (s *MemoryStore) Load(ctx context.Context, sessionID string) (chat.Transcript, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	transcript, ok := s.transcripts[sessionID]
	return transcript, ok, nil
}

func (s *MemoryStore) Save(ctx context.Context, sessionID string, transcript chat.Transcript) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcripts[sessionID] = transcript
	return nil
}
