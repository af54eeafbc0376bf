package session

import (
	"context"
	"sync"
	"time"

	"github.com/kapu/delphi-enrich-web/internal/domain"
)

// Store persists controller snapshots between requests. Load returns nil, nil
// for an unknown or expired session.
type Store interface {
	Load(ctx context.Context, id string) (*domain.State, error)
	Save(ctx context.Context, id string, state *domain.State) error
	Delete(ctx context.Context, id string) error
	Close() error
}

type memoryItem struct {
	state   *domain.State
	expires time.Time
}

// MemoryStore keeps snapshots in process memory. Entries expire ttl after the
// last Save.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memoryItem
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		items: make(map[string]memoryItem),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *MemoryStore) Load(_ context.Context, id string) (*domain.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	if !s.now().Before(item.expires) {
		delete(s.items, id)
		return nil, nil
	}
	return item.state.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, id string, state *domain.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[id] = memoryItem{
		state:   state.Clone(),
		expires: s.now().Add(s.ttl),
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

// Sweep drops expired snapshots and reports how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, item := range s.items {
		if !now.Before(item.expires) {
			delete(s.items, id)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) Close() error {
	return nil
}
