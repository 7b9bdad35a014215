package store

import (
	"sync"
	"time"

	"github.com/tombowditch/ptpb/internal/paste"
)

// MemoryStore implements Store in process memory. Expired pastes are
// dropped lazily on access.
type MemoryStore struct {
	mu     sync.Mutex
	pastes map[string]*paste.Paste // by uuid
	ids    map[string]string       // id -> uuid
	now    func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		pastes: make(map[string]*paste.Paste),
		ids:    make(map[string]string),
		now:    time.Now,
	}
}

// Get retrieves a paste by any of its ids.
func (s *MemoryStore) Get(id string) (*paste.Paste, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	uuid, ok := s.ids[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.lookup(uuid)
}

// Lookup retrieves a paste by uuid.
func (s *MemoryStore) Lookup(uuid string) (*paste.Paste, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(uuid)
}

func (s *MemoryStore) lookup(uuid string) (*paste.Paste, error) {
	p, ok := s.pastes[uuid]
	if !ok {
		return nil, ErrNotFound
	}
	if p.Expired(s.now()) {
		s.remove(p)
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// Create stores p unless one of its ids is taken by a live paste.
func (s *MemoryStore) Create(p *paste.Paste) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range p.IDs() {
		if uuid, ok := s.ids[id]; ok {
			if _, err := s.lookup(uuid); err == nil {
				return false, nil
			}
		}
	}

	cp := *p
	s.pastes[p.UUID] = &cp
	for _, id := range p.IDs() {
		s.ids[id] = p.UUID
	}
	return true, nil
}

// Update replaces the paste with p's uuid.
func (s *MemoryStore) Update(p *paste.Paste) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lookup(p.UUID); err != nil {
		return err
	}
	cp := *p
	s.pastes[p.UUID] = &cp
	return nil
}

// Delete removes the paste with the given uuid.
func (s *MemoryStore) Delete(uuid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pastes[uuid]
	if !ok {
		return ErrNotFound
	}
	s.remove(p)
	if p.Expired(s.now()) {
		return ErrNotFound
	}
	return nil
}

func (s *MemoryStore) remove(p *paste.Paste) {
	delete(s.pastes, p.UUID)
	for _, id := range p.IDs() {
		if s.ids[id] == p.UUID {
			delete(s.ids, id)
		}
	}
}
