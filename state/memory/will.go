package memory

import (
	"sync"

	"willvault/native/will"
)

// WillStore is an in-memory will.State implementation, including the
// pending-check ring buffer the scheduler scans.
type WillStore struct {
	mu     sync.RWMutex
	wills  map[uint64]*will.Will
	nextID uint64
	ring   []uint64
	cursor int
}

// NewWillStore constructs an empty will store.
func NewWillStore() *WillStore {
	return &WillStore{wills: make(map[uint64]*will.Will)}
}

// NextWillID implements will.State.
func (s *WillStore) NextWillID() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	return s.nextID, nil
}

// Put implements will.State.
func (s *WillStore) Put(w *will.Will) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wills[w.ID] = w.Clone()
	return nil
}

// Get implements will.State.
func (s *WillStore) Get(id uint64) (*will.Will, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wills[id]
	if !ok {
		return nil, will.ErrNotFound
	}
	return w.Clone(), nil
}

// List implements will.State.
func (s *WillStore) List() ([]*will.Will, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*will.Will, 0, len(s.wills))
	for _, w := range s.wills {
		out = append(out, w.Clone())
	}
	return out, nil
}

// Enqueue implements will.State.
func (s *WillStore) Enqueue(id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ring = append(s.ring, id)
	return nil
}

// RingSnapshot implements will.State.
func (s *WillStore) RingSnapshot() ([]uint64, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.ring) == 0 {
		return nil, 0, nil
	}
	return append([]uint64(nil), s.ring...), s.cursor % len(s.ring), nil
}

// AdvanceCursor implements will.State.
func (s *WillStore) AdvanceCursor(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ring) == 0 {
		return nil
	}
	s.cursor = (s.cursor + n) % len(s.ring)
	return nil
}

// PruneReleased implements will.State.
func (s *WillStore) PruneReleased() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.ring[:0:0]
	for _, id := range s.ring {
		w, ok := s.wills[id]
		if !ok || !w.Released {
			kept = append(kept, id)
		}
	}
	if len(kept) > 0 {
		s.cursor = s.cursor % len(kept)
	} else {
		s.cursor = 0
	}
	s.ring = kept
	return nil
}
