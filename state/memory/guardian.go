package memory

import (
	"sync"

	"willvault/crypto"
	"willvault/native/guardian"
)

// GuardianStore is an in-memory guardian.State implementation.
type GuardianStore struct {
	mu       sync.RWMutex
	profiles map[string]*guardian.Profile
}

// NewGuardianStore constructs an empty guardian store.
func NewGuardianStore() *GuardianStore {
	return &GuardianStore{profiles: make(map[string]*guardian.Profile)}
}

// Get implements guardian.State.
func (s *GuardianStore) Get(p crypto.Principal) (*guardian.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[p.String()]
	if !ok {
		return nil, guardian.ErrNotFound
	}
	return profile.Clone(), nil
}

// Put implements guardian.State.
func (s *GuardianStore) Put(profile *guardian.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.Principal.String()] = profile.Clone()
	return nil
}

// All implements guardian.State.
func (s *GuardianStore) All() ([]*guardian.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*guardian.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p.Clone())
	}
	return out, nil
}
