// Package memory provides in-process reference implementations of every
// component's State interface, backed by plain maps guarded by one
// read-write mutex per store. The component engines' test suites run
// against it; cmd/willd does not use it, and state/postgres implements the
// same interfaces for durable deployments.
package memory

import (
	"math/big"
	"sync"

	"willvault/crypto"
	"willvault/native/assets"
)

type depositKey struct {
	willID uint64
	index  uint32
}

// AssetStore is an in-memory assets.State implementation.
type AssetStore struct {
	mu             sync.RWMutex
	deposits       map[depositKey]*assets.Deposit
	nextIndex      map[uint64]uint32
	firstDepositor map[uint64]crypto.Principal
	nativeBalance  map[uint64]*big.Int
	totalNative    *big.Int
}

// NewAssetStore constructs an empty asset store.
func NewAssetStore() *AssetStore {
	return &AssetStore{
		deposits:       make(map[depositKey]*assets.Deposit),
		nextIndex:      make(map[uint64]uint32),
		firstDepositor: make(map[uint64]crypto.Principal),
		nativeBalance:  make(map[uint64]*big.Int),
		totalNative:    big.NewInt(0),
	}
}

// NextIndex implements assets.State.
func (s *AssetStore) NextIndex(willID uint64) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.nextIndex[willID]
	s.nextIndex[willID] = idx + 1
	return idx, nil
}

// PutDeposit implements assets.State.
func (s *AssetStore) PutDeposit(d *assets.Deposit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deposits[depositKey{d.WillID, d.Index}] = d.Clone()
	return nil
}

// Deposit implements assets.State.
func (s *AssetStore) Deposit(willID uint64, index uint32) (*assets.Deposit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.deposits[depositKey{willID, index}]
	if !ok {
		return nil, assets.ErrDepositNotFound
	}
	return d.Clone(), nil
}

// Deposits implements assets.State.
func (s *AssetStore) Deposits(willID uint64) ([]*assets.Deposit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := s.nextIndex[willID]
	out := make([]*assets.Deposit, 0, count)
	for i := uint32(0); i < count; i++ {
		if d, ok := s.deposits[depositKey{willID, i}]; ok {
			out = append(out, d.Clone())
		}
	}
	return out, nil
}

// FirstDepositor implements assets.State.
func (s *AssetStore) FirstDepositor(willID uint64) (crypto.Principal, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.firstDepositor[willID]
	return p, ok, nil
}

// SetFirstDepositor implements assets.State.
func (s *AssetStore) SetFirstDepositor(willID uint64, depositor crypto.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.firstDepositor[willID]; ok {
		return nil
	}
	s.firstDepositor[willID] = depositor
	return nil
}

// AddNativeBalance implements assets.State.
func (s *AssetStore) AddNativeBalance(willID uint64, delta *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bal, ok := s.nativeBalance[willID]
	if !ok {
		bal = big.NewInt(0)
	}
	s.nativeBalance[willID] = new(big.Int).Add(bal, delta)
	return nil
}

// NativeBalance implements assets.State.
func (s *AssetStore) NativeBalance(willID uint64) (*big.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bal, ok := s.nativeBalance[willID]
	if !ok {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(bal), nil
}

// AddTotalNativeHeld implements assets.State.
func (s *AssetStore) AddTotalNativeHeld(delta *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalNative = new(big.Int).Add(s.totalNative, delta)
	return nil
}

// TotalNativeHeld implements assets.State.
func (s *AssetStore) TotalNativeHeld() (*big.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return new(big.Int).Set(s.totalNative), nil
}
