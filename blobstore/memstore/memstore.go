// Package memstore is an in-memory blobstore.Store used by tests; cmd/willd
// does not use it.
package memstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
)

// Store is a sync.Map-backed content-addressed blob store.
type Store struct {
	blobs sync.Map // cid -> []byte
}

// New constructs an empty store.
func New() *Store {
	return &Store{}
}

// Put implements blobstore.Store.
func (s *Store) Put(_ context.Context, blob []byte) (string, error) {
	sum := sha256.Sum256(blob)
	cid := hex.EncodeToString(sum[:])
	s.blobs.Store(cid, append([]byte(nil), blob...))
	return cid, nil
}

// Get implements blobstore.Store.
func (s *Store) Get(_ context.Context, cid string) ([]byte, error) {
	v, ok := s.blobs.Load(cid)
	if !ok {
		return nil, fmt.Errorf("memstore: blob %s not found", cid)
	}
	return append([]byte(nil), v.([]byte)...), nil
}
