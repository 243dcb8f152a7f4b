// Package blobstore defines the content-addressed blob store external
// collaborator from spec.md §6: the engine treats the returned identifier
// as an opaque non-empty string and never inspects blob contents itself.
package blobstore

import "context"

// Store is the content-addressed blob store interface. Implementations
// must be safe for concurrent use.
type Store interface {
	// Put persists blob and returns its content identifier.
	Put(ctx context.Context, blob []byte) (cid string, err error)
	// Get retrieves the blob previously stored under cid.
	Get(ctx context.Context, cid string) ([]byte, error)
}
