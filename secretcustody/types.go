// Package secretcustody implements the Secret Custody Library (spec
// component E): a client-side library that encrypts a payload, splits the
// symmetric key into k-of-n Shamir shares, persists the ciphertext in a
// content-addressed store, and later reconstructs the key from any k
// shares. It never touches Will Engine state directly.
package secretcustody

import "time"

// KeySize is the symmetric key length in bytes (256 bits).
const KeySize = 32

// Key is a 256-bit symmetric key.
type Key [KeySize]byte

// AlgorithmTag identifies the cipher used for a Blob, recorded for future
// migration even though this implementation only emits one value.
type AlgorithmTag string

// AlgorithmAESGCM is the only algorithm this implementation emits.
// Open Question 2 resolves the source's unauthenticated AES-CBC to
// AES-256-GCM: decrypt now fails closed on any tamper instead of silently
// returning corrupted plaintext.
const AlgorithmAESGCM AlgorithmTag = "AES-256-GCM"

// Blob is the wire representation of an encrypted payload.
type Blob struct {
	Ciphertext   []byte
	Nonce        []byte
	AlgorithmTag AlgorithmTag
	Timestamp    time.Time
}

// Share is one of n Shamir fragments of a Key.
type Share struct {
	Index     uint8
	Bytes     []byte
	K         uint8
	N         uint8
	Timestamp time.Time
	Checksum  [32]byte
}

// WillPackage is the end-to-end output of create_will_package: everything
// a host needs to populate a Will record's encrypted_cid, payload_hash,
// and per-guardian share distribution.
type WillPackage struct {
	EncryptedCID string
	PayloadHash  [32]byte
	Threshold    uint8
	Shares       map[string]Share // guardian principal string -> share
	Metadata     string
}
