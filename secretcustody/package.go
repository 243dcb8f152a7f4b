package secretcustody

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"fmt"

	"willvault/blobstore"
	"willvault/crypto"
)

// UploadBlob implements upload_blob: persists a Blob's wire encoding to the
// content-addressed store and returns its cid.
func UploadBlob(ctx context.Context, store blobstore.Store, blob *Blob) (string, error) {
	encoded, err := encodeBlob(blob)
	if err != nil {
		return "", err
	}
	return store.Put(ctx, encoded)
}

// DownloadBlob implements download_blob: the inverse of UploadBlob.
func DownloadBlob(ctx context.Context, store blobstore.Store, cid string) (*Blob, error) {
	encoded, err := store.Get(ctx, cid)
	if err != nil {
		return nil, fmt.Errorf("secretcustody: download blob %s: %w", cid, err)
	}
	return decodeBlob(encoded)
}

func encodeBlob(blob *Blob) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(blob); err != nil {
		return nil, fmt.Errorf("secretcustody: encode blob: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeBlob(encoded []byte) (*Blob, error) {
	var blob Blob
	if err := gob.NewDecoder(bytes.NewReader(encoded)).Decode(&blob); err != nil {
		return nil, fmt.Errorf("secretcustody: decode blob: %w", err)
	}
	return &blob, nil
}

// CreateWillPackage implements create_will_package end to end: generate a
// key, encrypt plaintext, hash the ciphertext (becoming payload_hash), split
// the key k-of-n across guardianPrincipals, upload the encrypted blob, and
// return everything a host needs to populate a Will record.
func CreateWillPackage(ctx context.Context, store blobstore.Store, plaintext []byte, guardianPrincipals []crypto.Principal, k uint8, metadata string) (*WillPackage, error) {
	n := len(guardianPrincipals)
	if n == 0 || int(k) < 2 || int(k) > n {
		return nil, ErrInvalidShareParams
	}

	key, err := GenerateKey()
	if err != nil {
		return nil, err
	}
	blob, err := Encrypt(plaintext, key)
	if err != nil {
		return nil, err
	}
	payloadHash := sha256.Sum256(blob.Ciphertext)

	shares, err := SplitKey(key, uint8(n), k)
	if err != nil {
		return nil, err
	}

	encoded, err := encodeBlob(blob)
	if err != nil {
		return nil, err
	}
	cid, err := store.Put(ctx, encoded)
	if err != nil {
		return nil, fmt.Errorf("secretcustody: upload encrypted payload: %w", err)
	}

	shareByGuardian := make(map[string]Share, n)
	for i, g := range guardianPrincipals {
		shareByGuardian[g.String()] = shares[i]
	}

	return &WillPackage{
		EncryptedCID: cid,
		PayloadHash:  payloadHash,
		Threshold:    k,
		Shares:       shareByGuardian,
		Metadata:     metadata,
	}, nil
}
