package secretcustody

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"time"
)

// GenerateKey implements generate_key: 256 random bits.
func GenerateKey() (Key, error) {
	var k Key
	if _, err := rand.Read(k[:]); err != nil {
		return Key{}, fmt.Errorf("secretcustody: generate key: %w", err)
	}
	return k, nil
}

func newGCM(key Key) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("secretcustody: aes cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("secretcustody: gcm: %w", err)
	}
	return gcm, nil
}

// Encrypt implements encrypt: AES-256-GCM with a random 96-bit nonce per
// call. The nonce and algorithm tag travel alongside the ciphertext on the
// wire so decrypt is self-describing.
func Encrypt(plaintext []byte, key Key) (*Blob, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("secretcustody: nonce: %w", err)
	}
	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)
	return &Blob{
		Ciphertext:   ciphertext,
		Nonce:        nonce,
		AlgorithmTag: AlgorithmAESGCM,
		Timestamp:    time.Now(),
	}, nil
}

// Decrypt implements decrypt: the inverse of Encrypt. Returns
// ErrDecryptionFailed on any authentication tag mismatch — a tampered
// ciphertext, wrong key, or wrong nonce all fail closed rather than
// returning corrupted plaintext.
func Decrypt(blob *Blob, key Key) ([]byte, error) {
	if blob == nil {
		return nil, ErrDecryptionFailed
	}
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(blob.Nonce) != gcm.NonceSize() {
		return nil, ErrDecryptionFailed
	}
	plaintext, err := gcm.Open(nil, blob.Nonce, blob.Ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	return plaintext, nil
}
