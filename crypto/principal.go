// Package crypto provides the principal identity type shared by every
// component of the engine. A Principal identifies an owner, beneficiary, or
// guardian; the engine never interprets it beyond equality and bech32
// round-tripping — authentication of the underlying caller is the host
// ledger's responsibility.
package crypto

import (
	"fmt"

	"github.com/btcsuite/btcutil/bech32"
)

// PrincipalPrefix is the human-readable prefix used when rendering a
// Principal in bech32 form.
type PrincipalPrefix string

const (
	// WillPrefix is used for principals minted by this engine's own demo
	// tooling (cmd/willd, tests). Host ledgers typically decode their own
	// native address encoding into a Principal instead.
	WillPrefix PrincipalPrefix = "will"
)

// Principal is a 20-byte identity shared by owners, guardians, and
// beneficiaries.
type Principal struct {
	prefix PrincipalPrefix
	bytes  []byte
}

// IsZero reports whether p is the unset value.
func (p Principal) IsZero() bool {
	return len(p.bytes) == 0
}

// NewPrincipal constructs a Principal from a 20-byte identifier.
func NewPrincipal(prefix PrincipalPrefix, b []byte) (Principal, error) {
	if len(b) != 20 {
		return Principal{}, fmt.Errorf("crypto: principal must be 20 bytes, got %d", len(b))
	}
	cloned := append([]byte(nil), b...)
	return Principal{prefix: prefix, bytes: cloned}, nil
}

// MustNewPrincipal constructs a Principal and panics on invalid input. Used
// only in tests and fixture data.
func MustNewPrincipal(prefix PrincipalPrefix, b []byte) Principal {
	p, err := NewPrincipal(prefix, b)
	if err != nil {
		panic(err)
	}
	return p
}

// Bytes returns a defensive copy of the principal's raw identifier.
func (p Principal) Bytes() []byte {
	return append([]byte(nil), p.bytes...)
}

// Equal reports whether two principals identify the same underlying bytes,
// ignoring the rendering prefix.
func (p Principal) Equal(other Principal) bool {
	if len(p.bytes) != len(other.bytes) {
		return false
	}
	for i := range p.bytes {
		if p.bytes[i] != other.bytes[i] {
			return false
		}
	}
	return true
}

// String renders the principal using bech32 with its configured prefix.
func (p Principal) String() string {
	if p.IsZero() {
		return ""
	}
	conv, err := bech32.ConvertBits(p.bytes, 8, 5, true)
	if err != nil {
		panic(err)
	}
	encoded, err := bech32.Encode(string(p.prefix), conv)
	if err != nil {
		panic(err)
	}
	return encoded
}

// DecodePrincipal parses a bech32-encoded principal string.
func DecodePrincipal(s string) (Principal, error) {
	prefix, data, err := bech32.Decode(s)
	if err != nil {
		return Principal{}, fmt.Errorf("crypto: invalid bech32 principal: %w", err)
	}
	decoded, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return Principal{}, fmt.Errorf("crypto: invalid bech32 principal: %w", err)
	}
	return NewPrincipal(PrincipalPrefix(prefix), decoded)
}
