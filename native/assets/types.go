// Package assets implements the Asset Registry (spec component A): an escrow
// holding heterogeneous asset classes per will id, distributed on command by
// the Release Dispatcher and otherwise untouched by any other component.
package assets

import (
	"math/big"

	"willvault/crypto"
)

// Class identifies which of the four supported asset kinds a deposit holds.
type Class uint8

const (
	ClassNative Class = iota
	ClassFungible
	ClassUnique
	ClassSemiFungible
)

// String renders the class for logs and events.
func (c Class) String() string {
	switch c {
	case ClassNative:
		return "native"
	case ClassFungible:
		return "fungible"
	case ClassUnique:
		return "unique"
	case ClassSemiFungible:
		return "semi_fungible"
	default:
		return "unknown"
	}
}

// Payload is a tagged-sum asset representation. Each concrete type below
// carries exactly the fields its class needs, replacing the source's single
// overloaded "quantity" field (spec.md §9) — in particular SemiFungible
// carries both a token id and an amount simultaneously, which the source's
// storage layout could not represent.
type Payload interface {
	Class() Class
	clone() Payload
}

// Native is a deposit of the host chain's native value.
type Native struct {
	Amount *big.Int
}

// Class implements Payload.
func (Native) Class() Class { return ClassNative }

func (n Native) clone() Payload {
	return Native{Amount: cloneBig(n.Amount)}
}

// Fungible is a deposit of an externally scoped fungible token.
type Fungible struct {
	Token  string
	Amount *big.Int
}

// Class implements Payload.
func (Fungible) Class() Class { return ClassFungible }

func (f Fungible) clone() Payload {
	return Fungible{Token: f.Token, Amount: cloneBig(f.Amount)}
}

// Unique is a deposit of a single indivisible non-fungible item.
type Unique struct {
	Token   string
	TokenID *big.Int
}

// Class implements Payload.
func (Unique) Class() Class { return ClassUnique }

func (u Unique) clone() Payload {
	return Unique{Token: u.Token, TokenID: cloneBig(u.TokenID)}
}

// SemiFungible is a deposit of a quantity of a specific token id within a
// semi-fungible token scope (e.g. an ERC-1155-style item).
type SemiFungible struct {
	Token   string
	TokenID *big.Int
	Amount  *big.Int
}

// Class implements Payload.
func (SemiFungible) Class() Class { return ClassSemiFungible }

func (s SemiFungible) clone() Payload {
	return SemiFungible{Token: s.Token, TokenID: cloneBig(s.TokenID), Amount: cloneBig(s.Amount)}
}

func cloneBig(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

// Deposit is a single escrowed asset record keyed by (WillID, Index).
type Deposit struct {
	WillID    uint64
	Index     uint32
	Payload   Payload
	Depositor crypto.Principal
	Released  bool
}

// Clone returns a deep copy safe for callers to mutate.
func (d *Deposit) Clone() *Deposit {
	if d == nil {
		return nil
	}
	clone := *d
	if d.Payload != nil {
		clone.Payload = d.Payload.clone()
	}
	return &clone
}
