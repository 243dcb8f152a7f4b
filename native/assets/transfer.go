package assets

import (
	"context"
	"math/big"

	"willvault/crypto"
)

// Transferer performs the external movement of an asset once the registry
// has decided a beneficiary is owed it. It is the only suspension point in
// this package — everything else is synchronous bookkeeping.
type Transferer interface {
	// Transfer moves amount (or, for Unique, the item identified by
	// tokenID) of token to recipient. amount is nil for Unique transfers;
	// tokenID is nil except for Unique and SemiFungible transfers.
	Transfer(ctx context.Context, class Class, token string, recipient crypto.Principal, amount, tokenID *big.Int) error
}
