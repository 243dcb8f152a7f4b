package assets

import (
	"math/big"

	"willvault/crypto"
)

// State is the persistence contract the Asset Registry depends on. The host
// ledger owns the actual storage; state/memory and state/postgres provide
// reference implementations of this interface.
type State interface {
	// NextIndex returns the next free deposit index for willID (i.e. the
	// current count of deposits already recorded against it).
	NextIndex(willID uint64) (uint32, error)
	// PutDeposit inserts or updates a deposit record.
	PutDeposit(d *Deposit) error
	// Deposit loads a single deposit record, or ErrDepositNotFound.
	Deposit(willID uint64, index uint32) (*Deposit, error)
	// Deposits returns every deposit recorded for willID, ordered by index.
	Deposits(willID uint64) ([]*Deposit, error)
	// FirstDepositor returns the recorded first depositor for willID, if any.
	FirstDepositor(willID uint64) (crypto.Principal, bool, error)
	// SetFirstDepositor records the first depositor for willID. Subsequent
	// calls are no-ops per spec ("subsequent deposits do not change
	// will_depositors[will_id]").
	SetFirstDepositor(willID uint64, depositor crypto.Principal) error
	// AddNativeBalance adjusts the running native-value balance tracked for
	// willID by delta (which may be negative on withdrawal).
	AddNativeBalance(willID uint64, delta *big.Int) error
	// NativeBalance returns the current native-value balance for willID.
	NativeBalance(willID uint64) (*big.Int, error)
	// AddTotalNativeHeld adjusts the process-wide native-value accumulator.
	AddTotalNativeHeld(delta *big.Int) error
	// TotalNativeHeld returns the process-wide native-value accumulator.
	TotalNativeHeld() (*big.Int, error)
}
