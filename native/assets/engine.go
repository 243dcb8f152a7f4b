package assets

import (
	"context"
	"fmt"
	"math/big"

	"willvault/core/events"
	"willvault/crypto"
	"willvault/native/auth"
	"willvault/native/common"
)

const basisPointsDenominator = 10_000

// ReleaseOutcome reports the per-deposit result of a release_assets call.
// Failures are per-deposit (spec.md §4.A: "other deposits in the same
// release batch remain committed").
type ReleaseOutcome struct {
	Released []uint32
	Failed   map[uint32]error
}

// Engine implements the Asset Registry operations in spec.md §4.A.
type Engine struct {
	state      State
	transferer Transferer
	emitter    events.Emitter
	locks      *common.KeyLocks
}

// NewEngine constructs an Asset Registry engine over the given state and
// transfer adapter.
func NewEngine(state State, transferer Transferer) *Engine {
	return &Engine{
		state:      state,
		transferer: transferer,
		emitter:    events.NoopEmitter{},
		locks:      common.NewKeyLocks(),
	}
}

// SetEmitter configures the event sink. Passing nil restores a no-op sink.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(evt events.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(evt)
}

func (e *Engine) recordFirstDepositor(willID uint64, depositor crypto.Principal) error {
	_, ok, err := e.state.FirstDepositor(willID)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return e.state.SetFirstDepositor(willID, depositor)
}

func (e *Engine) nextDeposit(willID uint64, depositor crypto.Principal, payload Payload) (*Deposit, error) {
	idx, err := e.state.NextIndex(willID)
	if err != nil {
		return nil, err
	}
	d := &Deposit{WillID: willID, Index: idx, Payload: payload, Depositor: depositor}
	if err := e.state.PutDeposit(d); err != nil {
		return nil, err
	}
	if err := e.recordFirstDepositor(willID, depositor); err != nil {
		return nil, err
	}
	return d, nil
}

// DepositNative records a deposit of native value and updates the
// will-scoped and process-wide native accumulators.
func (e *Engine) DepositNative(willID uint64, depositor crypto.Principal, amount *big.Int) (*Deposit, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	unlock := e.locks.Lock(willID)
	defer unlock()

	d, err := e.nextDeposit(willID, depositor, Native{Amount: new(big.Int).Set(amount)})
	if err != nil {
		return nil, err
	}
	if err := e.state.AddNativeBalance(willID, amount); err != nil {
		return nil, err
	}
	if err := e.state.AddTotalNativeHeld(amount); err != nil {
		return nil, err
	}
	e.emit(NewDepositedEvent(d))
	return d, nil
}

// DepositFungible records a deposit of a fungible token that the host has
// already transferred into escrow.
func (e *Engine) DepositFungible(willID uint64, depositor crypto.Principal, token string, amount *big.Int) (*Deposit, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	unlock := e.locks.Lock(willID)
	defer unlock()

	d, err := e.nextDeposit(willID, depositor, Fungible{Token: token, Amount: new(big.Int).Set(amount)})
	if err != nil {
		return nil, err
	}
	e.emit(NewDepositedEvent(d))
	return d, nil
}

// DepositUnique records a deposit of a single indivisible item.
func (e *Engine) DepositUnique(willID uint64, depositor crypto.Principal, token string, tokenID *big.Int) (*Deposit, error) {
	if tokenID == nil {
		return nil, ErrInvalidAmount
	}
	unlock := e.locks.Lock(willID)
	defer unlock()

	d, err := e.nextDeposit(willID, depositor, Unique{Token: token, TokenID: new(big.Int).Set(tokenID)})
	if err != nil {
		return nil, err
	}
	e.emit(NewDepositedEvent(d))
	return d, nil
}

// DepositSemiFungible records a deposit of a quantity of a specific token id
// within a semi-fungible scope, tracking both fields simultaneously (the bug
// fix called out in spec.md §9).
func (e *Engine) DepositSemiFungible(willID uint64, depositor crypto.Principal, token string, tokenID, amount *big.Int) (*Deposit, error) {
	if tokenID == nil || amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	unlock := e.locks.Lock(willID)
	defer unlock()

	d, err := e.nextDeposit(willID, depositor, SemiFungible{Token: token, TokenID: new(big.Int).Set(tokenID), Amount: new(big.Int).Set(amount)})
	if err != nil {
		return nil, err
	}
	e.emit(NewDepositedEvent(d))
	return d, nil
}

func validateShares(beneficiaries []crypto.Principal, sharesBp []uint16) error {
	if len(beneficiaries) == 0 || len(sharesBp) == 0 {
		return ErrInvalidShares
	}
	if len(beneficiaries) != len(sharesBp) {
		return ErrInvalidShares
	}
	var sum uint32
	for _, bp := range sharesBp {
		sum += uint32(bp)
	}
	if sum != basisPointsDenominator {
		return ErrInvalidShares
	}
	return nil
}

// shareOf returns floor(quantity * bp / 10000), the dust-retaining split
// required by property 6 of spec.md §8.
func shareOf(quantity *big.Int, bp uint16) *big.Int {
	num := new(big.Int).Mul(quantity, big.NewInt(int64(bp)))
	return num.Div(num, big.NewInt(basisPointsDenominator))
}

// ReleaseAssets distributes every unreleased deposit for willID across
// beneficiaries by shares_bp. It is privileged: the caller must hold the
// WILL_MANAGER role (the Will Engine, via the Release Dispatcher).
func (e *Engine) ReleaseAssets(ctx context.Context, authz auth.Authorization, willID uint64, beneficiaries []crypto.Principal, sharesBp []uint16) (*ReleaseOutcome, error) {
	if err := auth.Require(authz, auth.RoleWillManager); err != nil {
		return nil, ErrUnauthorized
	}
	if err := validateShares(beneficiaries, sharesBp); err != nil {
		return nil, err
	}

	unlock := e.locks.Lock(willID)
	defer unlock()

	deposits, err := e.state.Deposits(willID)
	if err != nil {
		return nil, err
	}

	outcome := &ReleaseOutcome{Failed: make(map[uint32]error)}
	for _, d := range deposits {
		if d.Released {
			continue
		}
		marked := d.Clone()
		marked.Released = true
		if err := e.state.PutDeposit(marked); err != nil {
			return outcome, err
		}
		if err := e.distribute(ctx, marked, beneficiaries, sharesBp); err != nil {
			marked.Released = false
			_ = e.state.PutDeposit(marked)
			outcome.Failed[d.Index] = fmt.Errorf("%w: %v", ErrTransferFailed, err)
			continue
		}
		outcome.Released = append(outcome.Released, d.Index)
		e.emit(NewReleasedEvent(marked))
	}
	return outcome, nil
}

func (e *Engine) distribute(ctx context.Context, d *Deposit, beneficiaries []crypto.Principal, sharesBp []uint16) error {
	switch p := d.Payload.(type) {
	case Native:
		return e.distributeDivisible(ctx, ClassNative, "", p.Amount, nil, beneficiaries, sharesBp)
	case Fungible:
		return e.distributeDivisible(ctx, ClassFungible, p.Token, p.Amount, nil, beneficiaries, sharesBp)
	case SemiFungible:
		return e.distributeDivisible(ctx, ClassSemiFungible, p.Token, p.Amount, p.TokenID, beneficiaries, sharesBp)
	case Unique:
		return e.transferer.Transfer(ctx, ClassUnique, p.Token, beneficiaries[0], nil, p.TokenID)
	default:
		return fmt.Errorf("assets: unknown payload type %T", d.Payload)
	}
}

func (e *Engine) distributeDivisible(ctx context.Context, class Class, token string, quantity, tokenID *big.Int, beneficiaries []crypto.Principal, sharesBp []uint16) error {
	for i, beneficiary := range beneficiaries {
		amount := shareOf(quantity, sharesBp[i])
		if amount.Sign() <= 0 {
			continue
		}
		if err := e.transferer.Transfer(ctx, class, token, beneficiary, amount, tokenID); err != nil {
			return err
		}
	}
	return nil
}

// EmergencyWithdraw returns a single not-yet-released deposit to its
// original depositor, independent of the will's own state.
func (e *Engine) EmergencyWithdraw(ctx context.Context, willID uint64, index uint32, caller crypto.Principal) (*Deposit, error) {
	unlock := e.locks.Lock(willID)
	defer unlock()

	d, err := e.state.Deposit(willID, index)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrDepositNotFound
	}
	if d.Released {
		return nil, ErrAlreadyReleased
	}
	if !d.Depositor.Equal(caller) {
		return nil, ErrNotDepositor
	}

	marked := d.Clone()
	marked.Released = true
	if err := e.state.PutDeposit(marked); err != nil {
		return nil, err
	}

	var xferErr error
	switch p := marked.Payload.(type) {
	case Native:
		xferErr = e.transferer.Transfer(ctx, ClassNative, "", caller, p.Amount, nil)
		if xferErr == nil {
			xferErr = e.state.AddNativeBalance(willID, new(big.Int).Neg(p.Amount))
		}
	case Fungible:
		xferErr = e.transferer.Transfer(ctx, ClassFungible, p.Token, caller, p.Amount, nil)
	case Unique:
		xferErr = e.transferer.Transfer(ctx, ClassUnique, p.Token, caller, nil, p.TokenID)
	case SemiFungible:
		xferErr = e.transferer.Transfer(ctx, ClassSemiFungible, p.Token, caller, p.Amount, p.TokenID)
	}
	if xferErr != nil {
		marked.Released = false
		_ = e.state.PutDeposit(marked)
		return nil, fmt.Errorf("%w: %v", ErrTransferFailed, xferErr)
	}

	e.emit(NewEmergencyWithdrawalEvent(marked))
	return marked, nil
}

// Deposits returns every deposit recorded for willID, for read-only
// observability surfaces.
func (e *Engine) Deposits(willID uint64) ([]*Deposit, error) {
	return e.state.Deposits(willID)
}
