package will

import (
	"context"
	"math/bits"
	"time"

	"willvault/core/events"
	"willvault/crypto"
	"willvault/native/auth"
	"willvault/native/common"
)

// Engine implements the Will Engine operations in spec.md §4.C.
type Engine struct {
	state      State
	clock      common.Clock
	pause      common.PauseView
	emitter    events.Emitter
	locks      *common.KeyLocks
	guardians  GuardianAttacher
	dispatcher Dispatcher

	// internalAuthz is presented to GuardianAttacher/Dispatcher calls the
	// engine itself originates, since those components gate on role, not
	// on the end-user caller's identity.
	internalAuthz auth.Authorization

	// minGuardianReputation is the eligibility floor applied when
	// attaching a guardian to a newly created will.
	minGuardianReputation int32
}

// NewEngine constructs a Will Engine. guardians and dispatcher may be nil
// (a will-only deployment with no custody vault wired in); clock defaults
// to the system clock; pause defaults to never-paused.
func NewEngine(state State, clock common.Clock, guardians GuardianAttacher, dispatcher Dispatcher) *Engine {
	if clock == nil {
		clock = common.SystemClock{}
	}
	return &Engine{
		state:                 state,
		clock:                 clock,
		emitter:               events.NoopEmitter{},
		locks:                 common.NewKeyLocks(),
		guardians:             guardians,
		dispatcher:            dispatcher,
		internalAuthz:         auth.New(crypto.Principal{}, auth.RoleWillManager),
		minGuardianReputation: 0,
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

// SetPauseView wires an admin pause gate. Passing nil disables pausing.
func (e *Engine) SetPauseView(p common.PauseView) {
	e.pause = p
}

// SetMinGuardianReputation overrides the eligibility floor applied when
// attaching guardians during create_will. Default is 0 (no floor beyond
// Guardian Registry's own active/verified gate).
func (e *Engine) SetMinGuardianReputation(min int32) {
	e.minGuardianReputation = min
}

func (e *Engine) emit(evt events.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(evt)
}

func (e *Engine) guardPaused() error {
	if err := common.Guard(e.pause, "will"); err != nil {
		return ErrPaused
	}
	return nil
}

func distinctAndNonZero(principals []crypto.Principal) bool {
	seen := make(map[string]struct{}, len(principals))
	for _, p := range principals {
		if p.IsZero() {
			return false
		}
		key := p.String()
		if _, ok := seen[key]; ok {
			return false
		}
		seen[key] = struct{}{}
	}
	return true
}

func zeroHash(h [32]byte) bool {
	for _, b := range h {
		if b != 0 {
			return false
		}
	}
	return true
}

// CreateWill implements create_will. The caller in authz becomes the will's
// owner.
func (e *Engine) CreateWill(authz auth.Authorization, guardians []crypto.Principal, threshold uint8, encryptedCID string, payloadHash [32]byte, heartbeatTimeout time.Duration, beneficiaries []crypto.Principal, vault *crypto.Principal) (uint64, error) {
	if err := e.guardPaused(); err != nil {
		return 0, err
	}

	if len(guardians) < 1 || len(guardians) > MaxGuardians {
		return 0, ErrInvalidParameters
	}
	if len(beneficiaries) < 1 || len(beneficiaries) > MaxBeneficiaries {
		return 0, ErrInvalidParameters
	}
	if threshold < 1 || int(threshold) > len(guardians) {
		return 0, ErrInvalidParameters
	}
	timeoutSeconds := int64(heartbeatTimeout / time.Second)
	if timeoutSeconds < MinHeartbeatTimeout || timeoutSeconds > MaxHeartbeatTimeout {
		return 0, ErrInvalidParameters
	}
	if encryptedCID == "" {
		return 0, ErrInvalidParameters
	}
	if zeroHash(payloadHash) {
		return 0, ErrInvalidParameters
	}
	if !distinctAndNonZero(guardians) || !distinctAndNonZero(beneficiaries) {
		return 0, ErrInvalidParameters
	}
	for _, g := range guardians {
		if g.Equal(authz.Caller) {
			return 0, ErrInvalidParameters
		}
	}

	id, err := e.state.NextWillID()
	if err != nil {
		return 0, err
	}

	now := e.clock.Now()
	w := &Will{
		ID:                id,
		Owner:             authz.Caller,
		Beneficiaries:     append([]crypto.Principal(nil), beneficiaries...),
		Guardians:         append([]crypto.Principal(nil), guardians...),
		GuardianThreshold: threshold,
		EncryptedCID:      encryptedCID,
		PayloadHash:       payloadHash,
		HeartbeatTimeout:  heartbeatTimeout,
		LastHeartbeat:     now,
		VaultAddress:      vault,
		CreatedAt:         now,
	}

	if e.guardians != nil {
		for _, g := range guardians {
			if err := e.guardians.AttachToWill(e.internalAuthz, g, e.minGuardianReputation); err != nil {
				return 0, err
			}
		}
	}

	if err := e.state.Put(w); err != nil {
		return 0, err
	}
	if err := e.state.Enqueue(id); err != nil {
		return 0, err
	}
	e.emit(NewWillCreatedEvent(w))
	return id, nil
}

// Heartbeat implements heartbeat.
func (e *Engine) Heartbeat(authz auth.Authorization, willID uint64) error {
	if err := e.guardPaused(); err != nil {
		return err
	}
	unlock := e.locks.Lock(willID)
	defer unlock()

	w, err := e.state.Get(willID)
	if err != nil {
		return err
	}
	if !w.Owner.Equal(authz.Caller) {
		return ErrNotOwner
	}
	if w.Released {
		return ErrAlreadyReleased
	}
	w.LastHeartbeat = e.clock.Now()
	if err := e.state.Put(w); err != nil {
		return err
	}
	e.emit(NewHeartbeatEvent(w))
	return nil
}

// GuardianApprove implements guardian_approve. Idempotent: re-approval by
// the same guardian returns success with no state change.
func (e *Engine) GuardianApprove(authz auth.Authorization, willID uint64) error {
	if err := e.guardPaused(); err != nil {
		return err
	}
	unlock := e.locks.Lock(willID)
	defer unlock()

	w, err := e.state.Get(willID)
	if err != nil {
		return err
	}
	if w.Released {
		return ErrAlreadyReleased
	}
	idx, ok := w.GuardianIndex(authz.Caller)
	if !ok {
		return ErrNotGuardian
	}
	bit := uint32(1) << uint(idx)
	if w.ApprovalsBitmap&bit != 0 {
		return nil
	}
	w.ApprovalsBitmap |= bit
	e.emit(NewGuardianApprovedEvent(w, idx))

	if bits.OnesCount32(w.ApprovalsBitmap) >= int(w.GuardianThreshold) && !w.ReleaseRequested {
		now := e.clock.Now()
		w.ReleaseRequested = true
		w.ReleaseRequestTS = now
		e.emit(NewReleaseRequestedEvent(w, now.Add(ReleaseTimelockDuration())))
	}

	return e.state.Put(w)
}

// RequestReleaseByOwner implements request_release_by_owner. Idempotent.
func (e *Engine) RequestReleaseByOwner(authz auth.Authorization, willID uint64) error {
	unlock := e.locks.Lock(willID)
	defer unlock()

	w, err := e.state.Get(willID)
	if err != nil {
		return err
	}
	if !w.Owner.Equal(authz.Caller) {
		return ErrNotOwner
	}
	if w.Released {
		return ErrAlreadyReleased
	}
	if w.ReleaseRequested {
		return nil
	}
	now := e.clock.Now()
	w.ReleaseRequested = true
	w.ReleaseRequestTS = now
	if err := e.state.Put(w); err != nil {
		return err
	}
	e.emit(NewReleaseRequestedEvent(w, now.Add(ReleaseTimelockDuration())))
	return nil
}

// FinalizeRelease implements finalize_release. Privileged: requires the
// SCHEDULER role. Dispatcher failure is returned to the caller but never
// reverts w.Released, per spec.md §4.D.
func (e *Engine) FinalizeRelease(ctx context.Context, authz auth.Authorization, willID uint64) error {
	if err := auth.Require(authz, auth.RoleScheduler); err != nil {
		return ErrUnauthorized
	}
	unlock := e.locks.Lock(willID)

	w, err := e.state.Get(willID)
	if err != nil {
		unlock()
		return err
	}
	if w.Released {
		unlock()
		return ErrAlreadyReleased
	}
	if !w.ReleaseRequested {
		unlock()
		return ErrNotRequested
	}
	if e.clock.Now().Before(w.ReleaseRequestTS.Add(ReleaseTimelockDuration())) {
		unlock()
		return ErrTimelockNotExpired
	}

	w.Released = true
	if err := e.state.Put(w); err != nil {
		unlock()
		return err
	}
	e.emit(NewReleaseFinalizedEvent(w))
	unlock()

	if w.VaultAddress == nil || e.dispatcher == nil {
		return nil
	}
	approving := make([]crypto.Principal, 0, len(w.Guardians))
	for i, g := range w.Guardians {
		if w.ApprovalsBitmap&(uint32(1)<<uint(i)) != 0 {
			approving = append(approving, g)
		}
	}
	return e.dispatcher.Dispatch(ctx, willID, w.Beneficiaries, w.Shares(), approving)
}

// IsEligibleForRelease implements is_eligible_for_release: a pure predicate.
func (e *Engine) IsEligibleForRelease(willID uint64) (bool, error) {
	w, err := e.state.Get(willID)
	if err != nil {
		return false, err
	}
	return e.isEligible(w), nil
}

func (e *Engine) isEligible(w *Will) bool {
	if w.Released || w.Owner.IsZero() {
		return false
	}
	if e.clock.Now().Before(w.LastHeartbeat.Add(w.HeartbeatTimeout)) {
		return false
	}
	return bits.OnesCount32(w.ApprovalsBitmap) >= int(w.GuardianThreshold)
}

// SchedulerPoll implements scheduler_poll: a bounded, non-mutating (with
// respect to will state) scan over the pending-check ring buffer.
func (e *Engine) SchedulerPoll(batchSize int) (bool, []uint64, error) {
	if batchSize <= 0 {
		batchSize = defaultSchedulerBatchSize
	}
	ring, cursor, err := e.state.RingSnapshot()
	if err != nil {
		return false, nil, err
	}
	if len(ring) == 0 {
		return false, nil, nil
	}

	work := make([]uint64, 0, batchSize)
	visits := batchSize
	if visits > len(ring) {
		visits = len(ring)
	}
	for i := 0; i < visits; i++ {
		id := ring[(cursor+i)%len(ring)]
		w, err := e.state.Get(id)
		if err != nil {
			continue
		}
		if e.isEligible(w) {
			work = append(work, id)
		}
	}

	if err := e.state.AdvanceCursor(batchSize); err != nil {
		return false, nil, err
	}
	// Lazy compaction (Open Question 4): drop released wills from the
	// ring so the cursor stops revisiting them forever.
	_ = e.state.PruneReleased()

	return len(work) > 0, work, nil
}

// SchedulerPerform implements scheduler_perform. Privileged: requires the
// SCHEDULER role.
func (e *Engine) SchedulerPerform(authz auth.Authorization, workList []uint64) error {
	if err := auth.Require(authz, auth.RoleScheduler); err != nil {
		return ErrUnauthorized
	}
	for _, id := range workList {
		if err := e.performOne(id); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) performOne(willID uint64) error {
	unlock := e.locks.Lock(willID)
	defer unlock()

	w, err := e.state.Get(willID)
	if err != nil {
		return err
	}
	if w.Released || w.ReleaseRequested {
		return nil
	}
	if !e.isEligible(w) {
		return nil
	}
	now := e.clock.Now()
	w.ReleaseRequested = true
	w.ReleaseRequestTS = now
	if err := e.state.Put(w); err != nil {
		return err
	}
	e.emit(NewReleaseRequestedEvent(w, now.Add(ReleaseTimelockDuration())))
	return nil
}

// Get returns a single will record for read-only observability surfaces.
func (e *Engine) Get(willID uint64) (*Will, error) {
	return e.state.Get(willID)
}

// List returns every will record for read-only observability surfaces.
func (e *Engine) List() ([]*Will, error) {
	return e.state.List()
}

// ExportState is the cross-host migration hook named in spec.md §1. Its
// multi-party authorization protocol is explicitly unspecified there, so
// this implementation only reports that unavailability rather than
// guessing at a protocol.
func (e *Engine) ExportState(willID uint64) ([]byte, error) {
	return nil, ErrMigrationUnsupported
}
