package guardian

import (
	"willvault/core/events"
	"willvault/crypto"
	"willvault/native/auth"
	"willvault/native/common"
)

// Engine implements the Guardian Registry operations in spec.md §4.B.
type Engine struct {
	state   State
	emitter events.Emitter
	clock   common.Clock
	locks   *common.KeyLocks
}

// NewEngine constructs a Guardian Registry engine over the given state.
func NewEngine(state State, clock common.Clock) *Engine {
	if clock == nil {
		clock = common.SystemClock{}
	}
	return &Engine{
		state:   state,
		emitter: events.NoopEmitter{},
		clock:   clock,
		locks:   common.NewKeyLocks(),
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

// principalKey derives a lock stripe key from a principal's raw bytes. Two
// distinct principals may collide here (birthday bound on a 64-bit
// fold); a false-positive collision only costs unneeded serialization, never
// correctness, since the engine re-checks identity under the lock.
func principalKey(p crypto.Principal) uint64 {
	b := p.Bytes()
	var k uint64
	for i, v := range b {
		k ^= uint64(v) << uint(8*(i%8))
	}
	return k
}

// Register implements register. Registration is idempotent-rejecting: a
// second call for the same principal fails rather than resetting state.
func (e *Engine) Register(caller crypto.Principal, metadataURI string, publicKeyHash, commitmentRoot [32]byte) (*Profile, error) {
	unlock := e.locks.Lock(principalKey(caller))
	defer unlock()

	if _, err := e.state.Get(caller); err == nil {
		return nil, ErrAlreadyRegistered
	}

	p := &Profile{
		Principal:        caller,
		Active:           true,
		Verified:         false,
		MetadataURI:      metadataURI,
		PublicKeyHash:    publicKeyHash,
		CommitmentRoot:   commitmentRoot,
		Reputation:       startingReputation,
		RegistrationTime: e.clock.Now(),
	}
	if err := e.state.Put(p); err != nil {
		return nil, err
	}
	e.emit(NewRegisteredEvent(p))
	return p, nil
}

// Verify implements verify: admin-only toggle of the verified flag.
func (e *Engine) Verify(authz auth.Authorization, principal crypto.Principal, flag bool) (*Profile, error) {
	if err := auth.Require(authz, auth.RoleAdmin); err != nil {
		return nil, ErrUnauthorized
	}
	unlock := e.locks.Lock(principalKey(principal))
	defer unlock()

	p, err := e.state.Get(principal)
	if err != nil {
		return nil, err
	}
	p.Verified = flag
	if err := e.state.Put(p); err != nil {
		return nil, err
	}
	e.emit(NewVerifiedEvent(p))
	return p, nil
}

// Deactivate implements deactivate: the guardian itself or an admin may
// deactivate a profile.
func (e *Engine) Deactivate(authz auth.Authorization, principal crypto.Principal) (*Profile, error) {
	isSelf := authz.Caller.Equal(principal)
	if !isSelf {
		if err := auth.Require(authz, auth.RoleAdmin); err != nil {
			return nil, ErrUnauthorized
		}
	}
	unlock := e.locks.Lock(principalKey(principal))
	defer unlock()

	p, err := e.state.Get(principal)
	if err != nil {
		return nil, err
	}
	p.Active = false
	if err := e.state.Put(p); err != nil {
		return nil, err
	}
	e.emit(NewDeactivatedEvent(p))
	return p, nil
}

// AddCommitment implements add_commitment: the guardian adds a proof tag to
// its own profile. Requires the guardian be active.
func (e *Engine) AddCommitment(caller crypto.Principal, tag CommitmentTag) (*Profile, error) {
	unlock := e.locks.Lock(principalKey(caller))
	defer unlock()

	p, err := e.state.Get(caller)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, ErrNotActive
	}
	p.Commitments = append(p.Commitments, tag)
	if err := e.state.Put(p); err != nil {
		return nil, err
	}
	e.emit(NewCommitmentAddedEvent(caller, tag))
	return p, nil
}

// AttachToWill implements attach_to_will: privileged, called by the Will
// Engine when a new will references a guardian. Requires the guardian be
// registered, active, verified, above minReputation, and under
// MaxWillsPerGuardian workload.
func (e *Engine) AttachToWill(authz auth.Authorization, principal crypto.Principal, minReputation int32) error {
	if err := auth.Require(authz, auth.RoleWillManager); err != nil {
		return ErrUnauthorized
	}
	unlock := e.locks.Lock(principalKey(principal))
	defer unlock()

	p, err := e.state.Get(principal)
	if err != nil {
		return err
	}
	if !p.eligible(minReputation) {
		return ErrNotEligible
	}
	p.TotalWills++
	return e.state.Put(p)
}

// DetachFromWill implements detach_from_will: a saturating decrement of
// total_wills, per property 10.
func (e *Engine) DetachFromWill(authz auth.Authorization, principal crypto.Principal) error {
	if err := auth.Require(authz, auth.RoleWillManager); err != nil {
		return ErrUnauthorized
	}
	unlock := e.locks.Lock(principalKey(principal))
	defer unlock()

	p, err := e.state.Get(principal)
	if err != nil {
		return err
	}
	if p.TotalWills > 0 {
		p.TotalWills--
	}
	return e.state.Put(p)
}

// RecordSuccessfulRelease implements record_successful_release: called by
// the Release Dispatcher for every approving guardian of a finalized will.
func (e *Engine) RecordSuccessfulRelease(authz auth.Authorization, principal crypto.Principal) error {
	if err := auth.Require(authz, auth.RoleWillManager); err != nil {
		return ErrUnauthorized
	}
	unlock := e.locks.Lock(principalKey(principal))
	defer unlock()

	p, err := e.state.Get(principal)
	if err != nil {
		return err
	}
	p.SuccessfulReleases++
	p.Reputation += reputationPerRelease
	if p.Reputation > MaxReputation {
		p.Reputation = MaxReputation
	}
	if err := e.state.Put(p); err != nil {
		return err
	}
	e.emit(NewReputationUpdatedEvent(p))
	return nil
}

// AdjustReputation implements adjust_reputation: admin-only; a newValue
// outside [0, MaxReputation] is rejected with ErrInvalidReputation.
func (e *Engine) AdjustReputation(authz auth.Authorization, principal crypto.Principal, newValue int32) (*Profile, error) {
	if err := auth.Require(authz, auth.RoleAdmin); err != nil {
		return nil, ErrUnauthorized
	}
	if newValue < 0 || newValue > MaxReputation {
		return nil, ErrInvalidReputation
	}
	unlock := e.locks.Lock(principalKey(principal))
	defer unlock()

	p, err := e.state.Get(principal)
	if err != nil {
		return nil, err
	}
	p.Reputation = newValue
	if err := e.state.Put(p); err != nil {
		return nil, err
	}
	e.emit(NewReputationUpdatedEvent(p))
	return p, nil
}

// EligibleGuardians implements eligible_guardians: enumerates principals
// satisfying active ∧ verified ∧ reputation ≥ minReputation ∧
// total_wills < MaxWillsPerGuardian.
func (e *Engine) EligibleGuardians(minReputation int32) ([]crypto.Principal, error) {
	all, err := e.state.All()
	if err != nil {
		return nil, err
	}
	out := make([]crypto.Principal, 0, len(all))
	for _, p := range all {
		if p.eligible(minReputation) {
			out = append(out, p.Principal)
		}
	}
	return out, nil
}

// Get returns a guardian's profile for read-only observability surfaces.
func (e *Engine) Get(principal crypto.Principal) (*Profile, error) {
	return e.state.Get(principal)
}
