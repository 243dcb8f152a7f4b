package will_test

import (
	"context"
	"crypto/sha256"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"willvault/crypto"
	"willvault/native/auth"
	"willvault/native/common"
	"willvault/native/will"
	"willvault/state/memory"
)

func mustPrincipal(t *testing.T, seed byte) crypto.Principal {
	t.Helper()
	b := make([]byte, 20)
	for i := range b {
		b[i] = seed
	}
	p, err := crypto.NewPrincipal(crypto.WillPrefix, b)
	require.NoError(t, err)
	return p
}

func payloadHash(s string) [32]byte {
	return sha256.Sum256([]byte(s))
}

type recordingDispatcher struct {
	calls []uint64
	err   error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, willID uint64, _ []crypto.Principal, _ []uint16, _ []crypto.Principal) error {
	d.calls = append(d.calls, willID)
	return d.err
}

func newTestEngine() (*will.Engine, *common.FixedClock, *recordingDispatcher) {
	clock := common.NewFixedClock(time.Unix(1_700_000_000, 0))
	dispatcher := &recordingDispatcher{}
	e := will.NewEngine(memory.NewWillStore(), clock, nil, dispatcher)
	return e, clock, dispatcher
}

func createTestWill(t *testing.T, e *will.Engine, owner crypto.Principal, guardians []crypto.Principal, threshold uint8, beneficiaries []crypto.Principal, vault *crypto.Principal) uint64 {
	t.Helper()
	id, err := e.CreateWill(auth.New(owner), guardians, threshold, "bafy-test-cid", payloadHash("secret"), 7*24*time.Hour, beneficiaries, vault)
	require.NoError(t, err)
	return id
}

func schedulerAuthz(caller crypto.Principal) auth.Authorization {
	return auth.New(caller, auth.RoleScheduler)
}

// TestHappyPath implements scenario E1.
func TestHappyPath(t *testing.T) {
	e, clock, dispatcher := newTestEngine()
	owner := mustPrincipal(t, 1)
	g1, g2, g3 := mustPrincipal(t, 10), mustPrincipal(t, 11), mustPrincipal(t, 12)
	b1 := mustPrincipal(t, 20)
	vault := mustPrincipal(t, 30)

	id := createTestWill(t, e, owner, []crypto.Principal{g1, g2, g3}, 2, []crypto.Principal{b1}, &vault)

	clock.Advance(7*24*time.Hour + time.Second)

	require.NoError(t, e.GuardianApprove(auth.New(g1), id))
	w, err := e.Get(id)
	require.NoError(t, err)
	require.Equal(t, uint32(0b001), w.ApprovalsBitmap)
	require.False(t, w.ReleaseRequested)

	require.NoError(t, e.GuardianApprove(auth.New(g2), id))
	w, err = e.Get(id)
	require.NoError(t, err)
	require.Equal(t, uint32(0b011), w.ApprovalsBitmap)
	require.True(t, w.ReleaseRequested)
	requestTS := w.ReleaseRequestTS

	clock.Advance(7*24*time.Hour + time.Second)

	require.NoError(t, e.FinalizeRelease(context.Background(), schedulerAuthz(owner), id))
	w, err = e.Get(id)
	require.NoError(t, err)
	require.True(t, w.Released)
	require.Equal(t, requestTS, w.ReleaseRequestTS)
	require.Equal(t, []uint64{id}, dispatcher.calls)
}

// TestPrematureFinalize implements scenario E2.
func TestPrematureFinalize(t *testing.T) {
	e, clock, _ := newTestEngine()
	owner := mustPrincipal(t, 1)
	g1, g2, g3 := mustPrincipal(t, 10), mustPrincipal(t, 11), mustPrincipal(t, 12)
	b1 := mustPrincipal(t, 20)

	id := createTestWill(t, e, owner, []crypto.Principal{g1, g2, g3}, 2, []crypto.Principal{b1}, nil)
	clock.Advance(7*24*time.Hour + time.Second)
	require.NoError(t, e.GuardianApprove(auth.New(g1), id))
	require.NoError(t, e.GuardianApprove(auth.New(g2), id))

	err := e.FinalizeRelease(context.Background(), schedulerAuthz(owner), id)
	require.ErrorIs(t, err, will.ErrTimelockNotExpired)

	w, err := e.Get(id)
	require.NoError(t, err)
	require.True(t, w.ReleaseRequested)
	require.False(t, w.Released)
}

// TestIdempotentApproval implements scenario E3.
func TestIdempotentApproval(t *testing.T) {
	e, _, _ := newTestEngine()
	owner := mustPrincipal(t, 1)
	g1, g2, g3 := mustPrincipal(t, 10), mustPrincipal(t, 11), mustPrincipal(t, 12)
	b1 := mustPrincipal(t, 20)
	id := createTestWill(t, e, owner, []crypto.Principal{g1, g2, g3}, 2, []crypto.Principal{b1}, nil)

	require.NoError(t, e.GuardianApprove(auth.New(g1), id))
	require.NoError(t, e.GuardianApprove(auth.New(g1), id))

	w, err := e.Get(id)
	require.NoError(t, err)
	require.Equal(t, uint32(0b001), w.ApprovalsBitmap)
	require.False(t, w.ReleaseRequested)
}

// TestOwnerOverride implements scenario E4.
func TestOwnerOverride(t *testing.T) {
	e, clock, _ := newTestEngine()
	owner := mustPrincipal(t, 1)
	g1, g2, g3 := mustPrincipal(t, 10), mustPrincipal(t, 11), mustPrincipal(t, 12)
	b1 := mustPrincipal(t, 20)
	id := createTestWill(t, e, owner, []crypto.Principal{g1, g2, g3}, 2, []crypto.Principal{b1}, nil)

	require.NoError(t, e.RequestReleaseByOwner(auth.New(owner), id))
	w, err := e.Get(id)
	require.NoError(t, err)
	require.True(t, w.ReleaseRequested)

	clock.Advance(7*24*time.Hour + time.Second)
	require.NoError(t, e.FinalizeRelease(context.Background(), schedulerAuthz(owner), id))
	w, err = e.Get(id)
	require.NoError(t, err)
	require.True(t, w.Released)
}

func TestCreateWillRejectsGuardianAsOwner(t *testing.T) {
	e, _, _ := newTestEngine()
	owner := mustPrincipal(t, 1)
	b1 := mustPrincipal(t, 20)
	_, err := e.CreateWill(auth.New(owner), []crypto.Principal{owner}, 1, "cid", payloadHash("x"), 7*24*time.Hour, []crypto.Principal{b1}, nil)
	require.ErrorIs(t, err, will.ErrInvalidParameters)
}

func TestCreateWillRejectsOutOfRangeHeartbeat(t *testing.T) {
	e, _, _ := newTestEngine()
	owner := mustPrincipal(t, 1)
	g1 := mustPrincipal(t, 10)
	b1 := mustPrincipal(t, 20)
	_, err := e.CreateWill(auth.New(owner), []crypto.Principal{g1}, 1, "cid", payloadHash("x"), time.Hour, []crypto.Principal{b1}, nil)
	require.ErrorIs(t, err, will.ErrInvalidParameters)
}

func TestHeartbeatRejectsNonOwner(t *testing.T) {
	e, _, _ := newTestEngine()
	owner := mustPrincipal(t, 1)
	other := mustPrincipal(t, 2)
	g1 := mustPrincipal(t, 10)
	b1 := mustPrincipal(t, 20)
	id := createTestWill(t, e, owner, []crypto.Principal{g1}, 1, []crypto.Principal{b1}, nil)

	err := e.Heartbeat(auth.New(other), id)
	require.ErrorIs(t, err, will.ErrNotOwner)
}

func TestFinalizeRejectsWithoutSchedulerRole(t *testing.T) {
	e, clock, _ := newTestEngine()
	owner := mustPrincipal(t, 1)
	g1 := mustPrincipal(t, 10)
	b1 := mustPrincipal(t, 20)
	id := createTestWill(t, e, owner, []crypto.Principal{g1}, 1, []crypto.Principal{b1}, nil)
	require.NoError(t, e.RequestReleaseByOwner(auth.New(owner), id))
	clock.Advance(7*24*time.Hour + time.Second)

	err := e.FinalizeRelease(context.Background(), auth.New(owner), id)
	require.ErrorIs(t, err, will.ErrUnauthorized)
}

func TestSchedulerPollAndPerform(t *testing.T) {
	e, clock, _ := newTestEngine()
	owner := mustPrincipal(t, 1)
	g1 := mustPrincipal(t, 10)
	b1 := mustPrincipal(t, 20)
	id := createTestWill(t, e, owner, []crypto.Principal{g1}, 1, []crypto.Principal{b1}, nil)

	clock.Advance(7*24*time.Hour + time.Second)
	require.NoError(t, e.GuardianApprove(auth.New(g1), id))

	w, err := e.Get(id)
	require.NoError(t, err)
	require.True(t, w.ReleaseRequested, "single-guardian quorum should already have requested release via approve")

	// is_eligible_for_release is a pure predicate over heartbeat/quorum and
	// does not itself consult release_requested, so the already-requested
	// will still surfaces in the poll; scheduler_perform on it is then a
	// harmless no-op.
	needsWork, work, err := e.SchedulerPoll(10)
	require.NoError(t, err)
	require.True(t, needsWork)
	require.Equal(t, []uint64{id}, work)

	require.NoError(t, e.SchedulerPerform(schedulerAuthz(owner), work))
	w, err = e.Get(id)
	require.NoError(t, err)
	require.False(t, w.Released, "scheduler_perform only requests release; finalize still requires the timelock")
}

func TestApprovalReachingQuorumRequestsRelease(t *testing.T) {
	e, clock, _ := newTestEngine()
	owner := mustPrincipal(t, 1)
	g1, g2 := mustPrincipal(t, 10), mustPrincipal(t, 11)
	b1 := mustPrincipal(t, 20)
	id := createTestWill(t, e, owner, []crypto.Principal{g1, g2}, 2, []crypto.Principal{b1}, nil)

	// Approve only one of two guardians: quorum unmet, so guardian_approve
	// alone never transitions to RELEASE_REQUESTED.
	require.NoError(t, e.GuardianApprove(auth.New(g1), id))
	clock.Advance(7*24*time.Hour + time.Second)

	w, err := e.Get(id)
	require.NoError(t, err)
	require.False(t, w.ReleaseRequested)
	eligible, err := e.IsEligibleForRelease(id)
	require.NoError(t, err)
	require.False(t, eligible, "quorum not met yet")

	require.NoError(t, e.GuardianApprove(auth.New(g2), id))
	w, err = e.Get(id)
	require.NoError(t, err)
	require.True(t, w.ReleaseRequested, "second approval reaches quorum and auto-requests release")
}

func TestShareDefaultEqualSplitWithRemainderToFirst(t *testing.T) {
	w := &will.Will{Beneficiaries: []crypto.Principal{
		mustPrincipal(t, 1), mustPrincipal(t, 2), mustPrincipal(t, 3),
	}}
	shares := w.Shares()
	require.Equal(t, []uint16{3334, 3333, 3333}, shares)
	var sum int
	for _, s := range shares {
		sum += int(s)
	}
	require.Equal(t, 10_000, sum)
}

func TestExportStateUnsupported(t *testing.T) {
	e, _, _ := newTestEngine()
	_, err := e.ExportState(1)
	require.ErrorIs(t, err, will.ErrMigrationUnsupported)
}
