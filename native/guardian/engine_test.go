package guardian_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"willvault/crypto"
	"willvault/native/auth"
	"willvault/native/common"
	"willvault/native/guardian"
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

func newTestEngine() (*guardian.Engine, *common.FixedClock) {
	clock := common.NewFixedClock(time.Unix(1_700_000_000, 0))
	return guardian.NewEngine(memory.NewGuardianStore(), clock), clock
}

func adminAuthz(caller crypto.Principal) auth.Authorization {
	return auth.New(caller, auth.RoleAdmin)
}

func willManagerAuthz(caller crypto.Principal) auth.Authorization {
	return auth.New(caller, auth.RoleWillManager)
}

func TestRegisterRejectsDuplicate(t *testing.T) {
	e, _ := newTestEngine()
	g := mustPrincipal(t, 1)

	p, err := e.Register(g, "ipfs://meta", [32]byte{1}, [32]byte{2})
	require.NoError(t, err)
	require.Equal(t, int32(100), p.Reputation)
	require.True(t, p.Active)
	require.False(t, p.Verified)

	_, err = e.Register(g, "ipfs://meta", [32]byte{1}, [32]byte{2})
	require.ErrorIs(t, err, guardian.ErrAlreadyRegistered)
}

func TestAttachToWillRequiresEligibility(t *testing.T) {
	e, _ := newTestEngine()
	g := mustPrincipal(t, 1)
	admin := mustPrincipal(t, 99)
	manager := mustPrincipal(t, 2)

	_, err := e.Register(g, "", [32]byte{}, [32]byte{})
	require.NoError(t, err)

	err = e.AttachToWill(willManagerAuthz(manager), g, 0)
	require.ErrorIs(t, err, guardian.ErrNotEligible, "unverified guardians cannot attach")

	_, err = e.Verify(adminAuthz(admin), g, true)
	require.NoError(t, err)

	require.NoError(t, e.AttachToWill(willManagerAuthz(manager), g, 0))
	profile, err := e.Get(g)
	require.NoError(t, err)
	require.Equal(t, uint32(1), profile.TotalWills)
}

func TestDetachFromWillSaturatesAtZero(t *testing.T) {
	e, _ := newTestEngine()
	g := mustPrincipal(t, 1)
	manager := mustPrincipal(t, 2)
	_, err := e.Register(g, "", [32]byte{}, [32]byte{})
	require.NoError(t, err)

	require.NoError(t, e.DetachFromWill(willManagerAuthz(manager), g))
	profile, err := e.Get(g)
	require.NoError(t, err)
	require.Equal(t, uint32(0), profile.TotalWills, "detach below zero must saturate, not underflow")
}

func TestRecordSuccessfulReleaseClipsReputation(t *testing.T) {
	e, _ := newTestEngine()
	g := mustPrincipal(t, 1)
	admin := mustPrincipal(t, 99)
	manager := mustPrincipal(t, 2)
	_, err := e.Register(g, "", [32]byte{}, [32]byte{})
	require.NoError(t, err)

	_, err = e.AdjustReputation(adminAuthz(admin), g, guardian.MaxReputation-5)
	require.NoError(t, err)

	require.NoError(t, e.RecordSuccessfulRelease(willManagerAuthz(manager), g))
	profile, err := e.Get(g)
	require.NoError(t, err)
	require.Equal(t, int32(guardian.MaxReputation), profile.Reputation, "reputation must clip at the ceiling")
	require.Equal(t, uint32(1), profile.SuccessfulReleases)
}

func TestAdjustReputationRejectsOutOfRange(t *testing.T) {
	e, _ := newTestEngine()
	g := mustPrincipal(t, 1)
	admin := mustPrincipal(t, 99)
	_, err := e.Register(g, "", [32]byte{}, [32]byte{})
	require.NoError(t, err)

	_, err = e.AdjustReputation(adminAuthz(admin), g, guardian.MaxReputation+1)
	require.ErrorIs(t, err, guardian.ErrInvalidReputation)
}

func TestEligibleGuardiansFiltersCorrectly(t *testing.T) {
	e, _ := newTestEngine()
	admin := mustPrincipal(t, 99)
	g1, g2 := mustPrincipal(t, 1), mustPrincipal(t, 2)
	_, err := e.Register(g1, "", [32]byte{}, [32]byte{})
	require.NoError(t, err)
	_, err = e.Register(g2, "", [32]byte{}, [32]byte{})
	require.NoError(t, err)
	_, err = e.Verify(adminAuthz(admin), g1, true)
	require.NoError(t, err)

	eligible, err := e.EligibleGuardians(0)
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	require.True(t, eligible[0].Equal(g1))
}

func TestDeactivateBySelfOrAdmin(t *testing.T) {
	e, _ := newTestEngine()
	g := mustPrincipal(t, 1)
	other := mustPrincipal(t, 2)
	admin := mustPrincipal(t, 99)
	_, err := e.Register(g, "", [32]byte{}, [32]byte{})
	require.NoError(t, err)

	_, err = e.Deactivate(auth.New(other), g)
	require.ErrorIs(t, err, guardian.ErrUnauthorized)

	_, err = e.Deactivate(adminAuthz(admin), g)
	require.NoError(t, err)
	profile, err := e.Get(g)
	require.NoError(t, err)
	require.False(t, profile.Active)
}
