package dispatch_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"willvault/crypto"
	"willvault/native/assets"
	"willvault/native/common"
	"willvault/native/dispatch"
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

func TestDispatchReleasesAssetsAndCreditsApprovingGuardians(t *testing.T) {
	owner := mustPrincipal(t, 1)
	g1, g2 := mustPrincipal(t, 10), mustPrincipal(t, 11)
	beneficiary := mustPrincipal(t, 20)

	ledger := assets.NewInMemoryLedger()
	assetsEngine := assets.NewEngine(memory.NewAssetStore(), ledger)
	_, err := assetsEngine.DepositFungible(1, owner, "GOOD", big.NewInt(100))
	require.NoError(t, err)

	clock := common.NewFixedClock(time.Unix(1_700_000_000, 0))
	guardiansEngine := guardian.NewEngine(memory.NewGuardianStore(), clock)
	_, err = guardiansEngine.Register(g1, "", [32]byte{}, [32]byte{})
	require.NoError(t, err)
	_, err = guardiansEngine.Register(g2, "", [32]byte{}, [32]byte{})
	require.NoError(t, err)

	adapter := dispatch.NewAdapter(assetsEngine, guardiansEngine)
	err = adapter.Dispatch(context.Background(), 1,
		[]crypto.Principal{beneficiary}, []uint16{10_000},
		[]crypto.Principal{g1, g2},
	)
	require.NoError(t, err)

	require.Equal(t, big.NewInt(100), ledger.BalanceOf(assets.ClassFungible, "GOOD", beneficiary))

	p1, err := guardiansEngine.Get(g1)
	require.NoError(t, err)
	require.Equal(t, uint32(1), p1.SuccessfulReleases)
	p2, err := guardiansEngine.Get(g2)
	require.NoError(t, err)
	require.Equal(t, uint32(1), p2.SuccessfulReleases)
}

func TestDispatchCreditsGuardiansDespitePerDepositTransferFailure(t *testing.T) {
	owner := mustPrincipal(t, 1)
	g1 := mustPrincipal(t, 10)
	beneficiary := mustPrincipal(t, 20)

	ledger := assets.NewInMemoryLedger()
	ledger.FailToken("BAD")
	assetsEngine := assets.NewEngine(memory.NewAssetStore(), ledger)
	_, err := assetsEngine.DepositFungible(1, owner, "BAD", big.NewInt(100))
	require.NoError(t, err)

	clock := common.NewFixedClock(time.Unix(1_700_000_000, 0))
	guardiansEngine := guardian.NewEngine(memory.NewGuardianStore(), clock)
	_, err = guardiansEngine.Register(g1, "", [32]byte{}, [32]byte{})
	require.NoError(t, err)

	adapter := dispatch.NewAdapter(assetsEngine, guardiansEngine)
	err = adapter.Dispatch(context.Background(), 1,
		[]crypto.Principal{beneficiary}, []uint16{10_000},
		[]crypto.Principal{g1},
	)
	// release_assets itself never returns a top-level error for a
	// per-deposit transfer failure (it reports it in ReleaseOutcome.Failed
	// instead), so the dispatcher sees no error here and proceeds to
	// credit the approving guardian regardless.
	require.NoError(t, err)
	p1, err := guardiansEngine.Get(g1)
	require.NoError(t, err)
	require.Equal(t, uint32(1), p1.SuccessfulReleases)
}
