package assets_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"willvault/crypto"
	"willvault/native/auth"
	"willvault/native/assets"
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

func newTestEngine(t *testing.T) (*assets.Engine, *assets.InMemoryLedger) {
	t.Helper()
	st := memory.NewAssetStore()
	ledger := assets.NewInMemoryLedger()
	return assets.NewEngine(st, ledger), ledger
}

func managerAuthz(caller crypto.Principal) auth.Authorization {
	return auth.New(caller, auth.RoleWillManager)
}

func TestDepositNativeTracksAccumulators(t *testing.T) {
	st := memory.NewAssetStore()
	e := assets.NewEngine(st, assets.NewInMemoryLedger())
	depositor := mustPrincipal(t, 1)

	d1, err := e.DepositNative(1, depositor, big.NewInt(100))
	require.NoError(t, err)
	require.Equal(t, uint32(0), d1.Index)

	d2, err := e.DepositNative(1, mustPrincipal(t, 2), big.NewInt(50))
	require.NoError(t, err)
	require.Equal(t, uint32(1), d2.Index)

	deposits, err := e.Deposits(1)
	require.NoError(t, err)
	require.Len(t, deposits, 2)

	balance, err := st.NativeBalance(1)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(150), balance)
	total, err := st.TotalNativeHeld()
	require.NoError(t, err)
	require.Equal(t, big.NewInt(150), total)
}

func TestDepositNativeRejectsNonPositiveAmount(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.DepositNative(1, mustPrincipal(t, 1), big.NewInt(0))
	require.ErrorIs(t, err, assets.ErrInvalidAmount)
}

func TestReleaseAssetsSplitsByBasisPointsAndDiscardsDust(t *testing.T) {
	e, ledger := newTestEngine(t)
	owner := mustPrincipal(t, 1)
	_, err := e.DepositNative(1, owner, big.NewInt(100))
	require.NoError(t, err)

	b1, b2, b3 := mustPrincipal(t, 10), mustPrincipal(t, 11), mustPrincipal(t, 12)
	outcome, err := e.ReleaseAssets(context.Background(), managerAuthz(owner), 1,
		[]crypto.Principal{b1, b2, b3},
		[]uint16{3334, 3333, 3333},
	)
	require.NoError(t, err)
	require.Len(t, outcome.Released, 1)
	require.Empty(t, outcome.Failed)

	// floor(100*3334/10000) = floor(100*3333/10000) = 33; 1 unit of dust stays.
	require.Equal(t, big.NewInt(33), ledger.BalanceOf(assets.ClassNative, "", b1))
	require.Equal(t, big.NewInt(33), ledger.BalanceOf(assets.ClassNative, "", b2))
	require.Equal(t, big.NewInt(33), ledger.BalanceOf(assets.ClassNative, "", b3))
}

func TestReleaseAssetsRejectsUnauthorizedCaller(t *testing.T) {
	e, _ := newTestEngine(t)
	owner := mustPrincipal(t, 1)
	_, err := e.DepositNative(1, owner, big.NewInt(100))
	require.NoError(t, err)

	_, err = e.ReleaseAssets(context.Background(), auth.New(owner), 1,
		[]crypto.Principal{mustPrincipal(t, 2)}, []uint16{10_000})
	require.ErrorIs(t, err, assets.ErrUnauthorized)
}

func TestReleaseAssetsRejectsBadShares(t *testing.T) {
	e, _ := newTestEngine(t)
	owner := mustPrincipal(t, 1)
	_, err := e.ReleaseAssets(context.Background(), managerAuthz(owner), 1,
		[]crypto.Principal{mustPrincipal(t, 2)}, []uint16{5_000})
	require.ErrorIs(t, err, assets.ErrInvalidShares)
}

func TestReleaseAssetsSemiFungibleTracksIDAndAmountTogether(t *testing.T) {
	e, ledger := newTestEngine(t)
	owner := mustPrincipal(t, 1)
	d, err := e.DepositSemiFungible(1, owner, "ARMOR", big.NewInt(7), big.NewInt(1_000))
	require.NoError(t, err)
	require.Equal(t, assets.ClassSemiFungible, d.Payload.Class())

	beneficiary := mustPrincipal(t, 9)
	outcome, err := e.ReleaseAssets(context.Background(), managerAuthz(owner), 1,
		[]crypto.Principal{beneficiary}, []uint16{10_000})
	require.NoError(t, err)
	require.Len(t, outcome.Released, 1)
	require.Equal(t, big.NewInt(1_000), ledger.BalanceOf(assets.ClassSemiFungible, "ARMOR", beneficiary))
}

func TestReleaseAssetsUniqueIgnoresSharesAndGoesToFirstBeneficiary(t *testing.T) {
	e, ledger := newTestEngine(t)
	owner := mustPrincipal(t, 1)
	_, err := e.DepositUnique(1, owner, "DEED", big.NewInt(42))
	require.NoError(t, err)

	b1, b2 := mustPrincipal(t, 10), mustPrincipal(t, 11)
	outcome, err := e.ReleaseAssets(context.Background(), managerAuthz(owner), 1,
		[]crypto.Principal{b1, b2}, []uint16{5_000, 5_000})
	require.NoError(t, err)
	require.Len(t, outcome.Released, 1)
	require.Equal(t, b1.String(), ledger.OwnerOf("DEED", big.NewInt(42)))
}

func TestReleaseAssetsRollsBackOnlyTheFailingDeposit(t *testing.T) {
	e, ledger := newTestEngine(t)
	owner := mustPrincipal(t, 1)
	ledger.FailToken("BAD")

	good, err := e.DepositFungible(1, owner, "GOOD", big.NewInt(100))
	require.NoError(t, err)
	bad, err := e.DepositFungible(1, owner, "BAD", big.NewInt(100))
	require.NoError(t, err)

	beneficiary := mustPrincipal(t, 9)
	outcome, err := e.ReleaseAssets(context.Background(), managerAuthz(owner), 1,
		[]crypto.Principal{beneficiary}, []uint16{10_000})
	require.NoError(t, err)
	require.Equal(t, []uint32{good.Index}, outcome.Released)
	require.Contains(t, outcome.Failed, bad.Index)

	deposits, err := e.Deposits(1)
	require.NoError(t, err)
	for _, d := range deposits {
		if d.Index == bad.Index {
			require.False(t, d.Released, "failed transfer must roll back the released flag")
		}
		if d.Index == good.Index {
			require.True(t, d.Released)
		}
	}
}

func TestEmergencyWithdrawOnlyOriginalDepositor(t *testing.T) {
	e, _ := newTestEngine(t)
	depositor := mustPrincipal(t, 1)
	other := mustPrincipal(t, 2)
	d, err := e.DepositFungible(1, depositor, "GOOD", big.NewInt(10))
	require.NoError(t, err)

	_, err = e.EmergencyWithdraw(context.Background(), 1, d.Index, other)
	require.ErrorIs(t, err, assets.ErrNotDepositor)

	withdrawn, err := e.EmergencyWithdraw(context.Background(), 1, d.Index, depositor)
	require.NoError(t, err)
	require.True(t, withdrawn.Released)

	_, err = e.EmergencyWithdraw(context.Background(), 1, d.Index, depositor)
	require.ErrorIs(t, err, assets.ErrAlreadyReleased)
}

func TestEmergencyWithdrawUnknownDeposit(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.EmergencyWithdraw(context.Background(), 1, 99, mustPrincipal(t, 1))
	require.ErrorIs(t, err, assets.ErrDepositNotFound)
}
