package secretcustody_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"willvault/blobstore/memstore"
	"willvault/crypto"
	"willvault/secretcustody"
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

// TestEncryptDecryptRoundTrip is property 8.
func TestEncryptDecryptRoundTrip(t *testing.T) {
	key, err := secretcustody.GenerateKey()
	require.NoError(t, err)
	plaintext := []byte("the instructions my beneficiaries will need")

	blob, err := secretcustody.Encrypt(plaintext, key)
	require.NoError(t, err)

	got, err := secretcustody.Decrypt(blob, key)
	require.NoError(t, err)
	require.Equal(t, plaintext, got)
}

func TestDecryptFailsClosedOnTamper(t *testing.T) {
	key, err := secretcustody.GenerateKey()
	require.NoError(t, err)
	blob, err := secretcustody.Encrypt([]byte("payload"), key)
	require.NoError(t, err)

	blob.Ciphertext[0] ^= 0xFF
	_, err = secretcustody.Decrypt(blob, key)
	require.ErrorIs(t, err, secretcustody.ErrDecryptionFailed)
}

// TestShamirRoundTrip is property 7.
func TestShamirRoundTrip(t *testing.T) {
	key, err := secretcustody.GenerateKey()
	require.NoError(t, err)

	shares, err := secretcustody.SplitKey(key, 5, 3)
	require.NoError(t, err)
	require.Len(t, shares, 5)

	for _, subset := range [][]int{{0, 1, 2}, {0, 2, 4}, {1, 3, 4}} {
		picked := make([]secretcustody.Share, 0, 3)
		for _, i := range subset {
			picked = append(picked, shares[i])
		}
		recombined, err := secretcustody.CombineShares(picked)
		require.NoError(t, err)
		require.Equal(t, key, recombined)
	}
}

func TestSplitKeyRejectsInvalidParams(t *testing.T) {
	key, err := secretcustody.GenerateKey()
	require.NoError(t, err)
	_, err = secretcustody.SplitKey(key, 2, 3)
	require.ErrorIs(t, err, secretcustody.ErrInvalidShareParams)
	_, err = secretcustody.SplitKey(key, 5, 1)
	require.ErrorIs(t, err, secretcustody.ErrInvalidShareParams)
}

// TestShamirReconstructionWithTamper is scenario E7.
func TestShamirReconstructionWithTamper(t *testing.T) {
	key, err := secretcustody.GenerateKey()
	require.NoError(t, err)
	shares, err := secretcustody.SplitKey(key, 5, 3)
	require.NoError(t, err)

	shares[1].Bytes[0] ^= 0xFF // tamper share index 2 (0-based slot 1)

	_, err = secretcustody.CombineShares([]secretcustody.Share{shares[0], shares[1], shares[2]})
	require.ErrorIs(t, err, secretcustody.ErrChecksumMismatch)

	recombined, err := secretcustody.CombineShares([]secretcustody.Share{shares[0], shares[2], shares[3]})
	require.NoError(t, err)
	require.Equal(t, key, recombined)
}

// TestCommitSoundness is property 9.
func TestCommitSoundness(t *testing.T) {
	key, err := secretcustody.GenerateKey()
	require.NoError(t, err)
	shares, err := secretcustody.SplitKey(key, 3, 2)
	require.NoError(t, err)
	salt := []byte("per-will-salt")

	digest := secretcustody.CommitShare(shares[0], salt)
	require.True(t, secretcustody.VerifyCommit(shares[0], salt, digest))

	tampered := shares[0]
	tampered.Bytes = append([]byte(nil), tampered.Bytes...)
	tampered.Bytes[0] ^= 0x01
	require.False(t, secretcustody.VerifyCommit(tampered, salt, digest))
}

func TestCreateWillPackageEndToEnd(t *testing.T) {
	store := memstore.New()
	g1, g2, g3 := mustPrincipal(t, 1), mustPrincipal(t, 2), mustPrincipal(t, 3)

	pkg, err := secretcustody.CreateWillPackage(context.Background(), store,
		[]byte("final wishes"), []crypto.Principal{g1, g2, g3}, 2, "v1")
	require.NoError(t, err)
	require.NotEmpty(t, pkg.EncryptedCID)
	require.Len(t, pkg.Shares, 3)

	blob, err := secretcustody.DownloadBlob(context.Background(), store, pkg.EncryptedCID)
	require.NoError(t, err)

	combined, err := secretcustody.CombineShares([]secretcustody.Share{
		pkg.Shares[g1.String()], pkg.Shares[g2.String()],
	})
	require.NoError(t, err)

	plaintext, err := secretcustody.Decrypt(blob, combined)
	require.NoError(t, err)
	require.Equal(t, "final wishes", string(plaintext))
}
