package secretcustody

import "willvault/native/common"

var (
	// ErrDecryptionFailed is returned by Decrypt on any authentication
	// tag mismatch (tampered ciphertext, nonce, or wrong key).
	ErrDecryptionFailed = common.NewError(common.KindInvalidParameters, "secretcustody: decryption failed")
	// ErrInvalidShareParams is returned by SplitKey for k/n outside
	// [2, 255] or k > n.
	ErrInvalidShareParams = common.NewError(common.KindInvalidParameters, "secretcustody: invalid k/n for Shamir split")
	// ErrInsufficientShares is returned by CombineShares when fewer than
	// k distinct shares are supplied.
	ErrInsufficientShares = common.NewError(common.KindInvalidParameters, "secretcustody: fewer than k shares supplied")
	// ErrChecksumMismatch is returned by CombineShares when a supplied
	// share's checksum does not match its bytes — the CHECKSUM_MISMATCH
	// taxonomy kind from spec.md §7.
	ErrChecksumMismatch = common.NewError(common.KindChecksumMismatch, "secretcustody: share checksum mismatch")
)
