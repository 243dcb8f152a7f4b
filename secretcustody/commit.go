package secretcustody

import (
	"crypto/sha256"
	"crypto/subtle"
	"strconv"
)

// CommitShare implements commit_share: SHA-256(share.bytes ‖
// to_string(share.index) ‖ salt). Used as the opaque witness a guardian
// holds on-chain, proving share possession without revealing it.
func CommitShare(share Share, salt []byte) [32]byte {
	h := sha256.New()
	h.Write(share.Bytes)
	h.Write([]byte(strconv.Itoa(int(share.Index))))
	h.Write(salt)
	var digest [32]byte
	copy(digest[:], h.Sum(nil))
	return digest
}

// VerifyCommit implements verify_commit, using a constant-time comparison
// since digest is a value an adversary may be probing.
func VerifyCommit(share Share, salt []byte, digest [32]byte) bool {
	computed := CommitShare(share, salt)
	return subtle.ConstantTimeCompare(computed[:], digest[:]) == 1
}
