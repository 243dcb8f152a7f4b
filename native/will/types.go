package will

import (
	"time"

	"willvault/crypto"
)

// Will is a single will's full lifecycle record, identified by a
// monotonically increasing integer id owned by the Will Engine.
type Will struct {
	ID                uint64
	Owner             crypto.Principal
	Beneficiaries     []crypto.Principal
	Guardians         []crypto.Principal
	guardianIndex     map[string]int // principal.String() -> bitmap index; never serialized, rebuilt on load
	GuardianThreshold uint8
	EncryptedCID      string
	PayloadHash       [32]byte
	HeartbeatTimeout  time.Duration
	LastHeartbeat     time.Time
	VaultAddress      *crypto.Principal
	ApprovalsBitmap   uint32
	ReleaseRequested  bool
	ReleaseRequestTS  time.Time
	Released          bool
	CreatedAt         time.Time

	// BeneficiaryShares resolves Open Question 1: explicit basis-point
	// shares per beneficiary, one entry per beneficiary, summing to 10000.
	// Nil means the equal-split default (10000/n, remainder to
	// beneficiary 0).
	BeneficiaryShares []uint16
}

// GuardianIndex returns g's bitmap bit position within w.Guardians, or
// (0, false) if g is not one of w's guardians. Built from the companion hash
// map rather than a linear scan, per the rearchitecture note in spec.md §9.
func (w *Will) GuardianIndex(g crypto.Principal) (int, bool) {
	w.ensureGuardianIndex()
	idx, ok := w.guardianIndex[g.String()]
	return idx, ok
}

func (w *Will) ensureGuardianIndex() {
	if w.guardianIndex != nil {
		return
	}
	w.guardianIndex = make(map[string]int, len(w.Guardians))
	for i, g := range w.Guardians {
		w.guardianIndex[g.String()] = i
	}
}

// Clone returns a deep copy safe for callers to mutate, rebuilding the
// guardian index lazily on first lookup.
func (w *Will) Clone() *Will {
	if w == nil {
		return nil
	}
	clone := *w
	clone.Beneficiaries = append([]crypto.Principal(nil), w.Beneficiaries...)
	clone.Guardians = append([]crypto.Principal(nil), w.Guardians...)
	clone.guardianIndex = nil
	if w.VaultAddress != nil {
		v := *w.VaultAddress
		clone.VaultAddress = &v
	}
	if w.BeneficiaryShares != nil {
		clone.BeneficiaryShares = append([]uint16(nil), w.BeneficiaryShares...)
	}
	return &clone
}

// Shares returns the basis-point distribution to apply at finalize_release:
// the will's explicit BeneficiaryShares if set, otherwise an equal split
// with the remainder assigned to beneficiary 0.
func (w *Will) Shares() []uint16 {
	if w.BeneficiaryShares != nil {
		return append([]uint16(nil), w.BeneficiaryShares...)
	}
	n := len(w.Beneficiaries)
	shares := make([]uint16, n)
	base := uint16(10_000 / n)
	remainder := 10_000 - int(base)*n
	for i := range shares {
		shares[i] = base
	}
	shares[0] += uint16(remainder)
	return shares
}
