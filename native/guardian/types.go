// Package guardian implements the Guardian Registry (spec component B): a
// directory of guardian principals, their verification status, reputation,
// and workload, attached to and detached from wills by the Will Engine.
package guardian

import (
	"time"

	"willvault/crypto"
)

// MinReputation is the floor a guardian's reputation must meet before it can
// be attached to a new will.
const MinReputation = 0

// MaxWillsPerGuardian caps how many active wills may reference a single
// guardian at once, bounding a guardian's workload.
const MaxWillsPerGuardian = 1_000

// MaxReputation is the ceiling enforced by both record_successful_release's
// clipping and adjust_reputation's validation.
const MaxReputation = 1_000

// startingReputation is assigned on register.
const startingReputation = 100

// reputationPerRelease is added (and clipped) on record_successful_release.
const reputationPerRelease = 10

// CommitmentTagSize is the fixed width of an opaque commitment tag.
const CommitmentTagSize = 32

// CommitmentTag is an opaque 32-byte proof tag a guardian has added.
type CommitmentTag [CommitmentTagSize]byte

// Profile is a single guardian's registry record, keyed by principal.
type Profile struct {
	Principal          crypto.Principal
	Active             bool
	Verified           bool
	MetadataURI        string
	PublicKeyHash      [32]byte
	CommitmentRoot     [32]byte
	Reputation         int32
	TotalWills         uint32
	SuccessfulReleases uint32
	RegistrationTime   time.Time
	Commitments        []CommitmentTag
}

// Clone returns a deep copy safe for callers to mutate.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Commitments = append([]CommitmentTag(nil), p.Commitments...)
	return &clone
}

// eligible reports whether p satisfies attach_to_will's eligibility gate for
// the given minimum reputation.
func (p *Profile) eligible(minReputation int32) bool {
	return p.Active && p.Verified && p.Reputation >= minReputation && p.TotalWills < MaxWillsPerGuardian
}
