package guardian

import "willvault/crypto"

// State is the persistence contract the Guardian Registry depends on.
type State interface {
	// Get loads a guardian's profile, or ErrNotFound.
	Get(p crypto.Principal) (*Profile, error)
	// Put inserts or updates a profile.
	Put(profile *Profile) error
	// All returns every registered profile, for eligible_guardians scans.
	All() ([]*Profile, error)
}
