package will

import (
	"context"

	"willvault/crypto"
	"willvault/native/auth"
)

// GuardianAttacher is the Guardian Registry surface the Will Engine calls
// into while creating a will. Declared here (rather than importing
// native/guardian directly) so the two packages don't need to know about
// each other's concrete engines; cmd/willd wires a *guardian.Engine in.
type GuardianAttacher interface {
	AttachToWill(authz auth.Authorization, principal crypto.Principal, minReputation int32) error
}

// Dispatcher is the Release Dispatcher surface (spec component D) that
// finalize_release hands off to once a will's vault_address is non-nil.
type Dispatcher interface {
	Dispatch(ctx context.Context, willID uint64, beneficiaries []crypto.Principal, sharesBp []uint16, approvingGuardians []crypto.Principal) error
}
