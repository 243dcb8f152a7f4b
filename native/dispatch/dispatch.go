// Package dispatch implements the Release Dispatcher (spec component D): a
// thin adapter invoked by the Will Engine once a will is finalized, fanning
// out to the Asset Registry and Guardian Registry. It holds no state of its
// own and never reverts the will's released flag on failure.
package dispatch

import (
	"context"
	"fmt"

	"willvault/crypto"
	"willvault/native/assets"
	"willvault/native/auth"
	"willvault/native/guardian"
)

// Adapter implements will.Dispatcher by composing an Asset Registry engine
// and a Guardian Registry engine.
type Adapter struct {
	assets    *assets.Engine
	guardians *guardian.Engine
	authz     auth.Authorization
}

// NewAdapter constructs a dispatcher wired to the given component engines.
// The WILL_MANAGER role is self-granted on an anonymous principal: this
// adapter only ever runs as the trusted internal caller from the Will
// Engine's own finalize_release, never from an external request.
func NewAdapter(assetsEngine *assets.Engine, guardiansEngine *guardian.Engine) *Adapter {
	return &Adapter{
		assets:    assetsEngine,
		guardians: guardiansEngine,
		authz:     auth.New(crypto.Principal{}, auth.RoleWillManager),
	}
}

// Dispatch implements will.Dispatcher: release the will's assets to its
// beneficiaries, then credit every approving guardian with a successful
// release. Errors from either step are returned, but per spec.md §4.D the
// will's own released flag is never revisited by the caller on failure —
// asset distribution is retry-able out of band.
func (a *Adapter) Dispatch(ctx context.Context, willID uint64, beneficiaries []crypto.Principal, sharesBp []uint16, approvingGuardians []crypto.Principal) error {
	if a.assets != nil {
		if _, err := a.assets.ReleaseAssets(ctx, a.authz, willID, beneficiaries, sharesBp); err != nil {
			return fmt.Errorf("dispatch: release_assets for will %d: %w", willID, err)
		}
	}
	if a.guardians != nil {
		for _, g := range approvingGuardians {
			if err := a.guardians.RecordSuccessfulRelease(a.authz, g); err != nil {
				return fmt.Errorf("dispatch: record_successful_release for will %d: %w", willID, err)
			}
		}
	}
	return nil
}
