// Package auth implements the role-based access design note from the
// specification: role checks are threaded through mutating calls as an
// explicit Authorization value rather than applied as decorators around
// handler dispatch, so components stay pure functions of (state, input,
// authorization) and are trivial to unit test without a surrounding
// middleware stack.
package auth

import (
	"willvault/crypto"
	"willvault/native/common"
)

// Role is one of the four roles the engine recognises.
type Role string

const (
	RoleDefaultAdmin Role = "DEFAULT_ADMIN"
	RoleAdmin        Role = "ADMIN"
	RoleWillManager  Role = "WILL_MANAGER"
	RoleScheduler    Role = "SCHEDULER"
)

// ErrUnauthorized is returned when the caller's roles do not intersect the
// operation's required role set.
var ErrUnauthorized = common.NewError(common.KindUnauthorized, "auth: caller lacks required role")

// Authorization carries the calling principal and the set of roles the host
// has granted it for this call. It is constructed by the host adapter (the
// thing that authenticated the caller) and passed into every mutating
// operation that needs a role check.
type Authorization struct {
	Caller crypto.Principal
	Roles  map[Role]struct{}
}

// New constructs an Authorization for a principal holding the given roles.
func New(caller crypto.Principal, roles ...Role) Authorization {
	set := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return Authorization{Caller: caller, Roles: set}
}

// Has reports whether the authorization carries the given role. DEFAULT_ADMIN
// implicitly satisfies any ADMIN-gated check, mirroring OpenZeppelin-style
// role hierarchies the source's AccessControl pattern was built on.
func (a Authorization) Has(role Role) bool {
	if _, ok := a.Roles[role]; ok {
		return true
	}
	if role == RoleAdmin {
		_, ok := a.Roles[RoleDefaultAdmin]
		return ok
	}
	return false
}

// Require returns ErrUnauthorized unless a holds at least one of the
// permitted roles.
func Require(a Authorization, permitted ...Role) error {
	for _, role := range permitted {
		if a.Has(role) {
			return nil
		}
	}
	return ErrUnauthorized
}
