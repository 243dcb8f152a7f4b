package guardian

import "willvault/native/common"

var (
	// ErrAlreadyRegistered is returned by register for a principal already
	// on file (idempotent rejection, not an upsert).
	ErrAlreadyRegistered = common.NewError(common.KindInvalidParameters, "guardian: principal already registered")
	// ErrNotFound is returned when a principal has no registry record.
	ErrNotFound = common.NewError(common.KindNotGuardian, "guardian: principal not registered")
	// ErrNotActive is returned by add_commitment against a deactivated
	// guardian.
	ErrNotActive = common.NewError(common.KindInvalidParameters, "guardian: guardian is not active")
	// ErrNotEligible is returned by attach_to_will when the guardian fails
	// the registered/active/verified/reputation/workload gate.
	ErrNotEligible = common.NewError(common.KindNotGuardian, "guardian: not eligible for attachment")
	// ErrUnauthorized is returned when a caller lacks the role or identity
	// required for verify/deactivate/adjust_reputation.
	ErrUnauthorized = common.NewError(common.KindUnauthorized, "guardian: caller not permitted")
	// ErrInvalidReputation is returned by adjust_reputation for a value
	// outside [0, MaxReputation].
	ErrInvalidReputation = common.NewError(common.KindInvalidParameters, "guardian: reputation out of range")
)
