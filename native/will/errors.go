package will

import "willvault/native/common"

var (
	// ErrInvalidParameters covers every create_will validation failure:
	// list length bounds, duplicate or null principals, threshold range,
	// heartbeat timeout range, empty CID, zero payload hash.
	ErrInvalidParameters = common.NewError(common.KindInvalidParameters, "will: invalid parameters")
	// ErrNotOwner is returned when a caller claiming owner privilege is not
	// will.Owner.
	ErrNotOwner = common.NewError(common.KindNotOwner, "will: caller is not the owner")
	// ErrNotGuardian is returned when guardian_approve's caller is not in
	// the will's guardian list.
	ErrNotGuardian = common.NewError(common.KindNotGuardian, "will: caller is not a listed guardian")
	// ErrUnauthorized is returned when a privileged operation (finalize,
	// scheduler_perform) is called without the required role.
	ErrUnauthorized = common.NewError(common.KindUnauthorized, "will: caller lacks required role")
	// ErrAlreadyReleased is returned by any mutating operation on a
	// released will.
	ErrAlreadyReleased = common.NewError(common.KindAlreadyReleased, "will: will already released")
	// ErrNotRequested is returned by finalize_release before release has
	// been requested.
	ErrNotRequested = common.NewError(common.KindNotRequested, "will: release not yet requested")
	// ErrTimelockNotExpired is returned by finalize_release before
	// ReleaseTimelock has elapsed since release_request_ts.
	ErrTimelockNotExpired = common.NewError(common.KindTimelockNotExpired, "will: release timelock has not expired")
	// ErrNotFound is returned for an unknown will id.
	ErrNotFound = common.NewError(common.KindWillNotFound, "will: unknown will id")
	// ErrPaused is returned by create_will, heartbeat, and guardian_approve
	// while the admin pause gate is active. finalize_release and
	// emergency withdrawal never consult it (spec.md §4.C pausability:
	// "paused systems must not strand assets").
	ErrPaused = common.NewError(common.KindPaused, "will: module paused")
	// ErrMigrationUnsupported is returned by ExportState: the
	// cross-host migration hook's authorization protocol is explicitly
	// unspecified (spec.md §1 Non-goals).
	ErrMigrationUnsupported = common.NewError(common.KindUnknown, "will: cross-host migration is not implemented")
)
