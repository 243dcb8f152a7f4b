package assets

import "willvault/native/common"

var (
	// ErrInvalidAmount is returned when a deposit amount is nil or not
	// strictly positive, or a deposit's token id is nil.
	ErrInvalidAmount = common.NewError(common.KindInvalidParameters, "assets: amount must be positive")
	// ErrInvalidShares is returned when shares_bp does not sum to exactly
	// 10,000 or its length does not match the beneficiary list.
	ErrInvalidShares = common.NewError(common.KindInvalidParameters, "assets: shares_bp must sum to 10000 and match beneficiaries")
	// ErrDepositNotFound is returned when (willID, index) has no record.
	ErrDepositNotFound = common.NewError(common.KindInvalidParameters, "assets: deposit not found")
	// ErrAlreadyReleased is returned by emergency_withdraw on an
	// already-released deposit.
	ErrAlreadyReleased = common.NewError(common.KindAlreadyReleased, "assets: deposit already released")
	// ErrNotDepositor is returned when emergency_withdraw is called by
	// anyone other than the original depositor.
	ErrNotDepositor = common.NewError(common.KindNotOwner, "assets: caller is not the original depositor")
	// ErrTransferFailed wraps a Transferer failure for a single deposit.
	ErrTransferFailed = common.NewError(common.KindTransferFailed, "assets: external transfer failed")
	// ErrUnauthorized is returned when release_assets is invoked without the
	// WILL_MANAGER role.
	ErrUnauthorized = common.NewError(common.KindUnauthorized, "assets: release requires the will manager role")
)
