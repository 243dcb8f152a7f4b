package assets

import (
	"strconv"

	"willvault/core/types"
)

const (
	EventTypeAssetDeposited      = "assets.deposited"
	EventTypeAssetReleased       = "assets.released"
	EventTypeEmergencyWithdrawal = "assets.emergency_withdrawal"
)

// NewDepositedEvent returns the canonical payload for a newly recorded
// deposit.
func NewDepositedEvent(d *Deposit) *types.Event {
	return newDepositEvent(EventTypeAssetDeposited, d)
}

// NewReleasedEvent returns the canonical payload for a single deposit's
// release leg within a release_assets batch.
func NewReleasedEvent(d *Deposit) *types.Event {
	return newDepositEvent(EventTypeAssetReleased, d)
}

// NewEmergencyWithdrawalEvent returns the canonical payload for an
// emergency_withdraw call.
func NewEmergencyWithdrawalEvent(d *Deposit) *types.Event {
	return newDepositEvent(EventTypeEmergencyWithdrawal, d)
}

func newDepositEvent(eventType string, d *Deposit) *types.Event {
	attrs := make(map[string]string)
	if d == nil {
		return &types.Event{Type: eventType, Attributes: attrs}
	}
	attrs["willId"] = strconv.FormatUint(d.WillID, 10)
	attrs["index"] = strconv.FormatUint(uint64(d.Index), 10)
	attrs["depositor"] = d.Depositor.String()
	attrs["released"] = strconv.FormatBool(d.Released)
	if d.Payload != nil {
		attrs["class"] = d.Payload.Class().String()
		switch p := d.Payload.(type) {
		case Native:
			attrs["amount"] = p.Amount.String()
		case Fungible:
			attrs["token"] = p.Token
			attrs["amount"] = p.Amount.String()
		case Unique:
			attrs["token"] = p.Token
			attrs["tokenId"] = p.TokenID.String()
		case SemiFungible:
			attrs["token"] = p.Token
			attrs["tokenId"] = p.TokenID.String()
			attrs["amount"] = p.Amount.String()
		}
	}
	return &types.Event{Type: eventType, Attributes: attrs}
}
