package guardian

import (
	"encoding/hex"
	"strconv"

	"willvault/core/types"
	"willvault/crypto"
)

const (
	EventTypeGuardianRegistered  = "guardian.registered"
	EventTypeGuardianVerified    = "guardian.verified"
	EventTypeGuardianDeactivated = "guardian.deactivated"
	EventTypeCommitmentAdded     = "guardian.commitment_added"
	EventTypeReputationUpdated   = "guardian.reputation_updated"
)

func newProfileEvent(eventType string, p *Profile) *types.Event {
	attrs := map[string]string{
		"principal":  p.Principal.String(),
		"active":     strconv.FormatBool(p.Active),
		"verified":   strconv.FormatBool(p.Verified),
		"reputation": strconv.FormatInt(int64(p.Reputation), 10),
	}
	return &types.Event{Type: eventType, Attributes: attrs}
}

// NewRegisteredEvent reports a successful register call.
func NewRegisteredEvent(p *Profile) *types.Event {
	return newProfileEvent(EventTypeGuardianRegistered, p)
}

// NewVerifiedEvent reports a verify toggle.
func NewVerifiedEvent(p *Profile) *types.Event {
	return newProfileEvent(EventTypeGuardianVerified, p)
}

// NewDeactivatedEvent reports a deactivate call.
func NewDeactivatedEvent(p *Profile) *types.Event {
	return newProfileEvent(EventTypeGuardianDeactivated, p)
}

// NewCommitmentAddedEvent reports an add_commitment call.
func NewCommitmentAddedEvent(p crypto.Principal, tag CommitmentTag) *types.Event {
	return &types.Event{
		Type: EventTypeCommitmentAdded,
		Attributes: map[string]string{
			"principal": p.String(),
			"tag":       hex.EncodeToString(tag[:]),
		},
	}
}

// NewReputationUpdatedEvent reports either an automatic or admin-driven
// reputation change.
func NewReputationUpdatedEvent(p *Profile) *types.Event {
	return newProfileEvent(EventTypeReputationUpdated, p)
}
