package will

import (
	"encoding/hex"
	"strconv"
	"time"

	"willvault/core/types"
)

const (
	EventTypeWillCreated      = "will.created"
	EventTypeHeartbeat        = "will.heartbeat"
	EventTypeGuardianApproved = "will.guardian_approved"
	EventTypeReleaseRequested = "will.release_requested"
	EventTypeReleaseFinalized = "will.release_finalized"
)

func baseAttrs(w *Will) map[string]string {
	return map[string]string{
		"willId": strconv.FormatUint(w.ID, 10),
		"owner":  w.Owner.String(),
	}
}

// NewWillCreatedEvent reports a successful create_will call.
func NewWillCreatedEvent(w *Will) *types.Event {
	attrs := baseAttrs(w)
	attrs["guardianCount"] = strconv.Itoa(len(w.Guardians))
	attrs["beneficiaryCount"] = strconv.Itoa(len(w.Beneficiaries))
	attrs["threshold"] = strconv.Itoa(int(w.GuardianThreshold))
	attrs["encryptedCid"] = w.EncryptedCID
	attrs["payloadHash"] = hex.EncodeToString(w.PayloadHash[:])
	return &types.Event{Type: EventTypeWillCreated, Attributes: attrs}
}

// NewHeartbeatEvent reports a heartbeat call.
func NewHeartbeatEvent(w *Will) *types.Event {
	attrs := baseAttrs(w)
	attrs["lastHeartbeat"] = w.LastHeartbeat.Format(time.RFC3339)
	return &types.Event{Type: EventTypeHeartbeat, Attributes: attrs}
}

// NewGuardianApprovedEvent reports a single guardian's first approval.
func NewGuardianApprovedEvent(w *Will, guardianIndex int) *types.Event {
	attrs := baseAttrs(w)
	attrs["guardianIndex"] = strconv.Itoa(guardianIndex)
	attrs["approvalsBitmap"] = strconv.FormatUint(uint64(w.ApprovalsBitmap), 2)
	return &types.Event{Type: EventTypeGuardianApproved, Attributes: attrs}
}

// NewReleaseRequestedEvent reports a CREATED -> RELEASE_REQUESTED
// transition, carrying the projected finalize-eligible timestamp.
func NewReleaseRequestedEvent(w *Will, projectedReleaseTS time.Time) *types.Event {
	attrs := baseAttrs(w)
	attrs["releaseRequestTs"] = w.ReleaseRequestTS.Format(time.RFC3339)
	attrs["projectedReleaseTs"] = projectedReleaseTS.Format(time.RFC3339)
	return &types.Event{Type: EventTypeReleaseRequested, Attributes: attrs}
}

// NewReleaseFinalizedEvent reports a RELEASE_REQUESTED -> RELEASED
// transition.
func NewReleaseFinalizedEvent(w *Will) *types.Event {
	attrs := baseAttrs(w)
	for i, b := range w.Beneficiaries {
		attrs["beneficiary."+strconv.Itoa(i)] = b.String()
	}
	return &types.Event{Type: EventTypeReleaseFinalized, Attributes: attrs}
}
