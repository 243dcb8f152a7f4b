// Package will implements the Will Engine (spec component C, "the heart"):
// the state machine tracking heartbeat liveness, guardian quorum, and the
// post-quorum timelock that gates asset release.
package will

import "time"

const (
	// MaxGuardians bounds the guardian list length.
	MaxGuardians = 20
	// MaxBeneficiaries bounds the beneficiary list length.
	MaxBeneficiaries = 50
	// MinHeartbeatTimeout is the minimum allowed heartbeat_timeout, in
	// seconds: 1 day.
	MinHeartbeatTimeout = 86_400
	// MaxHeartbeatTimeout is the maximum allowed heartbeat_timeout, in
	// seconds: 10 years.
	MaxHeartbeatTimeout = 315_360_000
	// ReleaseTimelock is the fixed delay between release_requested and
	// finalize_release eligibility, in seconds: 7 days.
	ReleaseTimelock = 604_800

	// defaultSchedulerBatchSize is scheduler_poll's default batch_size.
	defaultSchedulerBatchSize = 10
)

// ReleaseTimelockDuration is ReleaseTimelock as a time.Duration.
func ReleaseTimelockDuration() time.Duration {
	return time.Duration(ReleaseTimelock) * time.Second
}
