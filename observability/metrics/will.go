// Package metrics holds the daemon's Prometheus collectors, one struct per
// subsystem following the teacher's sync.Once singleton pattern so every
// caller shares a single registration.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// WillMetrics exposes Prometheus collectors for will lifecycle transitions,
// scheduler activity, and guardian approvals.
type WillMetrics struct {
	willsCreated      prometheus.Counter
	heartbeats        *prometheus.CounterVec
	guardianApprovals *prometheus.CounterVec
	releasesRequested prometheus.Counter
	releasesFinalized prometheus.Counter
	schedulerPolls    prometheus.Counter
	schedulerWorkSize prometheus.Gauge
	dispatchFailures  *prometheus.CounterVec
}

var (
	willOnce     sync.Once
	willRegistry *WillMetrics
)

// Will returns the process-wide WillMetrics singleton, registering its
// collectors with the default Prometheus registry on first call.
func Will() *WillMetrics {
	willOnce.Do(func() {
		willRegistry = &WillMetrics{
			willsCreated: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "willvault_wills_created_total",
				Help: "Count of wills created.",
			}),
			heartbeats: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "willvault_heartbeats_total",
				Help: "Count of accepted owner heartbeats.",
			}, []string{"will_id"}),
			guardianApprovals: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "willvault_guardian_approvals_total",
				Help: "Count of accepted guardian approvals.",
			}, []string{"will_id"}),
			releasesRequested: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "willvault_releases_requested_total",
				Help: "Count of wills entering RELEASE_REQUESTED, by any path.",
			}),
			releasesFinalized: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "willvault_releases_finalized_total",
				Help: "Count of wills that reached released=true.",
			}),
			schedulerPolls: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "willvault_scheduler_polls_total",
				Help: "Count of scheduler_poll invocations.",
			}),
			schedulerWorkSize: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "willvault_scheduler_work_list_size",
				Help: "Size of the work list returned by the most recent scheduler_poll.",
			}),
			dispatchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "willvault_dispatch_failures_total",
				Help: "Count of scheduler finalize_release calls that returned an error, including dispatcher errors.",
			}, []string{"kind"}),
		}
		prometheus.MustRegister(
			willRegistry.willsCreated,
			willRegistry.heartbeats,
			willRegistry.guardianApprovals,
			willRegistry.releasesRequested,
			willRegistry.releasesFinalized,
			willRegistry.schedulerPolls,
			willRegistry.schedulerWorkSize,
			willRegistry.dispatchFailures,
		)
	})
	return willRegistry
}

func (m *WillMetrics) ObserveWillCreated() {
	if m == nil {
		return
	}
	m.willsCreated.Inc()
}

func (m *WillMetrics) ObserveHeartbeat(willID string) {
	if m == nil {
		return
	}
	m.heartbeats.WithLabelValues(willID).Inc()
}

func (m *WillMetrics) ObserveGuardianApproval(willID string) {
	if m == nil {
		return
	}
	m.guardianApprovals.WithLabelValues(willID).Inc()
}

func (m *WillMetrics) ObserveReleaseRequested() {
	if m == nil {
		return
	}
	m.releasesRequested.Inc()
}

func (m *WillMetrics) ObserveReleaseFinalized() {
	if m == nil {
		return
	}
	m.releasesFinalized.Inc()
}

func (m *WillMetrics) ObserveSchedulerPoll(workSize int) {
	if m == nil {
		return
	}
	m.schedulerPolls.Inc()
	m.schedulerWorkSize.Set(float64(workSize))
}

func (m *WillMetrics) ObserveDispatchFailure(kind string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	m.dispatchFailures.WithLabelValues(kind).Inc()
}
