// Package observability wires the engines' event stream to the teacher's
// ambient stack: structured JSON logs and Prometheus counters.
package observability

import (
	"log/slog"

	"willvault/core/events"
	"willvault/core/types"
	"willvault/native/will"
	"willvault/observability/metrics"
)

// LoggingEmitter logs every event at info level via the structured logger
// set up by observability/logging.Setup.
type LoggingEmitter struct {
	logger *slog.Logger
}

// NewLoggingEmitter constructs a LoggingEmitter over logger.
func NewLoggingEmitter(logger *slog.Logger) *LoggingEmitter {
	return &LoggingEmitter{logger: logger}
}

// Emit implements events.Emitter.
func (e *LoggingEmitter) Emit(evt events.Event) {
	if e == nil || e.logger == nil || evt == nil {
		return
	}
	args := []any{"event", evt.EventType()}
	if typed, ok := evt.(*types.Event); ok {
		for k, v := range typed.Attributes {
			args = append(args, k, v)
		}
	}
	e.logger.Info("will engine event", args...)
}

// MetricsEmitter translates will lifecycle events into Prometheus counters.
type MetricsEmitter struct {
	metrics *metrics.WillMetrics
}

// NewMetricsEmitter constructs a MetricsEmitter over the process-wide
// WillMetrics singleton.
func NewMetricsEmitter() *MetricsEmitter {
	return &MetricsEmitter{metrics: metrics.Will()}
}

// Emit implements events.Emitter.
func (e *MetricsEmitter) Emit(evt events.Event) {
	if e == nil || evt == nil {
		return
	}
	willID := ""
	if typed, ok := evt.(*types.Event); ok {
		willID = typed.Attributes["willId"]
	}
	switch evt.EventType() {
	case will.EventTypeWillCreated:
		e.metrics.ObserveWillCreated()
	case will.EventTypeHeartbeat:
		e.metrics.ObserveHeartbeat(willID)
	case will.EventTypeGuardianApproved:
		e.metrics.ObserveGuardianApproval(willID)
	case will.EventTypeReleaseRequested:
		e.metrics.ObserveReleaseRequested()
	case will.EventTypeReleaseFinalized:
		e.metrics.ObserveReleaseFinalized()
	}
}
