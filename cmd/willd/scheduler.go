package main

import (
	"context"
	"log/slog"
	"time"

	"willvault/crypto"
	"willvault/native/auth"
	"willvault/native/will"
	"willvault/observability/metrics"
)

// Scheduler drives the Will Engine's poll/perform/finalize contract on a
// ticker, matching §6's "SHOULD call scheduler_poll then scheduler_perform,
// and finalize_release for every eligible will, on each tick".
type Scheduler struct {
	engine   *will.Engine
	authz    auth.Authorization
	interval time.Duration
	batch    int
	logger   *slog.Logger
	metrics  *metrics.WillMetrics
}

// NewScheduler constructs a Scheduler presenting the SCHEDULER role to the
// Will Engine on every call.
func NewScheduler(engine *will.Engine, interval time.Duration, batch int, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		engine:   engine,
		authz:    auth.New(crypto.Principal{}, auth.RoleScheduler),
		interval: interval,
		batch:    batch,
		logger:   logger,
		metrics:  metrics.Will(),
	}
}

// Run blocks, ticking until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	needsWork, workList, err := s.engine.SchedulerPoll(s.batch)
	if err != nil {
		s.logger.Error("scheduler poll failed", "error", err)
		return
	}
	s.metrics.ObserveSchedulerPoll(len(workList))
	if !needsWork {
		return
	}

	if err := s.engine.SchedulerPerform(s.authz, workList); err != nil {
		s.logger.Error("scheduler perform failed", "error", err)
		return
	}

	for _, willID := range workList {
		eligible, err := s.engine.IsEligibleForRelease(willID)
		if err != nil {
			s.logger.Error("eligibility check failed", "willId", willID, "error", err)
			continue
		}
		if !eligible {
			continue
		}
		if err := s.engine.FinalizeRelease(ctx, s.authz, willID); err != nil {
			s.logger.Warn("finalize release failed", "willId", willID, "error", err)
			s.metrics.ObserveDispatchFailure("finalize")
			continue
		}
	}
}
