package application

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"energywatch/internal/observability/metrics"
)

// Scheduler drives the agent on a fixed cadence after an initial delay.
//
// By default ticks run concurrently: a slow tick may overlap the next
// one, and both may emit recommendations for the same window. That
// mirrors the historical behavior and is accepted. Single-flight mode
// (Config.SingleFlight) instead skips a tick while the previous one is
// still running.
type Scheduler struct {
	agent    *Agent
	interval time.Duration
	delay    time.Duration
	single   bool
	running  atomic.Bool
	logger   *log.Logger
}

// NewScheduler constructs a Scheduler from the agent's config.
func NewScheduler(agent *Agent, cfg Config, logger *log.Logger) *Scheduler {
	return &Scheduler{
		agent:    agent,
		interval: cfg.TickInterval(),
		delay:    cfg.InitialDelay(),
		single:   cfg.SingleFlight,
		logger:   logger,
	}
}

// Start blocks until the context is cancelled, launching one tick per
// interval. An in-flight tick is allowed to complete after cancellation
// stops new ticks from being issued.
func (s *Scheduler) Start(ctx context.Context) {
	if s == nil || s.agent == nil {
		return
	}

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
	s.launch(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.launch(ctx)
		}
	}
}

func (s *Scheduler) launch(ctx context.Context) {
	if s.single && !s.running.CompareAndSwap(false, true) {
		metrics.IncAgentTickSkipped()
		return
	}
	go func() {
		defer func() {
			if s.single {
				s.running.Store(false)
			}
		}()
		if err := s.agent.RunTick(ctx); err != nil && s.logger != nil {
			s.logger.Printf("agent: tick failed: %v", err)
		}
	}()
}
