// Package escalate tracks consecutive scrape failures and decides, with
// rate limiting, when to raise an operator notification. The upstream source
// fails in bursts, so without suppression every poll cycle would re-notify
// and the alert channel would drown.
package escalate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/paidwatch/paidwatch/internal/metrics"
	"github.com/paidwatch/paidwatch/internal/notify"
)

// DefaultCooldown is how long further escalations are suppressed after one
// fires.
const DefaultCooldown = 4 * time.Hour

// Clock supplies the current time; injected so suppression windows are
// testable against arbitrary schedules.
type Clock interface {
	Now() time.Time
}

// State holds the process-wide failure counters. It is an explicit value
// rather than package globals so tests can construct arbitrary prior states.
type State struct {
	// ConsecutiveFailures counts failures since the last successful cycle.
	ConsecutiveFailures int
	// LastEscalation is the zero time until the first escalation fires.
	LastEscalation time.Time
}

// Escalator applies the rate-limiting rule: escalate immediately on the
// first failure since process start or since the last escalation, then
// suppress for the cooldown window while still counting, so the next
// escalation reports an accurate cumulative total.
type Escalator struct {
	clock    Clock
	notifier notify.Notifier
	cooldown time.Duration
	logger   *zap.Logger
	state    State
}

// New constructs an Escalator with a zero starting state.
func New(clock Clock, notifier notify.Notifier, cooldown time.Duration, logger *zap.Logger) *Escalator {
	return NewWithState(clock, notifier, cooldown, logger, State{})
}

// NewWithState constructs an Escalator resuming from a prior state.
func NewWithState(clock Clock, notifier notify.Notifier, cooldown time.Duration, logger *zap.Logger, state State) *Escalator {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Escalator{
		clock:    clock,
		notifier: notifier,
		cooldown: cooldown,
		logger:   logger,
		state:    state,
	}
}

// ReportFailure records one failed scrape attempt and escalates if the
// cooldown allows it.
func (e *Escalator) ReportFailure(ctx context.Context, kind, details string) {
	e.state.ConsecutiveFailures++
	metrics.ScrapeFailuresTotal.Inc()
	e.logger.Warn("Scraping error",
		zap.String("kind", kind),
		zap.String("details", details),
		zap.Int("failure_count", e.state.ConsecutiveFailures))

	now := e.clock.Now()
	if !e.state.LastEscalation.IsZero() {
		if elapsed := now.Sub(e.state.LastEscalation); elapsed < e.cooldown {
			e.logger.Debug("Suppressing error report",
				zap.Duration("next_report_in", e.cooldown-elapsed))
			return
		}
	}

	message := fmt.Sprintf("⚠️ *SCRAPER ERROR*\n"+
		"*Error Type:* %s\n"+
		"*Details:* %s\n"+
		"*Failure Count:* %d since last success\n"+
		"_Next error report in %.0f hours if errors persist_",
		kind, details, e.state.ConsecutiveFailures, e.cooldown.Hours())

	if err := e.notifier.Notify(ctx, message); err != nil {
		e.logger.Warn("Failed to deliver escalation", zap.Error(err))
	}
	metrics.EscalationsTotal.Inc()
	e.state.LastEscalation = now
}

// ReportSuccess resets the failure counter after a fully successful cycle,
// logging a recovery line only when there was something to recover from.
func (e *Escalator) ReportSuccess() {
	if e.state.ConsecutiveFailures == 0 {
		return
	}
	e.logger.Info("Scraping recovered",
		zap.Int("failures", e.state.ConsecutiveFailures))
	e.state.ConsecutiveFailures = 0
}

// FailureCount exposes the current consecutive-failure count for status
// reporting.
func (e *Escalator) FailureCount() int {
	return e.state.ConsecutiveFailures
}

// Snapshot returns a copy of the current state.
func (e *Escalator) Snapshot() State {
	return e.state
}
