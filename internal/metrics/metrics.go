// Package metrics registers the Prometheus counters exposed by the ops
// server's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CyclesTotal tracks the number of completed check cycles.
	CyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "paidwatch_cycles_total",
		Help: "The total number of check cycles run.",
	})
	// RecordsExtractedTotal tracks the number of records parsed from results pages.
	RecordsExtractedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "paidwatch_records_extracted_total",
		Help: "The total number of booking/release records extracted.",
	})
	// MatchNotificationsTotal tracks the number of watchlist match notifications sent.
	MatchNotificationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "paidwatch_match_notifications_total",
		Help: "The total number of watchlist match notifications emitted.",
	})
	// ScrapeFailuresTotal tracks failed category scrapes (transport or extraction).
	ScrapeFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "paidwatch_scrape_failures_total",
		Help: "The total number of failed category scrapes.",
	})
	// EscalationsTotal tracks operator escalations actually delivered.
	EscalationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "paidwatch_escalations_total",
		Help: "The total number of scraper-health escalations sent.",
	})
	// PersistFailuresTotal tracks seen-state save failures.
	PersistFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "paidwatch_persist_failures_total",
		Help: "The total number of seen-state persistence failures.",
	})
)
