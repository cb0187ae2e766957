// Package watcher runs the check cycle: fetch each category's results page,
// extract records, filter already-seen fingerprints, match the watchlist,
// notify, and persist.
package watcher

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/paidwatch/paidwatch/internal/escalate"
	"github.com/paidwatch/paidwatch/internal/metrics"
	"github.com/paidwatch/paidwatch/internal/notify"
	"github.com/paidwatch/paidwatch/internal/roster"
	"github.com/paidwatch/paidwatch/internal/seen"
)

// Fetcher submits the search form for one category code and returns the raw
// page body. All blocking network I/O lives behind this interface.
type Fetcher interface {
	FetchResults(ctx context.Context, searchType string) (string, error)
}

// SeenStore persists the seen-set across runs.
type SeenStore interface {
	Load(ctx context.Context) (*seen.Set, error)
	Save(ctx context.Context, set *seen.Set) error
}

// Category parameterizes one pass of the pipeline. Both configured
// categories run every cycle; a failure in one never prevents the other.
type Category struct {
	// Name is the human label used in logs and error details.
	Name string
	// SearchType is the form code submitted to the results endpoint.
	SearchType string
	// Bucket selects which seen collection gates re-notification.
	Bucket seen.Bucket
	// Headline opens the notification message.
	Headline string
	// DateLabel names the record's date field in the message.
	DateLabel string
}

// DefaultCategories are the two passes the service runs: jail intakes from
// today and releases from the last seven days.
var DefaultCategories = []Category{
	{
		Name:       "Booked Today",
		SearchType: roster.SearchBookedToday,
		Bucket:     seen.Booked,
		Headline:   "🚨 *BOOKING ALERT*",
		DateLabel:  "Booking Date",
	},
	{
		Name:       "Released Last 7 Days",
		SearchType: roster.SearchReleasedLast7Days,
		Bucket:     seen.Released,
		Headline:   "✅ *RELEASE ALERT*",
		DateLabel:  "Release Date",
	},
}

// Status is the snapshot served by the ops endpoint. It is the only state
// shared across goroutines.
type Status struct {
	LastCycle           time.Time `json:"last_cycle"`
	CyclesRun           int       `json:"cycles_run"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	SeenBooked          int       `json:"seen_booked"`
	SeenReleased        int       `json:"seen_released"`
	MatchesNotified     int       `json:"matches_notified"`
}

// Watcher owns the cycle loop. Categories run sequentially on a single
// goroutine; no extraction, matching, or fingerprinting ever blocks.
type Watcher struct {
	fetcher    Fetcher
	store      SeenStore
	notifier   notify.Notifier
	escalator  *escalate.Escalator
	watchlist  roster.Watchlist
	categories []Category
	interval   time.Duration
	logger     *zap.Logger

	set *seen.Set

	mu     sync.Mutex
	status Status
}

// New constructs a Watcher. The seen-set is loaded lazily on Run.
func New(
	fetcher Fetcher,
	store SeenStore,
	notifier notify.Notifier,
	escalator *escalate.Escalator,
	watchlist roster.Watchlist,
	categories []Category,
	interval time.Duration,
	logger *zap.Logger,
) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(categories) == 0 {
		categories = DefaultCategories
	}
	return &Watcher{
		fetcher:    fetcher,
		store:      store,
		notifier:   notifier,
		escalator:  escalator,
		watchlist:  watchlist,
		categories: categories,
		interval:   interval,
		logger:     logger,
	}
}

// Run loads persisted state, runs one cycle immediately, then polls on the
// configured interval until the context is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	set, err := w.store.Load(ctx)
	if err != nil {
		// Dedup state is best-effort: start empty rather than refuse to watch.
		w.logger.Warn("Failed to load seen state; starting fresh", zap.Error(err))
		set = seen.NewSet()
	}
	w.set = set

	w.RunCycle(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.RunCycle(ctx)
		}
	}
}

// RunCycle executes one pass over every category, reports cycle-level
// success to the escalator, and persists the seen-set regardless of outcome
// so fingerprints marked before a failure still stick.
func (w *Watcher) RunCycle(ctx context.Context) {
	if w.set == nil {
		w.set = seen.NewSet()
	}
	runID := uuid.NewString()
	log := w.logger.With(zap.String("run_id", runID))
	log.Info("Starting check cycle")

	allSucceeded := true
	for _, category := range w.categories {
		if !w.runCategory(ctx, log, category) {
			allSucceeded = false
		}
	}

	if allSucceeded {
		w.escalator.ReportSuccess()
	}

	if err := w.store.Save(ctx, w.set); err != nil {
		metrics.PersistFailuresTotal.Inc()
		log.Error("Failed to persist seen state", zap.Error(err))
	}

	metrics.CyclesTotal.Inc()
	w.publishStatus()
	log.Info("Check cycle complete", zap.Bool("succeeded", allSucceeded))
}

// runCategory runs the parameterized pipeline for one category and reports
// whether it fully succeeded.
func (w *Watcher) runCategory(ctx context.Context, log *zap.Logger, category Category) bool {
	log.Info("Checking category", zap.String("category", category.Name))

	body, err := w.fetcher.FetchResults(ctx, category.SearchType)
	if err != nil {
		w.escalator.ReportFailure(ctx, "Connection Error",
			fmt.Sprintf("Failed to fetch %q: %v", category.Name, err))
		return false
	}

	records, err := roster.Extract(body)
	if err != nil {
		// No table at all means the markup changed or we are being blocked,
		// not that there were zero results.
		w.escalator.ReportFailure(ctx, "No Results Table",
			fmt.Sprintf("Could not find results table on %q page - site may have changed or be blocking requests", category.Name))
		return false
	}

	metrics.RecordsExtractedTotal.Add(float64(len(records)))
	log.Info("Extracted records",
		zap.String("category", category.Name),
		zap.Int("count", len(records)))

	for _, rec := range records {
		fingerprint := roster.Fingerprint(rec)
		if w.set.Has(category.Bucket, fingerprint) {
			log.Debug("Already seen",
				zap.String("category", category.Name),
				zap.String("name", rec.FullNameDisplay))
			continue
		}
		if !w.watchlist.Matches(rec.FirstName, rec.LastName) {
			continue
		}

		w.set.Add(category.Bucket, fingerprint)
		message := formatMatch(category, rec)
		if err := w.notifier.Notify(ctx, message); err != nil {
			log.Warn("Failed to deliver match notification",
				zap.String("name", rec.FullNameDisplay), zap.Error(err))
		}
		metrics.MatchNotificationsTotal.Inc()
		w.mu.Lock()
		w.status.MatchesNotified++
		w.mu.Unlock()
		log.Info("Watchlist match",
			zap.String("category", category.Name),
			zap.String("name", rec.FullNameDisplay),
			zap.String("date", rec.Date))
	}

	return true
}

// Status returns the latest cycle snapshot.
func (w *Watcher) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

func (w *Watcher) publishStatus() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status.LastCycle = time.Now().UTC()
	w.status.CyclesRun++
	w.status.ConsecutiveFailures = w.escalator.FailureCount()
	w.status.SeenBooked = w.set.Len(seen.Booked)
	w.status.SeenReleased = w.set.Len(seen.Released)
}

// formatMatch builds the operator-facing message, omitting fields the source
// left empty.
func formatMatch(category Category, rec roster.BookingRecord) string {
	var b strings.Builder
	b.WriteString(category.Headline)
	b.WriteString("\n")
	fmt.Fprintf(&b, "*Name:* %s, %s\n", rec.LastName, rec.FirstName)
	if rec.Date != "" {
		fmt.Fprintf(&b, "*%s:* %s\n", category.DateLabel, rec.Date)
	}
	if rec.BookingNumber != "" {
		fmt.Fprintf(&b, "*Booking #:* %s\n", rec.BookingNumber)
	}
	return b.String()
}
