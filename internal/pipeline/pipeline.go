package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/covid-series-service/internal/domain"
	"github.com/couchcryptid/covid-series-service/internal/observability"
	"github.com/couchcryptid/covid-series-service/internal/snapshot"
	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jonboulle/clockwork"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Loader reads the three series from their source.
type Loader interface {
	Load(ctx context.Context) (domain.Tables, error)
	Source() string
}

// Publisher emits the daily summaries of a freshly loaded snapshot.
type Publisher interface {
	PublishSummary(ctx context.Context, snap *snapshot.Snapshot) error
}

// Pipeline orchestrates the load-build-swap refresh loop.
type Pipeline struct {
	loader    Loader
	store     *snapshot.Store
	publisher Publisher
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
	interval  time.Duration
}

// New creates a Pipeline. A nil publisher disables summary publishing and a
// zero interval disables periodic refresh.
func New(l Loader, store *snapshot.Store, pub Publisher, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics, interval time.Duration) *Pipeline {
	return &Pipeline{
		loader:    l,
		store:     store,
		publisher: pub,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
		interval:  interval,
	}
}

// Refresh loads the series, builds a new aggregator, and swaps it into the
// store. On failure the current snapshot is left untouched.
func (p *Pipeline) Refresh(ctx context.Context) error {
	start := p.clock.Now()

	tables, err := p.loader.Load(ctx)
	if err != nil {
		p.metrics.Refreshes.WithLabelValues("error").Inc()
		return fmt.Errorf("refresh: %w", err)
	}
	agg, err := domain.NewAggregator(tables)
	if err != nil {
		p.metrics.Refreshes.WithLabelValues("error").Inc()
		return fmt.Errorf("refresh: %w", err)
	}

	snap := snapshot.New(agg, p.loader.Source(), p.clock.Now())
	prev := p.store.Swap(snap)

	p.metrics.Refreshes.WithLabelValues("success").Inc()
	p.metrics.RefreshDuration.Observe(p.clock.Since(start).Seconds())
	p.metrics.SnapshotDays.Set(float64(len(agg.Days())))
	p.metrics.SnapshotLoadedAt.Set(float64(snap.LoadedAt.Unix()))
	for _, table := range domain.AllTables() {
		p.metrics.SnapshotRows.WithLabelValues(string(table)).Set(float64(tables.Series(table).NumLocations()))
	}

	attrs := []any{
		"snapshot_id", snap.ID,
		"source", snap.Source,
		"first_day", agg.FirstDay(),
		"last_day", agg.LastDay(),
		"days", len(agg.Days()),
	}
	if prev != nil {
		attrs = append(attrs, "replaced", prev.ID)
	}
	p.logger.Info("series snapshot swapped", attrs...)

	if p.publisher != nil {
		if err := p.publisher.PublishSummary(ctx, snap); err != nil {
			p.metrics.PublishErrors.Inc()
			p.logger.Warn("publish daily summaries failed", "error", err, "snapshot_id", snap.ID)
		}
	}
	return nil
}

// Run performs the initial refresh, retrying with exponential backoff until
// it succeeds, then refreshes on every interval tick until the context is
// cancelled. A failed periodic refresh keeps serving the previous snapshot.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("refresher started", "source", p.loader.Source(), "interval", p.interval)
	p.metrics.RefresherRunning.Set(1)
	defer p.metrics.RefresherRunning.Set(0)

	if !p.initialRefresh(ctx) {
		p.logger.Info("refresher stopping", "reason", ctx.Err())
		return nil
	}

	if p.interval <= 0 {
		p.logger.Info("periodic refresh disabled")
		return nil
	}

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("refresher stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			if err := p.Refresh(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				p.logger.Error("refresh failed, keeping previous snapshot", "error", err)
			}
		}
	}
}

// initialRefresh retries Refresh until it succeeds. Returns false if the
// context was cancelled first.
func (p *Pipeline) initialRefresh(ctx context.Context) bool {
	backoff := initialBackoff
	for {
		err := p.Refresh(ctx)
		if err == nil {
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("initial refresh failed", "error", err, "retry_in", backoff)
		if !sleepWithContext(ctx, p.clock, backoff) {
			return false
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
}

// sleepWithContext mirrors retry.SleepWithContext on the injected clock so
// tests can drive the backoff with a fake clock.
func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
