package market

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Plan selects which feed endpoint the live path uses.
type Plan string

const (
	// PlanEndOfDay resolves prices from the whole-market end-of-day
	// snapshot, fetched once per calendar date.
	PlanEndOfDay Plan = "eod"
	// PlanIntraday resolves prices per symbol from the intraday endpoint.
	PlanIntraday Plan = "intraday"
)

const (
	DefaultRetries = 2
	DefaultBackoff = 100 * time.Millisecond
)

// Options configures an Oracle. Zero values select defaults.
type Options struct {
	Plan    Plan
	Retries int           // extra attempts after the first (default 2)
	Backoff time.Duration // pause between attempts (default 100ms)
	Log     zerolog.Logger
	Now     func() time.Time // injectable clock for tests
}

// Oracle resolves a symbol's price for "now". Price never fails outward:
// upstream errors degrade to cached or zero values. Staleness is
// preferable to failure, recency is preferred over staleness.
type Oracle struct {
	feed      Feed // nil when no feed credential is configured
	snapshots SnapshotStore
	plan      Plan
	retries   int
	backoff   time.Duration
	now       func() time.Time
	log       zerolog.Logger

	cacheMu sync.RWMutex
	cache   map[string]float64 // last-known-good price per symbol

	snapMu  sync.Mutex
	dayDate string
	daySnap Snapshot
}

// New creates an Oracle. feed may be nil, in which case only the cached
// and persisted fallbacks are consulted.
func New(feed Feed, snapshots SnapshotStore, opts Options) *Oracle {
	o := &Oracle{
		feed:      feed,
		snapshots: snapshots,
		plan:      opts.Plan,
		retries:   opts.Retries,
		backoff:   opts.Backoff,
		now:       opts.Now,
		log:       opts.Log.With().Str("component", "oracle").Logger(),
		cache:     make(map[string]float64),
	}
	if o.plan == "" {
		o.plan = PlanEndOfDay
	}
	if o.retries == 0 {
		o.retries = DefaultRetries
	}
	if o.backoff == 0 {
		o.backoff = DefaultBackoff
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}

// Price returns the current price for symbol, or 0 when the full fallback
// chain is exhausted. The result is never negative.
func (o *Oracle) Price(ctx context.Context, symbol string) float64 {
	if o.feed != nil {
		if price, ok := o.fetchLive(ctx, symbol); ok {
			if price < 0 {
				price = 0
			}
			o.cacheMu.Lock()
			o.cache[symbol] = price
			o.cacheMu.Unlock()
			return price
		}
	}
	return o.fallback(symbol)
}

// MarketOpen reports whether the live feed considers the market open.
// Errors and a missing feed read as closed.
func (o *Oracle) MarketOpen(ctx context.Context) bool {
	if o.feed == nil {
		return false
	}
	open, err := o.feed.IsOpen(ctx)
	if err != nil {
		o.log.Error().Err(err).Msg("market status check failed")
		return false
	}
	return open
}

// Refresh forces today's snapshot to be built and persisted. Used by the
// daily prewarm job; a no-op under the intraday plan.
func (o *Oracle) Refresh(ctx context.Context) error {
	if o.feed == nil || o.plan != PlanEndOfDay {
		return nil
	}
	_, err := o.snapshotForToday(ctx)
	return err
}

// fetchLive attempts the live path with bounded retries. Each failed
// attempt is logged; the second return is false once all attempts fail.
func (o *Oracle) fetchLive(ctx context.Context, symbol string) (float64, bool) {
	for attempt := 0; attempt <= o.retries; attempt++ {
		price, err := o.fetchOnce(ctx, symbol)
		if err == nil {
			return price, true
		}
		o.log.Error().
			Err(err).
			Str("symbol", symbol).
			Int("attempt", attempt+1).
			Msg("market feed fetch failed")
		if attempt < o.retries {
			select {
			case <-time.After(o.backoff):
			case <-ctx.Done():
				return 0, false
			}
		}
	}
	return 0, false
}

func (o *Oracle) fetchOnce(ctx context.Context, symbol string) (float64, error) {
	if o.plan == PlanIntraday {
		return o.feed.Intraday(ctx, symbol)
	}
	snap, err := o.snapshotForToday(ctx)
	if err != nil {
		return 0, err
	}
	return snap[symbol], nil
}

// snapshotForToday returns the snapshot for the current calendar date,
// fetching it at most once per date. The snapshot is immutable once
// computed and is reused for the remainder of the date.
func (o *Oracle) snapshotForToday(ctx context.Context) (Snapshot, error) {
	date := o.today()

	o.snapMu.Lock()
	defer o.snapMu.Unlock()

	if o.dayDate == date && o.daySnap != nil {
		return o.daySnap, nil
	}

	if o.snapshots != nil {
		snap, ok, err := o.snapshots.ReadSnapshot(date)
		if err != nil {
			o.log.Error().Err(err).Str("date", date).Msg("snapshot store read failed")
		} else if ok {
			o.dayDate = date
			o.daySnap = snap
			return snap, nil
		}
	}

	snap, err := o.feed.EndOfDay(ctx)
	if err != nil {
		return nil, err
	}

	if o.snapshots != nil {
		if err := o.snapshots.WriteSnapshot(date, snap); err != nil {
			// The in-process copy still serves today; persistence is
			// only needed across restarts.
			o.log.Error().Err(err).Str("date", date).Msg("snapshot store write failed")
		}
	}

	o.dayDate = date
	o.daySnap = snap
	return snap, nil
}

// fallback consults the last-known-good cache, then today's persisted
// snapshot, then gives up with 0.
func (o *Oracle) fallback(symbol string) float64 {
	o.cacheMu.RLock()
	price, ok := o.cache[symbol]
	o.cacheMu.RUnlock()
	if ok {
		return price
	}

	if o.snapshots != nil {
		snap, found, err := o.snapshots.ReadSnapshot(o.today())
		if err != nil {
			o.log.Error().Err(err).Msg("snapshot store read failed")
		} else if found {
			if price, ok := snap[symbol]; ok {
				o.cacheMu.Lock()
				o.cache[symbol] = price
				o.cacheMu.Unlock()
				return price
			}
		}
	}
	return 0
}

func (o *Oracle) today() string {
	return o.now().Format("2006-01-02")
}
