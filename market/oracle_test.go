package market

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeed struct {
	mu            sync.Mutex
	open          bool
	eod           Snapshot
	eodErr        error
	eodCalls      int
	intraday      map[string]float64
	intradayErr   error
	intradayCalls int
}

func (f *fakeFeed) IsOpen(ctx context.Context) (bool, error) {
	return f.open, nil
}

func (f *fakeFeed) EndOfDay(ctx context.Context) (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.eodCalls++
	if f.eodErr != nil {
		return nil, f.eodErr
	}
	return f.eod, nil
}

func (f *fakeFeed) Intraday(ctx context.Context, symbol string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.intradayCalls++
	if f.intradayErr != nil {
		return 0, f.intradayErr
	}
	return f.intraday[symbol], nil
}

func (f *fakeFeed) calls() (eod, intraday int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.eodCalls, f.intradayCalls
}

type fakeSnapshots struct {
	mu     sync.Mutex
	byDate map[string]Snapshot
	reads  int
	writes int
}

func newFakeSnapshots() *fakeSnapshots {
	return &fakeSnapshots{byDate: make(map[string]Snapshot)}
}

func (s *fakeSnapshots) ReadSnapshot(date string) (Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	snap, ok := s.byDate[date]
	return snap, ok, nil
}

func (s *fakeSnapshots) WriteSnapshot(date string, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	s.byDate[date] = snap
	return nil
}

func fixedClock(date string) func() time.Time {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func TestPriceIntraday(t *testing.T) {
	t.Parallel()

	feed := &fakeFeed{intraday: map[string]float64{"AAPL": 187.5}}
	o := New(feed, newFakeSnapshots(), Options{Plan: PlanIntraday, Backoff: time.Millisecond})

	assert.Equal(t, 187.5, o.Price(context.Background(), "AAPL"))
}

func TestPriceEndOfDaySnapshotFetchedOncePerDate(t *testing.T) {
	t.Parallel()

	feed := &fakeFeed{eod: Snapshot{"AAPL": 100, "MSFT": 250}}
	snaps := newFakeSnapshots()
	o := New(feed, snaps, Options{Backoff: time.Millisecond, Now: fixedClock("2026-08-31")})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sym := "AAPL"
			if i%2 == 1 {
				sym = "MSFT"
			}
			o.Price(context.Background(), sym)
		}(i)
	}
	wg.Wait()

	eod, _ := feed.calls()
	assert.Equal(t, 1, eod, "end-of-day snapshot must be fetched at most once per date")
	assert.Equal(t, 1, snaps.writes)
	assert.Equal(t, 100.0, o.Price(context.Background(), "AAPL"))
	assert.Equal(t, 250.0, o.Price(context.Background(), "MSFT"))
}

func TestPriceUnknownSymbolDefaultsToZero(t *testing.T) {
	t.Parallel()

	feed := &fakeFeed{eod: Snapshot{"AAPL": 100}}
	o := New(feed, newFakeSnapshots(), Options{Backoff: time.Millisecond})

	assert.Equal(t, 0.0, o.Price(context.Background(), "NOPE"))
}

func TestPriceDateRolloverRefetches(t *testing.T) {
	t.Parallel()

	feed := &fakeFeed{eod: Snapshot{"AAPL": 100}}
	snaps := newFakeSnapshots()

	var mu sync.Mutex
	date := "2026-08-31"
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		d, _ := time.Parse("2006-01-02", date)
		return d
	}

	o := New(feed, snaps, Options{Backoff: time.Millisecond, Now: clock})

	o.Price(context.Background(), "AAPL")
	o.Price(context.Background(), "AAPL")

	mu.Lock()
	date = "2026-09-01"
	mu.Unlock()

	o.Price(context.Background(), "AAPL")

	eod, _ := feed.calls()
	assert.Equal(t, 2, eod, "new date must trigger a new snapshot fetch")
}

func TestPriceRetriesThenFallsBackToCache(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := zerolog.New(&buf)

	feed := &fakeFeed{intraday: map[string]float64{"AAPL": 150}}
	o := New(feed, newFakeSnapshots(), Options{
		Plan:    PlanIntraday,
		Backoff: time.Millisecond,
		Log:     log,
	})

	// Prime the last-known-good cache.
	require.Equal(t, 150.0, o.Price(context.Background(), "AAPL"))

	feed.mu.Lock()
	feed.intradayErr = errors.New("provider down")
	feed.mu.Unlock()

	buf.Reset()
	price := o.Price(context.Background(), "AAPL")

	assert.Equal(t, 150.0, price, "failed live path must fall back to cached price")
	assert.GreaterOrEqual(t, price, 0.0)

	// One error log per failed attempt: first try plus two retries.
	logged := strings.Count(buf.String(), "market feed fetch failed")
	assert.Equal(t, 3, logged)

	_, intraday := feed.calls()
	assert.Equal(t, 4, intraday) // 1 prime + 3 failed attempts
}

func TestPriceFeedDownNoCacheReturnsZero(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	feed := &fakeFeed{eodErr: errors.New("provider down")}
	o := New(feed, newFakeSnapshots(), Options{
		Backoff: time.Millisecond,
		Log:     zerolog.New(&buf),
	})

	price := o.Price(context.Background(), "AAPL")
	assert.Equal(t, 0.0, price)
	assert.GreaterOrEqual(t, strings.Count(buf.String(), "market feed fetch failed"), 1)
}

func TestPriceNoFeedUsesPersistedSnapshot(t *testing.T) {
	t.Parallel()

	snaps := newFakeSnapshots()
	require.NoError(t, snaps.WriteSnapshot("2026-08-31", Snapshot{"AAPL": 99.5}))

	o := New(nil, snaps, Options{Now: fixedClock("2026-08-31")})

	assert.Equal(t, 99.5, o.Price(context.Background(), "AAPL"))
	assert.Equal(t, 0.0, o.Price(context.Background(), "MSFT"))
}

func TestPriceNegativeClampedToZero(t *testing.T) {
	t.Parallel()

	feed := &fakeFeed{intraday: map[string]float64{"BAD": -5}}
	o := New(feed, newFakeSnapshots(), Options{Plan: PlanIntraday, Backoff: time.Millisecond})

	assert.Equal(t, 0.0, o.Price(context.Background(), "BAD"))
}

func TestRefreshPersistsSnapshot(t *testing.T) {
	t.Parallel()

	feed := &fakeFeed{eod: Snapshot{"AAPL": 100}}
	snaps := newFakeSnapshots()
	o := New(feed, snaps, Options{Now: fixedClock("2026-08-31")})

	require.NoError(t, o.Refresh(context.Background()))

	snap, ok, err := snaps.ReadSnapshot("2026-08-31")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 100.0, snap["AAPL"])

	// A subsequent price lookup reuses the prewarmed snapshot.
	o.Price(context.Background(), "AAPL")
	eod, _ := feed.calls()
	assert.Equal(t, 1, eod)
}

func TestMarketOpen(t *testing.T) {
	t.Parallel()

	o := New(&fakeFeed{open: true}, newFakeSnapshots(), Options{})
	assert.True(t, o.MarketOpen(context.Background()))

	noFeed := New(nil, newFakeSnapshots(), Options{})
	assert.False(t, noFeed.MarketOpen(context.Background()))
}
