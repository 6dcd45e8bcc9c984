// Package market resolves share prices through a tiered fallback chain:
// live feed, persisted daily snapshot, in-process cache, zero.
package market

import "context"

// Snapshot is a full-market price table keyed by symbol, computed once per
// calendar date.
type Snapshot map[string]float64

// Feed provides prices from an external market-data provider. Any method
// may fail; the Oracle absorbs those failures.
type Feed interface {
	IsOpen(ctx context.Context) (bool, error)
	EndOfDay(ctx context.Context) (Snapshot, error)
	Intraday(ctx context.Context, symbol string) (float64, error)
}

// SnapshotStore persists at most one snapshot per calendar date
// (YYYY-MM-DD) across process restarts.
type SnapshotStore interface {
	ReadSnapshot(date string) (Snapshot, bool, error)
	WriteSnapshot(date string, snap Snapshot) error
}
