package market

import (
	"context"
	"time"
)

// SnapshotRefreshJob prewarms today's end-of-day snapshot so the first
// trade of the day doesn't pay the fetch. It satisfies scheduler.Job.
type SnapshotRefreshJob struct {
	oracle  *Oracle
	timeout time.Duration
}

func NewSnapshotRefreshJob(o *Oracle, timeout time.Duration) *SnapshotRefreshJob {
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	return &SnapshotRefreshJob{oracle: o, timeout: timeout}
}

func (j *SnapshotRefreshJob) Name() string { return "snapshot_refresh" }

func (j *SnapshotRefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	return j.oracle.Refresh(ctx)
}
