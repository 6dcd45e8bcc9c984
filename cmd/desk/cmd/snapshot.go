package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/desk/market"
	"github.com/rustyeddy/desk/scheduler"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Fetch and persist today's end-of-day price snapshot",
	Long: `Fetch the whole-market end-of-day snapshot and persist it so later
price lookups can fall back to it when the live feed is unavailable.

With --watch the command keeps running and refreshes the snapshot on
the configured cron schedule.

Examples:
  desk snapshot
  desk snapshot --watch`,
	RunE: runSnapshot,
}

var snapshotWatch bool

func init() {
	rootCmd.AddCommand(snapshotCmd)

	snapshotCmd.Flags().BoolVarP(&snapshotWatch, "watch", "w", false, "keep running and refresh on the configured schedule")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	d, err := openDesk()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := context.Background()
	if d.oracle.MarketOpen(ctx) {
		fmt.Println("Market is open")
	} else {
		fmt.Println("Market is closed")
	}

	if err := d.oracle.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh snapshot: %w", err)
	}
	fmt.Println("Snapshot refreshed")

	if !snapshotWatch {
		return nil
	}

	sched := scheduler.New(d.log)
	job := market.NewSnapshotRefreshJob(d.oracle, 0)
	if err := sched.AddJob(d.cfg.Market.RefreshSchedule, job); err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}
	sched.Start()

	fmt.Printf("Refreshing on schedule %q, Ctrl-C to stop\n", d.cfg.Market.RefreshSchedule)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	sched.Stop()
	return nil
}
