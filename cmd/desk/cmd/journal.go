package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/desk/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the desk's audit journal",
	Long: `Query audit, risk and error entries recorded by the desk.

Examples:
  desk journal recent alice
  desk journal recent alice --limit 50`,
}

var journalRecentCmd = &cobra.Command{
	Use:   "recent <account>",
	Short: "List the most recent journal entries for an account",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalRecent,
}

var (
	journalDBPath string
	journalLimit  int
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRecentCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./logs.db", "path to SQLite journal DB")
	journalRecentCmd.Flags().IntVarP(&journalLimit, "limit", "n", 20, "maximum entries to show")
}

func runJournalRecent(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	entries, err := j.Recent(args[0], journalLimit)
	if err != nil {
		return fmt.Errorf("query journal: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No entries")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%s  %-8s %s\n", e.Time.Format("2006-01-02 15:04:05"), e.Category, e.Message)
	}
	return nil
}
