package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/desk/memserver"
	"github.com/rustyeddy/desk/pkg/logger"
)

var memorydCmd = &cobra.Command{
	Use:   "memoryd",
	Short: "Serve the line-oriented key-value memory protocol on stdin/stdout",
	Long: `Serve the desk's key-value memory protocol over stdin and stdout.

Each request is one JSON object per line with an "action" of set, get
or clear. Responses are one JSON object per line.

Examples:
  desk memoryd
  desk memoryd --db memory.db`,
	RunE: runMemoryd,
}

var memorydDBPath string

func init() {
	rootCmd.AddCommand(memorydCmd)

	memorydCmd.Flags().StringVarP(&memorydDBPath, "db", "d", "", "persist memory in a SQLite file (in-memory when empty)")
}

func runMemoryd(cmd *cobra.Command, args []string) error {
	log := logger.New(logger.Config{Level: "info"})

	var backend memserver.Backend
	if memorydDBPath != "" {
		b, err := memserver.NewSQLiteBackend(memorydDBPath)
		if err != nil {
			return fmt.Errorf("open backend: %w", err)
		}
		defer b.Close()
		backend = b
	} else {
		backend = memserver.NewMemoryBackend()
	}

	srv := memserver.New(backend, log)
	return srv.Serve(os.Stdin, os.Stdout)
}
