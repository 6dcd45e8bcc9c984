package cmd

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/desk/config"
	"github.com/rustyeddy/desk/journal"
	"github.com/rustyeddy/desk/ledger"
	"github.com/rustyeddy/desk/market"
	"github.com/rustyeddy/desk/pkg/logger"
	"github.com/rustyeddy/desk/polygon"
	"github.com/rustyeddy/desk/store"
)

var rootCmd = &cobra.Command{
	Use:   "desk",
	Short: "A simulated equity trading desk with persistent accounts",
	Long: `Desk is a simulated trading desk: named accounts with cash balances
and share holdings, priced by a market oracle with tiered fallbacks.

It provides tools for:
  - Running scripted multi-agent trading simulations
  - Buying and selling shares against simulated accounts
  - Account reports with portfolio value and profit/loss
  - Prewarming and refreshing end-of-day price snapshots
  - Querying the desk's audit journal`,
}

var cfgFile string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "f", "", "path to config file (YAML or JSON)")
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadFromFile(cfgFile)
	}
	return config.Load()
}

// deps holds everything a command needs to run against the desk.
type deps struct {
	cfg    *config.Config
	log    zerolog.Logger
	store  *store.SQLite
	audit  journal.Logger
	oracle *market.Oracle
	desk   *ledger.Desk
}

func (d *deps) Close() {
	if d.audit != nil {
		d.audit.Close()
	}
	if d.store != nil {
		d.store.Close()
	}
}

// openDesk wires the store, journal, oracle and ledger from config.
// Without a feed API key the oracle runs on cached and persisted
// snapshots only.
func openDesk() (*deps, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	st, err := store.NewSQLite(cfg.Store.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	var audit journal.Logger
	switch cfg.Journal.Type {
	case "csv":
		audit, err = journal.NewCSV(cfg.Journal.File)
	default:
		audit, err = journal.NewSQLite(cfg.Journal.DBPath)
	}
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("open journal: %w", err)
	}

	var feed market.Feed
	if cfg.Market.APIKey != "" {
		feed = polygon.NewClient(cfg.Market.APIKey)
	}

	backoff, err := cfg.Market.ParseBackoff()
	if err != nil {
		audit.Close()
		st.Close()
		return nil, fmt.Errorf("market backoff: %w", err)
	}

	oracle := market.New(feed, st, market.Options{
		Plan:    market.Plan(cfg.Market.Plan),
		Retries: cfg.Market.Retries,
		Backoff: backoff,
		Log:     log,
	})

	d := ledger.New(st, oracle, audit, ledger.Options{
		Limits: ledger.Limits{
			MaxOrderSize:     cfg.Desk.MaxOrderSize,
			DailyTradeLimit:  cfg.Desk.DailyTradeLimit,
			MaxTradeFraction: cfg.Desk.MaxTradeFraction,
		},
		Spread:         cfg.Desk.Spread,
		InitialBalance: cfg.Desk.InitialBalance,
		Log:            log,
	})

	return &deps{cfg: cfg, log: log, store: st, audit: audit, oracle: oracle, desk: d}, nil
}
