package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var tradeCmd = &cobra.Command{
	Use:   "trade",
	Short: "Buy and sell shares",
	Long: `Execute a trade against an account.

Examples:
  desk trade buy alice AAPL 10 --rationale "earnings momentum"
  desk trade sell alice AAPL 5`,
}

var tradeBuyCmd = &cobra.Command{
	Use:   "buy <account> <symbol> <quantity>",
	Short: "Buy shares for an account",
	Args:  cobra.ExactArgs(3),
	RunE:  runTradeBuy,
}

var tradeSellCmd = &cobra.Command{
	Use:   "sell <account> <symbol> <quantity>",
	Short: "Sell shares from an account",
	Args:  cobra.ExactArgs(3),
	RunE:  runTradeSell,
}

var tradeRationale string

func init() {
	rootCmd.AddCommand(tradeCmd)
	tradeCmd.AddCommand(tradeBuyCmd)
	tradeCmd.AddCommand(tradeSellCmd)

	tradeCmd.PersistentFlags().StringVarP(&tradeRationale, "rationale", "r", "", "reason recorded with the transaction")
}

func runTradeBuy(cmd *cobra.Command, args []string) error {
	quantity, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("quantity: %w", err)
	}

	d, err := openDesk()
	if err != nil {
		return err
	}
	defer d.Close()

	a, err := d.desk.Buy(context.Background(), args[0], args[1], quantity, tradeRationale)
	if err != nil {
		return fmt.Errorf("buy: %w", err)
	}

	tx := a.Transactions[len(a.Transactions)-1]
	fmt.Printf("Bought %d %s at $%.2f (balance: $%.2f)\n", quantity, tx.Symbol, tx.Price, a.Balance)
	return nil
}

func runTradeSell(cmd *cobra.Command, args []string) error {
	quantity, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("quantity: %w", err)
	}

	d, err := openDesk()
	if err != nil {
		return err
	}
	defer d.Close()

	a, err := d.desk.Sell(context.Background(), args[0], args[1], quantity, tradeRationale)
	if err != nil {
		return fmt.Errorf("sell: %w", err)
	}

	tx := a.Transactions[len(a.Transactions)-1]
	fmt.Printf("Sold %d %s at $%.2f (balance: $%.2f)\n", quantity, tx.Symbol, tx.Price, a.Balance)
	return nil
}
