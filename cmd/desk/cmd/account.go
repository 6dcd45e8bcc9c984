package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage and inspect desk accounts",
	Long: `Manage and inspect desk accounts.

Subcommands:
  report   - Print a full account report as JSON
  deposit  - Deposit funds into an account
  withdraw - Withdraw funds from an account
  strategy - Record an account's strategy description
  reset    - Reset an account to its initial balance

Examples:
  desk account report alice
  desk account deposit alice 500
  desk account strategy alice "buy and hold"`,
}

var accountReportCmd = &cobra.Command{
	Use:   "report <name>",
	Short: "Print a full account report as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountReport,
}

var accountDepositCmd = &cobra.Command{
	Use:   "deposit <name> <amount>",
	Short: "Deposit funds into an account",
	Args:  cobra.ExactArgs(2),
	RunE:  runAccountDeposit,
}

var accountWithdrawCmd = &cobra.Command{
	Use:   "withdraw <name> <amount>",
	Short: "Withdraw funds from an account",
	Args:  cobra.ExactArgs(2),
	RunE:  runAccountWithdraw,
}

var accountStrategyCmd = &cobra.Command{
	Use:   "strategy <name> <description>",
	Short: "Record an account's strategy description",
	Args:  cobra.ExactArgs(2),
	RunE:  runAccountStrategy,
}

var accountResetCmd = &cobra.Command{
	Use:   "reset <name> [strategy]",
	Short: "Reset an account to its initial balance",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runAccountReset,
}

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.AddCommand(accountReportCmd)
	accountCmd.AddCommand(accountDepositCmd)
	accountCmd.AddCommand(accountWithdrawCmd)
	accountCmd.AddCommand(accountStrategyCmd)
	accountCmd.AddCommand(accountResetCmd)
}

func runAccountReport(cmd *cobra.Command, args []string) error {
	d, err := openDesk()
	if err != nil {
		return err
	}
	defer d.Close()

	report, err := d.desk.Report(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func runAccountDeposit(cmd *cobra.Command, args []string) error {
	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}

	d, err := openDesk()
	if err != nil {
		return err
	}
	defer d.Close()

	a, err := d.desk.Deposit(context.Background(), args[0], amount)
	if err != nil {
		return fmt.Errorf("deposit: %w", err)
	}

	fmt.Printf("Deposited $%.2f into %s (balance: $%.2f)\n", amount, a.Name, a.Balance)
	return nil
}

func runAccountWithdraw(cmd *cobra.Command, args []string) error {
	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}

	d, err := openDesk()
	if err != nil {
		return err
	}
	defer d.Close()

	a, err := d.desk.Withdraw(context.Background(), args[0], amount)
	if err != nil {
		return fmt.Errorf("withdraw: %w", err)
	}

	fmt.Printf("Withdrew $%.2f from %s (balance: $%.2f)\n", amount, a.Name, a.Balance)
	return nil
}

func runAccountStrategy(cmd *cobra.Command, args []string) error {
	d, err := openDesk()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.desk.SetStrategy(context.Background(), args[0], args[1]); err != nil {
		return fmt.Errorf("set strategy: %w", err)
	}

	fmt.Printf("Strategy for %s updated\n", args[0])
	return nil
}

func runAccountReset(cmd *cobra.Command, args []string) error {
	d, err := openDesk()
	if err != nil {
		return err
	}
	defer d.Close()

	strategy := ""
	if len(args) == 2 {
		strategy = args[1]
	}

	a, err := d.desk.Reset(context.Background(), args[0], strategy)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	fmt.Printf("Reset %s to $%.2f\n", a.Name, a.Balance)
	return nil
}
