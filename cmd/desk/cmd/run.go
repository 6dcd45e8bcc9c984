package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/desk/sim"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scripted multi-agent simulation",
	Long: `Run a scripted trading simulation from a YAML script.

The script names the agents, their strategies, and the sequence of
orders each agent places. Agents run concurrently, one per account.

Example:
  desk run --script agents.yaml`,
	RunE: runRun,
}

var runScriptPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runScriptPath, "script", "s", "", "path to agent script (YAML) (required)")
	runCmd.MarkFlagRequired("script")
}

func runRun(cmd *cobra.Command, args []string) error {
	script, err := sim.LoadScript(runScriptPath)
	if err != nil {
		return fmt.Errorf("load script: %w", err)
	}

	d, err := openDesk()
	if err != nil {
		return err
	}
	defer d.Close()

	fmt.Printf("Running %d agents from %s\n\n", len(script.Agents), runScriptPath)

	runner := sim.NewRunner(d.desk, d.log)
	results := runner.Run(context.Background(), script)

	for _, res := range results {
		if res.Err != nil {
			fmt.Printf("  %-12s aborted: %v\n", res.Name, res.Err)
			continue
		}
		fmt.Printf("  %-12s executed %d, rejected %d, value $%.2f, P/L $%+.2f\n",
			res.Name, res.Executed, res.Rejected, res.PortfolioValue, res.ProfitLoss)
	}
	return nil
}
