package sim

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/desk/ledger"
)

// Result summarizes one agent's run.
type Result struct {
	Name           string
	Executed       int
	Rejected       int
	PortfolioValue float64
	ProfitLoss     float64
	Err            error // fatal error that aborted the agent, if any
}

// Runner executes a Script against a Desk.
type Runner struct {
	desk *ledger.Desk
	log  zerolog.Logger
}

func NewRunner(d *ledger.Desk, log zerolog.Logger) *Runner {
	return &Runner{
		desk: d,
		log:  log.With().Str("component", "sim").Logger(),
	}
}

// Run executes every agent concurrently and returns their results sorted
// by name. Rejected trades (limit or funds violations) are counted and
// skipped; store failures abort that agent only.
func (r *Runner) Run(ctx context.Context, script *Script) []Result {
	results := make([]Result, len(script.Agents))

	var wg sync.WaitGroup
	for i, agent := range script.Agents {
		wg.Add(1)
		go func(i int, agent Agent) {
			defer wg.Done()
			results[i] = r.runAgent(ctx, agent)
		}(i, agent)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return results
}

func (r *Runner) runAgent(ctx context.Context, agent Agent) Result {
	res := Result{Name: agent.Name}
	log := r.log.With().Str("agent", agent.Name).Logger()

	if _, err := r.desk.GetOrCreate(ctx, agent.Name); err != nil {
		res.Err = err
		return res
	}
	if agent.Strategy != "" {
		if err := r.desk.SetStrategy(ctx, agent.Name, agent.Strategy); err != nil {
			res.Err = err
			return res
		}
	}

	for _, order := range agent.Orders {
		var err error
		switch order.Side {
		case "buy":
			_, err = r.desk.Buy(ctx, agent.Name, order.Symbol, order.Quantity, order.Rationale)
		case "sell":
			_, err = r.desk.Sell(ctx, agent.Name, order.Symbol, order.Quantity, order.Rationale)
		}

		switch {
		case err == nil:
			res.Executed++
		case errors.Is(err, ledger.ErrStore):
			log.Error().Err(err).Msg("store failure, aborting agent")
			res.Err = err
			return res
		default:
			log.Warn().
				Err(err).
				Str("side", order.Side).
				Str("symbol", order.Symbol).
				Int("quantity", order.Quantity).
				Msg("trade rejected")
			res.Rejected++
		}
	}

	value, err := r.desk.PortfolioValue(ctx, agent.Name)
	if err != nil {
		res.Err = err
		return res
	}
	res.PortfolioValue = value
	res.ProfitLoss = r.desk.ProfitLoss(value)
	return res
}
