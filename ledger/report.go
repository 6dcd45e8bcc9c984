package ledger

import (
	"context"

	"github.com/rustyeddy/desk/journal"
)

// Report is a full account snapshot with derived valuation fields.
type Report struct {
	Account
	PortfolioValue float64 `json:"total_portfolio_value"`
	ProfitLoss     float64 `json:"total_profit_loss"`
}

// Report values the account at current prices, appends the observation to
// the account's value history, and persists it.
func (d *Desk) Report(ctx context.Context, name string) (*Report, error) {
	key := accountKey(name)
	l := d.lock(key)
	l.Lock()
	defer l.Unlock()

	a, err := d.getOrCreateLocked(key)
	if err != nil {
		return nil, err
	}

	value := d.portfolioValueLocked(ctx, a)
	a.ValueHistory = append(a.ValueHistory, ValuePoint{Time: d.now(), Value: value})
	if err := d.save(a); err != nil {
		return nil, err
	}
	d.auditLog(key, journal.CategoryAudit, "Retrieved account details")

	return &Report{
		Account:        *a,
		PortfolioValue: value,
		ProfitLoss:     d.ProfitLoss(value),
	}, nil
}
