package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/desk/journal"
	"github.com/rustyeddy/desk/pkg/id"
	"github.com/rustyeddy/desk/store"
)

// Defaults applied when Options leaves a field zero.
const (
	DefaultInitialBalance   = 10_000.0
	DefaultSpread           = 0.002
	DefaultMaxOrderSize     = 1000
	DefaultDailyTradeLimit  = 20
	DefaultMaxTradeFraction = 0.3
)

// PriceSource resolves a symbol's current price. It never fails; 0 means
// the price could not be resolved.
type PriceSource interface {
	Price(ctx context.Context, symbol string) float64
}

// Limits are the trading limits enforced before every buy and sell.
type Limits struct {
	MaxOrderSize     int     // maximum shares in a single order
	DailyTradeLimit  int     // maximum buys+sells per calendar day
	MaxTradeFraction float64 // max single trade value as a fraction of portfolio value; 0 disables
}

// Options configures a Desk. Zero values select defaults.
type Options struct {
	Limits         Limits
	Spread         float64 // fractional transaction cost, applied against the trader on both sides
	InitialBalance float64
	Log            zerolog.Logger
	Now            func() time.Time // injectable clock for tests
}

// Desk executes trading operations against named accounts. Operations on
// the same account name are serialized through a per-name mutex;
// operations on different accounts proceed in parallel. The store is the
// source of truth: every operation reloads the account, so a failed write
// cannot leak partial state into a later call.
type Desk struct {
	store   store.AccountStore
	prices  PriceSource
	audit   journal.Logger
	limits  Limits
	spread  float64
	initial float64
	now     func() time.Time
	log     zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex // lazily created, one per account name
}

func New(st store.AccountStore, prices PriceSource, audit journal.Logger, opts Options) *Desk {
	d := &Desk{
		store:   st,
		prices:  prices,
		audit:   audit,
		limits:  opts.Limits,
		spread:  opts.Spread,
		initial: opts.InitialBalance,
		now:     opts.Now,
		log:     opts.Log.With().Str("component", "ledger").Logger(),
		locks:   make(map[string]*sync.Mutex),
	}
	if d.limits.MaxOrderSize == 0 {
		d.limits.MaxOrderSize = DefaultMaxOrderSize
	}
	if d.limits.DailyTradeLimit == 0 {
		d.limits.DailyTradeLimit = DefaultDailyTradeLimit
	}
	if d.spread == 0 {
		d.spread = DefaultSpread
	}
	if d.initial == 0 {
		d.initial = DefaultInitialBalance
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d
}

// InitialBalance returns the fixed starting balance for new accounts.
func (d *Desk) InitialBalance() float64 { return d.initial }

// GetOrCreate returns the account for name (case-insensitive), creating
// and persisting a fresh one with the initial balance on first lookup.
func (d *Desk) GetOrCreate(ctx context.Context, name string) (*Account, error) {
	key := accountKey(name)
	l := d.lock(key)
	l.Lock()
	defer l.Unlock()

	return d.getOrCreateLocked(key)
}

// Deposit adds funds to the account.
func (d *Desk) Deposit(ctx context.Context, name string, amount float64) (*Account, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("deposit: %w", ErrInvalidAmount)
	}

	key := accountKey(name)
	l := d.lock(key)
	l.Lock()
	defer l.Unlock()

	a, err := d.getOrCreateLocked(key)
	if err != nil {
		return nil, err
	}

	a.Balance += amount
	if err := d.save(a); err != nil {
		return nil, err
	}
	d.auditLog(key, journal.CategoryAudit, fmt.Sprintf("Deposited %.2f, new balance %.2f", amount, a.Balance))
	return a, nil
}

// Withdraw removes funds from the account. The balance may not go
// negative.
func (d *Desk) Withdraw(ctx context.Context, name string, amount float64) (*Account, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("withdraw: %w", ErrInvalidAmount)
	}

	key := accountKey(name)
	l := d.lock(key)
	l.Lock()
	defer l.Unlock()

	a, err := d.getOrCreateLocked(key)
	if err != nil {
		return nil, err
	}

	if amount > a.Balance {
		return nil, fmt.Errorf("withdraw %.2f with balance %.2f: %w", amount, a.Balance, ErrInvalidAmount)
	}

	a.Balance -= amount
	if err := d.save(a); err != nil {
		return nil, err
	}
	d.auditLog(key, journal.CategoryAudit, fmt.Sprintf("Withdrew %.2f, new balance %.2f", amount, a.Balance))
	return a, nil
}

// Buy purchases quantity shares of symbol at the oracle price plus
// spread. The transaction records the unadjusted price; the spread is a
// cost, not part of the recorded trade price.
func (d *Desk) Buy(ctx context.Context, name, symbol string, quantity int, rationale string) (*Account, error) {
	key := accountKey(name)
	l := d.lock(key)
	l.Lock()
	defer l.Unlock()

	a, err := d.getOrCreateLocked(key)
	if err != nil {
		return nil, err
	}

	if err := d.checkTradeLimits(a, quantity); err != nil {
		return nil, err
	}

	price := d.prices.Price(ctx, symbol)
	if price == 0 {
		d.auditLog(key, journal.CategoryRisk, fmt.Sprintf("Buy %d %s rejected: unrecognized symbol", quantity, symbol))
		return nil, fmt.Errorf("buy %s: %w", symbol, ErrUnknownSymbol)
	}

	cost := price * (1 + d.spread) * float64(quantity)

	if frac := d.limits.MaxTradeFraction; frac > 0 {
		value := d.portfolioValueLocked(ctx, a)
		if cost > value*frac {
			d.auditLog(key, journal.CategoryRisk,
				fmt.Sprintf("Buy %d %s rejected: trade value %.2f exceeds %.0f%% of portfolio", quantity, symbol, cost, frac*100))
			return nil, fmt.Errorf("buy %d %s: %w", quantity, symbol, ErrTradeTooLarge)
		}
	}

	if cost > a.Balance {
		d.auditLog(key, journal.CategoryRisk, fmt.Sprintf("Buy %d %s rejected: insufficient funds", quantity, symbol))
		return nil, fmt.Errorf("buy %d %s for %.2f with balance %.2f: %w", quantity, symbol, cost, a.Balance, ErrInsufficientFunds)
	}

	a.Balance -= cost
	a.Holdings[symbol] += quantity
	a.Transactions = append(a.Transactions, Transaction{
		ID:        id.New(),
		Symbol:    symbol,
		Quantity:  quantity,
		Price:     price,
		Timestamp: d.now(),
		Rationale: rationale,
	})

	if err := d.save(a); err != nil {
		return nil, err
	}
	d.auditLog(key, journal.CategoryAudit, fmt.Sprintf("Bought %d %s at %.2f", quantity, symbol, price))
	return a, nil
}

// Sell disposes of quantity shares of symbol at the oracle price minus
// spread. The holdings entry is removed when it reaches zero.
func (d *Desk) Sell(ctx context.Context, name, symbol string, quantity int, rationale string) (*Account, error) {
	key := accountKey(name)
	l := d.lock(key)
	l.Lock()
	defer l.Unlock()

	a, err := d.getOrCreateLocked(key)
	if err != nil {
		return nil, err
	}

	if err := d.checkTradeLimits(a, quantity); err != nil {
		return nil, err
	}

	if a.Holdings[symbol] < quantity {
		d.auditLog(key, journal.CategoryRisk, fmt.Sprintf("Sell %d %s rejected: insufficient shares", quantity, symbol))
		return nil, fmt.Errorf("sell %d %s holding %d: %w", quantity, symbol, a.Holdings[symbol], ErrInsufficientShares)
	}

	price := d.prices.Price(ctx, symbol)
	proceeds := price * (1 - d.spread) * float64(quantity)

	if frac := d.limits.MaxTradeFraction; frac > 0 {
		value := d.portfolioValueLocked(ctx, a)
		if proceeds > value*frac {
			d.auditLog(key, journal.CategoryRisk,
				fmt.Sprintf("Sell %d %s rejected: trade value %.2f exceeds %.0f%% of portfolio", quantity, symbol, proceeds, frac*100))
			return nil, fmt.Errorf("sell %d %s: %w", quantity, symbol, ErrTradeTooLarge)
		}
	}

	a.Balance += proceeds
	a.Holdings[symbol] -= quantity
	if a.Holdings[symbol] == 0 {
		delete(a.Holdings, symbol)
	}
	a.Transactions = append(a.Transactions, Transaction{
		ID:        id.New(),
		Symbol:    symbol,
		Quantity:  -quantity,
		Price:     price,
		Timestamp: d.now(),
		Rationale: rationale,
	})

	if err := d.save(a); err != nil {
		return nil, err
	}
	d.auditLog(key, journal.CategoryAudit, fmt.Sprintf("Sold %d %s at %.2f", quantity, symbol, price))
	return a, nil
}

// PortfolioValue is cash plus the mark-to-market value of all holdings at
// current resolvable prices.
func (d *Desk) PortfolioValue(ctx context.Context, name string) (float64, error) {
	key := accountKey(name)
	l := d.lock(key)
	l.Lock()
	defer l.Unlock()

	a, err := d.getOrCreateLocked(key)
	if err != nil {
		return 0, err
	}
	return d.portfolioValueLocked(ctx, a), nil
}

// ProfitLoss is a pure function of a valuation; it does not refetch.
func (d *Desk) ProfitLoss(value float64) float64 {
	return value - d.initial
}

// SetStrategy replaces the account's trading rationale.
func (d *Desk) SetStrategy(ctx context.Context, name, strategy string) error {
	key := accountKey(name)
	l := d.lock(key)
	l.Lock()
	defer l.Unlock()

	a, err := d.getOrCreateLocked(key)
	if err != nil {
		return err
	}

	a.Strategy = strategy
	if err := d.save(a); err != nil {
		return err
	}
	d.auditLog(key, journal.CategoryAudit, "Changed strategy")
	return nil
}

// Reset returns the account to its initial state with a new strategy.
func (d *Desk) Reset(ctx context.Context, name, strategy string) (*Account, error) {
	key := accountKey(name)
	l := d.lock(key)
	l.Lock()
	defer l.Unlock()

	a := &Account{
		Name:     key,
		Balance:  d.initial,
		Strategy: strategy,
		Holdings: make(map[string]int),
	}
	if err := d.save(a); err != nil {
		return nil, err
	}
	d.auditLog(key, journal.CategoryAudit, "Account reset")
	return a, nil
}

func (d *Desk) checkTradeLimits(a *Account, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("trade of %d shares: %w", quantity, ErrInvalidQuantity)
	}
	if quantity > d.limits.MaxOrderSize {
		return fmt.Errorf("trade of %d shares, max %d: %w", quantity, d.limits.MaxOrderSize, ErrOrderTooLarge)
	}
	if a.tradesOn(d.now().Format("2006-01-02")) >= d.limits.DailyTradeLimit {
		return fmt.Errorf("%d trades today: %w", d.limits.DailyTradeLimit, ErrDailyLimit)
	}
	return nil
}

func (d *Desk) portfolioValueLocked(ctx context.Context, a *Account) float64 {
	value := a.Balance
	for symbol, quantity := range a.Holdings {
		value += d.prices.Price(ctx, symbol) * float64(quantity)
	}
	return value
}

// lock returns the mutex for an account name, creating it on first use.
func (d *Desk) lock(key string) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.locks[key]
	if !ok {
		l = &sync.Mutex{}
		d.locks[key] = l
	}
	return l
}

func (d *Desk) getOrCreateLocked(key string) (*Account, error) {
	record, ok, err := d.store.ReadAccount(key)
	if err != nil {
		return nil, fmt.Errorf("%w: read %q: %v", ErrStore, key, err)
	}

	if !ok {
		a := &Account{
			Name:     key,
			Balance:  d.initial,
			Holdings: make(map[string]int),
		}
		if err := d.save(a); err != nil {
			return nil, err
		}
		return a, nil
	}

	var a Account
	if err := json.Unmarshal(record, &a); err != nil {
		return nil, fmt.Errorf("%w: decode %q: %v", ErrStore, key, err)
	}
	if a.Holdings == nil {
		a.Holdings = make(map[string]int)
	}
	return &a, nil
}

func (d *Desk) save(a *Account) error {
	record, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("%w: encode %q: %v", ErrStore, a.Name, err)
	}
	if err := d.store.WriteAccount(a.Name, record); err != nil {
		return fmt.Errorf("%w: write %q: %v", ErrStore, a.Name, err)
	}
	return nil
}

// auditLog is fire-and-forget: journal failures are logged, never
// returned, so they cannot abort a trading operation.
func (d *Desk) auditLog(name, category, message string) {
	if d.audit == nil {
		return
	}
	if err := d.audit.Log(name, category, message); err != nil {
		d.log.Error().Err(err).Str("account", name).Msg("audit log write failed")
	}
}

func accountKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
