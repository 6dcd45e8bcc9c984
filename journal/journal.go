// Package journal records audit trail entries for trading accounts.
//
// Entries are categorized as error, risk, or audit. Writers treat the
// journal as fire-and-forget: a failed write must never abort the trading
// operation that produced it.
package journal

import "time"

// Entry categories.
const (
	CategoryError = "error"
	CategoryRisk  = "risk"
	CategoryAudit = "audit"
)

// Entry is a single audit trail record.
type Entry struct {
	ID       string
	Time     time.Time
	Name     string // account name, lowercased
	Category string // error | risk | audit
	Message  string
}

// Logger accepts audit trail entries.
type Logger interface {
	Log(name, category, message string) error
	Close() error
}

// Nop is a Logger that discards everything.
type Nop struct{}

func (Nop) Log(name, category, message string) error { return nil }
func (Nop) Close() error                             { return nil }
