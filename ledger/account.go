// Package ledger owns balance, holdings, and transaction history per
// named trader, and enforces order-size and daily-trade limits.
package ledger

import "time"

// Transaction is a single trade record. Immutable once appended.
type Transaction struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Quantity  int       `json:"quantity"` // positive = buy, negative = sell
	Price     float64   `json:"price"`    // execution price before spread adjustment
	Timestamp time.Time `json:"timestamp"`
	Rationale string    `json:"rationale"`
}

// Total is the signed trade value at the recorded price.
func (t Transaction) Total() float64 {
	return float64(t.Quantity) * t.Price
}

// ValuePoint is one observation of total portfolio value.
type ValuePoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Account is the persisted state of one named trader. Holdings carries no
// entry for a zero quantity; Transactions is append-only.
type Account struct {
	Name         string         `json:"name"`
	Balance      float64        `json:"balance"`
	Strategy     string         `json:"strategy"`
	Holdings     map[string]int `json:"holdings"`
	Transactions []Transaction  `json:"transactions"`
	ValueHistory []ValuePoint   `json:"value_history"`
}

// tradesOn counts buys and sells recorded on the given calendar date.
func (a *Account) tradesOn(date string) int {
	n := 0
	for _, t := range a.Transactions {
		if t.Timestamp.Format("2006-01-02") == date {
			n++
		}
	}
	return n
}
