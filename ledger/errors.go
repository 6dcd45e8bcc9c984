package ledger

import "errors"

// Precondition and persistence failures. All are returned synchronously
// with no partial state change; a failed operation leaves the account
// exactly as before the call.
var (
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrOrderTooLarge      = errors.New("order size exceeds maximum")
	ErrDailyLimit         = errors.New("daily trade limit reached")
	ErrTradeTooLarge      = errors.New("trade size exceeds risk limit")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrUnknownSymbol      = errors.New("unrecognized symbol")
	ErrStore              = errors.New("account store failure")
)
