package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fill is one executed child slice of a parent order.
// Immutable once appended to the ledger.
type Fill struct {
	ID       string // unique fill id
	SliceID  string // "<orderID>-slice-<n>", stable within the parent order
	OrderID  string
	Symbol   string
	Side     Side
	Quantity int64
	Price    decimal.Decimal
	Venue    Venue
	Ts       time.Time
}
