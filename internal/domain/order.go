package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderType distinguishes market and limit child slices.
type OrderType string

const (
	TypeMarket OrderType = "MARKET"
	TypeLimit  OrderType = "LIMIT"
)

// TimeInForce controls how long a child slice rests.
type TimeInForce string

const (
	TIFGoodTillCancel    TimeInForce = "GTC"
	TIFImmediateOrCancel TimeInForce = "IOC"
	TIFFillOrKill        TimeInForce = "FOK"
	TIFDay               TimeInForce = "DAY"
)

// Venue identifies where a child slice is routed.
type Venue string

const (
	VenuePrimary Venue = "PRIMARY"
	VenueDark    Venue = "DARK"
)

// Order is the parent trade request. It is owned by the caller and is
// never mutated by the engine; execution progress lives in the
// ExecutionRecord instead.
type Order struct {
	ID          string
	Symbol      string
	Side        Side
	Type        OrderType
	Quantity    int64           // whole units
	LimitPrice  decimal.Decimal // zero = no limit
	TimeInForce TimeInForce
	Venue       Venue // routing hint, may be empty
	CreatedAt   time.Time
}

// HasLimit reports whether the parent order carries a limit price.
func (o *Order) HasLimit() bool {
	return o.LimitPrice.IsPositive()
}

// Validate checks the fields the engine depends on. Called once at submit.
func (o *Order) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("order id is required")
	}
	if o.Symbol == "" {
		return fmt.Errorf("order symbol is required")
	}
	if o.Side != SideBuy && o.Side != SideSell {
		return fmt.Errorf("invalid order side: %q", o.Side)
	}
	if o.Quantity <= 0 {
		return fmt.Errorf("order quantity must be positive, got %d", o.Quantity)
	}
	if o.LimitPrice.IsNegative() {
		return fmt.Errorf("limit price must not be negative, got %s", o.LimitPrice)
	}
	return nil
}
