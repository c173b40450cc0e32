package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// BookLevel is one price level of an order book side.
type BookLevel struct {
	Price decimal.Decimal
	Qty   int64
}

// OrderBook is a point-in-time depth snapshot. Bids descend, asks ascend.
type OrderBook struct {
	Symbol string
	Bids   []BookLevel
	Asks   []BookLevel
	Ts     time.Time
}

// Spread returns the relative bid/ask spread (ask-bid)/mid.
// ok is false when either side of the book is empty.
func (b *OrderBook) Spread() (decimal.Decimal, bool) {
	if len(b.Bids) == 0 || len(b.Asks) == 0 {
		return decimal.Zero, false
	}
	bid := b.Bids[0].Price
	ask := b.Asks[0].Price
	mid := bid.Add(ask).Div(decimal.NewFromInt(2))
	if !mid.IsPositive() {
		return decimal.Zero, false
	}
	return ask.Sub(bid).Div(mid), true
}

// DarkQuote is one unit of non-displayed counter-liquidity.
type DarkQuote struct {
	Price decimal.Decimal
	Qty   int64
}

// MarketView supplies point-in-time market reads to the engine.
// All methods are best-effort snapshots; the engine never caches them.
// Implementations must be safe for concurrent use: a single view is
// shared across all running orders.
type MarketView interface {
	// CurrentPrice returns the prevailing trade price for symbol.
	CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error)

	// RecentVolume returns the traded volume observed over the most
	// recent interval, in whole units.
	RecentVolume(ctx context.Context, symbol string) (int64, error)

	// OrderBook returns a depth snapshot.
	OrderBook(ctx context.Context, symbol string) (OrderBook, error)

	// DarkLiquidity returns non-displayed counter-party interest.
	DarkLiquidity(ctx context.Context, symbol string) ([]DarkQuote, error)
}
