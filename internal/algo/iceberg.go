package algo

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"algo_exec/internal/domain"
	"algo_exec/pkg/safe"
)

// IcebergParams configures progressive-reveal execution: at most
// DisplaySize units standing at a time as a limit order offset from the
// market, refreshed every RefreshInterval.
type IcebergParams struct {
	DisplaySize     int64
	RefreshInterval time.Duration
	// PriceOffset is the fractional distance of the limit from the market
	// price: buys rest below at market*(1-offset), sells above at
	// market*(1+offset).
	PriceOffset decimal.Decimal
}

func (IcebergParams) Algorithm() Algorithm { return AlgoIceberg }

func (p IcebergParams) Validate() error {
	if p.DisplaySize <= 0 {
		return fmt.Errorf("iceberg: display size must be positive, got %d", p.DisplaySize)
	}
	if p.RefreshInterval <= 0 {
		return fmt.Errorf("iceberg: refresh interval must be positive")
	}
	if p.PriceOffset.IsNegative() || p.PriceOffset.GreaterThanOrEqual(one) {
		return fmt.Errorf("iceberg: price offset out of [0,1): %s", p.PriceOffset)
	}
	return nil
}

func (p IcebergParams) NewPlanner(order domain.Order, view domain.MarketView) Planner {
	return &icebergPlanner{params: p, symbol: order.Symbol, side: order.Side, view: view}
}

type icebergPlanner struct {
	params IcebergParams
	symbol string
	side   domain.Side
	view   domain.MarketView
}

func (i *icebergPlanner) Next(ctx context.Context, remaining int64) (Slice, bool, error) {
	if remaining <= 0 {
		return Slice{}, true, nil
	}

	market, err := i.view.CurrentPrice(ctx, i.symbol)
	if err != nil {
		return Slice{}, false, fmt.Errorf("iceberg: price read: %w", err)
	}

	var price decimal.Decimal
	if i.side == domain.SideBuy {
		price = market.Mul(one.Sub(i.params.PriceOffset))
	} else {
		price = market.Mul(one.Add(i.params.PriceOffset))
	}

	return Slice{
		Quantity:    safe.Min(i.params.DisplaySize, remaining),
		Type:        domain.TypeLimit,
		Price:       price,
		TimeInForce: domain.TIFGoodTillCancel,
		Venue:       domain.VenuePrimary,
		Delay:       i.params.RefreshInterval,
	}, false, nil
}
