package algo

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"algo_exec/internal/domain"
	"algo_exec/pkg/safe"
)

// DarkPoolParams configures liquidity-matching execution against the
// dark-liquidity snapshot: each scan takes every counter-quote offering at
// least PriceImprovement versus the lit market, filling sizes clamped to
// [MinFill, MaxFill].
type DarkPoolParams struct {
	MinFill int64
	MaxFill int64
	// PriceImprovement is the required fractional improvement versus the
	// current market price: buys only match quotes at or below
	// market*(1-improvement), sells at or above market*(1+improvement).
	PriceImprovement decimal.Decimal
	// Interval is the re-scan spacing when no quote matches.
	// Zero selects DefaultUnit.
	Interval time.Duration
	// MaxProbes bounds consecutive empty scans. When exhausted the planner
	// reports done: completing with zero fills is a legitimate outcome for
	// a dark order, not a failure. Zero means no planner-level bound (the
	// controller budget still applies).
	MaxProbes int
}

func (DarkPoolParams) Algorithm() Algorithm { return AlgoDarkPool }

func (p DarkPoolParams) Validate() error {
	if p.MinFill <= 0 {
		return fmt.Errorf("darkpool: min fill size must be positive, got %d", p.MinFill)
	}
	if p.MaxFill < p.MinFill {
		return fmt.Errorf("darkpool: max fill %d below min fill %d", p.MaxFill, p.MinFill)
	}
	if p.PriceImprovement.IsNegative() || p.PriceImprovement.GreaterThanOrEqual(one) {
		return fmt.Errorf("darkpool: price improvement out of [0,1): %s", p.PriceImprovement)
	}
	if p.Interval < 0 {
		return fmt.Errorf("darkpool: scan interval must not be negative")
	}
	if p.MaxProbes < 0 {
		return fmt.Errorf("darkpool: max probes must not be negative, got %d", p.MaxProbes)
	}
	return nil
}

func (p DarkPoolParams) NewPlanner(order domain.Order, view domain.MarketView) Planner {
	interval := p.Interval
	if interval == 0 {
		interval = DefaultUnit
	}
	return &darkPlanner{
		params:   p,
		interval: interval,
		symbol:   order.Symbol,
		side:     order.Side,
		view:     view,
	}
}

type darkPlanner struct {
	params   DarkPoolParams
	interval time.Duration
	symbol   string
	side     domain.Side
	view     domain.MarketView

	queue  []Slice // matches from the last scan, drained one per Next
	probes int     // empty scans so far
}

func (d *darkPlanner) Next(ctx context.Context, remaining int64) (Slice, bool, error) {
	if remaining <= 0 {
		return Slice{}, true, nil
	}

	if len(d.queue) > 0 {
		s := d.queue[0]
		d.queue = d.queue[1:]
		return s, false, nil
	}

	if d.params.MaxProbes > 0 && d.probes >= d.params.MaxProbes {
		return Slice{}, true, nil
	}

	market, err := d.view.CurrentPrice(ctx, d.symbol)
	if err != nil {
		return Slice{}, false, fmt.Errorf("darkpool: price read: %w", err)
	}
	quotes, err := d.view.DarkLiquidity(ctx, d.symbol)
	if err != nil {
		return Slice{}, false, fmt.Errorf("darkpool: liquidity read: %w", err)
	}

	for _, q := range quotes {
		if !d.improves(q.Price, market) {
			continue
		}
		d.queue = append(d.queue, Slice{
			Quantity:    safe.Clamp(q.Qty, d.params.MinFill, d.params.MaxFill),
			Type:        domain.TypeLimit,
			Price:       q.Price,
			TimeInForce: domain.TIFImmediateOrCancel,
			Venue:       domain.VenueDark,
		})
	}

	if len(d.queue) == 0 {
		d.probes++
		if d.params.MaxProbes > 0 && d.probes >= d.params.MaxProbes {
			return Slice{}, true, nil
		}
		return Slice{Delay: d.interval}, false, nil
	}

	// Queued matches drain back-to-back; the scan pass as a whole is
	// followed by one re-scan delay.
	d.queue[len(d.queue)-1].Delay = d.interval

	s := d.queue[0]
	d.queue = d.queue[1:]
	return s, false, nil
}

// improves reports whether a quote clears the improvement margin
// against the lit market price for this order's side.
func (d *darkPlanner) improves(quote, market decimal.Decimal) bool {
	if d.side == domain.SideBuy {
		return quote.LessThanOrEqual(market.Mul(one.Sub(d.params.PriceImprovement)))
	}
	return quote.GreaterThanOrEqual(market.Mul(one.Add(d.params.PriceImprovement)))
}
