package algo

import (
	"context"
	"fmt"
	"time"

	"algo_exec/internal/domain"
	"algo_exec/pkg/safe"
)

// POVParams configures participation-rate execution: each poll reads the
// recent market volume and takes min(vol*Target, vol*MaxRate), bumped up
// to MinSize and capped at the remaining quantity.
type POVParams struct {
	Target  float64 // target participation, (0,1]
	MaxRate float64 // hard participation cap, (0,1]
	MinSize int64   // smallest slice worth sending
	// Interval is the poll spacing. Zero selects DefaultUnit.
	Interval time.Duration
}

func (POVParams) Algorithm() Algorithm { return AlgoPOV }

func (p POVParams) Validate() error {
	if p.Target <= 0 || p.Target > 1 {
		return fmt.Errorf("pov: target participation out of (0,1]: %v", p.Target)
	}
	if p.MaxRate <= 0 || p.MaxRate > 1 {
		return fmt.Errorf("pov: max participation rate out of (0,1]: %v", p.MaxRate)
	}
	if p.MinSize <= 0 {
		return fmt.Errorf("pov: min slice size must be positive, got %d", p.MinSize)
	}
	if p.Interval < 0 {
		return fmt.Errorf("pov: poll interval must not be negative")
	}
	return nil
}

func (p POVParams) NewPlanner(order domain.Order, view domain.MarketView) Planner {
	interval := p.Interval
	if interval == 0 {
		interval = DefaultUnit
	}
	return &povPlanner{params: p, interval: interval, symbol: order.Symbol, view: view}
}

// povPlanner has no termination rule of its own beyond the order filling:
// a market that never prints volume keeps it probing. The pacing
// controller's iteration/time budget is the safety net.
type povPlanner struct {
	params   POVParams
	interval time.Duration
	symbol   string
	view     domain.MarketView
}

func (p *povPlanner) Next(ctx context.Context, remaining int64) (Slice, bool, error) {
	if remaining <= 0 {
		return Slice{}, true, nil
	}

	volume, err := p.view.RecentVolume(ctx, p.symbol)
	if err != nil {
		return Slice{}, false, fmt.Errorf("pov: volume read: %w", err)
	}
	if volume <= 0 {
		// Nothing traded: nothing to participate in. Probe again later.
		return Slice{Delay: p.interval}, false, nil
	}

	candidate := safe.Min(
		floorRate(volume, p.params.Target),
		floorRate(volume, p.params.MaxRate),
	)
	qty := safe.Clamp(candidate, safe.Min(p.params.MinSize, remaining), remaining)

	return Slice{
		Quantity:    qty,
		Type:        domain.TypeMarket,
		TimeInForce: domain.TIFImmediateOrCancel,
		Venue:       domain.VenuePrimary,
		Delay:       p.interval,
	}, false, nil
}
