package algo

import (
	"context"
	"fmt"
	"time"

	"algo_exec/internal/domain"
)

// TWAPParams configures time-sliced execution: N equal slices spread
// evenly across the [Start, End] window.
type TWAPParams struct {
	Start  time.Time
	End    time.Time
	Slices int
}

func (TWAPParams) Algorithm() Algorithm { return AlgoTWAP }

func (p TWAPParams) Validate() error {
	if p.Slices <= 0 {
		return fmt.Errorf("twap: slice count must be positive, got %d", p.Slices)
	}
	if !p.End.After(p.Start) {
		return fmt.Errorf("twap: execution window must have positive length")
	}
	return nil
}

func (p TWAPParams) NewPlanner(order domain.Order, _ domain.MarketView) Planner {
	return &twapPlanner{
		sliceQty: order.Quantity / int64(p.Slices),
		delay:    p.End.Sub(p.Start) / time.Duration(p.Slices),
		total:    p.Slices,
	}
}

// twapPlanner emits exactly N market slices of floor(Q/N) units each.
// When N does not divide Q, up to N-1 units are never scheduled; the
// shortfall is deliberate and observable in the sealed record.
type twapPlanner struct {
	sliceQty int64
	delay    time.Duration
	total    int
	issued   int
}

func (t *twapPlanner) Next(_ context.Context, _ int64) (Slice, bool, error) {
	if t.issued >= t.total {
		return Slice{}, true, nil
	}
	t.issued++

	s := Slice{
		Quantity:    t.sliceQty,
		Type:        domain.TypeMarket,
		TimeInForce: domain.TIFImmediateOrCancel,
		Venue:       domain.VenuePrimary,
		Delay:       t.delay,
	}
	if t.issued == t.total {
		// No trailing wait after the final slice.
		s.Delay = 0
	}
	return s, false, nil
}
