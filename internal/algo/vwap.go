package algo

import (
	"context"
	"fmt"
	"time"

	"algo_exec/internal/domain"
)

// VWAPParams configures volume-weighted execution: one slice per profile
// weight, sized floor(Q * weight[i]), spread evenly across the window.
// Weights are expected to sum to roughly 1 but are not forced to; a
// profile summing below 1 leaves the order under-filled.
type VWAPParams struct {
	Start   time.Time
	End     time.Time
	Profile []float64
}

func (VWAPParams) Algorithm() Algorithm { return AlgoVWAP }

func (p VWAPParams) Validate() error {
	if len(p.Profile) == 0 {
		return fmt.Errorf("vwap: volume profile must not be empty")
	}
	for i, w := range p.Profile {
		if w < 0 || w > 1 {
			return fmt.Errorf("vwap: profile weight %d out of [0,1]: %v", i, w)
		}
	}
	if !p.End.After(p.Start) {
		return fmt.Errorf("vwap: execution window must have positive length")
	}
	return nil
}

func (p VWAPParams) NewPlanner(order domain.Order, _ domain.MarketView) Planner {
	sizes := make([]int64, len(p.Profile))
	for i, w := range p.Profile {
		sizes[i] = floorRate(order.Quantity, w)
	}
	return &vwapPlanner{
		sizes: sizes,
		delay: p.End.Sub(p.Start) / time.Duration(len(p.Profile)),
	}
}

type vwapPlanner struct {
	sizes  []int64
	delay  time.Duration
	issued int
}

func (v *vwapPlanner) Next(_ context.Context, _ int64) (Slice, bool, error) {
	if v.issued >= len(v.sizes) {
		return Slice{}, true, nil
	}
	qty := v.sizes[v.issued]
	v.issued++

	s := Slice{
		Quantity:    qty,
		Type:        domain.TypeMarket,
		TimeInForce: domain.TIFImmediateOrCancel,
		Venue:       domain.VenuePrimary,
		Delay:       v.delay,
	}
	if v.issued == len(v.sizes) {
		s.Delay = 0
	}
	return s, false, nil
}
