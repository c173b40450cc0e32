package algo

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"algo_exec/internal/domain"
	"algo_exec/pkg/safe"
)

// Urgency selects how aggressively the adaptive planner works the order.
type Urgency string

const (
	UrgencyLow    Urgency = "LOW"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyHigh   Urgency = "HIGH"
)

// Per-urgency tuning: base participation rate, relative-spread threshold
// above which dark routing is preferred, and inter-slice delay in units.
var urgencyProfiles = map[Urgency]struct {
	baseRate   float64
	spreadThr  decimal.Decimal
	delayUnits time.Duration
}{
	UrgencyLow:    {0.1, decimal.NewFromFloat(0.0005), 5},
	UrgencyMedium: {0.2, decimal.NewFromFloat(0.001), 2},
	UrgencyHigh:   {0.3, decimal.NewFromFloat(0.002), 1},
}

// SmartParams configures adaptive venue-aware execution.
type SmartParams struct {
	Urgency      Urgency
	AllowDark    bool            // permit routing to the dark venue
	AdaptiveSize bool            // size slices from market volume instead of all-remaining
	PriceLimit   decimal.Decimal // zero = no limit, slices go out as market orders
	// Unit scales the urgency delay table. Zero selects DefaultUnit.
	Unit time.Duration
}

func (SmartParams) Algorithm() Algorithm { return AlgoSmart }

func (p SmartParams) Validate() error {
	if _, ok := urgencyProfiles[p.Urgency]; !ok {
		return fmt.Errorf("smart: unknown urgency tier: %q", p.Urgency)
	}
	if p.PriceLimit.IsNegative() {
		return fmt.Errorf("smart: price limit must not be negative, got %s", p.PriceLimit)
	}
	if p.Unit < 0 {
		return fmt.Errorf("smart: time unit must not be negative")
	}
	return nil
}

func (p SmartParams) NewPlanner(order domain.Order, view domain.MarketView) Planner {
	unit := p.Unit
	if unit == 0 {
		unit = DefaultUnit
	}
	prof := urgencyProfiles[p.Urgency]
	return &smartPlanner{
		params: p,
		symbol: order.Symbol,
		view:   view,
		rate:   prof.baseRate,
		thr:    prof.spreadThr,
		delay:  prof.delayUnits * unit,
	}
}

type smartPlanner struct {
	params SmartParams
	symbol string
	view   domain.MarketView
	rate   float64
	thr    decimal.Decimal
	delay  time.Duration
}

func (s *smartPlanner) Next(ctx context.Context, remaining int64) (Slice, bool, error) {
	if remaining <= 0 {
		return Slice{}, true, nil
	}

	book, err := s.view.OrderBook(ctx, s.symbol)
	if err != nil {
		return Slice{}, false, fmt.Errorf("smart: order book read: %w", err)
	}

	// Wide spread on the lit book favors the dark venue, when permitted.
	venue := domain.VenuePrimary
	if s.params.AllowDark {
		if spread, ok := book.Spread(); ok && spread.GreaterThanOrEqual(s.thr) {
			venue = domain.VenueDark
		}
	}

	qty := remaining
	if s.params.AdaptiveSize {
		volume, err := s.view.RecentVolume(ctx, s.symbol)
		if err != nil {
			return Slice{}, false, fmt.Errorf("smart: volume read: %w", err)
		}
		qty = safe.Clamp(floorRate(volume, s.rate), 1, remaining)
	}

	slice := Slice{
		Quantity:    qty,
		Type:        domain.TypeMarket,
		TimeInForce: domain.TIFImmediateOrCancel,
		Venue:       venue,
		Delay:       s.delay,
	}
	if s.params.PriceLimit.IsPositive() {
		slice.Type = domain.TypeLimit
		slice.Price = s.params.PriceLimit
	}
	return slice, false, nil
}
