package algo

import (
	"context"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"algo_exec/internal/domain"
)

// Algorithm identifies one slicing strategy.
type Algorithm string

const (
	AlgoTWAP     Algorithm = "TWAP"
	AlgoVWAP     Algorithm = "VWAP"
	AlgoPOV      Algorithm = "POV"
	AlgoSmart    Algorithm = "SMART"
	AlgoIceberg  Algorithm = "ICEBERG"
	AlgoDarkPool Algorithm = "DARK_POOL"
)

// Supported reports whether a is a known algorithm variant.
func Supported(a Algorithm) bool {
	switch a {
	case AlgoTWAP, AlgoVWAP, AlgoPOV, AlgoSmart, AlgoIceberg, AlgoDarkPool:
		return true
	}
	return false
}

// DefaultUnit is the pacing time unit used where the strategy definitions
// speak in abstract "time units" (POV poll, dark-pool probe, urgency delays).
const DefaultUnit = time.Second

// Slice is the next action a planner hands to the pacing controller.
// Quantity 0 means a wait-only probe: nothing is filled, the controller
// just observes the delay and asks again.
type Slice struct {
	Quantity    int64
	Type        domain.OrderType
	Price       decimal.Decimal // limit/fill price; zero = prevailing market
	TimeInForce domain.TimeInForce
	Venue       domain.Venue
	Delay       time.Duration // suspension after this slice
}

// Planner decides child slices for one parent order. Next is called
// sequentially by a single controller goroutine; implementations need no
// internal locking. remaining is the unfilled parent quantity.
// done=true means the parent order has nothing further to schedule.
type Planner interface {
	Next(ctx context.Context, remaining int64) (s Slice, done bool, err error)
}

// Params is the per-algorithm parameter bundle. Validation fails fast at
// submit, before any execution task starts.
type Params interface {
	Algorithm() Algorithm
	Validate() error

	// NewPlanner binds the parameters to one parent order and market view.
	NewPlanner(order domain.Order, view domain.MarketView) Planner
}

// floorRate returns floor(volume * rate) for a fractional rate.
func floorRate(volume int64, rate float64) int64 {
	return int64(math.Floor(float64(volume) * rate))
}

// one is the decimal constant 1, shared by the price-offset math.
var one = decimal.NewFromInt(1)
