package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"algo_exec/internal/algo"
	"algo_exec/internal/domain"
	"algo_exec/internal/ledger"
	"algo_exec/pkg/safe"
)

// Budget bounds one order's execution loop. The participation-rate and
// liquidity-matching planners have no termination guarantee of their own
// on a dead market, so a budget is the controller's safety net. Zero
// fields mean unbounded.
type Budget struct {
	MaxIterations int
	MaxRuntime    time.Duration
}

// controller drives the slice loop for one parent order:
// ask the planner, submit the slice, suspend, repeat. One goroutine per
// order; no state is shared across controllers except the read-only
// market view.
type controller struct {
	order   domain.Order
	algo    algo.Algorithm
	planner algo.Planner
	view    domain.MarketView
	led     *ledger.Ledger
	budget  Budget

	// sleep is the suspension primitive, swappable in tests.
	sleep func(ctx context.Context, d time.Duration) error

	onSealed func(domain.ExecutionRecord)
	done     chan struct{}

	mu       sync.Mutex
	state    domain.ExecState
	final    domain.ExecutionRecord
	sliceSeq int
}

func newController(order domain.Order, a algo.Algorithm, planner algo.Planner, view domain.MarketView, budget Budget) *controller {
	return &controller{
		order:   order,
		algo:    a,
		planner: planner,
		view:    view,
		led:     ledger.New(order, string(a)),
		budget:  budget,
		sleep:   sleepCtx,
		done:    make(chan struct{}),
		state:   domain.StatePending,
	}
}

// run executes the order to a terminal state. Never panics across the
// goroutine boundary: every outcome seals a record.
func (c *controller) run(ctx context.Context) {
	c.setState(domain.StateRunning)
	c.led.SetExpectedPrice(c.expectedPrice(ctx))

	start := time.Now()
	iters := 0

	for {
		// Cancellation requested before or between slices.
		if ctx.Err() != nil {
			c.seal(domain.StateCancelled, "")
			return
		}

		slice, planDone, err := c.planner.Next(ctx, c.remaining())
		if err != nil {
			c.seal(domain.StateFailed, err.Error())
			return
		}
		if planDone {
			c.seal(domain.StateCompleted, "")
			return
		}

		iters++
		if c.budget.MaxIterations > 0 && iters > c.budget.MaxIterations {
			c.seal(domain.StateFailed, fmt.Sprintf("iteration budget exhausted after %d slices", iters-1))
			return
		}
		if c.budget.MaxRuntime > 0 && time.Since(start) > c.budget.MaxRuntime {
			c.seal(domain.StateFailed, fmt.Sprintf("time budget exhausted after %s", c.budget.MaxRuntime))
			return
		}

		if slice.Quantity > 0 {
			if err := c.submit(ctx, slice); err != nil {
				c.seal(domain.StateFailed, err.Error())
				return
			}
		}

		// Fully filled orders skip the trailing wait; the planner
		// confirms completion on the next ask.
		if c.remaining() <= 0 || slice.Delay <= 0 {
			continue
		}

		// Suspension point. Cancellation acts here, never mid-slice.
		if err := c.sleep(ctx, slice.Delay); err != nil {
			c.seal(domain.StateCancelled, "")
			return
		}
	}
}

// submit simulates one child fill: resolve the fill price, cap the
// quantity at the unfilled remainder, append to the ledger.
func (c *controller) submit(ctx context.Context, slice algo.Slice) error {
	qty := safe.Min(slice.Quantity, c.remaining())
	if qty <= 0 {
		return nil
	}

	price := slice.Price
	if !price.IsPositive() {
		p, err := c.view.CurrentPrice(ctx, c.order.Symbol)
		if err != nil {
			return fmt.Errorf("fill price read: %w", err)
		}
		price = p
	}

	venue := slice.Venue
	if venue == "" {
		venue = domain.VenuePrimary
	}

	f := domain.Fill{
		ID:       uuid.NewString(),
		SliceID:  fmt.Sprintf("%s-slice-%d", c.order.ID, c.sliceSeq),
		OrderID:  c.order.ID,
		Symbol:   c.order.Symbol,
		Side:     c.order.Side,
		Quantity: qty,
		Price:    price,
		Venue:    venue,
		Ts:       time.Now(),
	}
	c.sliceSeq++
	c.led.Append(f)

	slog.Debug("child fill",
		slog.String("order", c.order.ID),
		slog.String("slice", f.SliceID),
		slog.Int64("qty", qty),
		slog.String("price", price.String()),
		slog.String("venue", string(venue)))
	return nil
}

// expectedPrice resolves the slippage reference: the order's limit price
// when present, else the market price at submission. A failed read
// leaves slippage undefined rather than failing the order.
func (c *controller) expectedPrice(ctx context.Context) decimal.Decimal {
	if c.order.HasLimit() {
		return c.order.LimitPrice
	}
	p, err := c.view.CurrentPrice(ctx, c.order.Symbol)
	if err != nil {
		slog.Warn("EXPECTED_PRICE_UNAVAILABLE",
			slog.String("order", c.order.ID), slog.Any("error", err))
		return decimal.Zero
	}
	return p
}

func (c *controller) remaining() int64 {
	return c.order.Quantity - c.led.ExecutedQty()
}

func (c *controller) setState(s domain.ExecState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

// seal finalizes the record exactly once and releases waiters.
func (c *controller) seal(state domain.ExecState, reason string) {
	rec := c.led.Seal(state, reason)

	c.mu.Lock()
	c.state = state
	c.final = rec
	c.mu.Unlock()

	slog.Info("execution sealed",
		slog.String("order", c.order.ID),
		slog.String("algorithm", string(c.algo)),
		slog.String("state", string(state)),
		slog.Int64("executed", rec.ExecutedQty),
		slog.Int("fills", len(rec.Fills)))

	if c.onSealed != nil {
		c.onSealed(rec)
	}
	close(c.done)
}

// snapshot returns the current state and a partial (or final) record.
func (c *controller) snapshot() (domain.ExecState, domain.ExecutionRecord) {
	c.mu.Lock()
	state := c.state
	if state.Terminal() {
		rec := c.final
		c.mu.Unlock()
		return state, rec
	}
	c.mu.Unlock()
	return state, c.led.Snapshot(state)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
