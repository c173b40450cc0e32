// Package ledger aggregates child-slice fills into the running totals and
// final metrics of one parent order.
package ledger

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"algo_exec/internal/domain"
	"algo_exec/pkg/safe"
)

var hundred = decimal.NewFromInt(100)

// Ledger is the append-only fill log for one parent order. It is owned
// by that order's pacing controller; the mutex exists only so status
// snapshots can be read from other goroutines.
type Ledger struct {
	mu sync.Mutex

	order     domain.Order
	algorithm string
	fills     []domain.Fill
	executed  int64
	cost      decimal.Decimal

	// expected is the reference price for slippage: the order's limit
	// price when present, else the market price observed at start.
	expected decimal.Decimal

	startedAt time.Time
	sealed    bool
}

// New creates an empty ledger for a parent order.
func New(order domain.Order, algorithm string) *Ledger {
	return &Ledger{
		order:     order,
		algorithm: algorithm,
		cost:      decimal.Zero,
		startedAt: time.Now(),
	}
}

// SetExpectedPrice fixes the slippage reference. Called once by the
// controller before the first slice.
func (l *Ledger) SetExpectedPrice(p decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.expected = p
}

// Append records one child fill: quantity is added to the executed
// total, quantity x price to the total cost. No-op once sealed.
func (l *Ledger) Append(f domain.Fill) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sealed {
		return
	}
	l.fills = append(l.fills, f)
	l.executed = safe.SafeAdd(l.executed, f.Quantity)
	l.cost = l.cost.Add(f.Price.Mul(decimal.NewFromInt(f.Quantity)))
}

// ExecutedQty returns the filled quantity so far.
func (l *Ledger) ExecutedQty() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.executed
}

// Snapshot returns a point-in-time copy of the record in the given
// state, metrics included. Safe to call while the order runs.
func (l *Ledger) Snapshot(state domain.ExecState) domain.ExecutionRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.build(state, time.Time{}, "")
}

// Seal closes the ledger in a terminal state and returns the final
// record. Further appends are ignored.
func (l *Ledger) Seal(state domain.ExecState, reason string) domain.ExecutionRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sealed = true
	return l.build(state, time.Now(), reason)
}

// build assembles a record copy. Average price and slippage are flagged
// invalid at zero executed quantity instead of dividing by zero.
func (l *Ledger) build(state domain.ExecState, endedAt time.Time, reason string) domain.ExecutionRecord {
	rec := domain.ExecutionRecord{
		OrderID:       l.order.ID,
		Symbol:        l.order.Symbol,
		Side:          l.order.Side,
		Algorithm:     l.algorithm,
		State:         state,
		Fills:         append([]domain.Fill(nil), l.fills...),
		ExecutedQty:   l.executed,
		TotalCost:     l.cost,
		ExpectedPrice: l.expected,
		StartedAt:     l.startedAt,
		EndedAt:       endedAt,
		Reason:        reason,
	}

	if l.executed > 0 {
		rec.AvgPrice = l.cost.Div(decimal.NewFromInt(l.executed))
		rec.AvgPriceValid = true
		if l.expected.IsPositive() {
			rec.SlippagePct = rec.AvgPrice.Sub(l.expected).Div(l.expected).Mul(hundred)
		}
	}
	return rec
}
